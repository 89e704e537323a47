package files

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/fskit/internal/filesystem"
	"github.com/temirov/fskit/internal/hierarchy"
	"github.com/temirov/fskit/internal/opening"
	flagutils "github.com/temirov/fskit/internal/utils/flags"
)

const (
	locateCommandUseConstant                = "locate [file-name] [start-dir]"
	locateCommandShortDescriptionConstant   = "Find the nearest ancestor directory containing a file"
	locateCommandLongDescriptionConstant    = "locate walks upward from start-dir (default: the working directory) and prints the first directory that directly contains file-name (default: the configured marker)."
	openCommandUseConstant                  = "open <path>"
	openCommandShortDescriptionConstant     = "Open a file with explicit access and creation intent"
	openCommandLongDescriptionConstant      = "open resolves the requested flags into an open mode. With write or append access it copies standard input into the file; with read-only access it prints the file to standard output."
	copyCommandUseConstant                  = "copy <source> <destination>"
	copyCommandShortDescriptionConstant     = "Copy a file or directory tree to a new destination"
	moveCommandUseConstant                  = "move <source> <destination>"
	moveCommandShortDescriptionConstant     = "Move a file or directory tree to a new destination"
	deleteCommandUseConstant                = "delete <path>"
	deleteCommandShortDescriptionConstant   = "Delete a file or directory tree; missing paths are ignored"
	mkdirCommandUseConstant                 = "mkdir <path>"
	mkdirCommandShortDescriptionConstant    = "Create a directory and any missing parents"
	listCommandUseConstant                  = "list <directory>"
	listCommandShortDescriptionConstant     = "List the files directly inside a directory"
	writableCommandUseConstant              = "writable <directory>"
	writableCommandShortDescriptionConstant = "Report whether a directory appears writable"
	existsCommandUseConstant                = "exists <path>"
	existsCommandShortDescriptionConstant   = "Report whether a path exists"
	readFlagNameConstant                    = "read"
	readFlagUsageConstant                   = "Request read access"
	writeFlagNameConstant                   = "write"
	writeFlagUsageConstant                  = "Request write access"
	appendFlagNameConstant                  = "append"
	appendFlagUsageConstant                 = "Append writes to the end of the file, creating it when missing"
	createFlagNameConstant                  = "create"
	createFlagUsageConstant                 = "Create the file when it is missing"
	truncateFlagNameConstant                = "truncate"
	truncateFlagUsageConstant               = "Empty the file when it is opened"
	createNewFlagNameConstant               = "create-new"
	createNewFlagUsageConstant              = "Create the file, failing when it already exists"
	patternFlagNameConstant                 = "pattern"
	patternFlagUsageConstant                = "Glob pattern matched against file names (e.g. *.txt or *.{yaml,yml})"
	typeFlagNameConstant                    = "type"
	typeFlagUsageConstant                   = "Restrict the check to a path type"
	existsTypeAnyConstant                   = "any"
	existsTypeFileConstant                  = "file"
	existsTypeDirectoryConstant             = "directory"
	workingDirectoryConstant                = "."
	fileNotLocatedTemplateConstant          = "%w: %s above %s"
	fileNotLocatedMessageConstant           = "no ancestor directory contains the file"
	locateFailedTemplateConstant            = "locate failed: %w"
	openFailedTemplateConstant              = "open failed: %w"
	transferContentTemplateConstant         = "unable to transfer content for %s: %w"
	closeFileTemplateConstant               = "unable to close %s: %w"
	copyFailedTemplateConstant              = "copy failed: %w"
	moveFailedTemplateConstant              = "move failed: %w"
	deleteFailedTemplateConstant            = "delete failed: %w"
	mkdirFailedTemplateConstant             = "mkdir failed: %w"
	listFailedTemplateConstant              = "list failed: %w"
	outputLineTemplateConstant              = "%s\n"
	logMessageCommandCompletedConstant      = "file command completed"
	logFieldCommandConstant                 = "command"
	logFieldPathConstant                    = "path"
	logFieldDestinationConstant             = "destination"
	logFieldBytesConstant                   = "bytes"
)

// ErrFileNotLocated indicates that no ancestor of the starting directory contains the requested file.
var ErrFileNotLocated = errors.New(fileNotLocatedMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the current file command configuration.
type ConfigurationProvider func() Configuration

// CommandBuilder assembles the file commands.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	Backend               afero.Fs
}

// Build constructs every file command.
func (builder *CommandBuilder) Build() ([]*cobra.Command, error) {
	locateCommand := &cobra.Command{
		Use:   locateCommandUseConstant,
		Short: locateCommandShortDescriptionConstant,
		Long:  locateCommandLongDescriptionConstant,
		Args:  cobra.MaximumNArgs(2),
		RunE:  builder.runLocate,
	}

	openCommand := &cobra.Command{
		Use:   openCommandUseConstant,
		Short: openCommandShortDescriptionConstant,
		Long:  openCommandLongDescriptionConstant,
		Args:  cobra.ExactArgs(1),
		RunE:  builder.runOpen,
	}
	openCommand.Flags().Bool(readFlagNameConstant, false, readFlagUsageConstant)
	openCommand.Flags().Bool(writeFlagNameConstant, false, writeFlagUsageConstant)
	openCommand.Flags().Bool(appendFlagNameConstant, false, appendFlagUsageConstant)
	openCommand.Flags().Bool(createFlagNameConstant, false, createFlagUsageConstant)
	openCommand.Flags().Bool(truncateFlagNameConstant, false, truncateFlagUsageConstant)
	openCommand.Flags().Bool(createNewFlagNameConstant, false, createNewFlagUsageConstant)

	copyCommand := &cobra.Command{
		Use:   copyCommandUseConstant,
		Short: copyCommandShortDescriptionConstant,
		Args:  cobra.ExactArgs(2),
		RunE:  builder.runCopy,
	}

	moveCommand := &cobra.Command{
		Use:   moveCommandUseConstant,
		Short: moveCommandShortDescriptionConstant,
		Args:  cobra.ExactArgs(2),
		RunE:  builder.runMove,
	}

	deleteCommand := &cobra.Command{
		Use:   deleteCommandUseConstant,
		Short: deleteCommandShortDescriptionConstant,
		Args:  cobra.ExactArgs(1),
		RunE:  builder.runDelete,
	}

	mkdirCommand := &cobra.Command{
		Use:   mkdirCommandUseConstant,
		Short: mkdirCommandShortDescriptionConstant,
		Args:  cobra.ExactArgs(1),
		RunE:  builder.runMkdir,
	}

	listCommand := &cobra.Command{
		Use:   listCommandUseConstant,
		Short: listCommandShortDescriptionConstant,
		Args:  cobra.ExactArgs(1),
		RunE:  builder.runList,
	}
	listCommand.Flags().String(patternFlagNameConstant, "", patternFlagUsageConstant)

	writableCommand := &cobra.Command{
		Use:   writableCommandUseConstant,
		Short: writableCommandShortDescriptionConstant,
		Args:  cobra.ExactArgs(1),
		RunE:  builder.runWritable,
	}

	existsCommand := &cobra.Command{
		Use:   existsCommandUseConstant,
		Short: existsCommandShortDescriptionConstant,
		Args:  cobra.ExactArgs(1),
	}
	var existsType string
	flagutils.AddChoiceFlag(
		existsCommand.Flags(),
		&existsType,
		typeFlagNameConstant,
		existsTypeAnyConstant,
		[]string{existsTypeAnyConstant, existsTypeFileConstant, existsTypeDirectoryConstant},
		typeFlagUsageConstant,
	)
	existsCommand.RunE = func(command *cobra.Command, arguments []string) error {
		return builder.runExists(command, arguments, existsType)
	}

	return []*cobra.Command{
		locateCommand,
		openCommand,
		copyCommand,
		moveCommand,
		deleteCommand,
		mkdirCommand,
		listCommand,
		writableCommand,
		existsCommand,
	}, nil
}

func (builder *CommandBuilder) runLocate(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()

	fileName := configuration.Marker
	if len(arguments) > 0 && len(strings.TrimSpace(arguments[0])) > 0 {
		fileName = arguments[0]
	}

	startingDirectory := workingDirectoryConstant
	if len(arguments) > 1 {
		startingDirectory = arguments[1]
	}

	locator := hierarchy.NewLocator(hierarchy.Dependencies{
		FileSystem: builder.newGateway(configuration),
		Logger:     builder.resolveLogger(),
	})

	locatedDirectory, located, locateError := locator.FindClosestAncestorContainingFile(fileName, startingDirectory)
	if locateError != nil {
		return fmt.Errorf(locateFailedTemplateConstant, locateError)
	}
	if !located {
		return fmt.Errorf(fileNotLocatedTemplateConstant, ErrFileNotLocated, fileName, startingDirectory)
	}

	builder.logCompletion(command, locatedDirectory)
	return writeLine(command, locatedDirectory)
}

func (builder *CommandBuilder) runOpen(command *cobra.Command, arguments []string) (commandError error) {
	targetPath := arguments[0]
	intent, readRequested, writeRequested, intentError := parseIntent(command)
	if intentError != nil {
		return intentError
	}

	configuration := builder.resolveConfiguration()
	opener := opening.NewOpener(opening.OpenerDependencies{
		Backend:         builder.resolveBackend(),
		Logger:          builder.resolveLogger(),
		FilePermissions: configuration.FilePermissions,
	})

	file, openError := opener.Open(intent, targetPath)
	if openError != nil {
		return fmt.Errorf(openFailedTemplateConstant, openError)
	}
	defer func() {
		if closeError := file.Close(); closeError != nil && commandError == nil {
			commandError = fmt.Errorf(closeFileTemplateConstant, targetPath, closeError)
		}
	}()

	var transferredBytes int64
	var transferError error
	switch {
	case writeRequested:
		transferredBytes, transferError = io.Copy(file, command.InOrStdin())
	case readRequested:
		transferredBytes, transferError = io.Copy(command.OutOrStdout(), file)
	}
	if transferError != nil {
		return fmt.Errorf(transferContentTemplateConstant, targetPath, transferError)
	}

	builder.resolveLogger().Info(
		logMessageCommandCompletedConstant,
		zap.String(logFieldCommandConstant, command.Name()),
		zap.String(logFieldPathConstant, targetPath),
		zap.Int64(logFieldBytesConstant, transferredBytes),
	)
	return nil
}

func (builder *CommandBuilder) runCopy(command *cobra.Command, arguments []string) error {
	if copyError := builder.newGateway(builder.resolveConfiguration()).Copy(arguments[0], arguments[1]); copyError != nil {
		return fmt.Errorf(copyFailedTemplateConstant, copyError)
	}
	builder.logTransfer(command, arguments[0], arguments[1])
	return nil
}

func (builder *CommandBuilder) runMove(command *cobra.Command, arguments []string) error {
	if moveError := builder.newGateway(builder.resolveConfiguration()).Move(arguments[0], arguments[1]); moveError != nil {
		return fmt.Errorf(moveFailedTemplateConstant, moveError)
	}
	builder.logTransfer(command, arguments[0], arguments[1])
	return nil
}

func (builder *CommandBuilder) runDelete(command *cobra.Command, arguments []string) error {
	if deleteError := builder.newGateway(builder.resolveConfiguration()).Delete(arguments[0]); deleteError != nil {
		return fmt.Errorf(deleteFailedTemplateConstant, deleteError)
	}
	builder.logCompletion(command, arguments[0])
	return nil
}

func (builder *CommandBuilder) runMkdir(command *cobra.Command, arguments []string) error {
	if mkdirError := builder.newGateway(builder.resolveConfiguration()).CreateDirectory(arguments[0]); mkdirError != nil {
		return fmt.Errorf(mkdirFailedTemplateConstant, mkdirError)
	}
	builder.logCompletion(command, arguments[0])
	return nil
}

func (builder *CommandBuilder) runList(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()
	pattern := configuration.ListPattern
	if command.Flags().Changed(patternFlagNameConstant) {
		flagPattern, patternFlagError := command.Flags().GetString(patternFlagNameConstant)
		if patternFlagError != nil {
			return patternFlagError
		}
		pattern = flagPattern
	}

	gateway := builder.newGateway(configuration)
	var listedFiles []string
	var listError error
	if len(pattern) == 0 {
		listedFiles, listError = gateway.ListFiles(arguments[0])
	} else {
		listedFiles, listError = gateway.ListFilesMatching(arguments[0], pattern)
	}
	if listError != nil {
		return fmt.Errorf(listFailedTemplateConstant, listError)
	}

	for _, listedFile := range listedFiles {
		if writeError := writeLine(command, listedFile); writeError != nil {
			return writeError
		}
	}

	builder.logCompletion(command, arguments[0])
	return nil
}

func (builder *CommandBuilder) runWritable(command *cobra.Command, arguments []string) error {
	writable := builder.newGateway(builder.resolveConfiguration()).IsDirectoryWritable(arguments[0])
	builder.logCompletion(command, arguments[0])
	return writeLine(command, strconv.FormatBool(writable))
}

func (builder *CommandBuilder) runExists(command *cobra.Command, arguments []string, existsType string) error {
	gateway := builder.newGateway(builder.resolveConfiguration())

	var exists bool
	switch existsType {
	case existsTypeFileConstant:
		exists = gateway.ExistsAndIsFile(arguments[0])
	case existsTypeDirectoryConstant:
		exists = gateway.ExistsAndIsDirectory(arguments[0])
	default:
		exists = gateway.Exists(arguments[0])
	}

	builder.logCompletion(command, arguments[0])
	return writeLine(command, strconv.FormatBool(exists))
}

func parseIntent(command *cobra.Command) (opening.Intent, bool, bool, error) {
	flagValues := make(map[string]bool, 6)
	for _, flagName := range []string{
		readFlagNameConstant,
		writeFlagNameConstant,
		appendFlagNameConstant,
		createFlagNameConstant,
		truncateFlagNameConstant,
		createNewFlagNameConstant,
	} {
		flagValue, flagError := command.Flags().GetBool(flagName)
		if flagError != nil {
			return opening.Intent{}, false, false, flagError
		}
		flagValues[flagName] = flagValue
	}

	intent := opening.NewIntent().
		Read(flagValues[readFlagNameConstant]).
		Write(flagValues[writeFlagNameConstant]).
		Append(flagValues[appendFlagNameConstant]).
		Create(flagValues[createFlagNameConstant]).
		Truncate(flagValues[truncateFlagNameConstant]).
		CreateNew(flagValues[createNewFlagNameConstant])

	writeRequested := flagValues[writeFlagNameConstant] || flagValues[appendFlagNameConstant]
	return intent, flagValues[readFlagNameConstant], writeRequested, nil
}

func (builder *CommandBuilder) newGateway(configuration Configuration) *filesystem.Gateway {
	return filesystem.NewGateway(filesystem.Dependencies{
		Backend:              builder.resolveBackend(),
		Logger:               builder.resolveLogger(),
		DirectoryPermissions: configuration.DirectoryPermissions,
	})
}

func (builder *CommandBuilder) resolveBackend() afero.Fs {
	if builder.Backend == nil {
		return afero.NewOsFs()
	}
	return builder.Backend
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}

	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}

	return logger
}

func (builder *CommandBuilder) resolveConfiguration() Configuration {
	configuration := DefaultConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}
	return configuration.Sanitize()
}

func (builder *CommandBuilder) logCompletion(command *cobra.Command, path string) {
	builder.resolveLogger().Info(
		logMessageCommandCompletedConstant,
		zap.String(logFieldCommandConstant, command.Name()),
		zap.String(logFieldPathConstant, path),
	)
}

func (builder *CommandBuilder) logTransfer(command *cobra.Command, source string, destination string) {
	builder.resolveLogger().Info(
		logMessageCommandCompletedConstant,
		zap.String(logFieldCommandConstant, command.Name()),
		zap.String(logFieldPathConstant, source),
		zap.String(logFieldDestinationConstant, destination),
	)
}

func writeLine(command *cobra.Command, value string) error {
	_, writeError := fmt.Fprintf(command.OutOrStdout(), outputLineTemplateConstant, value)
	return writeError
}
