package hierarchy

import (
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/fskit/internal/filesystem"
	"github.com/temirov/fskit/internal/fserrors"
	"github.com/temirov/fskit/internal/pathwalk"
)

const (
	findOperationNameConstant        = "find ancestor containing file"
	emptyFileNameMessageConstant     = "file name must not be empty"
	fileNameSeparatorMessageConstant = "file name must not contain a path separator"
	fileNameNullByteMessageConstant  = "file name must not contain a null byte"
	forwardSlashConstant             = "/"
	nullByteConstant                 = "\x00"
	logMessageSearchStartedConstant  = "searching ancestors for file"
	logMessageFileLocatedConstant    = "located file in ancestor"
	logMessageFileNotLocatedConstant = "file not found in any ancestor"
	logFieldFileNameConstant         = "file_name"
	logFieldStartConstant            = "start"
	logFieldDirectoryConstant        = "directory"
	logFieldVisitedConstant          = "visited"
)

// Dependencies supplies collaborators for a Locator.
type Dependencies struct {
	FileSystem filesystem.FileSystem
	Logger     *zap.Logger
}

// Locator searches a directory and its ancestors for a named file.
type Locator struct {
	fileSystem filesystem.FileSystem
	logger     *zap.Logger
}

// NewLocator constructs a Locator, defaulting to the operating system gateway.
func NewLocator(dependencies Dependencies) *Locator {
	fileSystem := dependencies.FileSystem
	if fileSystem == nil {
		fileSystem = filesystem.NewOSGateway()
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Locator{fileSystem: fileSystem, logger: logger}
}

// FindClosestAncestorContainingFile returns the nearest directory, starting with
// startingDirectory itself, that directly contains a file named fileName.
// The boolean is false when no ancestor contains the file.
func (locator *Locator) FindClosestAncestorContainingFile(fileName string, startingDirectory string) (string, bool, error) {
	if validationError := validateFileName(fileName); validationError != nil {
		return "", false, validationError
	}

	canonicalStart, canonicalizeError := pathwalk.Canonicalize(startingDirectory)
	if canonicalizeError != nil {
		return "", false, fserrors.New(fserrors.KindInvalidArgument, findOperationNameConstant, startingDirectory, canonicalizeError)
	}

	locator.logger.Debug(
		logMessageSearchStartedConstant,
		zap.String(logFieldFileNameConstant, fileName),
		zap.String(logFieldStartConstant, canonicalStart),
	)

	visitedCount := 0
	for directory := range pathwalk.Ancestors(canonicalStart) {
		visitedCount++
		if locator.fileSystem.ExistsAndIsFile(filepath.Join(directory, fileName)) {
			locator.logger.Debug(
				logMessageFileLocatedConstant,
				zap.String(logFieldFileNameConstant, fileName),
				zap.String(logFieldDirectoryConstant, directory),
				zap.Int(logFieldVisitedConstant, visitedCount),
			)
			return directory, true, nil
		}
	}

	locator.logger.Debug(
		logMessageFileNotLocatedConstant,
		zap.String(logFieldFileNameConstant, fileName),
		zap.Int(logFieldVisitedConstant, visitedCount),
	)
	return "", false, nil
}

// FindFirstDirectoryContainingFile searches startingDirectory and its ancestors
// on the operating system filesystem.
func FindFirstDirectoryContainingFile(fileName string, startingDirectory string) (string, bool, error) {
	return NewLocator(Dependencies{}).FindClosestAncestorContainingFile(fileName, startingDirectory)
}

func validateFileName(fileName string) error {
	switch {
	case len(fileName) == 0:
		return fserrors.InvalidArgument(findOperationNameConstant, fileName, emptyFileNameMessageConstant)
	case strings.Contains(fileName, forwardSlashConstant), strings.ContainsRune(fileName, filepath.Separator):
		return fserrors.InvalidArgument(findOperationNameConstant, fileName, fileNameSeparatorMessageConstant)
	case strings.Contains(fileName, nullByteConstant):
		return fserrors.InvalidArgument(findOperationNameConstant, fileName, fileNameNullByteMessageConstant)
	default:
		return nil
	}
}
