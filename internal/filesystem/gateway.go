package filesystem

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/temirov/fskit/internal/fserrors"
	"github.com/temirov/fskit/internal/pathwalk"
)

const (
	deleteOperationNameConstant             = "delete"
	moveOperationNameConstant               = "move"
	copyOperationNameConstant               = "copy"
	createDirectoryOperationNameConstant    = "create directory"
	listFilesOperationNameConstant          = "list files"
	sourceIsDestinationMessageConstant      = "source and destination must not be the same path"
	invalidPatternMessageConstant           = "invalid glob pattern"
	defaultDirectoryPermissionsConstant     = fs.FileMode(0o755)
	logMessageDeletedConstant               = "deleted path"
	logMessageMovedConstant                 = "moved path"
	logMessageCopiedConstant                = "copied path"
	logMessageCreatedDirectoryConstant      = "created directory"
	logMessageListedFilesConstant           = "listed files"
	logMessageWritabilityProbedConstant     = "probed directory writability"
	logFieldPathConstant                    = "path"
	logFieldSourceConstant                  = "source"
	logFieldDestinationConstant             = "destination"
	logFieldPatternConstant                 = "pattern"
	logFieldCountConstant                   = "count"
	logFieldWritableConstant                = "writable"
	logFieldProbeConstant                   = "probe"
	writabilityProbeAccessConstant          = "access"
	writabilityProbeFileConstant            = "file"
	writabilityProbeFilePrefixConstant      = ".fskit-probe-"
	writabilityProbeFilePermissionsConstant = fs.FileMode(0o600)
)

// ErrSourceIsDestination indicates a move or copy whose source and destination resolve to the same path.
var ErrSourceIsDestination = errors.New(sourceIsDestinationMessageConstant)

// FileSystem exposes the filesystem operations consumed by the locator and the CLI.
type FileSystem interface {
	Exists(path string) bool
	ExistsAndIsDirectory(path string) bool
	ExistsAndIsFile(path string) bool
	Delete(path string) error
	Move(source string, destination string) error
	Copy(source string, destination string) error
	CreateDirectory(path string) error
	ListFiles(path string) ([]string, error)
	ListFilesMatching(path string, pattern string) ([]string, error)
	IsDirectoryWritable(path string) bool
}

// Dependencies supplies collaborators for a Gateway.
type Dependencies struct {
	Backend              afero.Fs
	Logger               *zap.Logger
	DirectoryPermissions fs.FileMode
}

// Gateway implements FileSystem on top of an afero backend.
type Gateway struct {
	backend              afero.Fs
	logger               *zap.Logger
	directoryPermissions fs.FileMode
}

// NewGateway constructs a Gateway, defaulting to the operating system backend.
func NewGateway(dependencies Dependencies) *Gateway {
	backend := dependencies.Backend
	if backend == nil {
		backend = afero.NewOsFs()
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	directoryPermissions := dependencies.DirectoryPermissions
	if directoryPermissions == 0 {
		directoryPermissions = defaultDirectoryPermissionsConstant
	}

	return &Gateway{backend: backend, logger: logger, directoryPermissions: directoryPermissions}
}

// NewOSGateway constructs a Gateway backed by the operating system.
func NewOSGateway() *Gateway {
	return NewGateway(Dependencies{})
}

// Exists reports whether path is a file or a directory.
func (gateway *Gateway) Exists(path string) bool {
	_, statError := gateway.backend.Stat(path)
	return statError == nil
}

// ExistsAndIsDirectory reports whether path is an existing directory.
func (gateway *Gateway) ExistsAndIsDirectory(path string) bool {
	info, statError := gateway.backend.Stat(path)
	return statError == nil && info.IsDir()
}

// ExistsAndIsFile reports whether path exists and is not a directory.
func (gateway *Gateway) ExistsAndIsFile(path string) bool {
	info, statError := gateway.backend.Stat(path)
	return statError == nil && !info.IsDir()
}

// Delete removes a file or a directory tree. Missing paths are ignored.
func (gateway *Gateway) Delete(path string) error {
	if removeError := gateway.backend.RemoveAll(path); removeError != nil {
		return fserrors.FromOSError(deleteOperationNameConstant, path, removeError)
	}

	gateway.logger.Debug(logMessageDeletedConstant, zap.String(logFieldPathConstant, path))
	return nil
}

// Move relocates a file or a directory tree. The destination must not exist.
func (gateway *Gateway) Move(source string, destination string) error {
	if guardError := gateway.guardTransfer(moveOperationNameConstant, source, destination); guardError != nil {
		return guardError
	}

	if renameError := gateway.backend.Rename(source, destination); renameError != nil {
		return fserrors.FromOSError(moveOperationNameConstant, source, renameError)
	}

	gateway.logger.Debug(
		logMessageMovedConstant,
		zap.String(logFieldSourceConstant, source),
		zap.String(logFieldDestinationConstant, destination),
	)
	return nil
}

// Copy duplicates a file or recursively duplicates a directory tree. The destination must not exist.
func (gateway *Gateway) Copy(source string, destination string) error {
	if guardError := gateway.guardTransfer(copyOperationNameConstant, source, destination); guardError != nil {
		return guardError
	}

	var copyError error
	if gateway.ExistsAndIsDirectory(source) {
		copyError = gateway.copyDirectory(source, destination)
	} else {
		copyError = gateway.copyFile(source, destination)
	}
	if copyError != nil {
		return copyError
	}

	gateway.logger.Debug(
		logMessageCopiedConstant,
		zap.String(logFieldSourceConstant, source),
		zap.String(logFieldDestinationConstant, destination),
	)
	return nil
}

// CreateDirectory creates path and any missing parents. Existing directories are left untouched.
func (gateway *Gateway) CreateDirectory(path string) error {
	info, statError := gateway.backend.Stat(path)
	if statError == nil {
		if info.IsDir() {
			return nil
		}
		return fserrors.AlreadyExists(createDirectoryOperationNameConstant, path)
	}

	if mkdirError := gateway.backend.MkdirAll(path, gateway.directoryPermissions); mkdirError != nil {
		return fserrors.FromOSError(createDirectoryOperationNameConstant, path, mkdirError)
	}

	gateway.logger.Debug(logMessageCreatedDirectoryConstant, zap.String(logFieldPathConstant, path))
	return nil
}

// ListFiles returns the files directly inside path, sorted by name.
func (gateway *Gateway) ListFiles(path string) ([]string, error) {
	return gateway.ListFilesMatching(path, "")
}

// ListFilesMatching returns the files directly inside path whose names match pattern.
// An empty pattern matches every file.
func (gateway *Gateway) ListFilesMatching(path string, pattern string) ([]string, error) {
	if len(pattern) > 0 && !doublestar.ValidatePattern(pattern) {
		return nil, fserrors.InvalidArgument(listFilesOperationNameConstant, pattern, invalidPatternMessageConstant)
	}

	entries, readError := afero.ReadDir(gateway.backend, path)
	if readError != nil {
		return nil, fserrors.FromOSError(listFilesOperationNameConstant, path, readError)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		entryPath := filepath.Join(path, entry.Name())
		if gateway.resolvesToDirectory(entryPath, entry) {
			continue
		}
		if len(pattern) > 0 {
			matched, matchError := doublestar.Match(pattern, entry.Name())
			if matchError != nil {
				return nil, fserrors.InvalidArgument(listFilesOperationNameConstant, pattern, invalidPatternMessageConstant)
			}
			if !matched {
				continue
			}
		}
		files = append(files, entryPath)
	}

	gateway.logger.Debug(
		logMessageListedFilesConstant,
		zap.String(logFieldPathConstant, path),
		zap.String(logFieldPatternConstant, pattern),
		zap.Int(logFieldCountConstant, len(files)),
	)
	return files, nil
}

// IsDirectoryWritable reports whether the current user can create entries in path.
// The result is advisory: permissions may change before a later write.
func (gateway *Gateway) IsDirectoryWritable(path string) bool {
	if !gateway.ExistsAndIsDirectory(path) {
		return false
	}

	if _, isOperatingSystemBackend := gateway.backend.(*afero.OsFs); isOperatingSystemBackend {
		if writable, supported := accessProbe(path); supported {
			gateway.logWritability(path, writabilityProbeAccessConstant, writable)
			return writable
		}
	}

	writable := gateway.probeByCreatingFile(path)
	gateway.logWritability(path, writabilityProbeFileConstant, writable)
	return writable
}

func (gateway *Gateway) guardTransfer(operation string, source string, destination string) error {
	canonicalSource, sourceError := pathwalk.Canonicalize(source)
	if sourceError != nil {
		return fserrors.New(fserrors.KindIOFailure, operation, source, sourceError)
	}

	canonicalDestination, destinationError := pathwalk.Canonicalize(destination)
	if destinationError != nil {
		return fserrors.New(fserrors.KindIOFailure, operation, destination, destinationError)
	}

	if canonicalSource == canonicalDestination {
		return fserrors.New(fserrors.KindIOFailure, operation, source, ErrSourceIsDestination)
	}

	if _, statError := gateway.backend.Stat(source); statError != nil {
		return fserrors.FromOSError(operation, source, statError)
	}

	if gateway.Exists(destination) {
		return fserrors.AlreadyExists(operation, destination)
	}

	return nil
}

func (gateway *Gateway) copyDirectory(source string, destination string) error {
	sourceInfo, statError := gateway.backend.Stat(source)
	if statError != nil {
		return fserrors.FromOSError(copyOperationNameConstant, source, statError)
	}

	if mkdirError := gateway.backend.MkdirAll(destination, sourceInfo.Mode().Perm()); mkdirError != nil {
		return fserrors.FromOSError(copyOperationNameConstant, destination, mkdirError)
	}

	entries, readError := afero.ReadDir(gateway.backend, source)
	if readError != nil {
		return fserrors.FromOSError(copyOperationNameConstant, source, readError)
	}

	for _, entry := range entries {
		sourceEntryPath := filepath.Join(source, entry.Name())
		destinationEntryPath := filepath.Join(destination, entry.Name())

		var entryError error
		if gateway.resolvesToDirectory(sourceEntryPath, entry) {
			entryError = gateway.copyDirectory(sourceEntryPath, destinationEntryPath)
		} else {
			entryError = gateway.copyFile(sourceEntryPath, destinationEntryPath)
		}
		if entryError != nil {
			return entryError
		}
	}

	return nil
}

func (gateway *Gateway) copyFile(source string, destination string) (resultError error) {
	sourceFile, openError := gateway.backend.Open(source)
	if openError != nil {
		return fserrors.FromOSError(copyOperationNameConstant, source, openError)
	}
	defer sourceFile.Close()

	sourceInfo, statError := sourceFile.Stat()
	if statError != nil {
		return fserrors.FromOSError(copyOperationNameConstant, source, statError)
	}

	destinationFile, createError := gateway.backend.OpenFile(destination, os.O_WRONLY|os.O_CREATE|os.O_EXCL, sourceInfo.Mode().Perm())
	if createError != nil {
		return fserrors.FromOSError(copyOperationNameConstant, destination, createError)
	}
	defer func() {
		if closeError := destinationFile.Close(); closeError != nil && resultError == nil {
			resultError = fserrors.FromOSError(copyOperationNameConstant, destination, closeError)
		}
	}()

	if _, copyError := io.Copy(destinationFile, sourceFile); copyError != nil {
		return fserrors.FromOSError(copyOperationNameConstant, destination, copyError)
	}

	return nil
}

// resolvesToDirectory follows symbolic links reported by directory listings.
func (gateway *Gateway) resolvesToDirectory(path string, entry fs.FileInfo) bool {
	if entry.Mode()&fs.ModeSymlink == 0 {
		return entry.IsDir()
	}
	return gateway.ExistsAndIsDirectory(path)
}

func (gateway *Gateway) logWritability(path string, probe string, writable bool) {
	gateway.logger.Debug(
		logMessageWritabilityProbedConstant,
		zap.String(logFieldPathConstant, path),
		zap.String(logFieldProbeConstant, probe),
		zap.Bool(logFieldWritableConstant, writable),
	)
}
