package opening

import (
	"io/fs"
	"os"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/temirov/fskit/internal/fserrors"
)

const (
	openOperationNameConstant      = "open"
	defaultFilePermissionsConstant = fs.FileMode(0o644)
	logMessageOpenedFileConstant   = "opened file"
	logFieldPathConstant           = "path"
	logFieldModeConstant           = "mode"
	logFieldAccessConstant         = "access"
	logFieldFlagsConstant          = "flags"
)

// OpenerDependencies supplies collaborators for an Opener.
type OpenerDependencies struct {
	Backend         afero.Fs
	Logger          *zap.Logger
	FilePermissions fs.FileMode
}

// Opener opens files according to an Intent.
type Opener struct {
	backend         afero.Fs
	logger          *zap.Logger
	filePermissions fs.FileMode
}

// NewOpener constructs an Opener, defaulting to the operating system backend.
func NewOpener(dependencies OpenerDependencies) *Opener {
	backend := dependencies.Backend
	if backend == nil {
		backend = afero.NewOsFs()
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	filePermissions := dependencies.FilePermissions
	if filePermissions == 0 {
		filePermissions = defaultFilePermissionsConstant
	}

	return &Opener{backend: backend, logger: logger, filePermissions: filePermissions}
}

// NewOSOpener constructs an Opener backed by the operating system.
func NewOSOpener() *Opener {
	return NewOpener(OpenerDependencies{})
}

// Open opens path as described by intent. The caller owns the returned file and must close it.
//
// Contradictory intents fail before the filesystem is touched. Append mode is
// only opened write-only. When truncate is combined with create-new, an existing
// target fails with an already-exists error before anything is truncated.
func (opener *Opener) Open(intent Intent, path string) (afero.File, error) {
	resolved, resolveError := intent.resolveFor(openOperationNameConstant, path)
	if resolveError != nil {
		return nil, resolveError
	}
	if resolved.Mode == ModeAppend && resolved.Access != AccessWrite {
		return nil, fserrors.New(fserrors.KindInvalidConfiguration, openOperationNameConstant, path, ErrAppendWithRead)
	}

	flags := resolved.Flags()
	if intent.truncate && intent.createNew {
		if _, statError := opener.backend.Stat(path); statError == nil {
			return nil, fserrors.AlreadyExists(openOperationNameConstant, path)
		}
	}

	// OpenFile creates and truncates in a single call; no pre-creation step.
	if intent.truncate && (intent.create || intent.createNew) {
		flags |= os.O_CREATE
		if intent.createNew {
			flags |= os.O_EXCL
		}
	}

	file, openError := opener.backend.OpenFile(path, flags, opener.filePermissions)
	if openError != nil {
		return nil, fserrors.FromOSError(openOperationNameConstant, path, openError)
	}

	opener.logger.Debug(
		logMessageOpenedFileConstant,
		zap.String(logFieldPathConstant, path),
		zap.Stringer(logFieldModeConstant, resolved.Mode),
		zap.Stringer(logFieldAccessConstant, resolved.Access),
		zap.Int(logFieldFlagsConstant, flags),
	)
	return file, nil
}

// Open opens path on the operating system filesystem as described by the intent.
func (intent Intent) Open(path string) (afero.File, error) {
	return NewOSOpener().Open(intent, path)
}
