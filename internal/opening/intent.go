package opening

import (
	"errors"
	"os"

	"github.com/temirov/fskit/internal/fserrors"
)

const (
	resolveOperationNameConstant         = "resolve open mode"
	noAccessMessageConstant              = "no file access has been specified; specify at least one of read, write, append"
	truncateWithAppendMessageConstant    = "combining truncate and append makes no sense"
	truncateWithoutWriteMessageConstant  = "truncate requires write access"
	createNewWithoutWriteMessageConstant = "create-new requires write or append access, but only had read access"
	appendWithReadMessageConstant        = "append mode cannot be combined with read access"
	modeOpenNameConstant                 = "open"
	modeOpenOrCreateNameConstant         = "open-or-create"
	modeCreateNewNameConstant            = "create-new"
	modeTruncateNameConstant             = "truncate"
	modeAppendNameConstant               = "append"
	accessReadNameConstant               = "read"
	accessWriteNameConstant              = "write"
	accessReadWriteNameConstant          = "read-write"
	shareReadWriteNameConstant           = "read-write"
	unknownNameConstant                  = "unknown"
)

// Configuration errors returned, wrapped in an fserrors.OperationError, by Resolve and Opener.Open.
var (
	ErrNoAccess              = errors.New(noAccessMessageConstant)
	ErrTruncateWithAppend    = errors.New(truncateWithAppendMessageConstant)
	ErrTruncateWithoutWrite  = errors.New(truncateWithoutWriteMessageConstant)
	ErrCreateNewWithoutWrite = errors.New(createNewWithoutWriteMessageConstant)
	ErrAppendWithRead        = errors.New(appendWithReadMessageConstant)
)

// Mode describes how an open call treats existing and missing files.
type Mode int

// Supported open modes.
const (
	ModeOpen Mode = iota
	ModeOpenOrCreate
	ModeCreateNew
	ModeTruncate
	ModeAppend
)

var modeNames = map[Mode]string{
	ModeOpen:         modeOpenNameConstant,
	ModeOpenOrCreate: modeOpenOrCreateNameConstant,
	ModeCreateNew:    modeCreateNewNameConstant,
	ModeTruncate:     modeTruncateNameConstant,
	ModeAppend:       modeAppendNameConstant,
}

// String returns the mode name.
func (mode Mode) String() string {
	if name, nameExists := modeNames[mode]; nameExists {
		return name
	}
	return unknownNameConstant
}

// Access describes the operations permitted on an opened file.
type Access int

// Supported access levels.
const (
	AccessRead Access = iota
	AccessWrite
	AccessReadWrite
)

var accessNames = map[Access]string{
	AccessRead:      accessReadNameConstant,
	AccessWrite:     accessWriteNameConstant,
	AccessReadWrite: accessReadWriteNameConstant,
}

// String returns the access name.
func (access Access) String() string {
	if name, nameExists := accessNames[access]; nameExists {
		return name
	}
	return unknownNameConstant
}

// Share describes what other processes may do with a file while it is open.
// POSIX systems do not enforce share modes, so the value is informational there.
type Share int

// ShareReadWrite allows concurrent readers and writers.
const ShareReadWrite Share = iota

// String returns the share policy name.
func (share Share) String() string {
	if share == ShareReadWrite {
		return shareReadWriteNameConstant
	}
	return unknownNameConstant
}

// ResolvedOpenMode is the open configuration derived from an Intent.
type ResolvedOpenMode struct {
	Mode   Mode
	Access Access
	Share  Share
}

var accessFlags = map[Access]int{
	AccessRead:      os.O_RDONLY,
	AccessWrite:     os.O_WRONLY,
	AccessReadWrite: os.O_RDWR,
}

var modeFlags = map[Mode]int{
	ModeOpen:         0,
	ModeOpenOrCreate: os.O_CREATE,
	ModeCreateNew:    os.O_CREATE | os.O_EXCL,
	ModeTruncate:     os.O_TRUNC,
	ModeAppend:       os.O_CREATE | os.O_APPEND,
}

// Flags returns the os.OpenFile flags for the resolved mode and access.
func (resolved ResolvedOpenMode) Flags() int {
	return accessFlags[resolved.Access] | modeFlags[resolved.Mode]
}

// Intent is an immutable description of how a file should be opened.
// The zero value requests nothing and fails to resolve. Intents compare with ==.
type Intent struct {
	create     bool
	truncate   bool
	appendMode bool
	write      bool
	read       bool
	createNew  bool
}

// NewIntent returns an intent with every flag cleared.
func NewIntent() Intent {
	return Intent{}
}

// Create requests that a missing file be created. An existing file is opened as is.
func (intent Intent) Create(create bool) Intent {
	intent.create = create
	return intent
}

// Truncate requests that an existing file be emptied on open. Requires Write; excludes Append.
func (intent Intent) Truncate(truncate bool) Intent {
	intent.truncate = truncate
	return intent
}

// Append requests that writes go to the end of the file, creating it when missing.
func (intent Intent) Append(appendMode bool) Intent {
	intent.appendMode = appendMode
	return intent
}

// Write requests write access.
func (intent Intent) Write(write bool) Intent {
	intent.write = write
	return intent
}

// Read requests read access.
func (intent Intent) Read(read bool) Intent {
	intent.read = read
	return intent
}

// CreateNew requests that a new file be created, failing when it already exists.
func (intent Intent) CreateNew(createNew bool) Intent {
	intent.createNew = createNew
	return intent
}

// Resolve computes the open mode for the intent without touching the filesystem.
func (intent Intent) Resolve() (ResolvedOpenMode, error) {
	return intent.resolveFor(resolveOperationNameConstant, "")
}

func (intent Intent) resolveFor(operation string, path string) (ResolvedOpenMode, error) {
	mode, modeError := intent.resolveMode()
	if modeError != nil {
		return ResolvedOpenMode{}, fserrors.New(fserrors.KindInvalidConfiguration, operation, path, modeError)
	}

	access, accessError := intent.resolveAccess()
	if accessError != nil {
		return ResolvedOpenMode{}, fserrors.New(fserrors.KindInvalidConfiguration, operation, path, accessError)
	}

	return ResolvedOpenMode{Mode: mode, Access: access, Share: ShareReadWrite}, nil
}

func (intent Intent) resolveAccess() (Access, error) {
	switch {
	case intent.read && intent.write:
		return AccessReadWrite, nil
	case intent.read:
		return AccessRead, nil
	case intent.write || intent.appendMode:
		return AccessWrite, nil
	default:
		return 0, ErrNoAccess
	}
}

func (intent Intent) resolveMode() (Mode, error) {
	switch {
	case intent.truncate && intent.appendMode:
		return 0, ErrTruncateWithAppend
	case intent.truncate && !intent.write:
		return 0, ErrTruncateWithoutWrite
	case intent.truncate:
		return ModeTruncate, nil
	case intent.createNew && (intent.write || intent.appendMode):
		return ModeCreateNew, nil
	case intent.createNew:
		return 0, ErrCreateNewWithoutWrite
	case intent.create:
		return ModeOpenOrCreate, nil
	case intent.appendMode:
		return ModeAppend, nil
	default:
		return ModeOpen, nil
	}
}
