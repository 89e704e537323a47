package fserrors

import (
	"errors"
	"fmt"
	"io/fs"
)

const (
	invalidArgumentKindNameConstant      = "invalid argument"
	invalidConfigurationKindNameConstant = "invalid configuration"
	alreadyExistsKindNameConstant        = "already exists"
	notFoundKindNameConstant             = "not found"
	permissionDeniedKindNameConstant     = "permission denied"
	ioFailureKindNameConstant            = "i/o failure"
	unknownKindNameConstant              = "unknown"
	operationErrorWithPathTemplate       = "%s %s: %s"
	operationErrorWithoutPathTemplate    = "%s: %s"
	operationErrorCauseTemplate          = "%s: %v"
)

// Kind classifies filesystem failures independently of the operating system.
type Kind int

// Supported failure kinds.
const (
	KindIOFailure Kind = iota
	KindInvalidArgument
	KindInvalidConfiguration
	KindAlreadyExists
	KindNotFound
	KindPermissionDenied
)

// Sentinel errors matched by OperationError values of the corresponding kind.
var (
	ErrInvalidArgument      = errors.New(invalidArgumentKindNameConstant)
	ErrInvalidConfiguration = errors.New(invalidConfigurationKindNameConstant)
	ErrAlreadyExists        = errors.New(alreadyExistsKindNameConstant)
	ErrNotFound             = errors.New(notFoundKindNameConstant)
	ErrPermissionDenied     = errors.New(permissionDeniedKindNameConstant)
	ErrIOFailure            = errors.New(ioFailureKindNameConstant)
)

var kindSentinels = map[Kind]error{
	KindIOFailure:            ErrIOFailure,
	KindInvalidArgument:      ErrInvalidArgument,
	KindInvalidConfiguration: ErrInvalidConfiguration,
	KindAlreadyExists:        ErrAlreadyExists,
	KindNotFound:             ErrNotFound,
	KindPermissionDenied:     ErrPermissionDenied,
}

var kindStandardLibraryEquivalents = map[Kind]error{
	KindAlreadyExists:    fs.ErrExist,
	KindNotFound:         fs.ErrNotExist,
	KindPermissionDenied: fs.ErrPermission,
}

// String returns the human-readable kind name.
func (kind Kind) String() string {
	sentinel, sentinelExists := kindSentinels[kind]
	if !sentinelExists {
		return unknownKindNameConstant
	}
	return sentinel.Error()
}

// OperationError describes a failed filesystem operation and the path it targeted.
type OperationError struct {
	Kind      Kind
	Operation string
	Path      string
	Err       error
}

// Error renders the operation, path, and cause.
func (operationError *OperationError) Error() string {
	description := operationError.Kind.String()
	if operationError.Err != nil {
		description = fmt.Sprintf(operationErrorCauseTemplate, description, operationError.Err)
	}
	if len(operationError.Path) == 0 {
		return fmt.Sprintf(operationErrorWithoutPathTemplate, operationError.Operation, description)
	}
	return fmt.Sprintf(operationErrorWithPathTemplate, operationError.Operation, operationError.Path, description)
}

// Unwrap exposes the underlying cause.
func (operationError *OperationError) Unwrap() error {
	return operationError.Err
}

// Is reports whether target is the sentinel for this error's kind or its io/fs equivalent.
func (operationError *OperationError) Is(target error) bool {
	if sentinel, sentinelExists := kindSentinels[operationError.Kind]; sentinelExists && target == sentinel {
		return true
	}
	if equivalent, equivalentExists := kindStandardLibraryEquivalents[operationError.Kind]; equivalentExists && target == equivalent {
		return true
	}
	return false
}

// New constructs an OperationError of the given kind.
func New(kind Kind, operation string, path string, cause error) *OperationError {
	return &OperationError{Kind: kind, Operation: operation, Path: path, Err: cause}
}

// InvalidArgument reports a rejected input value.
func InvalidArgument(operation string, path string, message string) *OperationError {
	return New(KindInvalidArgument, operation, path, errors.New(message))
}

// InvalidConfiguration reports contradictory or insufficient options.
func InvalidConfiguration(operation string, path string, message string) *OperationError {
	return New(KindInvalidConfiguration, operation, path, errors.New(message))
}

// AlreadyExists reports a target that is present when it must not be.
func AlreadyExists(operation string, path string) *OperationError {
	return New(KindAlreadyExists, operation, path, nil)
}

// FromOSError classifies an error returned by an OS primitive. A nil cause yields nil.
func FromOSError(operation string, path string, cause error) error {
	if cause == nil {
		return nil
	}

	var existingOperationError *OperationError
	if errors.As(cause, &existingOperationError) {
		return existingOperationError
	}

	return New(KindOf(cause), operation, path, cause)
}

// KindOf maps an arbitrary error to the closest Kind.
func KindOf(cause error) Kind {
	var operationError *OperationError
	switch {
	case cause == nil:
		return KindIOFailure
	case errors.As(cause, &operationError):
		return operationError.Kind
	case errors.Is(cause, fs.ErrExist):
		return KindAlreadyExists
	case errors.Is(cause, fs.ErrNotExist):
		return KindNotFound
	case errors.Is(cause, fs.ErrPermission):
		return KindPermissionDenied
	default:
		return KindIOFailure
	}
}
