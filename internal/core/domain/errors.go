package domain

import (
	"errors"
	"fmt"

	"go.trai.ch/zerr"
)

// Error classes. Every sentinel below wraps exactly one of them so callers can
// branch on the class with errors.Is.
var (
	// ErrConfiguration marks missing or contradictory ambient inputs.
	ErrConfiguration = zerr.New("configuration error")

	// ErrCompilationFailed marks a non-zero compiler or archiver exit.
	ErrCompilationFailed = zerr.New("compilation failed")

	// ErrIO marks an unreadable source or an unwritable output location.
	ErrIO = zerr.New("io error")
)

var (
	// ErrAcceleratorSDKMissing is returned when accelerator support is requested but no SDK root is known.
	ErrAcceleratorSDKMissing = zerr.Wrap(ErrConfiguration, "accelerator SDK root not found")

	// ErrManagedRuntimeMissing is returned when managed-runtime headers are required but not locatable.
	ErrManagedRuntimeMissing = zerr.Wrap(ErrConfiguration, "managed runtime headers not found")

	// ErrManagedRuntimeLibraryMissing is returned when the managed-runtime library name is unknown.
	ErrManagedRuntimeLibraryMissing = zerr.Wrap(ErrConfiguration, "managed runtime library not found")

	// ErrAcceleratorAPIRequired is returned for an accelerator unit that disables the accelerator API.
	ErrAcceleratorAPIRequired = zerr.Wrap(ErrConfiguration, "accelerator unit requires the accelerator API")

	// ErrInvalidAcceleratorArch is returned for an accelerator arch nvcc cannot target.
	ErrInvalidAcceleratorArch = zerr.Wrap(ErrConfiguration, "invalid accelerator arch")

	// ErrInvalidSpec is returned when an extension spec is malformed.
	ErrInvalidSpec = zerr.Wrap(ErrConfiguration, "invalid extension spec")

	// ErrDuplicateUnit is returned when two specs in a session share a name.
	ErrDuplicateUnit = zerr.Wrap(ErrConfiguration, "duplicate unit name")

	// ErrUnknownUnit is returned when a requested unit is not declared in the project.
	ErrUnknownUnit = zerr.Wrap(ErrConfiguration, "unknown unit")

	// ErrToolNotFound is returned when a required compiler or archiver is not on PATH.
	ErrToolNotFound = zerr.Wrap(ErrConfiguration, "required tool not found")

	// ErrUnknownFormat is returned for an unsupported output format.
	ErrUnknownFormat = zerr.Wrap(ErrConfiguration, "unknown output format")

	// ErrProjectNotFound is returned when no project file exists at or above the given path.
	ErrProjectNotFound = zerr.Wrap(ErrConfiguration, "project file not found")

	// ErrInvalidProject is returned when the project file cannot be understood.
	ErrInvalidProject = zerr.Wrap(ErrConfiguration, "invalid project file")
)

var (
	// ErrSourceUnreadable is returned when a source path cannot be read.
	ErrSourceUnreadable = zerr.Wrap(ErrIO, "source unreadable")

	// ErrSourceNotFound is returned when a source pattern matches no files.
	ErrSourceNotFound = zerr.Wrap(ErrIO, "source not found")

	// ErrOutputUnwritable is returned when the artifact directory cannot be prepared.
	ErrOutputUnwritable = zerr.Wrap(ErrIO, "output location unwritable")
)

var (
	// ErrToolchainFrozen is returned when a consumed toolchain config is mutated.
	ErrToolchainFrozen = zerr.New("toolchain config is frozen")

	// ErrInvalidTransition is returned when a session operation is called out of order.
	ErrInvalidTransition = zerr.New("invalid session transition")

	// ErrSessionFailed is returned by every operation on a session that already failed.
	ErrSessionFailed = zerr.New("session failed")

	// ErrNoPendingSpec is returned when Prepare is called with no specs left.
	ErrNoPendingSpec = zerr.New("no pending extension spec")
)

// CompilationError carries the raw output of a failed compiler or archiver run.
type CompilationError struct {
	Unit        string
	Source      string
	ExitCode    int
	Diagnostics string
}

func (e *CompilationError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("compilation of %s failed for %s (exit code %d)", e.Unit, e.Source, e.ExitCode)
	}
	return fmt.Sprintf("compilation of %s failed (exit code %d)", e.Unit, e.ExitCode)
}

// Unwrap lets errors.Is match ErrCompilationFailed.
func (e *CompilationError) Unwrap() error {
	return ErrCompilationFailed
}

// IsConfigurationError reports whether err belongs to the configuration class.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsIOError reports whether err belongs to the io class.
func IsIOError(err error) bool {
	return errors.Is(err, ErrIO)
}

// AsCompilationError extracts the compilation details from err, if any.
func AsCompilationError(err error) (*CompilationError, bool) {
	var ce *CompilationError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
