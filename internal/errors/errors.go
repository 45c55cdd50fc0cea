package errors

import (
	"errors"
	"fmt"
)

// Common error types for the bridge and its API wrapper
var (
	// Source errors. These never escape the source reader.
	ErrSourceUnavailable = errors.New("source unavailable")
	ErrSourceThrew       = errors.New("source raised an error")

	// Credential errors
	ErrCredentialsMissing = errors.New("api credentials missing")
	ErrNotLoggedIn        = errors.New("user not logged in via host")
	ErrRefreshFailed      = errors.New("credential refresh failed")
	ErrStoreCorrupt       = errors.New("credential store corrupt")

	// Downstream call errors
	ErrUnauthorized      = errors.New("unauthorized")
	ErrNetwork           = errors.New("network or timeout error")
	ErrUnsupportedMethod = errors.New("unsupported http method")

	// Lifecycle errors
	ErrAlreadyInitialized = errors.New("already initialized")
	ErrTornDown           = errors.New("torn down")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Join returns an error that wraps the given errors
func Join(errs ...error) error {
	return errors.Join(errs...)
}
