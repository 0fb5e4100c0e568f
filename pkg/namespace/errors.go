package namespace

import "errors"

// Errors returned by Namespace operations. Callers match them with errors.Is;
// the API layer maps each one to a problem response.
var (
	// ErrNotFound indicates the path does not exist in the namespace.
	ErrNotFound = errors.New("path not found")

	// ErrAlreadyExists indicates a create targeted an existing path.
	ErrAlreadyExists = errors.New("path already exists")

	// ErrNotDirectory indicates the operation requires a directory.
	ErrNotDirectory = errors.New("not a directory")

	// ErrInvalidPath indicates a malformed namespace path.
	ErrInvalidPath = errors.New("invalid path")

	// ErrUnknownPolicy indicates the policy name is not in the catalog.
	ErrUnknownPolicy = errors.New("unknown erasure coding policy")

	// ErrPolicyDisabled indicates the policy exists but is not enabled.
	ErrPolicyDisabled = errors.New("erasure coding policy is disabled")

	// ErrNoPolicySet indicates an unset on a path without an explicit policy.
	ErrNoPolicySet = errors.New("no erasure coding policy set")
)

// ErrStoreClosed is returned by stores after Close.
var ErrStoreClosed = errors.New("namespace store is closed")

// ErrorCode returns the exception-style code clients show for err, or "" when
// err does not wrap a namespace error. The REST API carries the same code in
// its problem responses.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "FileNotFoundException"
	case errors.Is(err, ErrUnknownPolicy), errors.Is(err, ErrPolicyDisabled):
		return "HadoopIllegalArgumentException"
	case errors.Is(err, ErrNotDirectory):
		return "IllegalArgumentException"
	case errors.Is(err, ErrNoPolicySet):
		return "NoECPolicySetException"
	case errors.Is(err, ErrAlreadyExists):
		return "FileAlreadyExistsException"
	case errors.Is(err, ErrInvalidPath):
		return "InvalidPathException"
	case errors.Is(err, ErrStoreClosed):
		return "IOException"
	default:
		return ""
	}
}
