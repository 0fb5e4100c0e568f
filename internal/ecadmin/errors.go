package ecadmin

import (
	"errors"
	"strings"

	"github.com/marmos91/ecfs/pkg/namespace"
)

// Exit statuses returned by Dispatcher.Run.
const (
	ExitOK       = 0
	ExitUsage    = 1  // missing or extra arguments, unknown command
	ExitRemote   = 2  // the namespace service rejected or failed the call
	ExitArgument = -1 // malformed argument value caught by the dispatcher
)

// UsageError reports a command line that does not match a command's options.
// It is detected before any remote call.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string { return e.Message }

// ArgumentError reports an argument whose value cannot be used, such as an
// option without its value or an unparsable path. Commands return it to the
// dispatcher instead of handling it themselves.
type ArgumentError struct {
	Message string
}

func (e *ArgumentError) Error() string { return e.Message }

// ErrorCode implements codedError.
func (e *ArgumentError) ErrorCode() string { return "IllegalArgumentException" }

// ErrorDetail implements codedError.
func (e *ArgumentError) ErrorDetail() string { return e.Message }

// codedError is implemented by errors that carry an exception-style code,
// such as API problem responses decoded by the REST client.
type codedError interface {
	ErrorCode() string
	ErrorDetail() string
}

// Prettify renders err as a single line for end users: "<Code>: <detail>"
// when a code is known, else the first line of the message.
func Prettify(err error) string {
	if err == nil {
		return ""
	}

	var coded codedError
	if errors.As(err, &coded) && coded.ErrorCode() != "" {
		return coded.ErrorCode() + ": " + firstLine(coded.ErrorDetail())
	}
	if code := namespace.ErrorCode(err); code != "" {
		return code + ": " + firstLine(err.Error())
	}
	return firstLine(err.Error())
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
