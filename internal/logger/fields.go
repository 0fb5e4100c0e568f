package logger

import "log/slog"

// Standard field keys. Use them consistently so server and CLI logs can be
// queried the same way.
const (
	KeyTraceID   = "trace_id"
	KeySpanID    = "span_id"
	KeyRequestID = "request_id"
	KeyOperation = "operation"
	KeyPath      = "path"
	KeyPolicy    = "policy"
	KeySubject   = "subject"
	KeyStore     = "store"
	KeyError     = "error"
	KeyStatus    = "status"
)

// Path returns a path attribute.
func Path(p string) slog.Attr { return slog.String(KeyPath, p) }

// Policy returns an EC policy name attribute.
func Policy(name string) slog.Attr { return slog.String(KeyPolicy, name) }

// Operation returns an operation attribute.
func Operation(op string) slog.Attr { return slog.String(KeyOperation, op) }

// Err returns an error attribute; a nil error yields an empty attr that
// handlers skip.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}
