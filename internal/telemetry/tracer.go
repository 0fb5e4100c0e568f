package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys shared by API handlers and namespace operations.
const (
	AttrPath      = "ec.path"
	AttrPolicy    = "ec.policy"
	AttrOperation = "ec.operation"
	AttrStore     = "ec.store"
	AttrSubject   = "auth.subject"
	AttrRole      = "auth.role"
	AttrHTTPRoute = "http.route"
)

// Path returns the namespace path attribute.
func Path(p string) attribute.KeyValue {
	return attribute.String(AttrPath, p)
}

// Policy returns the EC policy name attribute.
func Policy(name string) attribute.KeyValue {
	return attribute.String(AttrPolicy, name)
}

// Operation returns the admin operation attribute.
func Operation(op string) attribute.KeyValue {
	return attribute.String(AttrOperation, op)
}

// StoreType returns the namespace store backend attribute.
func StoreType(t string) attribute.KeyValue {
	return attribute.String(AttrStore, t)
}

// Subject returns the authenticated subject attribute.
func Subject(sub string) attribute.KeyValue {
	return attribute.String(AttrSubject, sub)
}

// StartStoreSpan starts a span for a namespace store call.
func StartStoreSpan(ctx context.Context, store, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	all := append([]attribute.KeyValue{StoreType(store), Operation(operation)}, attrs...)
	return StartSpan(ctx, "store."+operation, trace.WithAttributes(all...))
}
