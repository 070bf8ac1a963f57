// Package ctxutil provides context utilities that can be safely imported anywhere.
// This package has no internal dependencies to avoid import cycles.
package ctxutil

import "context"

// VendorKey is the context key for the authenticated vendor ID.
type VendorKey struct{}

// EventKey is the context key for the event a workflow session acts on.
type EventKey struct{}

// RequestKey is the context key for the outbound request ID.
type RequestKey struct{}

// WithVendorID returns a context with the vendor ID embedded.
func WithVendorID(ctx context.Context, vendorID string) context.Context {
	return context.WithValue(ctx, VendorKey{}, vendorID)
}

// VendorFromContext returns the vendor ID from context, or empty string if not set.
func VendorFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(VendorKey{}).(string); ok {
		return v
	}
	return ""
}

// WithEventID returns a context with the event ID embedded.
func WithEventID(ctx context.Context, eventID string) context.Context {
	return context.WithValue(ctx, EventKey{}, eventID)
}

// EventFromContext returns the event ID from context, or empty string if not set.
func EventFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(EventKey{}).(string); ok {
		return v
	}
	return ""
}

// WithRequestID returns a context with the request ID embedded.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestKey{}, requestID)
}

// RequestFromContext returns the request ID from context, or empty string if not set.
func RequestFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(RequestKey{}).(string); ok {
		return v
	}
	return ""
}
