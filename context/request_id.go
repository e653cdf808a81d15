// Package context provides context utilities for request and trip tracking
package context

import (
	stdctx "context"

	"github.com/google/uuid"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey int

const (
	// RequestIDKey is the context key for request IDs
	RequestIDKey contextKey = iota
	// TripIDKey is the context key for trip IDs
	TripIDKey
)

// NewRequestID generates a new unique request ID
func NewRequestID() string {
	return uuid.New().String()
}

// WithRequestID adds a request ID to the context
func WithRequestID(parent stdctx.Context, requestID string) stdctx.Context {
	return stdctx.WithValue(parent, RequestIDKey, requestID)
}

// RequestIDFromContext extracts the request ID from the context
func RequestIDFromContext(ctx stdctx.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithTripID adds a trip ID to the context so log lines carry it
func WithTripID(parent stdctx.Context, tripID string) stdctx.Context {
	return stdctx.WithValue(parent, TripIDKey, tripID)
}

// TripIDFromContext extracts the trip ID from the context
func TripIDFromContext(ctx stdctx.Context) string {
	if tripID, ok := ctx.Value(TripIDKey).(string); ok {
		return tripID
	}
	return ""
}
