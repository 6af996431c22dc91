// Package handler provides shared constants and helpers for web handlers.
package handler

const (
	// RootPath is the root path of the route group.
	RootPath = "/"

	// ErrNilACDFatalLogMsg is used if app or cfg or db var pointer is nil.
	ErrNilACDFatalLogMsg = "app, cfg or db is nil"

	// DefaultPageSize for pagination.
	DefaultPageSize = 10

	// MaxPageSize caps the pageSize query parameter.
	MaxPageSize = 100
)
