// Package observability builds the process logger and derives
// request-scoped loggers from the request context.
package observability
