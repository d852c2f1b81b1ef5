// Package http contains the HTTP handlers for the dashboard API. Each
// handler owns a chi sub-router, validates its inputs, delegates to the
// service layer and renders JSON through go-chi/render. Errors flow
// through the shared ErrorHandler so every failure body is RFC 7807
// problem JSON with a trace_id.
package http
