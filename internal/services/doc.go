// Package services implements the business logic layer between the HTTP
// handlers and the data packages. DashboardService owns the loaded
// dataset and exposes the aggregation, trend and forecast operations;
// ExportService turns those results into downloadable documents;
// HealthService reports process and data readiness.
//
// Services take a context.Context on every operation, log through an
// injected *slog.Logger and return typed errors from internal/errors so
// the transport layer can map them to HTTP status codes.
package services
