// Package http implements the HTTP handlers of the F1 insights web service.
// Handlers stay thin: they parse and validate the request, call the
// analytics or health service, and format the response.
//
// # Routes
//
//	GET  /api/health, /api/health/ready, /api/health/live, /api/health/detailed
//	GET  /api/version
//	GET  /api/menu
//	GET  /api/datasets
//	GET  /api/drivers, /api/constructors
//	GET  /api/analytics/{action}
//	GET  /api/analytics/{action}/defaults
//	GET  /api/analytics/{action}/export?format=xlsx|csv
//	POST /api/client-log
//
// Successful JSON responses have the shape
//
//	{"status": "success", "data": ..., "count": n}
//
// # Error Handling
//
// Errors are rendered as RFC 7807 problem details by the shared error
// handler. Service and analytics sentinels are mapped first:
//
//	services.ErrDatasetNotLoaded        503 /errors/dataset/not-loaded
//	services.ErrUnknownAction           404 /errors/analytics/action-not-found
//	analytics.ErrUnknownDriver          404 /errors/analytics/entity-not-found
//	analytics.ErrUnknownConstructor     404 /errors/analytics/entity-not-found
//	context.DeadlineExceeded            504 /errors/timeout
//
// Handlers are tested with httptest against testify mocks of the service
// interfaces.
package http
