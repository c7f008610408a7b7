// Package services implements the business layer of f1insights. It sits
// between the transport handlers and the analytics engine, so handlers never
// touch the dataset directly.
//
// # Available Services
//
//	- AnalyticsService: owns the loaded dataset and runs analytics actions
//	- HealthService: reports liveness, readiness and runtime statistics
//
// # Error Handling
//
// Services return sentinel errors that handlers map to HTTP problems:
//
//	- ErrDatasetNotLoaded when no dataset is attached yet
//	- ErrUnknownAction for an action id missing from the menu
//
// Errors coming from the analytics package (unknown driver or constructor)
// are wrapped and can be matched with errors.Is.
//
// # Testing
//
// Services are tested against in-memory datasets built with
// testutil.NewDataset and attached through LoadFS.
package services
