// Package app wires the F1 Insights web server together and manages its
// lifecycle.
//
// # Initialization Flow
//
//	1. Load configuration from environment and the optional config file
//	2. Initialize logging and OpenTelemetry
//	3. Create the analytics, health and websocket services
//	4. Set up the chi router, middleware and handlers
//	5. Load the dataset and start the HTTP server
//
// # Usage
//
//	application, err := app.NewApplication(frontendFS)
//	if err != nil {
//	    return err
//	}
//	return application.Run()
//
// # Graceful Shutdown
//
// Run waits for SIGINT or SIGTERM, then tells open dashboard sessions the
// server is going away, drains in-flight requests and flushes telemetry.
//
// # Error Handling
//
// Initialization errors are returned to the caller. A dataset that fails to
// load aborts Start; the package never calls os.Exit.
package app
