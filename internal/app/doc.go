// Package app wires the sales dashboard together and manages its lifecycle.
//
// # Initialization Flow
//
//	1. Load configuration from defaults, config.yaml and SALESDASH_* variables
//	2. Initialize logging and OpenTelemetry
//	3. Create the session store, loader, validator and services
//	4. Set up middleware and routes
//	5. Create the HTTP server
//
// # Usage
//
//	app, err := app.NewApplication()
//	if err != nil {
//	    return err
//	}
//	return app.Run(ctx)
//
// # Graceful Shutdown
//
// Run returns when its context is cancelled or on SIGINT/SIGTERM. In-flight
// requests get Server.ShutdownTimeout to finish and telemetry is flushed.
// Expired sessions are swept in the background while the server runs.
//
// The package never calls os.Exit; errors go back to main.
package app
