// Package server provides the HTTP API server for the governance engine.
//
// This package ties together the API handlers and middleware and provides
// server lifecycle management including start, graceful shutdown, and OS
// signal handling (SIGTERM, SIGINT).
//
// # Basic Usage
//
// Creating and starting a server:
//
//	api := handlers.NewAPI(deps)
//	srv := server.NewServer(&cfg.Server, api.Routes(), logger)
//	if err := srv.Start(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//
// # Graceful Shutdown
//
// The server shuts down gracefully on SIGTERM or SIGINT: it stops accepting
// new connections and waits for in-flight requests, so a governance run in
// progress commits or rolls back rather than being severed mid-transaction.
//
// # Middleware Chain
//
// Requests pass through the following middleware (outermost first):
//  1. Recovery: recovers from panics and returns a 500 error
//  2. RequestID: attaches a unique request ID for tracing
//  3. Logging: logs request and response details
package server
