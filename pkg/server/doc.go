// Package server provides the HTTP server for the portfolio API.
//
// It uses gorilla/mux for routing and wraps the router with panic
// recovery, request IDs, an access log, security headers, CORS, a request
// body limit and Prometheus instrumentation.
//
// # Server Setup
//
//	srv, err := server.NewServer(cfg, db, logging.Logger(), notifier)
//	if err != nil {
//	    return err
//	}
//	endpoints.RegisterAll(srv)
//	return srv.Start()
//
// # Components
//
// The Server struct holds:
//
//   - Router: HTTP request router
//   - DB: database connection
//   - Users, Blog, Projects, Messages, Health: stores
//   - Issuer: session token issuer
//   - Hasher: bcrypt password hasher
//   - Auth: authentication middleware
//   - Notifier: contact form email notifier
//   - Registry: Prometheus registry served at /metrics
package server
