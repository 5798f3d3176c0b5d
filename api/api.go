package api

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/simforge/simforge/api/handlers"
	"github.com/simforge/simforge/api/middleware"
	"github.com/simforge/simforge/api/routes"
	"github.com/simforge/simforge/config"
	"github.com/simforge/simforge/logging"
)

// portProbeAttempts describes how many consecutive ports are tried when the configured port is taken.
const portProbeAttempts = 10

// Start runs the API server until the provided context is cancelled or the server fails. If the configured port
// is taken, the next free port is probed, up to a bounded number of attempts.
// Returns an error if the server could not be started or terminated abnormally.
func Start(ctx context.Context, serverConfig config.ServerConfig, services *handlers.Services, logger *logging.Logger) error {
	// Create a new router
	router := mux.NewRouter()

	// Attach middleware
	middleware.AttachMiddleware(router)

	// Attach routes
	routes.AttachRoutes(router, services)

	// Get the server's custom sub-logger
	serverLogger := logger.NewSubLogger("module", "api")

	// Bind the listener, probing successive ports if the configured one is taken.
	var (
		listener net.Listener
		err      error
	)
	port := serverConfig.Port
	for i := 0; i < portProbeAttempts; i++ {
		listener, err = net.Listen("tcp", fmt.Sprintf("%s:%d", serverConfig.Host, port))
		if err == nil {
			break
		}

		serverLogger.Info("Server failed to start on port ", port)
		port++
	}

	// Stop further execution if the server failed to start
	if listener == nil {
		return fmt.Errorf("failed to start server: %v", err)
	}

	serverLogger.Info("Server started on port ", port)

	// Start the server in a separate goroutine
	serverErrorChan := make(chan error, 1)
	go func() {
		serverErrorChan <- http.Serve(listener, router)
	}()

	// Gracefully shutdown the server if the context is cancelled or a server error is encountered
	select {
	case <-ctx.Done():
		serverLogger.Info("Shutting down server due to context cancellation")
		if err = listener.Close(); err != nil {
			serverLogger.Error("Error closing listener: ", err)
		}
		return nil
	case err = <-serverErrorChan:
		return fmt.Errorf("server error: %v", err)
	}
}
