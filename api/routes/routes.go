package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/simforge/simforge/api/handlers"
)

func attachSimulationRoutes(router *mux.Router, services *handlers.Services) {
	router.HandleFunc("/simulate", services.SimulateHandler()).Methods("POST")
	router.HandleFunc("/simulations", services.ListSimulationsHandler()).Methods("GET")
	router.HandleFunc("/simulations/{id}", services.GetSimulationHandler()).Methods("GET")
}

func attachAnalysisRoutes(router *mux.Router, services *handlers.Services) {
	router.HandleFunc("/analyze", services.AnalyzeHandler()).Methods("POST")
}

func attachStatusRoutes(router *mux.Router, services *handlers.Services) {
	router.HandleFunc("/status", services.StatusHandler()).Methods("GET")
}

func attachWebsocketRoutes(router *mux.Router, services *handlers.Services) {
	router.HandleFunc("/ws/logs", services.WebsocketLogsHandler()).Methods("GET")
}

func AttachRoutes(router *mux.Router, services *handlers.Services) {
	// Register routes
	attachSimulationRoutes(router, services)
	attachAnalysisRoutes(router, services)
	attachStatusRoutes(router, services)
	attachWebsocketRoutes(router, services)

	// Catch-all 404 handler
	router.NotFoundHandler = http.HandlerFunc(handlers.NotFoundHandler)
}
