package handlers

import (
	"net/http"

	"github.com/simforge/simforge/logging"
	"github.com/simforge/simforge/node"
	"github.com/simforge/simforge/storage"
	"github.com/simforge/simforge/version"
)

// NodeInfo describes the read-only view of the supervised node exposed to the API. Requests never restart or
// reconfigure the node; they only observe it.
type NodeInfo interface {
	// State returns the lifecycle state of the node process.
	State() node.State

	// Endpoint returns the fixed local RPC address the node listens on.
	Endpoint() string
}

// Services aggregates the components the API handlers dispatch into.
type Services struct {
	// Simulator describes the component handling simulation requests.
	Simulator Simulator

	// Analyzer describes the component handling static analysis requests.
	Analyzer Analyzer

	// Store describes the simulation history store. May be nil when history persistence is not configured.
	Store *storage.Store

	// Node describes the read-only view of the supervised node.
	Node NodeInfo

	// LogBuffer describes the buffered service logs streamed over the logs websocket. May be nil.
	LogBuffer *logging.LogBufferWriter

	// ToolVersions describes the versions of the external tools probed at service start, keyed by binary name.
	ToolVersions map[string]string

	// Logger describes the API's log object
	Logger *logging.Logger
}

// StatusHandler returns the handler reporting service, node and tool status.
func (s *Services) StatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"version": version.GetInfo().Short(),
			"node": map[string]any{
				"state":    s.Node.State(),
				"endpoint": s.Node.Endpoint(),
			},
			"tools": s.ToolVersions,
		})
	}
}
