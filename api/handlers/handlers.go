package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/simforge/simforge/execution"
	"github.com/simforge/simforge/simulation"
	"github.com/simforge/simforge/storage"
)

// Simulator describes the component that handles one simulation request end to end.
type Simulator interface {
	// Simulate validates the given request, deploys its bytecode, executes its transaction sequence, and returns
	// the assembled report.
	Simulate(ctx context.Context, request *simulation.Request) (*simulation.Report, error)
}

// Analyzer describes the component that runs static analysis over submitted contract source.
type Analyzer interface {
	// Analyze runs the analyzer over the given source and returns its JSON report.
	Analyze(ctx context.Context, source string) (json.RawMessage, error)
}

// analyzeRequest describes the payload accepted by the analysis endpoint.
type analyzeRequest struct {
	Code *string `json:"code"`
}

// writeJSON encodes the given value into the response writer with the given HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// writeError encodes an `{error, details?}` response with the given HTTP status code.
func writeError(w http.ResponseWriter, status int, message string, details string) {
	body := map[string]any{"error": message}
	if details != "" {
		body["details"] = details
	}
	writeJSON(w, status, body)
}

// SimulateHandler returns the handler for the simulation endpoint. The simulation itself runs under a background
// context: an early client disconnect does not cancel in-flight commands, which run to completion or timeout.
func (s *Services) SimulateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Logger.Info("Received request on /simulate endpoint")

		// Decode the request payload.
		var request simulation.Request
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			writeError(w, http.StatusBadRequest, "Could not parse request body as JSON.", "")
			return
		}

		// Run the simulation detached from the request context.
		report, err := s.Simulator.Simulate(context.Background(), &request)
		if err != nil {
			s.persistFailure(&request, err)
			status, message, details := classifySimulationError(err)
			writeError(w, status, message, details)
			return
		}

		// Persist the report before responding, so the history endpoints see every completed simulation.
		s.persistReport(&request, report)
		writeJSON(w, http.StatusOK, report)
	}
}

// classifySimulationError maps an error from the simulator onto an HTTP status and `{error, details?}` message
// shape. No error taxonomy leaks stack traces to the caller.
func classifySimulationError(err error) (int, string, string) {
	if validationErr, ok := simulation.AsValidationError(err); ok {
		return http.StatusBadRequest, validationErr.Message, ""
	}
	if deploymentErr, ok := simulation.AsDeploymentError(err); ok {
		return http.StatusBadRequest, deploymentErr.Error(), deploymentErr.Details
	}
	if configurationErr, ok := simulation.AsConfigurationError(err); ok {
		return http.StatusInternalServerError, configurationErr.Message, ""
	}
	return http.StatusInternalServerError, "An internal server error occurred.", err.Error()
}

// persistReport records a completed simulation in the history store, if one is configured.
func (s *Services) persistReport(request *simulation.Request, report *simulation.Report) {
	if s.Store == nil {
		return
	}
	record := &storage.Record{Request: *request, Report: report}
	if err := s.Store.SaveRecord(record); err != nil {
		s.Logger.Error("Failed to persist simulation record", err)
	}
}

// persistFailure records a failed simulation attempt in the history store, if one is configured. Requests rejected
// before any side effect (validation and configuration failures) are not recorded.
func (s *Services) persistFailure(request *simulation.Request, err error) {
	if s.Store == nil {
		return
	}
	if _, ok := simulation.AsValidationError(err); ok {
		return
	}
	if _, ok := simulation.AsConfigurationError(err); ok {
		return
	}
	record := &storage.Record{Request: *request, Error: err.Error()}
	if saveErr := s.Store.SaveRecord(record); saveErr != nil {
		s.Logger.Error("Failed to persist simulation record", saveErr)
	}
}

// AnalyzeHandler returns the handler for the static analysis endpoint.
func (s *Services) AnalyzeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Logger.Info("Received request on /analyze endpoint")

		// Decode and validate the request payload.
		var request analyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			writeError(w, http.StatusBadRequest, "Could not parse request body as JSON.", "")
			return
		}
		if request.Code == nil {
			writeError(w, http.StatusBadRequest, "Invalid request. JSON payload with 'code' key is required.", "")
			return
		}
		if *request.Code == "" {
			writeError(w, http.StatusBadRequest, "The 'code' field must be a non-empty string.", "")
			return
		}

		// Run the analysis detached from the request context.
		report, err := s.Analyzer.Analyze(context.Background(), *request.Code)
		if err != nil {
			status, message, details := classifyAnalysisError(err)
			writeError(w, status, message, details)
			return
		}

		// Relay the analyzer's report verbatim.
		w.WriteHeader(http.StatusOK)
		if _, err = w.Write(report); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

// classifyAnalysisError maps an error from the analyzer onto an HTTP status and `{error, details?}` message shape.
func classifyAnalysisError(err error) (int, string, string) {
	cmdErr, ok := execution.AsCommandError(err)
	if !ok {
		return http.StatusInternalServerError, "An unexpected server error occurred.", err.Error()
	}

	switch cmdErr.Kind {
	case execution.ErrorKindToolNotFound:
		return http.StatusInternalServerError, "Server configuration error: the analyzer is not installed.", ""
	case execution.ErrorKindTimedOut:
		return http.StatusInternalServerError, "Analysis timed out.", ""
	case execution.ErrorKindOutputParse:
		return http.StatusInternalServerError, "Failed to parse the analyzer's output.", cmdErr.Raw
	default:
		return http.StatusInternalServerError, "Analyzer execution failed.", cmdErr.Stderr
	}
}

// ListSimulationsHandler returns the handler listing persisted simulation records.
func (s *Services) ListSimulationsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Without a configured store, history is an empty collection.
		if s.Store == nil {
			writeJSON(w, http.StatusOK, map[string]any{"simulations": []any{}})
			return
		}

		records, err := s.Store.ListRecords(0)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "An internal server error occurred.", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"simulations": records})
	}
}

// GetSimulationHandler returns the handler retrieving one persisted simulation record by identifier.
func (s *Services) GetSimulationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		// Without a configured store, no record exists.
		if s.Store == nil {
			writeError(w, http.StatusNotFound, "Simulation not found.", "")
			return
		}

		record, err := s.Store.GetRecord(id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "An internal server error occurred.", err.Error())
			return
		}
		if record == nil {
			writeError(w, http.StatusNotFound, "Simulation not found.", "")
			return
		}
		writeJSON(w, http.StatusOK, record)
	}
}

// NotFoundHandler writes the catch-all 404 response.
func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotFound)
	err := json.NewEncoder(w).Encode(map[string]string{"error": "Not Found"})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
