package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/simforge/simforge/logging"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// logStreamInterval describes how often new buffered log entries are flushed to a connected websocket client.
const logStreamInterval = time.Second

// logEntryMessage describes the JSON shape of one streamed log entry.
type logEntryMessage struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

// WebsocketLogsHandler returns the handler streaming buffered service logs over a websocket. On connect, all
// buffered entries are replayed; afterwards new entries are flushed periodically until the client disconnects.
func (s *Services) WebsocketLogsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Upgrade the connection.
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			s.Logger.Error("Failed to upgrade logs websocket connection", err)
			return
		}
		defer conn.Close()

		// Without a configured log buffer there is nothing to stream; close immediately.
		if s.LogBuffer == nil {
			return
		}

		// Replay everything buffered so far, tracking the timestamp of the newest entry sent.
		var lastSent time.Time
		if lastSent, err = writeEntries(conn, s.LogBuffer.GetAllEntries(), lastSent); err != nil {
			return
		}

		// Flush new entries periodically until the client goes away.
		ticker := time.NewTicker(logStreamInterval)
		defer ticker.Stop()
		for range ticker.C {
			if lastSent, err = writeEntries(conn, s.LogBuffer.GetAllEntries(), lastSent); err != nil {
				return
			}
		}
	}
}

// writeEntries sends every log entry newer than the given timestamp over the connection, returning the timestamp
// of the newest entry sent, or an error if the connection failed.
func writeEntries(conn *websocket.Conn, entries []logging.LogEntry, after time.Time) (time.Time, error) {
	newest := after
	for _, entry := range entries {
		if !entry.Timestamp.After(after) {
			continue
		}
		message := logEntryMessage{Timestamp: entry.Timestamp, Message: entry.Message}
		if err := conn.WriteJSON(message); err != nil {
			return newest, err
		}
		if entry.Timestamp.After(newest) {
			newest = entry.Timestamp
		}
	}
	return newest, nil
}
