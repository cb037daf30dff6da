package server

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang/glog"
)

// ConsoleMessage is a log line shown in the browser console
type ConsoleMessage struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "info", "warning", "error"
}

// WebLogger logs to glog and forwards each message to a render's event
// stream. Messages are dropped rather than blocking when the stream is full.
type WebLogger struct {
	events chan<- SSEEvent
}

// NewWebLogger creates a logger feeding events, which may be nil
func NewWebLogger(events chan<- SSEEvent) *WebLogger {
	return &WebLogger{events: events}
}

// Printf logs an info message
func (wl *WebLogger) Printf(format string, args ...interface{}) {
	wl.send("info", fmt.Sprintf(format, args...))
}

// Warningf logs a warning message
func (wl *WebLogger) Warningf(format string, args ...interface{}) {
	wl.send("warning", fmt.Sprintf(format, args...))
}

func (wl *WebLogger) send(level, message string) {
	if level == "warning" {
		glog.WarningDepth(2, message)
	} else {
		glog.InfoDepth(2, message)
	}
	if wl.events == nil {
		return
	}
	data, err := json.Marshal(ConsoleMessage{Message: message, Timestamp: time.Now(), Level: level})
	if err != nil {
		glog.Errorf("Error marshaling console message: %v", err)
		return
	}
	select {
	case wl.events <- SSEEvent{Type: "console", Data: string(data)}:
	default:
	}
}
