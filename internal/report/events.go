package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EventType represents the type of event
type EventType string

const (
	EventState   EventType = "state"
	EventLoad    EventType = "load"
	EventClean   EventType = "clean"
	EventRepair  EventType = "repair"
	EventReject  EventType = "reject"
	EventSave    EventType = "save"
	EventAnalyze EventType = "analyze"
	EventError   EventType = "error"
)

// EventLevel represents the severity level
type EventLevel string

const (
	LevelDebug   EventLevel = "debug"
	LevelInfo    EventLevel = "info"
	LevelWarning EventLevel = "warning"
	LevelError   EventLevel = "error"
)

// levelPriority maps event levels to numeric priorities for comparison
var levelPriority = map[EventLevel]int{
	LevelDebug:   0,
	LevelInfo:    1,
	LevelWarning: 2,
	LevelError:   3,
}

// Event represents a single event in the pipeline
type Event struct {
	Timestamp time.Time         `json:"ts"`
	Level     EventLevel        `json:"level"`
	Event     EventType         `json:"event"`
	RunID     string            `json:"run_id,omitempty"`
	State     string            `json:"state,omitempty"`
	Entity    string            `json:"entity,omitempty"`
	Path      string            `json:"path,omitempty"`
	Rows      int               `json:"rows,omitempty"`
	Count     int               `json:"count,omitempty"`
	Reason    string            `json:"reason,omitempty"`
	Bytes     int64             `json:"bytes,omitempty"`
	Duration  int64             `json:"duration_ms,omitempty"` // in milliseconds
	Error     string            `json:"error,omitempty"`
	Extra     map[string]string `json:"extra,omitempty"`
}

// EventLogger writes events to a JSONL file
type EventLogger struct {
	file     *os.File
	encoder  *json.Encoder
	mu       sync.Mutex
	path     string
	runID    string
	minLevel EventLevel
}

// NewEventLogger creates a new event logger with a minimum log level
// minLevel determines which events are written (e.g., LevelInfo skips LevelDebug)
func NewEventLogger(outputDir string, minLevel EventLevel) (*EventLogger, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	timestamp := time.Now().Format("20060102-150405")
	filename := fmt.Sprintf("events-%s.jsonl", timestamp)
	path := filepath.Join(outputDir, filename)

	// Append so two runs within the same second share a file
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create event log: %w", err)
	}

	return &EventLogger{
		file:     file,
		encoder:  json.NewEncoder(file),
		path:     path,
		minLevel: minLevel,
	}, nil
}

// SetRunID stamps every following event with a run id
func (l *EventLogger) SetRunID(id string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.runID = id
}

// Log writes an event to the JSONL file
func (l *EventLogger) Log(event *Event) error {
	if l == nil || l.file == nil {
		return nil // Silently ignore if logger not initialized
	}

	if levelPriority[event.Level] < levelPriority[l.minLevel] {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.RunID == "" {
		event.RunID = l.runID
	}

	if err := l.encoder.Encode(event); err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	return nil
}

// LogState logs a pipeline state transition
func (l *EventLogger) LogState(state string) error {
	return l.Log(&Event{
		Level: LevelDebug,
		Event: EventState,
		State: state,
	})
}

// LogLoad logs the outcome of reading one raw table
func (l *EventLogger) LogLoad(entity, path string, rows int, duration time.Duration, err error) error {
	level := LevelInfo
	errMsg := ""
	if err != nil {
		level = LevelError
		errMsg = err.Error()
	}

	return l.Log(&Event{
		Level:    level,
		Event:    EventLoad,
		Entity:   entity,
		Path:     path,
		Rows:     rows,
		Duration: duration.Milliseconds(),
		Error:    errMsg,
	})
}

// LogClean logs the row counts of one cleaned table
func (l *EventLogger) LogClean(entity string, inputRows, outputRows int) error {
	return l.Log(&Event{
		Level:  LevelInfo,
		Event:  EventClean,
		Entity: entity,
		Rows:   outputRows,
		Extra: map[string]string{
			"input_rows": fmt.Sprintf("%d", inputRows),
		},
	})
}

// LogRepair logs rows that were kept after a field was rewritten
func (l *EventLogger) LogRepair(entity, reason string, count int) error {
	if count == 0 {
		return nil
	}
	return l.Log(&Event{
		Level:  LevelWarning,
		Event:  EventRepair,
		Entity: entity,
		Count:  count,
		Reason: reason,
	})
}

// LogReject logs rows that were dropped for one reason
func (l *EventLogger) LogReject(entity, reason string, count int) error {
	if count == 0 {
		return nil
	}
	return l.Log(&Event{
		Level:  LevelWarning,
		Event:  EventReject,
		Entity: entity,
		Count:  count,
		Reason: reason,
	})
}

// LogSave logs the outcome of writing one cleaned table
func (l *EventLogger) LogSave(entity, path string, rows int, bytes int64, err error) error {
	level := LevelInfo
	errMsg := ""
	if err != nil {
		level = LevelError
		errMsg = err.Error()
	}

	return l.Log(&Event{
		Level:  level,
		Event:  EventSave,
		Entity: entity,
		Path:   path,
		Rows:   rows,
		Bytes:  bytes,
		Error:  errMsg,
	})
}

// LogFinding logs one analysis result
func (l *EventLogger) LogFinding(kind, label string, count int, extra map[string]string) error {
	e := &Event{
		Level:  LevelInfo,
		Event:  EventAnalyze,
		Reason: kind,
		Count:  count,
		Extra:  map[string]string{"label": label},
	}
	for k, v := range extra {
		e.Extra[k] = v
	}
	return l.Log(e)
}

// LogError logs a failure outside the pipeline stages, such as the ledger
// write after a run. source names the failing component.
func (l *EventLogger) LogError(source, path string, err error) error {
	if err == nil {
		return nil
	}
	return l.Log(&Event{
		Level:  LevelError,
		Event:  EventError,
		Reason: source,
		Path:   path,
		Error:  err.Error(),
	})
}

// Close closes the event log file
func (l *EventLogger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	return l.file.Close()
}

// Path returns the path to the event log file
func (l *EventLogger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// NullLogger returns a no-op event logger
func NullLogger() *EventLogger {
	return nil
}
