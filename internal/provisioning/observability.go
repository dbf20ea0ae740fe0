package provisioning

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
)

// Observer defines the interface for structured observability during provisioning.
type Observer interface {
	// Printf logs a free-form message.
	Printf(format string, v ...any)

	// Event emits a structured event
	Event(event Event)

	// Progress reports progress of a long-running step
	Progress(step string, current, total int)

	// WithFields returns a new Observer with additional context fields
	WithFields(fields map[string]string) Observer
}

// Event represents a structured provisioning event.
type Event struct {
	Type      EventType         // Type of event
	Step      string            // Step ID if applicable
	Message   string            // Human-readable message
	Resource  string            // Resource name if applicable
	Err       error             // Cause of a failure event
	Timestamp time.Time         // When the event occurred
	Fields    map[string]string // Additional contextual fields
}

// EventType represents the type of provisioning event.
type EventType string

const (
	// EventStepStarted indicates a step has started.
	EventStepStarted EventType = "step.started"
	// EventStepCompleted indicates a step completed successfully.
	EventStepCompleted EventType = "step.completed"
	// EventStepFailed indicates a step failed or its precondition was unmet.
	EventStepFailed EventType = "step.failed"
	// EventStepSkipped indicates a step was already complete.
	EventStepSkipped EventType = "step.skipped"

	// EventResourceCreated indicates a resource was created.
	EventResourceCreated EventType = "resource.created"
	// EventResourceExists indicates a resource already existed.
	EventResourceExists EventType = "resource.exists"
	// EventResourceChanged indicates an existing resource was modified.
	EventResourceChanged EventType = "resource.changed"

	// EventProgress indicates progress in a long-running operation.
	EventProgress EventType = "progress"
)

// NewLogger returns a logr.Logger writing key/value lines to w. Events at
// V(level) with level above verbosity are dropped.
func NewLogger(w io.Writer, verbosity int) logr.Logger {
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			fmt.Fprintf(w, "%s: %s\n", prefix, args)
			return
		}
		fmt.Fprintln(w, args)
	}, funcr.Options{
		LogTimestamp:    true,
		TimestampFormat: time.TimeOnly,
		Verbosity:       verbosity,
	})
}

// ConsoleObserver implements Observer on top of a logr.Logger.
type ConsoleObserver struct {
	log           logr.Logger
	contextFields map[string]string
}

// NewConsoleObserver creates an observer logging to log.
func NewConsoleObserver(log logr.Logger) *ConsoleObserver {
	return &ConsoleObserver{
		log:           log,
		contextFields: make(map[string]string),
	}
}

// NewStderrObserver creates a console observer writing to stderr.
func NewStderrObserver(verbosity int) *ConsoleObserver {
	return NewConsoleObserver(NewLogger(os.Stderr, verbosity))
}

// Printf implements Observer.
func (o *ConsoleObserver) Printf(format string, v ...any) {
	o.log.Info(fmt.Sprintf(format, v...), o.keysAndValues(nil)...)
}

// Event implements Observer.
func (o *ConsoleObserver) Event(event Event) {
	extra := make(map[string]string, len(event.Fields)+2)
	for k, v := range event.Fields {
		extra[k] = v
	}
	if event.Step != "" {
		extra["step"] = event.Step
	}
	if event.Resource != "" {
		extra["resource"] = event.Resource
	}
	kv := append([]any{"event", string(event.Type)}, o.keysAndValues(extra)...)

	if event.Err != nil {
		o.log.Error(event.Err, event.Message, kv...)
		return
	}
	o.log.V(eventLevel(event.Type)).Info(event.Message, kv...)
}

// Progress implements Observer.
func (o *ConsoleObserver) Progress(step string, current, total int) {
	kv := append([]any{"event", string(EventProgress)}, o.keysAndValues(map[string]string{"step": step})...)
	kv = append(kv, "current", current, "total", total)
	if total > 0 {
		kv = append(kv, "percent", (current*100)/total)
	}
	o.log.V(1).Info("progress", kv...)
}

// WithFields implements Observer.
func (o *ConsoleObserver) WithFields(fields map[string]string) Observer {
	newFields := make(map[string]string, len(o.contextFields)+len(fields))
	for k, v := range o.contextFields {
		newFields[k] = v
	}
	for k, v := range fields {
		newFields[k] = v
	}
	return &ConsoleObserver{log: o.log, contextFields: newFields}
}

// keysAndValues merges context fields with extra, extra taking precedence,
// in sorted key order.
func (o *ConsoleObserver) keysAndValues(extra map[string]string) []any {
	merged := make(map[string]string, len(o.contextFields)+len(extra))
	for k, v := range o.contextFields {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	kv := make([]any, 0, 2*len(keys))
	for _, k := range keys {
		kv = append(kv, k, merged[k])
	}
	return kv
}

// Skipped steps and unchanged resources are only shown with -v.
func eventLevel(t EventType) int {
	switch t {
	case EventStepSkipped, EventResourceExists, EventProgress:
		return 1
	default:
		return 0
	}
}

// Helper functions for common events

// LogStepStart logs a step start event.
func LogStepStart(observer Observer, step StepID, description string) {
	observer.Event(Event{
		Type:    EventStepStarted,
		Step:    string(step),
		Message: description,
	})
}

// LogStepComplete logs a step completion event.
func LogStepComplete(observer Observer, step StepID, duration time.Duration) {
	observer.Event(Event{
		Type:    EventStepCompleted,
		Step:    string(step),
		Message: fmt.Sprintf("completed in %v", duration.Round(time.Millisecond)),
	})
}

// LogStepFailed logs a step failure event.
func LogStepFailed(observer Observer, step StepID, err error) {
	observer.Event(Event{
		Type:    EventStepFailed,
		Step:    string(step),
		Message: "failed",
		Err:     err,
	})
}

// LogStepSkipped logs a step that was already complete.
func LogStepSkipped(observer Observer, step StepID) {
	observer.Event(Event{
		Type:    EventStepSkipped,
		Step:    string(step),
		Message: "already complete",
	})
}

// LogResource logs the outcome of an ensure call on a resource.
func LogResource(observer Observer, step StepID, kind, name, id string, created bool) {
	event := Event{
		Type:     EventResourceExists,
		Step:     string(step),
		Resource: name,
		Message:  fmt.Sprintf("%s already exists", kind),
		Fields:   map[string]string{"type": kind},
	}
	if created {
		event.Type = EventResourceCreated
		event.Message = fmt.Sprintf("%s created", kind)
	}
	if id != "" {
		event.Fields["id"] = id
	}
	observer.Event(event)
}

// LogChange logs whether a guest resource had to be modified.
func LogChange(observer Observer, step StepID, kind, name string, changed bool) {
	event := Event{
		Type:     EventResourceExists,
		Step:     string(step),
		Resource: name,
		Message:  fmt.Sprintf("%s already in place", kind),
		Fields:   map[string]string{"type": kind},
	}
	if changed {
		event.Type = EventResourceChanged
		event.Message = fmt.Sprintf("%s configured", kind)
	}
	observer.Event(event)
}
