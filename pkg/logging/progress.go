package logging

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/eunmann/pg-keybench/pkg/humanfmt"
)

// recentWindow is the number of recent durations the ETA averages over.
const recentWindow = 10

// ProgressTracker tracks completed and skipped items of a bounded phase
// (benchmark iterations, seed batches) and estimates the time remaining.
// It is not safe for concurrent use.
type ProgressTracker struct {
	total     int64
	completed int64
	skipped   int64
	startTime time.Time
	log       zerolog.Logger
	phase     string

	recent []time.Duration

	// lastDecile is the last 10% step reported by LogProgress.
	lastDecile int64
}

// NewProgressTracker creates a new progress tracker.
func NewProgressTracker(phase string, total int64, log zerolog.Logger) *ProgressTracker {
	return &ProgressTracker{
		total:     total,
		startTime: time.Now(),
		log:       log,
		phase:     phase,
		recent:    make([]time.Duration, 0, recentWindow),
	}
}

// RecordCompletion records that an item completed with the given duration.
func (pt *ProgressTracker) RecordCompletion(d time.Duration) {
	pt.completed++
	if len(pt.recent) == recentWindow {
		copy(pt.recent, pt.recent[1:])
		pt.recent = pt.recent[:recentWindow-1]
	}
	pt.recent = append(pt.recent, d)
}

// RecordSkip records that an item was skipped.
func (pt *ProgressTracker) RecordSkip() {
	pt.skipped++
}

// Progress returns current progress stats.
func (pt *ProgressTracker) Progress() (completed, skipped, total int64) {
	return pt.completed, pt.skipped, pt.total
}

// ProgressPct returns the progress percentage (0-100).
func (pt *ProgressTracker) ProgressPct() float64 {
	if pt.total == 0 {
		return 100.0
	}
	return float64(pt.completed+pt.skipped) * 100.0 / float64(pt.total)
}

// ETA returns the estimated time remaining from the moving average of recent
// completions.
func (pt *ProgressTracker) ETA() time.Duration {
	if pt.completed == 0 {
		return 0
	}
	remaining := pt.Remaining()
	if remaining <= 0 {
		return 0
	}

	var sum time.Duration
	for _, d := range pt.recent {
		sum += d
	}
	return sum / time.Duration(len(pt.recent)) * time.Duration(remaining)
}

// Elapsed returns time since tracking started.
func (pt *ProgressTracker) Elapsed() time.Duration {
	return time.Since(pt.startTime)
}

// Remaining returns how many items are remaining.
func (pt *ProgressTracker) Remaining() int64 {
	return pt.total - pt.completed - pt.skipped
}

// Completed returns only the completed count (not skipped).
func (pt *ProgressTracker) Completed() int64 {
	return pt.completed
}

// Total returns the total count.
func (pt *ProgressTracker) Total() int64 {
	return pt.total
}

// LogProgress emits a progress event each time another 10% of the phase is
// done, and always for the final item. It reports whether an event was
// written.
func (pt *ProgressTracker) LogProgress() bool {
	done := pt.completed + pt.skipped
	if pt.total <= 0 || done == 0 {
		return false
	}
	decile := done * 10 / pt.total
	if decile == pt.lastDecile && done < pt.total {
		return false
	}
	pt.lastDecile = decile

	e := pt.log.Info().
		Str("event", "progress").
		Str("phase", pt.phase).
		Int64("completed", pt.completed).
		Int64("skipped", pt.skipped).
		Int64("total", pt.total).
		Float64("progress_pct", pt.ProgressPct())
	if eta := pt.ETA(); eta > 0 {
		e = e.Int64("eta_ms", eta.Milliseconds())
		if IsPrettyMode() {
			e = e.Str("eta_h", humanfmt.Duration(eta))
		}
	}
	e.Msg("progress")
	return true
}

// CompletionEvent helps build consistent completion log events.
type CompletionEvent struct {
	log     zerolog.Logger
	event   string
	phase   string
	elapsed time.Duration
	fields  map[string]any
}

// NewCompletionEvent creates a new completion event builder.
func NewCompletionEvent(log zerolog.Logger, event, phase string, elapsed time.Duration) *CompletionEvent {
	return &CompletionEvent{
		log:     log,
		event:   event,
		phase:   phase,
		elapsed: elapsed,
		fields:  make(map[string]any),
	}
}

// Str adds a string field.
func (ce *CompletionEvent) Str(key, val string) *CompletionEvent {
	ce.fields[key] = val
	return ce
}

// Int adds an int field.
func (ce *CompletionEvent) Int(key string, val int) *CompletionEvent {
	ce.fields[key] = val
	return ce
}

// Dur adds a duration in milliseconds, with a human-readable companion in
// pretty mode.
func (ce *CompletionEvent) Dur(key string, d time.Duration) *CompletionEvent {
	ce.fields[key+"_ms"] = float64(d.Nanoseconds()) / 1e6
	if IsPrettyMode() {
		ce.fields[key+"_h"] = humanfmt.Duration(d)
	}
	return ce
}

// Bytes adds byte count with optional human-readable companion.
func (ce *CompletionEvent) Bytes(key string, bytes int64) *CompletionEvent {
	ce.fields[key] = bytes
	if IsPrettyMode() {
		ce.fields[key+"_h"] = humanfmt.Bytes(bytes)
	}
	return ce
}

// Count adds count with optional human-readable companion.
func (ce *CompletionEvent) Count(key string, n int64) *CompletionEvent {
	ce.fields[key] = n
	if IsPrettyMode() {
		ce.fields[key+"_h"] = humanfmt.Count(n)
	}
	return ce
}

// ProgressFromTracker adds completed, skipped and total from a ProgressTracker.
func (ce *CompletionEvent) ProgressFromTracker(pt *ProgressTracker) *CompletionEvent {
	completed, skipped, total := pt.Progress()
	ce.fields["completed"] = completed
	ce.fields["skipped"] = skipped
	ce.fields["total"] = total
	return ce
}

// Log emits the completion event.
func (ce *CompletionEvent) Log(msg string) {
	e := ce.log.Info().
		Str("event", ce.event).
		Str("phase", ce.phase).
		Int64("duration_ms", ce.elapsed.Milliseconds())

	if IsPrettyMode() {
		e = e.Str("duration_h", humanfmt.Duration(ce.elapsed))
	}

	for k, v := range ce.fields {
		e = e.Interface(k, v)
	}

	e.Msg(msg)
}

// StrategyComplete starts the event logged when a strategy finishes.
func StrategyComplete(log zerolog.Logger, strategy string, elapsed time.Duration) *CompletionEvent {
	return NewCompletionEvent(log, "strategy_completed", "benchmark", elapsed).Str("strategy", strategy)
}

// PhaseComplete starts the event logged when a phase such as seeding or
// reporting finishes.
func PhaseComplete(log zerolog.Logger, phase string, elapsed time.Duration) *CompletionEvent {
	return NewCompletionEvent(log, "phase_completed", phase, elapsed)
}
