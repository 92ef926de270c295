// Package common provides shared utilities including stage timing.
package common

import (
	"fmt"
	"time"
)

// Timer measures the duration of a pipeline stage.
type Timer struct {
	start    time.Time
	name     string
	duration time.Duration
}

// NewNamedTimer creates a timer labelled with a stage name.
func NewNamedTimer(name string) *Timer {
	return &Timer{name: name, start: time.Now()}
}

// Stop stops the timer and returns the elapsed duration.
func (t *Timer) Stop() time.Duration {
	t.duration = time.Since(t.start)
	return t.duration
}

// Duration returns the recorded duration (only valid after Stop()).
func (t *Timer) Duration() time.Duration {
	return t.duration
}

// Name returns the timer name (empty string if unnamed).
func (t *Timer) Name() string {
	return t.name
}

// String returns a formatted string representation of the timer.
func (t *Timer) String() string {
	if t.name != "" {
		return fmt.Sprintf("%s: %v", t.name, t.duration)
	}
	return fmt.Sprintf("%v", t.duration)
}

// StageTimings accumulates named stage durations for result reporting.
type StageTimings map[string]time.Duration

// Record stores the stopped timer's duration under its name.
func (s StageTimings) Record(t *Timer) {
	if t == nil || t.Name() == "" {
		return
	}
	s[t.Name()] = t.Duration()
}
