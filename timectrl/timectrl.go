// Package timectrl steps a simulated clock across a time window and
// notifies listeners at every step.
package timectrl

import (
	"errors"
	"time"
)

// ErrInvalidTick is returned by Run when the controller has no positive tick.
var ErrInvalidTick = errors.New("timectrl: tick must be > 0")

// Listener is invoked at every step. Returning an error stops the run.
type Listener func(time.Time) error

// TimeController drives simulation time and notifies registered listeners.
// It runs on the caller's goroutine.
type TimeController struct {
	StartTime time.Time
	Tick      time.Duration

	currentTime time.Time
	listeners   []Listener
}

// NewTimeController constructs a controller.
func NewTimeController(start time.Time, tick time.Duration) *TimeController {
	return &TimeController{
		StartTime:   start,
		Tick:        tick,
		currentTime: start,
	}
}

// Now returns the current simulation time.
func (tc *TimeController) Now() time.Time { return tc.currentTime }

// SetTime moves the clock without notifying listeners.
func (tc *TimeController) SetTime(t time.Time) { tc.currentTime = t }

// AddListener registers a callback invoked on every step.
func (tc *TimeController) AddListener(fn Listener) {
	tc.listeners = append(tc.listeners, fn)
}

// Run visits StartTime and every tick after it up to and including
// StartTime+duration, calling each listener in registration order. It
// returns the number of steps taken and the first listener error.
func (tc *TimeController) Run(duration time.Duration) (int, error) {
	if tc.Tick <= 0 {
		return 0, ErrInvalidTick
	}
	steps := 0
	for elapsed := time.Duration(0); elapsed <= duration; elapsed += tc.Tick {
		tc.currentTime = tc.StartTime.Add(elapsed)
		steps++
		for _, fn := range tc.listeners {
			if err := fn(tc.currentTime); err != nil {
				return steps, err
			}
		}
	}
	return steps, nil
}
