package steps

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// AttemptStatus is the state of an avatar video generation attempt.
type AttemptStatus string

const (
	// AttemptIdle means no attempt has been made on this screen.
	AttemptIdle AttemptStatus = "idle"
	// AttemptRequesting means the generate request is in flight.
	AttemptRequesting AttemptStatus = "requesting"
	// AttemptCompleted means the backend returned a finished video.
	AttemptCompleted AttemptStatus = "completed"
	// AttemptInProgress means the backend answered with any other status.
	AttemptInProgress AttemptStatus = "in_progress"
	// AttemptFailed means the request itself failed.
	AttemptFailed AttemptStatus = "failed"
)

// Avatar status messages shown to the user.
const (
	MessageVideoStarting  = "Starting video generation..."
	MessageVideoCompleted = "Video generated successfully!"
	MessageVideoFailed    = "Video generation failed"
)

// ErrInvalidTransition is returned when an invalid attempt transition is attempted.
var ErrInvalidTransition = errors.New("steps: invalid attempt transition")

// validTransitions defines which attempt transitions are allowed. An
// attempt that was requesting when the screen closed falls back to idle.
var validTransitions = map[AttemptStatus][]AttemptStatus{
	AttemptIdle:       {AttemptRequesting},
	AttemptRequesting: {AttemptCompleted, AttemptInProgress, AttemptFailed, AttemptIdle},
	AttemptCompleted:  {AttemptRequesting},
	AttemptInProgress: {AttemptRequesting},
	AttemptFailed:     {AttemptRequesting},
}

func canTransition(from, to AttemptStatus) bool {
	return slices.Contains(validTransitions[from], to)
}

// Attempt is the view state of the latest video generation attempt.
type Attempt struct {
	Status AttemptStatus
	// BackendStatus is the status string returned by the backend.
	BackendStatus string
	Message       string
	VideoURL      string
	UpdatedAt     time.Time
}

// transitionTo moves the attempt to status.
func (a *Attempt) transitionTo(status AttemptStatus, now time.Time) error {
	if !canTransition(a.Status, status) {
		return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, a.Status, status)
	}
	a.Status = status
	a.UpdatedAt = now
	return nil
}

// start begins a new request, clearing the previous outcome.
func (a *Attempt) start(now time.Time) error {
	if err := a.transitionTo(AttemptRequesting, now); err != nil {
		return err
	}
	a.BackendStatus = ""
	a.VideoURL = ""
	a.Message = MessageVideoStarting
	return nil
}

// resolve records the backend's answer.
func (a *Attempt) resolve(backendStatus, videoURL string, completed bool, now time.Time) error {
	if completed {
		if err := a.transitionTo(AttemptCompleted, now); err != nil {
			return err
		}
		a.VideoURL = videoURL
		a.Message = MessageVideoCompleted
	} else {
		if err := a.transitionTo(AttemptInProgress, now); err != nil {
			return err
		}
		a.Message = "Video status: " + backendStatus
	}
	a.BackendStatus = backendStatus
	return nil
}

// fail records a failed request.
func (a *Attempt) fail(now time.Time) error {
	if err := a.transitionTo(AttemptFailed, now); err != nil {
		return err
	}
	a.Message = MessageVideoFailed
	return nil
}

// abandon resets a request interrupted by Close.
func (a *Attempt) abandon(now time.Time) error {
	if err := a.transitionTo(AttemptIdle, now); err != nil {
		return err
	}
	a.Message = ""
	return nil
}

// IsTerminal reports whether the attempt has an outcome.
func (a Attempt) IsTerminal() bool {
	return a.Status == AttemptCompleted || a.Status == AttemptInProgress || a.Status == AttemptFailed
}
