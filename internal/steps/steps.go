// Package steps implements the controllers behind each wizard screen:
// product upload, script, image, voice, avatar video and the summary.
//
// A controller is created when its screen mounts. It reads a session
// snapshot once, exposes mutex-guarded view state (loading flags, last
// error, last result) and owns a lifetime context that Close cancels.
// Responses that arrive after Close are dropped without touching the
// session.
package steps

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/maauso/adwizard/internal/api"
	"github.com/maauso/adwizard/internal/session"
)

var (
	// ErrViewClosed is returned when the screen was closed while a request
	// was in flight. The response, if any, was discarded.
	ErrViewClosed = errors.New("steps: view closed")
	// ErrBusy is returned when the screen's primary action is already running.
	ErrBusy = errors.New("steps: request already in progress")
	// ErrPrerequisiteMissing is returned when an earlier step's record is
	// absent. Use errors.As with *PrerequisiteError for the message.
	ErrPrerequisiteMissing = errors.New("steps: prerequisite missing")
)

const messageNoScript = "Please generate a script first"

// ValidationError reports invalid user input caught before any request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// PrerequisiteError carries the user-facing message for a missing record.
type PrerequisiteError struct {
	Key     session.Key
	Message string
}

func (e *PrerequisiteError) Error() string {
	return e.Message
}

// Is makes errors.Is(err, ErrPrerequisiteMissing) match.
func (e *PrerequisiteError) Is(target error) bool {
	return target == ErrPrerequisiteMissing
}

// Deps are the collaborators shared by every controller.
type Deps struct {
	Client  api.Client
	Session *session.Session
	Logger  *slog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

// screen is the state every controller shares.
type screen struct {
	name     string
	client   api.Client
	session  *session.Session
	logger   *slog.Logger
	now      func() time.Time
	validate *validator.Validate

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	loading bool
	err     error
	snap    session.Snapshot
}

// mount creates the lifetime context and reads the snapshot.
func mount(ctx context.Context, name string, deps Deps) (*screen, error) {
	if deps.Client == nil {
		return nil, fmt.Errorf("steps: %s: client is required", name)
	}
	return mountLocal(ctx, name, deps)
}

// mountLocal is mount for screens that never call the backend.
func mountLocal(ctx context.Context, name string, deps Deps) (*screen, error) {
	deps = deps.withDefaults()
	if deps.Session == nil {
		return nil, fmt.Errorf("steps: %s: session is required", name)
	}

	snap, err := deps.Session.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("steps: %s: %w", name, err)
	}

	life, cancel := context.WithCancel(ctx)
	return &screen{
		name:     name,
		client:   deps.Client,
		session:  deps.Session,
		logger:   deps.Logger.With(slog.String("step", name)),
		now:      deps.Now,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		ctx:      life,
		cancel:   cancel,
		snap:     snap,
	}, nil
}

// Close cancels in-flight requests. Safe to call more than once.
func (s *screen) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancel()
}

// Closed reports whether Close was called.
func (s *screen) Closed() bool {
	return s.ctx.Err() != nil
}

// Loading reports whether the primary action is running.
func (s *screen) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err returns the error of the last attempt, or nil.
func (s *screen) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Snapshot returns the session as read at mount time, updated with this
// screen's own successful writes.
func (s *screen) Snapshot() session.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// fail records err as the screen's error without running a request.
// It is used for validation and prerequisite failures.
func (s *screen) fail(err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx.Err() != nil {
		return ErrViewClosed
	}
	s.err = err
	return err
}

// op is one attempt of a screen's primary action.
type op struct {
	s      *screen
	ctx    context.Context
	cancel context.CancelFunc
	start  time.Time
	busy   *bool
	errOut *error
}

// begin starts an attempt guarded by the screen's loading flag. The previous
// error is cleared and reset, if set, runs under the screen lock to clear
// the previous result.
func (s *screen) begin(ctx context.Context, reset func()) (*op, error) {
	return s.beginWith(ctx, &s.loading, &s.err, reset)
}

// beginWith starts an attempt guarded by flag whose error is kept in errOut.
func (s *screen) beginWith(ctx context.Context, flag *bool, errOut *error, reset func()) (*op, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx.Err() != nil {
		return nil, ErrViewClosed
	}
	if *flag {
		return nil, ErrBusy
	}
	*flag = true
	*errOut = nil
	if reset != nil {
		reset()
	}

	// The request is bound to both the caller and the screen lifetime.
	opCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(s.ctx, cancel)
	return &op{
		s:   s,
		ctx: opCtx,
		cancel: func() {
			stop()
			cancel()
		},
		start:  s.now(),
		busy:   flag,
		errOut: errOut,
	}, nil
}

// commit runs fn under the screen lock unless the screen has been closed,
// so a late response can never be persisted after Close.
func (o *op) commit(fn func() error) error {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()
	if o.s.ctx.Err() != nil {
		return ErrViewClosed
	}
	return fn()
}

// end finishes the attempt. Errors are recorded on the screen; after Close
// every failure collapses into ErrViewClosed.
func (o *op) end(err error) error {
	o.cancel()

	o.s.mu.Lock()
	defer o.s.mu.Unlock()
	*o.busy = false

	if err != nil && o.s.ctx.Err() != nil {
		err = ErrViewClosed
	}
	if err != nil && !errors.Is(err, ErrViewClosed) {
		*o.errOut = err
	}

	attrs := []any{slog.Duration("elapsed", o.s.now().Sub(o.start))}
	switch {
	case err == nil:
		o.s.logger.Info("step request succeeded", attrs...)
	case errors.Is(err, ErrViewClosed):
		o.s.logger.Debug("step request discarded, view closed", attrs...)
	default:
		o.s.logger.Warn("step request failed", append(attrs, slog.String("error", err.Error()))...)
	}
	return err
}

// requireScript returns the stored script or a PrerequisiteError.
func (s *screen) requireScript(message string) (*session.Script, error) {
	snap := s.Snapshot()
	if snap.Script == nil || strings.TrimSpace(snap.Script.Script) == "" {
		return nil, &PrerequisiteError{Key: session.KeyScript, Message: message}
	}
	return snap.Script, nil
}

// validationError turns the first validator failure into a
// ValidationError. messages is keyed by struct field name without any
// slice index.
func validationError(err error, messages map[string]string) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	field, _, _ := strings.Cut(fe.StructField(), "[")
	if msg, ok := messages[field]; ok {
		return invalid(field, "%s", msg)
	}
	if fe.Tag() == "file" {
		return invalid(field, "File not found: %v", fe.Value())
	}
	return invalid(field, "%s is invalid (%s)", field, fe.Tag())
}
