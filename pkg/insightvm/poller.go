package insightvm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// State is the generic lifecycle state of a long-running remote
// operation. Every workflow (scan, report generation) maps its own status
// vocabulary onto these five states; the poller itself is
// vocabulary-agnostic.
type State int

const (
	// StatePending means the operation is queued but not yet running.
	StatePending State = iota
	// StateRunning means the operation is in progress.
	StateRunning
	// StateComplete is terminal success.
	StateComplete
	// StateFailed is terminal failure.
	StateFailed
	// StateCancelled is terminal cancellation (stopped or aborted).
	StateCancelled
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StateComplete:
		return "complete"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition can occur from s.
func (s State) Terminal() bool {
	return s == StateComplete || s == StateFailed || s == StateCancelled
}

// StatusMap translates a workflow's status vocabulary (lowercased) into
// generic states. Statuses absent from the map are treated as running,
// since an unknown non-terminal status must not end the wait.
type StatusMap map[string]State

// StateOf returns the generic state for a domain status string.
func (m StatusMap) StateOf(status string) State {
	if state, ok := m[strings.ToLower(status)]; ok {
		return state
	}

	return StateRunning
}

// Operation is an observation of a long-running remote workflow. Once a
// terminal state is observed the instance is final: the poller returns it
// and never mutates it again.
type Operation struct {
	ID     string          `json:"id"            yaml:"id"`
	Status string          `json:"status"        yaml:"status"`
	State  State           `json:"-"             yaml:"-"`
	Raw    json.RawMessage `json:"raw,omitempty" yaml:"raw,omitempty"`
}

// StatusFunc performs one status check against the remote system.
type StatusFunc func(ctx context.Context) (*Operation, error)

// defaultPollInterval applies when a policy leaves Interval unset, so the
// zero PollPolicy waits rather than spinning or panicking.
const defaultPollInterval = 30 * time.Second

// PollPolicy controls one wait invocation: how often to check and how
// long to keep trying. A zero or negative Interval falls back to the
// package default of 30 seconds; a zero Timeout waits until ctx ends.
type PollPolicy struct {
	Interval time.Duration
	Timeout  time.Duration
}

// WaitTimeoutError is returned when the overall poll budget elapses
// before a terminal state is observed. It carries the last observed
// non-terminal status so callers can see how far the operation got.
type WaitTimeoutError struct {
	LastStatus string
	LastState  State
	Elapsed    time.Duration
}

// Error implements the error interface.
func (e *WaitTimeoutError) Error() string {
	if e.LastStatus == "" {
		return fmt.Sprintf("wait timed out after %s with no status observed", e.Elapsed.Round(time.Millisecond))
	}

	return fmt.Sprintf("wait timed out after %s, last status %q (%s)",
		e.Elapsed.Round(time.Millisecond), e.LastStatus, e.LastState)
}

// WaitForTerminal blocks until fetch reports an operation in a terminal
// state, then returns that final instance. It checks immediately, then
// once per policy interval.
//
// A transient failure of a single status check (transport fault or
// request timeout) consumes that poll slot and is retried on the next
// tick, within the same overall budget. An API failure (for example a 404
// because the operation disappeared) aborts the wait immediately, since
// retrying cannot help.
//
// The wait is purely observational: it never issues a stop or cancel call
// to the remote system. Cancelling ctx abandons the wait locally; the
// remote operation keeps running unless stopped through a separate call.
func WaitForTerminal(ctx context.Context, fetch StatusFunc, states StatusMap, policy PollPolicy) (*Operation, error) {
	if fetch == nil {
		return nil, ErrStatusFuncRequired
	}

	start := time.Now()

	waitCtx := ctx

	if policy.Timeout > 0 {
		var cancel context.CancelFunc

		waitCtx, cancel = context.WithTimeout(ctx, policy.Timeout)
		defer cancel()
	}

	var lastStatus string

	lastState := StatePending

	check := func() (*Operation, bool, error) {
		op, err := fetch(waitCtx)
		if err != nil {
			if IsTransient(err) {
				// One missed poll; retry on the next tick.
				return nil, false, nil
			}

			return nil, false, fmt.Errorf("checking operation status: %w", err)
		}

		op.State = states.StateOf(op.Status)
		lastStatus = op.Status
		lastState = op.State

		return op, op.State.Terminal(), nil
	}

	op, terminal, err := check()
	if err != nil {
		return nil, err
	}

	if terminal {
		return op, nil
	}

	interval := policy.Interval
	if interval <= 0 {
		interval = defaultPollInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				// The caller's context ended, not our budget.
				return nil, fmt.Errorf("waiting for operation: %w", ctx.Err())
			}

			return nil, &WaitTimeoutError{
				LastStatus: lastStatus,
				LastState:  lastState,
				Elapsed:    time.Since(start),
			}
		case <-ticker.C:
			op, terminal, err := check()
			if err != nil {
				return nil, err
			}

			if terminal {
				return op, nil
			}
		}
	}
}
