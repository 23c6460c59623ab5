// Package run models one zerobrave invocation as a state machine so that a
// policy file can only be written after the document was validated.
package run

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

// States. Untyped so they convert to statekit.StateID.
const (
	StateStart     = "start"
	StateChecked   = "checked"
	StateValidated = "validated"
	StateBackedUp  = "backed_up"
	StateWritten   = "written"
	StatePreviewed = "previewed"
	StateRestored  = "restored"
)

// Events.
const (
	EventCheck    = "check"
	EventValidate = "validate"
	EventBackup   = "backup"
	EventWrite    = "write"
	EventPreview  = "preview"
	EventRestore  = "restore"
	EventReset    = "reset"
)

// TransitionError is returned when an event is not allowed in the current
// state.
type TransitionError struct {
	Event string
	State string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("the step %q is not allowed while the run is %q", e.Event, e.State)
}

// Context carries data for guards.
type Context struct {
	RunID  string
	DryRun bool
}

// Machine tracks the progress of a single run.
type Machine struct {
	interpreter *statekit.Interpreter[Context]
}

// NewMachine builds a machine in the start state. Dry runs may preview but
// never back up or write.
func NewMachine(runID string, dryRun bool) (*Machine, error) {
	builder := statekit.NewMachine[Context]("zerobrave-run").
		WithInitial(StateStart).
		WithContext(Context{RunID: runID, DryRun: dryRun}).
		WithGuard("mutating", func(ctx Context, e statekit.Event) bool {
			return !ctx.DryRun
		})

	builder.State(StateStart).
		On(EventCheck).Target(StateChecked).
		Done()

	builder.State(StateChecked).
		On(EventValidate).Target(StateValidated).
		On(EventRestore).Target(StateRestored).Guard("mutating").
		Done()

	builder.State(StateValidated).
		On(EventPreview).Target(StatePreviewed).
		On(EventBackup).Target(StateBackedUp).Guard("mutating").
		On(EventWrite).Target(StateWritten).Guard("mutating").
		Done()

	builder.State(StateBackedUp).
		On(EventWrite).Target(StateWritten).Guard("mutating").
		Done()

	// Terminal states return to start so an interactive session can apply
	// again.
	builder.State(StateWritten).
		On(EventReset).Target(StateStart).
		Done()

	builder.State(StatePreviewed).
		On(EventReset).Target(StateStart).
		Done()

	builder.State(StateRestored).
		On(EventReset).Target(StateStart).
		Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build run state machine: %w", err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()

	return &Machine{interpreter: interpreter}, nil
}

// Fire sends event and reports a TransitionError when the state did not
// change.
func (m *Machine) Fire(event string) error {
	before := m.Current()
	m.interpreter.Send(statekit.Event{Type: statekit.EventType(event)})
	if m.Current() != before {
		return nil
	}
	return &TransitionError{Event: event, State: before}
}

func (m *Machine) Current() string {
	return string(m.interpreter.State().Value)
}

// Done reports whether the run reached a terminal state.
func (m *Machine) Done() bool {
	switch m.Current() {
	case StateWritten, StatePreviewed, StateRestored:
		return true
	default:
		return false
	}
}
