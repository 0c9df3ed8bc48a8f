package booking

import (
	"fmt"
	"strings"
)

// State is a step of a booking request.
type State string

const (
	StateProposed  State = "Proposed"
	StateValidated State = "Validated"
	StatePersisted State = "Persisted"
	StateUpdated   State = "Updated"
	StateRejected  State = "Rejected"
)

// Operation tells creates from edits.
type Operation string

const (
	OpCreate Operation = "create"
	OpRevise Operation = "revise"
)

// Lifecycle records the path of one request from Proposed to a terminal state.
// It is not safe for concurrent use.
type Lifecycle struct {
	Op     Operation
	States []State
	Reason Kind
}

// Propose starts a lifecycle in the Proposed state.
func Propose(op Operation) *Lifecycle {
	return &Lifecycle{Op: op, States: []State{StateProposed}}
}

func (l *Lifecycle) State() State { return l.States[len(l.States)-1] }

// Terminal reports whether no further transition is allowed.
func (l *Lifecycle) Terminal() bool {
	switch l.State() {
	case StatePersisted, StateUpdated, StateRejected:
		return true
	}
	return false
}

func (l *Lifecycle) move(to State, from ...State) {
	cur := l.State()
	for _, f := range from {
		if cur == f {
			l.States = append(l.States, to)
			return
		}
	}
	panic(fmt.Sprintf("booking: illegal transition %s -> %s", cur, to))
}

// Validate marks format, range, ownership and past-date checks as passed.
func (l *Lifecycle) Validate() { l.move(StateValidated, StateProposed) }

// Commit marks the write as done: Persisted for creates, Updated for edits.
func (l *Lifecycle) Commit() {
	if l.Op == OpRevise {
		l.move(StateUpdated, StateValidated)
		return
	}
	l.move(StatePersisted, StateValidated)
}

// Reject ends the lifecycle and returns err unchanged. The reason is the
// rejection kind, or empty for store failures.
func (l *Lifecycle) Reject(err error) error {
	l.move(StateRejected, StateProposed, StateValidated)
	l.Reason = KindOf(err)
	return err
}

// Outcome is a short label of the terminal state for logs and metrics.
func (l *Lifecycle) Outcome() string {
	switch l.State() {
	case StatePersisted:
		return "persisted"
	case StateUpdated:
		return "updated"
	case StateRejected:
		if l.Reason == "" {
			return "store_error"
		}
		return string(l.Reason)
	}
	return strings.ToLower(string(l.State()))
}

func (l *Lifecycle) String() string {
	parts := make([]string, len(l.States))
	for i, s := range l.States {
		parts[i] = string(s)
	}
	return strings.Join(parts, " -> ")
}
