package authkit

import "sync"

// State is the position of the auth-state machine.
type State uint8

const (
	// StateUnknown is the initial state before stored credentials have
	// been examined.
	StateUnknown State = iota
	// StateAuthenticating covers an in-flight sign-in or sign-up.
	StateAuthenticating
	// StateAuthenticated means a stored session exists.
	StateAuthenticated
	// StateUnauthenticated means no session exists.
	StateUnauthenticated
	// StateError is entered when an auth operation fails; recoverable
	// by starting another attempt.
	StateError
)

func (s State) String() string {
	switch s {
	case StateUnknown:
		return "unknown"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateError:
		return "error"
	}
	return "invalid"
}

// stateTransitions is the full transition table. Anything absent is
// an illegal transition and is ignored.
var stateTransitions = map[State][]State{
	StateUnknown:         {StateAuthenticating, StateAuthenticated, StateUnauthenticated},
	StateAuthenticating:  {StateAuthenticated, StateUnauthenticated, StateError},
	StateAuthenticated:   {StateAuthenticating, StateUnauthenticated},
	StateUnauthenticated: {StateAuthenticating},
	StateError:           {StateAuthenticating, StateUnauthenticated},
}

// stateMachine serializes transitions and fans out change
// notifications. Subscribers run synchronously, outside the lock, in
// subscription order.
type stateMachine struct {
	mu      sync.Mutex
	current State
	subs    map[int]func(State)
	nextID  int
}

func newStateMachine() *stateMachine {
	return &stateMachine{
		current: StateUnknown,
		subs:    make(map[int]func(State)),
	}
}

func (m *stateMachine) state() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// transition moves to the target state if the transition table allows
// it, reporting whether a move happened. Transitioning to the current
// state is a no-op and does not notify.
func (m *stateMachine) transition(to State) bool {
	m.mu.Lock()
	if m.current == to {
		m.mu.Unlock()
		return true
	}

	legal := false
	for _, next := range stateTransitions[m.current] {
		if next == to {
			legal = true
			break
		}
	}
	if !legal {
		m.mu.Unlock()
		return false
	}

	m.current = to
	fns := make([]func(State), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(to)
	}
	return true
}

// subscribe registers fn for future state changes and returns an
// idempotent unsubscribe.
func (m *stateMachine) subscribe(fn func(State)) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}
