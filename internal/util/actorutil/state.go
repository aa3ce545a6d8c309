package actorutil

import (
	"github.com/asynkron/protoactor-go/actor"
)

// ActorWithStates drives an actor.Behavior with named states. Names are
// tracked alongside the behavior stack so the current one can be reported.
type ActorWithStates struct {
	Behavior actor.Behavior
	// OnTransition, when set, observes every state change.
	OnTransition func(from, to string)

	names []string
}

type ActorState interface {
	Name() string
	Receive(actor.Context)
}

func (s *ActorWithStates) Become(state ActorState) {
	from := s.StateName()
	s.names = append(s.names[:0], state.Name())
	s.Behavior.Become(state.Receive)
	s.transition(from)
}

func (s *ActorWithStates) BecomeStacked(state ActorState) {
	from := s.StateName()
	s.names = append(s.names, state.Name())
	s.Behavior.BecomeStacked(state.Receive)
	s.transition(from)
}

func (s *ActorWithStates) UnbecomeStacked() {
	from := s.StateName()
	if len(s.names) > 0 {
		s.names = s.names[:len(s.names)-1]
	}
	s.Behavior.UnbecomeStacked()
	s.transition(from)
}

// StateName is the name of the state currently receiving messages.
func (s *ActorWithStates) StateName() string {
	if len(s.names) == 0 {
		return ""
	}
	return s.names[len(s.names)-1]
}

func (s *ActorWithStates) transition(from string) {
	if s.OnTransition != nil && from != s.StateName() {
		s.OnTransition(from, s.StateName())
	}
}
