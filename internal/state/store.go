// Package state holds the widget's reactive state container.
//
// The store keeps four fields (session, panel visibility, handoff latch and
// the awaiting-reply flag). Each typed setter compares the new value with the
// current one and, only when they differ, applies the mutation and runs the
// side-effect handlers registered for that field. Handlers run while the store
// lock is held, so the effects of two mutations never interleave.
package state

import (
	"sync"

	"hainzelman/pkg/widgettypes"
)

// Field names a store field.
type Field string

const (
	FieldSession       Field = "session"
	FieldPanelOpen     Field = "panelOpen"
	FieldHandoffActive Field = "handoffActive"
	FieldAwaitingReply Field = "awaitingReply"
)

// Snapshot is a point-in-time copy of the widget state.
type Snapshot struct {
	Session       *widgettypes.ChatSession
	PanelOpen     bool
	HandoffActive bool
	AwaitingReply bool
}

// Effect reacts to a committed mutation. It receives the state after the change.
type Effect func(snap Snapshot)

// Effects is the side-effect table, keyed by field.
type Effects map[Field][]Effect

// Store is the widget state container.
type Store struct {
	mu      sync.Mutex
	snap    Snapshot
	effects Effects
}

// NewStore creates a store with the default state: an empty placeholder
// session, panel closed, no handoff and no outstanding reply.
func NewStore(effects Effects) *Store {
	table := make(Effects, len(effects))
	for field, handlers := range effects {
		table[field] = append([]Effect(nil), handlers...)
	}
	return &Store{
		snap:    Snapshot{Session: &widgettypes.ChatSession{}},
		effects: table,
	}
}

// Get returns the current state.
func (s *Store) Get() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// SetSession replaces the committed session. Sessions compare by identity.
func (s *Store) SetSession(session *widgettypes.ChatSession) bool {
	if session == nil {
		session = &widgettypes.ChatSession{}
	}
	return s.set(FieldSession, func(snap *Snapshot) bool {
		if snap.Session == session {
			return false
		}
		snap.Session = session
		return true
	})
}

// SetPanelOpen sets the panel visibility flag.
func (s *Store) SetPanelOpen(open bool) bool {
	return s.setBool(FieldPanelOpen, open, func(snap *Snapshot) *bool { return &snap.PanelOpen })
}

// SetHandoffActive sets the handoff flag.
func (s *Store) SetHandoffActive(active bool) bool {
	return s.setBool(FieldHandoffActive, active, func(snap *Snapshot) *bool { return &snap.HandoffActive })
}

// SetAwaitingReply sets the awaiting-reply flag.
func (s *Store) SetAwaitingReply(awaiting bool) bool {
	return s.setBool(FieldAwaitingReply, awaiting, func(snap *Snapshot) *bool { return &snap.AwaitingReply })
}

// AppendMessage appends msg to the committed session without firing the
// session effect. The session value itself is copied so snapshots handed out
// earlier keep their message slice.
func (s *Store) AppendMessage(msg widgettypes.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.snap.Session
	messages := make([]widgettypes.Message, 0, len(current.Messages)+1)
	messages = append(messages, current.Messages...)
	messages = append(messages, msg)
	s.snap.Session = current.WithMessages(messages)
}

func (s *Store) setBool(field Field, value bool, ref func(*Snapshot) *bool) bool {
	return s.set(field, func(snap *Snapshot) bool {
		p := ref(snap)
		if *p == value {
			return false
		}
		*p = value
		return true
	})
}

func (s *Store) set(field Field, mutate func(*Snapshot) bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !mutate(&s.snap) {
		return false
	}
	snap := s.snap
	for _, effect := range s.effects[field] {
		effect(snap)
	}
	return true
}
