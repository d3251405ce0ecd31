package device

import (
	"sync"
	"time"
)

// State field names accepted in a Delta.
const (
	FieldOn        = "on"
	FieldIsRunning = "isRunning"
	FieldIsPaused  = "isPaused"
)

// Store holds the mutable runtime state of every registered device.
//
// A single Store is created at process start and shared by every request.
// Each Get and Apply is atomic for one device entry, so readers never observe
// a torn write. Concurrent Apply calls against the same device are not
// ordered: whichever lands last wins for each field it touches.
type Store struct {
	mu     sync.RWMutex
	states map[string]*State

	events broadcaster
	now    func() time.Time
}

// NewStore creates a store with every registry device at its default state.
func NewStore(registry *Registry) *Store {
	s := &Store{
		states: make(map[string]*State, registry.Len()),
		now:    time.Now,
	}
	for _, d := range registry.List() {
		st := DefaultState()
		s.states[d.ID] = &st
	}
	return s
}

// Get returns a copy of the current state of a device.
func (s *Store) Get(id string) (State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.states[id]
	if !ok {
		return State{}, ErrNotFound
	}
	return copyState(st), nil
}

// Apply merges the recognised fields of delta into the device state and
// returns the resulting full state. Unrecognised fields, and recognised
// fields carrying a non-boolean value, are ignored.
func (s *Store) Apply(id string, delta Delta) (State, error) {
	s.mu.Lock()
	st, ok := s.states[id]
	if !ok {
		s.mu.Unlock()
		return State{}, ErrNotFound
	}

	for field, raw := range delta {
		v, ok := raw.(bool)
		if !ok {
			continue
		}
		switch field {
		case FieldOn:
			st.On = v
		case FieldIsRunning:
			st.IsRunning = v
		case FieldIsPaused:
			st.IsPaused = v
		}
	}
	result := copyState(st)
	s.mu.Unlock()

	s.events.publish(StateEvent{
		DeviceID:  id,
		Delta:     delta,
		State:     result,
		Timestamp: s.now(),
	})

	return result, nil
}

// Snapshot returns a copy of every device state keyed by device id.
func (s *Store) Snapshot() map[string]State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]State, len(s.states))
	for id, st := range s.states {
		out[id] = copyState(st)
	}
	return out
}

// Subscribe returns a channel receiving an event after every applied delta.
func (s *Store) Subscribe() chan StateEvent {
	return s.events.Subscribe()
}

// Unsubscribe removes a subscription created by Subscribe.
func (s *Store) Unsubscribe(ch chan StateEvent) {
	s.events.Unsubscribe(ch)
}

func copyState(st *State) State {
	out := *st
	out.CurrentRunCycle = append([]RunCycle(nil), st.CurrentRunCycle...)
	return out
}
