package dialog

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps states in process memory. Payloads go through the same
// JSON round trip as the database store, so readers see identical types.
type MemoryStore struct {
	mu    sync.Mutex
	items map[int64]memoryItem
	now   func() time.Time
}

type memoryItem struct {
	state     State
	payload   []byte
	updatedAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[int64]memoryItem), now: time.Now}
}

// SetClock replaces the clock used to stamp UpdatedAt.
func (m *MemoryStore) SetClock(now func() time.Time) {
	m.mu.Lock()
	m.now = now
	m.mu.Unlock()
}

func (m *MemoryStore) Get(_ context.Context, userID int64) (*Item, error) {
	m.mu.Lock()
	it, ok := m.items[userID]
	m.mu.Unlock()
	if !ok {
		return &Item{UserID: userID, State: StateIdle, Payload: Payload{}}, nil
	}
	p := Payload{}
	if err := json.Unmarshal(it.payload, &p); err != nil {
		return nil, err
	}
	return &Item{UserID: userID, State: it.state, Payload: p, UpdatedAt: it.updatedAt}, nil
}

func (m *MemoryStore) Set(_ context.Context, userID int64, state State, payload Payload) error {
	if payload == nil {
		payload = Payload{}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.items[userID] = memoryItem{state: state, payload: raw, updatedAt: m.now()}
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Reset(_ context.Context, userID int64) error {
	m.mu.Lock()
	delete(m.items, userID)
	m.mu.Unlock()
	return nil
}
