package session

import (
	"context"
	"errors"
	"sync"
)

// StorageKey es el nombre fijo del registro durable de la sesion.
const StorageKey = "allowance_auth"

// ErrNoRecord indica que no hay sesion guardada.
var ErrNoRecord = errors.New("session record not found")

// Persister guarda el registro durable de la sesion (JSON).
type Persister interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
	Delete(ctx context.Context) error
}

type memoryPersister struct {
	mu   sync.Mutex
	data []byte
}

// NewMemoryPersister devuelve un Persister en memoria; no sobrevive al proceso.
func NewMemoryPersister() Persister {
	return &memoryPersister{}
}

func (p *memoryPersister) Load(_ context.Context) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.data == nil {
		return nil, ErrNoRecord
	}
	out := make([]byte, len(p.data))
	copy(out, p.data)
	return out, nil
}

func (p *memoryPersister) Save(_ context.Context, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.data = append([]byte(nil), data...)
	return nil
}

func (p *memoryPersister) Delete(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.data = nil
	return nil
}
