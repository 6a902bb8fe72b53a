package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"allowance-client/internal/domain"
)

// Store es la unica fuente de verdad de la sesion. persistMu ordena las
// mutaciones para que el registro durable termine igual que la memoria; mu
// solo protege el valor en memoria y nunca se toma durante I/O.
type Store struct {
	persistMu sync.Mutex
	mu        sync.RWMutex
	session   domain.Session
	persister Persister
	logger    *zap.Logger
}

// New carga el registro durable una sola vez. Si falta o esta corrupto arranca
// sin sesion; nunca devuelve error.
func New(ctx context.Context, persister Persister, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if persister == nil {
		persister = NewMemoryPersister()
	}
	s := &Store{persister: persister, logger: logger}

	raw, err := persister.Load(ctx)
	switch {
	case errors.Is(err, ErrNoRecord):
		return s
	case err != nil:
		logger.Warn("load persisted session failed", zap.Error(err))
		return s
	}

	var creds domain.Credentials
	if err := json.Unmarshal(raw, &creds); err != nil {
		logger.Warn("persisted session is malformed, starting logged out", zap.Error(err))
		return s
	}
	s.session = domain.SessionFrom(creds)
	return s
}

// SetCredentials reemplaza la sesion completa y la persiste. No valida tokens.
func (s *Store) SetCredentials(ctx context.Context, creds domain.Credentials) error {
	creds.User = cloneUser(creds.User)
	payload, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}

	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	s.session = domain.SessionFrom(creds)
	s.mu.Unlock()

	if err := s.persister.Save(ctx, payload); err != nil {
		s.logger.Warn("persist session failed", zap.Error(err))
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

// Logout limpia la sesion y borra el registro durable. La sesion en memoria
// queda vacia aunque el borrado falle.
func (s *Store) Logout(ctx context.Context) error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	s.session = domain.Session{}
	s.mu.Unlock()

	if err := s.persister.Delete(ctx); err != nil {
		s.logger.Warn("delete persisted session failed", zap.Error(err))
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Session devuelve una copia de la sesion actual.
func (s *Store) Session() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.session
	out.User = cloneUser(out.User)
	return out
}

// AccessToken se lee en cada request, no al construir los clientes.
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.AccessToken
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.IsAuthenticated
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
