package session

import (
	"context"
	"sync"
	"time"

	"github.com/afc-labs/facturas-service/internal/models"
	"github.com/google/uuid"
)

// MemoryStore es el respaldo en memoria cuando Redis no está disponible.
// Las sesiones no sobreviven un reinicio del proceso.
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]time.Time
	flashes  map[string][]models.Flash
}

// NewMemoryStore crea el almacén en memoria con el TTL dado
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		sessions: make(map[string]time.Time),
		flashes:  make(map[string][]models.Flash),
	}
}

// Create abre una sesión nueva
func (s *MemoryStore) Create(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token := uuid.NewString()
	s.sessions[token] = time.Now().Add(s.ttl)
	return token, nil
}

// Valid indica si el token corresponde a una sesión vigente
func (s *MemoryStore) Valid(_ context.Context, token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiry, ok := s.sessions[token]
	if !ok {
		return false
	}
	if time.Now().After(expiry) {
		delete(s.sessions, token)
		delete(s.flashes, token)
		return false
	}
	return true
}

// Delete cierra la sesión y descarta sus flashes pendientes
func (s *MemoryStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, token)
	delete(s.flashes, token)
	return nil
}

// PushFlash encola un mensaje flash de la sesión
func (s *MemoryStore) PushFlash(_ context.Context, token string, flash models.Flash) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.flashes[token] = append(s.flashes[token], flash)
	return nil
}

// PopFlashes retorna y vacía los mensajes pendientes de la sesión
func (s *MemoryStore) PopFlashes(_ context.Context, token string) ([]models.Flash, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	flashes := s.flashes[token]
	delete(s.flashes, token)
	return flashes, nil
}
