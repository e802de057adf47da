// Package draft guarda borradores de formularios por (actor, sesión) con expiración.
// Reemplaza las cachés globales del cliente: un borrador nunca se comparte entre usuarios ni sesiones.
package draft

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Cotizaciones-api/internal/application/dto"
	"github.com/jhoicas/Cotizaciones-api/internal/domain"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
)

const maxSessionLen = 64

type key struct {
	owner   string
	session string
}

type entry struct {
	kind      string
	payload   []byte
	updatedAt time.Time
	expiresAt time.Time
}

// Store borradores en memoria del proceso. La expiración es perezosa: se purga al escribir y
// se ignora al leer, sin goroutine de fondo.
type Store struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[key]entry
}

// NewStore crea el almacén con el TTL indicado (mínimo un minuto).
func NewStore(ttl time.Duration) *Store {
	if ttl < time.Minute {
		ttl = time.Minute
	}
	return &Store{ttl: ttl, now: time.Now, entries: map[key]entry{}}
}

// WithClock reemplaza el reloj (tests).
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func ownerOf(actor entity.Actor) string { return actor.Role + ":" + actor.UserID }

// Save crea o reemplaza el borrador. Con session vacío se genera una sesión nueva.
func (s *Store) Save(_ context.Context, actor entity.Actor, session string, in dto.SaveDraftRequest) (*dto.DraftResponse, error) {
	ve := domain.NewValidationError()
	session = strings.TrimSpace(session)
	if len(session) > maxSessionLen {
		ve.Add("session", "demasiado largo")
	}
	if in.Kind != "rfq" && in.Kind != "bid" {
		ve.Add("kind", "debe ser rfq o bid")
	}
	if len(in.Payload) == 0 {
		ve.Add("payload", "es requerido")
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}
	if session == "" {
		session = uuid.New().String()
	}

	now := s.now()
	e := entry{kind: in.Kind, payload: append([]byte(nil), in.Payload...), updatedAt: now, expiresAt: now.Add(s.ttl)}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.purgeLocked(now)
	s.entries[key{owner: ownerOf(actor), session: session}] = e
	return toResponse(session, e), nil
}

// Get devuelve el borrador vigente o domain.ErrNotFound.
func (s *Store) Get(_ context.Context, actor entity.Actor, session string) (*dto.DraftResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key{owner: ownerOf(actor), session: session}]
	if !ok || !s.now().Before(e.expiresAt) {
		return nil, domain.ErrNotFound
	}
	return toResponse(session, e), nil
}

// Discard elimina el borrador. Devuelve false si no existía.
func (s *Store) Discard(_ context.Context, actor entity.Actor, session string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key{owner: ownerOf(actor), session: session}
	_, ok := s.entries[k]
	delete(s.entries, k)
	return ok
}

func (s *Store) purgeLocked(now time.Time) {
	for k, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, k)
		}
	}
}

func toResponse(session string, e entry) *dto.DraftResponse {
	return &dto.DraftResponse{
		Session:   session,
		Kind:      e.kind,
		Payload:   append([]byte(nil), e.payload...),
		UpdatedAt: e.updatedAt,
		ExpiresAt: e.expiresAt,
	}
}
