package database

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sergio-centurion/verduleria-service/internal/models"
)

// SesionStore guarda las sesiones autenticadas en Redis: token -> identidad.
// La identidad es inmutable durante la vida del token.
type SesionStore struct {
	redis *Redis
	ttl   time.Duration
}

// NewSesionStore crea una nueva instancia del store
func NewSesionStore(redis *Redis, ttl time.Duration) *SesionStore {
	return &SesionStore{
		redis: redis,
		ttl:   ttl,
	}
}

// Guardar crea una sesión para la identidad dada
func (s *SesionStore) Guardar(token string, identidad models.Identidad) error {
	data, err := json.Marshal(identidad)
	if err != nil {
		return fmt.Errorf("error marshaling session: %w", err)
	}

	if err := s.redis.SetWithTTL(fmt.Sprintf(keySesion, token), data, s.ttl); err != nil {
		return fmt.Errorf("error saving session: %w", err)
	}

	return nil
}

// Obtener resuelve un token de sesión a su identidad; retorna NotFound
// si la sesión no existe o expiró
func (s *SesionStore) Obtener(token string) (*models.Identidad, error) {
	raw, err := s.redis.Get(fmt.Sprintf(keySesion, token))
	if err != nil {
		if IsNil(err) {
			return nil, models.NewNotFound("sesion", token)
		}
		return nil, fmt.Errorf("error loading session: %w", err)
	}

	var identidad models.Identidad
	if err := json.Unmarshal([]byte(raw), &identidad); err != nil {
		return nil, fmt.Errorf("error unmarshaling session: %w", err)
	}

	return &identidad, nil
}

// Eliminar cierra una sesión; es idempotente
func (s *SesionStore) Eliminar(token string) error {
	if err := s.redis.Delete(fmt.Sprintf(keySesion, token)); err != nil {
		return fmt.Errorf("error deleting session: %w", err)
	}
	return nil
}
