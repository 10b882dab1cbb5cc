package database

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sergio-centurion/verduleria-service/internal/models"
	"github.com/sirupsen/logrus"
)

// Claves Redis del servicio
const (
	// carrito:{session_id} -> JSON del carrito
	keyCarrito = "carrito:%s"
	// sesion:{token} -> JSON de la identidad autenticada
	keySesion = "sesion:%s"
)

// CarritoStore guarda carritos por sesión en Redis. El carrito es estado
// efímero de la sesión: expira con el TTL y no sobrevive entre sesiones.
type CarritoStore struct {
	redis  *Redis
	ttl    time.Duration
	logger *logrus.Logger
}

// NewCarritoStore crea una nueva instancia del store
func NewCarritoStore(redis *Redis, ttl time.Duration, logger *logrus.Logger) *CarritoStore {
	return &CarritoStore{
		redis:  redis,
		ttl:    ttl,
		logger: logger,
	}
}

// Load carga el carrito de una sesión; retorna un carrito vacío si no existe
func (s *CarritoStore) Load(sessionID string) (models.Carrito, error) {
	raw, err := s.redis.Get(fmt.Sprintf(keyCarrito, sessionID))
	if err != nil {
		if IsNil(err) {
			return models.Carrito{}, nil
		}
		return nil, fmt.Errorf("error loading cart: %w", err)
	}

	var carrito models.Carrito
	if err := json.Unmarshal([]byte(raw), &carrito); err != nil {
		// Un carrito corrupto se descarta, no bloquea a la sesión
		s.logger.WithField("session_id", sessionID).Warnf("Discarding corrupt cart: %v", err)
		return models.Carrito{}, nil
	}

	return carrito, nil
}

// Save persiste el carrito de una sesión renovando su TTL
func (s *CarritoStore) Save(sessionID string, carrito models.Carrito) error {
	data, err := json.Marshal(carrito)
	if err != nil {
		return fmt.Errorf("error marshaling cart: %w", err)
	}

	if err := s.redis.SetWithTTL(fmt.Sprintf(keyCarrito, sessionID), data, s.ttl); err != nil {
		return fmt.Errorf("error saving cart: %w", err)
	}

	return nil
}

// Delete elimina el carrito de una sesión
func (s *CarritoStore) Delete(sessionID string) error {
	if err := s.redis.Delete(fmt.Sprintf(keyCarrito, sessionID)); err != nil {
		return fmt.Errorf("error deleting cart: %w", err)
	}
	return nil
}
