package database

import (
	"database/sql"
	"fmt"

	"github.com/sergio-centurion/verduleria-service/internal/models"
	"github.com/sirupsen/logrus"
)

// UsuarioRepository maneja las operaciones de base de datos para Usuario
type UsuarioRepository struct {
	db     *DB
	logger *logrus.Logger
}

// NewUsuarioRepository crea una nueva instancia del repositorio
func NewUsuarioRepository(db *DB, logger *logrus.Logger) *UsuarioRepository {
	return &UsuarioRepository{db: db, logger: logger}
}

// GetByUsername obtiene un usuario por username con su rol resuelto
func (r *UsuarioRepository) GetByUsername(username string) (*models.Usuario, error) {
	query := `
		SELECT u.id, u.username, u.password, r.nombre
		FROM usuarios u
		JOIN roles r ON u.rol_id = r.id
		WHERE u.username = $1
	`

	var usuario models.Usuario
	err := r.db.QueryRowWithTimeout(query, username).Scan(
		&usuario.ID, &usuario.Username, &usuario.Password, &usuario.Rol,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.NewNotFound("usuario", username)
		}
		return nil, fmt.Errorf("error querying usuario: %w", err)
	}

	return &usuario, nil
}

// GetByID obtiene un usuario por ID con su rol resuelto
func (r *UsuarioRepository) GetByID(id int64) (*models.Usuario, error) {
	query := `
		SELECT u.id, u.username, u.password, r.nombre
		FROM usuarios u
		JOIN roles r ON u.rol_id = r.id
		WHERE u.id = $1
	`

	var usuario models.Usuario
	err := r.db.QueryRowWithTimeout(query, id).Scan(
		&usuario.ID, &usuario.Username, &usuario.Password, &usuario.Rol,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.NewNotFound("usuario", fmt.Sprintf("%d", id))
		}
		return nil, fmt.Errorf("error querying usuario: %w", err)
	}

	return &usuario, nil
}

// MetodoPredeterminado obtiene el método de pago guardado del usuario,
// si tiene uno. Devuelve nil sin error cuando no hay método registrado.
func (r *UsuarioRepository) MetodoPredeterminado(usuarioID int64) (*models.MetodoPago, error) {
	query := `
		SELECT id, usuario_id, tipo_tarjeta, ultimos_4
		FROM metodos_pago
		WHERE usuario_id = $1
		ORDER BY id DESC
		LIMIT 1
	`

	var metodo models.MetodoPago
	err := r.db.QueryRowWithTimeout(query, usuarioID).Scan(
		&metodo.ID, &metodo.UsuarioID, &metodo.TipoTarjeta, &metodo.Ultimos4,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying metodo de pago: %w", err)
	}

	return &metodo, nil
}

// GuardarMetodo registra un método de pago para el usuario
func (r *UsuarioRepository) GuardarMetodo(metodo *models.MetodoPago) error {
	query := `
		INSERT INTO metodos_pago (usuario_id, tipo_tarjeta, ultimos_4)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	err := r.db.QueryRowWithTimeout(query,
		metodo.UsuarioID, metodo.TipoTarjeta, metodo.Ultimos4,
	).Scan(&metodo.ID)
	if err != nil {
		return fmt.Errorf("error inserting metodo de pago: %w", err)
	}

	return nil
}
