package services

import (
	"github.com/google/uuid"
	"github.com/sergio-centurion/verduleria-service/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// usuarioReader es lo que el servicio necesita del repositorio de usuarios
type usuarioReader interface {
	GetByUsername(username string) (*models.Usuario, error)
}

// sesionStore es lo que el servicio necesita del store de sesiones
type sesionStore interface {
	Guardar(token string, identidad models.Identidad) error
	Obtener(token string) (*models.Identidad, error)
	Eliminar(token string) error
}

// AuthService maneja autenticación y autorización por rol
type AuthService struct {
	usuarios usuarioReader
	sesiones sesionStore
	logger   *logrus.Logger
}

// NewAuthService crea una nueva instancia del servicio
func NewAuthService(usuarios usuarioReader, sesiones sesionStore, logger *logrus.Logger) *AuthService {
	return &AuthService{
		usuarios: usuarios,
		sesiones: sesiones,
		logger:   logger,
	}
}

// Login valida credenciales y crea una sesión. Credenciales inválidas y
// usuario inexistente producen el mismo error, sin distinguir cuál falló.
func (s *AuthService) Login(req *models.LoginRequest) (*models.LoginResponse, error) {
	usuario, err := s.usuarios.GetByUsername(req.Username)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, &models.UnauthorizedError{Motivo: "credenciales inválidas"}
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(usuario.Password), []byte(req.Password)); err != nil {
		return nil, &models.UnauthorizedError{Motivo: "credenciales inválidas"}
	}

	token := uuid.NewString()
	identidad := models.Identidad{
		UsuarioID: usuario.ID,
		Username:  usuario.Username,
		Rol:       usuario.Rol,
	}

	if err := s.sesiones.Guardar(token, identidad); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"usuario_id": usuario.ID,
		"rol":        usuario.Rol,
	}).Info("Session created")

	return &models.LoginResponse{
		Token:    token,
		Username: usuario.Username,
		Rol:      usuario.Rol,
	}, nil
}

// Logout cierra la sesión del token; es idempotente
func (s *AuthService) Logout(token string) error {
	return s.sesiones.Eliminar(token)
}

// Identificar resuelve un token a su identidad
func (s *AuthService) Identificar(token string) (*models.Identidad, error) {
	identidad, err := s.sesiones.Obtener(token)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, &models.UnauthorizedError{Motivo: "sesión inválida o expirada"}
		}
		return nil, err
	}
	return identidad, nil
}

// RequireRol verifica que la identidad tenga alguno de los roles dados
func RequireRol(identidad *models.Identidad, roles ...models.Rol) error {
	if identidad == nil {
		return &models.UnauthorizedError{Motivo: "autenticación requerida"}
	}
	for _, rol := range roles {
		if identidad.Rol == rol {
			return nil
		}
	}
	return &models.ForbiddenError{Motivo: "rol sin permiso para esta operación"}
}
