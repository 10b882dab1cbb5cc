package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sergio-centurion/verduleria-service/internal/models"
	"github.com/sergio-centurion/verduleria-service/internal/services"
)

const (
	identidadKey  = "identidad"
	sessionCookie = "session_id"
	sessionHeader = "X-Session-ID"
	sessionMaxAge = 3600
)

// bearerToken extrae el token del header Authorization
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

// AuthMiddleware resuelve el token de sesión a una identidad y la deja
// en el contexto del request. Las operaciones reciben la identidad de
// forma explícita, nunca la buscan por su cuenta.
func (api *API) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, models.NewUnauthorizedResponse("Authentication required"))
			c.Abort()
			return
		}

		identidad, err := api.authService.Identificar(token)
		if err != nil {
			api.respondError(c, err, "Error resolving session")
			c.Abort()
			return
		}

		c.Set(identidadKey, identidad)
		c.Next()
	}
}

// identidad obtiene la identidad autenticada del contexto
func (api *API) identidad(c *gin.Context) (*models.Identidad, bool) {
	value, exists := c.Get(identidadKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, models.NewUnauthorizedResponse("Authentication required"))
		return nil, false
	}
	return value.(*models.Identidad), true
}

// requireRol obtiene la identidad y verifica su rol en un solo paso
func (api *API) requireRol(c *gin.Context, roles ...models.Rol) (*models.Identidad, bool) {
	identidad, ok := api.identidad(c)
	if !ok {
		return nil, false
	}

	if err := services.RequireRol(identidad, roles...); err != nil {
		api.respondError(c, err, "Role check failed")
		return nil, false
	}

	return identidad, true
}

// sessionID identifica la sesión del carrito: header explícito, cookie,
// o una sesión nueva que queda seteada como cookie
func (api *API) sessionID(c *gin.Context) string {
	if id := c.GetHeader(sessionHeader); id != "" {
		return id
	}

	if id, err := c.Cookie(sessionCookie); err == nil && id != "" {
		return id
	}

	id := uuid.NewString()
	c.SetCookie(sessionCookie, id, sessionMaxAge, "/", "", false, true)
	return id
}
