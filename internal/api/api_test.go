package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sergio-centurion/verduleria-service/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAPI() *API {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return &API{logger: logger}
}

func testContext(method, target string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(method, target, nil)
	return c, recorder
}

func TestRespondErrorTraduceErroresTipados(t *testing.T) {
	casos := []struct {
		err    error
		status int
		code   string
	}{
		{models.NewNotFound("producto", "1"), http.StatusNotFound, "NOT_FOUND"},
		{&models.InsufficientStockError{ProductoID: 1, Solicitado: 5, Disponible: 2}, http.StatusConflict, "INSUFFICIENT_STOCK"},
		{&models.ExpiredError{NumeroPedido: "VDL-20250315-12345"}, http.StatusConflict, "EXPIRED"},
		{&models.ConflictError{Motivo: "ya cancelada"}, http.StatusConflict, "CONFLICT"},
		{&models.UnauthorizedError{Motivo: "sesión inválida"}, http.StatusUnauthorized, "UNAUTHORIZED"},
		{&models.ForbiddenError{Motivo: "rol sin permiso"}, http.StatusForbidden, "FORBIDDEN"},
		{errors.New("falla inesperada"), http.StatusInternalServerError, "INTERNAL"},
	}

	api := testAPI()
	for _, caso := range casos {
		c, recorder := testContext(http.MethodGet, "/")
		api.respondError(c, caso.err, "test")

		assert.Equal(t, caso.status, recorder.Code)
		assert.Contains(t, recorder.Body.String(), caso.code)
	}
}

func TestBearerToken(t *testing.T) {
	c, _ := testContext(http.MethodGet, "/")
	c.Request.Header.Set("Authorization", "Bearer abc123")
	assert.Equal(t, "abc123", bearerToken(c))

	c, _ = testContext(http.MethodGet, "/")
	assert.Equal(t, "", bearerToken(c))

	c, _ = testContext(http.MethodGet, "/")
	c.Request.Header.Set("Authorization", "Basic abc123")
	assert.Equal(t, "", bearerToken(c))
}

func TestSessionIDPrefiereHeader(t *testing.T) {
	api := testAPI()

	c, _ := testContext(http.MethodGet, "/")
	c.Request.Header.Set(sessionHeader, "sesion-header")
	assert.Equal(t, "sesion-header", api.sessionID(c))

	c, _ = testContext(http.MethodGet, "/")
	c.Request.AddCookie(&http.Cookie{Name: sessionCookie, Value: "sesion-cookie"})
	assert.Equal(t, "sesion-cookie", api.sessionID(c))
}

func TestSessionIDGeneraYSeteaCookie(t *testing.T) {
	api := testAPI()

	c, recorder := testContext(http.MethodGet, "/")
	id := api.sessionID(c)
	require.NotEmpty(t, id)

	cookies := recorder.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, sessionCookie, cookies[0].Name)
	assert.Equal(t, id, cookies[0].Value)
}

func TestParamID(t *testing.T) {
	api := testAPI()

	c, _ := testContext(http.MethodGet, "/")
	c.Params = gin.Params{{Key: "id", Value: "42"}}
	id, ok := api.paramID(c, "id")
	require.True(t, ok)
	assert.Equal(t, int64(42), id)

	c, recorder := testContext(http.MethodGet, "/")
	c.Params = gin.Params{{Key: "id", Value: "abc"}}
	_, ok = api.paramID(c, "id")
	require.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}
