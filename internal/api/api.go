package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sergio-centurion/verduleria-service/internal/database"
	"github.com/sergio-centurion/verduleria-service/internal/models"
	"github.com/sergio-centurion/verduleria-service/internal/services"
	"github.com/sirupsen/logrus"
)

// API maneja todos los endpoints del servicio
type API struct {
	authService     *services.AuthService
	catalogService  *services.CatalogService
	carritoService  *services.CarritoService
	checkoutService *services.CheckoutService
	cambioService   *services.CambioStockService
	panelService    *services.PanelService
	comprobantes    *services.ComprobanteGenerator
	sugerencias     *services.SugerenciaService
	db              *database.DB
	redis           *database.Redis
	logger          *logrus.Logger
}

// NewAPI crea una nueva instancia de la API
func NewAPI(
	authService *services.AuthService,
	catalogService *services.CatalogService,
	carritoService *services.CarritoService,
	checkoutService *services.CheckoutService,
	cambioService *services.CambioStockService,
	panelService *services.PanelService,
	comprobantes *services.ComprobanteGenerator,
	sugerencias *services.SugerenciaService,
	db *database.DB,
	redis *database.Redis,
	logger *logrus.Logger,
) *API {
	return &API{
		authService:     authService,
		catalogService:  catalogService,
		carritoService:  carritoService,
		checkoutService: checkoutService,
		cambioService:   cambioService,
		panelService:    panelService,
		comprobantes:    comprobantes,
		sugerencias:     sugerencias,
		db:              db,
		redis:           redis,
		logger:          logger,
	}
}

// Health reporta el estado del servicio y sus dependencias
func (api *API) Health(c *gin.Context) {
	status := http.StatusOK
	checks := gin.H{"database": "ok", "redis": "ok"}

	if err := api.db.HealthCheck(); err != nil {
		checks["database"] = err.Error()
		status = http.StatusServiceUnavailable
	}
	if err := api.redis.HealthCheck(); err != nil {
		checks["redis"] = err.Error()
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"service": "tienda-service",
		"checks":  checks,
	})
}

// Login valida credenciales y retorna un token de sesión
func (api *API) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid request format", []models.ErrorDetail{
			{Field: "body", Issue: err.Error()},
		}))
		return
	}

	response, err := api.authService.Login(&req)
	if err != nil {
		api.respondError(c, err, "Error during login")
		return
	}

	c.JSON(http.StatusOK, response)
}

// Logout cierra la sesión del token actual
func (api *API) Logout(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, models.NewUnauthorizedResponse("Authentication required"))
		return
	}

	if err := api.authService.Logout(token); err != nil {
		api.respondError(c, err, "Error during logout")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetCatalogo lista los productos comprables
func (api *API) GetCatalogo(c *gin.Context) {
	productos, err := api.catalogService.Catalogo()
	if err != nil {
		api.respondError(c, err, "Error listing catalog")
		return
	}

	c.JSON(http.StatusOK, gin.H{"productos": productos})
}

// GetProducto obtiene el detalle de un producto activo
func (api *API) GetProducto(c *gin.Context) {
	id, ok := api.paramID(c, "id")
	if !ok {
		return
	}

	producto, err := api.catalogService.Producto(id)
	if err != nil {
		api.respondError(c, err, "Error getting product")
		return
	}

	c.JSON(http.StatusOK, producto)
}

// GetStock consulta el stock vivo de un producto
func (api *API) GetStock(c *gin.Context) {
	id, ok := api.paramID(c, "id")
	if !ok {
		return
	}

	c.JSON(http.StatusOK, api.catalogService.Stock(id))
}

// GetCarrito retorna el carrito de la sesión
func (api *API) GetCarrito(c *gin.Context) {
	snapshot, err := api.carritoService.Ver(api.sessionID(c))
	if err != nil {
		api.respondError(c, err, "Error loading cart")
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// AgregarAlCarrito suma un producto al carrito de la sesión
func (api *API) AgregarAlCarrito(c *gin.Context) {
	var req models.AgregarCarritoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid request format", []models.ErrorDetail{
			{Field: "body", Issue: err.Error()},
		}))
		return
	}

	snapshot, err := api.carritoService.Agregar(api.sessionID(c), req.ProductoID, req.Cantidad)
	if err != nil {
		api.respondError(c, err, "Error adding to cart")
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// ActualizarCarrito fija la cantidad de un producto; cero lo elimina
func (api *API) ActualizarCarrito(c *gin.Context) {
	id, ok := api.paramID(c, "id")
	if !ok {
		return
	}

	var req models.ActualizarCarritoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid request format", []models.ErrorDetail{
			{Field: "body", Issue: err.Error()},
		}))
		return
	}

	snapshot, err := api.carritoService.Actualizar(api.sessionID(c), id, req.Cantidad)
	if err != nil {
		api.respondError(c, err, "Error updating cart")
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// QuitarDelCarrito elimina un producto del carrito
func (api *API) QuitarDelCarrito(c *gin.Context) {
	id, ok := api.paramID(c, "id")
	if !ok {
		return
	}

	snapshot, err := api.carritoService.Quitar(api.sessionID(c), id)
	if err != nil {
		api.respondError(c, err, "Error removing from cart")
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// VaciarCarrito descarta el carrito completo
func (api *API) VaciarCarrito(c *gin.Context) {
	if err := api.carritoService.Vaciar(api.sessionID(c)); err != nil {
		api.respondError(c, err, "Error clearing cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetCheckout arma el preview del checkout revalidado contra stock vivo
func (api *API) GetCheckout(c *gin.Context) {
	identidad, ok := api.requireRol(c, models.RolCliente)
	if !ok {
		return
	}

	view, err := api.checkoutService.Vista(api.sessionID(c), identidad.UsuarioID)
	if err != nil {
		api.respondError(c, err, "Error building checkout view")
		return
	}

	c.JSON(http.StatusOK, view)
}

// ConfirmarCheckout arma la vista de confirmación previa al pago
func (api *API) ConfirmarCheckout(c *gin.Context) {
	if _, ok := api.requireRol(c, models.RolCliente); !ok {
		return
	}

	var req models.ConfirmacionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid request format", []models.ErrorDetail{
			{Field: "body", Issue: err.Error()},
		}))
		return
	}

	view, err := api.checkoutService.Confirmar(api.sessionID(c), req.MetodoPago)
	if err != nil {
		api.respondError(c, err, "Error building confirmation")
		return
	}

	c.JSON(http.StatusOK, view)
}

// Pagar procesa el pago del carrito y crea la venta
func (api *API) Pagar(c *gin.Context) {
	identidad, ok := api.requireRol(c, models.RolCliente)
	if !ok {
		return
	}

	var req models.PagoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid request format", []models.ErrorDetail{
			{Field: "body", Issue: err.Error()},
		}))
		return
	}

	response, err := api.checkoutService.Pagar(c.Request.Context(), api.sessionID(c), identidad, &req)
	if err != nil {
		api.respondError(c, err, "Error processing payment")
		return
	}

	c.JSON(http.StatusCreated, response)
}

// GetMisCompras lista las compras del usuario autenticado
func (api *API) GetMisCompras(c *gin.Context) {
	identidad, ok := api.requireRol(c, models.RolCliente)
	if !ok {
		return
	}

	ventas, err := api.checkoutService.MisCompras(identidad.UsuarioID)
	if err != nil {
		api.respondError(c, err, "Error listing purchases")
		return
	}

	c.JSON(http.StatusOK, gin.H{"compras": ventas})
}

// CancelarCompra revierte una compra dentro de la ventana de cancelación
func (api *API) CancelarCompra(c *gin.Context) {
	identidad, ok := api.requireRol(c, models.RolCliente)
	if !ok {
		return
	}

	numero := c.Param("numero")
	if err := api.checkoutService.Cancelar(c.Request.Context(), numero, identidad.UsuarioID); err != nil {
		api.respondError(c, err, "Error cancelling purchase")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "cancelada", "numero_pedido": numero})
}

// GetComprobante obtiene el detalle de una compra del usuario
func (api *API) GetComprobante(c *gin.Context) {
	identidad, ok := api.requireRol(c, models.RolCliente)
	if !ok {
		return
	}

	venta, err := api.checkoutService.Comprobante(c.Param("numero"), identidad.UsuarioID)
	if err != nil {
		api.respondError(c, err, "Error getting receipt")
		return
	}

	c.JSON(http.StatusOK, venta)
}

// GetComprobantePDF descarga el comprobante de una compra en PDF
func (api *API) GetComprobantePDF(c *gin.Context) {
	identidad, ok := api.requireRol(c, models.RolCliente)
	if !ok {
		return
	}

	venta, err := api.checkoutService.Comprobante(c.Param("numero"), identidad.UsuarioID)
	if err != nil {
		api.respondError(c, err, "Error getting receipt")
		return
	}

	pdfData, err := api.comprobantes.GenerarPDF(venta, identidad.Username)
	if err != nil {
		api.respondError(c, err, "Error generating receipt PDF")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=comprobante-%s.pdf", venta.NumeroPedido))
	c.Data(http.StatusOK, "application/pdf", pdfData)
}

// GetMisProductos lista los productos del vendedor autenticado
func (api *API) GetMisProductos(c *gin.Context) {
	identidad, ok := api.identidad(c)
	if !ok {
		return
	}

	productos, err := api.catalogService.MisProductos(identidad)
	if err != nil {
		api.respondError(c, err, "Error listing seller products")
		return
	}

	c.JSON(http.StatusOK, gin.H{"productos": productos})
}

// CrearProducto da de alta un producto del vendedor
func (api *API) CrearProducto(c *gin.Context) {
	identidad, ok := api.identidad(c)
	if !ok {
		return
	}

	var req models.CreateProductoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid request format", []models.ErrorDetail{
			{Field: "body", Issue: err.Error()},
		}))
		return
	}

	response, err := api.catalogService.CrearProducto(identidad, &req)
	if err != nil {
		api.respondError(c, err, "Error creating product")
		return
	}

	c.JSON(http.StatusCreated, response)
}

// GetStockBajo lista los productos del vendedor con stock bajo
func (api *API) GetStockBajo(c *gin.Context) {
	identidad, ok := api.identidad(c)
	if !ok {
		return
	}

	productos, err := api.catalogService.StockBajo(identidad)
	if err != nil {
		api.respondError(c, err, "Error listing low stock products")
		return
	}

	c.JSON(http.StatusOK, gin.H{"productos": productos, "umbral": services.UmbralStockBajo})
}

// SolicitarCambio crea una solicitud de cambio de stock/precio
func (api *API) SolicitarCambio(c *gin.Context) {
	identidad, ok := api.identidad(c)
	if !ok {
		return
	}

	id, ok := api.paramID(c, "id")
	if !ok {
		return
	}

	var req models.CambioStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid request format", []models.ErrorDetail{
			{Field: "body", Issue: err.Error()},
		}))
		return
	}

	response, err := api.cambioService.Solicitar(c.Request.Context(), identidad, id, &req)
	if err != nil {
		api.respondError(c, err, "Error creating stock change request")
		return
	}

	c.JSON(http.StatusCreated, response)
}

// SolicitarBaja crea una solicitud de baja de producto
func (api *API) SolicitarBaja(c *gin.Context) {
	identidad, ok := api.identidad(c)
	if !ok {
		return
	}

	id, ok := api.paramID(c, "id")
	if !ok {
		return
	}

	response, err := api.cambioService.SolicitarBaja(c.Request.Context(), identidad, id)
	if err != nil {
		api.respondError(c, err, "Error creating removal request")
		return
	}

	c.JSON(http.StatusCreated, response)
}

// GetMisCambios lista las solicitudes pendientes del vendedor
func (api *API) GetMisCambios(c *gin.Context) {
	identidad, ok := api.identidad(c)
	if !ok {
		return
	}

	cambios, err := api.cambioService.PendientesDeVendedor(identidad)
	if err != nil {
		api.respondError(c, err, "Error listing pending changes")
		return
	}

	c.JSON(http.StatusOK, gin.H{"cambios": cambios})
}

// SugerirProducto busca datos en Open Food Facts para prellenar el alta
func (api *API) SugerirProducto(c *gin.Context) {
	identidad, ok := api.identidad(c)
	if !ok {
		return
	}

	sugerencia, err := api.sugerencias.Sugerir(c.Request.Context(), identidad, c.Query("q"))
	if err != nil {
		api.respondError(c, err, "Error suggesting product data")
		return
	}

	c.JSON(http.StatusOK, sugerencia)
}

// GetCambiosPendientes lista todas las solicitudes pendientes para el dueño
func (api *API) GetCambiosPendientes(c *gin.Context) {
	identidad, ok := api.identidad(c)
	if !ok {
		return
	}

	cambios, err := api.cambioService.Pendientes(identidad)
	if err != nil {
		api.respondError(c, err, "Error listing pending changes")
		return
	}

	c.JSON(http.StatusOK, gin.H{"cambios": cambios})
}

// AutorizarCambio aplica una solicitud pendiente al producto
func (api *API) AutorizarCambio(c *gin.Context) {
	identidad, ok := api.identidad(c)
	if !ok {
		return
	}

	id, ok := api.paramID(c, "id")
	if !ok {
		return
	}

	if err := api.cambioService.Autorizar(c.Request.Context(), identidad, id); err != nil {
		api.respondError(c, err, "Error authorizing change")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": string(models.CambioAutorizado)})
}

// RechazarCambio descarta una solicitud pendiente
func (api *API) RechazarCambio(c *gin.Context) {
	identidad, ok := api.identidad(c)
	if !ok {
		return
	}

	id, ok := api.paramID(c, "id")
	if !ok {
		return
	}

	if err := api.cambioService.Rechazar(c.Request.Context(), identidad, id); err != nil {
		api.respondError(c, err, "Error rejecting change")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": string(models.CambioRechazado)})
}

// GetPanel arma el panel de métricas del dueño
func (api *API) GetPanel(c *gin.Context) {
	identidad, ok := api.identidad(c)
	if !ok {
		return
	}

	resumen, err := api.panelService.Resumen(identidad)
	if err != nil {
		api.respondError(c, err, "Error building dashboard")
		return
	}

	c.JSON(http.StatusOK, resumen)
}

// paramID parsea el parámetro de ruta como ID numérico
func (api *API) paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid ID", []models.ErrorDetail{
			{Field: name, Issue: "Must be a numeric ID"},
		}))
		return 0, false
	}
	return id, true
}

// respondError traduce errores tipados del dominio a respuestas HTTP
func (api *API) respondError(c *gin.Context, err error, logMsg string) {
	switch {
	case models.IsNotFound(err):
		c.JSON(http.StatusNotFound, models.NewNotFoundResponse(err.Error()))
	case models.IsInsufficientStock(err):
		c.JSON(http.StatusConflict, models.NewErrorResponse(models.ErrorCodeStock, err.Error()))
	case models.IsExpired(err):
		c.JSON(http.StatusConflict, models.NewErrorResponse(models.ErrorCodeExpired, err.Error()))
	case models.IsConflict(err):
		c.JSON(http.StatusConflict, models.NewConflictResponse(err.Error()))
	case models.IsUnauthorized(err):
		c.JSON(http.StatusUnauthorized, models.NewUnauthorizedResponse(err.Error()))
	case models.IsForbidden(err):
		c.JSON(http.StatusForbidden, models.NewForbiddenResponse(err.Error()))
	default:
		api.logger.WithError(err).Error(logMsg)
		c.JSON(http.StatusInternalServerError, models.NewInternalResponse("Internal server error"))
	}
}
