package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sergio-centurion/verduleria-service/internal/models"
	"github.com/sirupsen/logrus"
)

// cambioStore es lo que el servicio necesita del repositorio de cambios
type cambioStore interface {
	Crear(cambio *models.CambioStock) error
	GetByID(id int64) (*models.CambioStock, error)
	ListPendientes() ([]models.CambioStock, error)
	ListPendientesByVendedor(vendedorID int64) ([]models.CambioStock, error)
	ListAutorizados(limit int) ([]models.CambioStock, error)
	Autorizar(cambioID, duenoID int64) (bool, error)
	Rechazar(cambioID, duenoID int64) (bool, error)
}

// eventosCambio publica los eventos del flujo de aprobación
type eventosCambio interface {
	CambioSolicitado(ctx context.Context, cambio *models.CambioStock)
	CambioDecidido(ctx context.Context, cambio *models.CambioStock, estado models.EstadoCambio)
}

// CambioStockService maneja el flujo de solicitud y aprobación de
// cambios de stock y precio. Los vendedores nunca mutan productos
// directamente: todo cambio comercial pasa por una solicitud que el
// dueño autoriza o rechaza.
type CambioStockService struct {
	productos productoReader
	cambios   cambioStore
	eventos   eventosCambio
	logger    *logrus.Logger

	now func() time.Time
}

// NewCambioStockService crea una nueva instancia del servicio
func NewCambioStockService(productos productoReader, cambios cambioStore, eventos eventosCambio, logger *logrus.Logger) *CambioStockService {
	return &CambioStockService{
		productos: productos,
		cambios:   cambios,
		eventos:   eventos,
		logger:    logger,
		now:       time.Now,
	}
}

// PorcentajeCambio calcula la variación porcentual del stock. Con stock
// anterior cero cualquier alta cuenta como 100.
func PorcentajeCambio(anterior, nuevo int) float64 {
	if anterior <= 0 {
		return 100
	}
	return (float64(nuevo) - float64(anterior)) / float64(anterior) * 100
}

// Solicitar crea una solicitud de cambio sobre un producto del vendedor.
// El stock y el precio vigentes quedan registrados como referencia de la
// solicitud; el producto no se toca hasta la autorización.
func (s *CambioStockService) Solicitar(ctx context.Context, identidad *models.Identidad, productoID int64, req *models.CambioStockRequest) (*models.CambioStockResponse, error) {
	if err := RequireRol(identidad, models.RolVendedor); err != nil {
		return nil, err
	}

	producto, err := s.productos.GetActivoByID(productoID)
	if err != nil {
		return nil, err
	}

	if producto.VendedorID != identidad.UsuarioID {
		return nil, &models.ForbiddenError{Motivo: "el producto pertenece a otro vendedor"}
	}

	cambio := &models.CambioStock{
		ProductoID:       productoID,
		VendedorID:       identidad.UsuarioID,
		StockAnterior:    producto.Stock,
		StockNuevo:       req.StockNuevo,
		PrecioAnterior:   producto.Precio,
		PrecioNuevo:      req.PrecioNuevo,
		PorcentajeCambio: PorcentajeCambio(producto.Stock, req.StockNuevo),
		Motivo:           req.Motivo,
		Estado:           models.CambioPendiente,
		FechaSolicitud:   s.now(),
	}

	if err := s.cambios.Crear(cambio); err != nil {
		return nil, err
	}

	s.eventos.CambioSolicitado(ctx, cambio)

	return &models.CambioStockResponse{
		ID:               cambio.ID,
		Estado:           cambio.Estado,
		PorcentajeCambio: cambio.PorcentajeCambio,
	}, nil
}

// SolicitarBaja crea una solicitud de baja del producto: stock nuevo
// cero, precio sin cambios y motivo de baja. Al autorizarla el producto
// queda inactivo en vez de sobrescrito.
func (s *CambioStockService) SolicitarBaja(ctx context.Context, identidad *models.Identidad, productoID int64) (*models.CambioStockResponse, error) {
	if err := RequireRol(identidad, models.RolVendedor); err != nil {
		return nil, err
	}

	producto, err := s.productos.GetActivoByID(productoID)
	if err != nil {
		return nil, err
	}

	if producto.VendedorID != identidad.UsuarioID {
		return nil, &models.ForbiddenError{Motivo: "el producto pertenece a otro vendedor"}
	}

	cambio := &models.CambioStock{
		ProductoID:       productoID,
		VendedorID:       identidad.UsuarioID,
		StockAnterior:    producto.Stock,
		StockNuevo:       0,
		PrecioAnterior:   producto.Precio,
		PrecioNuevo:      producto.Precio,
		PorcentajeCambio: -100,
		Motivo:           models.MotivoBaja,
		Estado:           models.CambioPendiente,
		FechaSolicitud:   s.now(),
	}

	if err := s.cambios.Crear(cambio); err != nil {
		return nil, err
	}

	s.eventos.CambioSolicitado(ctx, cambio)

	return &models.CambioStockResponse{
		ID:               cambio.ID,
		Estado:           cambio.Estado,
		PorcentajeCambio: cambio.PorcentajeCambio,
	}, nil
}

// Pendientes lista todas las solicitudes pendientes para el dueño
func (s *CambioStockService) Pendientes(identidad *models.Identidad) ([]models.CambioStock, error) {
	if err := RequireRol(identidad, models.RolDueno); err != nil {
		return nil, err
	}
	return s.cambios.ListPendientes()
}

// PendientesDeVendedor lista las solicitudes pendientes del vendedor
func (s *CambioStockService) PendientesDeVendedor(identidad *models.Identidad) ([]models.CambioStock, error) {
	if err := RequireRol(identidad, models.RolVendedor); err != nil {
		return nil, err
	}
	return s.cambios.ListPendientesByVendedor(identidad.UsuarioID)
}

// Autorizados lista los últimos cambios autorizados para el panel del dueño
func (s *CambioStockService) Autorizados(identidad *models.Identidad, limit int) ([]models.CambioStock, error) {
	if err := RequireRol(identidad, models.RolDueno); err != nil {
		return nil, err
	}
	return s.cambios.ListAutorizados(limit)
}

// Autorizar aplica una solicitud pendiente. La primera decisión sobre
// una solicitud gana: autorizar algo ya decidido devuelve conflicto sin
// volver a tocar el producto.
func (s *CambioStockService) Autorizar(ctx context.Context, identidad *models.Identidad, cambioID int64) error {
	if err := RequireRol(identidad, models.RolDueno); err != nil {
		return err
	}

	aplicado, err := s.cambios.Autorizar(cambioID, identidad.UsuarioID)
	if err != nil {
		return err
	}
	if !aplicado {
		return &models.ConflictError{Motivo: fmt.Sprintf("la solicitud %d ya fue decidida", cambioID)}
	}

	cambio, err := s.cambios.GetByID(cambioID)
	if err != nil {
		return err
	}

	s.eventos.CambioDecidido(ctx, cambio, models.CambioAutorizado)

	s.logger.WithFields(logrus.Fields{
		"cambio_id":   cambioID,
		"producto_id": cambio.ProductoID,
		"dueno_id":    identidad.UsuarioID,
	}).Info("Stock change authorized")

	return nil
}

// Rechazar descarta una solicitud pendiente sin tocar el producto
func (s *CambioStockService) Rechazar(ctx context.Context, identidad *models.Identidad, cambioID int64) error {
	if err := RequireRol(identidad, models.RolDueno); err != nil {
		return err
	}

	aplicado, err := s.cambios.Rechazar(cambioID, identidad.UsuarioID)
	if err != nil {
		return err
	}
	if !aplicado {
		return &models.ConflictError{Motivo: fmt.Sprintf("la solicitud %d ya fue decidida", cambioID)}
	}

	cambio, err := s.cambios.GetByID(cambioID)
	if err != nil {
		return err
	}

	s.eventos.CambioDecidido(ctx, cambio, models.CambioRechazado)

	s.logger.WithFields(logrus.Fields{
		"cambio_id":   cambioID,
		"producto_id": cambio.ProductoID,
		"dueno_id":    identidad.UsuarioID,
	}).Info("Stock change rejected")

	return nil
}
