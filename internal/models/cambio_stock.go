package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// EstadoCambio representa el estado de una solicitud de cambio de stock
type EstadoCambio string

const (
	CambioPendiente  EstadoCambio = "pendiente"
	CambioAutorizado EstadoCambio = "autorizado"
	CambioRechazado  EstadoCambio = "rechazado"
)

// MotivoBaja marca una solicitud como baja de producto
const MotivoBaja = "Baja"

// CambioStock representa una solicitud de cambio de stock/precio de un
// vendedor, pendiente de decisión del dueño. Las filas nunca se borran:
// son el historial de auditoría.
type CambioStock struct {
	ID                int64           `json:"id" db:"id"`
	ProductoID        int64           `json:"producto_id" db:"producto_id"`
	VendedorID        int64           `json:"vendedor_id" db:"vendedor_id"`
	StockAnterior     int             `json:"stock_anterior" db:"stock_anterior"`
	StockNuevo        int             `json:"stock_nuevo" db:"stock_nuevo"`
	PrecioAnterior    decimal.Decimal `json:"precio_anterior" db:"precio_anterior"`
	PrecioNuevo       decimal.Decimal `json:"precio_nuevo" db:"precio_nuevo"`
	PorcentajeCambio  float64         `json:"porcentaje_cambio" db:"porcentaje_cambio"`
	Motivo            string          `json:"motivo" db:"motivo"`
	Estado            EstadoCambio    `json:"estado" db:"estado"`
	FechaSolicitud    time.Time       `json:"fecha_solicitud" db:"fecha_solicitud"`
	AutorizadoPor     *int64          `json:"autorizado_por,omitempty" db:"autorizado_por"`
	FechaAutorizacion *time.Time      `json:"fecha_autorizacion,omitempty" db:"fecha_autorizacion"`
	// Campos de join para listados
	NombreProducto string `json:"nombre_producto,omitempty"`
	Vendedor       string `json:"vendedor,omitempty"`
}

// EsBaja reporta si la solicitud es una baja de producto: al autorizarla
// el producto queda con stock=0 y activo=false en vez de sobrescribir
// stock y precio
func (c *CambioStock) EsBaja() bool {
	return c.StockNuevo == 0 && strings.Contains(c.Motivo, MotivoBaja)
}

// Decidido reporta si la solicitud ya alcanzó un estado terminal
func (c *CambioStock) Decidido() bool {
	return c.Estado != CambioPendiente
}

// CambioStockRequest representa el request de un vendedor para solicitar
// un cambio de stock/precio
type CambioStockRequest struct {
	StockNuevo  int             `json:"stock_nuevo" binding:"gte=0"`
	PrecioNuevo decimal.Decimal `json:"precio_nuevo" binding:"required"`
	Motivo      string          `json:"motivo"`
}

// CambioStockResponse representa la respuesta al crear una solicitud
type CambioStockResponse struct {
	ID               int64        `json:"id"`
	Estado           EstadoCambio `json:"estado"`
	PorcentajeCambio float64      `json:"porcentaje_cambio"`
}
