package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EstadoVenta representa el estado de una venta
type EstadoVenta string

const (
	VentaCompletada EstadoVenta = "completada"
	VentaCancelada  EstadoVenta = "cancelada"
)

// Venta representa una compra persistida con sus items.
// total es inmutable una vez creada; la cancelación no borra la fila.
type Venta struct {
	ID           int64           `json:"id" db:"id"`
	UsuarioID    int64           `json:"usuario_id" db:"usuario_id"`
	Total        decimal.Decimal `json:"total" db:"total"`
	Fecha        time.Time       `json:"fecha" db:"fecha"`
	Estado       EstadoVenta     `json:"estado" db:"estado"`
	NumeroPedido string          `json:"numero_pedido" db:"numero_pedido"`
	TipoTarjeta  *string         `json:"tipo_tarjeta,omitempty" db:"tipo_tarjeta"`
	Ultimos4     *string         `json:"ultimos_4,omitempty" db:"ultimos_4"`
	Items        []VentaItem     `json:"items,omitempty"`
}

// VentaItem representa una línea de venta con precio congelado al momento
// de la compra, independiente de cambios posteriores del producto
type VentaItem struct {
	ID             int64           `json:"id" db:"id"`
	VentaID        int64           `json:"venta_id" db:"venta_id"`
	ProductoID     int64           `json:"producto_id" db:"producto_id"`
	Cantidad       int             `json:"cantidad" db:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario" db:"precio_unitario"`
	// Nombre del producto al momento de consultar (join)
	NombreProducto string `json:"nombre_producto,omitempty"`
}

// CheckoutLine representa una línea del preview de checkout
type CheckoutLine struct {
	ProductoID int64           `json:"producto_id"`
	Nombre     string          `json:"nombre"`
	Precio     decimal.Decimal `json:"precio"`
	Cantidad   int             `json:"cantidad"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

// CheckoutView representa el preview autoritativo del checkout: puede
// diferir del carrito porque las líneas sin stock suficiente se excluyen
type CheckoutView struct {
	Lines      []CheckoutLine  `json:"lines"`
	Total      decimal.Decimal `json:"total"`
	MetodoPago *MetodoPago     `json:"metodo_pago,omitempty"`
}

// ConfirmacionView representa la confirmación previa al pago; no toca inventario
type ConfirmacionView struct {
	Items      CarritoSnapshot `json:"carrito"`
	Total      decimal.Decimal `json:"total"`
	MetodoPago string          `json:"metodo_pago"`
}

// ConfirmacionRequest representa la elección de método de pago previa al pago
type ConfirmacionRequest struct {
	MetodoPago string `json:"metodo_pago" binding:"required"`
}

// PagoRequest representa los datos de pago del checkout. El pago es
// simulado: los datos de tarjeta solo se registran como referencia.
type PagoRequest struct {
	TipoTarjeta   string `json:"tipo_tarjeta" binding:"required"`
	Ultimos4      string `json:"ultimos_4" binding:"required,len=4,numeric"`
	GuardarMetodo bool   `json:"guardar_metodo"`
}

// VentaResponse representa la respuesta al procesar un pago
type VentaResponse struct {
	NumeroPedido string          `json:"numero_pedido"`
	Total        decimal.Decimal `json:"total"`
	Estado       EstadoVenta     `json:"estado"`
	Fecha        time.Time       `json:"fecha"`
}

// DashboardStats representa las métricas agregadas del panel del dueño
type DashboardStats struct {
	TotalVentas   int             `json:"total_ventas"`
	TotalIngresos decimal.Decimal `json:"total_ingresos"`
}

// TopProducto representa un producto del ranking de más vendidos
type TopProducto struct {
	Nombre       string `json:"nombre"`
	TotalVendido int    `json:"total_vendido"`
}
