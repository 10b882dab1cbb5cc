package models

import (
	"github.com/shopspring/decimal"
)

// CarritoItem representa una entrada del carrito. El precio es la foto
// tomada al agregar: no sigue cambios posteriores del producto (política
// explícita, la revalidación solo ajusta cantidades).
type CarritoItem struct {
	Nombre   string          `json:"nombre"`
	Precio   decimal.Decimal `json:"precio"`
	Cantidad int             `json:"cantidad"`
}

// Carrito representa el carrito de una sesión: producto id -> item.
// Vive en Redis con TTL de sesión, sin persistencia entre sesiones.
type Carrito map[string]*CarritoItem

// TotalItems retorna la cantidad total de unidades del carrito
func (c Carrito) TotalItems() int {
	total := 0
	for _, item := range c {
		total += item.Cantidad
	}
	return total
}

// TotalPrecio retorna el total del carrito a precios congelados
func (c Carrito) TotalPrecio() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c {
		total = total.Add(item.Precio.Mul(decimal.NewFromInt(int64(item.Cantidad))))
	}
	return total
}

// AgregarCarritoRequest representa el request para agregar un producto
type AgregarCarritoRequest struct {
	ProductoID int64 `json:"producto_id" binding:"required"`
	Cantidad   int   `json:"cantidad"`
}

// ActualizarCarritoRequest representa el request para fijar una cantidad
type ActualizarCarritoRequest struct {
	Cantidad int `json:"cantidad"`
}

// CarritoSnapshot representa la vista serializable del carrito
type CarritoSnapshot struct {
	Items       Carrito         `json:"items"`
	TotalItems  int             `json:"total_items"`
	TotalPrecio decimal.Decimal `json:"total_precio"`
}

// Snapshot arma la vista del carrito con sus totales
func (c Carrito) Snapshot() CarritoSnapshot {
	return CarritoSnapshot{
		Items:       c,
		TotalItems:  c.TotalItems(),
		TotalPrecio: c.TotalPrecio(),
	}
}
