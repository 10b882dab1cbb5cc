package models

import (
	"github.com/shopspring/decimal"
)

// Producto representa un producto del catálogo
type Producto struct {
	ID          int64           `json:"id" db:"id"`
	Nombre      string          `json:"nombre" db:"nombre"`
	Descripcion string          `json:"descripcion" db:"descripcion"`
	Precio      decimal.Decimal `json:"precio" db:"precio"`
	Stock       int             `json:"stock" db:"stock"`
	Categoria   string          `json:"categoria" db:"categoria"`
	ImagenURL   string          `json:"imagen_url" db:"imagen_url"`
	VendedorID  int64           `json:"vendedor_id" db:"vendedor_id"`
	Activo      bool            `json:"activo" db:"activo"`
}

// CreateProductoRequest representa el request para dar de alta un producto
type CreateProductoRequest struct {
	Nombre      string          `json:"nombre" binding:"required"`
	Descripcion string          `json:"descripcion"`
	Precio      decimal.Decimal `json:"precio" binding:"required"`
	Stock       int             `json:"stock" binding:"gte=0"`
	Categoria   string          `json:"categoria"`
	ImagenURL   string          `json:"imagen_url"`
}

// ProductoResponse representa la respuesta al crear un producto
type ProductoResponse struct {
	ID int64 `json:"id"`
}

// StockResponse representa la consulta de stock vivo de un producto
type StockResponse struct {
	Stock int `json:"stock"`
}

// SugerenciaProducto representa los datos sugeridos para prellenar el
// alta de un producto, obtenidos de Open Food Facts
type SugerenciaProducto struct {
	Encontrado   bool   `json:"encontrado"`
	Nombre       string `json:"nombre,omitempty"`
	Categoria    string `json:"categoria,omitempty"`
	ImagenURL    string `json:"imagen_url,omitempty"`
	Marca        string `json:"marca,omitempty"`
	Ingredientes string `json:"ingredientes,omitempty"`
	Mensaje      string `json:"mensaje,omitempty"`
}
