package services

import (
	"github.com/sergio-centurion/verduleria-service/internal/models"
	"github.com/sirupsen/logrus"
)

// Umbral de stock bajo para el panel del vendedor
const UmbralStockBajo = 10

// Imágenes por defecto por categoría cuando el alta no trae una
var imagenesPorCategoria = map[string]string{
	"Frutas":   "https://images.pexels.com/photos/1132047/pexels-photo-1132047.jpeg?auto=compress&cs=tinysrgb&w=400",
	"Verduras": "https://images.pexels.com/photos/533360/pexels-photo-533360.jpeg?auto=compress&cs=tinysrgb&w=400",
}

// productoWriter es lo que el servicio necesita para altas y listados de productos
type productoWriter interface {
	productoReader
	Create(producto *models.Producto) error
	ListActivos() ([]models.Producto, error)
	ListByVendedor(vendedorID int64) ([]models.Producto, error)
	ListStockBajo(vendedorID int64, umbral int) ([]models.Producto, error)
}

// CatalogService maneja el catálogo público y los productos del vendedor
type CatalogService struct {
	productos productoWriter
	logger    *logrus.Logger
}

// NewCatalogService crea una nueva instancia del servicio
func NewCatalogService(productos productoWriter, logger *logrus.Logger) *CatalogService {
	return &CatalogService{
		productos: productos,
		logger:    logger,
	}
}

// Catalogo lista los productos comprables: activos y con stock
func (s *CatalogService) Catalogo() ([]models.Producto, error) {
	return s.productos.ListActivos()
}

// Producto obtiene un producto activo del catálogo
func (s *CatalogService) Producto(id int64) (*models.Producto, error) {
	return s.productos.GetActivoByID(id)
}

// Stock consulta el stock vivo de un producto. Nunca falla: un producto
// inexistente o dado de baja reporta cero.
func (s *CatalogService) Stock(id int64) *models.StockResponse {
	return &models.StockResponse{Stock: s.productos.CurrentStock(id)}
}

// CrearProducto da de alta un producto del vendedor. El alta es el único
// camino directo de escritura del vendedor: cambios posteriores de stock
// o precio requieren autorización del dueño.
func (s *CatalogService) CrearProducto(identidad *models.Identidad, req *models.CreateProductoRequest) (*models.ProductoResponse, error) {
	if err := RequireRol(identidad, models.RolVendedor); err != nil {
		return nil, err
	}

	imagenURL := req.ImagenURL
	if imagenURL == "" {
		imagenURL = imagenesPorCategoria[req.Categoria]
	}

	producto := &models.Producto{
		Nombre:      req.Nombre,
		Descripcion: req.Descripcion,
		Precio:      req.Precio,
		Stock:       req.Stock,
		Categoria:   req.Categoria,
		ImagenURL:   imagenURL,
		VendedorID:  identidad.UsuarioID,
		Activo:      true,
	}

	if err := s.productos.Create(producto); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"producto_id": producto.ID,
		"vendedor_id": identidad.UsuarioID,
	}).Info("Product created")

	return &models.ProductoResponse{ID: producto.ID}, nil
}

// MisProductos lista los productos del vendedor, incluidos los sin stock
func (s *CatalogService) MisProductos(identidad *models.Identidad) ([]models.Producto, error) {
	if err := RequireRol(identidad, models.RolVendedor); err != nil {
		return nil, err
	}
	return s.productos.ListByVendedor(identidad.UsuarioID)
}

// StockBajo lista los productos del vendedor por debajo del umbral
func (s *CatalogService) StockBajo(identidad *models.Identidad) ([]models.Producto, error) {
	if err := RequireRol(identidad, models.RolVendedor); err != nil {
		return nil, err
	}
	return s.productos.ListStockBajo(identidad.UsuarioID, UmbralStockBajo)
}
