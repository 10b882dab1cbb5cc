package services

import (
	"testing"

	"github.com/sergio-centurion/verduleria-service/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogoExcluyeSinStockEInactivos(t *testing.T) {
	agotado := nuevoProducto(2, "Pera", 50, 0)
	inactivo := nuevoProducto(3, "Kiwi", 80, 5)
	inactivo.Activo = false

	productos := newFakeProductos(nuevoProducto(1, "Manzana", 100, 10), agotado, inactivo)
	svc := NewCatalogService(productos, testLogger())

	catalogo, err := svc.Catalogo()
	require.NoError(t, err)
	require.Len(t, catalogo, 1)
	assert.Equal(t, "Manzana", catalogo[0].Nombre)
}

func TestStockNuncaFalla(t *testing.T) {
	inactivo := nuevoProducto(2, "Pera", 50, 5)
	inactivo.Activo = false

	productos := newFakeProductos(nuevoProducto(1, "Manzana", 100, 10), inactivo)
	svc := NewCatalogService(productos, testLogger())

	assert.Equal(t, 10, svc.Stock(1).Stock)
	// Inactivo o inexistente reportan cero, nunca error
	assert.Equal(t, 0, svc.Stock(2).Stock)
	assert.Equal(t, 0, svc.Stock(999).Stock)
}

func TestCrearProductoConImagenPorDefecto(t *testing.T) {
	productos := newFakeProductos()
	svc := NewCatalogService(productos, testLogger())

	resp, err := svc.CrearProducto(vendedorDePrueba(), &models.CreateProductoRequest{
		Nombre:    "Banana",
		Precio:    decimal.NewFromInt(90),
		Stock:     12,
		Categoria: "Frutas",
	})
	require.NoError(t, err)

	producto := productos.productos[resp.ID]
	require.NotNil(t, producto)
	assert.Equal(t, imagenesPorCategoria["Frutas"], producto.ImagenURL)
	assert.Equal(t, int64(1), producto.VendedorID)
	assert.True(t, producto.Activo)
}

func TestCrearProductoRespetaImagenExplicita(t *testing.T) {
	productos := newFakeProductos()
	svc := NewCatalogService(productos, testLogger())

	resp, err := svc.CrearProducto(vendedorDePrueba(), &models.CreateProductoRequest{
		Nombre:    "Banana",
		Precio:    decimal.NewFromInt(90),
		Stock:     12,
		Categoria: "Frutas",
		ImagenURL: "https://example.com/banana.jpg",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/banana.jpg", productos.productos[resp.ID].ImagenURL)
}

func TestCrearProductoRequiereRolVendedor(t *testing.T) {
	svc := NewCatalogService(newFakeProductos(), testLogger())

	_, err := svc.CrearProducto(clienteDePrueba(), &models.CreateProductoRequest{
		Nombre: "Banana",
		Precio: decimal.NewFromInt(90),
	})
	require.Error(t, err)
	assert.True(t, models.IsForbidden(err))
}

func TestStockBajoUsaUmbral(t *testing.T) {
	productos := newFakeProductos(
		nuevoProducto(1, "Manzana", 100, 3),
		nuevoProducto(2, "Pera", 50, 10),
		nuevoProducto(3, "Kiwi", 80, 25),
	)
	svc := NewCatalogService(productos, testLogger())

	bajos, err := svc.StockBajo(vendedorDePrueba())
	require.NoError(t, err)
	require.Len(t, bajos, 1)
	assert.Equal(t, "Manzana", bajos[0].Nombre)
}
