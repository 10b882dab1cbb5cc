package services

import (
	"context"
	"testing"

	"github.com/sergio-centurion/verduleria-service/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vendedorDePrueba() *models.Identidad {
	return &models.Identidad{UsuarioID: 1, Username: "carlos", Rol: models.RolVendedor}
}

func duenoDePrueba() *models.Identidad {
	return &models.Identidad{UsuarioID: 2, Username: "marta", Rol: models.RolDueno}
}

type cambioFixture struct {
	productos *fakeProductos
	cambios   *fakeCambios
	eventos   *fakeEventos
	svc       *CambioStockService
}

func newCambioFixture(productos ...*models.Producto) *cambioFixture {
	f := &cambioFixture{
		productos: newFakeProductos(productos...),
		eventos:   &fakeEventos{},
	}
	f.cambios = newFakeCambios(f.productos)
	f.svc = NewCambioStockService(f.productos, f.cambios, f.eventos, testLogger())
	return f
}

func TestPorcentajeCambio(t *testing.T) {
	assert.Equal(t, 50.0, PorcentajeCambio(10, 15))
	assert.Equal(t, -50.0, PorcentajeCambio(10, 5))
	assert.Equal(t, -100.0, PorcentajeCambio(10, 0))
	assert.Equal(t, 0.0, PorcentajeCambio(10, 10))
	// Con stock anterior cero cualquier alta cuenta como 100
	assert.Equal(t, 100.0, PorcentajeCambio(0, 5))
	assert.Equal(t, 100.0, PorcentajeCambio(0, 0))
}

func TestSolicitarRegistraEstadoVigente(t *testing.T) {
	f := newCambioFixture(nuevoProducto(1, "Manzana", 100, 10))

	resp, err := f.svc.Solicitar(context.Background(), vendedorDePrueba(), 1, &models.CambioStockRequest{
		StockNuevo:  15,
		PrecioNuevo: decimal.NewFromInt(120),
		Motivo:      "reposición semanal",
	})
	require.NoError(t, err)

	assert.Equal(t, models.CambioPendiente, resp.Estado)
	assert.Equal(t, 50.0, resp.PorcentajeCambio)

	cambio, err := f.cambios.GetByID(resp.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, cambio.StockAnterior)
	assert.True(t, cambio.PrecioAnterior.Equal(decimal.NewFromInt(100)))

	// El producto no se toca hasta la autorización
	assert.Equal(t, 10, f.productos.CurrentStock(1))
	assert.Equal(t, 1, f.eventos.cambiosCreados)
}

func TestSolicitarProductoAjeno(t *testing.T) {
	producto := nuevoProducto(1, "Manzana", 100, 10)
	producto.VendedorID = 99
	f := newCambioFixture(producto)

	_, err := f.svc.Solicitar(context.Background(), vendedorDePrueba(), 1, &models.CambioStockRequest{
		StockNuevo:  5,
		PrecioNuevo: decimal.NewFromInt(100),
	})
	require.Error(t, err)
	assert.True(t, models.IsForbidden(err))
}

func TestSolicitarRequiereRolVendedor(t *testing.T) {
	f := newCambioFixture(nuevoProducto(1, "Manzana", 100, 10))

	_, err := f.svc.Solicitar(context.Background(), clienteDePrueba(), 1, &models.CambioStockRequest{
		StockNuevo:  5,
		PrecioNuevo: decimal.NewFromInt(100),
	})
	require.Error(t, err)
	assert.True(t, models.IsForbidden(err))
}

func TestAutorizarAplicaCambio(t *testing.T) {
	f := newCambioFixture(nuevoProducto(1, "Manzana", 100, 10))

	resp, err := f.svc.Solicitar(context.Background(), vendedorDePrueba(), 1, &models.CambioStockRequest{
		StockNuevo:  25,
		PrecioNuevo: decimal.NewFromInt(150),
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.Autorizar(context.Background(), duenoDePrueba(), resp.ID))

	producto := f.productos.productos[1]
	assert.Equal(t, 25, producto.Stock)
	assert.True(t, producto.Precio.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, 1, f.eventos.cambiosDecididos)
}

func TestAutorizarDosVeces(t *testing.T) {
	f := newCambioFixture(nuevoProducto(1, "Manzana", 100, 10))

	resp, err := f.svc.Solicitar(context.Background(), vendedorDePrueba(), 1, &models.CambioStockRequest{
		StockNuevo:  25,
		PrecioNuevo: decimal.NewFromInt(150),
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.Autorizar(context.Background(), duenoDePrueba(), resp.ID))

	// Se vende stock después de la primera autorización
	f.productos.productos[1].Stock = 20

	err = f.svc.Autorizar(context.Background(), duenoDePrueba(), resp.ID)
	require.Error(t, err)
	assert.True(t, models.IsConflict(err))

	// La segunda decisión no volvió a pisar el stock
	assert.Equal(t, 20, f.productos.productos[1].Stock)
}

func TestRechazarNoTocaProducto(t *testing.T) {
	f := newCambioFixture(nuevoProducto(1, "Manzana", 100, 10))

	resp, err := f.svc.Solicitar(context.Background(), vendedorDePrueba(), 1, &models.CambioStockRequest{
		StockNuevo:  25,
		PrecioNuevo: decimal.NewFromInt(150),
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.Rechazar(context.Background(), duenoDePrueba(), resp.ID))

	producto := f.productos.productos[1]
	assert.Equal(t, 10, producto.Stock)
	assert.True(t, producto.Precio.Equal(decimal.NewFromInt(100)))

	// Rechazar no se puede revertir autorizando después
	err = f.svc.Autorizar(context.Background(), duenoDePrueba(), resp.ID)
	require.Error(t, err)
	assert.True(t, models.IsConflict(err))
}

func TestAutorizarRequiereRolDueno(t *testing.T) {
	f := newCambioFixture(nuevoProducto(1, "Manzana", 100, 10))

	resp, err := f.svc.Solicitar(context.Background(), vendedorDePrueba(), 1, &models.CambioStockRequest{
		StockNuevo:  25,
		PrecioNuevo: decimal.NewFromInt(150),
	})
	require.NoError(t, err)

	err = f.svc.Autorizar(context.Background(), vendedorDePrueba(), resp.ID)
	require.Error(t, err)
	assert.True(t, models.IsForbidden(err))
}

func TestBajaDesactivaProducto(t *testing.T) {
	f := newCambioFixture(nuevoProducto(1, "Manzana", 100, 10))

	resp, err := f.svc.SolicitarBaja(context.Background(), vendedorDePrueba(), 1)
	require.NoError(t, err)
	assert.Equal(t, -100.0, resp.PorcentajeCambio)

	cambio, err := f.cambios.GetByID(resp.ID)
	require.NoError(t, err)
	assert.True(t, cambio.EsBaja())
	// El precio queda como estaba: la baja no es un cambio de precio
	assert.True(t, cambio.PrecioNuevo.Equal(decimal.NewFromInt(100)))

	require.NoError(t, f.svc.Autorizar(context.Background(), duenoDePrueba(), resp.ID))

	producto := f.productos.productos[1]
	assert.Equal(t, 0, producto.Stock)
	assert.False(t, producto.Activo)
}

func TestEsBajaDistingueStockCero(t *testing.T) {
	// Stock nuevo cero sin motivo de baja es un cambio común, no una baja
	cambio := &models.CambioStock{StockNuevo: 0, Motivo: "se agotó la temporada"}
	assert.False(t, cambio.EsBaja())

	cambio = &models.CambioStock{StockNuevo: 0, Motivo: "Baja"}
	assert.True(t, cambio.EsBaja())

	cambio = &models.CambioStock{StockNuevo: 5, Motivo: "Baja"}
	assert.False(t, cambio.EsBaja())
}

func TestListadosPorRol(t *testing.T) {
	f := newCambioFixture(
		nuevoProducto(1, "Manzana", 100, 10),
		nuevoProducto(2, "Pera", 50, 5),
	)

	otroVendedor := &models.Identidad{UsuarioID: 3, Username: "luis", Rol: models.RolVendedor}
	f.productos.productos[2].VendedorID = 3

	_, err := f.svc.Solicitar(context.Background(), vendedorDePrueba(), 1, &models.CambioStockRequest{
		StockNuevo:  20,
		PrecioNuevo: decimal.NewFromInt(100),
	})
	require.NoError(t, err)
	_, err = f.svc.Solicitar(context.Background(), otroVendedor, 2, &models.CambioStockRequest{
		StockNuevo:  8,
		PrecioNuevo: decimal.NewFromInt(50),
	})
	require.NoError(t, err)

	// El dueño ve todas las pendientes
	todas, err := f.svc.Pendientes(duenoDePrueba())
	require.NoError(t, err)
	assert.Len(t, todas, 2)

	// Cada vendedor ve solo las suyas
	propias, err := f.svc.PendientesDeVendedor(vendedorDePrueba())
	require.NoError(t, err)
	require.Len(t, propias, 1)
	assert.Equal(t, int64(1), propias[0].ProductoID)

	// Un vendedor no puede listar el panel del dueño
	_, err = f.svc.Pendientes(vendedorDePrueba())
	require.Error(t, err)
	assert.True(t, models.IsForbidden(err))
}
