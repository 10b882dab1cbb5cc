package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sergio-centurion/verduleria-service/internal/models"
	"github.com/sirupsen/logrus"
)

// testLogger descarta la salida para no ensuciar los tests
func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

// fakeProductos implementa productoWriter en memoria
type fakeProductos struct {
	productos map[int64]*models.Producto
}

func newFakeProductos(productos ...*models.Producto) *fakeProductos {
	f := &fakeProductos{productos: make(map[int64]*models.Producto)}
	for _, p := range productos {
		f.productos[p.ID] = p
	}
	return f
}

func (f *fakeProductos) GetActivoByID(id int64) (*models.Producto, error) {
	p, ok := f.productos[id]
	if !ok || !p.Activo {
		return nil, models.NewNotFound("producto", strconv.FormatInt(id, 10))
	}
	copia := *p
	return &copia, nil
}

func (f *fakeProductos) CurrentStock(id int64) int {
	p, ok := f.productos[id]
	if !ok || !p.Activo {
		return 0
	}
	return p.Stock
}

func (f *fakeProductos) Create(producto *models.Producto) error {
	producto.ID = int64(len(f.productos) + 1)
	f.productos[producto.ID] = producto
	return nil
}

func (f *fakeProductos) ListActivos() ([]models.Producto, error) {
	var out []models.Producto
	for _, p := range f.productos {
		if p.Activo && p.Stock > 0 {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProductos) ListByVendedor(vendedorID int64) ([]models.Producto, error) {
	var out []models.Producto
	for _, p := range f.productos {
		if p.VendedorID == vendedorID && p.Activo {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProductos) ListStockBajo(vendedorID int64, umbral int) ([]models.Producto, error) {
	var out []models.Producto
	for _, p := range f.productos {
		if p.VendedorID == vendedorID && p.Activo && p.Stock < umbral {
			out = append(out, *p)
		}
	}
	return out, nil
}

// fakeCarritos implementa carritoStore en memoria
type fakeCarritos struct {
	carritos map[string]models.Carrito
}

func newFakeCarritos() *fakeCarritos {
	return &fakeCarritos{carritos: make(map[string]models.Carrito)}
}

func (f *fakeCarritos) Load(sessionID string) (models.Carrito, error) {
	if carrito, ok := f.carritos[sessionID]; ok {
		return carrito, nil
	}
	return models.Carrito{}, nil
}

func (f *fakeCarritos) Save(sessionID string, carrito models.Carrito) error {
	f.carritos[sessionID] = carrito
	return nil
}

func (f *fakeCarritos) Delete(sessionID string) error {
	delete(f.carritos, sessionID)
	return nil
}

// fakeVentas implementa ventaStore en memoria, descontando stock contra
// fakeProductos con la misma semántica todo-o-nada del repositorio real
type fakeVentas struct {
	productos *fakeProductos
	ventas    []*models.Venta
	items     map[int64][]models.VentaItem
	// Cantidad de inserciones que deben fallar con conflicto de
	// número de pedido antes de aceptar
	conflictosRestantes int
	nextID              int64
}

func newFakeVentas(productos *fakeProductos) *fakeVentas {
	return &fakeVentas{
		productos: productos,
		items:     make(map[int64][]models.VentaItem),
	}
}

func (f *fakeVentas) Crear(venta *models.Venta, items []models.VentaItem) error {
	if f.conflictosRestantes > 0 {
		f.conflictosRestantes--
		return &models.ConflictError{Motivo: "numero de pedido duplicado: " + venta.NumeroPedido}
	}

	for _, item := range items {
		p, ok := f.productos.productos[item.ProductoID]
		if !ok || !p.Activo {
			return models.NewNotFound("producto", strconv.FormatInt(item.ProductoID, 10))
		}
		if p.Stock < item.Cantidad {
			return &models.InsufficientStockError{
				ProductoID: item.ProductoID,
				Solicitado: item.Cantidad,
				Disponible: p.Stock,
			}
		}
	}
	for _, item := range items {
		f.productos.productos[item.ProductoID].Stock -= item.Cantidad
	}

	f.nextID++
	venta.ID = f.nextID
	for i := range items {
		items[i].VentaID = venta.ID
	}
	copia := *venta
	f.ventas = append(f.ventas, &copia)
	f.items[venta.ID] = items
	venta.Items = items
	return nil
}

func (f *fakeVentas) GetByNumeroPedido(numeroPedido string, usuarioID int64) (*models.Venta, error) {
	for _, v := range f.ventas {
		if v.NumeroPedido == numeroPedido && v.UsuarioID == usuarioID {
			copia := *v
			copia.Items = f.items[v.ID]
			return &copia, nil
		}
	}
	return nil, models.NewNotFound("venta", numeroPedido)
}

func (f *fakeVentas) ListByUsuario(usuarioID int64) ([]models.Venta, error) {
	var out []models.Venta
	for i := len(f.ventas) - 1; i >= 0; i-- {
		if f.ventas[i].UsuarioID == usuarioID {
			out = append(out, *f.ventas[i])
		}
	}
	return out, nil
}

func (f *fakeVentas) ItemsByVentaID(ventaID int64) ([]models.VentaItem, error) {
	return f.items[ventaID], nil
}

func (f *fakeVentas) Cancelar(ventaID int64) error {
	for _, v := range f.ventas {
		if v.ID == ventaID {
			if v.Estado != models.VentaCompletada {
				return &models.ConflictError{
					Motivo: fmt.Sprintf("la venta %d ya fue cancelada", ventaID),
				}
			}
			for _, item := range f.items[ventaID] {
				if p, ok := f.productos.productos[item.ProductoID]; ok {
					p.Stock += item.Cantidad
				}
			}
			v.Estado = models.VentaCancelada
			return nil
		}
	}
	return models.NewNotFound("venta", strconv.FormatInt(ventaID, 10))
}

// fakeMetodos implementa metodoPagoStore en memoria
type fakeMetodos struct {
	metodos []*models.MetodoPago
}

func (f *fakeMetodos) MetodoPredeterminado(usuarioID int64) (*models.MetodoPago, error) {
	for i := len(f.metodos) - 1; i >= 0; i-- {
		if f.metodos[i].UsuarioID == usuarioID {
			return f.metodos[i], nil
		}
	}
	return nil, nil
}

func (f *fakeMetodos) GuardarMetodo(metodo *models.MetodoPago) error {
	metodo.ID = int64(len(f.metodos) + 1)
	f.metodos = append(f.metodos, metodo)
	return nil
}

// fakeEventos cuenta los eventos publicados
type fakeEventos struct {
	ventasCreadas    int
	ventasCanceladas int
	cambiosCreados   int
	cambiosDecididos int
}

func (f *fakeEventos) VentaCreada(ctx context.Context, venta *models.Venta)    { f.ventasCreadas++ }
func (f *fakeEventos) VentaCancelada(ctx context.Context, venta *models.Venta) { f.ventasCanceladas++ }
func (f *fakeEventos) CambioSolicitado(ctx context.Context, c *models.CambioStock) {
	f.cambiosCreados++
}
func (f *fakeEventos) CambioDecidido(ctx context.Context, c *models.CambioStock, e models.EstadoCambio) {
	f.cambiosDecididos++
}

// fakeCambios implementa cambioStore en memoria, aplicando las
// decisiones sobre fakeProductos igual que el repositorio real
type fakeCambios struct {
	productos *fakeProductos
	cambios   map[int64]*models.CambioStock
	nextID    int64
}

func newFakeCambios(productos *fakeProductos) *fakeCambios {
	return &fakeCambios{
		productos: productos,
		cambios:   make(map[int64]*models.CambioStock),
	}
}

func (f *fakeCambios) Crear(cambio *models.CambioStock) error {
	f.nextID++
	cambio.ID = f.nextID
	copia := *cambio
	f.cambios[cambio.ID] = &copia
	return nil
}

func (f *fakeCambios) GetByID(id int64) (*models.CambioStock, error) {
	if c, ok := f.cambios[id]; ok {
		copia := *c
		return &copia, nil
	}
	return nil, models.NewNotFound("cambio", strconv.FormatInt(id, 10))
}

func (f *fakeCambios) ListPendientes() ([]models.CambioStock, error) {
	var out []models.CambioStock
	for _, c := range f.cambios {
		if c.Estado == models.CambioPendiente {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCambios) ListPendientesByVendedor(vendedorID int64) ([]models.CambioStock, error) {
	var out []models.CambioStock
	for _, c := range f.cambios {
		if c.Estado == models.CambioPendiente && c.VendedorID == vendedorID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCambios) ListAutorizados(limit int) ([]models.CambioStock, error) {
	var out []models.CambioStock
	for _, c := range f.cambios {
		if c.Estado == models.CambioAutorizado && len(out) < limit {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCambios) Autorizar(cambioID, duenoID int64) (bool, error) {
	c, ok := f.cambios[cambioID]
	if !ok {
		return false, models.NewNotFound("cambio", strconv.FormatInt(cambioID, 10))
	}
	if c.Decidido() {
		return false, nil
	}

	p := f.productos.productos[c.ProductoID]
	if c.EsBaja() {
		p.Stock = 0
		p.Activo = false
	} else {
		p.Stock = c.StockNuevo
		p.Precio = c.PrecioNuevo
	}

	c.Estado = models.CambioAutorizado
	c.AutorizadoPor = &duenoID
	return true, nil
}

func (f *fakeCambios) Rechazar(cambioID, duenoID int64) (bool, error) {
	c, ok := f.cambios[cambioID]
	if !ok {
		return false, models.NewNotFound("cambio", strconv.FormatInt(cambioID, 10))
	}
	if c.Decidido() {
		return false, nil
	}

	c.Estado = models.CambioRechazado
	c.AutorizadoPor = &duenoID
	return true, nil
}

// fakeUsuarios implementa usuarioReader en memoria
type fakeUsuarios struct {
	usuarios map[string]*models.Usuario
}

func (f *fakeUsuarios) GetByUsername(username string) (*models.Usuario, error) {
	if u, ok := f.usuarios[username]; ok {
		return u, nil
	}
	return nil, models.NewNotFound("usuario", username)
}

// fakeSesiones implementa sesionStore en memoria
type fakeSesiones struct {
	sesiones map[string]models.Identidad
}

func newFakeSesiones() *fakeSesiones {
	return &fakeSesiones{sesiones: make(map[string]models.Identidad)}
}

func (f *fakeSesiones) Guardar(token string, identidad models.Identidad) error {
	f.sesiones[token] = identidad
	return nil
}

func (f *fakeSesiones) Obtener(token string) (*models.Identidad, error) {
	if identidad, ok := f.sesiones[token]; ok {
		return &identidad, nil
	}
	return nil, models.NewNotFound("sesion", token)
}

func (f *fakeSesiones) Eliminar(token string) error {
	delete(f.sesiones, token)
	return nil
}
