package services

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/sergio-centurion/verduleria-service/internal/config"
	"github.com/sergio-centurion/verduleria-service/internal/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Intentos máximos ante colisión de número de pedido
const maxIntentosNumeroPedido = 3

// ventaStore es lo que el servicio necesita del repositorio de ventas
type ventaStore interface {
	Crear(venta *models.Venta, items []models.VentaItem) error
	GetByNumeroPedido(numeroPedido string, usuarioID int64) (*models.Venta, error)
	ListByUsuario(usuarioID int64) ([]models.Venta, error)
	ItemsByVentaID(ventaID int64) ([]models.VentaItem, error)
	Cancelar(ventaID int64) error
}

// metodoPagoStore es lo que el servicio necesita de los métodos de pago
type metodoPagoStore interface {
	MetodoPredeterminado(usuarioID int64) (*models.MetodoPago, error)
	GuardarMetodo(metodo *models.MetodoPago) error
}

// eventosVenta publica los eventos del ciclo de vida de una venta
type eventosVenta interface {
	VentaCreada(ctx context.Context, venta *models.Venta)
	VentaCancelada(ctx context.Context, venta *models.Venta)
}

// CheckoutService maneja el preview, el pago y la cancelación de compras
type CheckoutService struct {
	productos productoReader
	carritos  carritoStore
	ventas    ventaStore
	metodos   metodoPagoStore
	eventos   eventosVenta
	prefix    string
	window    time.Duration
	logger    *logrus.Logger

	// Reemplazable en tests para controlar el reloj
	now func() time.Time
}

// NewCheckoutService crea una nueva instancia del servicio
func NewCheckoutService(productos productoReader, carritos carritoStore, ventas ventaStore, metodos metodoPagoStore, eventos eventosVenta, cfg *config.Config, logger *logrus.Logger) *CheckoutService {
	return &CheckoutService{
		productos: productos,
		carritos:  carritos,
		ventas:    ventas,
		metodos:   metodos,
		eventos:   eventos,
		prefix:    cfg.Checkout.OrderPrefix,
		window:    cfg.Checkout.CancelWindow,
		logger:    logger,
		now:       time.Now,
	}
}

// Vista arma el preview del checkout contra el stock vivo: una línea
// entra solo si el producto sigue con stock suficiente para la cantidad
// pedida; las que no alcanzan se excluyen en silencio. El carrito no se
// modifica acá, revalidarlo es tarea de la vista del carrito. Los
// precios siguen congelados.
func (s *CheckoutService) Vista(sessionID string, usuarioID int64) (*models.CheckoutView, error) {
	carrito, err := s.carritos.Load(sessionID)
	if err != nil {
		return nil, err
	}

	view := &models.CheckoutView{Total: decimal.Zero}

	for key, item := range carrito {
		productoID, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			continue
		}

		if s.productos.CurrentStock(productoID) < item.Cantidad {
			continue
		}

		subtotal := item.Precio.Mul(decimal.NewFromInt(int64(item.Cantidad)))
		view.Lines = append(view.Lines, models.CheckoutLine{
			ProductoID: productoID,
			Nombre:     item.Nombre,
			Precio:     item.Precio,
			Cantidad:   item.Cantidad,
			Subtotal:   subtotal,
		})
		view.Total = view.Total.Add(subtotal)
	}

	metodo, err := s.metodos.MetodoPredeterminado(usuarioID)
	if err != nil {
		return nil, err
	}
	view.MetodoPago = metodo

	return view, nil
}

// Confirmar arma la vista de confirmación previa al pago. No toca el
// inventario: solo al pagar se descuenta stock.
func (s *CheckoutService) Confirmar(sessionID string, metodoPago string) (*models.ConfirmacionView, error) {
	carrito, err := s.carritos.Load(sessionID)
	if err != nil {
		return nil, err
	}

	if len(carrito) == 0 {
		return nil, &models.ConflictError{Motivo: "el carrito está vacío"}
	}

	return &models.ConfirmacionView{
		Items:      carrito.Snapshot(),
		Total:      carrito.TotalPrecio(),
		MetodoPago: metodoPago,
	}, nil
}

// Pagar procesa el pago del carrito: crea la venta con los precios
// congelados del carrito y descuenta el stock de cada línea en una sola
// transacción. Si alguna línea quedó sin stock suficiente el pago falla
// completo y el carrito queda intacto para que el comprador lo ajuste.
func (s *CheckoutService) Pagar(ctx context.Context, sessionID string, identidad *models.Identidad, req *models.PagoRequest) (*models.VentaResponse, error) {
	carrito, err := s.carritos.Load(sessionID)
	if err != nil {
		return nil, err
	}

	if len(carrito) == 0 {
		return nil, &models.ConflictError{Motivo: "el carrito está vacío"}
	}

	var items []models.VentaItem
	for key, item := range carrito {
		productoID, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid product key in cart: %q", key)
		}
		items = append(items, models.VentaItem{
			ProductoID:     productoID,
			Cantidad:       item.Cantidad,
			PrecioUnitario: item.Precio,
		})
	}

	venta := &models.Venta{
		UsuarioID:   identidad.UsuarioID,
		Total:       carrito.TotalPrecio(),
		Fecha:       s.now(),
		Estado:      models.VentaCompletada,
		TipoTarjeta: &req.TipoTarjeta,
		Ultimos4:    &req.Ultimos4,
	}

	// Ante una colisión de número de pedido se regenera y reintenta;
	// la unicidad la garantiza el constraint de la base
	for intento := 0; ; intento++ {
		venta.NumeroPedido = s.generarNumeroPedido()
		err = s.ventas.Crear(venta, items)
		if err == nil {
			break
		}
		if models.IsConflict(err) && intento < maxIntentosNumeroPedido-1 {
			continue
		}
		return nil, err
	}

	if err := s.carritos.Delete(sessionID); err != nil {
		s.logger.WithError(err).WithField("session_id", sessionID).Warn("Could not clear cart after payment")
	}

	if req.GuardarMetodo {
		metodo := &models.MetodoPago{
			UsuarioID:   identidad.UsuarioID,
			TipoTarjeta: req.TipoTarjeta,
			Ultimos4:    req.Ultimos4,
		}
		if err := s.metodos.GuardarMetodo(metodo); err != nil {
			s.logger.WithError(err).Warn("Could not save payment method")
		}
	}

	s.eventos.VentaCreada(ctx, venta)

	s.logger.WithFields(logrus.Fields{
		"numero_pedido": venta.NumeroPedido,
		"usuario_id":    identidad.UsuarioID,
		"total":         venta.Total.String(),
	}).Info("Sale completed")

	return &models.VentaResponse{
		NumeroPedido: venta.NumeroPedido,
		Total:        venta.Total,
		Estado:       venta.Estado,
		Fecha:        venta.Fecha,
	}, nil
}

// Cancelar revierte una compra dentro de la ventana de autoservicio.
// Pasada la ventana la venta es definitiva y solo queda como historial.
func (s *CheckoutService) Cancelar(ctx context.Context, numeroPedido string, usuarioID int64) error {
	venta, err := s.ventas.GetByNumeroPedido(numeroPedido, usuarioID)
	if err != nil {
		return err
	}

	if venta.Estado == models.VentaCancelada {
		return &models.ConflictError{Motivo: fmt.Sprintf("el pedido %s ya está cancelado", numeroPedido)}
	}

	if s.now().Sub(venta.Fecha) > s.window {
		return &models.ExpiredError{NumeroPedido: numeroPedido}
	}

	if err := s.ventas.Cancelar(venta.ID); err != nil {
		return err
	}

	s.eventos.VentaCancelada(ctx, venta)

	s.logger.WithFields(logrus.Fields{
		"numero_pedido": numeroPedido,
		"usuario_id":    usuarioID,
	}).Info("Sale cancelled")

	return nil
}

// MisCompras lista las compras del usuario con sus items, más recientes primero
func (s *CheckoutService) MisCompras(usuarioID int64) ([]models.Venta, error) {
	ventas, err := s.ventas.ListByUsuario(usuarioID)
	if err != nil {
		return nil, err
	}

	for i := range ventas {
		items, err := s.ventas.ItemsByVentaID(ventas[i].ID)
		if err != nil {
			return nil, err
		}
		ventas[i].Items = items
	}

	return ventas, nil
}

// Comprobante obtiene una venta del usuario por número de pedido
func (s *CheckoutService) Comprobante(numeroPedido string, usuarioID int64) (*models.Venta, error) {
	return s.ventas.GetByNumeroPedido(numeroPedido, usuarioID)
}

// generarNumeroPedido arma un número con formato PREFIJO-AAAAMMDD-NNNNN,
// con NNNNN aleatorio de cinco dígitos
func (s *CheckoutService) generarNumeroPedido() string {
	return fmt.Sprintf("%s-%s-%d", s.prefix, s.now().Format("20060102"), 10000+rand.Intn(90000))
}
