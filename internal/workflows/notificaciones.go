package workflows

import (
	"context"

	"github.com/inngest/inngestgo"
	"github.com/sergio-centurion/verduleria-service/internal/models"
	"github.com/sirupsen/logrus"
)

// Nombres de eventos publicados por el servicio
const (
	EventoVentaCreada     = "tienda/venta.creada"
	EventoVentaCancelada  = "tienda/venta.cancelada"
	EventoCambioDecidido  = "tienda/cambio.decidido"
	EventoCambioComercial = "tienda/cambio.comercial"
)

// Notificador publica eventos de dominio hacia Inngest. Los eventos son
// informativos: una falla al publicar se loguea pero nunca revierte la
// operación que la originó.
type Notificador struct {
	client *InngestClient
	logger *logrus.Logger
}

// NewNotificador crea una nueva instancia del notificador. El cliente
// puede ser nil cuando Inngest no está configurado, en cuyo caso todas
// las publicaciones son no-ops.
func NewNotificador(client *InngestClient, logger *logrus.Logger) *Notificador {
	return &Notificador{client: client, logger: logger}
}

func (n *Notificador) enviar(ctx context.Context, nombre string, data map[string]interface{}) {
	if n.client == nil {
		return
	}

	_, err := n.client.GetClient().Send(ctx, inngestgo.Event{
		Name: nombre,
		Data: data,
	})
	if err != nil {
		n.logger.WithError(err).WithField("evento", nombre).Warn("Error sending event")
	}
}

// VentaCreada publica el evento de venta completada
func (n *Notificador) VentaCreada(ctx context.Context, venta *models.Venta) {
	n.enviar(ctx, EventoVentaCreada, map[string]interface{}{
		"venta_id":      venta.ID,
		"numero_pedido": venta.NumeroPedido,
		"usuario_id":    venta.UsuarioID,
		"total":         venta.Total.String(),
		"items":         len(venta.Items),
	})
}

// VentaCancelada publica el evento de venta cancelada por el comprador
func (n *Notificador) VentaCancelada(ctx context.Context, venta *models.Venta) {
	n.enviar(ctx, EventoVentaCancelada, map[string]interface{}{
		"venta_id":      venta.ID,
		"numero_pedido": venta.NumeroPedido,
		"usuario_id":    venta.UsuarioID,
	})
}

// CambioSolicitado publica el evento de nueva solicitud de cambio
func (n *Notificador) CambioSolicitado(ctx context.Context, cambio *models.CambioStock) {
	n.enviar(ctx, EventoCambioComercial, map[string]interface{}{
		"cambio_id":   cambio.ID,
		"producto_id": cambio.ProductoID,
		"vendedor_id": cambio.VendedorID,
		"porcentaje":  cambio.PorcentajeCambio,
		"motivo":      cambio.Motivo,
	})
}

// CambioDecidido publica el evento de decisión sobre una solicitud
func (n *Notificador) CambioDecidido(ctx context.Context, cambio *models.CambioStock, estado models.EstadoCambio) {
	n.enviar(ctx, EventoCambioDecidido, map[string]interface{}{
		"cambio_id":   cambio.ID,
		"producto_id": cambio.ProductoID,
		"vendedor_id": cambio.VendedorID,
		"estado":      string(estado),
	})
}
