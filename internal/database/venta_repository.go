package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/sergio-centurion/verduleria-service/internal/models"
	"github.com/sirupsen/logrus"
)

// VentaRepository maneja las operaciones de base de datos para Venta
type VentaRepository struct {
	db        *DB
	productos *ProductRepository
	logger    *logrus.Logger
}

// NewVentaRepository crea una nueva instancia del repositorio
func NewVentaRepository(db *DB, productos *ProductRepository, logger *logrus.Logger) *VentaRepository {
	return &VentaRepository{
		db:        db,
		productos: productos,
		logger:    logger,
	}
}

// isUniqueViolation reporta si err es una violación de constraint UNIQUE
// de PostgreSQL (23505)
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// Crear persiste la venta con sus items y descuenta el stock de cada
// línea, todo en una transacción: cualquier falla (incluido stock que se
// achicó entre armar el carrito y pagar) revierte todo. Una colisión de
// numero_pedido se reporta como ConflictError para que el caller
// regenere y reintente.
func (r *VentaRepository) Crear(venta *models.Venta, items []models.VentaItem) error {
	err := r.db.WithTransaction(func(tx *sql.Tx) error {
		query := `
			INSERT INTO ventas (usuario_id, total, fecha, estado, numero_pedido, tipo_tarjeta, ultimos_4)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id
		`

		err := tx.QueryRow(query,
			venta.UsuarioID, venta.Total, venta.Fecha, venta.Estado,
			venta.NumeroPedido, venta.TipoTarjeta, venta.Ultimos4,
		).Scan(&venta.ID)
		if err != nil {
			return fmt.Errorf("error inserting venta: %w", err)
		}

		for i := range items {
			items[i].VentaID = venta.ID

			_, err := tx.Exec(`
				INSERT INTO venta_items (venta_id, producto_id, cantidad, precio_unitario)
				VALUES ($1, $2, $3, $4)
			`, items[i].VentaID, items[i].ProductoID, items[i].Cantidad, items[i].PrecioUnitario)
			if err != nil {
				return fmt.Errorf("error inserting venta item: %w", err)
			}

			if err := r.productos.DecrementStock(tx, items[i].ProductoID, items[i].Cantidad); err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		if isUniqueViolation(err) {
			return &models.ConflictError{Motivo: fmt.Sprintf("numero de pedido duplicado: %s", venta.NumeroPedido)}
		}
		return err
	}

	venta.Items = items
	return nil
}

// GetByNumeroPedido obtiene una venta por número de pedido, acotada a su
// comprador
func (r *VentaRepository) GetByNumeroPedido(numeroPedido string, usuarioID int64) (*models.Venta, error) {
	query := `
		SELECT id, usuario_id, total, fecha, estado, numero_pedido, tipo_tarjeta, ultimos_4
		FROM ventas
		WHERE numero_pedido = $1 AND usuario_id = $2
	`

	var venta models.Venta
	err := r.db.QueryRowWithTimeout(query, numeroPedido, usuarioID).Scan(
		&venta.ID, &venta.UsuarioID, &venta.Total, &venta.Fecha,
		&venta.Estado, &venta.NumeroPedido, &venta.TipoTarjeta, &venta.Ultimos4,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.NewNotFound("venta", numeroPedido)
		}
		return nil, fmt.Errorf("error querying venta: %w", err)
	}

	items, err := r.ItemsByVentaID(venta.ID)
	if err != nil {
		return nil, err
	}
	venta.Items = items

	return &venta, nil
}

// ItemsByVentaID obtiene las líneas de una venta con el nombre del producto
func (r *VentaRepository) ItemsByVentaID(ventaID int64) ([]models.VentaItem, error) {
	query := `
		SELECT vi.id, vi.venta_id, vi.producto_id, vi.cantidad, vi.precio_unitario, p.nombre
		FROM venta_items vi
		JOIN productos p ON vi.producto_id = p.id
		WHERE vi.venta_id = $1
		ORDER BY vi.id
	`

	rows, err := r.db.QueryWithTimeout(query, ventaID)
	if err != nil {
		return nil, fmt.Errorf("error querying venta items: %w", err)
	}
	defer rows.Close()

	var items []models.VentaItem
	for rows.Next() {
		var item models.VentaItem
		err := rows.Scan(
			&item.ID, &item.VentaID, &item.ProductoID,
			&item.Cantidad, &item.PrecioUnitario, &item.NombreProducto,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning venta item: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// ListByUsuario obtiene las compras de un usuario, más recientes primero
func (r *VentaRepository) ListByUsuario(usuarioID int64) ([]models.Venta, error) {
	query := `
		SELECT id, usuario_id, total, fecha, estado, numero_pedido, tipo_tarjeta, ultimos_4
		FROM ventas
		WHERE usuario_id = $1
		ORDER BY fecha DESC
	`

	rows, err := r.db.QueryWithTimeout(query, usuarioID)
	if err != nil {
		return nil, fmt.Errorf("error querying ventas: %w", err)
	}
	defer rows.Close()

	var ventas []models.Venta
	for rows.Next() {
		var venta models.Venta
		err := rows.Scan(
			&venta.ID, &venta.UsuarioID, &venta.Total, &venta.Fecha,
			&venta.Estado, &venta.NumeroPedido, &venta.TipoTarjeta, &venta.Ultimos4,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning venta: %w", err)
		}
		ventas = append(ventas, venta)
	}

	return ventas, rows.Err()
}

// Cancelar repone el stock de cada línea y marca la venta como cancelada,
// en una transacción. Es una transacción compensatoria, no un rollback:
// la venta y sus items quedan como historial con estado 'cancelada'.
// La fila se bloquea con FOR UPDATE para que ante dos cancelaciones
// concurrentes solo la primera reponga stock; la segunda ve el estado
// ya cambiado y recibe un conflicto.
func (r *VentaRepository) Cancelar(ventaID int64) error {
	return r.db.WithTransaction(func(tx *sql.Tx) error {
		var estado models.EstadoVenta
		err := tx.QueryRow(
			`SELECT estado FROM ventas WHERE id = $1 FOR UPDATE`, ventaID,
		).Scan(&estado)
		if err == sql.ErrNoRows {
			return models.NewNotFound("venta", fmt.Sprintf("%d", ventaID))
		}
		if err != nil {
			return fmt.Errorf("error locking venta: %w", err)
		}
		if estado != models.VentaCompletada {
			return &models.ConflictError{
				Motivo: fmt.Sprintf("la venta %d ya fue cancelada", ventaID),
			}
		}

		rows, err := tx.Query(
			`SELECT producto_id, cantidad FROM venta_items WHERE venta_id = $1`, ventaID,
		)
		if err != nil {
			return fmt.Errorf("error querying venta items: %w", err)
		}

		type linea struct {
			productoID int64
			cantidad   int
		}
		var lineas []linea
		for rows.Next() {
			var l linea
			if err := rows.Scan(&l.productoID, &l.cantidad); err != nil {
				rows.Close()
				return fmt.Errorf("error scanning venta item: %w", err)
			}
			lineas = append(lineas, l)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("error iterating venta items: %w", err)
		}

		for _, l := range lineas {
			if err := r.productos.IncrementStock(tx, l.productoID, l.cantidad); err != nil {
				return err
			}
		}

		if _, err := tx.Exec(
			`UPDATE ventas SET estado = $1 WHERE id = $2`, models.VentaCancelada, ventaID,
		); err != nil {
			return fmt.Errorf("error updating venta: %w", err)
		}

		return nil
	})
}

// Stats obtiene las métricas agregadas de ventas completadas
func (r *VentaRepository) Stats() (*models.DashboardStats, error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(total), 0)
		FROM ventas
		WHERE estado = $1
	`

	var stats models.DashboardStats
	err := r.db.QueryRowWithTimeout(query, models.VentaCompletada).Scan(
		&stats.TotalVentas, &stats.TotalIngresos,
	)
	if err != nil {
		return nil, fmt.Errorf("error querying stats: %w", err)
	}

	return &stats, nil
}

// TopProductos obtiene el ranking de productos más vendidos en ventas completadas
func (r *VentaRepository) TopProductos(limit int) ([]models.TopProducto, error) {
	query := `
		SELECT p.nombre, SUM(vi.cantidad) AS total
		FROM venta_items vi
		JOIN productos p ON vi.producto_id = p.id
		JOIN ventas v ON vi.venta_id = v.id
		WHERE v.estado = $1
		GROUP BY p.id, p.nombre
		ORDER BY total DESC
		LIMIT $2
	`

	rows, err := r.db.QueryWithTimeout(query, models.VentaCompletada, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying top products: %w", err)
	}
	defer rows.Close()

	var top []models.TopProducto
	for rows.Next() {
		var t models.TopProducto
		if err := rows.Scan(&t.Nombre, &t.TotalVendido); err != nil {
			return nil, fmt.Errorf("error scanning top product: %w", err)
		}
		top = append(top, t)
	}

	return top, rows.Err()
}
