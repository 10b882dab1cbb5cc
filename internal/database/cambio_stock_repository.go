package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/sergio-centurion/verduleria-service/internal/models"
	"github.com/sirupsen/logrus"
)

// CambioStockRepository maneja las operaciones de base de datos para CambioStock
type CambioStockRepository struct {
	db        *DB
	productos *ProductRepository
	logger    *logrus.Logger
}

// NewCambioStockRepository crea una nueva instancia del repositorio
func NewCambioStockRepository(db *DB, productos *ProductRepository, logger *logrus.Logger) *CambioStockRepository {
	return &CambioStockRepository{
		db:        db,
		productos: productos,
		logger:    logger,
	}
}

// Crear registra una solicitud de cambio pendiente
func (r *CambioStockRepository) Crear(cambio *models.CambioStock) error {
	query := `
		INSERT INTO cambios_stock
			(producto_id, vendedor_id, stock_anterior, stock_nuevo,
			 precio_anterior, precio_nuevo, porcentaje_cambio, motivo, estado, fecha_solicitud)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	err := r.db.QueryRowWithTimeout(query,
		cambio.ProductoID, cambio.VendedorID, cambio.StockAnterior, cambio.StockNuevo,
		cambio.PrecioAnterior, cambio.PrecioNuevo, cambio.PorcentajeCambio,
		cambio.Motivo, cambio.Estado, cambio.FechaSolicitud,
	).Scan(&cambio.ID)
	if err != nil {
		return fmt.Errorf("error inserting cambio: %w", err)
	}

	return nil
}

// GetByID obtiene una solicitud por su ID
func (r *CambioStockRepository) GetByID(id int64) (*models.CambioStock, error) {
	query := `
		SELECT c.id, c.producto_id, c.vendedor_id, c.stock_anterior, c.stock_nuevo,
		       c.precio_anterior, c.precio_nuevo, c.porcentaje_cambio, c.motivo,
		       c.estado, c.fecha_solicitud, c.autorizado_por, c.fecha_autorizacion,
		       p.nombre, u.username
		FROM cambios_stock c
		JOIN productos p ON c.producto_id = p.id
		JOIN usuarios u ON c.vendedor_id = u.id
		WHERE c.id = $1
	`

	var cambio models.CambioStock
	err := r.db.QueryRowWithTimeout(query, id).Scan(
		&cambio.ID, &cambio.ProductoID, &cambio.VendedorID,
		&cambio.StockAnterior, &cambio.StockNuevo,
		&cambio.PrecioAnterior, &cambio.PrecioNuevo, &cambio.PorcentajeCambio,
		&cambio.Motivo, &cambio.Estado, &cambio.FechaSolicitud,
		&cambio.AutorizadoPor, &cambio.FechaAutorizacion,
		&cambio.NombreProducto, &cambio.Vendedor,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.NewNotFound("cambio", fmt.Sprintf("%d", id))
		}
		return nil, fmt.Errorf("error querying cambio: %w", err)
	}

	return &cambio, nil
}

// ListPendientes obtiene todas las solicitudes pendientes, más antiguas al final
func (r *CambioStockRepository) ListPendientes() ([]models.CambioStock, error) {
	query := `
		SELECT c.id, c.producto_id, c.vendedor_id, c.stock_anterior, c.stock_nuevo,
		       c.precio_anterior, c.precio_nuevo, c.porcentaje_cambio, c.motivo,
		       c.estado, c.fecha_solicitud, c.autorizado_por, c.fecha_autorizacion,
		       p.nombre, u.username
		FROM cambios_stock c
		JOIN productos p ON c.producto_id = p.id
		JOIN usuarios u ON c.vendedor_id = u.id
		WHERE c.estado = $1
		ORDER BY c.fecha_solicitud DESC
	`

	return r.queryCambios(query, models.CambioPendiente)
}

// ListPendientesByVendedor obtiene las solicitudes pendientes de un vendedor
func (r *CambioStockRepository) ListPendientesByVendedor(vendedorID int64) ([]models.CambioStock, error) {
	query := `
		SELECT c.id, c.producto_id, c.vendedor_id, c.stock_anterior, c.stock_nuevo,
		       c.precio_anterior, c.precio_nuevo, c.porcentaje_cambio, c.motivo,
		       c.estado, c.fecha_solicitud, c.autorizado_por, c.fecha_autorizacion,
		       p.nombre, u.username
		FROM cambios_stock c
		JOIN productos p ON c.producto_id = p.id
		JOIN usuarios u ON c.vendedor_id = u.id
		WHERE c.estado = $1 AND c.vendedor_id = $2
		ORDER BY c.fecha_solicitud DESC
	`

	return r.queryCambios(query, models.CambioPendiente, vendedorID)
}

// ListAutorizados obtiene los últimos cambios autorizados
func (r *CambioStockRepository) ListAutorizados(limit int) ([]models.CambioStock, error) {
	query := `
		SELECT c.id, c.producto_id, c.vendedor_id, c.stock_anterior, c.stock_nuevo,
		       c.precio_anterior, c.precio_nuevo, c.porcentaje_cambio, c.motivo,
		       c.estado, c.fecha_solicitud, c.autorizado_por, c.fecha_autorizacion,
		       p.nombre, u.username
		FROM cambios_stock c
		JOIN productos p ON c.producto_id = p.id
		JOIN usuarios u ON c.vendedor_id = u.id
		WHERE c.estado = $1
		ORDER BY c.fecha_autorizacion DESC
		LIMIT $2
	`

	return r.queryCambios(query, models.CambioAutorizado, limit)
}

func (r *CambioStockRepository) queryCambios(query string, args ...interface{}) ([]models.CambioStock, error) {
	rows, err := r.db.QueryWithTimeout(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying cambios: %w", err)
	}
	defer rows.Close()

	var cambios []models.CambioStock
	for rows.Next() {
		var cambio models.CambioStock
		err := rows.Scan(
			&cambio.ID, &cambio.ProductoID, &cambio.VendedorID,
			&cambio.StockAnterior, &cambio.StockNuevo,
			&cambio.PrecioAnterior, &cambio.PrecioNuevo, &cambio.PorcentajeCambio,
			&cambio.Motivo, &cambio.Estado, &cambio.FechaSolicitud,
			&cambio.AutorizadoPor, &cambio.FechaAutorizacion,
			&cambio.NombreProducto, &cambio.Vendedor,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning cambio: %w", err)
		}
		cambios = append(cambios, cambio)
	}

	return cambios, rows.Err()
}

// Autorizar aplica una solicitud pendiente al producto y la marca como
// autorizada, en una transacción con lock sobre la fila del cambio.
// Devuelve aplicado=false sin error si la solicitud ya estaba decidida:
// la primera decisión gana y las siguientes son no-ops.
func (r *CambioStockRepository) Autorizar(cambioID, duenoID int64) (aplicado bool, err error) {
	err = r.db.WithTransaction(func(tx *sql.Tx) error {
		cambio, err := r.lockCambio(tx, cambioID)
		if err != nil {
			return err
		}
		if cambio.Decidido() {
			return nil
		}

		if cambio.EsBaja() {
			if err := r.productos.DarDeBaja(tx, cambio.ProductoID); err != nil {
				return err
			}
		} else {
			if err := r.productos.AplicarCambio(tx, cambio.ProductoID, cambio.StockNuevo, cambio.PrecioNuevo); err != nil {
				return err
			}
		}

		if err := r.marcarDecidido(tx, cambioID, models.CambioAutorizado, duenoID); err != nil {
			return err
		}

		aplicado = true
		return nil
	})

	return aplicado, err
}

// Rechazar marca una solicitud pendiente como rechazada sin tocar el
// producto. Igual que Autorizar, es un no-op si ya estaba decidida.
func (r *CambioStockRepository) Rechazar(cambioID, duenoID int64) (aplicado bool, err error) {
	err = r.db.WithTransaction(func(tx *sql.Tx) error {
		cambio, err := r.lockCambio(tx, cambioID)
		if err != nil {
			return err
		}
		if cambio.Decidido() {
			return nil
		}

		if err := r.marcarDecidido(tx, cambioID, models.CambioRechazado, duenoID); err != nil {
			return err
		}

		aplicado = true
		return nil
	})

	return aplicado, err
}

func (r *CambioStockRepository) lockCambio(tx *sql.Tx, cambioID int64) (*models.CambioStock, error) {
	var cambio models.CambioStock
	err := tx.QueryRow(`
		SELECT id, producto_id, stock_nuevo, precio_nuevo, motivo, estado
		FROM cambios_stock
		WHERE id = $1
		FOR UPDATE
	`, cambioID).Scan(
		&cambio.ID, &cambio.ProductoID, &cambio.StockNuevo,
		&cambio.PrecioNuevo, &cambio.Motivo, &cambio.Estado,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.NewNotFound("cambio", fmt.Sprintf("%d", cambioID))
		}
		return nil, fmt.Errorf("error locking cambio: %w", err)
	}
	return &cambio, nil
}

func (r *CambioStockRepository) marcarDecidido(tx *sql.Tx, cambioID int64, estado models.EstadoCambio, duenoID int64) error {
	_, err := tx.Exec(`
		UPDATE cambios_stock
		SET estado = $1, autorizado_por = $2, fecha_autorizacion = $3
		WHERE id = $4
	`, estado, duenoID, time.Now(), cambioID)
	if err != nil {
		return fmt.Errorf("error updating cambio: %w", err)
	}
	return nil
}
