package database

import (
	"database/sql"
	"fmt"
	"strconv"

	"github.com/sergio-centurion/verduleria-service/internal/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// ProductRepository maneja las operaciones de base de datos para Producto.
// Es la única autoridad sobre productos.stock y productos.precio: las
// mutaciones de stock corren dentro de la transacción del registro que
// las causa (una venta, una autorización de cambio).
type ProductRepository struct {
	db     *DB
	logger *logrus.Logger
}

// NewProductRepository crea una nueva instancia del repositorio
func NewProductRepository(db *DB, logger *logrus.Logger) *ProductRepository {
	return &ProductRepository{
		db:     db,
		logger: logger,
	}
}

const productoColumns = `id, nombre, descripcion, precio, stock, categoria, imagen_url, vendedor_id, activo`

func scanProducto(row interface{ Scan(...interface{}) error }) (*models.Producto, error) {
	var p models.Producto
	err := row.Scan(
		&p.ID, &p.Nombre, &p.Descripcion, &p.Precio, &p.Stock,
		&p.Categoria, &p.ImagenURL, &p.VendedorID, &p.Activo,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create da de alta un producto
func (r *ProductRepository) Create(producto *models.Producto) error {
	query := `
		INSERT INTO productos (nombre, descripcion, precio, stock, categoria, imagen_url, vendedor_id, activo)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	err := r.db.QueryRowWithTimeout(query,
		producto.Nombre, producto.Descripcion, producto.Precio, producto.Stock,
		producto.Categoria, producto.ImagenURL, producto.VendedorID, producto.Activo,
	).Scan(&producto.ID)

	if err != nil {
		return fmt.Errorf("error creating product: %w", err)
	}

	return nil
}

// GetActivoByID obtiene un producto activo; NotFound si no existe o está inactivo
func (r *ProductRepository) GetActivoByID(id int64) (*models.Producto, error) {
	query := `SELECT ` + productoColumns + ` FROM productos WHERE id = $1 AND activo = true`

	producto, err := scanProducto(r.db.QueryRowWithTimeout(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.NewNotFound("producto", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("error querying product: %w", err)
	}

	return producto, nil
}

// GetByID obtiene un producto sin filtrar por activo (para workflow e historial)
func (r *ProductRepository) GetByID(id int64) (*models.Producto, error) {
	query := `SELECT ` + productoColumns + ` FROM productos WHERE id = $1`

	producto, err := scanProducto(r.db.QueryRowWithTimeout(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.NewNotFound("producto", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("error querying product: %w", err)
	}

	return producto, nil
}

// ListActivos obtiene el catálogo: productos activos con stock, por nombre
func (r *ProductRepository) ListActivos() ([]models.Producto, error) {
	query := `
		SELECT ` + productoColumns + `
		FROM productos
		WHERE activo = true AND stock > 0
		ORDER BY nombre ASC
	`
	return r.queryProductos(query)
}

// ListByVendedor obtiene los productos activos de un vendedor
func (r *ProductRepository) ListByVendedor(vendedorID int64) ([]models.Producto, error) {
	query := `
		SELECT ` + productoColumns + `
		FROM productos
		WHERE vendedor_id = $1 AND activo = true
		ORDER BY nombre ASC
	`
	return r.queryProductos(query, vendedorID)
}

// ListStockBajo obtiene los productos de un vendedor con stock bajo el umbral
func (r *ProductRepository) ListStockBajo(vendedorID int64, umbral int) ([]models.Producto, error) {
	query := `
		SELECT ` + productoColumns + `
		FROM productos
		WHERE vendedor_id = $1 AND stock < $2 AND activo = true
		ORDER BY stock ASC
	`
	return r.queryProductos(query, vendedorID, umbral)
}

func (r *ProductRepository) queryProductos(query string, args ...interface{}) ([]models.Producto, error) {
	rows, err := r.db.QueryWithTimeout(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying products: %w", err)
	}
	defer rows.Close()

	var productos []models.Producto
	for rows.Next() {
		producto, err := scanProducto(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning product: %w", err)
		}
		productos = append(productos, *producto)
	}

	return productos, rows.Err()
}

// CurrentStock retorna el stock vivo de un producto activo.
// Retorna 0 para productos inexistentes o inactivos; nunca falla.
func (r *ProductRepository) CurrentStock(id int64) int {
	var stock int
	err := r.db.QueryRowWithTimeout(
		`SELECT stock FROM productos WHERE id = $1 AND activo = true`, id,
	).Scan(&stock)
	if err != nil {
		if err != sql.ErrNoRows {
			r.logger.Warnf("Error querying stock for product %d: %v", id, err)
		}
		return 0
	}
	return stock
}

// DecrementStock descuenta stock dentro de la transacción del caller.
// El WHERE stock >= cantidad es la operación atómica que decide: cero
// filas afectadas significa stock insuficiente (o producto inexistente)
// y la transacción completa debe abortar.
func (r *ProductRepository) DecrementStock(tx *sql.Tx, id int64, cantidad int) error {
	result, err := tx.Exec(
		`UPDATE productos SET stock = stock - $1 WHERE id = $2 AND stock >= $1`,
		cantidad, id,
	)
	if err != nil {
		return fmt.Errorf("error decrementing stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		var stock int
		err := tx.QueryRow(`SELECT stock FROM productos WHERE id = $1`, id).Scan(&stock)
		if err == sql.ErrNoRows {
			return models.NewNotFound("producto", strconv.FormatInt(id, 10))
		}
		if err != nil {
			return fmt.Errorf("error querying stock: %w", err)
		}
		return &models.InsufficientStockError{ProductoID: id, Solicitado: cantidad, Disponible: stock}
	}

	return nil
}

// IncrementStock repone stock dentro de la transacción del caller
// (cancelación de venta)
func (r *ProductRepository) IncrementStock(tx *sql.Tx, id int64, cantidad int) error {
	result, err := tx.Exec(
		`UPDATE productos SET stock = stock + $1 WHERE id = $2`,
		cantidad, id,
	)
	if err != nil {
		return fmt.Errorf("error incrementing stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return models.NewNotFound("producto", strconv.FormatInt(id, 10))
	}

	return nil
}

// AplicarCambio sobrescribe stock y precio dentro de la transacción del
// caller (autorización de cambio). Es sobrescritura, no delta: mutaciones
// concurrentes entre solicitud y autorización se pisan (comportamiento
// documentado del workflow).
func (r *ProductRepository) AplicarCambio(tx *sql.Tx, id int64, stock int, precio decimal.Decimal) error {
	result, err := tx.Exec(
		`UPDATE productos SET stock = $1, precio = $2 WHERE id = $3`,
		stock, precio, id,
	)
	if err != nil {
		return fmt.Errorf("error applying stock change: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return models.NewNotFound("producto", strconv.FormatInt(id, 10))
	}

	return nil
}

// DarDeBaja desactiva un producto y deja su stock en cero dentro de la
// transacción del caller. El producto sale del catálogo pero sus líneas
// de venta históricas siguen siendo válidas.
func (r *ProductRepository) DarDeBaja(tx *sql.Tx, id int64) error {
	result, err := tx.Exec(
		`UPDATE productos SET stock = 0, activo = false WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("error delisting product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return models.NewNotFound("producto", strconv.FormatInt(id, 10))
	}

	return nil
}
