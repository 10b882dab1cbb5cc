package services

import (
	"strconv"

	"github.com/sergio-centurion/verduleria-service/internal/models"
	"github.com/sirupsen/logrus"
)

// productoReader es lo que los servicios necesitan del repositorio de productos
type productoReader interface {
	GetActivoByID(id int64) (*models.Producto, error)
	CurrentStock(id int64) int
}

// carritoStore es lo que el servicio necesita del store de carritos
type carritoStore interface {
	Load(sessionID string) (models.Carrito, error)
	Save(sessionID string, carrito models.Carrito) error
	Delete(sessionID string) error
}

// CarritoService maneja el carrito de compras de cada sesión
type CarritoService struct {
	productos productoReader
	carritos  carritoStore
	logger    *logrus.Logger
}

// NewCarritoService crea una nueva instancia del servicio
func NewCarritoService(productos productoReader, carritos carritoStore, logger *logrus.Logger) *CarritoService {
	return &CarritoService{
		productos: productos,
		carritos:  carritos,
		logger:    logger,
	}
}

// Ver retorna el snapshot del carrito revalidado contra el stock vivo
func (s *CarritoService) Ver(sessionID string) (*models.CarritoSnapshot, error) {
	return s.Revalidar(sessionID)
}

// Revalidar ajusta el carrito al stock vivo: recorta las cantidades que
// superan el stock actual y elimina las líneas cuyo producto quedó sin
// stock o dado de baja. Los precios congelados no se tocan. El carrito
// ajustado se persiste para que el checkout vea lo mismo que el cliente.
func (s *CarritoService) Revalidar(sessionID string) (*models.CarritoSnapshot, error) {
	carrito, err := s.carritos.Load(sessionID)
	if err != nil {
		return nil, err
	}

	ajustado := false
	for key, item := range carrito {
		productoID, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			delete(carrito, key)
			ajustado = true
			continue
		}

		disponible := s.productos.CurrentStock(productoID)
		if disponible <= 0 {
			delete(carrito, key)
			ajustado = true
			continue
		}
		if item.Cantidad > disponible {
			item.Cantidad = disponible
			ajustado = true
		}
	}

	if ajustado {
		if err := s.carritos.Save(sessionID, carrito); err != nil {
			return nil, err
		}
	}

	snapshot := carrito.Snapshot()
	return &snapshot, nil
}

// Agregar suma cantidad de un producto al carrito. El nombre y el precio
// del producto quedan congelados en la primera agregada. La cantidad
// acumulada se valida contra el stock vivo: pasarse falla sin modificar
// el carrito.
func (s *CarritoService) Agregar(sessionID string, productoID int64, cantidad int) (*models.CarritoSnapshot, error) {
	if cantidad <= 0 {
		cantidad = 1
	}

	producto, err := s.productos.GetActivoByID(productoID)
	if err != nil {
		return nil, err
	}

	carrito, err := s.carritos.Load(sessionID)
	if err != nil {
		return nil, err
	}

	key := strconv.FormatInt(productoID, 10)
	enCarrito := 0
	if item, ok := carrito[key]; ok {
		enCarrito = item.Cantidad
	}

	if enCarrito+cantidad > producto.Stock {
		return nil, &models.InsufficientStockError{
			ProductoID: productoID,
			Solicitado: enCarrito + cantidad,
			Disponible: producto.Stock,
		}
	}

	if item, ok := carrito[key]; ok {
		item.Cantidad += cantidad
	} else {
		carrito[key] = &models.CarritoItem{
			Nombre:   producto.Nombre,
			Precio:   producto.Precio,
			Cantidad: cantidad,
		}
	}

	if err := s.carritos.Save(sessionID, carrito); err != nil {
		return nil, err
	}

	snapshot := carrito.Snapshot()
	return &snapshot, nil
}

// Actualizar fija la cantidad de un producto en el carrito. Cantidad
// cero o negativa elimina la línea. La cantidad nueva se valida contra
// el stock vivo.
func (s *CarritoService) Actualizar(sessionID string, productoID int64, cantidad int) (*models.CarritoSnapshot, error) {
	carrito, err := s.carritos.Load(sessionID)
	if err != nil {
		return nil, err
	}

	key := strconv.FormatInt(productoID, 10)
	item, ok := carrito[key]
	if !ok {
		return nil, models.NewNotFound("producto en carrito", key)
	}

	if cantidad <= 0 {
		delete(carrito, key)
	} else {
		disponible := s.productos.CurrentStock(productoID)
		if cantidad > disponible {
			return nil, &models.InsufficientStockError{
				ProductoID: productoID,
				Solicitado: cantidad,
				Disponible: disponible,
			}
		}
		item.Cantidad = cantidad
	}

	if err := s.carritos.Save(sessionID, carrito); err != nil {
		return nil, err
	}

	snapshot := carrito.Snapshot()
	return &snapshot, nil
}

// Quitar elimina un producto del carrito; quitar algo que no está no es error
func (s *CarritoService) Quitar(sessionID string, productoID int64) (*models.CarritoSnapshot, error) {
	carrito, err := s.carritos.Load(sessionID)
	if err != nil {
		return nil, err
	}

	delete(carrito, strconv.FormatInt(productoID, 10))

	if err := s.carritos.Save(sessionID, carrito); err != nil {
		return nil, err
	}

	snapshot := carrito.Snapshot()
	return &snapshot, nil
}

// Vaciar descarta el carrito completo de la sesión; es idempotente
func (s *CarritoService) Vaciar(sessionID string) error {
	return s.carritos.Delete(sessionID)
}
