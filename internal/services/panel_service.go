package services

import (
	"github.com/sergio-centurion/verduleria-service/internal/models"
	"github.com/sirupsen/logrus"
)

// Tamaños de los listados del panel del dueño
const (
	topProductosLimit       = 5
	ultimosAutorizadosLimit = 10
)

// ventaStatsStore es lo que el panel necesita del repositorio de ventas
type ventaStatsStore interface {
	Stats() (*models.DashboardStats, error)
	TopProductos(limit int) ([]models.TopProducto, error)
}

// PanelResumen agrupa las vistas del panel del dueño
type PanelResumen struct {
	Stats              *models.DashboardStats `json:"stats"`
	TopProductos       []models.TopProducto   `json:"top_productos"`
	UltimosAutorizados []models.CambioStock   `json:"ultimos_autorizados"`
}

// PanelService arma el panel de métricas del dueño
type PanelService struct {
	ventas  ventaStatsStore
	cambios cambioStore
	logger  *logrus.Logger
}

// NewPanelService crea una nueva instancia del servicio
func NewPanelService(ventas ventaStatsStore, cambios cambioStore, logger *logrus.Logger) *PanelService {
	return &PanelService{
		ventas:  ventas,
		cambios: cambios,
		logger:  logger,
	}
}

// Resumen arma el panel completo: métricas de ventas completadas, ranking
// de productos más vendidos y últimos cambios autorizados
func (s *PanelService) Resumen(identidad *models.Identidad) (*PanelResumen, error) {
	if err := RequireRol(identidad, models.RolDueno); err != nil {
		return nil, err
	}

	stats, err := s.ventas.Stats()
	if err != nil {
		return nil, err
	}

	top, err := s.ventas.TopProductos(topProductosLimit)
	if err != nil {
		return nil, err
	}

	autorizados, err := s.cambios.ListAutorizados(ultimosAutorizadosLimit)
	if err != nil {
		return nil, err
	}

	return &PanelResumen{
		Stats:              stats,
		TopProductos:       top,
		UltimosAutorizados: autorizados,
	}, nil
}
