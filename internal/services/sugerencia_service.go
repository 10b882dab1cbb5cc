package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sergio-centurion/verduleria-service/internal/models"
	"github.com/sirupsen/logrus"
)

// Largo mínimo de la consulta antes de ir a la API externa
const minLargoConsulta = 3

// Categoría por defecto cuando la API no trae una
const categoriaPorDefecto = "General"

// SugerenciaService busca datos de productos en Open Food Facts para
// prellenar el formulario de alta del vendedor. La búsqueda es solo una
// ayuda: si la API externa no responde, el alta manual sigue disponible.
type SugerenciaService struct {
	baseURL string
	client  *http.Client
	logger  *logrus.Logger
}

// NewSugerenciaService crea una nueva instancia del servicio
func NewSugerenciaService(baseURL string, logger *logrus.Logger) *SugerenciaService {
	return &SugerenciaService{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

type openFoodFactsProducto struct {
	ProductName     string `json:"product_name"`
	Categories      string `json:"categories"`
	ImageURL        string `json:"image_url"`
	Brands          string `json:"brands"`
	IngredientsText string `json:"ingredients_text"`
}

type openFoodFactsResponse struct {
	Products []openFoodFactsProducto `json:"products"`
}

// Sugerir busca la consulta en Open Food Facts y retorna el primer
// resultado mapeado. Consulta demasiado corta, producto no encontrado o
// API caída retornan una sugerencia vacía, nunca un error.
func (s *SugerenciaService) Sugerir(ctx context.Context, identidad *models.Identidad, consulta string) (*models.SugerenciaProducto, error) {
	if err := RequireRol(identidad, models.RolVendedor); err != nil {
		return nil, err
	}

	consulta = strings.TrimSpace(consulta)
	if len(consulta) < minLargoConsulta {
		return &models.SugerenciaProducto{Mensaje: "consulta demasiado corta"}, nil
	}

	resp, err := s.buscar(ctx, consulta)
	if err != nil {
		s.logger.Warnf("Error querying Open Food Facts: %v", err)
		return &models.SugerenciaProducto{Mensaje: "búsqueda externa no disponible"}, nil
	}
	if len(resp.Products) == 0 {
		return &models.SugerenciaProducto{Mensaje: "producto no encontrado"}, nil
	}

	p := resp.Products[0]
	nombre := p.ProductName
	if nombre == "" {
		nombre = consulta
	}
	categoria := categoriaPorDefecto
	if p.Categories != "" {
		categoria = strings.TrimSpace(strings.SplitN(p.Categories, ",", 2)[0])
	}

	return &models.SugerenciaProducto{
		Encontrado:   true,
		Nombre:       nombre,
		Categoria:    categoria,
		ImagenURL:    p.ImageURL,
		Marca:        p.Brands,
		Ingredientes: p.IngredientsText,
	}, nil
}

func (s *SugerenciaService) buscar(ctx context.Context, consulta string) (*openFoodFactsResponse, error) {
	params := url.Values{}
	params.Set("search_terms", consulta)
	params.Set("json", "1")
	params.Set("page_size", "3")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/cgi/search.pl?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error querying product API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error querying product API: HTTP %d", resp.StatusCode)
	}

	var parsed openFoodFactsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("error decoding product API response: %w", err)
	}

	return &parsed, nil
}
