package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sergio-centurion/verduleria-service/internal/api"
	"github.com/sergio-centurion/verduleria-service/internal/config"
	"github.com/sergio-centurion/verduleria-service/internal/database"
	"github.com/sergio-centurion/verduleria-service/internal/services"
	"github.com/sergio-centurion/verduleria-service/internal/workflows"
	"github.com/sirupsen/logrus"
)

func main() {
	// Cargar configuración
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	// Configurar logging
	logger := setupLogger(cfg)
	logger.Info("Starting Tienda Service...")

	// Configurar modo de Gin
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Conectar a la base de datos
	db, err := database.Connect(cfg)
	if err != nil {
		logger.Fatalf("Error connecting to database: %v", err)
	}
	defer db.Close()

	// Conectar a Redis. Las sesiones y los carritos viven ahí, sin Redis
	// el servicio no puede operar.
	redis, err := database.ConnectRedis(cfg)
	if err != nil {
		logger.Fatalf("Error connecting to Redis: %v", err)
	}
	defer redis.Close()

	// Inicializar cliente de Inngest
	inngestClient, err := workflows.NewInngestClient(cfg, logger)
	if err != nil {
		logger.Warnf("Error initializing Inngest client: %v", err)
		inngestClient = nil
	}
	notificador := workflows.NewNotificador(inngestClient, logger)

	// Inicializar repositorios
	productRepo := database.NewProductRepository(db, logger)
	ventaRepo := database.NewVentaRepository(db, productRepo, logger)
	cambioRepo := database.NewCambioStockRepository(db, productRepo, logger)
	usuarioRepo := database.NewUsuarioRepository(db, logger)
	carritoStore := database.NewCarritoStore(redis, cfg.Session.TTL, logger)
	sesionStore := database.NewSesionStore(redis, cfg.Session.TTL)

	// Inicializar servicios
	authService := services.NewAuthService(usuarioRepo, sesionStore, logger)
	catalogService := services.NewCatalogService(productRepo, logger)
	carritoService := services.NewCarritoService(productRepo, carritoStore, logger)
	checkoutService := services.NewCheckoutService(productRepo, carritoStore, ventaRepo, usuarioRepo, notificador, cfg, logger)
	cambioService := services.NewCambioStockService(productRepo, cambioRepo, notificador, logger)
	panelService := services.NewPanelService(ventaRepo, cambioRepo, logger)
	comprobantes := services.NewComprobanteGenerator(logger)
	sugerenciaService := services.NewSugerenciaService(cfg.Catalogo.SugerenciasURL, logger)

	// Inicializar API
	apiHandler := api.NewAPI(
		authService,
		catalogService,
		carritoService,
		checkoutService,
		cambioService,
		panelService,
		comprobantes,
		sugerenciaService,
		db,
		redis,
		logger,
	)

	// Configurar router
	router := setupRouter(apiHandler, cfg)

	// Crear servidor HTTP
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Canal para señales de terminación
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Iniciar servidor en goroutine
	go func() {
		logger.Infof("Server starting on %s:%s", cfg.Server.Host, cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Error starting server: %v", err)
		}
	}()

	// Esperar señal de terminación
	<-quit
	logger.Info("Shutting down server...")

	// Contexto con timeout para shutdown graceful
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown graceful del servidor
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}

// setupLogger configura el logger según la configuración
func setupLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	// Configurar nivel de log
	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	// Configurar formato
	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}

// setupRouter configura el router principal
func setupRouter(apiHandler *api.API, cfg *config.Config) *gin.Engine {
	router := gin.New()

	// Middleware global
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Middleware de CORS para desarrollo
	if cfg.IsDevelopment() {
		router.Use(func(c *gin.Context) {
			c.Header("Access-Control-Allow-Origin", "*")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, Authorization, X-Session-ID")

			if c.Request.Method == "OPTIONS" {
				c.AbortWithStatus(204)
				return
			}

			c.Next()
		})
	}

	// Health check
	router.GET("/health", apiHandler.Health)

	// Autenticación
	router.POST("/login", apiHandler.Login)
	router.POST("/logout", apiHandler.Logout)

	// Catálogo público y carrito de sesión
	public := router.Group("")
	{
		public.GET("/productos", apiHandler.GetCatalogo)
		public.GET("/productos/:id", apiHandler.GetProducto)
		public.GET("/api/stock/:id", apiHandler.GetStock)

		public.GET("/api/carrito", apiHandler.GetCarrito)
		public.POST("/api/carrito", apiHandler.AgregarAlCarrito)
		public.PUT("/api/carrito/:id", apiHandler.ActualizarCarrito)
		public.DELETE("/api/carrito/:id", apiHandler.QuitarDelCarrito)
		public.DELETE("/api/carrito", apiHandler.VaciarCarrito)
	}

	// Operaciones autenticadas
	auth := router.Group("")
	auth.Use(apiHandler.AuthMiddleware())
	{
		// Checkout y compras del cliente
		auth.GET("/checkout", apiHandler.GetCheckout)
		auth.POST("/checkout/confirmar", apiHandler.ConfirmarCheckout)
		auth.POST("/checkout/pagar", apiHandler.Pagar)
		auth.GET("/mis_compras", apiHandler.GetMisCompras)
		auth.POST("/compras/:numero/cancelar", apiHandler.CancelarCompra)
		auth.GET("/comprobante/:numero", apiHandler.GetComprobante)
		auth.GET("/comprobante/:numero/pdf", apiHandler.GetComprobantePDF)

		// Panel del vendedor
		vendedor := auth.Group("/vendedor")
		{
			vendedor.GET("/productos", apiHandler.GetMisProductos)
			vendedor.POST("/productos", apiHandler.CrearProducto)
			vendedor.GET("/stock_bajo", apiHandler.GetStockBajo)
			vendedor.GET("/sugerir_producto", apiHandler.SugerirProducto)
			vendedor.GET("/cambios", apiHandler.GetMisCambios)
			vendedor.POST("/productos/:id/cambios", apiHandler.SolicitarCambio)
			vendedor.POST("/productos/:id/baja", apiHandler.SolicitarBaja)
		}

		// Panel del dueño
		dueno := auth.Group("/dueno")
		{
			dueno.GET("/panel", apiHandler.GetPanel)
			dueno.GET("/cambios", apiHandler.GetCambiosPendientes)
			dueno.POST("/cambios/:id/autorizar", apiHandler.AutorizarCambio)
			dueno.POST("/cambios/:id/rechazar", apiHandler.RechazarCambio)
		}
	}

	return router
}
