// @title           Partidas API
// @version         1.0
// @description     Presupuestos de obra - budget lines, quotations and unit price comparison.
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// @schemes http https
package main

import (
	_ "backend/docs"
	"backend/handlers"
	"backend/storage"
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"strconv"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

var cronRunning int32

func CORSConfig() cors.Config {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{
		"http://localhost:9000",
		"http://localhost:8080",
		"http://localhost:3000",
		"http://localhost:5173",
	}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{
		"Content-Type", "Content-Length", "Accept-Encoding",
		"Accept", "Origin", "X-Requested-With", "Authorization", "User-Agent",
		"Cache-Control", "Referer",
		"Access-Control-Request-Method", "Access-Control-Request-Headers",
	}
	corsConfig.AllowMethods = []string{
		"GET", "POST", "PUT", "DELETE", "OPTIONS", "HEAD", "PATCH",
	}
	corsConfig.ExposeHeaders = []string{
		"Content-Length", "Authorization", "Content-Type", "Content-Disposition",
	}
	corsConfig.MaxAge = 12 * time.Hour
	return corsConfig
}

func safeGo(
	ctx context.Context,
	wg *sync.WaitGroup,
	name string,
	fn func(context.Context) error,
	cronLogger *log.Logger,
) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				log.Printf("PANIC in %s: %v\n%s", name, r, debug.Stack())
				if cronLogger != nil {
					cronLogger.Printf("PANIC in %s: %v\n%s", name, r, debug.Stack())
				}
			}
		}()

		if err := fn(ctx); err != nil {
			log.Printf("%s failed: %v", name, err)
			if cronLogger != nil {
				cronLogger.Printf("%s failed: %v", name, err)
			}
		} else {
			log.Printf("%s completed successfully", name)
			if cronLogger != nil {
				cronLogger.Printf("%s completed successfully", name)
			}
		}
	}()
}

func main() {
	db := storage.InitDB()
	_ = storage.InitGormDB()

	db.SetMaxOpenConns(15)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := storage.InitSchema(db); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	// Nightly maintenance: expired sessions plus quotation rollup repair
	c := cron.New(
		cron.WithLogger(cron.VerbosePrintfLogger(log.New(os.Stdout, "cron: ", log.LstdFlags))),
	)

	cronLogFile, err := os.OpenFile("cron_errors.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Printf("Failed to open cron error log file: %v", err)
	}
	cronLogger := log.New(cronLogFile, "CRON_ERROR: ", log.LstdFlags)

	_, err = c.AddFunc("30 3 * * *", func() {
		if !atomic.CompareAndSwapInt32(&cronRunning, 0, 1) {
			log.Println("Previous cron still running. Skipping this run.")
			if cronLogger != nil {
				cronLogger.Println("Previous cron still running. Skipping this run.")
			}
			return
		}
		defer atomic.StoreInt32(&cronRunning, 0)

		log.Println("Starting nightly maintenance cron job")
		if cronLogger != nil {
			cronLogger.Println("Starting nightly maintenance cron job")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 25*time.Minute)
		defer cancel()

		var wg sync.WaitGroup

		safeGo(ctx, &wg, "CleanupExpiredSessions", func(ctx context.Context) error {
			return storage.CleanupExpiredSessions(db)
		}, cronLogger)

		safeGo(ctx, &wg, "RecalcularTodasCotizaciones", func(ctx context.Context) error {
			return storage.RecalcularTodasCotizaciones(db)
		}, cronLogger)

		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			log.Println("All cron jobs finished")
			if cronLogger != nil {
				cronLogger.Println("All cron jobs finished")
			}
		case <-ctx.Done():
			log.Println("Cron timeout reached, jobs cancelled")
			if cronLogger != nil {
				cronLogger.Println("Cron timeout reached, jobs cancelled")
			}
		}
	})
	if err != nil {
		log.Fatalf("Failed to schedule nightly maintenance cron job: %v", err)
	}

	c.Start()

	r := gin.Default()
	r.MaxMultipartMemory = 8 << 20

	r.Use(cors.New(CORSConfig()))

	// ==================== 1. AUTH & LOGIN ====================
	r.POST("/api/login", handlers.LoginHandler(db))
	r.POST("/api/register", handlers.RegisterHandler(db))
	r.POST("/api/refresh-token", handlers.RefreshTokenHandler(db))
	r.POST("/api/validate-session", handlers.ValidateSession(db))
	r.POST("/api/logout", handlers.LogoutHandler(db))

	// ==================== 2. PROYECTOS ====================
	r.GET("/api/proyectos", handlers.GetProyectos(db))
	r.POST("/api/proyectos", handlers.CreateProyecto(db))
	r.GET("/api/proyectos/:id", handlers.GetProyecto(db))
	r.PUT("/api/proyectos/:id", handlers.UpdateProyecto(db))
	r.DELETE("/api/proyectos/:id", handlers.DeleteProyecto(db))

	// ==================== 3. PARTIDAS ====================
	r.GET("/api/proyectos/:id/partidas", handlers.GetPartidas(db))
	r.POST("/api/proyectos/:id/partidas", handlers.CreatePartida(db))
	r.GET("/api/partidas/:id", handlers.GetPartida(db))
	r.PUT("/api/partidas/:id", handlers.UpdatePartida(db))
	r.DELETE("/api/partidas/:id", handlers.DeletePartida(db))
	r.GET("/api/proyectos/:id/categorias", handlers.GetCategoriasDePartidas(db))
	r.GET("/api/proyectos/:id/conceptos", handlers.GetConceptosDePartidas(db))

	// ==================== 4. RESUMENES ====================
	r.GET("/api/proyectos/:id/resumen", handlers.GetResumenProyecto(db))
	r.GET("/api/proyectos/:id/resumen/:categoria", handlers.GetResumenConceptos(db))
	r.GET("/api/proyectos/:id/resumen/:categoria/:concepto", handlers.GetDetalleConcepto(db))
	r.GET("/api/proyectos/:id/resumen-agrupado", handlers.GetResumenAgrupado(db))

	// ==================== 5. GLOSARIO ====================
	r.GET("/api/proyectos/:id/glosario", handlers.GetGlosario())
	r.POST("/api/proyectos/:id/glosario/categorias", handlers.CreateCategoriaGlosario())
	r.PUT("/api/glosario/categorias/:id", handlers.UpdateCategoriaGlosario())
	r.DELETE("/api/glosario/categorias/:id", handlers.DeleteCategoriaGlosario())
	r.POST("/api/glosario/categorias/:id/conceptos", handlers.CreateConceptoGlosario())
	r.PUT("/api/glosario/conceptos/:id", handlers.UpdateConceptoGlosario())
	r.DELETE("/api/glosario/conceptos/:id", handlers.DeleteConceptoGlosario())
	r.POST("/api/proyectos/:id/glosario/import-partidas", handlers.ImportGlosarioFromPartidas(db))
	r.POST("/api/proyectos/:id/glosario/import", handlers.ImportGlosarioEstructura())

	// ==================== 6. COTIZACIONES ====================
	r.GET("/api/proyectos/:id/cotizaciones", handlers.GetCotizaciones(db))
	r.POST("/api/proyectos/:id/cotizaciones", handlers.CreateCotizacion(db))
	r.GET("/api/cotizaciones/:id", handlers.GetCotizacion(db))
	r.PUT("/api/cotizaciones/:id", handlers.UpdateCotizacion(db))
	r.DELETE("/api/cotizaciones/:id", handlers.DeleteCotizacion(db))
	r.POST("/api/cotizaciones/:id/items", handlers.CreateCotizacionItem(db))
	r.PUT("/api/cotizacion-items/:id", handlers.UpdateCotizacionItem(db))
	r.DELETE("/api/cotizacion-items/:id", handlers.DeleteCotizacionItem(db))

	// ==================== 7. COMPARACION ====================
	r.GET("/api/proveedores", handlers.GetProveedores(db))
	r.GET("/api/comparacion-unitarios", handlers.GetComparacionUnitarios(db))

	// ==================== 8. TIPOS DE CAMBIO ====================
	r.GET("/api/tipos-cambio", handlers.GetTiposCambio(db))
	r.PUT("/api/tipos-cambio", handlers.UpsertTipoCambio(db))

	// ==================== 9. IMPORT / EXPORT ====================
	r.POST("/api/proyectos/:id/import/excel", handlers.ImportPartidasExcel(db))
	r.GET("/api/proyectos/:id/export/excel", handlers.ExportProyectoExcel(db))
	r.GET("/api/proyectos/:id/export/pdf", handlers.ExportProyectoPDF(db))

	// ==================== 10. FILES & QR ====================
	r.POST("/api/upload", handlers.UploadFile)
	r.GET("/api/get-file", handlers.ServeFile)
	r.GET("/api/proyectos/:id/qr", handlers.GenerateProyectoQR(db))

	// ==================== 11. SWAGGER ====================
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	port := os.Getenv("PORT")
	if port == "" {
		port = "9000"
	}

	portInt, err := strconv.Atoi(port)
	if err != nil {
		log.Fatalf("Invalid PORT environment variable: %s. Must be a number.", port)
	}
	if portInt < 0 || portInt > 65535 {
		log.Fatalf("Invalid PORT: %d. Must be between 0 and 65535.", portInt)
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exiting")
}
