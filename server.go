package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/bsm/redislock"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"gorm.io/gorm"

	"github.com/machinecraft/inventory_backend/config"
	"github.com/machinecraft/inventory_backend/models"
	"github.com/machinecraft/inventory_backend/models/reports"
	"github.com/machinecraft/inventory_backend/utils"
	"github.com/machinecraft/inventory_backend/workflow"
)

const defaultPort = "8080"

var tracer = otel.Tracer("inventory-backend")

const summaryCacheKey = "gold:summary"
const summaryCacheTTL = 5 * time.Minute

// pipelineState tracks the one pipeline run allowed at a time in this
// process. Cross-process exclusion uses the Redis lock when Redis is
// configured; this guard covers the single-instance deployment.
type pipelineState struct {
	mu         sync.Mutex
	running    bool
	lastReport *workflow.RunReport
	lastError  string
}

var pipeline pipelineState

type itemQuery struct {
	Search      string `form:"search"`
	Brand       string `form:"brand"`
	Category    string `form:"category"`
	StockStatus string `form:"stock_status" binding:"omitempty,oneof='In Stock' 'Low Stock' 'Out of Stock'"`
	PriceRange  string `form:"price_range"`
	PriceMin    string `form:"price_min"`
	PriceMax    string `form:"price_max"`
	Page        int    `form:"page" binding:"omitempty,min=1"`
	PerPage     int    `form:"per_page" binding:"omitempty,min=1,max=50"`
}

func itemsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var q itemQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			var ve validator.ValidationErrors
			if errors.As(err, &ve) {
				c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(err)})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		filter := models.ItemFilter{
			Search:      q.Search,
			Brand:       q.Brand,
			Category:    q.Category,
			StockStatus: q.StockStatus,
			PriceRange:  q.PriceRange,
			Page:        q.Page,
			PerPage:     q.PerPage,
		}
		if q.PriceMin != "" {
			price, err := decimal.NewFromString(q.PriceMin)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid price_min"})
				return
			}
			filter.PriceMin = &price
		}
		if q.PriceMax != "" {
			price, err := decimal.NewFromString(q.PriceMax)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid price_max"})
				return
			}
			filter.PriceMax = &price
		}

		page, err := models.SearchItems(c.Request.Context(), config.GetDB(), filter)
		if err != nil {
			config.LogRequestError(c.Request.Context(), "server.go", "itemsHandler", "search items", filter, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

func itemByIDHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item id"})
			return
		}
		item, err := models.GetSilverItemByID(c.Request.Context(), config.GetDB(), id)
		if errors.Is(err, utils.ErrorRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
			return
		}
		if err != nil {
			config.LogRequestError(c.Request.Context(), "server.go", "itemByIDHandler", "load item", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

func facetHandler(query func(context.Context, *gorm.DB) ([]models.FacetCount, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		facets, err := query(c.Request.Context(), config.GetDB())
		if err != nil {
			config.LogRequestError(c.Request.Context(), "server.go", "facetHandler", "list facet", nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
			return
		}
		c.JSON(http.StatusOK, facets)
	}
}

// summaryHandler serves the headline summary, cached in Redis for a short
// TTL when Redis is configured. The cache is invalidated by pipeline runs.
func summaryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if config.GetRedisDB() != nil {
			var cached models.InventorySummary
			if found, err := config.GetRedisObject(summaryCacheKey, &cached); err == nil && found {
				c.JSON(http.StatusOK, cached)
				return
			}
		}

		summary, err := models.GetInventorySummary(c.Request.Context(), config.GetDB())
		if err != nil {
			config.LogRequestError(c.Request.Context(), "server.go", "summaryHandler", "inventory summary", nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "summary failed"})
			return
		}
		if config.GetRedisDB() != nil {
			_ = config.SetRedisObject(summaryCacheKey, summary, summaryCacheTTL)
		}
		c.JSON(http.StatusOK, summary)
	}
}

func analysisHandler(query func(context.Context, *gorm.DB) ([]models.DimensionAnalysis, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := query(c.Request.Context(), config.GetDB())
		if err != nil {
			config.LogRequestError(c.Request.Context(), "server.go", "analysisHandler", "dimension analysis", nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "analysis failed"})
			return
		}
		c.JSON(http.StatusOK, rows)
	}
}

func lowStockHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := models.GetLowStockItems(c.Request.Context(), config.GetDB())
		if err != nil {
			config.LogRequestError(c.Request.Context(), "server.go", "lowStockHandler", "low stock alerts", nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

func exportHandler(settings *config.PipelineSettings) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := reports.ExportMasterWorkbook(c.Request.Context(), config.GetDB(), c.Writer, settings.HighValueThreshold)
		if err != nil {
			config.LogRequestError(c.Request.Context(), "server.go", "exportHandler", "build workbook", nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		}
	}
}

// pipelineRunHandler kicks off a full pipeline run in the background. The
// endpoint answers immediately; progress is polled via /api/pipeline/status.
func pipelineRunHandler(settings *config.PipelineSettings) gin.HandlerFunc {
	return func(c *gin.Context) {
		pipeline.mu.Lock()
		if pipeline.running {
			pipeline.mu.Unlock()
			c.JSON(http.StatusConflict, gin.H{"error": "pipeline already running"})
			return
		}
		pipeline.running = true
		pipeline.mu.Unlock()

		go runPipelineJob(settings)
		c.JSON(http.StatusAccepted, gin.H{"status": "started"})
	}
}

func runPipelineJob(settings *config.PipelineSettings) {
	logger := config.GetLogger()
	ctx, span := tracer.Start(context.Background(), "pipeline.run")
	defer span.End()

	// Redis lock keeps two instances from rebuilding Silver concurrently.
	// Best effort: without Redis the in-process guard still applies.
	if locker := config.GetRedisLock(); locker != nil {
		lock, err := locker.Obtain(config.GetRedisContext(), "pipeline:run", 30*time.Minute, nil)
		if err != nil {
			if err == redislock.ErrNotObtained {
				finishPipelineJob(nil, "another instance is running the pipeline")
				return
			}
			logger.WithFields(logrus.Fields{"field": "redislock"}).Warn("lock unavailable, proceeding: " + err.Error())
		} else {
			defer lock.Release(config.GetRedisContext())
		}
	}

	report, err := workflow.NewPipeline(config.GetDB(), settings).Run(ctx)
	if err != nil {
		config.LogError(logger, "server.go", "runPipelineJob", "pipeline run", nil, err)
		finishPipelineJob(nil, err.Error())
		return
	}

	if config.GetRedisDB() != nil {
		_ = config.RemoveRedisKey(summaryCacheKey)
	}
	finishPipelineJob(report, "")
}

func finishPipelineJob(report *workflow.RunReport, errMessage string) {
	pipeline.mu.Lock()
	defer pipeline.mu.Unlock()
	pipeline.running = false
	pipeline.lastError = errMessage
	if report != nil {
		pipeline.lastReport = report
	}
}

func pipelineStatusHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		pipeline.mu.Lock()
		defer pipeline.mu.Unlock()
		c.JSON(http.StatusOK, gin.H{
			"running":     pipeline.running,
			"last_report": pipeline.lastReport,
			"last_error":  pipeline.lastError,
		})
	}
}

// customErrorLogger is a custom Gin middleware that logs only errors
func customErrorLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Only log when there are errors
		if len(c.Errors) > 0 {
			cid, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
			logger.WithFields(logrus.Fields{
				"correlationId": cid,
				"path":          c.Request.URL.Path,
			}).Error(c.Errors.String())
		}
	}
}

func customNotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
}

func splitAndTrim(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func main() {
	port := os.Getenv("API_PORT")
	if port == "" {
		// Cloud Run standard env var.
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()
	pipelineSettings := config.LoadPipelineSettings()
	settings := &pipelineSettings

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	// Start the HTTP server before the database is ready; app endpoints
	// answer 503 until dependencies come up.
	r := gin.New()
	r.Use(func(c *gin.Context) {
		cid := c.GetHeader("x-correlation-id")
		if cid == "" {
			cid = uuid.NewString()
		}
		c.Request = c.Request.WithContext(utils.SetCorrelationIdInContext(c.Request.Context(), cid))
		c.Next()
	})
	r.Use(func(c *gin.Context) {
		if c.Request.URL.Path == "/healthz" {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		if config.GetDB() == nil {
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		c.Next()
	})

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	corsConfig := cors.DefaultConfig()
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
		if allowedOrigins == "" {
			// Safer default: deny all if not configured in production.
			corsConfig.AllowOrigins = []string{}
		} else {
			corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "OPTIONS")
	corsConfig.AddAllowHeaders("Origin", "Content-Type", "Authorization")
	corsConfig.AddExposeHeaders("Content-Length", "Content-Disposition")

	r.Use(cors.New(corsConfig))
	r.Use(customErrorLogger(logger))
	r.Use(gin.Recovery())

	api := r.Group("/api")
	api.GET("/items", itemsHandler())
	api.GET("/items/:id", itemByIDHandler())
	api.GET("/brands", facetHandler(models.ListBrands))
	api.GET("/categories", facetHandler(models.ListCategories))
	api.GET("/summary", summaryHandler())
	api.GET("/analysis/brands", analysisHandler(models.GetBrandAnalysis))
	api.GET("/analysis/categories", analysisHandler(models.GetCategoryAnalysis))
	api.GET("/analysis/price-ranges", analysisHandler(models.GetPriceRangeAnalysis))
	api.GET("/analysis/stock-status", analysisHandler(models.GetStockStatusAnalysis))
	api.GET("/alerts/low-stock", lowStockHandler())
	api.GET("/export", exportHandler(settings))
	api.POST("/pipeline/run", pipelineRunHandler(settings))
	api.GET("/pipeline/status", pipelineStatusHandler())

	r.NoRoute(customNotFoundHandler)

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()

	// Connect dependencies after the port is open.
	config.ConnectDatabaseWithRetry()
	config.ConnectRedisIfConfigured()

	db := config.GetDB()
	sqlDB, _ := db.DB()
	defer func() {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}()
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("SKIP_MIGRATIONS")), "true") {
		if err := models.MigrateTable(); err != nil {
			logger.WithFields(logrus.Fields{"field": "migrations"}).Panic(err.Error())
		}
	} else {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	}

	logger.WithFields(logrus.Fields{
		"info": "Connection Established",
	}).Info("inventory API listening on http://localhost:", port)

	select {
	case <-sigCtx.Done():
		// graceful shutdown below
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}

	if rdb := config.GetRedisDB(); rdb != nil {
		_ = rdb.Close()
	}
}
