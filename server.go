package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"bitbucket.org/mmdatafocus/balances_backend/config"
	"bitbucket.org/mmdatafocus/balances_backend/middlewares"
	"bitbucket.org/mmdatafocus/balances_backend/models"
	"bitbucket.org/mmdatafocus/balances_backend/models/reports"
	"bitbucket.org/mmdatafocus/balances_backend/utils"
	"bitbucket.org/mmdatafocus/balances_backend/workflow"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
)

const defaultPort = "8080"

var tracer = otel.Tracer("balances-backend")

type RateLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

func NewRateLimiter(client *redis.Client, limit int64, window time.Duration) *RateLimiter {
	return &RateLimiter{
		client: client,
		limit:  limit,
		window: window,
	}
}

func (rl *RateLimiter) RateLimitMiddleware(c *gin.Context) {
	key := "rl:" + c.ClientIP()

	exists, err := rl.client.Exists(c.Request.Context(), key).Result()
	if err != nil {
		c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	if exists == 0 {
		if err := rl.client.Set(c.Request.Context(), key, 1, rl.window).Err(); err != nil {
			c.AbortWithError(http.StatusInternalServerError, err)
			return
		}
		c.Next()
		return
	}

	count, err := rl.client.Incr(c.Request.Context(), key).Result()
	if err != nil {
		c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	if count > rl.limit {
		c.AbortWithStatus(http.StatusTooManyRequests)
		return
	}
	c.Next()
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// writeDomainError maps the workflow error taxonomy onto HTTP statuses:
// rule violations are 422, conflicts (duplicate year, concurrent stage moves)
// are 409, everything else is a 500.
func writeDomainError(c *gin.Context, err error) {
	var (
		illegal   *workflow.IllegalTransitionError
		guard     *workflow.ConfirmationGuardError
		noteErr   *workflow.MissingNoteError
		conflict  *workflow.StageConflictError
		duplicate *workflow.DuplicateYearError
	)
	switch {
	case errors.As(err, &illegal), errors.As(err, &guard), errors.As(err, &noteErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "retryable": true})
	case errors.As(err, &duplicate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "existing_count": duplicate.ExistingCount})
	case errors.Is(err, utils.ErrorRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		logger := config.GetLogger()
		config.LogError(logger, "server.go", "writeDomainError", c.FullPath(), nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// writeBindError answers a failed request bind. Field-level validation
// failures come back as a field -> rule map so the frontend can mark inputs.
func writeBindError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "validation failed",
			"fields": utils.ProcessValidationErrors(err),
		})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func pathId(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

// pagingParams reads the page/limit query pair for list endpoints. Zero
// values defer to the model layer defaults.
func pagingParams(c *gin.Context) (page int, limit int) {
	if v := c.Query("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			page = n
		}
	}
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	return page, limit
}

func signinHandler() gin.HandlerFunc {
	type signinRequest struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	return func(c *gin.Context) {
		var req signinRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeBindError(c, err)
			return
		}
		token, user, err := models.Signin(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"token": token,
			"user": gin.H{
				"id":       user.ID,
				"username": user.Username,
				"name":     user.Name,
				"role":     user.Role,
			},
		})
	}
}

func transitionHandler(engine *workflow.Engine) gin.HandlerFunc {
	type transitionRequest struct {
		TargetStage models.BalanceStage `json:"target_stage" binding:"required"`
		Note        string              `json:"note"`
	}
	return func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), "case-transition")
		defer span.End()

		caseId, ok := pathId(c, "id")
		if !ok {
			return
		}
		var req transitionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeBindError(c, err)
			return
		}

		bc, err := engine.RequestTransition(ctx, workflow.TransitionRequest{
			CaseId:      caseId,
			TargetStage: req.TargetStage,
			Note:        req.Note,
		})
		if err != nil {
			writeDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, bc)
	}
}

func openYearHandler(opener *workflow.YearOpener) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), "open-year")
		defer span.End()

		year, ok := pathId(c, "year")
		if !ok {
			return
		}
		result, err := opener.OpenYear(ctx, year)
		if err != nil {
			writeDomainError(c, err)
			return
		}
		c.JSON(http.StatusCreated, result)
	}
}

func listCasesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var (
			year      *int
			stage     *models.BalanceStage
			auditorId *int
			clientId  *int
		)
		if v := c.Query("year"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				year = &n
			}
		}
		if v := c.Query("stage"); v != "" {
			s := models.BalanceStage(v)
			if !models.IsValidBalanceStage(s) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "unknown stage"})
				return
			}
			stage = &s
		}
		if v := c.Query("auditor_id"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				auditorId = &n
			}
		}
		if v := c.Query("client_id"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				clientId = &n
			}
		}
		page, limit := pagingParams(c)

		cases, err := models.GetBalanceCases(c.Request.Context(), year, stage, auditorId, clientId, page, limit)
		if err != nil {
			writeDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, cases)
	}
}

func getCaseHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		caseId, ok := pathId(c, "id")
		if !ok {
			return
		}
		bc, err := models.GetBalanceCase(c.Request.Context(), caseId)
		if err != nil {
			writeDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, bc)
	}
}

func caseHistoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		caseId, ok := pathId(c, "id")
		if !ok {
			return
		}
		histories, err := models.GetCaseHistories(c.Request.Context(), caseId)
		if err != nil {
			writeDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, histories)
	}
}

func caseNotesHandler() gin.HandlerFunc {
	type notesRequest struct {
		Notes string `json:"notes"`
	}
	return func(c *gin.Context) {
		caseId, ok := pathId(c, "id")
		if !ok {
			return
		}
		var req notesRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeBindError(c, err)
			return
		}
		bc, err := models.UpdateBalanceCaseNotes(c.Request.Context(), caseId, req.Notes)
		if err != nil {
			writeDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, bc)
	}
}

func caseAdvancesHandler() gin.HandlerFunc {
	type advancesRequest struct {
		Amount decimal.Decimal `json:"amount"`
	}
	return func(c *gin.Context) {
		caseId, ok := pathId(c, "id")
		if !ok {
			return
		}
		var req advancesRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeBindError(c, err)
			return
		}
		bc, err := models.UpdateBalanceCaseAdvances(c.Request.Context(), caseId, req.Amount)
		if err != nil {
			writeDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, bc)
	}
}

func assignAuditorHandler() gin.HandlerFunc {
	type assignRequest struct {
		AuditorId int `json:"auditor_id"`
	}
	return func(c *gin.Context) {
		caseId, ok := pathId(c, "id")
		if !ok {
			return
		}
		var req assignRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeBindError(c, err)
			return
		}
		bc, err := models.AssignAuditor(c.Request.Context(), caseId, req.AuditorId)
		if err != nil {
			writeDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, bc)
	}
}

func confirmAuditorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		caseId, ok := pathId(c, "id")
		if !ok {
			return
		}
		bc, err := models.ConfirmAuditor(c.Request.Context(), caseId)
		if err != nil {
			writeDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, bc)
	}
}

func caseActiveHandler() gin.HandlerFunc {
	type activeRequest struct {
		IsActive *bool `json:"is_active" binding:"required"`
	}
	return func(c *gin.Context) {
		caseId, ok := pathId(c, "id")
		if !ok {
			return
		}
		var req activeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeBindError(c, err)
			return
		}
		bc, err := models.ToggleActiveBalanceCase(c.Request.Context(), caseId, utils.DereferencePtr(req.IsActive))
		if err != nil {
			writeDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, bc)
	}
}

func uploadDocumentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		caseId, ok := pathId(c, "id")
		if !ok {
			return
		}
		fileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
			return
		}
		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read file"})
			return
		}
		defer file.Close()

		doc, err := models.UploadCaseDocument(c.Request.Context(), caseId,
			fileHeader.Filename, fileHeader.Header.Get("Content-Type"), fileHeader.Size, file)
		if err != nil {
			writeDomainError(c, err)
			return
		}
		c.JSON(http.StatusCreated, doc)
	}
}

func listDocumentsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		caseId, ok := pathId(c, "id")
		if !ok {
			return
		}
		docs, err := models.GetCaseDocuments(c.Request.Context(), caseId)
		if err != nil {
			writeDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, docs)
	}
}

func documentURLHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		caseId, ok := pathId(c, "id")
		if !ok {
			return
		}
		docId, ok := pathId(c, "docId")
		if !ok {
			return
		}
		url, err := models.GetCaseDocumentURL(c.Request.Context(), caseId, docId)
		if err != nil {
			writeDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"url": url})
	}
}

func dashboardHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		year, ok := pathId(c, "year")
		if !ok {
			return
		}
		dashboard, err := reports.GetBalanceDashboard(c.Request.Context(), year)
		if err != nil {
			writeDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, dashboard)
	}
}

func dashboardExportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		year, ok := pathId(c, "year")
		if !ok {
			return
		}
		dashboard, err := reports.GetBalanceDashboard(c.Request.Context(), year)
		if err != nil {
			writeDomainError(c, err)
			return
		}
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=dashboard_%d.xlsx", year))
		if err := reports.ExportDashboardExcel(dashboard, c.Writer); err != nil {
			writeDomainError(c, err)
		}
	}
}

func createClientHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewClient
		if err := c.ShouldBindJSON(&input); err != nil {
			writeBindError(c, err)
			return
		}
		client, err := models.CreateClient(c.Request.Context(), &input)
		if err != nil {
			writeDomainError(c, err)
			return
		}
		c.JSON(http.StatusCreated, client)
	}
}

func updateClientHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		var input models.NewClient
		if err := c.ShouldBindJSON(&input); err != nil {
			writeBindError(c, err)
			return
		}
		client, err := models.UpdateClient(c.Request.Context(), id, &input)
		if err != nil {
			writeDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, client)
	}
}

func clientActiveHandler() gin.HandlerFunc {
	type activeRequest struct {
		IsActive *bool `json:"is_active" binding:"required"`
	}
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		var req activeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeBindError(c, err)
			return
		}
		client, err := models.ToggleActiveClient(c.Request.Context(), id, utils.DereferencePtr(req.IsActive))
		if err != nil {
			writeDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, client)
	}
}

func listClientsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var (
			name       *string
			entityType *models.EntityType
		)
		if v := c.Query("name"); v != "" {
			name = &v
		}
		if v := c.Query("entity_type"); v != "" {
			et := models.EntityType(v)
			entityType = &et
		}
		activeOnly := c.Query("active_only") == "true"
		page, limit := pagingParams(c)

		clients, err := models.GetClients(c.Request.Context(), name, entityType, activeOnly, page, limit)
		if err != nil {
			writeDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, clients)
	}
}

func getClientHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		client, err := models.GetClient(c.Request.Context(), id)
		if err != nil {
			writeDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, client)
	}
}

func createUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewUser
		if err := c.ShouldBindJSON(&input); err != nil {
			writeBindError(c, err)
			return
		}
		user, err := models.CreateUser(c.Request.Context(), &input)
		if err != nil {
			writeDomainError(c, err)
			return
		}
		c.JSON(http.StatusCreated, user)
	}
}

func listUsersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := models.GetUsers(c.Request.Context())
		if err != nil {
			writeDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, users)
	}
}

func getFirmHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		firm, err := models.GetFirm(c.Request.Context())
		if err != nil {
			writeDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, firm)
	}
}

// customErrorLogger logs only requests that collected gin errors.
func customErrorLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			username, _ := utils.GetUsernameFromContext(c.Request.Context())
			logger.WithFields(logrus.Fields{
				"path":     c.FullPath(),
				"username": username,
			}).Error(c.Errors.String())
		}
	}
}

// buildRouter wires the middleware chain and all routes. Recovery runs
// outermost so a panic anywhere below it, middleware included, answers 500
// instead of killing the connection. App endpoints return 503 until ready()
// reports the backing services are up.
func buildRouter(logger *logrus.Logger, engine *workflow.Engine, opener *workflow.YearOpener, ready func() bool) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.CorrelationMiddleware())
	r.Use(func(c *gin.Context) {
		if c.Request.URL.Path == "/healthz" {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		if !ready() {
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		c.Next()
	})
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	corsConfig := cors.DefaultConfig()
	// In production, require an explicit allowlist via CORS_ALLOWED_ORIGINS.
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
		if allowedOrigins == "" {
			corsConfig.AllowOrigins = []string{}
		} else {
			corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS")
	corsConfig.AddAllowHeaders("token", "Origin", "Content-Type", "Authorization", "X-Correlation-Id")
	corsConfig.AddExposeHeaders("Content-Length", "Content-Disposition")
	corsConfig.AllowCredentials = true
	r.Use(cors.New(corsConfig))

	if strings.EqualFold(strings.TrimSpace(os.Getenv("RATE_LIMIT_ENABLED")), "true") {
		client := redis.NewClient(&redis.Options{Addr: os.Getenv("REDIS_ADDRESS")})
		limit := int64(600)
		if v := strings.TrimSpace(os.Getenv("RATE_LIMIT_MAX_REQUESTS")); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
				limit = n
			}
		}
		windowSec := int64(60)
		if v := strings.TrimSpace(os.Getenv("RATE_LIMIT_WINDOW_SECONDS")); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
				windowSec = n
			}
		}
		rateLimiter := NewRateLimiter(client, limit, time.Duration(windowSec)*time.Second)
		r.Use(rateLimiter.RateLimitMiddleware)
	}

	r.Use(middlewares.AuthMiddleware())
	r.Use(customErrorLogger(logger))

	r.POST("/signin", signinHandler())

	api := r.Group("/api", middlewares.RequireAuth())
	{
		api.GET("/firm", getFirmHandler())

		api.GET("/cases", listCasesHandler())
		api.GET("/cases/:id", getCaseHandler())
		api.POST("/cases/:id/transition", transitionHandler(engine))
		api.GET("/cases/:id/history", caseHistoryHandler())
		api.PATCH("/cases/:id/notes", caseNotesHandler())
		api.PATCH("/cases/:id/advances", caseAdvancesHandler())
		api.PATCH("/cases/:id/active", caseActiveHandler())
		api.POST("/cases/:id/assign-auditor", assignAuditorHandler())
		api.POST("/cases/:id/confirm-auditor", confirmAuditorHandler())
		api.GET("/cases/:id/documents", listDocumentsHandler())
		api.POST("/cases/:id/documents", uploadDocumentHandler())
		api.GET("/cases/:id/documents/:docId/url", documentURLHandler())

		api.POST("/years/:year/open",
			middlewares.RequireCapability(models.CapabilityYearsOpen), openYearHandler(opener))

		dashboards := api.Group("", middlewares.RequireCapability(models.CapabilityDashboardView))
		dashboards.GET("/dashboard/:year", dashboardHandler())
		dashboards.GET("/dashboard/:year/export", dashboardExportHandler())

		api.GET("/clients", listClientsHandler())
		api.GET("/clients/:id", getClientHandler())
		clientWrites := api.Group("", middlewares.RequireCapability(models.CapabilityClientsManage))
		clientWrites.POST("/clients", createClientHandler())
		clientWrites.PUT("/clients/:id", updateClientHandler())
		clientWrites.PATCH("/clients/:id/active", clientActiveHandler())

		api.GET("/users", listUsersHandler())
		api.POST("/users",
			middlewares.RequireCapability(models.CapabilityUsersManage), createUserHandler())
	}

	return r
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

	// Cloud Run sends SIGTERM on revision shutdown; handle it for graceful drain.
	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	engine := workflow.NewEngine(models.GormCaseStore{}, models.GormHistoryStore{}, models.PubSubEventPublisher{})
	opener := workflow.NewYearOpener(models.GormCaseStore{}, models.GormClientSource{}, models.RedisYearLocker{})

	// Start the HTTP server ASAP so Cloud Run considers the revision healthy.
	// Until DB/Redis are ready, app endpoints return 503.
	r := buildRouter(logger, engine, opener, func() bool {
		return config.GetDB() != nil && config.GetRedisDB() != nil
	})

	// Start listening immediately (Cloud Run startup probe is TCP based).
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
	config.ConnectRedisWithRetry()

	db := config.GetDB()
	sqlDB, _ := db.DB()
	defer func() {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}()
	// AutoMigrate can run DDL that blocks tables; allow running migrations as
	// a separate job instead.
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("SKIP_MIGRATIONS")), "true") {
		models.MigrateTable()
	} else {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	}

	logger.WithFields(logrus.Fields{
		"info": "Connection Established",
	}).Info("listening on http://localhost:", port, "/")
	log.Println("Server started successfully")

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
