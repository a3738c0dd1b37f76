package api

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/UnknownOlympus/athena/internal/auth"
	"github.com/UnknownOlympus/athena/internal/metrics"
	"github.com/UnknownOlympus/athena/internal/models"
	"github.com/gin-gonic/gin"
)

const defaultResetTimeout = 30 * time.Second

// EmployeeService is the employee collection as seen by the handlers.
type EmployeeService interface {
	List(ctx context.Context) ([]models.Employee, error)
	Create(ctx context.Context, employee models.Employee, photo *models.Upload) (string, error)
	Get(ctx context.Context, identifier string) (models.Employee, error)
	Update(
		ctx context.Context,
		identifier string,
		changes models.EmployeeChanges,
		photo *models.Upload,
	) (models.Employee, error)
	Delete(ctx context.Context, identifier string) error
}

// AuthProvider is the credential service as seen by the handlers.
type AuthProvider interface {
	Register(ctx context.Context, email, password string, displayName *string) (models.User, error)
	SignIn(ctx context.Context, email, password string) (models.User, string, error)
	SendPasswordResetEmail(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, code, newPassword string) error
	VerifyIDToken(raw string) (*auth.Claims, error)
}

type Options struct {
	MaxBodyBytes int64
	RequireToken bool
	ResetTimeout time.Duration
}

// API serves the REST endpoints under /api.
type API struct {
	log     *slog.Logger
	staff   EmployeeService
	auth    AuthProvider
	metrics *metrics.Metrics
	opts    Options
	engine  *gin.Engine

	mu      sync.Mutex
	closed  bool
	pending sync.WaitGroup
}

func New(
	log *slog.Logger,
	staff EmployeeService,
	provider AuthProvider,
	metrics *metrics.Metrics,
	opts Options,
) *API {
	if opts.ResetTimeout <= 0 {
		opts.ResetTimeout = defaultResetTimeout
	}

	registerValidators()

	a := &API{
		log:     log.With(slog.String("division", "api")),
		staff:   staff,
		auth:    provider,
		metrics: metrics,
		opts:    opts,
	}
	a.engine = a.routes()

	return a
}

func (a *API) routes() *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		a.requestLogger(),
		CORSMiddleware(),
		bodyLimit(a.opts.MaxBodyBytes),
	)

	group := router.Group("/api")

	group.POST("/login", a.login)
	group.POST("/register", a.register)
	group.POST("/resetEmail", a.resetEmail)
	group.POST("/resetPassword", a.resetPassword)

	staff := group.Group("")
	if a.opts.RequireToken {
		staff.Use(a.requireToken())
	}
	staff.POST("/addEmployee", singleFile(imageField), a.addEmployee)
	staff.GET("/getAllEmployees", a.listEmployees)
	staff.GET("/getEmployee/:id", a.getEmployee)
	staff.PUT("/updateEmployee/:id", singleFile(imageField), a.updateEmployee)
	staff.DELETE("/deleteEmployee/:id", a.deleteEmployee)

	return router
}

func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.engine.ServeHTTP(w, r)
}

// Wait stops accepting password reset dispatches and blocks until the ones
// already started have finished.
func (a *API) Wait() {
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()

	a.pending.Wait()
}
