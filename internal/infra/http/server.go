package http

import (
	"herald/internal/config"
	"herald/internal/domain"
	"herald/internal/infra/counter"
	"herald/internal/logging"
	"herald/internal/metrics"
	"herald/internal/usecase"

	"github.com/gin-gonic/gin"
)

type Server struct {
	cfg config.Config
	r   *gin.Engine

	dispatcher *usecase.Dispatcher
	roles      *usecase.RoleSynchronizer
	deliveries domain.DeliveryLogRepository
	quotas     map[domain.Medium]domain.QuotaPolicy

	// idempotency suppresses duplicate sends keyed by the
	// Idempotency-Key request header; nil disables the guard.
	idempotency counter.Store

	metrics *metrics.Metrics
	log     logging.Logger

	adminAPIKey string
}

type ServerDeps struct {
	Dispatcher  *usecase.Dispatcher
	Roles       *usecase.RoleSynchronizer
	Deliveries  domain.DeliveryLogRepository
	Idempotency counter.Store
	Metrics     *metrics.Metrics
	Logger      logging.Logger
}

func NewServer(cfg config.Config, deps ServerDeps) *Server {
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{
		cfg:         cfg,
		r:           r,
		dispatcher:  deps.Dispatcher,
		roles:       deps.Roles,
		deliveries:  deps.Deliveries,
		idempotency: deps.Idempotency,
		metrics:     deps.Metrics,
		log:         deps.Logger,
		adminAPIKey: cfg.AdminAPIKey,
		quotas:      cfg.QuotaPolicies(),
	}
	if deps.Dispatcher != nil && deps.Dispatcher.Quotas != nil {
		s.quotas = deps.Dispatcher.Quotas
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.r.GET("/healthz", s.handleHealthz)
	s.r.GET("/metrics", s.handleMetrics)

	v1 := s.r.Group("/v1")
	{
		v1.POST("/notifications", s.handleDispatch)

		admin := v1.Group("/admin", s.requireAdminKey)
		{
			admin.POST("/roles/grant", s.handleGrantRole)
			admin.POST("/roles/revoke", s.handleRevokeRole)
			admin.POST("/roles/sync", s.handleSyncRole)
			admin.GET("/deliveries", s.handleListDeliveries)
		}
	}

	s.r.NoRoute(s.handleNoRoute)
}

func (s *Server) Run() error {
	return s.r.Run(s.cfg.HTTPAddr)
}
