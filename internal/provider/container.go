package provider

import (
	"github.com/3syncai/affiliate-portal-sub001/internal/authz"
	"github.com/3syncai/affiliate-portal-sub001/internal/cache"
	"github.com/3syncai/affiliate-portal-sub001/internal/config"
	"github.com/3syncai/affiliate-portal-sub001/internal/logger"
	"github.com/3syncai/affiliate-portal-sub001/internal/models"
	"github.com/3syncai/affiliate-portal-sub001/internal/queue"
	"github.com/3syncai/affiliate-portal-sub001/internal/repository"
	"github.com/3syncai/affiliate-portal-sub001/internal/service"
)

// Container holds every repository and service the HTTP handlers and
// the worker consume.
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AdminRepo      repository.AdminRepository
	ActorRepo      repository.ActorRepository
	ProductRepo    repository.ProductRepository
	RateRepo       repository.RateRepository
	LedgerRepo     repository.LedgerRepository
	WithdrawalRepo repository.WithdrawalRepository
	ActivityRepo   repository.ActivityRepository

	// Services
	AuthzService       *authz.Service
	AuthService        *service.AuthService
	ActorService       *service.ActorService
	ProductService     *service.ProductService
	RateService        *service.RateService
	HierarchyService   *service.HierarchyService
	AttributionService *service.AttributionService
	LedgerService      *service.LedgerService
	BalanceService     *service.BalanceService
	WithdrawalService  *service.WithdrawalService
	ActivityService    *service.ActivityService
}

// NewContainer wires the full dependency graph.
func NewContainer(cfg *config.Config) *Container {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	c.initRepositories()
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.ActorRepo = repository.NewActorRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.RateRepo = repository.NewRateRepository(db)
	c.LedgerRepo = repository.NewLedgerRepository(db)
	c.WithdrawalRepo = repository.NewWithdrawalRepository(db)
	c.ActivityRepo = repository.NewActivityRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.ActorService = service.NewActorService(c.ActorRepo)
	c.ProductService = service.NewProductService(c.ProductRepo)
	c.RateService = service.NewRateService(c.RateRepo, c.Config.Commission.RateCacheTTLSeconds)
	c.HierarchyService = service.NewHierarchyService(c.ActorRepo)
	c.AttributionService = service.NewAttributionService(c.HierarchyService, c.RateService, c.ProductRepo)
	c.ActivityService = service.NewActivityService(c.ActivityRepo)
	c.LedgerService = service.NewLedgerService(c.LedgerRepo, c.ActorRepo, c.AttributionService, c.ActivityService)
	c.BalanceService = service.NewBalanceService(c.LedgerRepo, c.ActorRepo, c.WithdrawalRepo, c.RateService, c.Config.Commission.OverrideBalanceMode)
	c.WithdrawalService = service.NewWithdrawalService(c.WithdrawalRepo, c.ActorRepo, c.BalanceService, c.ActivityService, c.Config.Withdrawal.GSTPercent, c.Config.Withdrawal.MinAmount)
}
