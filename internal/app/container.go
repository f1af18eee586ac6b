package app

import (
	"gorm.io/gorm"

	"github.com/mycyberclinics/verifysvc/domain"
	"github.com/mycyberclinics/verifysvc/internal/config"
	"github.com/mycyberclinics/verifysvc/internal/infrastructure/auth"
	"github.com/mycyberclinics/verifysvc/internal/infrastructure/database"
	"github.com/mycyberclinics/verifysvc/internal/infrastructure/notifications"
	"github.com/mycyberclinics/verifysvc/internal/infrastructure/repositories"
	"github.com/mycyberclinics/verifysvc/internal/services"
)

// Container holds all dependencies
type Container struct {
	// Config
	Config *config.Config

	// Infrastructure
	DB    *gorm.DB
	Store *database.RedisStore

	// Repositories
	UserRepo    domain.UserRepository
	SessionRepo domain.SessionRepository

	// Services
	PasswordSvc     domain.PasswordService
	TokenSvc        domain.TokenService
	NotificationSvc domain.NotificationService
	Limiter         domain.RateLimiter
	VerifySvc       domain.VerificationService
	SyncSvc         domain.SessionSyncService
	AccountSvc      domain.AccountService
}

// NewContainer creates and initializes all dependencies
func NewContainer(cfg *config.Config) (*Container, error) {
	container := &Container{Config: cfg}

	if err := container.initDatabase(); err != nil {
		return nil, err
	}
	container.initStore()
	container.initRepositories()
	container.initServices()

	return container, nil
}

func (c *Container) initDatabase() error {
	db, err := database.Open(c.Config.DSN)
	if err != nil {
		return err
	}
	if err := database.AutoMigrate(db); err != nil {
		return err
	}
	c.DB = db
	return nil
}

func (c *Container) initStore() {
	c.Store = database.NewRedisStore(c.Config.RedisAddr, c.Config.RedisPassword, c.Config.RedisDB)
}

func (c *Container) initRepositories() {
	c.UserRepo = repositories.NewUserRepository(c.DB)
	c.SessionRepo = repositories.NewSessionRepository(c.Store, c.Config.SessionTTL)
}

func (c *Container) initServices() {
	c.PasswordSvc = auth.NewPasswordService(c.Config.BcryptCost)
	c.TokenSvc = auth.NewJWTService(c.Config.JWTSecret, c.Config.JWTIssuer, c.Config.AccessTTL)
	c.NotificationSvc = notifications.NewTwilioService(
		c.Config.TwilioSID,
		c.Config.TwilioToken,
		c.Config.TwilioFrom,
	)

	policies := make(map[string]services.ScopePolicy, len(c.Config.Quotas))
	for scope, q := range c.Config.Quotas {
		policies[scope] = services.ScopePolicy{Capacity: q.Capacity, Window: q.Window}
	}
	c.Limiter = services.NewRateLimiter(c.Store, policies)

	c.VerifySvc = services.NewVerificationService(c.Store, c.Config.VerifySecret, services.VerificationConfig{
		CodeLength:  c.Config.VerifyLength,
		CodeTTL:     c.Config.VerifyTTL,
		MaxAttempts: c.Config.VerifyMaxAttempts,
		AttemptsTTL: c.Config.VerifyAttemptsTTL,
		LockoutTTL:  c.Config.VerifyLockoutTTL,
	})

	c.SyncSvc = services.NewSessionSyncService(c.SessionRepo)

	c.AccountSvc = services.NewAccountService(
		c.UserRepo,
		c.SessionRepo,
		c.PasswordSvc,
		c.TokenSvc,
		c.VerifySvc,
		c.Limiter,
		c.NotificationSvc,
		c.SyncSvc,
		c.Config.SessionTTL,
	)
}
