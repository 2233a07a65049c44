package container

import (
	"context"

	"influence-api/internal/config"
	"influence-api/internal/repository"
	"influence-api/internal/service"
	"influence-api/pkg/database"
	"influence-api/pkg/logger"
	"influence-api/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *logger.Logger
	DB           *database.PostgresDB
	RedisClient  *redis.Client
	Repositories *repository.Repositories
	Dashboard    *service.DashboardService
}

// New creates a new dependency injection container
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Container, error) {
	db, err := database.NewPostgresDB(ctx, cfg.DatabaseURL, cfg.DatabaseReadURL)
	if err != nil {
		return nil, err
	}

	// Redis is optional; without it every request computes from the store
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(cfg.RedisURL, cfg.Environment, log.Logger)
		if err != nil {
			log.WithError(err).Warn("Failed to initialize Redis client, proceeding without caching")
		} else {
			redisClient = client
			log.Info("Redis client initialized successfully")
		}
	} else {
		log.Info("Redis URL not configured, proceeding without caching")
	}

	retry := repository.RetryPolicy{
		Attempts:  cfg.StoreRetryAttempts,
		BaseDelay: cfg.StoreRetryBaseDelay,
	}
	repos := &repository.Repositories{
		Relations:  repository.NewRelationRepository(db, log, retry),
		Voters:     repository.NewVoterRepository(db, log, retry),
		Elections:  repository.NewElectionRepository(db, log, retry),
		Alignments: repository.NewAlignmentRepository(db, log, retry),
		Rollups:    repository.NewRollupRepository(db, log, retry),
		Groups:     repository.NewGroupRepository(db, log, retry),
	}

	networkService := service.NewNetworkService(repos.Relations, log)
	jurisdictionService := service.NewJurisdictionService(repos.Relations, repos.Voters, repos.Rollups, log)
	electionService := service.NewElectionService(repos.Elections, repos.Alignments, log)
	timeSeriesService := service.NewTimeSeriesService(repos.Relations, repos.Rollups, log)
	groupService := service.NewGroupService(repos.Groups)

	dashboard := service.NewDashboardService(
		networkService,
		jurisdictionService,
		electionService,
		timeSeriesService,
		groupService,
		redisClient,
		log,
		cfg.RootViewpointGroupID,
	)

	return &Container{
		Config:       cfg,
		Logger:       log,
		DB:           db,
		RedisClient:  redisClient,
		Repositories: repos,
		Dashboard:    dashboard,
	}, nil
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logger.Logger {
	return c.Logger
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.Config
}

// GetDatabase returns the database handle
func (c *Container) GetDatabase() *database.PostgresDB {
	return c.DB
}

// GetRedisClient returns the Redis client (may be nil if not configured)
func (c *Container) GetRedisClient() *redis.Client {
	return c.RedisClient
}

// GetDashboard returns the dashboard service
func (c *Container) GetDashboard() *service.DashboardService {
	return c.Dashboard
}

// HasRedis returns true if the Redis client is available
func (c *Container) HasRedis() bool {
	return c.RedisClient != nil
}
