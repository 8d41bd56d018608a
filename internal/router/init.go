package router

import (
	"context"
	"expvar"

	"github.com/oksasatya/taskmaster-api/config"
	"github.com/oksasatya/taskmaster-api/internal/application"
	"github.com/oksasatya/taskmaster-api/internal/container"
	repo "github.com/oksasatya/taskmaster-api/internal/domain/repository"
	esinfra "github.com/oksasatya/taskmaster-api/internal/infrastructure/elasticsearch"
	"github.com/oksasatya/taskmaster-api/internal/infrastructure/memory"
	mongoinfra "github.com/oksasatya/taskmaster-api/internal/infrastructure/mongo"
	pginfra "github.com/oksasatya/taskmaster-api/internal/infrastructure/postgres"
	handlers "github.com/oksasatya/taskmaster-api/internal/interface/http"
	"github.com/oksasatya/taskmaster-api/internal/interface/middleware"
	"github.com/oksasatya/taskmaster-api/internal/router/modules"
	"github.com/oksasatya/taskmaster-api/pkg/helpers"
)

// Stores groups the repositories of the selected backend.
type Stores struct {
	Users repo.UserRepository
	Tasks repo.TaskRepository
}

// BuildStores picks the repositories for cfg.StoreDriver.
func BuildStores(cfg *config.Config) Stores {
	switch cfg.StoreDriver {
	case config.StoreMongo:
		db := container.GetMongo()
		return Stores{Users: mongoinfra.NewUserRepository(db), Tasks: mongoinfra.NewTaskRepository(db)}
	case config.StoreMemory:
		return Stores{Users: memory.NewUserRepository(), Tasks: memory.NewTaskRepository()}
	default:
		pool := container.GetPGPool()
		return Stores{Users: pginfra.NewUserRepository(pool), Tasks: pginfra.NewTaskRepository(pool)}
	}
}

func buildTaskIndexer(cfg *config.Config) application.TaskIndexer {
	es := container.GetES()
	if es == nil {
		return nil
	}
	idx := esinfra.NewTaskIndexer(es, cfg.ESTasksIndex)
	if err := idx.EnsureIndex(context.Background()); err != nil {
		helpers.LogError(container.GetLogger(), "ensure tasks index failed", err, nil)
	}
	return idx
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	stores := BuildStores(cfg)

	authSvc := application.NewAuthService(stores.Users, container.GetJWT(), cfg.BcryptCost, logger)
	authSvc.AppName = cfg.AppName
	authSvc.AppURL = cfg.AppURL
	if pub := container.GetRabbitPub(); pub != nil {
		authSvc.Mail = pub
	}
	if gcs := container.GetGCS(); gcs != nil && cfg.GCSBucket != "" {
		authSvc.Avatars = &helpers.GCSUploader{Client: gcs, Bucket: cfg.GCSBucket}
	}
	taskSvc := application.NewTaskService(stores.Tasks, buildTaskIndexer(cfg), logger, cfg.PageLimitDefault)

	guard := middleware.Auth(authSvc, logger)

	r.Add(modules.NewSystemModule(handlers.NewSystemHandler(cfg.AppName)))
	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(authSvc, logger), guard))
	r.Add(modules.NewTaskModule(handlers.NewTaskHandler(taskSvc, logger), guard))
	if cfg.DebugMetricsEnabled {
		if expvar.Get("store_driver") == nil {
			expvar.NewString("store_driver").Set(cfg.StoreDriver)
		}
		r.Add(modules.NewDebugModule())
	}
}
