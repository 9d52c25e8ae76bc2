// Package bootstrap wires configuration, storage and feature services into a
// runnable application. The cmd binaries call Build and pick the pieces they
// need: the API serves App.Router, the sweeper drives App.EnhancementsService.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"enhancehub-backend/internal/account"
	googleauth "enhancehub-backend/internal/auth"
	"enhancehub-backend/internal/enhancements"
	"enhancehub-backend/internal/jobs"
	"enhancehub-backend/internal/render"
	"enhancehub-backend/internal/resumes"
	"enhancehub-backend/internal/shared/config"
	"enhancehub-backend/internal/shared/server"
	"enhancehub-backend/internal/shared/storage/db"
	"enhancehub-backend/internal/shared/storage/object"
	localstore "enhancehub-backend/internal/shared/storage/object/local"
	s3store "enhancehub-backend/internal/shared/storage/object/s3"
	"enhancehub-backend/internal/usage"
	"enhancehub-backend/internal/users"
	"enhancehub-backend/internal/workspace"
)

// App holds the shared dependencies constructed by Build.
type App struct {
	Config  config.Config
	Router  *gin.Engine
	DB      *sql.DB
	Store   object.ObjectStore
	Files   *workspace.Workspace
	Printer *render.PDFPrinter

	ResumesRepo      resumes.Repo
	JobsRepo         jobs.Repo
	EnhancementsRepo enhancements.Repo
	UsersRepo        users.Repo

	ResumesService      *resumes.Service
	JobsService         *jobs.Service
	EnhancementsService *enhancements.Service
	UsageService        *usage.Service
	AccountService      *account.Service
	UsersService        *users.Service

	ResumesHandler      *resumes.Handler
	JobsHandler         *jobs.Handler
	EnhancementsHandler *enhancements.Handler
	UsageHandler        *usage.Handler
	AccountHandler      *account.Handler
	UsersHandler        *users.Handler
	GoogleAuth          *googleauth.GoogleService
}

// Build prepares shared dependencies and assembles the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	files, err := workspace.New(cfg.WorkspaceRoot)
	if err != nil {
		return nil, fmt.Errorf("workspace: %w", err)
	}
	if err := files.EnsureLayout(); err != nil {
		return nil, fmt.Errorf("workspace layout: %w", err)
	}

	app := &App{
		Config:  cfg,
		DB:      sqlDB,
		Store:   store,
		Files:   files,
		Printer: render.NewPDFPrinter(cfg.ChromePath),
	}

	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:       app.Config,
		Resumes:      app.ResumesHandler,
		Jobs:         app.JobsHandler,
		Enhancements: app.EnhancementsHandler,
		Users:        app.UsersHandler,
		Usage:        app.UsageHandler,
		Account:      app.AccountHandler,
		GoogleAuth:   app.GoogleAuth,
		DB:           app.DB,
		Files:        app.Files,
	})

	return app, nil
}

// buildDB connects and migrates. Dev-like environments fall back to in-memory
// repositories when the database is absent or unreachable; production fails.
func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: migrations failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildServices(app *App) {
	var (
		resumeRepo      resumes.Repo
		jobRepo         jobs.Repo
		enhancementRepo enhancements.Repo
		userRepo        users.Repo
		usageSvc        *usage.Service
	)

	window := time.Duration(app.Config.EnhancementWindowDays) * 24 * time.Hour
	if app.DB != nil {
		resumeRepo = &resumes.PGRepo{DB: app.DB}
		jobRepo = &jobs.PGRepo{DB: app.DB}
		enhancementRepo = &enhancements.PGRepo{DB: app.DB}
		userRepo = &users.PGRepo{DB: app.DB}
		usageSvc = usage.NewPostgresService(usage.NewPGStore(app.DB, app.Config.EnhancementLimit, window))
	} else {
		resumeRepo = resumes.NewMemoryRepo()
		jobRepo = jobs.NewMemoryRepo()
		enhancementRepo = enhancements.NewMemoryRepo()
		userRepo = users.NewMemoryRepo()
		usageSvc = usage.NewService(app.Config.EnhancementLimit, window)
	}

	resumeSvc := &resumes.Service{Repo: resumeRepo, Store: app.Store, Files: app.Files}
	jobSvc := &jobs.Service{Repo: jobRepo, Files: app.Files}

	enhancementSvc := &enhancements.Service{
		Repo:    enhancementRepo,
		Resumes: resumeSvc,
		Jobs:    jobSvc,
		Usage:   usageSvc,
		Files:   app.Files,
		Printer: app.Printer,
	}
	enhancementSvc.SetProbeThrottle(enhancements.DefaultProbeThrottle)
	resumeSvc.Dependents = enhancementSvc

	userSvc := users.NewService(userRepo)
	userSvc.BcryptCost = app.Config.BcryptCost

	googleAuthSvc := googleauth.NewGoogleService(
		app.Config.GoogleClientID,
		app.Config.GoogleClientSecret,
		app.Config.GoogleRedirectURL,
		app.Config.UIRedirectURL,
		userSvc,
	)

	app.ResumesRepo = resumeRepo
	app.JobsRepo = jobRepo
	app.EnhancementsRepo = enhancementRepo
	app.UsersRepo = userRepo
	app.ResumesService = resumeSvc
	app.JobsService = jobSvc
	app.EnhancementsService = enhancementSvc
	app.UsageService = usageSvc
	app.AccountService = account.NewService(resumeRepo, jobRepo, enhancementRepo)
	app.UsersService = userSvc
	app.ResumesHandler = resumes.NewHandler(resumeSvc)
	app.JobsHandler = jobs.NewHandler(jobSvc)
	app.EnhancementsHandler = enhancements.NewHandler(enhancementSvc)
	app.UsageHandler = usage.NewHandler(usageSvc)
	app.AccountHandler = account.NewHandler(app.AccountService)
	app.UsersHandler = users.NewHandler(userSvc)
	app.GoogleAuth = googleAuthSvc
}
