package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ehr/intake/internal/config"
	"github.com/ehr/intake/internal/domain/ailment"
	"github.com/ehr/intake/internal/domain/allergy"
	"github.com/ehr/intake/internal/domain/contactinfo"
	"github.com/ehr/intake/internal/domain/familyhistory"
	"github.com/ehr/intake/internal/domain/insurance"
	"github.com/ehr/intake/internal/domain/medicalhistory"
	"github.com/ehr/intake/internal/domain/medication"
	"github.com/ehr/intake/internal/domain/patient"
	"github.com/ehr/intake/internal/domain/socialhistory"
	"github.com/ehr/intake/internal/domain/vitals"
	"github.com/ehr/intake/internal/platform/attachment"
	"github.com/ehr/intake/internal/platform/auth"
	"github.com/ehr/intake/internal/platform/cache"
	"github.com/ehr/intake/internal/platform/db"
	"github.com/ehr/intake/internal/platform/middleware"
	"github.com/ehr/intake/internal/platform/respond"
)

const (
	uploadURLPrefix = "/uploads"
	requestTimeout  = 30 * time.Second
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "intake-server",
		Short: "Patient intake API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the intake API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			migrate, _ := cmd.Flags().GetBool("migrate")
			return runServer(migrate)
		},
	}
	cmd.Flags().Bool("migrate", false, "Apply pending migrations before serving (postgres store only)")
	return cmd
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, func(ctx context.Context, m *db.Migrator) error {
				count, err := m.Up(ctx)
				if err != nil {
					return fmt.Errorf("migration failed: %w", err)
				}
				fmt.Printf("Applied %d migration(s) successfully.\n", count)
				return nil
			})
		},
	}
	upCmd.Flags().String("dir", "", "Path to migrations directory (default MIGRATIONS_DIR)")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, func(ctx context.Context, m *db.Migrator) error {
				statuses, err := m.Status(ctx)
				if err != nil {
					return fmt.Errorf("failed to get migration status: %w", err)
				}
				fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
				fmt.Println("---------- ---------------------------------------- ---------- --------------------")
				for _, s := range statuses {
					status := "pending"
					appliedAt := ""
					if s.Applied {
						status = "applied"
						if s.AppliedAt != nil {
							appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
						}
					}
					fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
				}
				return nil
			})
		},
	}
	statusCmd.Flags().String("dir", "", "Path to migrations directory (default MIGRATIONS_DIR)")
	cmd.AddCommand(statusCmd)

	return cmd
}

func withMigrator(cmd *cobra.Command, fn func(ctx context.Context, m *db.Migrator) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required for migrations")
	}
	dir, _ := cmd.Flags().GetString("dir")
	if dir == "" {
		dir = cfg.MigrationsDir
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, db.PoolOptions{MaxConns: 2, MinConns: 1})
	if err != nil {
		return err
	}
	defer pool.Close()
	return fn(ctx, db.NewMigrator(pool, dir))
}

func newLogger(cfg *config.Config) zerolog.Logger {
	if cfg.IsDev() {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// deps are the infrastructure pieces the routes are built on.
type deps struct {
	store  patient.Store
	files  *attachment.Service
	pinger db.Pinger
	stats  func() *db.PoolStats
}

// memoryPinger stands in for the database health check when the
// in-memory store is in use.
type memoryPinger struct{}

func (memoryPinger) Ping(context.Context) error { return nil }

func runServer(migrate bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := newLogger(cfg)
	if err := cfg.Validate(); err != nil {
		logger.Error().Err(err).Msg("invalid configuration")
		return err
	}
	if cfg.IsDev() {
		logger.Warn().Msg("ENV=development: requests without a bearer token are treated as an admin user")
	}

	ctx := context.Background()
	d := deps{pinger: memoryPinger{}}

	switch cfg.Store {
	case config.StorePostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, db.PoolOptions{MaxConns: cfg.DBMaxConns, MinConns: cfg.DBMinConns})
		if err != nil {
			logger.Error().Err(err).Msg("failed to connect to database")
			return err
		}
		defer pool.Close()
		logger.Info().Msg("connected to database")
		if migrate {
			n, err := db.NewMigrator(pool, cfg.MigrationsDir).Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			logger.Info().Int("applied", n).Msg("migrations applied")
		}
		d.store = patient.NewPGStore(pool)
		d.pinger = pool
		d.stats = func() *db.PoolStats { return db.GetPoolStats(pool) }
	default:
		logger.Warn().Msg("using in-memory patient store; data is lost on restart")
		d.store = patient.NewMemoryStore()
	}

	if cfg.RedisURL != "" {
		client, err := cache.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error().Err(err).Msg("failed to connect to redis")
			return err
		}
		defer client.Close()
		d.store = patient.NewCachedStore(d.store, cache.NewJSON(client, "intake:patient:", cfg.CacheTTL), logger)
		logger.Info().Dur("ttl", cfg.CacheTTL).Msg("patient read cache enabled")
	}

	var objects attachment.Store
	switch cfg.UploadBackend {
	case config.UploadHTTP:
		objects = attachment.NewHTTPStore(cfg.UploadBaseURL, 30*time.Second)
	default:
		objects = attachment.NewLocalStore(cfg.UploadDir, uploadURLPrefix)
	}
	d.files = attachment.NewService(objects, attachment.DefaultPolicy(cfg.UploadMaxBytes), logger)

	e := newServer(cfg, logger, d)

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("store", cfg.Store).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

func newServer(cfg *config.Config, logger zerolog.Logger, d deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = respond.ErrorHandler(logger)

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, middleware.RequestIDHeader},
	}))
	e.Use(middleware.BodyLimit(cfg.BodyLimit, fmt.Sprintf("%dK", cfg.UploadMaxBytes/1024+64)))
	e.Use(middleware.RequestTimeout(requestTimeout))

	e.GET("/health", func(c echo.Context) error {
		return respond.OK(c, map[string]string{"status": "ok", "store": cfg.Store})
	})
	e.GET("/health/db", db.HealthHandler(d.pinger, d.stats))

	jwtCfg := auth.JWTConfig{
		Issuer:     cfg.AuthIssuer,
		Audience:   cfg.AuthAudience,
		SigningKey: []byte(cfg.AuthJWTSecret),
	}
	authMW := auth.JWTMiddleware(jwtCfg)
	if cfg.IsDev() {
		authMW = auth.DevAuthMiddleware(jwtCfg)
	}
	api := e.Group("", authMW, middleware.Audit(logger))

	// Front desk fills in registration; clinicians own the clinical sections.
	registration := api.Group("", auth.RequireRole(auth.RoleFrontDesk, auth.RoleClinician))
	clinical := api.Group("", auth.RequireRole(auth.RoleClinician))

	opts := cfg.NormalizeOptions()
	store := d.store

	patient.NewHandler(patient.NewService(store, opts, logger)).RegisterRoutes(registration)
	contactinfo.NewHandler(contactinfo.NewService(store, opts, logger)).RegisterRoutes(registration)
	insurance.NewHandler(insurance.NewService(store, d.files, opts, logger)).RegisterRoutes(registration)

	intakeAllergies := allergy.NewService(store, patient.AllergySourceIntake, opts, logger)
	historyAllergies := allergy.NewService(store, patient.AllergySourceMedicalHistory, opts, logger)

	ailment.NewHandler(ailment.NewService(store, d.files, opts, logger)).RegisterRoutes(clinical)
	allergy.NewHandler(intakeAllergies).RegisterRoutes(clinical)
	medicalhistory.NewHandler(medicalhistory.NewService(store, historyAllergies, d.files, opts, logger)).RegisterRoutes(clinical)
	medication.NewHandler(medication.NewService(store, logger)).RegisterRoutes(clinical)
	vitals.NewHandler(vitals.NewService(store, opts, logger)).RegisterRoutes(clinical)
	familyhistory.NewHandler(familyhistory.NewService(store, opts, logger)).RegisterRoutes(clinical)
	socialhistory.NewHandler(socialhistory.NewService(store, opts, logger)).RegisterRoutes(clinical)

	if cfg.UploadBackend == config.UploadLocal {
		api.Static(uploadURLPrefix, cfg.UploadDir)
	}

	return e
}
