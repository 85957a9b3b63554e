package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/config"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/fixtures"
	appHTTP "github.com/cmlabs-hris/attendance-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/attendance-backend-go/internal/repository/mongodb"
	"github.com/cmlabs-hris/attendance-backend-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/attendance-backend-go/internal/service/attendance"
	notificationService "github.com/cmlabs-hris/attendance-backend-go/internal/service/notification"
	"github.com/spf13/pflag"
)

func main() {
	envFile := pflag.String("env-file", ".env", "path to the environment file")
	policyFile := pflag.String("policy-file", "", "optional YAML file overriding the attendance policy")
	migrate := pflag.Bool("migrate", false, "create tables and indexes before serving")
	seed := pflag.Bool("seed", false, "load the demo employee directory before serving")
	pflag.Parse()

	if err := run(*envFile, *policyFile, *migrate, *seed); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// stores holds the repositories of the selected driver and its closer.
type stores struct {
	attendanceRepo attendance.AttendanceRepository
	employeeRepo   employee.EmployeeRepository
	employeeSeeder fixtures.EmployeeSeeder
	close          func()
}

func openStores(ctx context.Context, cfg *config.Config, migrate bool) (stores, error) {
	switch cfg.Database.Driver {
	case config.DriverMongo:
		db, err := database.NewMongoDB(ctx, cfg.Mongo.URI, cfg.Mongo.Name)
		if err != nil {
			return stores{}, err
		}
		if migrate {
			if err := mongodb.EnsureIndexes(ctx, db); err != nil {
				_ = db.Close(context.Background())
				return stores{}, err
			}
		}
		employeeRepo := mongodb.NewEmployeeRepository(db)
		return stores{
			attendanceRepo: mongodb.NewAttendanceRepository(db),
			employeeRepo:   employeeRepo,
			employeeSeeder: employeeRepo.(fixtures.EmployeeSeeder),
			close:          func() { _ = db.Close(context.Background()) },
		}, nil

	default:
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolConfig{
			MaxConns: cfg.Database.MaxConns,
			MinConns: cfg.Database.MinConns,
		})
		if err != nil {
			return stores{}, err
		}
		if migrate {
			if err := postgresql.Migrate(ctx, db); err != nil {
				db.Close()
				return stores{}, err
			}
		}
		employeeRepo := postgresql.NewEmployeeRepository(db)
		return stores{
			attendanceRepo: postgresql.NewAttendanceRepository(db),
			employeeRepo:   employeeRepo,
			employeeSeeder: employeeRepo.(fixtures.EmployeeSeeder),
			close:          db.Close,
		}, nil
	}
}

func run(envFile, policyFile string, migrate, seed bool) error {
	cfg, err := config.Load(envFile, policyFile)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logger := appHTTP.NewLogger("attendance-cmlabs", cfg.App.Env, parseLevel(cfg.App.LogLevel), os.Stdout)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	st, err := openStores(connectCtx, cfg, migrate)
	cancel()
	if err != nil {
		return fmt.Errorf("error connecting to %s: %w", cfg.Database.Driver, err)
	}
	defer st.close()

	if seed {
		n, err := fixtures.SeedEmployees(ctx, st.employeeSeeder)
		if err != nil {
			return err
		}
		logger.Info("Seeded employee directory", "count", n)
	}

	clk := clock.Real()
	policy := cfg.Attendance.Policy

	hub := sse.NewHub()
	notifSvc := notificationService.NewNotificationService(hub, clk, logger, notificationService.Config{
		BatchSize:     cfg.Notification.BatchSize,
		FlushInterval: cfg.Notification.FlushInterval,
		WorkerCount:   cfg.Notification.WorkerCount,
		QueueSize:     cfg.Notification.QueueSize,
	})
	defer notifSvc.Stop()

	autoCloser := attendanceService.NewAutoCloser(st.attendanceRepo, notifSvc, clk, policy, logger)
	attendanceSvc := attendanceService.NewAttendanceService(
		st.attendanceRepo,
		st.employeeRepo,
		notifSvc,
		autoCloser,
		clk,
		policy,
		logger,
	)

	scheduler := cron.NewScheduler(logger)
	cron.NewAttendanceJobs(autoCloser, cfg.Attendance.SweepInterval, logger).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AcceptableSkew)
	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc, notifSvc, JWTService, logger)

	router := appHTTP.NewRouter(appHTTP.RouterConfig{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Logger:         logger,
	}, JWTService, attendanceHandler)

	// Event streams end when shutdown starts.
	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}
	server.RegisterOnShutdown(cancelBase)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server running", "addr", server.Addr, "driver", cfg.Database.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}
