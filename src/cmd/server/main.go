package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mani-labs/mani-banking/src/internal/adapter/http/controller"
	"github.com/mani-labs/mani-banking/src/internal/adapter/http/middleware"
	"github.com/mani-labs/mani-banking/src/internal/adapter/http/router"
	"github.com/mani-labs/mani-banking/src/internal/adapter/repository/postgres"
	"github.com/mani-labs/mani-banking/src/internal/config"
	"github.com/mani-labs/mani-banking/src/internal/logger"
	"github.com/mani-labs/mani-banking/src/internal/usecase/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if err := logger.Configure(cfg.LogLevel); err != nil {
		log.Fatalf("configure logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	db, err := postgres.Open(startupCtx, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	if err := postgres.RunMigrations(startupCtx, db, cfg.MigrationsDir); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	userRepo := postgres.NewUserRepository(db)
	accountRepo := postgres.NewAccountRepository(db)
	transactionRepo := postgres.NewTransactionRepository(db)
	ledgerRepo := postgres.NewLedgerRepository(db)

	notifier := services.NewLogNotifier()
	userService := services.NewUserService(userRepo, notifier)
	accountService := services.NewAccountService(accountRepo, userRepo, transactionRepo, services.NewRandomAccountNumberGenerator())
	transactionService := services.NewTransactionService(transactionRepo, accountRepo)
	approvalService := services.NewApprovalService(transactionRepo, accountRepo, userRepo, ledgerRepo, notifier)

	mux := router.New(
		controller.NewUserController(userService, accountService),
		controller.NewAccountController(accountService),
		controller.NewTransactionController(transactionService),
		controller.NewApprovalController(approvalService),
		middleware.Authenticate(userService),
	)

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("server listening", logger.Fields{"addr": cfg.ListenAddr})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
