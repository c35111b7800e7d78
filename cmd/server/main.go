package main

import (
	"context"
	"database/sql"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-persistence-bun"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	landmark "github.com/nurlan1717/landmark-backend"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("skipping .env: %v", err)
	}

	cfg, err := landmark.ConfigFromEnv()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := setupPersistence(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	repo.MustValidate()

	logger := landmark.NewAppLogger()

	tokens := landmark.NewTokenService(
		[]byte(cfg.GetSigningKey()),
		cfg.GetTokenExpiration(),
		cfg.GetIssuer(),
		logger,
	)

	auther := landmark.NewAuthenticator(repo, tokens).WithLogger(logger)

	var mailer landmark.Mailer
	if smtp := cfg.GetSMTP(); smtp.Enabled() {
		mailer = landmark.NewSMTPMailer(smtp, logger)
	} else {
		logger.Warn("no SMTP relay configured, emails go to the log")
		mailer = landmark.NewLogMailer(logger)
	}

	app := fiber.New(fiber.Config{
		AppName:      "landmark-backend",
		ErrorHandler: landmark.NewAppErrorHandler(logger, cfg.GetDebug()),
	})

	landmark.RegisterRoutes(app, repo, auther, tokens, mailer, cfg, logger)

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Error("shutdown error: %v", err)
		}
	}()

	logger.Info("listening on %s", cfg.GetServerAddress())
	if err := app.Listen(cfg.GetServerAddress()); err != nil {
		log.Fatal(err)
	}
}

func setupPersistence(ctx context.Context, cfg *landmark.AppConfig) (landmark.RepositoryManager, error) {
	db, err := sql.Open(sqliteshim.ShimName, cfg.GetDSN())
	if err != nil {
		return nil, err
	}

	persistence.RegisterModel((*landmark.User)(nil))
	persistence.RegisterModel((*landmark.Product)(nil))
	persistence.RegisterModel((*landmark.Basket)(nil))
	persistence.RegisterModel((*landmark.BasketItem)(nil))

	client, err := persistence.New(cfg.GetPersistence(), db, sqlitedialect.New())
	if err != nil {
		return nil, err
	}

	migrationsFS, err := fs.Sub(landmark.GetMigrationsFS(), "data/sql/migrations")
	if err != nil {
		return nil, err
	}

	client.RegisterDialectMigrations(
		migrationsFS,
		persistence.WithDialectSourceLabel("data/sql/migrations"),
		persistence.WithValidationTargets("postgres", "sqlite"),
	)

	if err := client.ValidateDialects(ctx); err != nil {
		return nil, err
	}

	if err := client.Migrate(ctx); err != nil {
		return nil, err
	}

	return landmark.NewRepositoryManager(client.DB()), nil
}
