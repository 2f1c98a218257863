package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/tu-usuario/transfers-api/internal/application/approval"
	"github.com/tu-usuario/transfers-api/internal/application/auth"
	"github.com/tu-usuario/transfers-api/internal/application/ledger"
	"github.com/tu-usuario/transfers-api/internal/application/shipping"
	"github.com/tu-usuario/transfers-api/internal/application/transfer"
	"github.com/tu-usuario/transfers-api/internal/application/usecase"
	"github.com/tu-usuario/transfers-api/internal/infrastructure/postgres"
	httpRouter "github.com/tu-usuario/transfers-api/internal/interfaces/http"
	"github.com/tu-usuario/transfers-api/pkg/config"
	"github.com/tu-usuario/transfers-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   "info",
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	branchRepo := postgres.NewBranchRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	lotRepo := postgres.NewStockLotRepository(pool)
	entryRepo := postgres.NewLedgerEntryRepository(pool)
	ruleRepo := postgres.NewApprovalRuleRepository(pool)
	progressRepo := postgres.NewApprovalProgressRepository(pool)
	transferRepo := postgres.NewTransferRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	transferUC := transfer.NewTransferUseCase(txRunner, branchRepo, productRepo, lotRepo)
	shippingUC := shipping.NewShippingUseCase(txRunner)
	approvalUC := approval.NewApprovalUseCase(txRunner, ruleRepo, progressRepo, transferRepo, userRepo)
	ledgerUC := ledger.NewLedgerUseCase(txRunner, branchRepo, productRepo, lotRepo, entryRepo)
	branchUC := usecase.NewBranchUseCase(branchRepo, userRepo)
	productUC := usecase.NewProductUseCase(productRepo)
	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Transfers API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		TransferUC: transferUC,
		ShippingUC: shippingUC,
		ApprovalUC: approvalUC,
		LedgerUC:   ledgerUC,
		BranchUC:   branchUC,
		ProductUC:  productUC,
		AuthUC:     authUC,
		JWTSecret:  cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
