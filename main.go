package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sepulvedablanco/clouddriver/agent"
	"github.com/sepulvedablanco/clouddriver/cache"
	"github.com/sepulvedablanco/clouddriver/config"
	"github.com/sepulvedablanco/clouddriver/controller"
	logger "github.com/sepulvedablanco/clouddriver/logging"
	"github.com/sepulvedablanco/clouddriver/model"
	"github.com/sepulvedablanco/clouddriver/resolver"
	"github.com/sepulvedablanco/clouddriver/router"
	"github.com/sepulvedablanco/clouddriver/service"
	"github.com/sepulvedablanco/clouddriver/telemetry"
	"github.com/sepulvedablanco/clouddriver/util"
)

func main() {
	// Initialize configuration
	if err := config.InitConfig(); err != nil {
		log.Fatalf("Failed to initialize config: %v", err)
	}

	// Initialize logger
	logger.InitLogger(config.GetString("log.dir"))
	defer logger.Sync()

	// Initialize the cache store
	store := cache.NewInMemoryStore()

	// Initialize EventBus
	eventBus := util.NewEventBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eventBus.Start(ctx)

	// Initialize utilities and telemetry
	validationUtil := util.NewValidationUtil()
	reporter := telemetry.NewReporter(telemetry.NewMemoryRepository(0))

	// Initialize the account registry
	accountResolver := resolver.NewAccountResolver(configuredAccounts())

	// Initialize services
	services, err := service.InitializeServices(store, accountResolver, reporter, validationUtil, eventBus)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}

	// Initialize controllers
	controllers := controller.InitializeControllers(services, reporter)

	// Set up Gin
	gin.SetMode(gin.ReleaseMode)
	r := router.SetupRouter(
		controllers,
		config.GetInt("ratelimit.requests"),
		config.GetDuration("ratelimit.window"),
	)

	// Optionally warm the cache from EC2 once at startup. Ongoing refresh
	// stays with out-of-band callers of the cache endpoint.
	if config.GetBool("aws.pollOnStart") {
		go warmCache(ctx, accountResolver, services.Cache)
	}

	// Set up the server
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", config.GetString("server.port")),
		Handler: r,
	}

	// Start the server in a goroutine
	go func() {
		logger.Info("Starting server", zap.String("port", config.GetString("server.port")))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}

// configuredAccounts maps the accounts section of the configuration into the
// registry consumed by the resolver.
func configuredAccounts() []model.Account {
	entries := config.GetConfig().Accounts
	accounts := make([]model.Account, 0, len(entries))
	for _, entry := range entries {
		accounts = append(accounts, model.Account{
			Name:      entry.Name,
			AccountID: entry.AccountID,
		})
	}
	return accounts
}

// warmCache loads the configured account's security groups into the cache
// once. Failures are logged, never fatal; the service still serves whatever
// the cache holds.
func warmCache(ctx context.Context, accounts *resolver.AccountResolver, cacheService service.ICacheService) {
	name := config.GetString("aws.account")
	account := accounts.ResolveByName(name)
	if account == nil {
		logger.Error("Cache warm-up account is not configured", zap.String("account", name))
		return
	}

	region := config.GetString("aws.region")
	client, err := agent.NewEC2Client(ctx, region)
	if err != nil {
		logger.Error("Failed to initialize EC2 client", zap.Error(err))
		return
	}

	sgAgent := agent.NewSecurityGroupAgent(client, cacheService, *account, region)
	if _, err := sgAgent.LoadSecurityGroups(ctx); err != nil {
		logger.Error("Cache warm-up failed",
			zap.String("account", account.Name),
			zap.String("region", region),
			zap.Error(err))
	}
}
