package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/JulianoPassing/scc-tickets/internal/api/http"
	"github.com/JulianoPassing/scc-tickets/internal/api/http/handlers"
	"github.com/JulianoPassing/scc-tickets/internal/auth"
	"github.com/JulianoPassing/scc-tickets/internal/config"
	"github.com/JulianoPassing/scc-tickets/internal/discord"
	"github.com/JulianoPassing/scc-tickets/internal/domain"
	"github.com/JulianoPassing/scc-tickets/internal/events"
	"github.com/JulianoPassing/scc-tickets/internal/observability"
	"github.com/JulianoPassing/scc-tickets/internal/permissions"
	"github.com/JulianoPassing/scc-tickets/internal/persistence"
	"github.com/JulianoPassing/scc-tickets/internal/repository"
	"github.com/JulianoPassing/scc-tickets/internal/service"
	"github.com/JulianoPassing/scc-tickets/internal/uploads"
	"github.com/JulianoPassing/scc-tickets/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	staffRepo := repository.NewStaffRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	messageRepo := repository.NewMessageRepository(pool)
	attachmentRepo := repository.NewAttachmentRepository(pool)
	flagRepo := repository.NewFlagRepository(pool)

	discordClient, err := discord.NewClient(cfg.Discord, logger)
	if err != nil {
		logger.Fatal("failed to build discord client", zap.Error(err))
	}
	brokerCache := discord.NewCachedBrokerVerifier(discordClient, redis.Client, cfg.Discord.BrokerCacheTTL(), logger)
	checker := permissions.NewChecker(permissions.Default(), discordClient, brokerCache, logger)
	roleMap := discord.NewRoleMap(cfg.Discord.RoleMap)

	userOAuth := discord.NewOAuthClient(discord.OAuthConfig{
		ClientID:     cfg.Discord.ClientID,
		ClientSecret: cfg.Discord.ClientSecret,
		RedirectURL:  cfg.App.BaseURL + "/auth/discord/callback",
		Scopes:       []string{"identify", "email"},
	})
	staffOAuth := discord.NewOAuthClient(discord.OAuthConfig{
		ClientID:     cfg.Discord.ClientID,
		ClientSecret: cfg.Discord.ClientSecret,
		RedirectURL:  cfg.App.BaseURL + "/admin/discord/callback",
		Scopes:       []string{"identify", "guilds.members.read"},
	})

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())
	dispatcher := events.NewInMemoryDispatcher()

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:     ticketRepo,
		MessageRepo:    messageRepo,
		AttachmentRepo: attachmentRepo,
		UserRepo:       userRepo,
		Checker:        checker,
		Dispatcher:     dispatcher,
	})
	flagService := service.NewFlagService(service.FlagDependencies{
		TicketRepo:  ticketRepo,
		MessageRepo: messageRepo,
		FlagRepo:    flagRepo,
		Checker:     checker,
		Dispatcher:  dispatcher,
	})
	authService := service.NewAuthService(service.AuthDependencies{
		UserRepo:   userRepo,
		StaffRepo:  staffRepo,
		Tokens:     tokens,
		UserOAuth:  userOAuth,
		StaffOAuth: staffOAuth,
		RoleMap:    roleMap,
		GuildID:    cfg.Discord.GuildID,
	})
	if cfg.Auth.SeedAdminUsername != "" && cfg.Auth.SeedAdminPassword != "" {
		_, err := authService.SeedStaff(ctx,
			cfg.Auth.SeedAdminUsername,
			cfg.Auth.SeedAdminPassword,
			cfg.Auth.SeedAdminName,
			domain.StaffRoleCEO,
			cfg.Auth.BcryptCost,
		)
		if err != nil {
			logger.Fatal("failed to seed admin account", zap.Error(err))
		}
		logger.Info("seed admin account ensured", zap.String("username", cfg.Auth.SeedAdminUsername))
	}

	staffService := service.NewStaffService(staffRepo, checker)
	notificationService := service.NewNotificationService(dispatcher, discordClient, messageRepo, logger, cfg.App.BaseURL)
	worker.StartNotificationWorker(notificationService)

	imgurClient := uploads.NewImgurClient(cfg.Imgur, logger)
	authMiddleware := auth.NewAuthMiddleware(tokens, userRepo, staffRepo)
	metrics := observability.NewMetrics()

	interactionsHandler, err := handlers.NewInteractionsHandler(cfg.Discord.InteractionsPublicKey, cfg.App.BaseURL, logger)
	if err != nil {
		logger.Fatal("failed to build interactions handler", zap.Error(err))
	}

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService, cfg.Auth, cfg.App.BaseURL),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		StaffTickets:   handlers.NewStaffTicketsHandler(ticketService, staffService, notificationService),
		Flags:          handlers.NewFlagsHandler(flagService),
		Transcripts:    handlers.NewTranscriptsHandler(ticketService),
		Uploads:        handlers.NewUploadsHandler(imgurClient),
		Staff:          handlers.NewStaffHandler(staffService),
		Interactions:   interactionsHandler,
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
