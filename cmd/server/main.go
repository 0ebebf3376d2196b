// Command server runs the document generation backend: the REST API, the
// Telegram bot transport, and the background maintenance loops. All wiring
// happens here; packages below main stay free of globals.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/moydoc/go-docgen-backend/internal/bot"
	"github.com/moydoc/go-docgen-backend/internal/config"
	"github.com/moydoc/go-docgen-backend/internal/forms"
	httpapi "github.com/moydoc/go-docgen-backend/internal/http"
	"github.com/moydoc/go-docgen-backend/internal/notify"
	"github.com/moydoc/go-docgen-backend/internal/observability"
	"github.com/moydoc/go-docgen-backend/internal/render"
	"github.com/moydoc/go-docgen-backend/internal/repo"
	"github.com/moydoc/go-docgen-backend/internal/services"
	"github.com/moydoc/go-docgen-backend/internal/sysutil"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// .env is optional; real deployments configure through the environment.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	setupLogging(cfg)
	log.Info().Str("version", version).Msg("starting server")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown failed")
		}
	}()

	db := mustOpenDB(ctx, cfg)

	if err := os.MkdirAll(cfg.ArtifactDir, 0o755); err != nil {
		log.Fatal().Err(err).Str("dir", cfg.ArtifactDir).Msg("artifact dir unavailable")
	}

	// Services shared by the HTTP and bot transports.
	templateSvc := services.NewTemplateService(db, cfg.TemplatePageSize)
	documentSvc := services.NewDocumentService(db)
	formSvc := services.NewFormService(db, forms.NewMemoryStore(), templateSvc, documentSvc)
	authSvc := services.NewAuthService(db, cfg.JWT.Secret, cfg.JWT.TTL)

	emailSender := notify.NewEmailSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password, cfg.SMTP.From)
	smsSender := notify.NewSMSSender(cfg.SMSRuAPIKey)
	verifySvc := services.NewVerificationService(db, emailSender, smsSender, cfg.Verification.CodeTTL)
	go verifySvc.RunSweeper(ctx, cfg.Verification.SweepInterval)

	var pdfClient *render.PDFClient
	if cfg.Gotenberg.URL != "" {
		pdfClient, err = render.NewPDFClient(cfg.Gotenberg.URL, cfg.Gotenberg.Timeout)
		if err != nil {
			log.Fatal().Err(err).Msg("gotenberg client setup failed")
		}
	} else {
		log.Warn().Msg("gotenberg url not set, pdf endpoint disabled")
	}

	tgBot := startBot(ctx, cfg, db, templateSvc, documentSvc, formSvc)

	// HTTP transport.
	gin.SetMode(cfg.GinMode)
	engine := gin.New()
	deps := httpapi.Deps{
		Catalog:     templateSvc,
		Documents:   documentSvc,
		Auth:        authSvc,
		Verify:      verifySvc,
		VerifyToken: authSvc.VerifyToken,
	}
	if pdfClient != nil {
		deps.PDF = pdfClient
	}
	if tgBot != nil {
		deps.Bot = tgBot
	}
	httpapi.RegisterRoutes(engine, cfg, deps)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	log.Info().Msg("bye")
}

// setupLogging configures the global zerolog output and level.
func setupLogging(cfg config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	sysutil.SetLogLevel(cfg.LogLevel)
}

// mustOpenDB opens the SQLite database, runs migrations, and applies the
// idempotent catalog seed.
func mustOpenDB(ctx context.Context, cfg config.Config) *gorm.DB {
	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("database open failed")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("database migration failed")
	}
	if err := repo.Seed(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("catalog seed failed")
	}
	return db
}

// startBot brings up the Telegram transport when a token is configured.
// With a webhook URL the bot only registers the webhook and updates arrive
// through the HTTP layer; otherwise a long-polling loop runs until shutdown.
func startBot(ctx context.Context, cfg config.Config, db *gorm.DB, tpls *services.TemplateService, docs *services.DocumentService, formSvc *services.FormService) *bot.Bot {
	if cfg.Bot.Token == "" {
		log.Info().Msg("telegram token not set, bot disabled")
		return nil
	}

	b, err := bot.New(cfg.Bot.Token, db, tpls, docs, formSvc)
	if err != nil {
		log.Fatal().Err(err).Msg("telegram bot setup failed")
	}

	if cfg.Bot.WebhookURL != "" {
		if err := b.SetWebhook(cfg.Bot.WebhookURL); err != nil {
			log.Fatal().Err(err).Msg("telegram webhook registration failed")
		}
		return b
	}

	go b.Run(ctx)
	return b
}
