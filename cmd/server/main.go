package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/cwhuang-tw/studynotes/internal/analyze"
	"github.com/cwhuang-tw/studynotes/internal/config"
	"github.com/cwhuang-tw/studynotes/internal/handlers"
	"github.com/cwhuang-tw/studynotes/internal/jobs"
	"github.com/cwhuang-tw/studynotes/internal/keystore"
	"github.com/cwhuang-tw/studynotes/internal/storage"
	"github.com/cwhuang-tw/studynotes/internal/transcribe"
)

func main() {
	// .env is optional; real env vars win either way.
	godotenv.Load()

	cfg, err := config.Load("config/config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setupLogger(cfg)

	if cfg.Keystore.Secret == config.DefaultSecret {
		log.Warn().Msg("STUDY_TOOL_SECRET is the development default; stored keys are not protected")
	}

	// Credential store
	keys, err := keystore.New(cfg.Storage.DataDir, cfg.Keystore.Secret)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize keystore")
	}

	// Job registry with TTL eviction
	registry := jobs.NewRegistry()
	sweeper := jobs.NewSweeper(registry,
		time.Duration(cfg.Jobs.SweepMinutes)*time.Minute,
		time.Duration(cfg.Jobs.TTLMinutes)*time.Minute)
	sweeper.Start()
	defer sweeper.Stop()

	// Transcript history + archive
	history, err := storage.NewHistory(cfg.Storage.HistoryDB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize history db")
	}
	defer history.Close()
	archive := storage.NewArchive(cfg.Storage.OutputDir)

	// Google Drive export (optional; may be unconfigured)
	var driveClient *storage.DriveClient
	if cfg.GoogleDrive.CredentialsFile != "" {
		driveClient, err = storage.NewDriveClient(
			cfg.GoogleDrive.CredentialsFile,
			cfg.GoogleDrive.TokenFile,
			cfg.GoogleDrive.FolderName,
		)
		if err != nil {
			log.Warn().Err(err).Msg("google drive not available, exports stay local")
			driveClient = nil
		} else {
			log.Info().Msg("google drive export enabled")
		}
	}

	// Transcription
	remote := transcribe.NewRemote(keys, cfg.OpenAIKey, cfg.Whisper.APIModel, cfg.Whisper.Language)
	local := transcribe.NewLocal(
		cfg.Local.PythonBin,
		cfg.Local.ScriptPath,
		cfg.Local.Model,
		cfg.Local.Device,
		cfg.Local.Compute,
		cfg.Storage.TempDir,
	)
	transcribeSvc := transcribe.NewService(cfg.Whisper.Mode, remote, local, registry, history, archive)
	log.Info().Str("mode", cfg.Whisper.Mode).Msg("transcription configured")

	// Analysis providers
	analyzeSvc := analyze.NewService(keys)
	analyzeSvc.Register("openai", analyze.NewOpenAIClient(cfg.Analyze.OpenAIModel), cfg.OpenAIKey)
	analyzeSvc.Register("google", analyze.NewGeminiClient(cfg.Analyze.GeminiModel), cfg.GoogleKey)

	app := newApp(cfg, handlers.NewKeysHandler(keys),
		handlers.NewTranscribeHandler(transcribeSvc, registry),
		handlers.NewAnalyzeHandler(analyzeSvc),
		handlers.NewExportHandler(driveClient),
		handlers.NewHistoryHandler(history),
		handlers.NewStreamHandler(registry),
	)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)

	// Graceful shutdown
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		log.Info().Msg("shutting down gracefully")
		app.Shutdown()
	}()

	log.Info().Str("addr", addr).Msg("server starting")
	if err := app.Listen(addr); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

// newApp builds the Fiber app and mounts all routes.
func newApp(cfg *config.Config,
	keysHandler *handlers.KeysHandler,
	transcribeHandler *handlers.TranscribeHandler,
	analyzeHandler *handlers.AnalyzeHandler,
	exportHandler *handlers.ExportHandler,
	historyHandler *handlers.HistoryHandler,
	streamHandler *handlers.StreamHandler,
) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit: cfg.Limits.MaxUploadMB * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("study-notes backend: audio in, teaching notes out")
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"ok": true,
			"ts": time.Now().Unix(),
		})
	})

	api := app.Group("/api")
	api.Post("/keys", keysHandler.Save)
	api.Get("/keys/:provider", keysHandler.Get)
	api.Post("/transcribe", transcribeHandler.Upload)
	api.Get("/transcribe/:jobId", transcribeHandler.Status)
	api.Delete("/transcribe/:jobId", transcribeHandler.Cancel)
	api.Post("/analyze", analyzeHandler.Handle)
	api.Post("/export", exportHandler.Handle)
	api.Get("/history", historyHandler.List)

	app.Get("/ws/transcribe/:jobId", websocket.New(streamHandler.Handle))

	return app
}

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Log.Format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}
}
