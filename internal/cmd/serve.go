package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Motiontography/motiontography-bot/internal/chat"
	"github.com/Motiontography/motiontography-bot/internal/config"
	"github.com/Motiontography/motiontography-bot/internal/kb"
	"github.com/Motiontography/motiontography-bot/internal/llm"
	"github.com/Motiontography/motiontography-bot/internal/server"
	"github.com/Motiontography/motiontography-bot/internal/transcript"
	"github.com/Motiontography/motiontography-bot/kbdata"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the chat HTTP server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "HTTP server port")
	rootCmd.AddCommand(serveCmd)
}

// kbLoader returns the KB load function: the configured file when kb_path
// is set, otherwise the embedded default.
func kbLoader(cfg *config.Config) kb.LoadFunc {
	if cfg.KBPath != "" {
		path := cfg.KBPath
		return func(ctx context.Context) (*kb.KnowledgeBase, error) {
			return kb.LoadFile(path)
		}
	}
	return func(ctx context.Context) (*kb.KnowledgeBase, error) {
		return kb.Parse(kbdata.DefaultKBYAML())
	}
}

// buildEngine wires the chat engine, with the model path when configured.
func buildEngine(cfg *config.Config) (*chat.Engine, error) {
	if !cfg.ModelEnabled() {
		return chat.NewEngine(), nil
	}
	provider, err := llm.NewOpenAIProvider(cfg.OpenAIAPIKey)
	if err != nil {
		return nil, fmt.Errorf("openai provider: %w", err)
	}
	return chat.NewEngine(chat.WithModel(provider, chat.ModelSettings{
		Model:           cfg.Model,
		ReasoningEffort: cfg.ModelEffort,
		Verbosity:       cfg.ModelVerbosity,
		MaxOutputTokens: cfg.ModelMaxTokens,
	})), nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.EnsureDataDir(); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	cache := kb.NewCache(kbLoader(cfg), cfg.KBTTL)
	snap, err := cache.Get(ctx)
	if err != nil {
		return fmt.Errorf("loading knowledge base: %w", err)
	}

	store, err := transcript.NewStore(cfg.TranscriptDBPath())
	if err != nil {
		return fmt.Errorf("initializing transcript store: %w", err)
	}
	defer store.Close()

	engine, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	if cfg.AdminToken == "" {
		log.Warn().Msg("MOTIONBOT_ADMIN_TOKEN not set — admin endpoints will return 401. Set for production.")
	}

	srv := server.NewServer(engine, cache, store, cfg.AdminToken,
		server.WithCORSOrigins(cfg.CORSOrigins),
		server.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	addr := fmt.Sprintf(":%d", servePort)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      srv.Routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info().
		Str("addr", addr).
		Int("intents", len(snap.Intents)).
		Bool("model", engine.ModelEnabled()).
		Str("kb_path", cfg.KBPath).
		Msg("motionbot_serve_started")

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown_signal_received")
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info().Msg("server_stopped")
	return nil
}
