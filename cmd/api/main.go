package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"dealdesk/pkg/api/config"
	"dealdesk/pkg/api/deals"
	apimarket "dealdesk/pkg/api/market"
	apiresearch "dealdesk/pkg/api/research"
	apiunderwrite "dealdesk/pkg/api/underwrite"
	"dealdesk/pkg/core/agent"
	appconfig "dealdesk/pkg/core/config"
	"dealdesk/pkg/core/extract"
	"dealdesk/pkg/core/logging"
	"dealdesk/pkg/core/prompt"
	"dealdesk/pkg/core/research"
	"dealdesk/pkg/core/store"
	"dealdesk/pkg/core/underwrite"

	"github.com/joho/godotenv"
)

func main() {
	configPath := flag.String("config", appconfig.DefaultPath, "path to app.yaml")
	flag.Parse()

	// Load environment variables
	_ = godotenv.Load()

	cfg, err := appconfig.Load(*configPath)
	if err != nil {
		// Logger is not up yet
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := logging.Init(cfg.Debug); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	defer logging.Sync()
	log := logging.Named("server")

	// Initialize Prompt Library
	// Determine resources path (relative to executable or working directory)
	resourcesPath := cfg.Prompts.Dir
	if _, err := os.Stat(resourcesPath); os.IsNotExist(err) {
		exePath, _ := os.Executable()
		resourcesPath = filepath.Join(filepath.Dir(exePath), cfg.Prompts.Dir)
	}
	if _, err := os.Stat(resourcesPath); err == nil {
		if err := prompt.LoadFromDirectory(resourcesPath); err != nil {
			log.Warnw("failed to load prompt library, using built-in prompts", "dir", resourcesPath, "error", err)
		}
	}
	log.Infow("prompt library ready", "prompts", prompt.Get().Count())

	// Persistence: Postgres when configured, files otherwise
	ctx := context.Background()
	var reports *store.ReportRepo
	if cfg.Database.URL != "" {
		if err := store.InitDB(ctx, cfg.Database.URL); err != nil {
			log.Warnw("database unavailable, falling back to file storage", "error", err)
		} else if err := store.Migrate(ctx, store.GetPool()); err != nil {
			log.Warnw("migration failed", "error", err)
		}
	}
	defer store.Close()
	reports = store.NewReportRepo(store.GetPool(), cfg.Database.ReportDir)

	agentMgr := agent.NewManager(cfg.LLM)
	engine := underwrite.NewEngine()
	engine.Weights = cfg.MarketWeights()

	mux := http.NewServeMux()

	// Config endpoints
	configHandler := config.NewHandler(agentMgr)
	mux.HandleFunc("/api/config", configHandler.HandleConfig)
	mux.HandleFunc("/api/config/switch", configHandler.HandleSwitch)

	// Underwriting endpoints
	apiunderwrite.NewHandler(engine, reports).Register(mux)

	marketHandler := apimarket.NewHandler(engine.Weights)
	mux.HandleFunc("/api/market/score", marketHandler.HandleScore)

	// Extract -> verify
	extractor := &extract.Extractor{Provider: agentMgr.AgentProvider(agent.DealExtraction)}
	dealsHandler := deals.NewHandler(extractor, engine)
	mux.HandleFunc("/api/deals/extract", dealsHandler.HandleExtract)
	mux.HandleFunc("/api/deals/verify", dealsHandler.HandleVerify)

	// Market research chat
	svc := research.NewService(&research.RoutedChat{Manager: agentMgr})
	svc.Weights = engine.Weights
	researchHandler := apiresearch.NewHandler(svc)
	mux.HandleFunc("/api/research/chat", researchHandler.HandleChat)
	mux.HandleFunc("/api/research/session", researchHandler.HandleSession)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infow("API server starting", "addr", cfg.Server.Addr, "provider", agentMgr.GetActiveProvider(), "database", store.GetPool() != nil)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed to start", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warnw("shutdown", "error", err)
	}
	log.Infow("server stopped")
}
