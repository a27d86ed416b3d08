package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/cexll/swe-crew/internal/coder"
	"github.com/cexll/swe-crew/internal/concurrency"
	"github.com/cexll/swe-crew/internal/config"
	"github.com/cexll/swe-crew/internal/costcontrol"
	"github.com/cexll/swe-crew/internal/dispatcher"
	"github.com/cexll/swe-crew/internal/runner"
	"github.com/cexll/swe-crew/internal/runstore"
	"github.com/cexll/swe-crew/internal/web"
)

var (
	loadDotEnv         = godotenv.Load
	defaultListenServe = http.ListenAndServe
)

// cliOptions holds the one-shot mode flags. When -repo and -issue are
// given, the process fixes a single issue and exits instead of serving.
type cliOptions struct {
	repo       string
	issueID    string
	baseCommit string
	issueDesc  string
}

func main() {
	opts := parseFlags(flag.CommandLine)
	flag.Parse()

	if err := run(context.Background(), *opts, defaultListenServe); err != nil {
		log.Fatalf("swe-crew failed: %v", err)
	}
}

func parseFlags(fs *flag.FlagSet) *cliOptions {
	opts := &cliOptions{}
	fs.StringVar(&opts.repo, "repo", "", "repository to fix, owner/repo form (one-shot mode)")
	fs.StringVar(&opts.issueID, "issue", "", "issue identifier (one-shot mode)")
	fs.StringVar(&opts.baseCommit, "base-commit", "main", "branch or commit to start from")
	fs.StringVar(&opts.issueDesc, "desc", "", "issue description; fetched from GitHub when omitted")
	return opts
}

func run(ctx context.Context, opts cliOptions, serve func(string, http.Handler) error) error {
	// Load .env file (ignore error if file doesn't exist)
	_ = loadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if opts.repo != "" || opts.issueID != "" {
		return runOnce(ctx, cfg, opts)
	}
	return runServer(ctx, cfg, serve)
}

// runOnce fixes one issue in the foreground and exits.
func runOnce(ctx context.Context, cfg *config.Config, opts cliOptions) error {
	agent, err := coder.New(cfg, coder.IssueConfig{
		RepoName:     opts.repo,
		IssueID:      opts.issueID,
		BaseCommitID: opts.baseCommit,
		IssueDesc:    opts.issueDesc,
	})
	if err != nil {
		return err
	}

	result, err := agent.Run(ctx)
	if err != nil {
		return err
	}
	log.Printf("Summary: %s", result.Summary)
	log.Printf("Session log: %s", result.LogPath)
	return nil
}

// runServer starts the HTTP run service.
func runServer(ctx context.Context, cfg *config.Config, serve func(string, http.Handler) error) error {
	log.Printf("Starting swe-crew server...")
	log.Printf("Port: %d", cfg.Port)
	log.Printf("Model environment: %s", cfg.ModelEnv.Backend())
	log.Printf("Agent logs dir: %s", cfg.AgentLogsDir)
	log.Printf("Review stage enabled: %v", cfg.ReviewEnabled)

	store := runstore.NewStore()
	locks := concurrency.NewManager()
	budget := costcontrol.NewTracker(cfg.DailyRunLimit)

	dispatcherConfig := dispatcher.Config{
		Workers:           cfg.DispatcherWorkers,
		QueueSize:         cfg.DispatcherQueueSize,
		MaxAttempts:       cfg.DispatcherMaxAttempts,
		InitialBackoff:    cfg.DispatcherRetryInitial,
		BackoffMultiplier: cfg.DispatcherBackoffMultiplier,
		MaxBackoff:        cfg.DispatcherRetryMax,
	}
	log.Printf("Dispatcher: %s", dispatcherConfig)

	runDispatcher := dispatcher.New(runner.New(cfg, store, locks), dispatcherConfig)
	defer runDispatcher.Shutdown(ctx)

	handler := web.NewHandler(store, runDispatcher, locks, budget)

	r := mux.NewRouter()
	handler.RegisterRoutes(r)

	r.HandleFunc("/", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"service":"swe-crew","status":"running","backend":"%s"}`, cfg.ModelEnv.Backend())
	}).Methods("GET")

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Printf("Server listening on %s", addr)
	log.Printf("Run API: http://localhost%s/runs", addr)
	log.Printf("Health check: http://localhost%s/health", addr)

	if err := serve(addr, r); err != nil {
		return fmt.Errorf("server failed to start: %w", err)
	}
	return nil
}
