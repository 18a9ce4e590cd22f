// Command fitkit runs the fitness consultation system.
//
// Modes:
//
//	fitkit demo    run the scripted demo scenarios and exit
//	fitkit chat    interactive consultation on stdin/stdout
//	fitkit info    print the configured team and exit
//	fitkit serve   websocket chat server with Prometheus metrics
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fitforge/fitkit/config"
	"github.com/fitforge/fitkit/demo"
	"github.com/fitforge/fitkit/evaluation"
	"github.com/fitforge/fitkit/fitkit"
	"github.com/fitforge/fitkit/memory"
	"github.com/fitforge/fitkit/middleware"
	"github.com/fitforge/fitkit/observability"
	"github.com/fitforge/fitkit/server"
)

func main() {
	configPath := flag.String("config", "fitkit.yaml", "path to the YAML config")
	flag.Parse()

	mode := flag.Arg(0)
	if mode == "" {
		mode = "demo"
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatalf("load config: %v", err)
	}

	observability.ConfigureLogging(cfg.Observability.LogLevel, cfg.Observability.LogFormat)
	logger := slog.Default()

	if cfg.Observability.TraceExporter != "none" {
		if _, err := observability.InitTracing("fitkit", cfg.Observability.TraceExporter, cfg.Observability.OTLPEndpoint); err != nil {
			fatalf("init tracing: %v", err)
		}
		defer observability.ShutdownTracing(context.Background())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch mode {
	case "demo":
		err = runDemo(ctx)
	case "chat":
		err = runChat(ctx, cfg, logger)
	case "info":
		err = runInfo(ctx, cfg)
	case "serve":
		err = runServe(ctx, cfg, logger)
	default:
		fatalf("unknown mode %q (want demo, chat, info, or serve)", mode)
	}
	if err != nil {
		fatalf("%s: %v", mode, err)
	}
}

func runDemo(ctx context.Context) error {
	return demo.RunAll(ctx, os.Stdout)
}

// runChat reads one request per line from stdin and answers with the
// configured agent. Transcripts stay in the session store; a run summary
// prints on exit.
func runChat(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	agent, cleanup, err := buildAgent(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	store, closeStore := buildStore(ctx, cfg, logger)
	defer closeStore()

	limited := middleware.NewTimeoutDecorator(agent, middleware.TimeoutConfig{Timeout: 2 * time.Minute})
	recorder := evaluation.NewRecorder(limited, memory.NewSessionID())
	sessionID := memory.NewSessionID()

	fmt.Println("=== fitkit chat ===")
	fmt.Printf("provider=%s model=%s (type 'exit' to quit)\n", cfg.Model.Provider, cfg.Model.Name)

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		message := fitkit.NewMessage("user", line)
		if err := store.Append(ctx, sessionID, message); err != nil {
			logger.Warn("failed to store message", "error", err)
		}

		response, err := recorder.Process(ctx, message)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			continue
		}
		if err := store.Append(ctx, sessionID, response); err != nil {
			logger.Warn("failed to store response", "error", err)
		}
		fmt.Println(response.Content)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}

	summary := recorder.Summarize()
	if summary.Runs > 0 {
		fmt.Printf("\nsession summary: %d turns, %.1fms mean latency, %.0f%% errors\n",
			summary.Runs, summary.MeanMs, summary.ErrorRate*100)
	}
	return nil
}

// runInfo prints the configuration and the agent roster.
func runInfo(ctx context.Context, cfg *config.Config) error {
	agent, cleanup, err := buildAgent(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	redacted := cfg.Redacted()
	cfgJSON, err := json.MarshalIndent(redacted, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println("=== fitkit info ===")
	fmt.Printf("config:\n%s\n", cfgJSON)
	fmt.Printf("agent: %s\n", agent.Name())
	fmt.Printf("capabilities: %s\n", strings.Join(agent.Capabilities(), ", "))

	snapshot := agent.Introspect()
	if snapshot != nil && len(snapshot.InternalState) > 0 {
		state, _ := json.MarshalIndent(snapshot.InternalState, "", "  ")
		fmt.Printf("state:\n%s\n", state)
	}
	return nil
}

// runServe starts the websocket chat server with metrics and tracing
// around the agent.
func runServe(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if _, err := observability.InitMetrics("fitkit"); err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	defer observability.ShutdownMetrics(context.Background())

	agent, cleanup, err := buildAgent(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	instrumented, err := observability.NewMetricsMiddleware(agent)
	if err != nil {
		return fmt.Errorf("metrics middleware: %w", err)
	}
	traced := observability.NewTracingMiddleware(instrumented, "")

	store, closeStore := buildStore(ctx, cfg, logger)
	defer closeStore()

	srv, err := server.New(traced, store, server.Options{
		Addr:        cfg.Server.Addr,
		MetricsPath: cfg.Server.MetricsPath,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// buildStore picks the transcript store: Redis when configured and
// reachable, in-process memory otherwise.
func buildStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (memory.Store, func()) {
	if cfg.Redis.Addr != "" {
		redisStore := memory.NewRedisStore(memory.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      time.Duration(cfg.Redis.TTLSeconds) * time.Second,
		})
		if err := redisStore.Ping(ctx); err != nil {
			logger.Warn("redis unreachable, using in-process store", "addr", cfg.Redis.Addr, "error", err)
			redisStore.Close()
		} else {
			logger.Info("using redis transcript store", "addr", cfg.Redis.Addr)
			return redisStore, func() { redisStore.Close() }
		}
	}
	store := memory.NewInMemoryStore(0)
	return store, func() { store.Close() }
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "fitkit: "+format+"\n", args...)
	os.Exit(1)
}
