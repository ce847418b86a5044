package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/spf13/cobra"

	"github.com/JustinChaney2023/ARA-Multipurpose-AI-App/internal/server"
)

var (
	serveHost        string
	servePort        int
	serveWaitRuntime time.Duration
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP extraction service",
	Long: `Serve exposes the extraction pipeline over HTTP:

  POST /extract/pdf   multipart file upload -> extraction result
  POST /extract/fill  {"rawText": ...}      -> extraction result
  POST /summarize     {"text": ...}         -> narrative summary
  GET  /health        liveness + model runtime status

The service keeps working when the model runtime is down; extraction
degrades to rule-based pattern matching instead of failing.

Example:
  ara serve
  ara serve --port 9090 --wait-runtime 30s`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveHost, "host", "", "bind address (default from config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (default from config)")
	serveCmd.Flags().DurationVar(&serveWaitRuntime, "wait-runtime", 0, "wait up to this long for the model runtime before starting")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveHost != "" {
		cfg.Server.Host = serveHost
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}

	if serveWaitRuntime > 0 && !cfg.LLM.Disabled {
		if err := waitForRuntime(ctx, a, serveWaitRuntime); err != nil {
			fmt.Fprintf(os.Stderr, "Model runtime did not come up: %v (serving anyway, extraction will degrade)\n", err)
		}
	}

	srv, err := server.New(server.Config{
		Server:     cfg.Server,
		Pipeline:   a.pipeline,
		Transcribe: a.ocr,
		Summarizer: a.summarizer,
		Logger:     a.logger,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Serving on %s:%d\n", cfg.Server.Host, cfg.Server.Port)
	return srv.Start(ctx)
}

// waitForRuntime polls the liveness probe until the runtime answers or the
// budget runs out. Useful when ara and the runtime start from the same
// supervisor and the model is still loading.
func waitForRuntime(ctx context.Context, a *app, budget time.Duration) error {
	deadline, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	return retry.Do(
		func() error {
			if a.pipeline.RuntimeAvailable(deadline) {
				return nil
			}
			return fmt.Errorf("runtime not answering")
		},
		retry.Context(deadline),
		retry.Attempts(0), // until context expires
		retry.Delay(2*time.Second),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
}
