package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/JustinChaney2023/ARA-Multipurpose-AI-App/internal/worker"
)

var (
	batchConcurrency int
	batchOutputDir   string
	batchTimeout     time.Duration
	batchNoLLM       bool
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Extract every scan and transcript in a directory",
	Long: `Batch processes a directory of visit notes concurrently:
- Pick up every supported file (pdf, png, jpg, tiff, bmp, txt)
- Extract them in parallel with a configurable worker count
- Write one JSON extraction result per input

Example:
  ara batch ./scans
  ara batch ./scans --concurrency 4 --output-dir ./forms
  ara batch ./scans --no-llm`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&batchOutputDir, "output-dir", "./ara-forms", "output directory for extraction results")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for the batch")
	batchCmd.Flags().BoolVar(&batchNoLLM, "no-llm", false, "disable model calls, use rule-based extraction only")
}

func runBatch(cmd *cobra.Command, args []string) error {
	dir := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if batchNoLLM {
		cfg.LLM.Disabled = true
	}
	cfg.Concurrency.Workers = batchConcurrency

	a, err := newApp(cfg)
	if err != nil {
		return err
	}

	inputs, err := worker.ListInputs(dir)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return fmt.Errorf("no supported inputs in %s", dir)
	}

	if err := os.MkdirAll(batchOutputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Processing %d files with %d workers...\n", len(inputs), batchConcurrency)

	processor := worker.NewBatchProcessor(a, batchConcurrency)
	results := processor.ProcessFiles(ctx, inputs)

	success, failed := 0, 0
	for _, result := range results {
		if result.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", result.Path, result.Err)
			continue
		}

		outPath := filepath.Join(batchOutputDir, outputName(result.Path))
		if err := writeJSONFile(outPath, result.Result); err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "FAIL %s: write result: %v\n", result.Path, err)
			continue
		}

		success++
		fmt.Fprintf(os.Stderr, "OK   %s -> %s (%s)\n",
			filepath.Base(result.Path), outPath, result.Result.ExtractionMethod)
	}

	fmt.Fprintf(os.Stderr, "\nBatch complete: %d succeeded, %d failed, output in %s\n",
		success, failed, batchOutputDir)

	if failed > 0 && success == 0 {
		return fmt.Errorf("all %d extractions failed", failed)
	}
	return nil
}

// outputName maps an input filename to its result filename
func outputName(inputPath string) string {
	base := filepath.Base(inputPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return stem + ".json"
}
