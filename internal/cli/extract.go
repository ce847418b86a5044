package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/JustinChaney2023/ARA-Multipurpose-AI-App/internal/export"
)

var (
	extractJSON       string
	extractFill       string
	extractNoLLM      bool
	extractConfidence int
	extractTimeout    time.Duration
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Extract a structured contact form from one scan or transcript",
	Long: `Extract reads a PDF, image, or plain-text transcript of a care
coordination visit note and produces a validated monthly contact form with
per-field confidence tiers.

The extraction method is chosen automatically: poor scans go to the vision
model when one is configured, messy transcripts to the categorizing model,
clean transcripts to the structuring model, and pattern matching covers
everything when no model runtime is reachable.

Example:
  ara extract visit-note.pdf
  ara extract scan.png --json form.json --fill fill-data.json
  ara extract transcript.txt --confidence 45
  ara extract visit-note.pdf --no-llm`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVar(&extractJSON, "json", "", "write the extraction result to this path (default: stdout)")
	extractCmd.Flags().StringVar(&extractFill, "fill", "", "also write PDF template fill data to this path")
	extractCmd.Flags().BoolVar(&extractNoLLM, "no-llm", false, "disable model calls, use rule-based extraction only")
	extractCmd.Flags().IntVar(&extractConfidence, "confidence", -1, "override the OCR confidence estimate (0-100)")
	extractCmd.Flags().DurationVar(&extractTimeout, "timeout", 5*time.Minute, "overall extraction timeout")
}

func runExtract(cmd *cobra.Command, args []string) error {
	path := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), extractTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if extractNoLLM {
		cfg.LLM.Disabled = true
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Extracting: %s\n", path)
	}

	result, err := a.ExtractFileWithConfidence(ctx, path, extractConfidence)
	if err != nil {
		return fmt.Errorf("extract failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Method: %s\n", result.ExtractionMethod)
		fmt.Fprintf(os.Stderr, "Model runtime available: %v\n", result.OllamaAvailable)
		for _, issue := range result.ValidationIssues {
			fmt.Fprintf(os.Stderr, "Issue: %s\n", issue)
		}
	}

	if err := writeResultJSON(result, extractJSON); err != nil {
		return err
	}

	if extractFill != "" {
		data := export.FillData(result.Form)
		if err := writeJSONFile(extractFill, data); err != nil {
			return fmt.Errorf("write fill data: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "Wrote fill data: %s (template %s)\n", extractFill, export.TemplateVersion)
		}
	}

	return nil
}

// writeResultJSON writes the result to a file, or pretty-prints to stdout
// when no path is given
func writeResultJSON(v any, path string) error {
	if path == "" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	if err := writeJSONFile(path, v); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Wrote result: %s\n", path)
	}
	return nil
}

func writeJSONFile(path string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(raw, '\n'), 0o644)
}
