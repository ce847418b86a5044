package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/JustinChaney2023/ARA-Multipurpose-AI-App/internal/model"
)

// FileExtractor turns one input file into an extraction result. The batch
// processor stays ignorant of how: OCR, model calls, and fallback policy
// all live behind this interface.
type FileExtractor interface {
	ExtractFile(ctx context.Context, path string) (*model.ExtractionResult, error)
}

// supportedExtensions are the input types a batch run picks up from a
// directory scan
var supportedExtensions = map[string]bool{
	".pdf": true, ".png": true, ".jpg": true, ".jpeg": true,
	".tif": true, ".tiff": true, ".bmp": true, ".txt": true,
}

// FileJob extracts a single file
type FileJob struct {
	Path      string
	Extractor FileExtractor
}

// Execute runs the extraction for one file
func (j *FileJob) Execute(ctx context.Context) Result {
	result, err := j.Extractor.ExtractFile(ctx, j.Path)
	return &FileResult{Path: j.Path, Result: result, Err: err}
}

// FileResult pairs an input path with its extraction outcome
type FileResult struct {
	Path   string
	Result *model.ExtractionResult
	Err    error
}

// GetError returns the extraction error, if any
func (r *FileResult) GetError() error {
	return r.Err
}

// BatchProcessor extracts many files concurrently
type BatchProcessor struct {
	extractor   FileExtractor
	concurrency int
}

// NewBatchProcessor creates a batch processor
func NewBatchProcessor(extractor FileExtractor, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		extractor:   extractor,
		concurrency: concurrency,
	}
}

// ProcessFiles extracts the given files with the configured worker count.
// Results come back in completion order, one per input.
func (b *BatchProcessor) ProcessFiles(ctx context.Context, paths []string) []*FileResult {
	if len(paths) == 0 {
		return []*FileResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	// Collect completions while submitting. The result buffer is bounded, so
	// submitting everything first would stall the workers and block Submit
	// once the input count outgrows the buffers.
	collected := make(chan []*FileResult, 1)
	go func() {
		var out []*FileResult
		for result := range pool.Results() {
			out = append(out, result.(*FileResult))
		}
		collected <- out
	}()

	for _, path := range paths {
		pool.Submit(&FileJob{Path: path, Extractor: b.extractor})
	}
	pool.Wait()

	return <-collected
}

// ProcessDir extracts every supported file directly under dir
func (b *BatchProcessor) ProcessDir(ctx context.Context, dir string) ([]*FileResult, error) {
	paths, err := ListInputs(dir)
	if err != nil {
		return nil, err
	}
	return b.ProcessFiles(ctx, paths), nil
}

// ListInputs returns the supported files directly under dir, sorted by name
func ListInputs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if supportedExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}
