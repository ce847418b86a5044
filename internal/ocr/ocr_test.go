package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JustinChaney2023/ARA-Multipurpose-AI-App/internal/cache"
)

const sampleTranscript = `Monthly Contact Form
Recipient Name: Bob Smith
Date: 03/15/2024   Time: 10:30 AM
SIH [X]  HCBW [ ]
Observations: Recipient doing well, apartment clean and safe.
Review of Services: Meal delivery on schedule.
Signature: J. Doe`

// stubRunner scripts tool invocations by binary name
type stubRunner struct {
	pdftotextOut string
	pdftotextErr error
	tesseractOut string
	tesseractTSV string
	tesseractErr error
	rasterPages  int
	rasterErr    error
	invoked      []string
}

func (r *stubRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	r.invoked = append(r.invoked, name)
	switch name {
	case "pdftotext":
		return []byte(r.pdftotextOut), nil, r.pdftotextErr
	case "pdftoppm":
		if r.rasterErr != nil {
			return nil, []byte("raster error"), r.rasterErr
		}
		// pdftoppm writes page images next to the given prefix
		prefix := args[len(args)-1]
		for i := 1; i <= r.rasterPages; i++ {
			path := fmt.Sprintf("%s-%d.png", prefix, i)
			if err := os.WriteFile(path, []byte("png"), 0o644); err != nil {
				return nil, nil, err
			}
		}
		return nil, nil, nil
	case "tesseract":
		if r.tesseractErr != nil {
			return nil, []byte("tesseract error"), r.tesseractErr
		}
		if len(args) > 0 && args[len(args)-1] == "tsv" {
			return []byte(r.tesseractTSV), nil, nil
		}
		return []byte(r.tesseractOut), nil, nil
	}
	return nil, nil, fmt.Errorf("unexpected tool %q", name)
}

func newTestExtractor(runner Runner, store cache.Cache) *Extractor {
	e := NewExtractor(Config{Timeout: time.Minute}, store, nil)
	e.runner = runner
	return e
}

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write input: %v", err)
	}
	return path
}

func TestExtract_DigitalPDF(t *testing.T) {
	runner := &stubRunner{pdftotextOut: sampleTranscript + "\f" + "page two text padding padding padding"}
	e := newTestExtractor(runner, nil)

	result, err := e.Extract(context.Background(), writeInput(t, "note.pdf", "%PDF-fake"))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if result.Method != MethodPDFText {
		t.Errorf("Expected pdf-text, got %s", result.Method)
	}
	if result.Pages != 2 {
		t.Errorf("Expected 2 pages, got %d", result.Pages)
	}
	if result.Confidence < pdfTextConfidence {
		t.Errorf("Digital text should score at least %d, got %d", pdfTextConfidence, result.Confidence)
	}
	if !strings.Contains(result.Text, "Bob Smith") {
		t.Error("Transcript content lost")
	}
}

func TestExtract_ScannedPDFFallsBackToOCR(t *testing.T) {
	runner := &stubRunner{
		pdftotextOut: "  \n ", // empty text layer
		rasterPages:  2,
		tesseractOut: sampleTranscript,
	}
	e := newTestExtractor(runner, nil)

	result, err := e.Extract(context.Background(), writeInput(t, "scan.pdf", "%PDF-fake"))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if result.Method != MethodPDFOCR {
		t.Errorf("Expected pdf-ocr, got %s", result.Method)
	}
	if result.Pages != 2 {
		t.Errorf("Expected 2 pages, got %d", result.Pages)
	}
	if !strings.Contains(result.Text, "\f") {
		t.Error("Expected a page break marker between OCR'd pages")
	}
}

func TestExtract_Image(t *testing.T) {
	// level..conf,text: conf column carries 80 and 90 -> mean 85
	tsv := "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext\n" +
		"5\t1\t1\t1\t1\t1\t0\t0\t10\t10\t80\tBob\n" +
		"5\t1\t1\t1\t1\t2\t0\t0\t10\t10\t90\tSmith\n" +
		"5\t1\t1\t1\t1\t3\t0\t0\t10\t10\t-1\t\n"
	runner := &stubRunner{tesseractOut: sampleTranscript, tesseractTSV: tsv}
	e := newTestExtractor(runner, nil)
	e.cfg.TSVConfidence = true

	result, err := e.Extract(context.Background(), writeInput(t, "page.png", "png bytes"))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if result.Method != MethodImageOCR {
		t.Errorf("Expected image-ocr, got %s", result.Method)
	}
	heuristic := heuristicConfidence(Normalize(sampleTranscript))
	want := (85*7 + heuristic*3) / 10
	if result.Confidence != want {
		t.Errorf("Expected blended confidence %d, got %d", want, result.Confidence)
	}
}

func TestExtract_TextPassthrough(t *testing.T) {
	e := newTestExtractor(&stubRunner{}, nil)

	result, err := e.Extract(context.Background(), writeInput(t, "note.txt", sampleTranscript))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if result.Method != MethodText {
		t.Errorf("Expected text, got %s", result.Method)
	}
	if result.Confidence <= 50 {
		t.Errorf("A clean form transcript should score above 50, got %d", result.Confidence)
	}
}

func TestExtract_UnsupportedExtension(t *testing.T) {
	e := newTestExtractor(&stubRunner{}, nil)
	if _, err := e.Extract(context.Background(), writeInput(t, "note.docx", "x")); err == nil {
		t.Fatal("Expected an error for unsupported input")
	}
}

func TestExtract_CachesByContent(t *testing.T) {
	runner := &stubRunner{tesseractOut: sampleTranscript}
	store := cache.NewMemoryCache(time.Hour, time.Hour)
	e := newTestExtractor(runner, store)

	path := writeInput(t, "page.png", "same bytes")
	if _, err := e.Extract(context.Background(), path); err != nil {
		t.Fatalf("First extract failed: %v", err)
	}
	firstCalls := len(runner.invoked)

	// Same content under a different name still hits the cache
	again := writeInput(t, "copy.png", "same bytes")
	result, err := e.Extract(context.Background(), again)
	if err != nil {
		t.Fatalf("Second extract failed: %v", err)
	}
	if len(runner.invoked) != firstCalls {
		t.Error("Expected the second extract to be served from cache")
	}
	if !strings.Contains(result.Text, "Bob Smith") {
		t.Error("Cached result lost content")
	}
}

func TestHeuristicConfidence(t *testing.T) {
	if got := heuristicConfidence(""); got != 0 {
		t.Errorf("Empty text should score 0, got %d", got)
	}
	noise := heuristicConfidence("zk xj qw")
	form := heuristicConfidence(sampleTranscript)
	if noise >= form {
		t.Errorf("Noise (%d) should score below a form transcript (%d)", noise, form)
	}
	if form > 100 {
		t.Errorf("Confidence must stay within 0-100, got %d", form)
	}
}

func TestNormalize(t *testing.T) {
	in := "Name: Bob\r\nDate:\t03/15/2024\n\n\n\n____\nNotes here  "
	out := Normalize(in)

	if strings.Contains(out, "\r") {
		t.Error("CRLF not normalized")
	}
	if strings.Contains(out, "\t") {
		t.Error("Tabs not normalized")
	}
	if strings.Contains(out, "____") {
		t.Error("Ruled-line noise not removed")
	}
	if strings.Contains(out, "\n\n\n") {
		t.Error("Blank-line runs not collapsed")
	}
	if !strings.Contains(out, "Name: Bob") {
		t.Error("Content lost")
	}
}

func TestMeanConfidence(t *testing.T) {
	if got := meanConfidence(nil); got != 0 {
		t.Errorf("Expected 0 for no pages, got %d", got)
	}
	if got := meanConfidence([]int{80, 90}); got != 85 {
		t.Errorf("Expected 85, got %d", got)
	}
}
