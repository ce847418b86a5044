package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	rpdf "rsc.io/pdf"
)

// minDigitalTextChars is the threshold below which a PDF's text layer is
// considered empty and the file treated as a scan. Forms produce at least a
// few hundred characters of labels alone; a scanner stamping a date onto the
// page does not.
const minDigitalTextChars = 100

// pdfTextConfidence is the base confidence for a digital text layer. The
// characters are exact, so only the content heuristic can pull it down.
const pdfTextConfidence = 90

// extractPDF tries the digital text layer first and falls back to
// rasterize-and-OCR when the layer is missing or empty.
func (e *Extractor) extractPDF(ctx context.Context, path string) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	text, pages, warnings, err := e.pdfToText(ctx, path)
	if err == nil && len(strings.TrimSpace(text)) >= minDigitalTextChars {
		text = Normalize(text)
		conf := pdfTextConfidence
		if h := heuristicConfidence(text); h > conf {
			conf = h
		}
		return Result{
			Text:       text,
			Confidence: conf,
			Pages:      crossCheckPages(path, pages),
			Method:     MethodPDFText,
			Warnings:   warnings,
		}, nil
	}
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("pdftotext failed: %v", err))
	}

	return e.pdfToOCR(ctx, path, warnings)
}

func (e *Extractor) pdfToText(ctx context.Context, path string) (text string, pages int, warnings []string, err error) {
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return "", 0, []string{string(errb)}, err
	}
	text = string(out)
	// pdftotext separates pages with a form feed
	pages = 1 + strings.Count(text, "\f")
	return text, pages, nil, nil
}

// pdfToOCR rasterizes each page and runs tesseract over it
func (e *Extractor) pdfToOCR(ctx context.Context, path string, warnings []string) (Result, error) {
	tmpDir, err := os.MkdirTemp("", "ara-pages-*")
	if err != nil {
		return Result{}, fmt.Errorf("create temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r <dpi> -png <in.pdf> <tmp/page>
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", e.cfg.DPI), "-png", path, prefix)
	if err != nil {
		warnings = append(warnings, string(errb))
		return Result{}, fmt.Errorf("rasterize pdf: %w", err)
	}

	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if e.cfg.MaxPages > 0 && len(matches) > e.cfg.MaxPages {
		matches = matches[:e.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return Result{}, fmt.Errorf("pdftoppm produced no page images")
	}

	var b strings.Builder
	var confidences []int
	for _, img := range matches {
		pageResult, err := e.extractImage(ctx, img)
		if err != nil {
			warnings = append(warnings, err.Error())
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\f\n")
		}
		b.WriteString(pageResult.Text)
		confidences = append(confidences, pageResult.Confidence)
		warnings = append(warnings, pageResult.Warnings...)
	}

	return Result{
		Text:       b.String(),
		Confidence: meanConfidence(confidences),
		Pages:      crossCheckPages(path, len(matches)),
		Method:     MethodPDFOCR,
		Warnings:   warnings,
	}, nil
}

// crossCheckPages prefers the page count from the PDF structure itself over
// what the tool output implied. Blank pages produce no form feed and no
// raster image, so the tool-derived count undercounts them.
func crossCheckPages(path string, toolCount int) int {
	if n := structuralPageCount(path); n > toolCount {
		return n
	}
	return toolCount
}

// structuralPageCount reads the page count from the PDF cross-reference
// table. The reader panics on some malformed files, so it is fenced off
// here; 0 means "could not tell".
func structuralPageCount(path string) (n int) {
	defer func() {
		if r := recover(); r != nil {
			n = 0
		}
	}()
	doc, err := rpdf.Open(path)
	if err != nil {
		return 0
	}
	return doc.NumPage()
}

func meanConfidence(values []int) int {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return sum / len(values)
}
