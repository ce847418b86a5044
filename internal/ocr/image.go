package ocr

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// extractImage runs tesseract over one image and estimates transcript
// confidence from the engine's own word confidences blended with the
// content heuristic.
func (e *Extractor) extractImage(ctx context.Context, path string) (Result, error) {
	text, warnings, err := e.tesseract(ctx, path)
	if err != nil {
		return Result{}, err
	}
	text = Normalize(text)

	heuristic := heuristicConfidence(text)
	confidence := heuristic
	if e.cfg.TSVConfidence {
		engine, tsvWarnings, err := e.tesseractMeanWordConfidence(ctx, path)
		warnings = append(warnings, tsvWarnings...)
		if err != nil {
			warnings = append(warnings, err.Error())
		} else if engine > 0 {
			// The engine knows how legible the glyphs were; the heuristic
			// knows whether the output resembles a contact form at all
			confidence = (engine*7 + heuristic*3) / 10
		}
	}

	return Result{
		Text:       text,
		Confidence: confidence,
		Pages:      1,
		Method:     MethodImageOCR,
		Warnings:   warnings,
	}, nil
}

func (e *Extractor) tesseract(ctx context.Context, path string) (string, []string, error) {
	// tesseract <file> stdout -l <lang>
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, path, "stdout", "-l", e.cfg.Language)
	if err != nil {
		return "", []string{string(errb)}, fmt.Errorf("tesseract: %w", err)
	}
	return string(out), nil, nil
}

// tesseractMeanWordConfidence reruns tesseract in TSV mode and averages the
// per-word confidence column, 0-100.
func (e *Extractor) tesseractMeanWordConfidence(ctx context.Context, path string) (int, []string, error) {
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, path, "stdout", "-l", e.cfg.Language, "tsv")
	if err != nil {
		return 0, []string{string(errb)}, fmt.Errorf("tesseract tsv: %w", err)
	}

	var sum, n float64
	for i, line := range strings.Split(string(out), "\n") {
		if i == 0 || line == "" {
			continue // header
		}
		cols := strings.Split(line, "\t")
		if len(cols) < 12 {
			continue
		}
		// conf is the second-to-last column; -1 marks non-word rows
		confStr := cols[len(cols)-2]
		if confStr == "" || confStr == "-1" {
			continue
		}
		if v, err := strconv.ParseFloat(confStr, 64); err == nil {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, nil, nil
	}
	return int(sum / n), nil, nil
}
