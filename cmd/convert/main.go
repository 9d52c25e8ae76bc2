package main

// Convert a markdown document to DOCX or PDF on disk, exercising the same
// renderer the download endpoints use:
//   go run ./cmd/convert -in enhanced.md -format docx -out enhanced.docx

import (
	"archive/zip"
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"enhancehub-backend/internal/render"
	"enhancehub-backend/internal/shared/config"
)

func main() {
	inPath := flag.String("in", "", "Path to markdown input")
	format := flag.String("format", "docx", "Output format: docx or pdf")
	outPath := flag.String("out", "", "Output path (default input name with new extension)")
	title := flag.String("title", "Enhanced Resume", "Document title for PDF rendering")
	flag.Parse()

	if strings.TrimSpace(*inPath) == "" {
		exitErr("input path is required")
	}
	md, err := os.ReadFile(*inPath)
	if err != nil {
		exitErr(fmt.Sprintf("read input: %v", err))
	}

	target := strings.TrimSpace(*outPath)
	if target == "" {
		base := strings.TrimSuffix(*inPath, filepath.Ext(*inPath))
		target = base + "." + *format
	}

	var out []byte
	switch strings.ToLower(strings.TrimSpace(*format)) {
	case "docx":
		out, err = render.MarkdownDocx(md)
		if err != nil {
			exitErr(fmt.Sprintf("render docx: %v", err))
		}
	case "pdf":
		cfg := config.Load()
		printer := render.NewPDFPrinter(cfg.ChromePath)
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		out, err = printer.Render(ctx, md, *title)
		if err != nil {
			exitErr(fmt.Sprintf("render pdf: %v", err))
		}
	default:
		exitErr(fmt.Sprintf("unsupported format: %s", *format))
	}

	if dir := filepath.Dir(target); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			exitErr(fmt.Sprintf("create output dir: %v", err))
		}
	}
	if err := os.WriteFile(target, out, 0o644); err != nil {
		exitErr(fmt.Sprintf("write output: %v", err))
	}

	if strings.EqualFold(*format, "docx") {
		if err := validateDocx(out); err != nil {
			exitErr(fmt.Sprintf("docx validation failed: %v", err))
		}
	}

	fmt.Printf("OK: wrote %s\n", target)
}

// validateDocx confirms the archive opens and carries the main document part.
func validateDocx(docxBytes []byte) error {
	reader, err := zip.NewReader(bytes.NewReader(docxBytes), int64(len(docxBytes)))
	if err != nil {
		return err
	}
	for _, file := range reader.File {
		if strings.ReplaceAll(file.Name, "\\", "/") == "word/document.xml" {
			return nil
		}
	}
	return fmt.Errorf("document.xml not found in docx")
}

func exitErr(msg string) {
	_, _ = fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
