package main

// Render the instructions document for a local resume without touching the
// API or database. Useful for iterating on the template:
//   go run ./cmd/instructions -resume resume.pdf -kind job_tailoring -style modern -job jd.txt

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"enhancehub-backend/internal/enhancements"
	"enhancehub-backend/internal/extract"
)

func main() {
	resumePath := flag.String("resume", "", "Path to resume file (pdf, docx or txt)")
	jobPath := flag.String("job", "", "Path to job description file (required for job_tailoring)")
	kind := flag.String("kind", enhancements.KindJobTailoring, "Enhancement kind")
	style := flag.String("style", "modern", "Writing style")
	industry := flag.String("industry", "", "Target industry (required for industry_revamp)")
	coverLetter := flag.Bool("cover-letter", false, "Request a cover letter deliverable")
	outPath := flag.String("out", "", "Path to write the instructions document (default stdout)")
	flag.Parse()

	if strings.TrimSpace(*resumePath) == "" {
		exitErr("resume path is required")
	}

	resumeText, err := readResume(*resumePath)
	if err != nil {
		exitErr(err.Error())
	}

	jobText := ""
	if strings.TrimSpace(*jobPath) != "" {
		jobBytes, err := os.ReadFile(*jobPath)
		if err != nil {
			exitErr(fmt.Sprintf("read job description: %v", err))
		}
		jobText = string(jobBytes)
	}

	e := enhancements.Enhancement{
		ID:          "local-preview",
		Kind:        strings.TrimSpace(*kind),
		Style:       strings.TrimSpace(*style),
		Industry:    strings.TrimSpace(*industry),
		CoverLetter: *coverLetter,
	}

	doc, err := enhancements.BuildInstructions(e, resumeText, jobText)
	if err != nil {
		exitErr(fmt.Sprintf("build instructions: %v", err))
	}

	if *outPath != "" {
		if err := os.WriteFile(*outPath, doc, 0o644); err != nil {
			exitErr(fmt.Sprintf("write output: %v", err))
		}
		return
	}

	if _, err := os.Stdout.Write(doc); err != nil {
		exitErr(fmt.Sprintf("write stdout: %v", err))
	}
}

func readResume(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read resume: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md":
		return string(data), nil
	case ".pdf":
		return extract.Text(context.Background(), data, "application/pdf", filepath.Base(path))
	case ".docx":
		mime := "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
		return extract.Text(context.Background(), data, mime, filepath.Base(path))
	default:
		return "", fmt.Errorf("unsupported resume file type: %s", filepath.Ext(path))
	}
}

func exitErr(msg string) {
	_, _ = fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
