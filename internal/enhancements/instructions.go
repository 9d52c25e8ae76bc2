package enhancements

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed templates/instructions.md
var instructionsTemplate string

var instructionsTmpl = template.Must(template.New("instructions").Parse(instructionsTemplate))

type instructionsData struct {
	TaskLabel        string
	EnhancementID    string
	Style            string
	Industry         string
	IndustryDisplay  string
	IndustryKeywords string
	CoverLetter      bool
	ResumeText       string
	JobText          string
}

// BuildInstructions renders the INSTRUCTIONS.md content for an enhancement.
// The file is the entire interface to the generator, so it carries everything:
// task kind, style, expected output names and the full source texts.
func BuildInstructions(e Enhancement, resumeText, jobText string) ([]byte, error) {
	data := instructionsData{
		EnhancementID: e.ID,
		Style:         e.Style,
		CoverLetter:   e.CoverLetter,
		ResumeText:    strings.TrimSpace(resumeText),
		JobText:       strings.TrimSpace(jobText),
	}
	switch e.Kind {
	case KindJobTailoring:
		data.TaskLabel = "Tailor the resume to the target job below"
	case KindIndustryRevamp:
		profile, ok := IndustryByName(e.Industry)
		if !ok {
			return nil, fmt.Errorf("%w: unknown industry %q", ErrInvalidInput, e.Industry)
		}
		data.TaskLabel = "Revamp the resume for a change into " + profile.Display
		data.Industry = profile.Name
		data.IndustryDisplay = profile.Display
		data.IndustryKeywords = strings.Join(profile.Keywords, ", ")
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidInput, e.Kind)
	}

	var buf bytes.Buffer
	if err := instructionsTmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
