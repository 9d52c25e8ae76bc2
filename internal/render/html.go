package render

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"strings"
)

const pageHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
@page { size: Letter; margin: 18mm; }
body { font-family: "Helvetica Neue", Helvetica, Arial, sans-serif; font-size: 11pt; line-height: 1.45; color: #1a1a1a; max-width: 46em; margin: 0 auto; }
h1 { font-size: 19pt; margin: 0 0 4pt; border-bottom: 1.5pt solid #1a1a1a; padding-bottom: 3pt; }
h2 { font-size: 13pt; margin: 14pt 0 4pt; text-transform: uppercase; letter-spacing: 0.06em; border-bottom: 0.75pt solid #999; padding-bottom: 2pt; }
h3 { font-size: 11.5pt; margin: 10pt 0 2pt; }
p { margin: 4pt 0; }
ul { margin: 3pt 0 3pt 1.2em; padding: 0; }
li { margin: 1.5pt 0; }
code { font-family: Consolas, Menlo, monospace; font-size: 10pt; }
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`

var pageTmpl = template.Must(template.New("page").Parse(pageHTML))

type pageData struct {
	Title string
	Body  template.HTML
}

// MarkdownHTML renders the markdown into a standalone styled page, used as the
// print source for PDF output.
func MarkdownHTML(md []byte, title string) ([]byte, error) {
	blocks := ParseBlocks(md)
	var body strings.Builder
	for _, b := range blocks {
		switch b.Kind {
		case BlockHeading:
			level := b.Level
			if level > 3 {
				level = 3
			}
			fmt.Fprintf(&body, "<h%d>%s</h%d>\n", level, spanHTML(b.Text), level)
		case BlockList:
			body.WriteString("<ul>\n")
			for _, item := range b.Items {
				fmt.Fprintf(&body, "<li>%s</li>\n", spanHTML(item))
			}
			body.WriteString("</ul>\n")
		default:
			fmt.Fprintf(&body, "<p>%s</p>\n", spanHTML(b.Text))
		}
	}

	var out bytes.Buffer
	err := pageTmpl.Execute(&out, pageData{Title: title, Body: template.HTML(body.String())})
	if err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func spanHTML(text string) string {
	var sb strings.Builder
	for _, span := range parseSpans(text) {
		escaped := html.EscapeString(span.Text)
		switch {
		case span.Code:
			sb.WriteString("<code>" + escaped + "</code>")
		case span.Bold:
			sb.WriteString("<strong>" + escaped + "</strong>")
		case span.Italic:
			sb.WriteString("<em>" + escaped + "</em>")
		default:
			sb.WriteString(escaped)
		}
	}
	return sb.String()
}
