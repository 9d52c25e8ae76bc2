package render

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"
)

func readZipEntry(t *testing.T, data []byte, name string) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	for _, f := range zr.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				t.Fatalf("open %s: %v", name, err)
			}
			defer rc.Close()
			content, err := io.ReadAll(rc)
			if err != nil {
				t.Fatalf("read %s: %v", name, err)
			}
			return string(content)
		}
	}
	t.Fatalf("entry %s not found", name)
	return ""
}

func TestMarkdownDocx(t *testing.T) {
	md := []byte("# Jane Doe\n\nSenior **platform** engineer.\n\n## Experience\n\n- Led migration to Go\n- Cut p99 latency by 40%\n")
	data, err := MarkdownDocx(md)
	if err != nil {
		t.Fatalf("MarkdownDocx: %v", err)
	}

	for _, name := range []string{"[Content_Types].xml", "_rels/.rels", "word/document.xml", "word/styles.xml"} {
		readZipEntry(t, data, name)
	}

	doc := readZipEntry(t, data, "word/document.xml")
	for _, want := range []string{
		`<w:pStyle w:val="Heading1"/>`,
		`<w:pStyle w:val="Heading2"/>`,
		`<w:pStyle w:val="ListParagraph"/>`,
		"<w:b/>",
		"Jane Doe",
		"Led migration to Go",
	} {
		if !strings.Contains(doc, want) {
			t.Fatalf("document.xml missing %q", want)
		}
	}
	if strings.Contains(doc, "**") {
		t.Fatal("bold markers leaked into document.xml")
	}
}

func TestMarkdownDocxEscapesXML(t *testing.T) {
	data, err := MarkdownDocx([]byte("Worked on <search> & retrieval\n"))
	if err != nil {
		t.Fatalf("MarkdownDocx: %v", err)
	}
	doc := readZipEntry(t, data, "word/document.xml")
	if !strings.Contains(doc, "&lt;search&gt; &amp; retrieval") {
		t.Fatalf("expected escaped text, got %s", doc)
	}
}

func TestMarkdownDocxEmptyRejected(t *testing.T) {
	if _, err := MarkdownDocx([]byte("  \n\n")); err == nil {
		t.Fatal("expected error for empty document")
	}
}

func TestMarkdownHTML(t *testing.T) {
	out, err := MarkdownHTML([]byte("# Title\n\n- item <b>\n"), "resume")
	if err != nil {
		t.Fatalf("MarkdownHTML: %v", err)
	}
	s := string(out)
	if !strings.Contains(s, "<h1>Title</h1>") {
		t.Fatalf("missing heading: %s", s)
	}
	if !strings.Contains(s, "<li>item &lt;b&gt;</li>") {
		t.Fatalf("expected escaped list item: %s", s)
	}
	if !strings.Contains(s, "<title>resume</title>") {
		t.Fatalf("missing title: %s", s)
	}
}
