package render

import (
	"testing"
)

func TestParseBlocks(t *testing.T) {
	md := []byte("# Jane Doe\n\nSenior engineer with **10 years** of experience.\n\n## Skills\n\n- Go\n- Postgres\n* AWS\n\n---\n\nClosing paragraph\nspanning two lines.\n")
	blocks := ParseBlocks(md)

	if len(blocks) != 5 {
		t.Fatalf("expected 5 blocks, got %d: %+v", len(blocks), blocks)
	}
	if blocks[0].Kind != BlockHeading || blocks[0].Level != 1 || blocks[0].Text != "Jane Doe" {
		t.Fatalf("unexpected first block: %+v", blocks[0])
	}
	if blocks[1].Kind != BlockParagraph {
		t.Fatalf("expected paragraph, got %+v", blocks[1])
	}
	if blocks[2].Kind != BlockHeading || blocks[2].Level != 2 {
		t.Fatalf("unexpected skills heading: %+v", blocks[2])
	}
	if blocks[3].Kind != BlockList || len(blocks[3].Items) != 3 {
		t.Fatalf("expected 3 list items, got %+v", blocks[3])
	}
	if blocks[4].Kind != BlockParagraph || blocks[4].Text != "Closing paragraph spanning two lines." {
		t.Fatalf("expected joined paragraph, got %+v", blocks[4])
	}
}

func TestParseBlocksHashWithoutSpaceIsText(t *testing.T) {
	blocks := ParseBlocks([]byte("#nospace\n"))
	if len(blocks) != 1 || blocks[0].Kind != BlockParagraph {
		t.Fatalf("expected paragraph, got %+v", blocks)
	}
}

func TestParseSpans(t *testing.T) {
	spans := parseSpans("Built **scalable** systems in *Go* using `pgx` daily")
	want := []Span{
		{Text: "Built "},
		{Text: "scalable", Bold: true},
		{Text: " systems in "},
		{Text: "Go", Italic: true},
		{Text: " using "},
		{Text: "pgx", Code: true},
		{Text: " daily"},
	}
	if len(spans) != len(want) {
		t.Fatalf("expected %d spans, got %d: %+v", len(want), len(spans), spans)
	}
	for i := range want {
		if spans[i] != want[i] {
			t.Fatalf("span %d: expected %+v, got %+v", i, want[i], spans[i])
		}
	}
}

func TestParseSpansUnterminatedMarkerIsLiteral(t *testing.T) {
	spans := parseSpans("5 * 3 = 15")
	if len(spans) != 1 || spans[0].Text != "5 * 3 = 15" {
		t.Fatalf("expected literal text, got %+v", spans)
	}
}
