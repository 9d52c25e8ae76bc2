package render

import (
	"strings"
)

// BlockKind identifies a top-level markdown block.
type BlockKind int

const (
	BlockHeading BlockKind = iota
	BlockParagraph
	BlockList
)

// Block is one parsed markdown block. Generators emit a small dialect:
// ATX headings, bullet lists, paragraphs and bold/italic/code spans. Anything
// else is treated as literal text.
type Block struct {
	Kind  BlockKind
	Level int
	Text  string
	Items []string
}

// Span is an inline run with formatting flags.
type Span struct {
	Text   string
	Bold   bool
	Italic bool
	Code   bool
}

// ParseBlocks splits markdown into blocks.
func ParseBlocks(md []byte) []Block {
	lines := strings.Split(strings.ReplaceAll(string(md), "\r\n", "\n"), "\n")
	var blocks []Block
	var para []string
	var list []string

	flushPara := func() {
		if len(para) > 0 {
			blocks = append(blocks, Block{Kind: BlockParagraph, Text: strings.Join(para, " ")})
			para = nil
		}
	}
	flushList := func() {
		if len(list) > 0 {
			blocks = append(blocks, Block{Kind: BlockList, Items: list})
			list = nil
		}
	}

	for _, raw := range lines {
		trimmed := strings.TrimSpace(raw)
		switch {
		case trimmed == "":
			flushPara()
			flushList()
		case strings.HasPrefix(trimmed, "#"):
			level := 0
			for level < len(trimmed) && trimmed[level] == '#' {
				level++
			}
			if level <= 6 && level < len(trimmed) && trimmed[level] == ' ' {
				flushPara()
				flushList()
				blocks = append(blocks, Block{Kind: BlockHeading, Level: level, Text: strings.TrimSpace(trimmed[level:])})
			} else {
				flushList()
				para = append(para, trimmed)
			}
		case strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* "):
			flushPara()
			list = append(list, strings.TrimSpace(trimmed[2:]))
		case strings.Trim(trimmed, "-") == "" && len(trimmed) >= 3:
			// Horizontal rules carry no content.
			flushPara()
			flushList()
		default:
			flushList()
			para = append(para, trimmed)
		}
	}
	flushPara()
	flushList()
	return blocks
}

// parseSpans splits **bold**, *italic* and `code` runs out of inline text.
// Unterminated markers fall through as literal characters.
func parseSpans(text string) []Span {
	var spans []Span
	var plain strings.Builder
	flush := func() {
		if plain.Len() > 0 {
			spans = append(spans, Span{Text: plain.String()})
			plain.Reset()
		}
	}

	i := 0
	for i < len(text) {
		switch {
		case strings.HasPrefix(text[i:], "**"):
			end := strings.Index(text[i+2:], "**")
			if end > 0 {
				flush()
				spans = append(spans, Span{Text: text[i+2 : i+2+end], Bold: true})
				i += end + 4
				continue
			}
			plain.WriteByte(text[i])
			i++
		case text[i] == '*':
			end := strings.IndexByte(text[i+1:], '*')
			if end > 0 {
				flush()
				spans = append(spans, Span{Text: text[i+1 : i+1+end], Italic: true})
				i += end + 2
				continue
			}
			plain.WriteByte(text[i])
			i++
		case text[i] == '`':
			end := strings.IndexByte(text[i+1:], '`')
			if end > 0 {
				flush()
				spans = append(spans, Span{Text: text[i+1 : i+1+end], Code: true})
				i += end + 2
				continue
			}
			plain.WriteByte(text[i])
			i++
		default:
			plain.WriteByte(text[i])
			i++
		}
	}
	flush()
	return spans
}
