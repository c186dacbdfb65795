package segment

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// StripMarkdown renders markdown as plain prose. Code blocks, HTML and link
// targets are dropped; headings and list items become sentences of their
// own, and block elements are separated by blank lines so Sentences treats
// them as paragraphs.
func StripMarkdown(markdown string) string {
	reader := text.NewReader([]byte(markdown))
	doc := goldmark.New().Parser().Parse(reader)

	var buf strings.Builder
	walk(doc, reader.Source(), &buf)
	return strings.TrimSpace(buf.String())
}

func walk(node ast.Node, source []byte, buf *strings.Builder) {
	switch n := node.(type) {
	case *ast.CodeBlock, *ast.FencedCodeBlock, *ast.HTMLBlock, *ast.RawHTML:
		return

	case *ast.Text:
		buf.Write(n.Segment.Value(source))
		if n.SoftLineBreak() || n.HardLineBreak() {
			buf.WriteByte(' ')
		}
		return

	case *ast.CodeSpan:
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			if t, ok := c.(*ast.Text); ok {
				buf.Write(t.Segment.Value(source))
			}
		}
		return

	case *ast.Image:
		// Alt text only.
		walkChildren(n, source, buf)
		return

	case *ast.Heading, *ast.ListItem:
		walkChildren(n, source, buf)
		endBlock(buf)
		return

	case *ast.Paragraph:
		walkChildren(n, source, buf)
		if _, inList := n.Parent().(*ast.ListItem); !inList {
			endBlock(buf)
		}
		return
	}

	walkChildren(node, source, buf)
}

func walkChildren(node ast.Node, source []byte, buf *strings.Builder) {
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		walk(c, source, buf)
	}
}

// endBlock terminates the current block with a blank line.
func endBlock(buf *strings.Builder) {
	content := strings.TrimRight(buf.String(), " ")
	buf.Reset()
	buf.WriteString(content)
	if content != "" && !strings.HasSuffix(content, "\n\n") {
		buf.WriteString("\n\n")
	}
}
