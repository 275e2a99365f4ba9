package localstore

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/devco/docmerge"
)

// markdownParser parses templates with GFM tables.
var markdownParser = goldmark.New(goldmark.WithExtensions(extension.Table)).Parser()

// ParseMarkdown converts a Markdown template into a document tree and
// returns the first heading as title. Block structure is flattened to
// paragraphs and tables; inline formatting is dropped but its text is kept,
// so {{placeholders}} survive as plain text.
func ParseMarkdown(src []byte) (content []docmerge.StructuralElement, title string) {
	doc := markdownParser.Parse(text.NewReader(src))
	b := &treeBuilder{src: src}
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		b.block(n, "")
	}
	reindex(b.content, bodyStart)
	return b.content, b.title
}

type treeBuilder struct {
	src     []byte
	content []docmerge.StructuralElement
	title   string
}

func (b *treeBuilder) block(n ast.Node, prefix string) {
	switch n := n.(type) {
	case *ast.Heading:
		s := b.inline(n)
		if b.title == "" {
			b.title = s
		}
		b.paragraph(s)
	case *ast.Paragraph, *ast.TextBlock:
		b.paragraph(prefix + b.inline(n))
	case *ast.List:
		for item := n.FirstChild(); item != nil; item = item.NextSibling() {
			for c := item.FirstChild(); c != nil; c = c.NextSibling() {
				b.block(c, prefix+"• ")
			}
		}
	case *ast.Blockquote:
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			b.block(c, prefix)
		}
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			b.paragraph(strings.TrimRight(string(seg.Value(b.src)), "\n"))
		}
	case *east.Table:
		b.table(n)
	}
}

func (b *treeBuilder) table(n *east.Table) {
	table := &docmerge.Table{}
	for row := n.FirstChild(); row != nil; row = row.NextSibling() {
		var r docmerge.TableRow
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			r.Cells = append(r.Cells, docmerge.TableCell{Content: []docmerge.StructuralElement{
				paragraphElement(b.inline(cell)),
			}})
		}
		table.Rows = append(table.Rows, r)
	}
	b.content = append(b.content, docmerge.StructuralElement{Table: table})
}

func (b *treeBuilder) paragraph(s string) {
	b.content = append(b.content, paragraphElement(s))
}

// inline concatenates the text of every inline descendant of n.
func (b *treeBuilder) inline(n ast.Node) string {
	var buf bytes.Buffer
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch c := c.(type) {
		case *ast.Text:
			buf.Write(c.Segment.Value(b.src))
			if c.SoftLineBreak() || c.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(c.Value)
		case *ast.AutoLink:
			buf.Write(c.Label(b.src))
			return ast.WalkSkipChildren, nil
		case *ast.Image:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(buf.String())
}

// paragraphElement builds a single-run paragraph terminated by a newline.
func paragraphElement(s string) docmerge.StructuralElement {
	return docmerge.StructuralElement{Paragraph: &docmerge.Paragraph{Elements: []docmerge.ParagraphElement{
		{TextRun: &docmerge.TextRun{Content: s + "\n"}},
	}}}
}
