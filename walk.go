package docmerge

import (
	"regexp"
	"strings"

	"github.com/devco/docmerge/internal/textindex"
)

// TextRunVisitor is called for every text run in document order.
// Returning false stops the walk.
type TextRunVisitor func(el ParagraphElement) bool

// WalkTextRuns visits every text run in content depth-first, descending into
// table cells. It reports whether the walk ran to completion.
func WalkTextRuns(content []StructuralElement, visit TextRunVisitor) bool {
	for _, el := range content {
		switch {
		case el.Paragraph != nil:
			for _, pe := range el.Paragraph.Elements {
				if pe.TextRun == nil {
					continue
				}
				if !visit(pe) {
					return false
				}
			}
		case el.Table != nil:
			for _, row := range el.Table.Rows {
				for _, cell := range row.Cells {
					if !WalkTextRuns(cell.Content, visit) {
						return false
					}
				}
			}
		}
	}
	return true
}

// FindText returns the absolute index of the first occurrence of text within a
// single text run. Text split across runs is not found.
func FindText(doc *Document, text string) (int64, bool) {
	if doc == nil || text == "" {
		return 0, false
	}
	var (
		index int64
		found bool
	)
	WalkTextRuns(doc.Content, func(el ParagraphElement) bool {
		i := strings.Index(el.TextRun.Content, text)
		if i < 0 {
			return true
		}
		index = el.StartIndex + textindex.Units(el.TextRun.Content, i)
		found = true
		return false
	})
	return index, found
}

// placeholderPattern matches a {{name}} tag. Names cannot contain braces.
var placeholderPattern = regexp.MustCompile(`\{\{[^{}]+\}\}`)

// FindPlaceholders returns the distinct placeholder tags left in doc, in order
// of first appearance.
func FindPlaceholders(doc *Document) []string {
	if doc == nil {
		return nil
	}
	seen := make(map[string]bool)
	var tags []string
	WalkTextRuns(doc.Content, func(el ParagraphElement) bool {
		for _, tag := range placeholderPattern.FindAllString(el.TextRun.Content, -1) {
			if !seen[tag] {
				seen[tag] = true
				tags = append(tags, tag)
			}
		}
		return true
	})
	return tags
}
