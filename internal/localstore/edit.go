package localstore

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/devco/docmerge"
	"github.com/devco/docmerge/internal/textindex"
)

// Sentinel errors for edit requests.
var (
	ErrUnsupportedRequest = errors.New("unsupported request")
	ErrIndexOutOfRange    = errors.New("index out of range")
)

// bodyStart is the index of the first body element, after the implicit
// section break at index 0.
const bodyStart = 1

// applyRequests applies requests in order to content and reindexes after
// each one so later requests see shifted indices.
func applyRequests(content []docmerge.StructuralElement, requests []docmerge.Request) error {
	for i, r := range requests {
		var err error
		switch {
		case r.ReplaceAllText != nil:
			replaceAllText(content, r.ReplaceAllText)
		case r.InsertInlineImage != nil:
			err = insertInlineImage(content, r.InsertInlineImage)
		case r.DeleteContentRange != nil:
			err = deleteContentRange(content, r.DeleteContentRange)
		default:
			err = ErrUnsupportedRequest
		}
		if err != nil {
			return fmt.Errorf("request %d: %w", i, err)
		}
		reindex(content, bodyStart)
	}
	return nil
}

// forEachParagraph calls fn for every paragraph, descending into tables.
func forEachParagraph(content []docmerge.StructuralElement, fn func(p *docmerge.Paragraph)) {
	for _, el := range content {
		switch {
		case el.Paragraph != nil:
			fn(el.Paragraph)
		case el.Table != nil:
			for _, row := range el.Table.Rows {
				for _, cell := range row.Cells {
					forEachParagraph(cell.Content, fn)
				}
			}
		}
	}
}

func replaceAllText(content []docmerge.StructuralElement, r *docmerge.ReplaceAllText) {
	if r.Text == "" {
		return
	}
	replace := func(s string) string { return strings.ReplaceAll(s, r.Text, r.Replace) }
	if !r.MatchCase {
		re := regexp.MustCompile("(?i)" + regexp.QuoteMeta(r.Text))
		replace = func(s string) string { return re.ReplaceAllLiteralString(s, r.Replace) }
	}
	forEachParagraph(content, func(p *docmerge.Paragraph) {
		for i := range p.Elements {
			if run := p.Elements[i].TextRun; run != nil {
				run.Content = replace(run.Content)
			}
		}
	})
}

// insertInlineImage splits the text run containing the index and places the
// image between both halves.
func insertInlineImage(content []docmerge.StructuralElement, r *docmerge.InsertInlineImage) error {
	inserted := false
	forEachParagraph(content, func(p *docmerge.Paragraph) {
		if inserted {
			return
		}
		for i, el := range p.Elements {
			if el.TextRun == nil || r.Index < el.StartIndex || r.Index >= el.EndIndex {
				continue
			}
			cut := textindex.ByteOffset(el.TextRun.Content, r.Index-el.StartIndex)
			before, after := el.TextRun.Content[:cut], el.TextRun.Content[cut:]

			replacement := make([]docmerge.ParagraphElement, 0, 3)
			if before != "" {
				replacement = append(replacement, docmerge.ParagraphElement{TextRun: &docmerge.TextRun{Content: before}})
			}
			replacement = append(replacement, docmerge.ParagraphElement{InlineImage: &docmerge.InlineImage{
				URI:    r.URI,
				Width:  r.Width,
				Height: r.Height,
			}})
			if after != "" {
				replacement = append(replacement, docmerge.ParagraphElement{TextRun: &docmerge.TextRun{Content: after}})
			}

			elements := make([]docmerge.ParagraphElement, 0, len(p.Elements)+2)
			elements = append(elements, p.Elements[:i]...)
			elements = append(elements, replacement...)
			elements = append(elements, p.Elements[i+1:]...)
			p.Elements = elements
			inserted = true
			return
		}
	})
	if !inserted {
		return fmt.Errorf("%w: insert at %d", ErrIndexOutOfRange, r.Index)
	}
	return nil
}

// deleteContentRange removes text and images overlapping [start, end).
func deleteContentRange(content []docmerge.StructuralElement, r *docmerge.DeleteContentRange) error {
	if r.EndIndex <= r.StartIndex || r.StartIndex < bodyStart {
		return fmt.Errorf("%w: delete [%d, %d)", ErrIndexOutOfRange, r.StartIndex, r.EndIndex)
	}
	forEachParagraph(content, func(p *docmerge.Paragraph) {
		kept := p.Elements[:0]
		for _, el := range p.Elements {
			start, end := max(r.StartIndex, el.StartIndex), min(r.EndIndex, el.EndIndex)
			if start >= end {
				kept = append(kept, el)
				continue
			}
			if el.TextRun == nil {
				continue // image fully inside the range
			}
			s := el.TextRun.Content
			from := textindex.ByteOffset(s, start-el.StartIndex)
			to := textindex.ByteOffset(s, end-el.StartIndex)
			el.TextRun.Content = s[:from] + s[to:]
			if el.TextRun.Content != "" {
				kept = append(kept, el)
			}
		}
		p.Elements = kept
	})
	return nil
}

// reindex assigns Docs-style indices starting at start and returns the index
// after the last element. Tables, rows and cells each take one index before
// their content.
func reindex(content []docmerge.StructuralElement, start int64) int64 {
	idx := start
	for i := range content {
		el := &content[i]
		el.StartIndex = idx
		switch {
		case el.Paragraph != nil:
			for j := range el.Paragraph.Elements {
				pe := &el.Paragraph.Elements[j]
				pe.StartIndex = idx
				switch {
				case pe.TextRun != nil:
					idx += textindex.Len(pe.TextRun.Content)
				case pe.InlineImage != nil:
					idx++
				}
				pe.EndIndex = idx
			}
		case el.Table != nil:
			idx++
			for r := range el.Table.Rows {
				idx++
				for c := range el.Table.Rows[r].Cells {
					idx++
					idx = reindex(el.Table.Rows[r].Cells[c].Content, idx)
				}
			}
		}
		el.EndIndex = idx
	}
	return idx
}

// cloneContent deep-copies a document tree.
func cloneContent(content []docmerge.StructuralElement) []docmerge.StructuralElement {
	if content == nil {
		return nil
	}
	out := make([]docmerge.StructuralElement, len(content))
	for i, el := range content {
		out[i] = docmerge.StructuralElement{StartIndex: el.StartIndex, EndIndex: el.EndIndex}
		if el.Paragraph != nil {
			p := &docmerge.Paragraph{Elements: make([]docmerge.ParagraphElement, len(el.Paragraph.Elements))}
			for j, pe := range el.Paragraph.Elements {
				c := docmerge.ParagraphElement{StartIndex: pe.StartIndex, EndIndex: pe.EndIndex}
				if pe.TextRun != nil {
					c.TextRun = &docmerge.TextRun{Content: pe.TextRun.Content}
				}
				if pe.InlineImage != nil {
					img := *pe.InlineImage
					c.InlineImage = &img
				}
				p.Elements[j] = c
			}
			out[i].Paragraph = p
		}
		if el.Table != nil {
			t := &docmerge.Table{Rows: make([]docmerge.TableRow, len(el.Table.Rows))}
			for r, row := range el.Table.Rows {
				t.Rows[r].Cells = make([]docmerge.TableCell, len(row.Cells))
				for c, cell := range row.Cells {
					t.Rows[r].Cells[c].Content = cloneContent(cell.Content)
				}
			}
			out[i].Table = t
		}
	}
	return out
}
