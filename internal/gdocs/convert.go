package gdocs

import (
	"google.golang.org/api/docs/v1"

	"github.com/devco/docmerge"
)

// fromAPIDocument converts the Docs API body into the docmerge tree.
func fromAPIDocument(d *docs.Document) *docmerge.Document {
	doc := &docmerge.Document{ID: d.DocumentId, Title: d.Title}
	if d.Body != nil {
		doc.Content = fromAPIContent(d.Body.Content, d.InlineObjects)
	}
	return doc
}

func fromAPIContent(content []*docs.StructuralElement, objects map[string]docs.InlineObject) []docmerge.StructuralElement {
	out := make([]docmerge.StructuralElement, 0, len(content))
	for _, el := range content {
		if el == nil {
			continue
		}
		se := docmerge.StructuralElement{StartIndex: el.StartIndex, EndIndex: el.EndIndex}
		switch {
		case el.Paragraph != nil:
			se.Paragraph = fromAPIParagraph(el.Paragraph, objects)
		case el.Table != nil:
			se.Table = fromAPITable(el.Table, objects)
		}
		out = append(out, se)
	}
	return out
}

func fromAPIParagraph(p *docs.Paragraph, objects map[string]docs.InlineObject) *docmerge.Paragraph {
	para := &docmerge.Paragraph{Elements: make([]docmerge.ParagraphElement, 0, len(p.Elements))}
	for _, pe := range p.Elements {
		if pe == nil {
			continue
		}
		el := docmerge.ParagraphElement{StartIndex: pe.StartIndex, EndIndex: pe.EndIndex}
		switch {
		case pe.TextRun != nil:
			el.TextRun = &docmerge.TextRun{Content: pe.TextRun.Content}
		case pe.InlineObjectElement != nil:
			el.InlineImage = inlineImage(objects[pe.InlineObjectElement.InlineObjectId])
		}
		para.Elements = append(para.Elements, el)
	}
	return para
}

func fromAPITable(t *docs.Table, objects map[string]docs.InlineObject) *docmerge.Table {
	table := &docmerge.Table{Rows: make([]docmerge.TableRow, 0, len(t.TableRows))}
	for _, row := range t.TableRows {
		if row == nil {
			continue
		}
		r := docmerge.TableRow{Cells: make([]docmerge.TableCell, 0, len(row.TableCells))}
		for _, cell := range row.TableCells {
			if cell == nil {
				continue
			}
			r.Cells = append(r.Cells, docmerge.TableCell{Content: fromAPIContent(cell.Content, objects)})
		}
		table.Rows = append(table.Rows, r)
	}
	return table
}

// inlineImage extracts the image URI and size of an inline object.
func inlineImage(obj docs.InlineObject) *docmerge.InlineImage {
	img := &docmerge.InlineImage{}
	props := obj.InlineObjectProperties
	if props == nil || props.EmbeddedObject == nil {
		return img
	}
	eo := props.EmbeddedObject
	if eo.ImageProperties != nil {
		img.URI = eo.ImageProperties.ContentUri
	}
	if eo.Size != nil {
		img.Width = fromAPIDimension(eo.Size.Width)
		img.Height = fromAPIDimension(eo.Size.Height)
	}
	return img
}

func fromAPIDimension(d *docs.Dimension) docmerge.Dimension {
	if d == nil {
		return docmerge.Dimension{}
	}
	return docmerge.Dimension{Magnitude: d.Magnitude, Unit: d.Unit}
}

// toAPIRequests converts edit requests to the Docs API form.
func toAPIRequests(requests []docmerge.Request) []*docs.Request {
	out := make([]*docs.Request, 0, len(requests))
	for _, r := range requests {
		switch {
		case r.ReplaceAllText != nil:
			out = append(out, &docs.Request{ReplaceAllText: &docs.ReplaceAllTextRequest{
				ContainsText: &docs.SubstringMatchCriteria{
					Text:            r.ReplaceAllText.Text,
					MatchCase:       r.ReplaceAllText.MatchCase,
					ForceSendFields: []string{"MatchCase"},
				},
				ReplaceText: r.ReplaceAllText.Replace,
				// An empty replacement would otherwise be omitted from the JSON.
				ForceSendFields: []string{"ReplaceText"},
			}})
		case r.InsertInlineImage != nil:
			ins := r.InsertInlineImage
			out = append(out, &docs.Request{InsertInlineImage: &docs.InsertInlineImageRequest{
				Location: &docs.Location{Index: ins.Index},
				Uri:      ins.URI,
				ObjectSize: &docs.Size{
					Height: toAPIDimension(ins.Height),
					Width:  toAPIDimension(ins.Width),
				},
			}})
		case r.DeleteContentRange != nil:
			out = append(out, &docs.Request{DeleteContentRange: &docs.DeleteContentRangeRequest{
				Range: &docs.Range{
					StartIndex: r.DeleteContentRange.StartIndex,
					EndIndex:   r.DeleteContentRange.EndIndex,
				},
			}})
		}
	}
	return out
}

func toAPIDimension(d docmerge.Dimension) *docs.Dimension {
	return &docs.Dimension{Magnitude: d.Magnitude, Unit: d.Unit}
}
