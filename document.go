package docmerge

// Document is the structural view of a document returned by a Store.
// Indices follow the Docs API convention: UTF-16 code units, with the body
// starting at index 1.
type Document struct {
	ID      string
	Title   string
	Content []StructuralElement
}

// StructuralElement is a top-level or table-cell block. Exactly one of
// Paragraph or Table is set; other block kinds are left nil and skipped.
type StructuralElement struct {
	StartIndex int64
	EndIndex   int64
	Paragraph  *Paragraph
	Table      *Table
}

// Paragraph holds a run of inline elements.
type Paragraph struct {
	Elements []ParagraphElement
}

// ParagraphElement is a single inline element. TextRun or InlineImage is set.
type ParagraphElement struct {
	StartIndex  int64
	EndIndex    int64
	TextRun     *TextRun
	InlineImage *InlineImage
}

// TextRun is a span of text with uniform styling.
type TextRun struct {
	Content string
}

// InlineImage is an image embedded in a paragraph.
type InlineImage struct {
	URI    string
	Width  Dimension
	Height Dimension
}

// Table is a grid of cells, each holding its own block content.
type Table struct {
	Rows []TableRow
}

// TableRow is a single row of a Table.
type TableRow struct {
	Cells []TableCell
}

// TableCell holds nested structural elements.
type TableCell struct {
	Content []StructuralElement
}

// Dimension is a length with a unit. Only points are produced by this package.
type Dimension struct {
	Magnitude float64
	Unit      string
}

// UnitPoints is the point unit used for image sizes.
const UnitPoints = "PT"

// Request is a single edit in a batch update. Exactly one field is set.
type Request struct {
	ReplaceAllText     *ReplaceAllText
	InsertInlineImage  *InsertInlineImage
	DeleteContentRange *DeleteContentRange
}

// ReplaceAllText replaces every occurrence of Text with Replace.
type ReplaceAllText struct {
	Text      string
	Replace   string
	MatchCase bool
}

// InsertInlineImage inserts the image at URI before Index.
type InsertInlineImage struct {
	Index  int64
	URI    string
	Width  Dimension
	Height Dimension
}

// DeleteContentRange removes the half-open range [StartIndex, EndIndex).
type DeleteContentRange struct {
	StartIndex int64
	EndIndex   int64
}

// replaceAll builds a case-sensitive replace-all request.
func replaceAll(text, replace string) Request {
	return Request{ReplaceAllText: &ReplaceAllText{Text: text, Replace: replace, MatchCase: true}}
}
