package localstore

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/devco/docmerge"
)

func paragraphs(texts ...string) []docmerge.StructuralElement {
	content := make([]docmerge.StructuralElement, len(texts))
	for i, s := range texts {
		content[i] = paragraphElement(s)
	}
	reindex(content, bodyStart)
	return content
}

// runTexts flattens every text run for comparison.
func runTexts(content []docmerge.StructuralElement) []string {
	var out []string
	docmerge.WalkTextRuns(content, func(el docmerge.ParagraphElement) bool {
		out = append(out, el.TextRun.Content)
		return true
	})
	return out
}

func TestReindex(t *testing.T) {
	t.Parallel()

	content := paragraphs("ab", "héllo")
	content = append(content, docmerge.StructuralElement{Table: &docmerge.Table{Rows: []docmerge.TableRow{
		{Cells: []docmerge.TableCell{{Content: []docmerge.StructuralElement{paragraphElement("x")}}}},
	}}})
	content = append(content, paragraphElement("😀"))

	end := reindex(content, bodyStart)

	// "ab\n" = 3, "héllo\n" = 6, table+row+cell = 3 then "x\n" = 2, emoji is a
	// surrogate pair plus newline = 3.
	if end != 1+3+6+3+2+3 {
		t.Errorf("reindex() end = %d, want %d", end, 1+3+6+3+2+3)
	}
	if content[1].StartIndex != 4 || content[1].EndIndex != 10 {
		t.Errorf("second paragraph = [%d,%d), want [4,10)", content[1].StartIndex, content[1].EndIndex)
	}
	cell := content[2].Table.Rows[0].Cells[0].Content[0]
	if cell.StartIndex != 13 {
		t.Errorf("cell paragraph start = %d, want 13", cell.StartIndex)
	}
	if content[3].StartIndex != 15 {
		t.Errorf("last paragraph start = %d, want 15", content[3].StartIndex)
	}
}

func TestApplyRequests_ReplaceAllText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		request docmerge.ReplaceAllText
		want    []string
	}{
		{
			name:    "match case",
			request: docmerge.ReplaceAllText{Text: "{{name}}", Replace: "Ada", MatchCase: true},
			want:    []string{"Hi Ada and Ada\n", "{{NAME}}\n"},
		},
		{
			name:    "ignore case",
			request: docmerge.ReplaceAllText{Text: "{{name}}", Replace: "Ada"},
			want:    []string{"Hi Ada and Ada\n", "Ada\n"},
		},
		{
			name:    "empty search text is a no-op",
			request: docmerge.ReplaceAllText{Text: "", Replace: "x", MatchCase: true},
			want:    []string{"Hi {{name}} and {{name}}\n", "{{NAME}}\n"},
		},
		{
			name:    "replacement with regexp metacharacters is literal",
			request: docmerge.ReplaceAllText{Text: "{{name}}", Replace: "$1.*"},
			want:    []string{"Hi $1.* and $1.*\n", "$1.*\n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			content := paragraphs("Hi {{name}} and {{name}}", "{{NAME}}")
			r := tt.request
			if err := applyRequests(content, []docmerge.Request{{ReplaceAllText: &r}}); err != nil {
				t.Fatalf("applyRequests() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, runTexts(content)); diff != "" {
				t.Errorf("runs mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestApplyRequests_ReplaceReindexes(t *testing.T) {
	t.Parallel()

	content := paragraphs("{{a}}", "tail")
	err := applyRequests(content, []docmerge.Request{
		{ReplaceAllText: &docmerge.ReplaceAllText{Text: "{{a}}", Replace: "", MatchCase: true}},
	})
	if err != nil {
		t.Fatalf("applyRequests() error = %v", err)
	}
	if content[1].StartIndex != 2 {
		t.Errorf("second paragraph start = %d, want 2", content[1].StartIndex)
	}
}

func TestApplyRequests_InsertThenDelete(t *testing.T) {
	t.Parallel()

	content := paragraphs("Sign: MARK here")
	// "Sign: " is 6 units, so MARK starts at 1+6.
	requests := []docmerge.Request{
		{InsertInlineImage: &docmerge.InsertInlineImage{Index: 7, URI: "https://img"}},
		{DeleteContentRange: &docmerge.DeleteContentRange{StartIndex: 8, EndIndex: 12}},
	}
	if err := applyRequests(content, requests); err != nil {
		t.Fatalf("applyRequests() error = %v", err)
	}

	elements := content[0].Paragraph.Elements
	if len(elements) != 3 {
		t.Fatalf("elements = %d, want 3", len(elements))
	}
	if got := elements[0].TextRun.Content; got != "Sign: " {
		t.Errorf("before = %q, want %q", got, "Sign: ")
	}
	if elements[1].InlineImage == nil || elements[1].InlineImage.URI != "https://img" {
		t.Errorf("middle element = %+v, want image", elements[1])
	}
	if got := elements[2].TextRun.Content; got != " here\n" {
		t.Errorf("after = %q, want %q", got, " here\n")
	}
	if elements[1].StartIndex != 7 || elements[2].StartIndex != 8 {
		t.Errorf("indices = %d, %d, want 7, 8", elements[1].StartIndex, elements[2].StartIndex)
	}
}

func TestApplyRequests_InsertAtRunStart(t *testing.T) {
	t.Parallel()

	content := paragraphs("MARK")
	err := applyRequests(content, []docmerge.Request{
		{InsertInlineImage: &docmerge.InsertInlineImage{Index: 1, URI: "u"}},
	})
	if err != nil {
		t.Fatalf("applyRequests() error = %v", err)
	}
	elements := content[0].Paragraph.Elements
	if len(elements) != 2 || elements[0].InlineImage == nil {
		t.Fatalf("elements = %+v, want image then text", elements)
	}
}

func TestApplyRequests_DeleteAcrossImage(t *testing.T) {
	t.Parallel()

	content := paragraphs("abcd")
	err := applyRequests(content, []docmerge.Request{
		{InsertInlineImage: &docmerge.InsertInlineImage{Index: 3, URI: "u"}},
		{DeleteContentRange: &docmerge.DeleteContentRange{StartIndex: 2, EndIndex: 5}},
	})
	if err != nil {
		t.Fatalf("applyRequests() error = %v", err)
	}
	if diff := cmp.Diff([]string{"a", "d\n"}, runTexts(content)); diff != "" {
		t.Errorf("runs mismatch (-want +got):\n%s", diff)
	}
	for _, el := range content[0].Paragraph.Elements {
		if el.InlineImage != nil {
			t.Error("image inside deleted range was kept")
		}
	}
}

func TestApplyRequests_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		request docmerge.Request
		wantErr error
	}{
		{
			name:    "empty request",
			request: docmerge.Request{},
			wantErr: ErrUnsupportedRequest,
		},
		{
			name:    "insert past end",
			request: docmerge.Request{InsertInlineImage: &docmerge.InsertInlineImage{Index: 99}},
			wantErr: ErrIndexOutOfRange,
		},
		{
			name:    "empty delete range",
			request: docmerge.Request{DeleteContentRange: &docmerge.DeleteContentRange{StartIndex: 3, EndIndex: 3}},
			wantErr: ErrIndexOutOfRange,
		},
		{
			name:    "delete section break",
			request: docmerge.Request{DeleteContentRange: &docmerge.DeleteContentRange{StartIndex: 0, EndIndex: 2}},
			wantErr: ErrIndexOutOfRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := applyRequests(paragraphs("text"), []docmerge.Request{tt.request})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("applyRequests() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCloneContent(t *testing.T) {
	t.Parallel()

	content := paragraphs("a")
	content = append(content, docmerge.StructuralElement{Table: &docmerge.Table{Rows: []docmerge.TableRow{
		{Cells: []docmerge.TableCell{{Content: paragraphs("cell")}}},
	}}})

	clone := cloneContent(content)
	if diff := cmp.Diff(content, clone); diff != "" {
		t.Fatalf("clone mismatch (-want +got):\n%s", diff)
	}

	clone[0].Paragraph.Elements[0].TextRun.Content = "changed"
	clone[1].Table.Rows[0].Cells[0].Content[0].Paragraph.Elements[0].TextRun.Content = "changed"
	if content[0].Paragraph.Elements[0].TextRun.Content != "a\n" {
		t.Error("clone shares paragraph runs with source")
	}
	if content[1].Table.Rows[0].Cells[0].Content[0].Paragraph.Elements[0].TextRun.Content != "cell\n" {
		t.Error("clone shares table cells with source")
	}
	if cloneContent(nil) != nil {
		t.Error("cloneContent(nil) != nil")
	}
}
