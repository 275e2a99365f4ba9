package docmerge

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// nestedDoc has a paragraph, a table with a nested table, and a trailing
// paragraph. Indices are illustrative, not contiguous.
func nestedDoc() *Document {
	run := func(start int64, text string) ParagraphElement {
		return ParagraphElement{StartIndex: start, EndIndex: start + int64(len(text)), TextRun: &TextRun{Content: text}}
	}
	para := func(els ...ParagraphElement) StructuralElement {
		return StructuralElement{Paragraph: &Paragraph{Elements: els}}
	}
	return &Document{Content: []StructuralElement{
		para(run(1, "Intro {{a}}\n")),
		{Table: &Table{Rows: []TableRow{{Cells: []TableCell{
			{Content: []StructuralElement{para(run(20, "cell {{b}}\n"))}},
			{Content: []StructuralElement{
				{Table: &Table{Rows: []TableRow{{Cells: []TableCell{
					{Content: []StructuralElement{para(
						ParagraphElement{StartIndex: 40, EndIndex: 41, InlineImage: &InlineImage{URI: "x"}},
						run(41, "deep MARK {{a}}\n"),
					)}},
				}}}}},
			}},
		}}}}},
		para(run(80, "Outro {{c}}\n")),
	}}
}

func TestWalkTextRuns_VisitsInDocumentOrder(t *testing.T) {
	t.Parallel()

	var got []string
	complete := WalkTextRuns(nestedDoc().Content, func(el ParagraphElement) bool {
		got = append(got, el.TextRun.Content)
		return true
	})
	want := []string{"Intro {{a}}\n", "cell {{b}}\n", "deep MARK {{a}}\n", "Outro {{c}}\n"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("visit order mismatch (-want +got):\n%s", diff)
	}
	if !complete {
		t.Error("walk should report completion")
	}
}

func TestWalkTextRuns_StopsEarly(t *testing.T) {
	t.Parallel()

	visits := 0
	complete := WalkTextRuns(nestedDoc().Content, func(el ParagraphElement) bool {
		visits++
		return visits < 2
	})
	if complete {
		t.Error("walk should report early stop")
	}
	if visits != 2 {
		t.Errorf("visits = %d, want 2", visits)
	}
}

func TestFindText(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		doc       *Document
		text      string
		wantIndex int64
		wantFound bool
	}{
		{"top-level paragraph", nestedDoc(), "{{a}}", 7, true},
		{"nested table cell", nestedDoc(), "MARK", 46, true},
		{"absent", nestedDoc(), "nope", 0, false},
		{"empty text", nestedDoc(), "", 0, false},
		{"nil document", nil, "x", 0, false},
		{
			"utf16 offset",
			&Document{Content: []StructuralElement{{Paragraph: &Paragraph{Elements: []ParagraphElement{
				{StartIndex: 1, EndIndex: 9, TextRun: &TextRun{Content: "😀é MARK"}},
			}}}}},
			"MARK", 5, true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			idx, found := FindText(tt.doc, tt.text)
			if found != tt.wantFound || idx != tt.wantIndex {
				t.Errorf("FindText(%q) = (%d, %v), want (%d, %v)", tt.text, idx, found, tt.wantIndex, tt.wantFound)
			}
		})
	}
}

func TestFindPlaceholders(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		doc  *Document
		want []string
	}{
		{"nested and deduplicated", nestedDoc(), []string{"{{a}}", "{{b}}", "{{c}}"}},
		{"no placeholders", paragraphDoc("plain\n"), nil},
		{"empty braces ignored", paragraphDoc("{{}} {x} {{ok}}\n"), []string{"{{ok}}"}},
		{"adjacent tags", paragraphDoc("{{a}}{{b}}\n"), []string{"{{a}}", "{{b}}"}},
		{"nil document", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if diff := cmp.Diff(tt.want, FindPlaceholders(tt.doc)); diff != "" {
				t.Errorf("FindPlaceholders mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
