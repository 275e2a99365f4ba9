// Package docmerge fills document templates with variables and exports the
// result as PDF.
//
// # Quick Start
//
// Create a Merger over a Store, then merge a template:
//
//	m := docmerge.NewMerger(store, docmerge.WithFolderID(folderID))
//
//	pdf, err := m.Merge(ctx, "template-id", docmerge.Variables{
//	    "projectName": "Acme",
//	    "signature":   "data:image/png;base64,iVBORw0KGgo...",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("estimate.pdf", pdf, 0644)
//
// # Placeholders
//
// Templates contain tags written as {{name}}: case sensitive, no whitespace
// inside the braces, matched as plain text within a single text run. Each
// variable replaces every occurrence of its tag. Tags left without a value are
// replaced with the empty string, so output never shows raw placeholders.
//
// The reserved variable "signature" holds an image data URI. Its tag is
// replaced by an inline image of a fixed 50pt x 150pt size. When the value is
// empty or not an image data URI, the tag is simply removed.
//
// # Merge Pipeline
//
// Every merge runs these steps in order, each a separate store round trip:
//
//  1. Authorize the store
//  2. Copy the template into the scratch folder
//  3. Replace variable tags (one batch)
//  4. Resolve the signature tag (marker, image upload, tree scan, insert)
//  5. Clear leftover tags (one batch)
//  6. Export PDF
//  7. Delete the scratch copy (always, best effort)
//
// # Cleanup
//
// A process killed mid-merge leaves its scratch copy behind. SweepOrphans
// deletes every document named with the scratch prefix and a timestamp and is
// meant to run periodically, outside the request path.
//
// # Stores
//
// The Store interface abstracts the document service. The Google Docs and
// Drive implementation lives in internal/gdocs; internal/localstore provides
// an offline store over Markdown templates.
package docmerge
