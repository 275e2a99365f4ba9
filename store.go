package docmerge

import "context"

// MIME types understood by the merge engine.
const (
	MimeTypeDocument = "application/vnd.google-apps.document"
	MimeTypePDF      = "application/pdf"
	MimeTypePNG      = "image/png"
)

// File is a file entry returned by a Store listing.
type File struct {
	ID   string
	Name string
}

// FileQuery filters a Store listing. Trashed files are always excluded.
type FileQuery struct {
	// NameContains matches files whose name contains the value.
	NameContains string
	// MimeType matches files of exactly this type.
	MimeType string
}

// UploadedImage describes an image file created in the store.
type UploadedImage struct {
	ID string
	// ThumbnailLink is a fetchable thumbnail URL, possibly empty.
	ThumbnailLink string
}

// Store is the document and drive service holding templates and scratch
// copies. Implementations wrap ErrNotFound for unknown ids.
type Store interface {
	// Authorize establishes credentials. It is called once per merge and may
	// cache the authorized client.
	Authorize(ctx context.Context) error

	// CopyDocument duplicates templateID into folderID under name and returns
	// the new document id.
	CopyDocument(ctx context.Context, templateID, name, folderID string) (string, error)

	// BatchUpdate applies requests to the document in order.
	BatchUpdate(ctx context.Context, documentID string, requests []Request) error

	// GetDocument returns the current document structure.
	GetDocument(ctx context.Context, documentID string) (*Document, error)

	// ExportPDF exports the document as PDF bytes.
	ExportPDF(ctx context.Context, documentID string) ([]byte, error)

	// UploadImage creates an image file in folderID.
	UploadImage(ctx context.Context, name, folderID, mimeType string, data []byte) (*UploadedImage, error)

	// GrantPublicRead makes the file readable by anyone with the link.
	GrantPublicRead(ctx context.Context, fileID string) error

	// DeleteFile permanently deletes a file.
	DeleteFile(ctx context.Context, fileID string) error

	// ListFiles returns every non-trashed file matching q, across shared drives.
	ListFiles(ctx context.Context, q FileQuery) ([]File, error)
}
