// Package localstore is an in-memory docmerge.Store over Markdown templates,
// for offline development and end-to-end tests. Exported documents are
// rendered to HTML and printed by a Renderer.
package localstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/devco/docmerge"
)

// Compile-time interface implementation check.
var _ docmerge.Store = (*Store)(nil)

// templateExtensions lists file extensions loaded by LoadDir.
var templateExtensions = map[string]bool{".md": true, ".markdown": true}

// file is a stored document or image.
type file struct {
	id       string
	name     string
	mimeType string
	parent   string
	content  []docmerge.StructuralElement
	data     []byte
	public   bool
}

// Store keeps every file in memory. Safe for concurrent use.
type Store struct {
	renderer Renderer
	newID    func() string

	mu    sync.Mutex
	files map[string]*file
}

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator overrides the uuid-based file id generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		s.newID = fn
	}
}

// New creates an empty Store exporting through renderer.
func New(renderer Renderer, opts ...Option) *Store {
	s := &Store{
		renderer: renderer,
		newID:    uuid.NewString,
		files:    make(map[string]*file),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddTemplate registers a Markdown template under id. The name defaults to
// the first heading, then to id.
func (s *Store) AddTemplate(id string, markdown []byte) {
	content, title := ParseMarkdown(markdown)
	if title == "" {
		title = id
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[id] = &file{id: id, name: title, mimeType: docmerge.MimeTypeDocument, content: content}
}

// LoadDir registers every Markdown file in dir, using the file name without
// extension as template id. Subdirectories are ignored.
func (s *Store) LoadDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("reading template directory: %w", err)
	}
	n := 0
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || !templateExtensions[ext] {
			continue
		}
		src, err := os.ReadFile(filepath.Join(dir, e.Name())) // #nosec G304 -- configured template dir
		if err != nil {
			return n, fmt.Errorf("reading template %s: %w", e.Name(), err)
		}
		s.AddTemplate(strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())), src)
		n++
	}
	return n, nil
}

// lookup returns the file or a wrapped ErrNotFound. Caller holds s.mu.
func (s *Store) lookup(id string) (*file, error) {
	f, ok := s.files[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", docmerge.ErrNotFound, id)
	}
	return f, nil
}

// document returns the document file or a wrapped ErrNotFound. Caller holds s.mu.
func (s *Store) document(id string) (*file, error) {
	f, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	if f.mimeType != docmerge.MimeTypeDocument {
		return nil, fmt.Errorf("%w: %s is not a document", docmerge.ErrNotFound, id)
	}
	return f, nil
}

// Authorize implements docmerge.Store. Local stores need no credentials.
func (s *Store) Authorize(ctx context.Context) error {
	return ctx.Err()
}

// CopyDocument implements docmerge.Store.
func (s *Store) CopyDocument(ctx context.Context, templateID, name, folderID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tmpl, err := s.document(templateID)
	if err != nil {
		return "", err
	}
	id := s.newID()
	s.files[id] = &file{
		id:       id,
		name:     name,
		mimeType: docmerge.MimeTypeDocument,
		parent:   folderID,
		content:  cloneContent(tmpl.content),
	}
	return id, nil
}

// BatchUpdate implements docmerge.Store. The batch is atomic: on error the
// document is left unchanged.
func (s *Store) BatchUpdate(ctx context.Context, documentID string, requests []docmerge.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.document(documentID)
	if err != nil {
		return err
	}
	content := cloneContent(f.content)
	if err := applyRequests(content, requests); err != nil {
		return err
	}
	f.content = content
	return nil
}

// GetDocument implements docmerge.Store.
func (s *Store) GetDocument(ctx context.Context, documentID string) (*docmerge.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.document(documentID)
	if err != nil {
		return nil, err
	}
	return &docmerge.Document{ID: f.id, Title: f.name, Content: cloneContent(f.content)}, nil
}

// ExportPDF implements docmerge.Store.
func (s *Store) ExportPDF(ctx context.Context, documentID string) ([]byte, error) {
	doc, err := s.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	html, err := RenderHTML(doc)
	if err != nil {
		return nil, err
	}
	return s.renderer.RenderPDF(ctx, html)
}

// UploadImage implements docmerge.Store. The thumbnail link is a data URI so
// rendered pages need no network access.
func (s *Store) UploadImage(ctx context.Context, name, folderID, mimeType string, data []byte) (*docmerge.UploadedImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	s.files[id] = &file{
		id:       id,
		name:     name,
		mimeType: mimeType,
		parent:   folderID,
		data:     append([]byte(nil), data...),
	}
	return &docmerge.UploadedImage{ID: id, ThumbnailLink: docmerge.EncodeDataURI(mimeType, data)}, nil
}

// GrantPublicRead implements docmerge.Store.
func (s *Store) GrantPublicRead(ctx context.Context, fileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.lookup(fileID)
	if err != nil {
		return err
	}
	f.public = true
	return nil
}

// DeleteFile implements docmerge.Store.
func (s *Store) DeleteFile(ctx context.Context, fileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.lookup(fileID); err != nil {
		return err
	}
	delete(s.files, fileID)
	return nil
}

// ListFiles implements docmerge.Store. Results are sorted by name, then id.
func (s *Store) ListFiles(ctx context.Context, q docmerge.FileQuery) ([]docmerge.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []docmerge.File
	for _, f := range s.files {
		if q.NameContains != "" && !strings.Contains(f.name, q.NameContains) {
			continue
		}
		if q.MimeType != "" && f.mimeType != q.MimeType {
			continue
		}
		out = append(out, docmerge.File{ID: f.id, Name: f.name})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Len returns the number of stored files.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}

// IsPublic reports whether fileID was shared with GrantPublicRead.
func (s *Store) IsPublic(fileID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[fileID]
	return ok && f.public
}
