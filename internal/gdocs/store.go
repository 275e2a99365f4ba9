// Package gdocs implements docmerge.Store over the Google Docs and Drive APIs
// using a service account.
package gdocs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"google.golang.org/api/docs/v1"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/devco/docmerge"
)

// errNotAuthorized is returned by API calls made before Authorize.
var errNotAuthorized = errors.New("gdocs: store used before Authorize")

// Compile-time interface implementation check.
var _ docmerge.Store = (*Store)(nil)

// Store talks to Docs and Drive. Create with New; the authorized clients are
// built by the first successful Authorize and reused afterwards.
type Store struct {
	creds        Credentials
	authorize    func(ctx context.Context, creds Credentials) (*http.Client, error)
	docsOptions  []option.ClientOption
	driveOptions []option.ClientOption

	mu    sync.Mutex
	docs  *docs.Service
	drive *drive.Service
}

// Option configures a Store.
type Option func(*Store)

// WithHTTPClient skips the JWT flow and uses hc as-is.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *Store) {
		s.authorize = func(context.Context, Credentials) (*http.Client, error) {
			return hc, nil
		}
	}
}

// WithEndpoints overrides the API base URLs.
func WithEndpoints(docsURL, driveURL string) Option {
	return func(s *Store) {
		s.docsOptions = append(s.docsOptions, option.WithEndpoint(docsURL))
		s.driveOptions = append(s.driveOptions, option.WithEndpoint(driveURL))
	}
}

// New creates a Store for creds.
func New(creds Credentials, opts ...Option) *Store {
	s := &Store{
		creds:     creds,
		authorize: authorizeJWT,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Authorize implements docmerge.Store.
func (s *Store) Authorize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.docs != nil && s.drive != nil {
		return nil
	}

	hc, err := s.authorize(ctx, s.creds)
	if err != nil {
		return err
	}

	docsSvc, err := docs.NewService(ctx, append([]option.ClientOption{option.WithHTTPClient(hc)}, s.docsOptions...)...)
	if err != nil {
		return fmt.Errorf("creating docs client: %w", err)
	}
	driveSvc, err := drive.NewService(ctx, append([]option.ClientOption{option.WithHTTPClient(hc)}, s.driveOptions...)...)
	if err != nil {
		return fmt.Errorf("creating drive client: %w", err)
	}

	s.docs = docsSvc
	s.drive = driveSvc
	return nil
}

// services returns the authorized clients.
func (s *Store) services() (*docs.Service, *drive.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.docs == nil || s.drive == nil {
		return nil, nil, errNotAuthorized
	}
	return s.docs, s.drive, nil
}

// CopyDocument implements docmerge.Store.
func (s *Store) CopyDocument(ctx context.Context, templateID, name, folderID string) (string, error) {
	_, drv, err := s.services()
	if err != nil {
		return "", err
	}
	f, err := drv.Files.Copy(templateID, &drive.File{Name: name, Parents: []string{folderID}}).
		SupportsAllDrives(true).
		Fields("id").
		Context(ctx).
		Do()
	if err != nil {
		return "", mapError(err)
	}
	return f.Id, nil
}

// BatchUpdate implements docmerge.Store.
func (s *Store) BatchUpdate(ctx context.Context, documentID string, requests []docmerge.Request) error {
	dcs, _, err := s.services()
	if err != nil {
		return err
	}
	_, err = dcs.Documents.BatchUpdate(documentID, &docs.BatchUpdateDocumentRequest{Requests: toAPIRequests(requests)}).
		Context(ctx).
		Do()
	return mapError(err)
}

// GetDocument implements docmerge.Store.
func (s *Store) GetDocument(ctx context.Context, documentID string) (*docmerge.Document, error) {
	dcs, _, err := s.services()
	if err != nil {
		return nil, err
	}
	d, err := dcs.Documents.Get(documentID).Context(ctx).Do()
	if err != nil {
		return nil, mapError(err)
	}
	return fromAPIDocument(d), nil
}

// ExportPDF implements docmerge.Store.
func (s *Store) ExportPDF(ctx context.Context, documentID string) ([]byte, error) {
	_, drv, err := s.services()
	if err != nil {
		return nil, err
	}
	resp, err := drv.Files.Export(documentID, docmerge.MimeTypePDF).Context(ctx).Download()
	if err != nil {
		return nil, mapError(err)
	}
	defer resp.Body.Close()

	pdf, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading export: %w", err)
	}
	return pdf, nil
}

// UploadImage implements docmerge.Store.
func (s *Store) UploadImage(ctx context.Context, name, folderID, mimeType string, data []byte) (*docmerge.UploadedImage, error) {
	_, drv, err := s.services()
	if err != nil {
		return nil, err
	}
	f, err := drv.Files.Create(&drive.File{Name: name, Parents: []string{folderID}, MimeType: mimeType}).
		Media(bytes.NewReader(data)).
		SupportsAllDrives(true).
		Fields("id, thumbnailLink").
		Context(ctx).
		Do()
	if err != nil {
		return nil, mapError(err)
	}
	return &docmerge.UploadedImage{ID: f.Id, ThumbnailLink: f.ThumbnailLink}, nil
}

// GrantPublicRead implements docmerge.Store.
func (s *Store) GrantPublicRead(ctx context.Context, fileID string) error {
	_, drv, err := s.services()
	if err != nil {
		return err
	}
	_, err = drv.Permissions.Create(fileID, &drive.Permission{Type: "anyone", Role: "reader"}).
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	return mapError(err)
}

// DeleteFile implements docmerge.Store.
func (s *Store) DeleteFile(ctx context.Context, fileID string) error {
	_, drv, err := s.services()
	if err != nil {
		return err
	}
	return mapError(drv.Files.Delete(fileID).SupportsAllDrives(true).Context(ctx).Do())
}

// ListFiles implements docmerge.Store. All result pages are fetched.
func (s *Store) ListFiles(ctx context.Context, q docmerge.FileQuery) ([]docmerge.File, error) {
	_, drv, err := s.services()
	if err != nil {
		return nil, err
	}
	var files []docmerge.File
	err = drv.Files.List().
		Q(buildQuery(q)).
		Fields("nextPageToken, files(id, name)").
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Pages(ctx, func(page *drive.FileList) error {
			for _, f := range page.Files {
				files = append(files, docmerge.File{ID: f.Id, Name: f.Name})
			}
			return nil
		})
	if err != nil {
		return nil, mapError(err)
	}
	return files, nil
}

// buildQuery renders a Drive search query for q.
func buildQuery(q docmerge.FileQuery) string {
	clauses := []string{"trashed = false"}
	if q.NameContains != "" {
		clauses = append(clauses, "name contains '"+escapeQuery(q.NameContains)+"'")
	}
	if q.MimeType != "" {
		clauses = append(clauses, "mimeType = '"+escapeQuery(q.MimeType)+"'")
	}
	return strings.Join(clauses, " and ")
}

var queryEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

func escapeQuery(s string) string {
	return queryEscaper.Replace(s)
}

// mapError wraps 404 responses with docmerge.ErrNotFound.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound {
		return fmt.Errorf("%w: %w", docmerge.ErrNotFound, err)
	}
	return err
}
