package docmerge

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/devco/docmerge/internal/textindex"
)

// applySignature embeds the signature image at the {{signature}} tag, or
// blanks the tag when no image data URI was supplied.
//
// The tag is first swapped for a marker token unique to this merge so the
// later tree scan finds exactly one insertion point.
func (m *Merger) applySignature(ctx context.Context, docID string, vars Variables, now time.Time, log zerolog.Logger) error {
	tag := Tag(SignatureKey)
	sig, ok := vars.signatureImage()
	if !ok {
		return m.batch(ctx, docID, "clearing signature", []Request{replaceAll(tag, "")})
	}

	marker := newMarker(now)
	if err := m.batch(ctx, docID, "marking signature", []Request{replaceAll(tag, marker)}); err != nil {
		return err
	}

	data, mimeType, err := DecodeDataURI(sig)
	if err != nil {
		return fmt.Errorf("%w: decoding signature: %w", ErrMerge, err)
	}

	img, err := m.store.UploadImage(ctx, "signature_"+strconv.FormatInt(now.UnixMilli(), 10), m.cfg.folderID, mimeType, data)
	if err != nil {
		return fmt.Errorf("%w: uploading signature: %w", ErrMerge, err)
	}
	defer m.deleteImage(ctx, img.ID, log)

	if err := m.store.GrantPublicRead(ctx, img.ID); err != nil {
		return fmt.Errorf("%w: sharing signature: %w", ErrMerge, err)
	}

	doc, err := m.store.GetDocument(ctx, docID)
	if err != nil {
		return fmt.Errorf("%w: reading document: %w", ErrMerge, err)
	}

	index, found := FindText(doc, marker)
	if !found {
		// The tag was split across styled runs; the PDF ships unsigned.
		m.counters.signatureMisses.Add(1)
		log.Warn().Str("marker", marker).Msg("signature marker not found, skipping image")
		return nil
	}

	return m.batch(ctx, docID, "inserting signature", signatureRequests(index, marker, imageURL(img)))
}

// signatureRequests inserts the image at index and then removes the marker,
// which the insertion shifted one position right. A final replace clears any
// further copies of the marker left by repeated tags.
func signatureRequests(index int64, marker, uri string) []Request {
	markerLen := textindex.Len(marker)
	return []Request{
		{InsertInlineImage: &InsertInlineImage{
			Index:  index,
			URI:    uri,
			Height: Dimension{Magnitude: SignatureHeightPt, Unit: UnitPoints},
			Width:  Dimension{Magnitude: SignatureWidthPt, Unit: UnitPoints},
		}},
		{DeleteContentRange: &DeleteContentRange{
			StartIndex: index + 1,
			EndIndex:   index + 1 + markerLen,
		}},
		replaceAll(marker, ""),
	}
}

// deleteImage removes the scratch image, best effort.
func (m *Merger) deleteImage(ctx context.Context, fileID string, log zerolog.Logger) {
	if err := m.store.DeleteFile(context.WithoutCancel(ctx), fileID); err != nil {
		m.counters.imageLeaks.Add(1)
		log.Warn().Err(err).Str("image_id", fileID).Msg("failed to delete signature image")
	}
}
