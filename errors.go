package docmerge

import "errors"

// Sentinel errors for merge operations.
var (
	// ErrConfiguration reports a missing required setting. Returned before any
	// store call is made.
	ErrConfiguration = errors.New("configuration error")

	// ErrAuth reports that credentials could not be established.
	ErrAuth = errors.New("authorization failed")

	// ErrTemplateNotFound reports that the template id does not exist.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrMerge reports a store failure after authorization succeeded.
	ErrMerge = errors.New("merge failed")

	// ErrNotFound is wrapped by Store implementations for unknown file ids.
	ErrNotFound = errors.New("file not found")

	// ErrEmptyTemplateID rejects calls without a template reference.
	ErrEmptyTemplateID = errors.New("template id cannot be empty")

	// ErrInvalidDataURI reports a signature payload that cannot be decoded.
	ErrInvalidDataURI = errors.New("invalid image data URI")
)
