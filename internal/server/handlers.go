package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/devco/docmerge"
)

// Error codes returned in the JSON error body.
const (
	CodeBadRequest       = "bad_request"
	CodeInvalidSignature = "invalid_signature"
	CodeTemplateNotFound = "template_not_found"
	CodeConfiguration    = "configuration"
	CodeAuth             = "auth"
	CodeTimeout          = "timeout"
	CodeInternal         = "internal"
)

// Generic messages; details go to the log only.
const (
	msgGenerateFailed = "Failed to generate PDF"
	msgListFailed     = "Failed to list templates"
	msgSweepFailed    = "Failed to sweep scratch documents"
)

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type generateRequest struct {
	TemplateID string         `json:"templateId"`
	Variables  map[string]any `json:"variables"`
}

type sweepResponse struct {
	Deleted int `json:"deleted"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// unsafeFilenameChars matches characters not kept in download file names.
var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

func (s *Server) generatePDF(c echo.Context) error {
	var req generateRequest
	if err := c.Bind(&req); err != nil {
		return s.fail(c, http.StatusBadRequest, CodeBadRequest, msgGenerateFailed, err)
	}
	if req.TemplateID == "" {
		return s.fail(c, http.StatusBadRequest, CodeBadRequest, msgGenerateFailed, docmerge.ErrEmptyTemplateID)
	}
	vars, err := toVariables(req.Variables)
	if err != nil {
		return s.fail(c, http.StatusBadRequest, CodeBadRequest, msgGenerateFailed, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), s.timeout)
	defer cancel()

	pdf, err := s.svc.Merge(ctx, req.TemplateID, vars)
	if err != nil {
		status, code := classify(err)
		return s.fail(c, status, code, msgGenerateFailed, err)
	}

	filename := unsafeFilenameChars.ReplaceAllString(req.TemplateID, "_") + ".pdf"
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, docmerge.MimeTypePDF, pdf)
}

func (s *Server) listTemplates(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), s.timeout)
	defer cancel()

	templates, err := s.svc.ListTemplates(ctx)
	if err != nil {
		status, code := classify(err)
		return s.fail(c, status, code, msgListFailed, err)
	}
	if templates == nil {
		templates = []docmerge.Template{}
	}
	return c.JSON(http.StatusOK, templates)
}

func (s *Server) sweep(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), s.timeout)
	defer cancel()

	n, err := s.svc.SweepOrphans(ctx)
	if err != nil {
		status, code := classify(err)
		return s.fail(c, status, code, msgSweepFailed, err)
	}
	return c.JSON(http.StatusOK, sweepResponse{Deleted: n})
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{Status: "ok", Version: s.version})
}

func (s *Server) stats(c echo.Context) error {
	return c.JSON(http.StatusOK, s.svc.Stats())
}

// classify maps engine errors to a status and code. Anything unrecognized
// is an internal error.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, docmerge.ErrEmptyTemplateID):
		return http.StatusBadRequest, CodeBadRequest
	case errors.Is(err, docmerge.ErrInvalidDataURI):
		return http.StatusBadRequest, CodeInvalidSignature
	case errors.Is(err, docmerge.ErrTemplateNotFound):
		return http.StatusNotFound, CodeTemplateNotFound
	case errors.Is(err, docmerge.ErrConfiguration):
		return http.StatusInternalServerError, CodeConfiguration
	case errors.Is(err, docmerge.ErrAuth):
		return http.StatusInternalServerError, CodeAuth
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusInternalServerError, CodeTimeout
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// fail logs err with the request id and writes a generic JSON error.
func (s *Server) fail(c echo.Context, status int, code, msg string, err error) error {
	ev := s.log.Warn()
	if status >= http.StatusInternalServerError {
		ev = s.log.Error()
	}
	ev.Err(err).Str("request_id", requestID(c)).Str("code", code).Msg(msg)
	return c.JSON(status, ErrorResponse{Error: msg, Code: code})
}

// handleHTTPError renders router and middleware errors (unknown route, body
// too large) in the same JSON shape as handler errors.
func (s *Server) handleHTTPError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status := http.StatusInternalServerError
	msg := http.StatusText(status)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		} else {
			msg = http.StatusText(status)
		}
	}
	code := CodeInternal
	if status < http.StatusInternalServerError {
		code = CodeBadRequest
	}
	if status == http.StatusInternalServerError {
		s.log.Error().Err(err).Str("request_id", requestID(c)).Msg("unhandled error")
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(status)
	} else {
		writeErr = c.JSON(status, ErrorResponse{Error: msg, Code: code})
	}
	if writeErr != nil {
		s.log.Error().Err(writeErr).Msg("writing error response")
	}
}

// toVariables renders JSON scalars as strings. Nested values are rejected.
func toVariables(raw map[string]any) (docmerge.Variables, error) {
	vars := make(docmerge.Variables, len(raw))
	for k, v := range raw {
		switch v := v.(type) {
		case nil:
			vars[k] = ""
		case string:
			vars[k] = v
		case bool:
			vars[k] = strconv.FormatBool(v)
		case float64:
			vars[k] = strconv.FormatFloat(v, 'f', -1, 64)
		default:
			return nil, fmt.Errorf("variable %q: value must be a string, number or boolean", k)
		}
	}
	return vars, nil
}
