package main

import (
	"context"
	"fmt"
	"maps"
	"net/http"
	"regexp"
	"strings"

	"github.com/devco/docmerge"
	"github.com/devco/docmerge/internal/fileutil"
	"github.com/devco/docmerge/internal/yamlutil"
)

// maxSignatureBytes bounds signature image files.
const maxSignatureBytes = 5 << 20

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// runMerge merges one template and writes the PDF.
func runMerge(ctx context.Context, args []string, env *Environment) error {
	f, positional, err := parseMergeFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return fmt.Errorf("%w: merge takes exactly one template id, got %d", ErrUsage, len(positional))
	}
	templateID := positional[0]

	vars, err := collectVariables(f, env)
	if err != nil {
		return err
	}

	sess, err := openSession(&f.common, &f.store, env)
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	if sess.cfg.Server.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, sess.cfg.Server.Timeout)
		defer cancel()
	}

	start := env.Now()
	pdf, err := sess.merger.Merge(ctx, templateID, vars)
	if err != nil {
		return err
	}

	output := f.output
	if output == "" {
		output = defaultOutput(templateID)
	}
	if err := fileutil.WriteOutput(output, pdf, env.Stdout); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}

	sess.log.Info().
		Str("template", templateID).
		Str("output", output).
		Int("bytes", len(pdf)).
		Dur("took", env.Now().Sub(start)).
		Msg("PDF written")
	return nil
}

// collectVariables merges, in increasing precedence, the variables file,
// --var pairs and --signature.
func collectVariables(f *mergeFlags, env *Environment) (docmerge.Variables, error) {
	if f.varsFile == fileutil.StdioPath && f.signature == fileutil.StdioPath {
		return nil, fmt.Errorf("%w: --vars and --signature cannot both read stdin", ErrUsage)
	}

	vars := docmerge.Variables{}
	if f.varsFile != "" {
		data, err := fileutil.ReadInput(f.varsFile, env.Stdin, int64(yamlutil.MaxInputSize))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrReadVariables, err)
		}
		m, err := yamlutil.StringMap(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrReadVariables, f.varsFile, err)
		}
		maps.Copy(vars, m)
	}

	for _, kv := range f.vars {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: --var %q must be key=value", ErrUsage, kv)
		}
		vars[key] = value
	}

	if f.signature != "" {
		uri, err := signatureURI(f.signature, env)
		if err != nil {
			return nil, err
		}
		vars[docmerge.SignatureKey] = uri
	}
	return vars, nil
}

// signatureURI returns src unchanged when it is a data URI, otherwise reads
// the image file it names and encodes it.
func signatureURI(src string, env *Environment) (string, error) {
	if strings.HasPrefix(src, "data:") {
		if _, _, err := docmerge.DecodeDataURI(src); err != nil {
			return "", err
		}
		return src, nil
	}

	data, err := fileutil.ReadInput(src, env.Stdin, maxSignatureBytes)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrReadSignature, err)
	}
	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return "", fmt.Errorf("%w: %s is %s, not an image", ErrReadSignature, src, mimeType)
	}
	return docmerge.EncodeDataURI(mimeType, data), nil
}

// defaultOutput derives "<templateId>.pdf" with filesystem-unsafe characters
// replaced.
func defaultOutput(templateID string) string {
	return unsafeFilenameChars.ReplaceAllString(templateID, "_") + ".pdf"
}
