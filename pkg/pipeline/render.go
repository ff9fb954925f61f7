package pipeline

import (
	"bytes"
	"context"

	"github.com/phylograph/treedag/pkg/errors"
	"github.com/phylograph/treedag/pkg/graph"
	"github.com/phylograph/treedag/pkg/render"
)

// Render generates output artifacts in the requested formats.
func Render(ctx context.Context, doc graph.Document, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	artifacts := make(map[string][]byte)
	renderOpts := render.Options{Detailed: opts.Detailed}

	// DOT is rendered at most once even when both dot and svg are requested.
	var dot string
	needDOT := false
	for _, format := range opts.Formats {
		if format == FormatDOT || format == FormatSVG {
			needDOT = true
		}
	}
	if needDOT {
		dot = render.ToDOT(doc, renderOpts)
	}

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatJSON:
			data, err = marshalDocumentJSON(doc)
		case FormatBSON:
			data, err = graph.MarshalBSON(doc)
		case FormatDOT:
			data = []byte(dot)
		case FormatSVG:
			data, err = render.RenderSVG(ctx, dot)
		default:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format: %s", format)
		}

		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "render %s", format)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// marshalDocumentJSON produces the canonical JSON encoding of a document.
// The same bytes feed the artifact cache key, so the encoding must be
// deterministic.
func marshalDocumentJSON(doc graph.Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := graph.WriteJSON(doc, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalDocument returns the canonical document bytes used for hashing.
func MarshalDocument(doc graph.Document) ([]byte, error) {
	return marshalDocumentJSON(doc)
}
