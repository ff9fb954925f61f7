package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/phylograph/treedag/pkg/errors"
)

// artifactWriteParams bundles the inputs for writeArtifacts.
type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	input     string // sample path, used to derive default output names
	output    string // output file (single format) or base path (multiple)
	cacheHit  bool
}

// writeArtifacts writes each rendered artifact to disk and prints a summary.
func writeArtifacts(p artifactWriteParams) error {
	for _, format := range p.formats {
		data, ok := p.artifacts[format]
		if !ok {
			return errors.New(errors.ErrCodeInternal, "artifact %s missing from result", format)
		}

		path := artifactPath(p.input, p.output, format, len(p.formats) > 1)
		if err := errors.ValidatePath(path); err != nil {
			return err
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}

	status := "rendered"
	if p.cacheHit {
		status = "rendered (cached)"
	}
	printSuccess("%d artifact(s) %s", len(p.formats), status)
	return nil
}

// artifactPath derives the output path for a format.
//
// With a single format, an explicit output is used verbatim. With several
// formats the output acts as a base path and the format becomes the
// extension. Without an output the sample filename is reused next to the
// input with the format as extension.
func artifactPath(input, output, format string, multi bool) string {
	if output != "" {
		if !multi {
			return output
		}
		return strings.TrimSuffix(output, filepath.Ext(output)) + "." + format
	}
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	if base == "" {
		base = "graph"
	}
	return base + "." + format
}
