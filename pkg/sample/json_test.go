package sample

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{
			name:  "counts default to one",
			input: `{"taxa": ["a", "b", "c"], "trees": [{"topology": [[0, 1], 2]}]}`,
		},
		{
			name:  "explicit counts",
			input: `{"taxa": ["a", "b", "c"], "trees": [{"count": 4, "topology": [[0, 1], 2]}]}`,
		},
		{
			name:    "malformed json",
			input:   `{"taxa": ["a"`,
			wantErr: true,
		},
		{
			name:    "three-child node",
			input:   `{"taxa": ["a", "b", "c"], "trees": [{"topology": [0, 1, 2]}]}`,
			wantErr: true,
		},
		{
			name:    "topology node is a string",
			input:   `{"taxa": ["a", "b", "c"], "trees": [{"topology": [["a", 1], 2]}]}`,
			wantErr: true,
		},
		{
			name:    "invalid collection",
			input:   `{"taxa": ["a", "b", "c"], "trees": [{"topology": [0, 1]}]}`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ReadJSON(strings.NewReader(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Fatal("ReadJSON accepted invalid input")
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadJSON: %v", err)
			}
			if err := c.Validate(); err != nil {
				t.Errorf("decoded collection invalid: %v", err)
			}
		})
	}
}

func TestReadJSONCounts(t *testing.T) {
	c, err := ReadJSON(strings.NewReader(
		`{"taxa": ["a", "b", "c"], "trees": [{"topology": [[0, 1], 2]}, {"count": 3, "topology": [[0, 2], 1]}]}`,
	))
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if c.Trees[0].Count != 1 || c.Trees[1].Count != 3 {
		t.Errorf("counts = %d, %d; want 1, 3", c.Trees[0].Count, c.Trees[1].Count)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	orig := &Collection{
		Taxa: []string{"a", "b", "c", "d"},
		Trees: []Tree{
			{Topology: caterpillar4(), Count: 2},
			{Topology: balanced4(), Count: 1},
		},
	}

	var buf bytes.Buffer
	if err := WriteJSON(orig, &buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	got, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}

	if !equalTopology(got.Trees[0].Topology, orig.Trees[0].Topology) ||
		!equalTopology(got.Trees[1].Topology, orig.Trees[1].Topology) {
		t.Error("topologies changed across the round trip")
	}
	if got.Trees[0].Count != 2 || got.Trees[1].Count != 1 {
		t.Errorf("counts = %d, %d; want 2, 1", got.Trees[0].Count, got.Trees[1].Count)
	}
}

func TestImportExportJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.json")
	orig := &Collection{
		Taxa:  []string{"a", "b", "c"},
		Trees: []Tree{{Topology: cherry3(), Count: 1}},
	}
	if err := ExportJSON(orig, path); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	got, err := ImportJSON(path)
	if err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}
	if !equalTopology(got.Trees[0].Topology, orig.Trees[0].Topology) {
		t.Error("topology changed across file round trip")
	}
}

func TestImportJSONMissingFile(t *testing.T) {
	if _, err := ImportJSON(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("ImportJSON accepted a missing file")
	}
}

func equalTopology(a, b *Topology) bool {
	if a.IsLeaf() != b.IsLeaf() {
		return false
	}
	if a.IsLeaf() {
		return a.Taxon == b.Taxon
	}
	return equalTopology(a.Left, b.Left) && equalTopology(a.Right, b.Right)
}
