package graph

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/phylograph/treedag/pkg/dag"
	"github.com/phylograph/treedag/pkg/sample"
)

func buildThreeTaxa(t *testing.T) (*dag.DAG, []string) {
	t.Helper()
	taxa := []string{"x0", "x1", "x2"}
	d, err := dag.Build(&sample.Collection{
		Taxa: taxa,
		Trees: []sample.Tree{
			{Topology: sample.Join(sample.Join(sample.Leaf(0), sample.Leaf(1)), sample.Leaf(2)), Count: 1},
		},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return d, taxa
}

func TestFromDAG(t *testing.T) {
	d, taxa := buildThreeTaxa(t)
	doc := FromDAG(d, taxa)

	if err := doc.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(doc.Nodes) != d.NodeCount() {
		t.Errorf("document has %d nodes, want %d", len(doc.Nodes), d.NodeCount())
	}
	if len(doc.Parameters) != d.GeneralizedPCSPCount() {
		t.Errorf("document has %d parameters, want %d", len(doc.Parameters), d.GeneralizedPCSPCount())
	}
	if len(doc.Rootsplits) != 1 || doc.Rootsplits[0] != "001" {
		t.Errorf("rootsplits = %v, want [001]", doc.Rootsplits)
	}

	// Parameters come out in index order.
	for i, p := range doc.Parameters {
		if p.Index != i {
			t.Errorf("parameter %d has index %d", i, p.Index)
		}
	}

	leaves, roots := 0, 0
	for _, n := range doc.Nodes {
		if n.Leaf {
			leaves++
		}
		if n.Root {
			roots++
		}
	}
	if leaves != 3 || roots != 1 {
		t.Errorf("leaves = %d, roots = %d; want 3, 1", leaves, roots)
	}

	rotated := 0
	for _, e := range doc.Edges {
		if e.Rotated {
			rotated++
		}
	}
	// The cherry and the root each feed one fake leaf through rotation.
	if len(doc.Edges) != 4 || rotated != 2 {
		t.Errorf("edges = %d with %d rotated, want 4 with 2", len(doc.Edges), rotated)
	}
}

func TestDocumentJSONRoundTrip(t *testing.T) {
	d, taxa := buildThreeTaxa(t)
	doc := FromDAG(d, taxa)

	var buf bytes.Buffer
	if err := WriteJSON(doc, &buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	got, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if !reflect.DeepEqual(got, doc) {
		t.Errorf("round trip changed the document:\ngot  %+v\nwant %+v", got, doc)
	}
}

func TestDocumentBSONRoundTrip(t *testing.T) {
	d, taxa := buildThreeTaxa(t)
	doc := FromDAG(d, taxa)

	data, err := MarshalBSON(doc)
	if err != nil {
		t.Fatalf("MarshalBSON: %v", err)
	}
	got, err := UnmarshalBSON(data)
	if err != nil {
		t.Fatalf("UnmarshalBSON: %v", err)
	}
	if !reflect.DeepEqual(got, doc) {
		t.Errorf("round trip changed the document:\ngot  %+v\nwant %+v", got, doc)
	}
}

func TestValidateRejects(t *testing.T) {
	d, taxa := buildThreeTaxa(t)

	tests := []struct {
		name   string
		mutate func(*Document)
	}{
		{"misordered ids", func(doc *Document) { doc.Nodes[0].ID = 7 }},
		{"wrong subsplit width", func(doc *Document) { doc.Nodes[1].Subsplit = "01" }},
		{"dangling edge", func(doc *Document) { doc.Edges[0].Child = 99 }},
		{"duplicate parameter index", func(doc *Document) { doc.Parameters[1].Index = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := FromDAG(d, taxa)
			tt.mutate(&doc)
			if err := doc.Validate(); err == nil {
				t.Error("Validate accepted a corrupted document")
			}
		})
	}
}
