package render

import (
	"strings"
	"testing"

	"github.com/phylograph/treedag/pkg/dag"
	"github.com/phylograph/treedag/pkg/graph"
	"github.com/phylograph/treedag/pkg/sample"
)

func threeTaxaDoc(t *testing.T) graph.Document {
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
	return graph.FromDAG(d, taxa)
}

func TestToDOT(t *testing.T) {
	doc := threeTaxaDoc(t)
	dot := ToDOT(doc, Options{})

	if !strings.HasPrefix(dot, "digraph subsplits {") || !strings.HasSuffix(dot, "}\n") {
		t.Fatalf("malformed DOT:\n%s", dot)
	}
	for _, want := range []string{
		`"x0"`,                     // fake leaves use taxon names
		`"010|100"`,                // internal nodes show their clades
		"fillcolor=lightgoldenrod", // root highlight
		"n3 -> n0;",                // sorted edge, solid
		"n3 -> n1 [style=dashed];", // rotated edge, dashed
		"n4 -> n2 [style=dashed];",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
}

func TestToDOTDetailed(t *testing.T) {
	doc := threeTaxaDoc(t)
	dot := ToDOT(doc, Options{Detailed: true})
	if !strings.Contains(dot, `"4\n001|110"`) {
		t.Errorf("detailed DOT missing id-prefixed label:\n%s", dot)
	}
}
