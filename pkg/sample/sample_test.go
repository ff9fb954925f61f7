package sample

import (
	"errors"
	"testing"

	"github.com/phylograph/treedag/pkg/bitset"
	apperrors "github.com/phylograph/treedag/pkg/errors"
)

func cherry3() *Topology {
	return Join(Join(Leaf(0), Leaf(1)), Leaf(2))
}

func caterpillar4() *Topology {
	return Join(Join(Join(Leaf(0), Leaf(1)), Leaf(2)), Leaf(3))
}

func balanced4() *Topology {
	return Join(Join(Leaf(0), Leaf(1)), Join(Leaf(2), Leaf(3)))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		collection Collection
		wantErr    error
	}{
		{
			name:       "valid",
			collection: Collection{Taxa: []string{"a", "b", "c"}, Trees: []Tree{{Topology: cherry3(), Count: 1}}},
		},
		{
			name:       "too few taxa",
			collection: Collection{Taxa: []string{"a", "b"}, Trees: []Tree{{Topology: Join(Leaf(0), Leaf(1)), Count: 1}}},
			wantErr:    ErrEmptyCollection,
		},
		{
			name:       "no trees",
			collection: Collection{Taxa: []string{"a", "b", "c"}},
			wantErr:    ErrEmptyCollection,
		},
		{
			name:       "zero count",
			collection: Collection{Taxa: []string{"a", "b", "c"}, Trees: []Tree{{Topology: cherry3(), Count: 0}}},
			wantErr:    ErrBadCount,
		},
		{
			name: "missing taxon",
			collection: Collection{
				Taxa:  []string{"a", "b", "c"},
				Trees: []Tree{{Topology: Join(Leaf(0), Leaf(1)), Count: 1}},
			},
			wantErr: ErrBadTopology,
		},
		{
			name: "repeated taxon",
			collection: Collection{
				Taxa:  []string{"a", "b", "c"},
				Trees: []Tree{{Topology: Join(Join(Leaf(0), Leaf(0)), Leaf(2)), Count: 1}},
			},
			wantErr: ErrBadTopology,
		},
		{
			name: "taxon out of range",
			collection: Collection{
				Taxa:  []string{"a", "b", "c"},
				Trees: []Tree{{Topology: Join(Join(Leaf(0), Leaf(1)), Leaf(7)), Count: 1}},
			},
			wantErr: ErrBadTopology,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.collection.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateRejectsBadTaxonName(t *testing.T) {
	c := Collection{
		Taxa:  []string{"a", "b(1)", "c"},
		Trees: []Tree{{Topology: cherry3(), Count: 1}},
	}
	err := c.Validate()
	if err == nil {
		t.Fatal("Validate accepted a taxon name with reserved punctuation")
	}
	if !apperrors.Is(err, apperrors.ErrCodeInvalidInput) {
		t.Errorf("Validate = %v, want code %s", err, apperrors.ErrCodeInvalidInput)
	}
}

func TestRootsplitCountsAggregates(t *testing.T) {
	// Both topologies place the root on the {0,1,2}|{3} bipartition; their
	// multiplicities add up under a single rootsplit.
	c := &Collection{
		Taxa: []string{"a", "b", "c", "d"},
		Trees: []Tree{
			{Topology: caterpillar4(), Count: 2},
			{Topology: Join(Join(Leaf(0), Join(Leaf(1), Leaf(2))), Leaf(3)), Count: 3},
			{Topology: balanced4(), Count: 1},
		},
	}
	got := c.RootsplitCounts()
	if len(got) != 2 {
		t.Fatalf("got %d rootsplits, want 2", len(got))
	}
	if !got[0].Clade.Equal(bitset.Of(4, 3)) || got[0].Count != 5 {
		t.Errorf("rootsplit 0 = %s count %d, want 0001 count 5", got[0].Clade, got[0].Count)
	}
	if !got[1].Clade.Equal(bitset.Of(4, 2, 3)) || got[1].Count != 1 {
		t.Errorf("rootsplit 1 = %s count %d, want 0011 count 1", got[1].Clade, got[1].Count)
	}
}

func TestPCSPCountsGolden(t *testing.T) {
	c := &Collection{
		Taxa:  []string{"a", "b", "c", "d"},
		Trees: []Tree{{Topology: caterpillar4(), Count: 2}},
	}
	got := c.PCSPCounts()

	cherry := bitset.Subsplit(bitset.Of(4, 0), bitset.Of(4, 1))
	mid := bitset.Subsplit(bitset.Of(4, 0, 1), bitset.Of(4, 2))
	root := bitset.Concat(bitset.Of(4, 3), bitset.Of(4, 0, 1, 2))

	want := []struct {
		parent   bitset.Bitset
		children []bitset.Bitset
	}{
		// Parents surface deepest-first: the walk records a node's child
		// edges only after returning from the subtrees below them.
		{parent: mid, children: []bitset.Bitset{cherry}},
		{parent: root, children: []bitset.Bitset{mid}},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d parents, want %d", len(got), len(want))
	}
	for i, w := range want {
		if !got[i].Parent.Equal(w.parent) {
			t.Errorf("parent %d = %s, want %s", i, got[i].Parent, w.parent)
		}
		if len(got[i].Children) != len(w.children) {
			t.Fatalf("parent %d has %d children, want %d", i, len(got[i].Children), len(w.children))
		}
		for j, wc := range w.children {
			if !got[i].Children[j].Subsplit.Equal(wc) {
				t.Errorf("parent %d child %d = %s, want %s", i, j, got[i].Children[j].Subsplit, wc)
			}
			if got[i].Children[j].Count != 2 {
				t.Errorf("parent %d child %d count = %d, want 2", i, j, got[i].Children[j].Count)
			}
		}
	}
}

func TestPCSPCountsMergesAcrossTrees(t *testing.T) {
	// The {1}|{0} cherry appears under different parents in the two
	// topologies; the parents stay distinct while each accumulates its own
	// observations.
	c := &Collection{
		Taxa: []string{"a", "b", "c", "d"},
		Trees: []Tree{
			{Topology: caterpillar4(), Count: 1},
			{Topology: caterpillar4(), Count: 1},
			{Topology: balanced4(), Count: 1},
		},
	}
	got := c.PCSPCounts()
	if len(got) != 4 {
		t.Fatalf("got %d parents, want 4", len(got))
	}

	mid := bitset.Subsplit(bitset.Of(4, 0, 1), bitset.Of(4, 2))
	var midChildren []ChildCount
	for _, pc := range got {
		if pc.Parent.Equal(mid) {
			midChildren = pc.Children
		}
	}
	if len(midChildren) != 1 || midChildren[0].Count != 2 {
		t.Fatalf("duplicate caterpillar observations were not merged: %+v", midChildren)
	}
}
