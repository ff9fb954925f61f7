package sample

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// The JSON encoding of a collection nests topologies as arrays: a leaf is
// its taxon index and an internal node is a two-element array of encoded
// children. A one-tree sample over taxa a, b, c looks like:
//
//	{
//	  "taxa": ["a", "b", "c"],
//	  "trees": [{"count": 1, "topology": [[0, 1], 2]}]
//	}

type collectionJSON struct {
	Taxa  []string   `json:"taxa"`
	Trees []treeJSON `json:"trees"`
}

type treeJSON struct {
	Count    int             `json:"count,omitempty"`
	Topology json.RawMessage `json:"topology"`
}

// ReadJSON decodes a collection from r. Tree counts default to 1 when
// omitted. The decoded collection is validated before being returned.
func ReadJSON(r io.Reader) (*Collection, error) {
	var data collectionJSON
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	c := &Collection{Taxa: data.Taxa}
	for i, tr := range data.Trees {
		topo, err := decodeTopology(tr.Topology)
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		count := tr.Count
		if count == 0 {
			count = 1
		}
		c.Trees = append(c.Trees, Tree{Topology: topo, Count: count})
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// WriteJSON encodes the collection to w, indented for readability. The
// output round-trips through [ReadJSON].
func WriteJSON(c *Collection, w io.Writer) error {
	out := collectionJSON{Taxa: c.Taxa}
	for _, tr := range c.Trees {
		raw, err := json.Marshal(encodeTopology(tr.Topology))
		if err != nil {
			return fmt.Errorf("encode topology: %w", err)
		}
		out.Trees = append(out.Trees, treeJSON{Count: tr.Count, Topology: raw})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ImportJSON reads a collection from the JSON file at path.
func ImportJSON(path string) (*Collection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}

// ExportJSON writes the collection to a JSON file at path.
func ExportJSON(c *Collection, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(c, f)
}

func decodeTopology(raw json.RawMessage) (*Topology, error) {
	var taxon int
	if err := json.Unmarshal(raw, &taxon); err == nil {
		return Leaf(taxon), nil
	}

	var pair []json.RawMessage
	if err := json.Unmarshal(raw, &pair); err != nil {
		return nil, fmt.Errorf("topology node must be a taxon index or a pair: %w", err)
	}
	if len(pair) != 2 {
		return nil, fmt.Errorf("topology node has %d children, want 2", len(pair))
	}
	left, err := decodeTopology(pair[0])
	if err != nil {
		return nil, err
	}
	right, err := decodeTopology(pair[1])
	if err != nil {
		return nil, err
	}
	return Join(left, right), nil
}

func encodeTopology(t *Topology) any {
	if t.IsLeaf() {
		return t.Taxon
	}
	return []any{encodeTopology(t.Left), encodeTopology(t.Right)}
}
