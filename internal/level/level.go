// Package level reads and writes fleet level documents and builds
// navigation graphs from them.
//
// A document holds named levels; each level lists vertices as
// positional arrays [x, y, {attrs}] and lanes as [from, to, {attrs}].
// Vertex attrs: "name" (display label), "is_charger". Lane attrs:
// "speed_limit". Lane length is the Euclidean distance between its
// endpoints; lanes are traversable in both directions, and each
// direction is a distinct capacity-one resource.
package level

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/elektrokombinacija/fleetsim/internal/core"
)

// Document is a set of named levels.
type Document struct {
	Levels map[string]Level `json:"levels"`
}

// Level is one level's raw geometry.
type Level struct {
	Vertices []VertexDef `json:"vertices"`
	Lanes    []LaneDef   `json:"lanes"`
}

// VertexDef is a vertex entry. Its id is its index in the vertex list.
type VertexDef struct {
	X, Y      float64
	Name      string
	IsCharger bool
}

type vertexAttrs struct {
	Name      string `json:"name,omitempty"`
	IsCharger bool   `json:"is_charger,omitempty"`
}

// UnmarshalJSON decodes the positional [x, y, {attrs}] form.
func (v *VertexDef) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) < 2 {
		return fmt.Errorf("vertex entry needs [x, y, attrs?], got %d elements", len(raw))
	}
	if err := json.Unmarshal(raw[0], &v.X); err != nil {
		return fmt.Errorf("vertex x: %w", err)
	}
	if err := json.Unmarshal(raw[1], &v.Y); err != nil {
		return fmt.Errorf("vertex y: %w", err)
	}
	if len(raw) > 2 {
		var attrs vertexAttrs
		if err := json.Unmarshal(raw[2], &attrs); err != nil {
			return fmt.Errorf("vertex attrs: %w", err)
		}
		v.Name = attrs.Name
		v.IsCharger = attrs.IsCharger
	}
	return nil
}

// MarshalJSON encodes the positional form.
func (v VertexDef) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{v.X, v.Y, vertexAttrs{Name: v.Name, IsCharger: v.IsCharger}})
}

// LaneDef is a lane entry referencing vertices by index.
type LaneDef struct {
	From, To   int
	SpeedLimit float64
}

type laneAttrs struct {
	SpeedLimit float64 `json:"speed_limit,omitempty"`
}

// UnmarshalJSON decodes the positional [from, to, {attrs}] form.
func (l *LaneDef) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) < 2 {
		return fmt.Errorf("lane entry needs [from, to, attrs?], got %d elements", len(raw))
	}
	if err := json.Unmarshal(raw[0], &l.From); err != nil {
		return fmt.Errorf("lane from: %w", err)
	}
	if err := json.Unmarshal(raw[1], &l.To); err != nil {
		return fmt.Errorf("lane to: %w", err)
	}
	if len(raw) > 2 {
		var attrs laneAttrs
		if err := json.Unmarshal(raw[2], &attrs); err != nil {
			return fmt.Errorf("lane attrs: %w", err)
		}
		l.SpeedLimit = attrs.SpeedLimit
	}
	return nil
}

// MarshalJSON encodes the positional form.
func (l LaneDef) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{l.From, l.To, laneAttrs{SpeedLimit: l.SpeedLimit}})
}

// Parse decodes a level document. Malformed input fails with
// *core.GraphLoadError.
func Parse(r io.Reader) (*Document, error) {
	var doc Document
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, &core.GraphLoadError{Reason: fmt.Sprintf("decode level document: %v", err)}
	}
	if len(doc.Levels) == 0 {
		return nil, &core.GraphLoadError{Reason: "document has no levels"}
	}
	return &doc, nil
}

// ParseFile decodes a level document from disk.
func ParseFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open level file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Write encodes the document as indented JSON.
func (d *Document) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

// Names returns the level names in ascending order.
func (d *Document) Names() []string {
	names := make([]string, 0, len(d.Levels))
	for n := range d.Levels {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Graph builds the navigation graph for a named level. It fails with
// *core.GraphLoadError on unknown level names, out-of-range lane
// endpoints, or coincident lane endpoints (zero length).
func (d *Document) Graph(name string) (*core.Graph, error) {
	lvl, ok := d.Levels[name]
	if !ok {
		return nil, &core.GraphLoadError{Reason: fmt.Sprintf("level %q not found", name)}
	}

	vertices := make([]core.Vertex, len(lvl.Vertices))
	for i, vd := range lvl.Vertices {
		vertices[i] = core.Vertex{
			ID:        core.VertexID(i),
			Name:      vd.Name,
			Pos:       core.Pos{X: vd.X, Y: vd.Y},
			IsCharger: vd.IsCharger,
		}
	}

	seen := make(map[core.LaneKey]bool)
	var lanes []core.Lane
	add := func(from, to int, limit float64) error {
		if from < 0 || from >= len(vertices) || to < 0 || to >= len(vertices) {
			return &core.GraphLoadError{Reason: fmt.Sprintf("lane [%d,%d]: endpoint out of range", from, to)}
		}
		a, b := vertices[from].Pos, vertices[to].Pos
		length := math.Hypot(b.X-a.X, b.Y-a.Y)
		if length <= 0 {
			return &core.GraphLoadError{Reason: fmt.Sprintf("lane [%d,%d]: coincident endpoints", from, to)}
		}
		k := core.LaneKey{From: core.VertexID(from), To: core.VertexID(to)}
		if seen[k] {
			return nil
		}
		seen[k] = true
		lanes = append(lanes, core.Lane{
			From:       k.From,
			To:         k.To,
			Length:     length,
			SpeedLimit: limit,
		})
		return nil
	}

	for _, ld := range lvl.Lanes {
		if err := add(ld.From, ld.To, ld.SpeedLimit); err != nil {
			return nil, err
		}
		if err := add(ld.To, ld.From, ld.SpeedLimit); err != nil {
			return nil, err
		}
	}

	return core.NewGraph(vertices, lanes)
}
