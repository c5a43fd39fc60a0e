package dag

import (
	"bytes"
	"encoding/gob"
)

// gobWire is the exported-field shape gob actually sees; DAG's own fields
// are unexported, so DAG implements GobEncode/GobDecode directly rather than
// exposing them.
type gobWire struct {
	N     int
	Edges string // the "src,dst;..." network string format, spec.md §6
}

// GobEncode lets a *DAG travel through encoding/gob (learner.Portable's
// wire contract, spec.md §5), reusing the "src,dst;..." string codec rather
// than a second serialization format.
func (d *DAG) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(gobWire{N: d.n, Edges: d.String()}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode restores a *DAG encoded by GobEncode.
func (d *DAG) GobDecode(b []byte) error {
	var w gobWire
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&w); err != nil {
		return err
	}
	restored, err := FromEdgeString(w.N, w.Edges)
	if err != nil {
		return err
	}
	*d = *restored
	return nil
}
