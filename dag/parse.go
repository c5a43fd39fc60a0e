package dag

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseEdges decodes the "src,dst;src,dst;..." network string format of
// spec.md §6. An empty string decodes to no edges.
func ParseEdges(s string) ([]Edge, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ";")
	edges := make([]Edge, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		pair := strings.SplitN(part, ",", 2)
		if len(pair) != 2 {
			return nil, fmt.Errorf("dag: malformed edge %q", part)
		}
		u, err := strconv.Atoi(strings.TrimSpace(pair[0]))
		if err != nil {
			return nil, fmt.Errorf("dag: malformed edge %q: %w", part, err)
		}
		v, err := strconv.Atoi(strings.TrimSpace(pair[1]))
		if err != nil {
			return nil, fmt.Errorf("dag: malformed edge %q: %w", part, err)
		}
		edges = append(edges, Edge{u, v})
	}
	return edges, nil
}

// FromEdgeString builds a DAG of n nodes from the serialized edge string.
func FromEdgeString(n int, s string) (*DAG, error) {
	edges, err := ParseEdges(s)
	if err != nil {
		return nil, err
	}
	d := New(n)
	if err := d.AddEdges(edges); err != nil {
		return nil, err
	}
	return d, nil
}
