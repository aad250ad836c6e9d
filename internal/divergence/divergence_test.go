package divergence

import (
	"math"
	"testing"

	"github.com/beliefdrift/beliefdrift/internal/domain"
	"github.com/beliefdrift/beliefdrift/internal/worldmodel"
)

const floatTolerance = 1e-6

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < floatTolerance
}

func node(id, nodeType string, confidence float64) domain.BeliefNode {
	return domain.BeliefNode{
		ID: id,
		Properties: map[string]any{
			domain.PropType:       nodeType,
			domain.PropConfidence: confidence,
		},
	}
}

func houseGraph(objID string, confidence float64) *worldmodel.Graph {
	g := worldmodel.NewGraph()
	g.AddNode(node("house", "root", 1.0))
	g.AddNode(node(objID, "object", confidence))
	g.AddEdge("house", objID, "contains")
	return g
}

func TestComputeEmptyGraphs(t *testing.T) {
	m := Compute(worldmodel.NewGraph(), worldmodel.NewGraph())

	if m.ConceptJSDivergence != 0.0 {
		t.Errorf("js divergence for empty graphs = %v, want 0", m.ConceptJSDivergence)
	}
	if m.EntityConfidenceGap != 0.0 {
		t.Errorf("confidence gap for empty graphs = %v, want 0", m.EntityConfidenceGap)
	}
	if m.RelationConsistency != 1.0 {
		t.Errorf("relation consistency for empty graphs = %v, want 1", m.RelationConsistency)
	}
}

func TestComputeIdenticalGraphs(t *testing.T) {
	a := houseGraph("mug", 0.8)
	b := houseGraph("mug", 0.8)

	m := Compute(a, b)

	if !almostEqual(m.ConceptJSDivergence, 0.0) {
		t.Errorf("js divergence for identical graphs = %v, want ~0", m.ConceptJSDivergence)
	}
	if !almostEqual(m.EntityConfidenceGap, 0.0) {
		t.Errorf("confidence gap for identical graphs = %v, want 0", m.EntityConfidenceGap)
	}
	if m.RelationConsistency != 1.0 {
		t.Errorf("relation consistency for identical graphs = %v, want 1", m.RelationConsistency)
	}
}

func TestJSDivergenceSymmetry(t *testing.T) {
	a := worldmodel.NewGraph()
	a.AddNode(node("o1", "object", 1.0))
	a.AddNode(node("o2", "object", 1.0))
	a.AddNode(node("r1", "receptacle", 1.0))

	b := worldmodel.NewGraph()
	b.AddNode(node("o1", "object", 1.0))
	b.AddNode(node("f1", "furniture", 1.0))

	ab := Compute(a, b).ConceptJSDivergence
	ba := Compute(b, a).ConceptJSDivergence

	if !almostEqual(ab, ba) {
		t.Errorf("js divergence not symmetric: %v vs %v", ab, ba)
	}
	if ab < 0 || ab > math.Ln2+floatTolerance {
		t.Errorf("js divergence %v outside [0, ln 2]", ab)
	}
}

func TestJSDivergenceSmoothedKL(t *testing.T) {
	// One graph all "object", the other all "furniture": fully disjoint
	// type distributions. With the smoothed KL the divergence is
	// 0.5*ln((1+eps)/(0.5+eps)) per side, which is ln 2 to within eps.
	a := worldmodel.NewGraph()
	a.AddNode(node("o1", "object", 1.0))

	b := worldmodel.NewGraph()
	b.AddNode(node("f1", "furniture", 1.0))

	got := Compute(a, b).ConceptJSDivergence
	if !almostEqual(got, math.Ln2) {
		t.Errorf("disjoint distribution divergence = %v, want ~%v", got, math.Ln2)
	}
}

func TestMissingTypeCountsAsUnknown(t *testing.T) {
	a := worldmodel.NewGraph()
	a.AddNode(domain.BeliefNode{ID: "x"})

	b := worldmodel.NewGraph()
	b.AddNode(node("x", "unknown", 1.0))

	if got := Compute(a, b).ConceptJSDivergence; !almostEqual(got, 0.0) {
		t.Errorf("untyped vs explicit unknown divergence = %v, want ~0", got)
	}
}

func TestEntityConfidenceGap(t *testing.T) {
	tests := []struct {
		name string
		a    *worldmodel.Graph
		b    *worldmodel.Graph
		want float64
	}{
		{
			name: "same identifier different confidence",
			a: func() *worldmodel.Graph {
				g := worldmodel.NewGraph()
				g.AddNode(node("mug", "object", 0.9))
				return g
			}(),
			b: func() *worldmodel.Graph {
				g := worldmodel.NewGraph()
				g.AddNode(node("mug", "object", 0.4))
				return g
			}(),
			want: 0.5,
		},
		{
			name: "disjoint identifiers count full confidence",
			a: func() *worldmodel.Graph {
				g := worldmodel.NewGraph()
				g.AddNode(node("mug", "object", 0.9))
				return g
			}(),
			b: func() *worldmodel.Graph {
				g := worldmodel.NewGraph()
				g.AddNode(node("plate", "object", 0.4))
				return g
			}(),
			want: (0.9 + 0.4) / 2,
		},
		{
			name: "missing confidence property defaults to one",
			a: func() *worldmodel.Graph {
				g := worldmodel.NewGraph()
				g.AddNode(domain.BeliefNode{ID: "mug", Properties: map[string]any{domain.PropType: "object"}})
				return g
			}(),
			b: func() *worldmodel.Graph {
				g := worldmodel.NewGraph()
				g.AddNode(node("mug", "object", 0.25))
				return g
			}(),
			want: 0.75,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(tt.a, tt.b).EntityConfidenceGap
			if !almostEqual(got, tt.want) {
				t.Errorf("entity confidence gap = %v, want %v", got, tt.want)
			}
		})
	}
}

// A node absent from one graph contributes its full confidence to the gap:
// missing means zero confidence from that side, not the property default of
// 1.0. Easy to regress by "fixing" the default, hence the dedicated test.
func TestMissingEntityTreatedAsZeroConfidence(t *testing.T) {
	a := worldmodel.NewGraph()
	a.AddNode(node("mug", "object", 0.6))
	a.AddNode(node("plate", "object", 0.8))

	b := worldmodel.NewGraph()
	b.AddNode(node("mug", "object", 0.6))

	// plate: |0.8 - 0.0| over a union of two entities.
	got := Compute(a, b).EntityConfidenceGap
	if !almostEqual(got, 0.4) {
		t.Errorf("entity confidence gap = %v, want 0.4", got)
	}
}

func TestRelationConsistency(t *testing.T) {
	base := func() *worldmodel.Graph {
		g := worldmodel.NewGraph()
		g.AddNode(node("house", "root", 1.0))
		g.AddNode(node("table", "furniture", 1.0))
		g.AddNode(node("mug", "object", 1.0))
		g.AddEdge("house", "table", "contains")
		g.AddEdge("table", "mug", "on")
		return g
	}

	t.Run("identical edge sets", func(t *testing.T) {
		if got := Compute(base(), base()).RelationConsistency; got != 1.0 {
			t.Errorf("consistency = %v, want 1.0", got)
		}
	})

	t.Run("one side empty", func(t *testing.T) {
		empty := worldmodel.NewGraph()
		empty.AddNode(node("house", "root", 1.0))
		if got := Compute(base(), empty).RelationConsistency; got != 0.0 {
			t.Errorf("consistency = %v, want 0.0", got)
		}
	})

	t.Run("partial overlap", func(t *testing.T) {
		b := base()
		b.RemoveEdge("table", "mug")
		b.AddEdge("floor", "mug", "on")
		// Intersection {house->table}, union of three edges.
		if got := Compute(base(), b).RelationConsistency; !almostEqual(got, 1.0/3.0) {
			t.Errorf("consistency = %v, want 1/3", got)
		}
	})

	t.Run("relation label must match exactly", func(t *testing.T) {
		b := base()
		b.AddEdge("table", "mug", "next_to")
		if got := Compute(base(), b).RelationConsistency; !almostEqual(got, 1.0/3.0) {
			t.Errorf("consistency = %v, want 1/3", got)
		}
	})

	t.Run("disjoint non-empty sets", func(t *testing.T) {
		b := worldmodel.NewGraph()
		b.AddNode(node("shelf", "furniture", 1.0))
		b.AddNode(node("bowl", "object", 1.0))
		b.AddEdge("shelf", "bowl", "on")
		if got := Compute(base(), b).RelationConsistency; got != 0.0 {
			t.Errorf("consistency = %v, want 0.0", got)
		}
	})
}

func TestConsistencyBounds(t *testing.T) {
	graphs := []*worldmodel.Graph{
		worldmodel.NewGraph(),
		houseGraph("mug", 0.9),
		houseGraph("plate", 0.4),
	}

	for _, a := range graphs {
		for _, b := range graphs {
			got := Compute(a, b).RelationConsistency
			if got < 0.0 || got > 1.0 {
				t.Errorf("relation consistency %v outside [0, 1]", got)
			}
		}
	}
}

func TestComputeMetricsMap(t *testing.T) {
	m := Compute(houseGraph("robot_obj", 0.9), houseGraph("human_obj", 0.4)).AsMap()

	for _, key := range []string{
		domain.MetricConceptJSDivergence,
		domain.MetricEntityConfidenceGap,
		domain.MetricRelationConsistency,
	} {
		if _, ok := m[key]; !ok {
			t.Errorf("metrics map missing key %q", key)
		}
	}
	if len(m) != 3 {
		t.Errorf("metrics map has %d keys, want 3", len(m))
	}
}
