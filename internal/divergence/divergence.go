// Package divergence measures how far two belief graphs have drifted apart.
package divergence

import (
	"math"

	"github.com/beliefdrift/beliefdrift/internal/domain"
)

// smoothingEps is added to both the numerator and denominator inside the KL
// log term. The smoothed form is deliberate: downstream thresholds were
// tuned against it, so it must not be replaced with the exact textbook KL.
const smoothingEps = 1e-9

// Compute compares two belief graph snapshots and returns the three
// divergence metrics. It is pure and safe for concurrent use; empty graphs
// are valid inputs.
func Compute(a, b domain.GraphSnapshot) domain.DivergenceMetrics {
	return domain.DivergenceMetrics{
		ConceptJSDivergence: jensenShannon(typeDistribution(a), typeDistribution(b)),
		EntityConfidenceGap: entityConfidenceGap(a, b),
		RelationConsistency: relationConsistency(a, b),
	}
}

// typeDistribution builds a probability distribution over the type labels
// observed in a graph. An empty graph yields an empty distribution.
func typeDistribution(g domain.GraphSnapshot) map[string]float64 {
	counts := make(map[string]float64)
	total := 0.0
	for _, node := range g.Nodes() {
		counts[node.Type()]++
		total++
	}
	if total == 0 {
		return map[string]float64{}
	}
	dist := make(map[string]float64, len(counts))
	for label, count := range counts {
		dist[label] = count / total
	}
	return dist
}

func klDivergence(p, q map[string]float64) float64 {
	d := 0.0
	for key, pVal := range p {
		qVal := q[key]
		if qVal == 0 {
			qVal = smoothingEps
		}
		d += pVal * math.Log((pVal+smoothingEps)/(qVal+smoothingEps))
	}
	return d
}

// jensenShannon is the symmetric, bounded divergence between two
// distributions: the mean of each side's KL divergence against their
// midpoint mixture. Two empty distributions diverge by 0.
func jensenShannon(p, q map[string]float64) float64 {
	if len(p) == 0 && len(q) == 0 {
		return 0.0
	}
	m := make(map[string]float64, len(p)+len(q))
	for key, v := range p {
		m[key] += 0.5 * v
	}
	for key, v := range q {
		m[key] += 0.5 * v
	}
	return 0.5*klDivergence(p, m) + 0.5*klDivergence(q, m)
}

// entityConfidenceGap averages the absolute confidence difference per
// entity over the union of node identifiers. An entity absent from one
// graph contributes its full confidence: missing means zero confidence
// from that graph's perspective, not the property default of 1.0.
func entityConfidenceGap(a, b domain.GraphSnapshot) float64 {
	confA := nodeConfidences(a)
	confB := nodeConfidences(b)

	union := make(map[string]struct{}, len(confA)+len(confB))
	for id := range confA {
		union[id] = struct{}{}
	}
	for id := range confB {
		union[id] = struct{}{}
	}
	if len(union) == 0 {
		return 0.0
	}

	total := 0.0
	for id := range union {
		total += math.Abs(confA[id] - confB[id])
	}
	return total / float64(len(union))
}

func nodeConfidences(g domain.GraphSnapshot) map[string]float64 {
	conf := make(map[string]float64)
	for _, node := range g.Nodes() {
		conf[node.ID] = node.Confidence()
	}
	return conf
}

// relationConsistency is the Jaccard overlap of the two edge sets, with
// edges compared as exact (source, target, relation) triples. Two empty
// graphs are fully consistent; one empty side is fully inconsistent.
func relationConsistency(a, b domain.GraphSnapshot) float64 {
	edgesA := edgeSet(a)
	edgesB := edgeSet(b)

	if len(edgesA) == 0 && len(edgesB) == 0 {
		return 1.0
	}
	if len(edgesA) == 0 || len(edgesB) == 0 {
		return 0.0
	}

	intersection := 0
	union := len(edgesB)
	for e := range edgesA {
		if _, ok := edgesB[e]; ok {
			intersection++
		} else {
			union++
		}
	}
	return float64(intersection) / float64(union)
}

func edgeSet(g domain.GraphSnapshot) map[domain.BeliefEdge]struct{} {
	set := make(map[domain.BeliefEdge]struct{})
	for _, e := range g.Edges() {
		set[e] = struct{}{}
	}
	return set
}
