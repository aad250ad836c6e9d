// Package worldmodel holds in-memory belief graphs and the dual robot/human
// container a planner compares them through.
package worldmodel

import (
	"sort"

	"github.com/beliefdrift/beliefdrift/internal/domain"
)

type edgeKey struct {
	source string
	target string
}

// Graph is an in-memory labeled belief graph. Nodes are keyed by their
// string identifier; edges are keyed by the ordered (source, target) pair,
// so at most one relation exists per pair and the last write wins.
//
// Graph is not safe for concurrent mutation; Container serializes access
// when graphs are shared.
type Graph struct {
	nodes map[string]domain.BeliefNode
	edges map[edgeKey]string
}

func NewGraph() *Graph {
	return &Graph{
		nodes: make(map[string]domain.BeliefNode),
		edges: make(map[edgeKey]string),
	}
}

// AddNode inserts or replaces the node with the same identifier.
func (g *Graph) AddNode(node domain.BeliefNode) {
	g.nodes[node.ID] = node
}

// AddEdge records a directed relation between two node identifiers,
// replacing any previous relation on the same ordered pair.
func (g *Graph) AddEdge(source, target, relation string) {
	g.edges[edgeKey{source: source, target: target}] = relation
}

func (g *Graph) RemoveEdge(source, target string) {
	delete(g.edges, edgeKey{source: source, target: target})
}

// RemoveNode deletes a node and every edge touching it.
func (g *Graph) RemoveNode(id string) {
	delete(g.nodes, id)
	for key := range g.edges {
		if key.source == id || key.target == id {
			delete(g.edges, key)
		}
	}
}

func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

func (g *Graph) IsEmpty() bool {
	return len(g.nodes) == 0 && len(g.edges) == 0
}

func (g *Graph) NodeCount() int { return len(g.nodes) }

func (g *Graph) EdgeCount() int { return len(g.edges) }

// Nodes returns the graph's nodes sorted by identifier for deterministic
// iteration.
func (g *Graph) Nodes() []domain.BeliefNode {
	nodes := make([]domain.BeliefNode, 0, len(g.nodes))
	for _, node := range g.nodes {
		nodes = append(nodes, node)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	return nodes
}

// Edges returns the graph's edges as (source, target, relation) triples
// sorted by source then target.
func (g *Graph) Edges() []domain.BeliefEdge {
	edges := make([]domain.BeliefEdge, 0, len(g.edges))
	for key, relation := range g.edges {
		edges = append(edges, domain.BeliefEdge{Source: key.source, Target: key.target, Relation: relation})
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Source != edges[j].Source {
			return edges[i].Source < edges[j].Source
		}
		return edges[i].Target < edges[j].Target
	})
	return edges
}

// AvgConfidence returns the mean confidence over all nodes, or 1.0 for an
// empty graph (nothing believed, nothing uncertain).
func (g *Graph) AvgConfidence() float64 {
	if len(g.nodes) == 0 {
		return 1.0
	}
	total := 0.0
	for _, node := range g.nodes {
		total += node.Confidence()
	}
	return total / float64(len(g.nodes))
}

// Clone returns a deep copy: node property maps and edges are copied so
// mutating the clone never touches the original.
func (g *Graph) Clone() *Graph {
	c := NewGraph()
	for id, node := range g.nodes {
		props := make(map[string]any, len(node.Properties))
		for k, v := range node.Properties {
			props[k] = v
		}
		c.nodes[id] = domain.BeliefNode{ID: node.ID, Properties: props}
	}
	for key, relation := range g.edges {
		c.edges[key] = relation
	}
	return c
}

// Merge copies every node and edge from other into g, overwriting on
// identifier collision.
func (g *Graph) Merge(other *Graph) {
	for _, node := range other.Nodes() {
		props := make(map[string]any, len(node.Properties))
		for k, v := range node.Properties {
			props[k] = v
		}
		g.nodes[node.ID] = domain.BeliefNode{ID: node.ID, Properties: props}
	}
	for key, relation := range other.edges {
		g.edges[key] = relation
	}
}

var _ domain.GraphSnapshot = (*Graph)(nil)
