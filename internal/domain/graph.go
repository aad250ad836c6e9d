package domain

// Well-known node property names and their fallbacks.
const (
	PropType       = "type"
	PropConfidence = "confidence"

	TypeUnknown       = "unknown"
	DefaultConfidence = 1.0
)

// BeliefNode is a single entity in a belief graph: a unique string
// identifier plus arbitrary properties. Identifiers are unique within one
// graph; across graphs, nodes are matched by identifier value only.
type BeliefNode struct {
	ID         string         `json:"id"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Type returns the node's category label, or TypeUnknown when unset.
func (n BeliefNode) Type() string {
	if t, ok := n.Properties[PropType].(string); ok && t != "" {
		return t
	}
	return TypeUnknown
}

// Confidence returns the node's confidence property, or DefaultConfidence
// when the property is missing or not numeric.
func (n BeliefNode) Confidence() float64 {
	switch v := n.Properties[PropConfidence].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	}
	return DefaultConfidence
}

// BeliefEdge is a directed relation between two nodes, identified by the
// source and target node IDs. Only one relation per ordered pair is kept.
type BeliefEdge struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	Relation string `json:"relation"`
}

// GraphSnapshot is the read contract divergence computation needs from a
// belief graph: nodes with properties and edges as triples. Implementations
// must return a consistent view for the duration of a single comparison.
type GraphSnapshot interface {
	Nodes() []BeliefNode
	Edges() []BeliefEdge
}

// Role identifies which belief a graph represents inside a dual-graph
// container.
type Role string

const (
	RoleRobot Role = "robot"
	RoleHuman Role = "human"
)

func ValidRole(r string) bool {
	switch Role(r) {
	case RoleRobot, RoleHuman:
		return true
	}
	return false
}

func AllRoles() []Role {
	return []Role{RoleRobot, RoleHuman}
}
