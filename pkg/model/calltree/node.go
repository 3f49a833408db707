package calltree

// tree is an arena of call tree nodes. The synthetic root lives at index 0
// and is its own parent.
type tree struct {
	nodes []node
}

type node struct {
	frame    *Frame
	parent   int32
	children []int32
	total    float64
	self     float64
}

const rootIndex int32 = 0

func newTree() *tree {
	return &tree{nodes: []node{{parent: rootIndex}}}
}

func (t *tree) addChild(parent int32, f *Frame) int32 {
	i := int32(len(t.nodes))
	t.nodes = append(t.nodes, node{frame: f, parent: parent})
	t.nodes[parent].children = append(t.nodes[parent].children, i)
	return i
}

func (t *tree) root() Node { return Node{t: t, i: rootIndex} }

// Node is a handle to one occurrence of a frame in a call tree. Nodes are
// comparable; the zero Node is invalid and stands for "no node".
type Node struct {
	t *tree
	i int32
}

func (n Node) Valid() bool { return n.t != nil }

func (n Node) IsRoot() bool { return n.Valid() && n.t.nodes[n.i].parent == n.i }

// Index is the position of the node in its tree arena.
func (n Node) Index() int { return int(n.i) }

// Frame returns the frame of the node, or nil for the root.
func (n Node) Frame() *Frame {
	if !n.Valid() {
		return nil
	}
	return n.t.nodes[n.i].frame
}

// Parent returns the parent node. The parent of the root is the zero Node.
func (n Node) Parent() Node {
	if !n.Valid() || n.IsRoot() {
		return Node{}
	}
	return Node{t: n.t, i: n.t.nodes[n.i].parent}
}

func (n Node) Children() []Node {
	if !n.Valid() {
		return nil
	}
	children := n.t.nodes[n.i].children
	out := make([]Node, len(children))
	for j, c := range children {
		out[j] = Node{t: n.t, i: c}
	}
	return out
}

// TotalWeight is the weight of the node and all of its descendants.
func (n Node) TotalWeight() float64 {
	if !n.Valid() {
		return 0
	}
	return n.t.nodes[n.i].total
}

// SelfWeight is the weight attributed directly to the node.
func (n Node) SelfWeight() float64 {
	if !n.Valid() {
		return 0
	}
	return n.t.nodes[n.i].self
}

func (n Node) String() string {
	switch {
	case !n.Valid():
		return "<nil>"
	case n.IsRoot():
		return "<root>"
	}
	return n.Frame().Name
}
