package lsystem

import "strings"

// Node is either a leaf holding a module or a bracketed branch
type Node[M Symbol] struct {
	module   M
	branch   Tree[M]
	isBranch bool
}

// Leaf wraps a module
func Leaf[M Symbol](m M) Node[M] {
	return Node[M]{module: m}
}

// Branch wraps a sub tree
func Branch[M Symbol](t Tree[M]) Node[M] {
	return Node[M]{branch: t, isBranch: true}
}

// IsBranch reports whether the node is a bracketed sub tree
func (n Node[M]) IsBranch() bool {
	return n.isBranch
}

// Module returns the module of a leaf
func (n Node[M]) Module() (M, bool) {
	return n.module, !n.isBranch
}

// Subtree returns the sub tree of a branch
func (n Node[M]) Subtree() (Tree[M], bool) {
	return n.branch, n.isBranch
}

// Tree is an ordered sequence of nodes. Sibling order is left to right and
// nested branches correspond to turtle push/pop.
type Tree[M Symbol] []Node[M]

// ModuleTree is a tree of actual modules, as produced by a derivation
type ModuleTree = Tree[Module]

// TemplateTree is a tree of module templates, as written in a successor
type TemplateTree = Tree[ModuleTemplate]

// NewTree builds a flat tree of leaves
func NewTree[M Symbol](modules ...M) Tree[M] {
	t := make(Tree[M], len(modules))
	for i, m := range modules {
		t[i] = Leaf(m)
	}
	return t
}

// Modules flattens the tree depth first
func (t Tree[M]) Modules() []M {
	var out []M
	t.collect(&out)
	return out
}

func (t Tree[M]) collect(out *[]M) {
	for _, n := range t {
		if n.isBranch {
			n.branch.collect(out)
		} else {
			*out = append(*out, n.module)
		}
	}
}

// Len counts the modules in the tree, branches included
func (t Tree[M]) Len() int {
	count := 0
	for _, n := range t {
		if n.isBranch {
			count += n.branch.Len()
		} else {
			count++
		}
	}
	return count
}

// Counts tallies the modules by name and arity
func (t Tree[M]) Counts() map[ModuleKey]int {
	counts := make(map[ModuleKey]int)
	for _, m := range t.Modules() {
		counts[m.Key()]++
	}
	return counts
}

// Depth returns the deepest branch nesting level
func (t Tree[M]) Depth() int {
	depth := 0
	for _, n := range t {
		if n.isBranch {
			if d := n.branch.Depth() + 1; d > depth {
				depth = d
			}
		}
	}
	return depth
}

func (t Tree[M]) String() string {
	parts := make([]string, 0, len(t))
	for _, n := range t {
		if n.isBranch {
			inner := n.branch.String()
			if inner == "" {
				parts = append(parts, "[ ]")
			} else {
				parts = append(parts, "[ "+inner+" ]")
			}
		} else {
			parts = append(parts, n.module.String())
		}
	}
	return strings.Join(parts, " ")
}
