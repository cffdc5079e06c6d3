package lsystem

import "fmt"

// rewrite performs one generation. Every module is matched against tree,
// the state before the step, and the result is collected in a fresh tree.
func (ls *LSystem) rewrite(tree ModuleTree) (ModuleTree, error) {
	out := make(ModuleTree, 0, len(tree))
	for i, n := range tree {
		if sub, ok := n.Subtree(); ok {
			branch, err := ls.rewrite(sub)
			if err != nil {
				return nil, err
			}
			out = append(out, Branch(branch))
			continue
		}

		m, _ := n.Module()
		prod, bindings, err := ls.findProduction(tree, i)
		if err != nil {
			return nil, err
		}
		successor, err := prod.Follow(ls.random, bindings)
		if err != nil {
			return nil, fmt.Errorf("rewriting %s with '%s': %w", m, oneLine(prod), err)
		}
		out = append(out, successor...)
	}
	return out, nil
}

// findProduction returns the first production applying to the module at
// level[i] and the actual parameters bound to its formals. Without a match
// the identity production is returned.
func (ls *LSystem) findProduction(level ModuleTree, i int) (Production, []float64, error) {
	m, _ := level[i].Module()
	for _, prod := range ls.productions {
		bindings, ok := bind(prod.Predecessor(), level, i)
		if !ok {
			continue
		}
		applies, err := prod.Condition().Evaluate(bindings)
		if err != nil {
			return nil, nil, fmt.Errorf("condition of '%s' on %s: %w", oneLine(prod), m, err)
		}
		if applies {
			ls.logger.TraceCat(CatDerive, "%s matches '%s'", m, oneLine(prod))
			return prod, bindings, nil
		}
	}
	return NewIdentityProduction(m), m.Parameters, nil
}

// bind matches pred at level[i] and returns the parameters of the left
// context, the module and the right context in that order.
func bind(pred *Predecessor, level ModuleTree, i int) ([]float64, bool) {
	m, _ := level[i].Module()
	if !pred.Matches(m) {
		return nil, false
	}

	var bindings []float64
	if pred.HasLeftContext() {
		pattern := pred.LeftContext.Modules()
		neighbours, ok := leftNeighbours(level, i, len(pattern))
		if !ok || !matchAll(pattern, neighbours) {
			return nil, false
		}
		for _, n := range neighbours {
			bindings = append(bindings, n.Parameters...)
		}
	}

	bindings = append(bindings, m.Parameters...)

	if pred.HasRightContext() {
		pattern := pred.RightContext.Modules()
		neighbours, ok := rightNeighbours(level, i, len(pattern))
		if !ok || !matchAll(pattern, neighbours) {
			return nil, false
		}
		for _, n := range neighbours {
			bindings = append(bindings, n.Parameters...)
		}
	}
	return bindings, true
}

func matchAll(pattern []ModuleTemplate, modules []Module) bool {
	for k := range pattern {
		if pattern[k].Key() != modules[k].Key() {
			return false
		}
	}
	return true
}

// leftNeighbours collects the count nearest modules left of i on the same
// level, skipping branches, in left to right order.
func leftNeighbours(level ModuleTree, i, count int) ([]Module, bool) {
	out := make([]Module, count)
	k := count - 1
	for j := i - 1; j >= 0 && k >= 0; j-- {
		if m, ok := level[j].Module(); ok {
			out[k] = m
			k--
		}
	}
	return out, k < 0
}

// rightNeighbours collects the count nearest modules right of i on the
// same level, skipping branches.
func rightNeighbours(level ModuleTree, i, count int) ([]Module, bool) {
	out := make([]Module, 0, count)
	for j := i + 1; j < len(level) && len(out) < count; j++ {
		if m, ok := level[j].Module(); ok {
			out = append(out, m)
		}
	}
	return out, len(out) == count
}
