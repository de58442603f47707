package graph

func IsSequence(n Node) bool    { return kindOf(n) == KindSequence }
func IsParallel(n Node) bool    { return kindOf(n) == KindParallel }
func IsChoice(n Node) bool      { return kindOf(n) == KindChoice }
func IsTitledSteps(n Node) bool { return kindOf(n) == KindTitledSteps }
func IsSubTask(n Node) bool     { return kindOf(n) == KindSubTask }
func IsLeaf(n Node) bool        { return kindOf(n) == KindLeaf }

// IsEmpty reports whether n denotes the empty graph.
func IsEmpty(n Node) bool { return kindOf(n) == 0 }

// IsValidatable reports whether n carries a validate expression.
func IsValidatable(n Node) bool {
	if IsEmpty(n) {
		return false
	}
	return n.Metadata().Validate != nil
}

func HasKey(n Node) bool {
	if IsEmpty(n) {
		return false
	}
	return n.Metadata().Key != ""
}

func HasProvenance(n Node) bool {
	if IsEmpty(n) {
		return false
	}
	return len(n.Metadata().Provenance) > 0
}

// kindOf tolerates typed nil pointers stored in a Node.
func kindOf(n Node) Kind {
	switch actual := n.(type) {
	case nil:
		return 0
	case *Sequence:
		if actual == nil {
			return 0
		}
	case *Parallel:
		if actual == nil {
			return 0
		}
	case *Choice:
		if actual == nil {
			return 0
		}
	case *TitledSteps:
		if actual == nil {
			return 0
		}
	case *SubTask:
		if actual == nil {
			return 0
		}
	case *Leaf:
		if actual == nil {
			return 0
		}
	}
	return n.Kind()
}

// Children returns the nested graphs of a composite node in declaration
// order. Options and steps with an empty graph contribute nil entries.
func Children(n Node) []Node {
	switch actual := n.(type) {
	case *Sequence:
		return actual.Children
	case *Parallel:
		return actual.Children
	case *Choice:
		result := make([]Node, 0, len(actual.Options))
		for _, option := range actual.Options {
			result = append(result, option.Graph)
		}
		return result
	case *TitledSteps:
		result := make([]Node, 0, len(actual.Steps))
		for _, step := range actual.Steps {
			result = append(result, step.Graph)
		}
		return result
	case *SubTask:
		return []Node{actual.Graph}
	}
	return nil
}

// Title returns the display title a node introduces, if any.
func Title(n Node) string {
	if IsEmpty(n) {
		return ""
	}
	switch actual := n.(type) {
	case *Choice:
		return actual.Title
	case *TitledSteps:
		return actual.Title
	case *SubTask:
		return actual.Title
	case *Leaf:
		return actual.Title
	}
	return ""
}

// Walk visits n and every nested node depth-first; returning false from
// visit skips the subtree.
func Walk(n Node, visit func(Node) bool) {
	if IsEmpty(n) || !visit(n) {
		return
	}
	for _, child := range Children(n) {
		Walk(child, visit)
	}
}
