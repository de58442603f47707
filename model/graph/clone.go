package graph

// Clone creates a deep copy of a graph.
func Clone(n Node) Node {
	if IsEmpty(n) {
		return nil
	}
	switch actual := n.(type) {
	case *Sequence:
		return &Sequence{Meta: actual.Meta.clone(), Children: cloneAll(actual.Children)}
	case *Parallel:
		return &Parallel{Meta: actual.Meta.clone(), Children: cloneAll(actual.Children)}
	case *Choice:
		clone := &Choice{Meta: actual.Meta.clone(), GroupContext: actual.GroupContext, Title: actual.Title}
		if actual.Options != nil {
			clone.Options = make([]*Option, len(actual.Options))
			for i, option := range actual.Options {
				clone.Options[i] = &Option{Title: option.Title, Description: option.Description, Graph: Clone(option.Graph)}
			}
		}
		if actual.Form != nil {
			clone.Form = &Form{Fields: make([]*Field, len(actual.Form.Fields))}
			for i, field := range actual.Form.Fields {
				f := *field
				f.Options = append([]string(nil), field.Options...)
				clone.Form.Fields[i] = &f
			}
		}
		return clone
	case *TitledSteps:
		clone := &TitledSteps{Meta: actual.Meta.clone(), Title: actual.Title, Description: actual.Description}
		if actual.Steps != nil {
			clone.Steps = make([]*Step, len(actual.Steps))
			for i, step := range actual.Steps {
				clone.Steps[i] = &Step{Title: step.Title, Description: step.Description, Graph: Clone(step.Graph)}
			}
		}
		return clone
	case *SubTask:
		return &SubTask{Meta: actual.Meta.clone(), Title: actual.Title, Graph: Clone(actual.Graph)}
	case *Leaf:
		clone := *actual
		clone.Meta = actual.Meta.clone()
		return &clone
	}
	return n
}

func cloneAll(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	result := make([]Node, len(nodes))
	for i, n := range nodes {
		result[i] = Clone(n)
	}
	return result
}

func (m Meta) clone() Meta {
	clone := Meta{Key: m.Key}
	if m.Provenance != nil {
		clone.Provenance = append([]string(nil), m.Provenance...)
	}
	if m.Validate != nil {
		v := *m.Validate
		clone.Validate = &v
	}
	return clone
}
