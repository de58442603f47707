package optimizer

import (
	"context"

	"github.com/viant/guidebook/model/graph"
	"github.com/viant/guidebook/progress"
	"github.com/viant/guidebook/service/choice"
)

// CollapseMadeChoices replaces every answered choice with the graph of
// the selected option. Form choices and answers naming no option are left
// for the guide to resolve.
func CollapseMadeChoices(ctx context.Context, node graph.Node, choices *choice.State, options *Options) graph.Node {
	if options == nil {
		options = NewOptions()
	}
	if choices == nil || !options.Optimization.Enabled(PassChoices) {
		return node
	}
	return collapseChoices(ctx, node, choices, options)
}

func collapseChoices(ctx context.Context, node graph.Node, choices *choice.State, options *Options) graph.Node {
	if graph.IsEmpty(node) || options.vetoed(node) {
		return node
	}
	switch actual := node.(type) {
	case *graph.Sequence:
		children := collapseChoicesAll(ctx, actual.Children, choices, options)
		if len(children) == 0 {
			return nil
		}
		return &graph.Sequence{Meta: actual.Meta, Children: children}
	case *graph.Parallel:
		children := collapseChoicesAll(ctx, actual.Children, choices, options)
		if len(children) == 0 {
			return nil
		}
		return &graph.Parallel{Meta: actual.Meta, Children: children}
	case *graph.Choice:
		if !actual.IsForm() {
			if answer, ok := choices.Get(actual); ok {
				if option := actual.Option(answer); option != nil {
					progress.UpdateCtx(ctx, progress.Delta{Pruned: 1})
					return collapseChoices(ctx, option.Graph, choices, options)
				}
			}
		}
		if len(actual.Options) == 0 {
			return actual
		}
		ret := *actual
		ret.Options = make([]*graph.Option, len(actual.Options))
		for i, option := range actual.Options {
			ret.Options[i] = &graph.Option{Title: option.Title, Description: option.Description, Graph: collapseChoices(ctx, option.Graph, choices, options)}
		}
		return &ret
	case *graph.TitledSteps:
		if len(actual.Steps) == 0 {
			return actual
		}
		ret := *actual
		ret.Steps = make([]*graph.Step, len(actual.Steps))
		for i, step := range actual.Steps {
			ret.Steps[i] = &graph.Step{Title: step.Title, Description: step.Description, Graph: collapseChoices(ctx, step.Graph, choices, options)}
		}
		return &ret
	case *graph.SubTask:
		nested := collapseChoices(ctx, actual.Graph, choices, options)
		if graph.IsEmpty(nested) {
			return nil
		}
		return &graph.SubTask{Meta: actual.Meta, Title: actual.Title, Graph: nested}
	}
	return node
}

func collapseChoicesAll(ctx context.Context, nodes []graph.Node, choices *choice.State, options *Options) []graph.Node {
	var ret []graph.Node
	for _, node := range nodes {
		if collapsed := collapseChoices(ctx, node, choices, options); !graph.IsEmpty(collapsed) {
			ret = append(ret, collapsed)
		}
	}
	return ret
}
