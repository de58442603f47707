package optimizer

import (
	"context"
	"fmt"

	"github.com/viant/guidebook/internal/logx"
	"github.com/viant/guidebook/model/graph"
	"github.com/viant/guidebook/progress"
	"github.com/viant/guidebook/tracing"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// CollapseValidated removes every subtree whose validation is already
// satisfied. It returns nil when the whole graph collapses.
func CollapseValidated(ctx context.Context, node graph.Node, options *Options, title string) (graph.Node, error) {
	if options == nil {
		options = NewOptions()
	}
	if options.StatusMemo == nil {
		options.StatusMemo = NewStatusMemo()
	}
	if !options.Optimization.Enabled(PassValidate) {
		return node, nil
	}
	pass := &validatePass{options: options}
	return pass.collapse(ctx, node, title)
}

type validatePass struct {
	options *Options
	flight  singleflight.Group
}

func (p *validatePass) collapse(ctx context.Context, node graph.Node, title string) (graph.Node, error) {
	if graph.IsEmpty(node) || p.options.vetoed(node) {
		return node, nil
	}
	if graph.IsValidatable(node) {
		satisfied, err := p.validate(ctx, node, title)
		if err != nil {
			return nil, err
		}
		if satisfied {
			progress.UpdateCtx(ctx, progress.Delta{Pruned: 1})
			return nil, nil
		}
	}

	switch actual := node.(type) {
	case *graph.Sequence:
		children, err := p.survivors(ctx, actual.Children, title)
		if err != nil || len(children) == 0 {
			return nil, err
		}
		return &graph.Sequence{Meta: actual.Meta, Children: children}, nil
	case *graph.Parallel:
		children, err := p.survivors(ctx, actual.Children, title)
		if err != nil || len(children) == 0 {
			return nil, err
		}
		return &graph.Parallel{Meta: actual.Meta, Children: children}, nil
	case *graph.Choice:
		if len(actual.Options) == 0 {
			return nil, nil
		}
		titles := make([]string, len(actual.Options))
		nested := make([]graph.Node, len(actual.Options))
		for i, option := range actual.Options {
			titles[i] = titleOr(option.Title, title)
			nested[i] = option.Graph
		}
		collapsed, err := p.collapseAll(ctx, nested, titles)
		if err != nil {
			return nil, err
		}
		ret := *actual
		ret.Options = make([]*graph.Option, len(actual.Options))
		for i, option := range actual.Options {
			ret.Options[i] = &graph.Option{Title: option.Title, Description: option.Description, Graph: collapsed[i]}
		}
		return &ret, nil
	case *graph.TitledSteps:
		if len(actual.Steps) == 0 {
			return nil, nil
		}
		titles := make([]string, len(actual.Steps))
		nested := make([]graph.Node, len(actual.Steps))
		for i, step := range actual.Steps {
			titles[i] = titleOr(step.Title, titleOr(actual.Title, title))
			nested[i] = step.Graph
		}
		collapsed, err := p.collapseAll(ctx, nested, titles)
		if err != nil {
			return nil, err
		}
		ret := *actual
		ret.Steps = make([]*graph.Step, len(actual.Steps))
		for i, step := range actual.Steps {
			ret.Steps[i] = &graph.Step{Title: step.Title, Description: step.Description, Graph: collapsed[i]}
		}
		return &ret, nil
	case *graph.SubTask:
		nested, err := p.collapse(ctx, actual.Graph, titleOr(actual.Title, title))
		if err != nil || graph.IsEmpty(nested) {
			return nil, err
		}
		return &graph.SubTask{Meta: actual.Meta, Title: actual.Title, Graph: nested}, nil
	}
	return node, nil
}

// survivors collapses children concurrently and keeps the non-empty ones
// in their original order.
func (p *validatePass) survivors(ctx context.Context, children []graph.Node, title string) ([]graph.Node, error) {
	titles := make([]string, len(children))
	for i, child := range children {
		titles[i] = titleOr(graph.Title(child), title)
	}
	collapsed, err := p.collapseAll(ctx, children, titles)
	if err != nil {
		return nil, err
	}
	var ret []graph.Node
	for _, child := range collapsed {
		if !graph.IsEmpty(child) {
			ret = append(ret, child)
		}
	}
	return ret, nil
}

func (p *validatePass) collapseAll(ctx context.Context, nodes []graph.Node, titles []string) ([]graph.Node, error) {
	ret := make([]graph.Node, len(nodes))
	group, gCtx := errgroup.WithContext(ctx)
	for i := range nodes {
		group.Go(func() error {
			collapsed, err := p.collapse(gCtx, nodes[i], titles[i])
			ret[i] = collapsed
			return err
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return ret, nil
}

// validate reports whether node is satisfied. Only successes are cached as
// terminal; a failed validation runs again on the next pass.
func (p *validatePass) validate(ctx context.Context, node graph.Node, title string) (bool, error) {
	validation := node.Metadata().Validate
	if validation.Always {
		return true, nil
	}
	if validation.Command == "" {
		return false, nil
	}
	key := memoKey(node)
	memo := p.options.StatusMemo
	if memo.Succeeded(key) {
		return true, nil
	}
	if p.options.Validator == nil {
		return false, nil
	}
	status, err, _ := p.flight.Do(key, func() (interface{}, error) {
		if memo.Succeeded(key) {
			return graph.StatusSuccess, nil
		}
		return p.runValidation(ctx, key, validation.Command, title)
	})
	if err != nil {
		return false, err
	}
	return status.(graph.Status).IsSuccess(), nil
}

func (p *validatePass) runValidation(ctx context.Context, key, command, title string) (graph.Status, error) {
	logger := logx.FromContext(ctx)
	if !p.options.Quiet && title != "" {
		logger.Debug("validating", zap.String("title", title), zap.String("key", key))
	}
	spanCtx, span := tracing.StartSpan(ctx, "optimizer.validate")
	span.WithAttributes(map[string]string{"key": key, "title": title})
	status, err := p.options.Validator.Validate(spanCtx, command)
	tracing.EndSpan(span, err)
	progress.UpdateCtx(ctx, progress.Delta{Validated: 1})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("failed to validate %v: %w", key, ctxErr)
		}
		logger.Debug("validation did not run", zap.String("key", key), zap.Error(err))
		status = graph.StatusFailure
	}
	if status == "" {
		status = graph.StatusFailure
	}
	p.options.StatusMemo.Put(key, status)
	return status, nil
}

func titleOr(title, fallback string) string {
	if title != "" {
		return title
	}
	return fallback
}
