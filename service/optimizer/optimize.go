package optimizer

import (
	"context"

	"github.com/viant/guidebook/internal/logx"
	"github.com/viant/guidebook/model/graph"
	"github.com/viant/guidebook/progress"
	"github.com/viant/guidebook/service/choice"
	"github.com/viant/guidebook/tracing"
	"go.uber.org/zap"
)

// Optimize runs the enabled passes in order. choices, when non nil, feeds
// the made-choice pass; the validation pass always runs last.
func Optimize(ctx context.Context, node graph.Node, options *Options, choices *choice.State) (result graph.Node, err error) {
	if options == nil {
		options = NewOptions()
	}
	ctx, span := tracing.StartSpan(ctx, "optimizer.optimize")
	defer func() { tracing.EndSpan(span, err) }()

	before := progress.Progress{}
	if tracker, ok := progress.FromContext(ctx); ok {
		before = tracker.Snapshot()
	}
	result = node
	if choices != nil {
		result = CollapseMadeChoices(ctx, result, choices, options)
	}
	if result, err = CollapseValidated(ctx, result, options, graph.Title(result)); err != nil {
		return nil, err
	}
	if tracker, ok := progress.FromContext(ctx); ok {
		after := tracker.Snapshot()
		logx.FromContext(ctx).Debug("optimized",
			zap.Int("validated", after.Validated-before.Validated),
			zap.Int("pruned", after.Pruned-before.Pruned),
			zap.Bool("empty", graph.IsEmpty(result)))
	}
	return result, nil
}
