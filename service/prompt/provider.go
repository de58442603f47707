// Package prompt asks guidebook questions on a terminal. Provider is the
// contract the guide depends on; Service is the line based implementation
// reading from an io.Reader, so tests can script the answers.
package prompt

import (
	"context"

	"github.com/viant/guidebook/model/graph"
)

// Question is a single or multiple choice question.
type Question struct {
	Title       string
	Description string
	Options     []string
	// Suggestions hold prior answers, offered first and used on an empty reply.
	Suggestions []string
}

// Suggestion returns the first suggestion naming an option, if any.
func (q *Question) Suggestion() string {
	valid := q.ValidSuggestions()
	if len(valid) == 0 {
		return ""
	}
	return valid[0]
}

// ValidSuggestions returns the suggestions that name one of the options.
// Stale answers for options no longer offered are skipped.
func (q *Question) ValidSuggestions() []string {
	var ret []string
	for _, suggestion := range q.Suggestions {
		for _, option := range q.Options {
			if option == suggestion {
				ret = append(ret, suggestion)
				break
			}
		}
	}
	return ret
}

// Provider collects answers. Implementations return types.ErrCanceled
// when the user dismisses a question.
type Provider interface {
	Select(ctx context.Context, question *Question) (string, error)
	MultiSelect(ctx context.Context, question *Question) ([]string, error)
	Form(ctx context.Context, title string, fields []*graph.Field, prior map[string]string) (map[string]string, error)
	Confirm(ctx context.Context, message string) (bool, error)
}
