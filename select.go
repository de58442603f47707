package guidebook

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/viant/guidebook/internal/logx"
	"github.com/viant/guidebook/service/prompt"
	"go.uber.org/zap"
)

// Select asks the user to pick one (or, with multi, several) of items and
// stores the answer in the profile under key. A single answer is stored as
// is, several as a JSON list. The prior answer is offered first when it still
// names one of items.
func (s *Service) Select(ctx context.Context, key string, items []string, multi bool) ([]string, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("no options to select %v from", key)
	}
	ctx = logx.WithLogger(ctx, s.logger)
	manager := s.profileManager()
	choices, _, err := manager.Init(ctx, nil, true)
	if err != nil {
		return nil, err
	}
	defer manager.Close()

	question := &prompt.Question{Title: key, Options: items}
	if prior, ok := choices.GetKey(key); ok {
		question.Suggestions = decodeSelection(prior)
		question.Suggestions = question.ValidSuggestions()
	}
	var selected []string
	if multi {
		if selected, err = s.prompter.MultiSelect(ctx, question); err != nil {
			return nil, err
		}
		encoded, err := json.Marshal(selected)
		if err != nil {
			return nil, err
		}
		choices.SetKey(key, string(encoded))
	} else {
		answer, err := s.prompter.Select(ctx, question)
		if err != nil {
			return nil, err
		}
		selected = []string{answer}
		choices.SetKey(key, answer)
	}
	if err = manager.Cleanup(ctx); err != nil {
		logx.FromContext(ctx).Warn("failed to save profile", zap.Error(err))
	}
	return selected, nil
}

func decodeSelection(value string) []string {
	var list []string
	if err := json.Unmarshal([]byte(value), &list); err == nil {
		return list
	}
	return []string{value}
}
