package policy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/guidebook/model/graph"
)

func TestPolicy_Approve(t *testing.T) {
	approveOnce := func(ctx context.Context, leaf *graph.Leaf, p *Policy) (bool, error) {
		p.Mode = ModeAuto
		return true, nil
	}
	testCases := []struct {
		description string
		policy      *Policy
		key         string
		expect      bool
		expectMode  string
	}{
		{description: "nil policy", expect: true},
		{description: "auto", policy: &Policy{Mode: ModeAuto}, expect: true, expectMode: ModeAuto},
		{description: "deny", policy: &Policy{Mode: ModeDeny}, expect: false, expectMode: ModeDeny},
		{description: "blocked key", policy: &Policy{BlockList: []string{"Install"}}, key: "install", expect: false},
		{description: "not in allow list", policy: &Policy{AllowList: []string{"setup"}}, key: "install", expect: false},
		{description: "in allow list", policy: &Policy{AllowList: []string{"setup"}}, key: "SETUP", expect: true},
		{description: "ask switches to auto", policy: &Policy{Mode: ModeAsk, Ask: approveOnce}, expect: true, expectMode: ModeAuto},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			ctx := WithPolicy(context.Background(), tc.policy)
			p := FromContext(ctx)
			actual, err := p.Approve(ctx, &graph.Leaf{Meta: graph.Meta{Key: tc.key}})
			require.NoError(t, err)
			assert.Equal(t, tc.expect, actual)
			if tc.policy != nil {
				assert.Equal(t, tc.expectMode, tc.policy.Mode)
			}
		})
	}
}

func TestConfig(t *testing.T) {
	p := FromConfig(&Config{Mode: ModeAsk, BlockList: []string{"x"}})
	assert.Equal(t, &Config{Mode: ModeAsk, BlockList: []string{"x"}}, ToConfig(p))
	assert.Nil(t, ToConfig(nil))
	assert.Nil(t, FromConfig(nil))
}
