package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/guidebook/service/dao"
)

type record struct {
	ID    string
	Value int
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore[string, record](func(r *record) string { return r.ID }, func(r *record) *record {
		c := *r
		return &c
	})
	assert.ErrorIs(t, s.Save(ctx, nil), dao.ErrNilEntity)
	assert.ErrorIs(t, s.Save(ctx, &record{}), dao.ErrInvalidID)

	original := &record{ID: "b", Value: 1}
	require.NoError(t, s.Save(ctx, original))
	require.NoError(t, s.Save(ctx, &record{ID: "a", Value: 2}))
	original.Value = 10

	loaded, err := s.Load(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Value)

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []*record{{ID: "a", Value: 2}, {ID: "b", Value: 1}}, all)

	require.NoError(t, s.Delete(ctx, "a"))
	assert.ErrorIs(t, s.Delete(ctx, "a"), dao.ErrNotFound)
	_, err = s.Load(ctx, "a")
	assert.ErrorIs(t, err, dao.ErrNotFound)
}
