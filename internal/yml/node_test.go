package yml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func parse(t *testing.T, text string) *Node {
	var node yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(text), &node))
	return (*Node)(&node).Root()
}

func TestNode(t *testing.T) {
	node := parse(t, `
Title: Install
optional: true
tags: [a, b]
count: 3
ratio: 0.5
empty: ~
`)
	title := node.Lookup("title")
	require.NotNil(t, title)
	value, err := title.String()
	require.NoError(t, err)
	assert.Equal(t, "Install", value)

	flag, err := node.Lookup("optional").Bool()
	require.NoError(t, err)
	assert.True(t, flag)

	tags, err := node.Lookup("tags").Strings()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, tags)

	_, err = node.Lookup("tags").String()
	assert.Error(t, err)
	_, err = title.Bool()
	assert.Error(t, err)
	assert.False(t, node.Has("missing"))
	assert.Nil(t, title.Lookup("x"))

	assert.Equal(t, map[string]interface{}{
		"Title":    "Install",
		"optional": true,
		"tags":     []interface{}{"a", "b"},
		"count":    3,
		"ratio":    0.5,
		"empty":    nil,
	}, node.Interface())

	var keys []string
	require.NoError(t, node.Pairs(func(key string, _ *Node) error {
		keys = append(keys, key)
		return nil
	}))
	assert.Equal(t, []string{"Title", "optional", "tags", "count", "ratio", "empty"}, keys)
	assert.Error(t, node.Items(func(int, *Node) error { return nil }))
}
