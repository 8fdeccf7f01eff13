package permission

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	blocks := []Block{
		{
			Actions:    []string{"a/read", "a/write"},
			NotActions: []string{"a/delete"},
		},
		{
			Actions:     []string{"a/read", "b/read"},
			DataActions: []string{"d/read"},
		},
	}

	s := Extract(blocks)

	assert.Equal(t, []string{"a/read", "a/write", "b/read"}, SortedKeys(s.Actions))
	assert.Equal(t, []string{"a/delete"}, SortedKeys(s.NotActions))
	assert.Equal(t, []string{"d/read"}, SortedKeys(s.DataActions))
	assert.Empty(t, SortedKeys(s.NotDataActions))
}

func TestActionSetBlock_SortedAndDeduplicated(t *testing.T) {
	s := NewActionSet()
	s.Actions["b/read"] = struct{}{}
	s.Actions["a/read"] = struct{}{}
	s.DataActions["d/read"] = struct{}{}

	b := s.Block()

	assert.Equal(t, []string{"a/read", "b/read"}, b.Actions)
	assert.Equal(t, []string{"d/read"}, b.DataActions)
	assert.Nil(t, b.NotActions)
	assert.Nil(t, b.NotDataActions)
}

func TestMergeBlocks_AlwaysOneBlock(t *testing.T) {
	existing := []Block{
		{Actions: []string{"a/read"}},
		{Actions: []string{"b/read"}, DataActions: []string{"d/read"}},
	}
	delta := NewActionSet()
	delta.Actions["c/read"] = struct{}{}
	delta.Actions["a/read"] = struct{}{}

	merged := MergeBlocks(existing, delta)

	require.Len(t, merged, 1)
	assert.Equal(t, []string{"a/read", "b/read", "c/read"}, merged[0].Actions)
	assert.Equal(t, []string{"d/read"}, merged[0].DataActions)
}

func TestMergeBlocks_NilDelta(t *testing.T) {
	merged := MergeBlocks([]Block{{Actions: []string{"a/read"}}}, nil)

	require.Len(t, merged, 1)
	assert.Equal(t, []string{"a/read"}, merged[0].Actions)
}

func TestBlockJSON_OmitsEmptyFields(t *testing.T) {
	data, err := json.Marshal(Block{Actions: []string{"a/read"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"Actions":["a/read"]}`, string(data))

	// An empty block serializes to an empty object, not null fields.
	data, err = json.Marshal(Block{})
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))
}

func TestBlockIsEmpty(t *testing.T) {
	assert.True(t, Block{}.IsEmpty())
	assert.False(t, Block{NotDataActions: []string{"d/write"}}.IsEmpty())
}
