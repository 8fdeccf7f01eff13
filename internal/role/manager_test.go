package role

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rolesmith/rolesmith/internal/permission"
)

func sourceRole(name string, block permission.Block) *Definition {
	return &Definition{
		Name:        name,
		Permissions: []permission.Block{block},
	}
}

func TestManager_Require(t *testing.T) {
	m := NewManager()

	_, err := m.Require()
	require.ErrorIs(t, err, ErrNoCurrentRole)

	m.Create("Test Role", "")
	def, err := m.Require()
	require.NoError(t, err)
	assert.Equal(t, "Test Role", def.Name)
}

func TestManager_Merge_PreservesExisting(t *testing.T) {
	m := NewManager()
	m.Create("Combined", "")
	_, err := m.Merge([]*Definition{
		sourceRole("A", permission.Block{Actions: []string{"Microsoft.Compute/virtualMachines/read"}}),
	}, "", "")
	require.NoError(t, err)

	def, err := m.Merge([]*Definition{
		sourceRole("B", permission.Block{Actions: []string{"Microsoft.Storage/storageAccounts/read"}}),
	}, "", "")
	require.NoError(t, err)

	require.Len(t, def.Permissions, 1)
	assert.Equal(t, []string{
		"Microsoft.Compute/virtualMachines/read",
		"Microsoft.Storage/storageAccounts/read",
	}, def.Permissions[0].Actions)
}

func TestManager_Merge_DeduplicatesAndSorts(t *testing.T) {
	m := NewManager()
	m.Create("Combined", "")

	def, err := m.Merge([]*Definition{
		sourceRole("A", permission.Block{Actions: []string{"b/read", "a/read"}}),
		sourceRole("B", permission.Block{Actions: []string{"a/read", "c/read"}}),
	}, "", "")
	require.NoError(t, err)

	require.Len(t, def.Permissions, 1)
	assert.Equal(t, []string{"a/read", "b/read", "c/read"}, def.Permissions[0].Actions)
}

func TestManager_Merge_StringFilter(t *testing.T) {
	m := NewManager()
	m.Create("Combined", "")

	def, err := m.Merge([]*Definition{
		sourceRole("Reader", permission.Block{
			Actions: []string{
				"Microsoft.Storage/storageAccounts/read",
				"Microsoft.Compute/virtualMachines/read",
			},
			NotActions: []string{
				"Microsoft.Storage/storageAccounts/delete",
			},
		}),
	}, "storage", "")
	require.NoError(t, err)

	require.Len(t, def.Permissions, 1)
	assert.Equal(t, []string{"Microsoft.Storage/storageAccounts/read"}, def.Permissions[0].Actions)
	// The filter applies per category, NotActions included.
	assert.Equal(t, []string{"Microsoft.Storage/storageAccounts/delete"}, def.Permissions[0].NotActions)
}

func TestManager_Merge_TypeFilter(t *testing.T) {
	m := NewManager()
	m.Create("Combined", "")

	def, err := m.Merge([]*Definition{
		sourceRole("Mixed", permission.Block{
			Actions: []string{"Microsoft.Storage/storageAccounts/read"},
			DataActions: []string{
				"Microsoft.Storage/storageAccounts/blobServices/containers/blobs/read",
			},
		}),
	}, "", permission.TypeData)
	require.NoError(t, err)

	require.Len(t, def.Permissions, 1)
	assert.Nil(t, def.Permissions[0].Actions)
	assert.Equal(t, []string{
		"Microsoft.Storage/storageAccounts/blobServices/containers/blobs/read",
	}, def.Permissions[0].DataActions)
}

func TestManager_Merge_CollapsesToOneBlock(t *testing.T) {
	m := NewManager()
	m.SetCurrent(&Definition{
		Name: "Multi",
		Permissions: []permission.Block{
			{Actions: []string{"a/read"}},
			{Actions: []string{"b/read"}},
		},
	})

	def, err := m.Merge([]*Definition{
		sourceRole("C", permission.Block{Actions: []string{"c/read"}}),
	}, "", "")
	require.NoError(t, err)

	require.Len(t, def.Permissions, 1)
	assert.Equal(t, []string{"a/read", "b/read", "c/read"}, def.Permissions[0].Actions)
}

func TestManager_Merge_NoCurrentRole(t *testing.T) {
	m := NewManager()
	_, err := m.Merge([]*Definition{sourceRole("A", permission.Block{})}, "", "")
	assert.ErrorIs(t, err, ErrNoCurrentRole)
}

func TestManager_Remove(t *testing.T) {
	m := NewManager()
	m.Create("Combined", "")
	_, err := m.Merge([]*Definition{
		sourceRole("Mixed", permission.Block{
			Actions: []string{
				"Microsoft.Storage/storageAccounts/read",
				"Microsoft.Compute/virtualMachines/read",
			},
		}),
	}, "", "")
	require.NoError(t, err)

	def, err := m.Remove("compute", "")
	require.NoError(t, err)

	require.Len(t, def.Permissions, 1)
	assert.Equal(t, []string{"Microsoft.Storage/storageAccounts/read"}, def.Permissions[0].Actions)
}

func TestManager_Remove_Idempotent(t *testing.T) {
	m := NewManager()
	m.SetCurrent(&Definition{
		Name:        "R",
		Permissions: []permission.Block{{Actions: []string{"a/read"}}},
	})

	_, err := m.Remove("missing", "")
	require.NoError(t, err)
	def, err := m.Remove("missing", "")
	require.NoError(t, err)

	require.Len(t, def.Permissions, 1)
	assert.Equal(t, []string{"a/read"}, def.Permissions[0].Actions)
}

func TestManager_Remove_AllLeavesEmptyList(t *testing.T) {
	m := NewManager()
	m.SetCurrent(&Definition{
		Name: "R",
		Permissions: []permission.Block{{
			Actions:     []string{"Microsoft.Storage/storageAccounts/read"},
			DataActions: []string{"Microsoft.Storage/storageAccounts/blobServices/containers/blobs/read"},
		}},
	})

	def, err := m.Remove("storage", "")
	require.NoError(t, err)

	// Removing everything yields an empty permissions list, not a
	// single empty block.
	assert.NotNil(t, def.Permissions)
	assert.Len(t, def.Permissions, 0)
}

func TestManager_Remove_TypeFilterOnly(t *testing.T) {
	m := NewManager()
	m.SetCurrent(&Definition{
		Name: "R",
		Permissions: []permission.Block{{
			Actions:     []string{"Microsoft.Storage/storageAccounts/read"},
			DataActions: []string{"Microsoft.Storage/storageAccounts/blobServices/containers/blobs/read"},
		}},
	})

	def, err := m.Remove("", permission.TypeData)
	require.NoError(t, err)

	require.Len(t, def.Permissions, 1)
	assert.Equal(t, []string{"Microsoft.Storage/storageAccounts/read"}, def.Permissions[0].Actions)
	assert.Nil(t, def.Permissions[0].DataActions)
}

func TestManager_Setters(t *testing.T) {
	m := NewManager()

	_, err := m.SetName("x")
	assert.ErrorIs(t, err, ErrNoCurrentRole)

	m.Create("Before", "old")
	def, err := m.SetName("After")
	require.NoError(t, err)
	assert.Equal(t, "After", def.Name)

	def, err = m.SetDescription("new")
	require.NoError(t, err)
	assert.Equal(t, "new", def.Description)

	def, err = m.SetScopes([]string{"/subscriptions/abc"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/subscriptions/abc"}, def.AssignableScopes)
}
