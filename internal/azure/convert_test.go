package azure

import (
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/authorization/armauthorization/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rolesmith/rolesmith/internal/permission"
	"github.com/rolesmith/rolesmith/internal/role"
)

func TestFromARM(t *testing.T) {
	rd := &armauthorization.RoleDefinition{
		ID:   to.Ptr("/subscriptions/sub-1/providers/Microsoft.Authorization/roleDefinitions/guid-1"),
		Name: to.Ptr("guid-1"),
		Properties: &armauthorization.RoleDefinitionProperties{
			RoleName:    to.Ptr("Storage Reader"),
			Description: to.Ptr("reads storage"),
			RoleType:    to.Ptr(role.TypeCustomRole),
			Permissions: []*armauthorization.Permission{{
				Actions:     []*string{to.Ptr("Microsoft.Storage/storageAccounts/read")},
				NotActions:  []*string{to.Ptr("Microsoft.Storage/storageAccounts/delete")},
				DataActions: []*string{to.Ptr("Microsoft.Storage/storageAccounts/blobServices/containers/blobs/read")},
			}},
			AssignableScopes: []*string{to.Ptr("/subscriptions/sub-1")},
		},
	}

	d := FromARM(rd)
	assert.Equal(t, "Storage Reader", d.Name)
	assert.Equal(t, "reads storage", d.Description)
	assert.Equal(t, rd.ID, to.Ptr(d.ID))
	assert.True(t, d.IsCustom)
	assert.Equal(t, []string{"/subscriptions/sub-1"}, d.AssignableScopes)
	require.Len(t, d.Permissions, 1)
	assert.Equal(t, []string{"Microsoft.Storage/storageAccounts/read"}, d.Permissions[0].Actions)
	assert.Equal(t, []string{"Microsoft.Storage/storageAccounts/delete"}, d.Permissions[0].NotActions)
}

func TestFromARM_FallsBackToResourceName(t *testing.T) {
	rd := &armauthorization.RoleDefinition{
		Name: to.Ptr("guid-2"),
		Properties: &armauthorization.RoleDefinitionProperties{
			RoleType: to.Ptr("BuiltInRole"),
		},
	}

	d := FromARM(rd)
	assert.Equal(t, "guid-2", d.Name)
	assert.Equal(t, []string{"/"}, d.AssignableScopes)
	assert.False(t, d.IsCustom)
}

func TestToARM(t *testing.T) {
	d := &role.Definition{
		Name:        "Storage Reader",
		Description: "reads storage",
		Permissions: []permission.Block{{
			Actions: []string{"Microsoft.Storage/storageAccounts/read"},
		}},
		AssignableScopes: []string{"/subscriptions/sub-1"},
	}

	rd := ToARM(d, "/subscriptions/fallback")
	require.NotNil(t, rd.Properties)
	assert.Equal(t, "Storage Reader", *rd.Properties.RoleName)
	assert.Equal(t, role.TypeCustomRole, *rd.Properties.RoleType)
	require.Len(t, rd.Properties.Permissions, 1)
	require.Len(t, rd.Properties.Permissions[0].Actions, 1)
	assert.Equal(t, "Microsoft.Storage/storageAccounts/read", *rd.Properties.Permissions[0].Actions[0])
	require.Len(t, rd.Properties.AssignableScopes, 1)
	assert.Equal(t, "/subscriptions/sub-1", *rd.Properties.AssignableScopes[0])
}

func TestToARM_DefaultsScopes(t *testing.T) {
	rd := ToARM(&role.Definition{Name: "Empty"}, "/subscriptions/fallback")
	require.Len(t, rd.Properties.AssignableScopes, 1)
	assert.Equal(t, "/subscriptions/fallback", *rd.Properties.AssignableScopes[0])
}

func TestIsCustomRole(t *testing.T) {
	assert.True(t, IsCustomRole(&role.Definition{Type: role.TypeCustomRole}))
	assert.True(t, IsCustomRole(&role.Definition{
		Type:             "BuiltInRole",
		AssignableScopes: []string{"/subscriptions/sub-1"},
	}))
	assert.False(t, IsCustomRole(&role.Definition{
		Type:             "BuiltInRole",
		AssignableScopes: []string{"/"},
	}))
	assert.False(t, IsCustomRole(&role.Definition{Type: "BuiltInRole"}))
}
