package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		input   string
		want    Type
		wantErr bool
	}{
		{"control", TypeControl, false},
		{"data", TypeData, false},
		{"Control", TypeControl, false},
		{"DATA", TypeData, false},
		{"", "", true},
		{"management", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseType(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsDataPlane(t *testing.T) {
	dataPlane := []string{
		"Microsoft.Storage/storageAccounts/blobServices/containers/blobs/read",
		"Microsoft.Storage/storageAccounts/fileServices/shares/files/write",
		"Microsoft.Storage/storageAccounts/tableServices/tables/read",
		"Microsoft.Storage/storageAccounts/queueServices/queues/messages/read",
		"Microsoft.DocumentDB/databaseAccounts/databases/collections/read",
		"Microsoft.KeyVault/vaults/data/secrets/read",
		"Microsoft.CosmosDB/accounts/documents/read",
		"Microsoft.Sql/servers/databases/query/action",
		"Microsoft.ManagedIdentity/userAssignedIdentities/managedIdentities/someClients/read",
		// signatures match case-insensitively
		"microsoft.storage/storageaccounts/blobservices/containers/blobs/delete",
	}
	for _, action := range dataPlane {
		assert.True(t, IsDataPlane(action), "expected data plane: %s", action)
		assert.False(t, IsControlPlane(action), action)
	}

	controlPlane := []string{
		"Microsoft.Storage/storageAccounts/read",
		"Microsoft.Storage/storageAccounts/blobServices/read",
		"Microsoft.Compute/virtualMachines/start/action",
		"Microsoft.Authorization/roleDefinitions/write",
		"*",
		"",
	}
	for _, action := range controlPlane {
		assert.True(t, IsControlPlane(action), "expected control plane: %s", action)
	}
}

func TestClassify(t *testing.T) {
	c := Classify([]string{
		"Microsoft.Compute/virtualMachines/read",
		"Microsoft.Storage/storageAccounts/blobServices/containers/blobs/read",
		"Microsoft.Storage/storageAccounts/read",
	})

	assert.Equal(t, []string{
		"Microsoft.Compute/virtualMachines/read",
		"Microsoft.Storage/storageAccounts/read",
	}, c.Control)
	assert.Equal(t, []string{
		"Microsoft.Storage/storageAccounts/blobServices/containers/blobs/read",
	}, c.Data)
}

func TestFilterByString_Substring(t *testing.T) {
	actions := []string{
		"Microsoft.Storage/storageAccounts/read",
		"Microsoft.Storage/storageAccounts/delete",
		"Microsoft.Compute/virtualMachines/read",
	}

	// No wildcard tokens: case-insensitive substring match.
	assert.Equal(t, []string{
		"Microsoft.Storage/storageAccounts/read",
		"Microsoft.Storage/storageAccounts/delete",
	}, FilterByString(actions, "storage"))

	assert.Equal(t, []string{
		"Microsoft.Storage/storageAccounts/read",
		"Microsoft.Compute/virtualMachines/read",
	}, FilterByString(actions, "READ"))

	assert.Empty(t, FilterByString(actions, "keyvault"))
}

func TestFilterByString_Wildcards(t *testing.T) {
	actions := []string{
		"Microsoft.Storage/storageAccounts/read",
		"Microsoft.Storage/storageAccounts/delete",
		"Microsoft.Compute/virtualMachines/delete",
	}

	// '%' matches any run; the pattern is anchored at both ends.
	assert.Equal(t, []string{
		"Microsoft.Storage/storageAccounts/read",
		"Microsoft.Storage/storageAccounts/delete",
	}, FilterByString(actions, "Microsoft.Storage%"))

	assert.Equal(t, []string{
		"Microsoft.Storage/storageAccounts/delete",
		"Microsoft.Compute/virtualMachines/delete",
	}, FilterByString(actions, "%delete"))

	// Anchoring: a wildcard pattern that covers only part of the string
	// does not match.
	assert.Empty(t, FilterByString(actions, "storage%"))

	// '?' matches exactly one character.
	assert.Equal(t, []string{
		"Microsoft.Storage/storageAccounts/read",
	}, FilterByString(actions, "%rea?"))
	assert.Empty(t, FilterByString(actions, "%read?"))
}

func TestFilterByString_StarIsLiteral(t *testing.T) {
	actions := []string{
		"*",
		"*/read",
		"Microsoft.Storage/storageAccounts/read",
	}

	// '*' has no wildcard meaning in the substring mode either: it
	// matches actions that literally contain a star.
	assert.Equal(t, []string{"*", "*/read"}, FilterByString(actions, "*"))

	// With a wildcard token present, '*' is an escaped literal.
	assert.Equal(t, []string{"*/read"}, FilterByString(actions, "*%read"))
}

func TestFilterByType(t *testing.T) {
	actions := []string{
		"Microsoft.Storage/storageAccounts/read",
		"Microsoft.Storage/storageAccounts/blobServices/containers/blobs/read",
	}

	assert.Equal(t, []string{
		"Microsoft.Storage/storageAccounts/read",
	}, FilterByType(actions, TypeControl))
	assert.Equal(t, []string{
		"Microsoft.Storage/storageAccounts/blobServices/containers/blobs/read",
	}, FilterByType(actions, TypeData))
}

func TestFilter_Combined(t *testing.T) {
	actions := []string{
		"Microsoft.Storage/storageAccounts/read",
		"Microsoft.Storage/storageAccounts/blobServices/containers/blobs/read",
		"Microsoft.Compute/virtualMachines/read",
	}

	// Both stages: string filter first, then type filter.
	assert.Equal(t, []string{
		"Microsoft.Storage/storageAccounts/blobServices/containers/blobs/read",
	}, Filter(actions, "storage", TypeData))

	// Empty filters pass everything through as a copy.
	got := Filter(actions, "", "")
	assert.Equal(t, actions, got)
	got[0] = "mutated"
	assert.Equal(t, "Microsoft.Storage/storageAccounts/read", actions[0])
}
