package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGroupByNamespace(t *testing.T) {
	grouped := groupByNamespace([]string{
		"Microsoft.Storage/storageAccounts/write",
		"Microsoft.Storage/storageAccounts/read",
		"Microsoft.Compute/virtualMachines/read",
		"*",
	})

	assert.Equal(t, []string{
		"Microsoft.Storage/storageAccounts/read",
		"Microsoft.Storage/storageAccounts/write",
	}, grouped["Microsoft.Storage"])
	assert.Equal(t, []string{"Microsoft.Compute/virtualMachines/read"}, grouped["Microsoft.Compute"])
	assert.Equal(t, []string{"*"}, grouped["*"])
}

func TestLooksLikeSubscriptionID(t *testing.T) {
	assert.True(t, looksLikeSubscriptionID("12345678-1234-abcd-ABCD-123456789012"))
	assert.False(t, looksLikeSubscriptionID("My Subscription"))
	assert.False(t, looksLikeSubscriptionID("12345678-1234-abcd-ABCD"))
	assert.False(t, looksLikeSubscriptionID("1234567z-1234-abcd-ABCD-123456789012"))
	assert.False(t, looksLikeSubscriptionID("123456781234abcdABCD123456789012"))
}
