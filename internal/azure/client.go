package azure

import (
	"context"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/authorization/armauthorization/v2"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/rolesmith/rolesmith/internal/role"
)

// Client calls the ARM role definition API for one subscription. Every call
// passes through a client-side rate limiter so bulk operations stay under the
// ARM request quota.
type Client struct {
	subscriptionID string
	defs           *armauthorization.RoleDefinitionsClient
	limiter        *rate.Limiter
}

// NewClient creates a role definition client for the subscription.
func NewClient(subscriptionID string, cred azcore.TokenCredential, rps float64, burst int) (*Client, error) {
	if subscriptionID == "" {
		return nil, fmt.Errorf("subscription ID is required (set AZURE_SUBSCRIPTION_ID or use -subscription-id)")
	}

	defs, err := armauthorization.NewRoleDefinitionsClient(cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create role definitions client: %w", err)
	}

	if rps <= 0 {
		rps = 5
	}
	if burst <= 0 {
		burst = 10
	}

	return &Client{
		subscriptionID: subscriptionID,
		defs:           defs,
		limiter:        rate.NewLimiter(rate.Limit(rps), burst),
	}, nil
}

// SubscriptionID returns the subscription this client targets.
func (c *Client) SubscriptionID() string {
	return c.subscriptionID
}

// Scope returns the subscription scope used when the caller passes none.
func (c *Client) Scope() string {
	return "/subscriptions/" + c.subscriptionID
}

// ListAllRoles lists every role definition (built-in and custom) visible at
// the scope (subscription scope when empty).
func (c *Client) ListAllRoles(ctx context.Context, scope string) ([]*role.Definition, error) {
	if scope == "" {
		scope = c.Scope()
	}

	var roles []*role.Definition
	pager := c.defs.NewListPager(scope, nil)
	for pager.More() {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list role definitions: %w", err)
		}
		for _, rd := range page.Value {
			roles = append(roles, FromARM(rd))
		}
	}
	return roles, nil
}

// ListCustomRoles lists the custom roles at the scope. A role counts as
// custom when its type is CustomRole, or when its assignable scopes are
// limited (built-in roles carry the root scope "/").
func (c *Client) ListCustomRoles(ctx context.Context, scope string) ([]*role.Definition, error) {
	all, err := c.ListAllRoles(ctx, scope)
	if err != nil {
		return nil, err
	}

	var custom []*role.Definition
	for _, r := range all {
		if IsCustomRole(r) {
			custom = append(custom, r)
		}
	}
	return custom, nil
}

// GetByName finds a role by display name, case-insensitively, among all roles
// at the subscription scope. It returns nil without error when no role
// matches.
func (c *Client) GetByName(ctx context.Context, name string) (*role.Definition, error) {
	all, err := c.ListAllRoles(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, r := range all {
		if strings.EqualFold(r.Name, name) {
			return r, nil
		}
	}
	return nil, nil
}

// Get fetches a single role definition by its full resource ID.
func (c *Client) Get(ctx context.Context, roleID string) (*role.Definition, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	resp, err := c.defs.GetByID(ctx, roleID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get role definition: %w", err)
	}
	return FromARM(&resp.RoleDefinition), nil
}

// Publish creates or updates the role at the subscription scope. Role
// definition IDs must be GUIDs on the ARM side; locally generated
// "custom-..." IDs are replaced with a fresh GUID.
func (c *Client) Publish(ctx context.Context, d *role.Definition) (*role.Definition, error) {
	scope := c.Scope()

	definitionID := d.ID
	if _, err := uuid.Parse(definitionID); err != nil {
		definitionID = uuid.NewString()
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	resp, err := c.defs.CreateOrUpdate(ctx, scope, definitionID, ToARM(d, scope), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to publish role definition: %w", err)
	}
	return FromARM(&resp.RoleDefinition), nil
}

// Delete removes a custom role definition at the subscription scope. The ID
// may be the bare definition GUID or the full ARM resource ID.
func (c *Client) Delete(ctx context.Context, roleDefinitionID string) error {
	if i := strings.LastIndex(roleDefinitionID, "/"); i >= 0 {
		roleDefinitionID = roleDefinitionID[i+1:]
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	if _, err := c.defs.Delete(ctx, c.Scope(), roleDefinitionID, nil); err != nil {
		return fmt.Errorf("failed to delete role definition: %w", err)
	}
	return nil
}
