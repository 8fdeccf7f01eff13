package azure

import (
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/authorization/armauthorization/v2"

	"github.com/rolesmith/rolesmith/internal/permission"
	"github.com/rolesmith/rolesmith/internal/role"
)

// FromARM maps an ARM role definition onto the local model. The display name
// (RoleName) becomes Name, falling back to the resource name GUID when the
// display name is absent.
func FromARM(rd *armauthorization.RoleDefinition) *role.Definition {
	d := &role.Definition{Type: role.TypeCustomRole}

	if rd.ID != nil {
		d.ID = *rd.ID
	}

	name := deref(rd.Name)
	props := rd.Properties
	if props != nil {
		if props.RoleName != nil && *props.RoleName != "" {
			name = *props.RoleName
		}
		d.Description = deref(props.Description)
		d.Type = deref(props.RoleType)
		for _, p := range props.Permissions {
			d.Permissions = append(d.Permissions, permission.Block{
				Actions:        derefAll(p.Actions),
				NotActions:     derefAll(p.NotActions),
				DataActions:    derefAll(p.DataActions),
				NotDataActions: derefAll(p.NotDataActions),
			})
		}
		for _, s := range props.AssignableScopes {
			d.AssignableScopes = append(d.AssignableScopes, deref(s))
		}
	}
	d.Name = name
	if len(d.AssignableScopes) == 0 {
		d.AssignableScopes = []string{"/"}
	}
	d.IsCustom = IsCustomRole(d)
	return d
}

// ToARM maps a local definition to the ARM create/update payload. Assignable
// scopes default to the target scope when the role carries none.
func ToARM(d *role.Definition, scope string) armauthorization.RoleDefinition {
	perms := make([]*armauthorization.Permission, 0, len(d.Permissions))
	for _, b := range d.Permissions {
		perms = append(perms, &armauthorization.Permission{
			Actions:        refAll(b.Actions),
			NotActions:     refAll(b.NotActions),
			DataActions:    refAll(b.DataActions),
			NotDataActions: refAll(b.NotDataActions),
		})
	}

	scopes := d.AssignableScopes
	if len(scopes) == 0 {
		scopes = []string{scope}
	}

	return armauthorization.RoleDefinition{
		Properties: &armauthorization.RoleDefinitionProperties{
			RoleName:         to.Ptr(d.Name),
			Description:      to.Ptr(d.Description),
			RoleType:         to.Ptr(role.TypeCustomRole),
			Permissions:      perms,
			AssignableScopes: refAll(scopes),
		},
	}
}

// IsCustomRole reports whether the definition is user-defined: either the
// type says so, or the assignable scopes are limited (built-in roles are
// assignable at the root scope "/").
func IsCustomRole(d *role.Definition) bool {
	if d.Type == role.TypeCustomRole {
		return true
	}
	if len(d.AssignableScopes) == 0 {
		return false
	}
	for _, s := range d.AssignableScopes {
		if s == "/" {
			return false
		}
	}
	return true
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefAll(ss []*string) []string {
	if len(ss) == 0 {
		return nil
	}
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		out = append(out, deref(s))
	}
	return out
}

func refAll(ss []string) []*string {
	out := make([]*string, 0, len(ss))
	for _, s := range ss {
		out = append(out, to.Ptr(s))
	}
	return out
}
