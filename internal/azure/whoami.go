package azure

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/golang-jwt/jwt/v5"
)

// Principal describes the signed-in identity as reported by its ARM access
// token claims.
type Principal struct {
	TenantID      string
	ObjectID      string
	PrincipalName string
	AppID         string
}

// WhoAmI acquires an ARM token and decodes its claims to identify the caller.
// The token is parsed without signature verification: we issued the request
// for it ourselves and only read display metadata, we never grant anything
// based on it.
func WhoAmI(ctx context.Context, cred azcore.TokenCredential) (*Principal, error) {
	tok, err := cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{ARMScope}})
	if err != nil {
		return nil, fmt.Errorf("failed to acquire ARM token: %w", err)
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok.Token, claims); err != nil {
		return nil, fmt.Errorf("failed to decode ARM token: %w", err)
	}

	p := &Principal{
		TenantID: claimString(claims, "tid"),
		ObjectID: claimString(claims, "oid"),
		AppID:    claimString(claims, "appid"),
	}
	for _, key := range []string{"upn", "unique_name", "app_displayname"} {
		if v := claimString(claims, key); v != "" {
			p.PrincipalName = v
			break
		}
	}
	return p, nil
}

func claimString(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
