package azure

import (
	"context"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armsubscriptions"
	"golang.org/x/time/rate"
)

// Subscription is the slice of subscription metadata the tool cares about.
type Subscription struct {
	ID          string
	DisplayName string
	State       string
}

// SubscriptionManager lists and resolves the subscriptions visible to the
// signed-in identity.
type SubscriptionManager struct {
	client  *armsubscriptions.Client
	limiter *rate.Limiter
}

// NewSubscriptionManager creates a subscription manager.
func NewSubscriptionManager(cred azcore.TokenCredential, rps float64, burst int) (*SubscriptionManager, error) {
	client, err := armsubscriptions.NewClient(cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create subscriptions client: %w", err)
	}

	if rps <= 0 {
		rps = 5
	}
	if burst <= 0 {
		burst = 10
	}

	return &SubscriptionManager{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}, nil
}

// List returns all visible subscriptions.
func (m *SubscriptionManager) List(ctx context.Context) ([]Subscription, error) {
	var subs []Subscription
	pager := m.client.NewListPager(nil)
	for pager.More() {
		if err := m.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list subscriptions: %w", err)
		}
		for _, s := range page.Value {
			sub := Subscription{}
			if s.SubscriptionID != nil {
				sub.ID = *s.SubscriptionID
			}
			if s.DisplayName != nil {
				sub.DisplayName = *s.DisplayName
			}
			if s.State != nil {
				sub.State = string(*s.State)
			}
			subs = append(subs, sub)
		}
	}
	return subs, nil
}

// GetByID finds a subscription by its ID. Returns nil when not found.
func (m *SubscriptionManager) GetByID(ctx context.Context, id string) (*Subscription, error) {
	subs, err := m.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range subs {
		if subs[i].ID == id {
			return &subs[i], nil
		}
	}
	return nil, nil
}

// GetByName finds a subscription by display name, case-insensitively.
// Returns nil when not found.
func (m *SubscriptionManager) GetByName(ctx context.Context, name string) (*Subscription, error) {
	subs, err := m.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range subs {
		if strings.EqualFold(subs[i].DisplayName, name) {
			return &subs[i], nil
		}
	}
	return nil, nil
}
