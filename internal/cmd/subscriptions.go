// Copyright 2026 The Rolesmith Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"fmt"
	"strings"

	"github.com/rolesmith/rolesmith/internal/audit"
)

// SubscriptionsCommand lists subscriptions visible to the identity.
type SubscriptionsCommand struct {
	*Command
}

func (c *SubscriptionsCommand) Synopsis() string {
	return "List visible Azure subscriptions"
}

func (c *SubscriptionsCommand) Help() string {
	return strings.TrimSpace(`
Usage: rolesmith subscriptions

  Lists the subscriptions the signed-in identity can see. The active
  subscription is marked.
`)
}

func (c *SubscriptionsCommand) Run(args []string) int {
	subs, err := c.Session.Subscriptions()
	if err != nil {
		errorf(c.UI, "%s", err)
		return 1
	}

	list, err := subs.List(c.Context)
	if err != nil {
		errorf(c.UI, "failed to list subscriptions: %s", err)
		return 1
	}
	if len(list) == 0 {
		c.UI.Output("No subscriptions visible to this identity")
		return 0
	}

	for _, sub := range list {
		marker := "  "
		if sub.ID == c.Session.SubscriptionID {
			marker = successMark("* ")
		}
		c.UI.Output(fmt.Sprintf("%s%-36s  %-30s  %s", marker, sub.ID, sub.DisplayName, sub.State))
	}
	return 0
}

// UseSubscriptionCommand switches the active subscription.
type UseSubscriptionCommand struct {
	*Command
}

func (c *UseSubscriptionCommand) Synopsis() string {
	return "Switch the active subscription"
}

func (c *UseSubscriptionCommand) Help() string {
	return strings.TrimSpace(`
Usage: rolesmith use-subscription [id-or-name] [options]

  Switches the active subscription by ID or display name. Later Azure
  commands run against the new subscription.

Options:

  -id    Subscription ID.
  -name  Subscription display name.
`)
}

func (c *UseSubscriptionCommand) Run(args []string) int {
	f := c.flagSet("use-subscription")
	id := f.String("id", "", "subscription id")
	name := f.String("name", "", "subscription display name")
	if err := f.Parse(args); err != nil {
		return 1
	}
	if *id == "" && *name == "" && f.NArg() > 0 {
		// Bare argument: treat a UUID-shaped value as an ID,
		// anything else as a display name.
		arg := f.Arg(0)
		if looksLikeSubscriptionID(arg) {
			*id = arg
		} else {
			*name = arg
		}
	}
	if *id == "" && *name == "" {
		errorf(c.UI, "a subscription id or name is required")
		return 1
	}

	subs, err := c.Session.Subscriptions()
	if err != nil {
		errorf(c.UI, "%s", err)
		return 1
	}

	var resolvedID, display string
	if *id != "" {
		sub, err := subs.GetByID(c.Context, *id)
		if err != nil {
			errorf(c.UI, "failed to look up subscription: %s", err)
			return 1
		}
		if sub == nil {
			errorf(c.UI, "subscription '%s' not found or not visible", *id)
			return 1
		}
		resolvedID, display = sub.ID, sub.DisplayName
	} else {
		sub, err := subs.GetByName(c.Context, *name)
		if err != nil {
			errorf(c.UI, "failed to look up subscription: %s", err)
			return 1
		}
		if sub == nil {
			errorf(c.UI, "no subscription named '%s'", *name)
			return 1
		}
		resolvedID, display = sub.ID, sub.DisplayName
	}

	c.Session.UseSubscription(resolvedID)
	c.Session.Audit.Log(c.Context, audit.Event{
		Type:           audit.TypeSubscriptionSet,
		SubscriptionID: resolvedID,
		Resource:       display,
	})

	success(c.UI, "Using subscription '%s' (%s)", display, resolvedID)
	return 0
}

// looksLikeSubscriptionID reports whether s has the 8-4-4-4-12 UUID shape.
func looksLikeSubscriptionID(s string) bool {
	parts := strings.Split(s, "-")
	if len(parts) != 5 {
		return false
	}
	lengths := [5]int{8, 4, 4, 4, 12}
	for i, part := range parts {
		if len(part) != lengths[i] {
			return false
		}
		for _, r := range part {
			switch {
			case r >= '0' && r <= '9':
			case r >= 'a' && r <= 'f':
			case r >= 'A' && r <= 'F':
			default:
				return false
			}
		}
	}
	return true
}
