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

// Package azure wraps the ARM authorization and subscription APIs used to
// fetch, publish, and delete role definitions against a subscription.
package azure

import (
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
)

// ARMScope is the token audience for Azure Resource Manager.
const ARMScope = "https://management.azure.com/.default"

// NewCredential builds the credential chain: Azure CLI first (the common case
// for an engineer at a terminal), then the default environment chain.
func NewCredential() (azcore.TokenCredential, error) {
	var sources []azcore.TokenCredential

	if cli, err := azidentity.NewAzureCLICredential(nil); err == nil {
		sources = append(sources, cli)
	}
	if def, err := azidentity.NewDefaultAzureCredential(nil); err == nil {
		sources = append(sources, def)
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no Azure credential available: log in with 'az login' or configure environment credentials")
	}

	return azidentity.NewChainedTokenCredential(sources, nil)
}
