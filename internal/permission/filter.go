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

// Package permission provides pure filtering, classification, and set
// extraction utilities over Azure permission-action strings. Nothing in this
// package mutates its inputs or performs I/O.
package permission

import (
	"fmt"
	"regexp"
	"strings"
)

// Type classifies a permission action as control plane or data plane.
type Type string

const (
	// TypeControl marks management-plane operations (resource configuration).
	TypeControl Type = "control"

	// TypeData marks data-plane operations (the data inside a resource).
	TypeData Type = "data"
)

// ParseType maps the CLI token to a Type.
func ParseType(s string) (Type, error) {
	switch Type(strings.ToLower(s)) {
	case TypeControl:
		return TypeControl, nil
	case TypeData:
		return TypeData, nil
	default:
		return "", fmt.Errorf("unknown permission type %q (want %q or %q)", s, TypeControl, TypeData)
	}
}

// Wildcard tokens for FilterByString. '*' is deliberately NOT a wildcard:
// Azure uses it inside real action strings, so the filter language reserves
// '%' and '?' instead.
const (
	WildcardAny    = "%"
	WildcardSingle = "?"
)

// DataPlaneSignatures is the fixed table of substring signatures that mark an
// action as data plane. The classification is a best-effort heuristic, not an
// Azure API lookup: an action is data plane iff it matches any signature
// (case-insensitively), and control plane otherwise. Actions from providers
// not listed here fall back to control plane.
var DataPlaneSignatures = []string{
	`blobServices/containers/blobs`,
	`fileServices/shares/files`,
	`tableServices/tables`,
	`queueServices/queues`,
	`databases/collections`,
	`/data/`,
	`cosmosdb.*documents`,
	`sql.*query`,
	`managedIdentities.*clients`,
}

var dataPlaneRegexps = compileSignatures(DataPlaneSignatures)

func compileSignatures(signatures []string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(signatures))
	for _, s := range signatures {
		res = append(res, regexp.MustCompile(`(?i)`+s))
	}
	return res
}

// IsDataPlane reports whether action matches a known data-plane signature.
func IsDataPlane(action string) bool {
	for _, re := range dataPlaneRegexps {
		if re.MatchString(action) {
			return true
		}
	}
	return false
}

// IsControlPlane is the negation of IsDataPlane; together they partition all
// action strings.
func IsControlPlane(action string) bool {
	return !IsDataPlane(action)
}

// Classified holds the result of partitioning actions by plane.
type Classified struct {
	Control []string
	Data    []string
}

// Classify partitions actions into control and data plane, preserving the
// relative order within each partition.
func Classify(actions []string) Classified {
	var c Classified
	for _, a := range actions {
		if IsDataPlane(a) {
			c.Data = append(c.Data, a)
		} else {
			c.Control = append(c.Control, a)
		}
	}
	return c
}

// FilterByString returns the actions matching pattern.
//
// A pattern without '%' or '?' is a case-insensitive substring match. A
// pattern containing either token compiles to a fully anchored
// case-insensitive regex where '%' matches any run of characters and '?'
// matches exactly one; every other character, including '*', is literal.
// A pattern that cannot be compiled matches nothing (fail closed).
func FilterByString(actions []string, pattern string) []string {
	if !strings.ContainsAny(pattern, WildcardAny+WildcardSingle) {
		needle := strings.ToLower(pattern)
		matched := make([]string, 0, len(actions))
		for _, a := range actions {
			if strings.Contains(strings.ToLower(a), needle) {
				matched = append(matched, a)
			}
		}
		return matched
	}

	re, err := compilePattern(pattern)
	if err != nil {
		// A broken filter must match nothing rather than everything.
		return nil
	}

	matched := make([]string, 0, len(actions))
	for _, a := range actions {
		if re.MatchString(a) {
			matched = append(matched, a)
		}
	}
	return matched
}

// compilePattern translates the wildcard language into an anchored regex.
// All non-wildcard runes are escaped, so the result is always valid; the
// error return exists for future syntax extensions.
func compilePattern(pattern string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString(`(?i)^`)
	for _, r := range pattern {
		switch string(r) {
		case WildcardAny:
			b.WriteString(`.*`)
		case WildcardSingle:
			b.WriteString(`.`)
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString(`$`)
	return regexp.Compile(b.String())
}

// FilterByType returns the subset of actions whose plane classification
// matches t.
func FilterByType(actions []string, t Type) []string {
	matched := make([]string, 0, len(actions))
	for _, a := range actions {
		if t == TypeData && IsDataPlane(a) {
			matched = append(matched, a)
		} else if t == TypeControl && IsControlPlane(a) {
			matched = append(matched, a)
		}
	}
	return matched
}

// Filter applies the string filter and then the type filter. Either may be
// zero-valued to skip that stage; with both absent the input is returned as a
// copy.
func Filter(actions []string, stringFilter string, typeFilter Type) []string {
	result := make([]string, len(actions))
	copy(result, actions)

	if stringFilter != "" {
		result = FilterByString(result, stringFilter)
	}
	if typeFilter != "" {
		result = FilterByType(result, typeFilter)
	}
	return result
}
