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

package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Config holds metrics configuration
type Config struct {
	Enabled bool
}

// Meter wraps OpenTelemetry meter
type Meter struct {
	meter metric.Meter
}

// New creates a new meter instance
func New(ctx context.Context, cfg Config, serviceName string) (*Meter, error) {
	if !cfg.Enabled {
		return &Meter{
			meter: otel.Meter("noop"),
		}, nil
	}

	// Get meter from global meter provider
	// In production, configure a proper meter provider with exporters
	meter := otel.Meter(serviceName)

	return &Meter{
		meter: meter,
	}, nil
}

// GetMeter returns the underlying meter
func (m *Meter) GetMeter() metric.Meter {
	return m.meter
}

// CreateCounter creates a new counter metric
func (m *Meter) CreateCounter(name, description string) (metric.Int64Counter, error) {
	counter, err := m.meter.Int64Counter(
		name,
		metric.WithDescription(description),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create counter %s: %w", name, err)
	}
	return counter, nil
}

// CreateHistogram creates a new histogram metric
func (m *Meter) CreateHistogram(name, description, unit string) (metric.Float64Histogram, error) {
	histogram, err := m.meter.Float64Histogram(
		name,
		metric.WithDescription(description),
		metric.WithUnit(unit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create histogram %s: %w", name, err)
	}
	return histogram, nil
}

// RoleMetrics bundles the instruments for role composition operations.
type RoleMetrics struct {
	OperationsTotal metric.Int64Counter
	MergeDuration   metric.Float64Histogram
}

// NewRoleMetrics creates the role operation instruments.
func NewRoleMetrics(m *Meter) (*RoleMetrics, error) {
	ops, err := m.CreateCounter("rolesmith_operations_total", "Total role operations by kind and outcome")
	if err != nil {
		return nil, err
	}
	merge, err := m.CreateHistogram("rolesmith_merge_duration", "Duration of merge/remove passes over permission sets", "ms")
	if err != nil {
		return nil, err
	}
	return &RoleMetrics{
		OperationsTotal: ops,
		MergeDuration:   merge,
	}, nil
}

// RecordOperation increments the operation counter with kind/outcome
// attributes. A nil receiver is a no-op so callers without metrics
// configured need no guards.
func (r *RoleMetrics) RecordOperation(ctx context.Context, kind string, err error) {
	if r == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	r.OperationsTotal.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("kind", kind),
			attribute.String("outcome", outcome),
		),
	)
}

// RecordMergeDuration records one merge or remove pass in milliseconds.
func (r *RoleMetrics) RecordMergeDuration(ctx context.Context, kind string, ms float64) {
	if r == nil {
		return
	}
	r.MergeDuration.Record(ctx, ms,
		metric.WithAttributes(attribute.String("kind", kind)),
	)
}
