// Package telemetry exports azguard metrics through OpenTelemetry with a
// Prometheus exporter. Metrics is a plugin: register it with the engine and
// every access check and role change is counted.
package telemetry

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/xraph/azguard"
	"github.com/xraph/azguard/assignment"
	"github.com/xraph/azguard/plugin"
	"github.com/xraph/azguard/role"
)

// ShutdownFunc releases telemetry resources.
type ShutdownFunc func(ctx context.Context) error

// Setup installs a global meter provider backed by the Prometheus exporter.
// The returned shutdown function must be called on exit.
func Setup(_ context.Context) (ShutdownFunc, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("creating prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	return provider.Shutdown, nil
}

// MetricsHandler returns an http.Handler that serves Prometheus metrics.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// Compile-time hook checks.
var (
	_ plugin.Plugin         = (*Metrics)(nil)
	_ plugin.AfterCheck     = (*Metrics)(nil)
	_ plugin.RoleCreated    = (*Metrics)(nil)
	_ plugin.RoleDeleted    = (*Metrics)(nil)
	_ plugin.MembersAdded   = (*Metrics)(nil)
	_ plugin.MembersRemoved = (*Metrics)(nil)
)

// Metrics holds the OTel instruments for the engine.
type Metrics struct {
	checksTotal        otelmetric.Int64Counter
	checkDuration      otelmetric.Float64Histogram
	operationsTotal    otelmetric.Int64Counter
	roleChangesTotal   otelmetric.Int64Counter
	memberChangesTotal otelmetric.Int64Counter
}

// NewMetrics creates the azguard instruments on the global meter provider.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter("azguard")
	m := &Metrics{}
	var err error

	latencyBuckets := otelmetric.WithExplicitBucketBoundaries(
		0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0,
	)

	if m.checksTotal, err = meter.Int64Counter("azguard_access_checks_total",
		otelmetric.WithDescription("Total access checks")); err != nil {
		return nil, fmt.Errorf("creating access_checks_total: %w", err)
	}
	if m.checkDuration, err = meter.Float64Histogram("azguard_access_check_duration_seconds",
		otelmetric.WithDescription("Access check evaluation time"), latencyBuckets); err != nil {
		return nil, fmt.Errorf("creating access_check_duration: %w", err)
	}
	if m.operationsTotal, err = meter.Int64Counter("azguard_operation_decisions_total",
		otelmetric.WithDescription("Per-operation decisions returned by access checks")); err != nil {
		return nil, fmt.Errorf("creating operation_decisions_total: %w", err)
	}
	if m.roleChangesTotal, err = meter.Int64Counter("azguard_role_changes_total",
		otelmetric.WithDescription("Roles created or deleted")); err != nil {
		return nil, fmt.Errorf("creating role_changes_total: %w", err)
	}
	if m.memberChangesTotal, err = meter.Int64Counter("azguard_membership_changes_total",
		otelmetric.WithDescription("Role members added or removed")); err != nil {
		return nil, fmt.Errorf("creating membership_changes_total: %w", err)
	}

	return m, nil
}

// Name implements plugin.Plugin.
func (m *Metrics) Name() string { return "telemetry" }

// OnAfterCheck records one access check and each of its decisions.
func (m *Metrics) OnAfterCheck(ctx context.Context, req, result any) error {
	r, ok := req.(*azguard.AccessCheckRequest)
	if !ok {
		return nil
	}
	res, ok := result.(*azguard.AccessCheckResult)
	if !ok {
		return nil
	}
	m.RecordCheck(ctx, r.Scope, res.Allowed(), time.Duration(res.EvalTimeNs))
	for _, code := range res.Results {
		m.operationsTotal.Add(ctx, 1, otelmetric.WithAttributes(decisionAttr(code == azguard.DecisionAllow)))
	}
	return nil
}

// RecordCheck records an access check outcome.
func (m *Metrics) RecordCheck(ctx context.Context, scope string, allowed bool, elapsed time.Duration) {
	attrs := otelmetric.WithAttributes(
		scopeAttr(scope),
		decisionAttr(allowed),
	)
	m.checksTotal.Add(ctx, 1, attrs)
	m.checkDuration.Record(ctx, elapsed.Seconds(), attrs)
}

// OnRoleCreated implements plugin.RoleCreated.
func (m *Metrics) OnRoleCreated(ctx context.Context, r *role.Role) error {
	m.roleChangesTotal.Add(ctx, 1, otelmetric.WithAttributes(eventAttr("created"), scopeAttr(r.Scope)))
	return nil
}

// OnRoleDeleted implements plugin.RoleDeleted.
func (m *Metrics) OnRoleDeleted(ctx context.Context, r *role.Role) error {
	m.roleChangesTotal.Add(ctx, 1, otelmetric.WithAttributes(eventAttr("deleted"), scopeAttr(r.Scope)))
	return nil
}

// OnMembersAdded implements plugin.MembersAdded.
func (m *Metrics) OnMembersAdded(ctx context.Context, r *role.Role, added []*assignment.Assignment) error {
	m.memberChangesTotal.Add(ctx, int64(len(added)), otelmetric.WithAttributes(eventAttr("added"), roleAttr(r.Name)))
	return nil
}

// OnMembersRemoved implements plugin.MembersRemoved.
func (m *Metrics) OnMembersRemoved(ctx context.Context, r *role.Role, sids []string) error {
	m.memberChangesTotal.Add(ctx, int64(len(sids)), otelmetric.WithAttributes(eventAttr("removed"), roleAttr(r.Name)))
	return nil
}
