package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"modgraph/internal/catalog"
	"modgraph/internal/dependency"
	"modgraph/pkg/logging"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// Plan outcomes used in PlanRecord.Outcome and the plans metric.
const (
	OutcomeCertified            = "certified"
	OutcomeUnresolvedGraph      = "unresolved_graph"
	OutcomeLockedPrerequisite   = "locked_prerequisite"
	OutcomeActiveDependents     = "active_dependents"
	OutcomeTransitionInProgress = "transition_in_progress"
	OutcomeUnknownModule        = "unknown_module"
	OutcomeError                = "error"
)

// GraphView is a read-only copy of a tenant's dependency graph for rendering.
type GraphView struct {
	TenantID string              `json:"tenantId"`
	Nodes    []dependency.Module `json:"nodes"`
	Edges    []ViewEdge          `json:"edges"`
}

// ViewEdge is a dependency edge annotated with its risk score.
type ViewEdge struct {
	dependency.Edge
	RiskScore int `json:"riskScore"`
}

// Config holds the configuration for the orchestrator.
type Config struct {
	Source catalog.Source // Required: supplies tenant catalogs
	Audit  AuditSink      // Optional: receives every plan record
	Now    func() time.Time
}

// Orchestrator serves validation reports, graph views and activation plans
// for tenants. It holds no graph state: every call reads a fresh snapshot.
type Orchestrator struct {
	source catalog.Source
	audit  AuditSink
	now    func() time.Time

	// reports deduplicates concurrent report requests for the same tenant
	reports singleflight.Group
}

// New creates a new orchestrator.
func New(cfg Config) *Orchestrator {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Orchestrator{
		source: cfg.Source,
		audit:  cfg.Audit,
		now:    now,
	}
}

func (o *Orchestrator) loadSnapshot(ctx context.Context, tenantID string) (catalog.Snapshot, error) {
	if o.source == nil {
		return catalog.Snapshot{}, errors.New("no catalog source configured")
	}
	snap, err := catalog.Load(ctx, o.source, tenantID)
	if err != nil {
		catalogLoadErrors.Inc()
		logging.Error("Orchestrator", err, "Failed to load catalog for tenant %s", tenantID)
		return catalog.Snapshot{}, fmt.Errorf("failed to load catalog for tenant %s: %w", tenantID, err)
	}
	return snap, nil
}

// GetValidationReport validates the current catalog of tenantID. Concurrent
// calls for the same tenant share one computation; the returned report must
// be treated as read-only.
//
// The shared computation does not inherit the cancellation of the caller that
// started it. A caller whose ctx ends stops waiting and gets ctx.Err().
func (o *Orchestrator) GetValidationReport(ctx context.Context, tenantID string) (*dependency.ValidationReport, error) {
	loadCtx := context.WithoutCancel(ctx)
	results := o.reports.DoChan(tenantID, func() (interface{}, error) {
		start := o.now()
		snap, err := o.loadSnapshot(loadCtx, tenantID)
		if err != nil {
			return nil, err
		}

		report := dependency.Validate(snap.Modules, snap.Edges)
		validationDuration.Observe(o.now().Sub(start).Seconds())

		if report.IsValid {
			validationRuns.WithLabelValues("valid").Inc()
			logging.Debug("Orchestrator", "Tenant %s dependency graph is valid (%d modules, %d edges)",
				tenantID, len(snap.Modules), len(snap.Edges))
		} else {
			validationRuns.WithLabelValues("invalid").Inc()
			logging.Warn("Orchestrator", "Tenant %s dependency graph is invalid: %d missing, %d circular",
				tenantID, len(report.MissingDependencies), len(report.CircularDependencies))
		}
		return &report, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-results:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			logging.Debug("Orchestrator", "Shared validation report for tenant %s", tenantID)
		}
		return res.Val.(*dependency.ValidationReport), nil
	}
}

// GetDependencyGraphView returns the modules and edges of tenantID as stored,
// each edge annotated with its risk score. No layout is computed.
func (o *Orchestrator) GetDependencyGraphView(ctx context.Context, tenantID string) (*GraphView, error) {
	snap, err := o.loadSnapshot(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	view := &GraphView{
		TenantID: tenantID,
		Nodes:    slices.Clone(snap.Modules),
		Edges:    make([]ViewEdge, 0, len(snap.Edges)),
	}
	if view.Nodes == nil {
		view.Nodes = []dependency.Module{}
	}
	for _, e := range snap.Edges {
		view.Edges = append(view.Edges, ViewEdge{Edge: e, RiskScore: dependency.RiskScore(e)})
	}
	return view, nil
}

// CanActivate reports whether PlanActivation would certify a plan for
// moduleIDs. Refusals return false with a nil error; the error is reserved for
// catalog failures. No audit record is written.
func (o *Orchestrator) CanActivate(ctx context.Context, tenantID string, moduleIDs []string) (bool, error) {
	refusal, err := o.ActivationRefusal(ctx, tenantID, moduleIDs)
	if err != nil {
		return false, err
	}
	return refusal == nil, nil
}

// ActivationRefusal returns the typed error PlanActivation would refuse
// moduleIDs with, or nil when a plan would be certified. err reports catalog
// failures only. No audit record is written.
func (o *Orchestrator) ActivationRefusal(ctx context.Context, tenantID string, moduleIDs []string) (refusal error, err error) {
	snap, err := o.loadSnapshot(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	_, _, refusal = dependency.PlanFromSnapshot(dependency.DirectionActivate, snap.Modules, snap.Edges, moduleIDs)
	return refusal, nil
}

// PlanActivation certifies an activation order for moduleIDs and their
// transitive required dependencies.
func (o *Orchestrator) PlanActivation(ctx context.Context, tenantID string, moduleIDs []string) (*dependency.ActivationPlan, error) {
	return o.plan(ctx, dependency.DirectionActivate, tenantID, moduleIDs)
}

// PlanDeactivation certifies a deactivation order for exactly moduleIDs.
func (o *Orchestrator) PlanDeactivation(ctx context.Context, tenantID string, moduleIDs []string) (*dependency.ActivationPlan, error) {
	return o.plan(ctx, dependency.DirectionDeactivate, tenantID, moduleIDs)
}

func (o *Orchestrator) plan(ctx context.Context, dir dependency.Direction, tenantID string, moduleIDs []string) (*dependency.ActivationPlan, error) {
	snap, err := o.loadSnapshot(ctx, tenantID)
	if err != nil {
		plansTotal.WithLabelValues(string(dir), OutcomeError).Inc()
		return nil, err
	}

	plan, _, err := dependency.PlanFromSnapshot(dir, snap.Modules, snap.Edges, moduleIDs)
	record := PlanRecord{
		TenantID:  tenantID,
		Direction: dir,
		Targets:   slices.Clone(moduleIDs),
		Outcome:   Outcome(err),
		Timestamp: o.now(),
	}

	if err != nil {
		record.Refusal = err.Error()
		plansTotal.WithLabelValues(string(dir), record.Outcome).Inc()
		logging.Info("Orchestrator", "Refused %s plan for tenant %s: %v", dir, tenantID, err)
		o.recordPlan(ctx, record)
		return nil, err
	}

	plan.ID = uuid.New().String()
	plan.TenantID = tenantID
	record.PlanID = plan.ID
	record.Certified = true
	record.Plan = plan

	plansTotal.WithLabelValues(string(dir), OutcomeCertified).Inc()
	logging.Info("Orchestrator", "Certified %s plan %s for tenant %s: %d scheduled, %d excluded",
		dir, plan.ID, tenantID, len(plan.Order), len(plan.Excluded))
	o.recordPlan(ctx, record)
	return plan, nil
}

func (o *Orchestrator) recordPlan(ctx context.Context, record PlanRecord) {
	if o.audit == nil {
		return
	}
	if err := o.audit.RecordPlan(ctx, record); err != nil {
		auditErrors.Inc()
		logging.Error("Orchestrator", err, "Audit sink rejected %s plan record for tenant %s",
			record.Direction, record.TenantID)
	}
}

// Outcome classifies a planning error for metrics and audit records.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeCertified
	case dependency.IsUnresolvedGraph(err):
		return OutcomeUnresolvedGraph
	case dependency.IsLockedPrerequisite(err):
		return OutcomeLockedPrerequisite
	case dependency.IsActiveDependents(err):
		return OutcomeActiveDependents
	case dependency.IsTransitionInProgress(err):
		return OutcomeTransitionInProgress
	case dependency.IsUnknownModule(err):
		return OutcomeUnknownModule
	default:
		return OutcomeError
	}
}
