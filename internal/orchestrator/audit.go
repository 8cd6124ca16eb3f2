package orchestrator

import (
	"context"
	"strings"
	"time"

	"modgraph/internal/dependency"
	"modgraph/pkg/logging"
)

// PlanRecord is handed to the AuditSink for every plan request, certified or
// refused.
type PlanRecord struct {
	PlanID    string                     `json:"planId,omitempty"`
	TenantID  string                     `json:"tenantId"`
	Direction dependency.Direction       `json:"direction"`
	Targets   []string                   `json:"targets"`
	Certified bool                       `json:"certified"`
	Plan      *dependency.ActivationPlan `json:"plan,omitempty"`
	Outcome   string                     `json:"outcome"`
	Refusal   string                     `json:"refusal,omitempty"`
	Timestamp time.Time                  `json:"timestamp"`
}

// AuditSink receives plan records. A failing sink is logged and never fails
// the plan request.
type AuditSink interface {
	RecordPlan(ctx context.Context, record PlanRecord) error
}

// AuditSinkFunc adapts a function to AuditSink.
type AuditSinkFunc func(ctx context.Context, record PlanRecord) error

// RecordPlan implements AuditSink.
func (f AuditSinkFunc) RecordPlan(ctx context.Context, record PlanRecord) error {
	return f(ctx, record)
}

// LogAuditSink writes plan records to the Audit logging subsystem.
type LogAuditSink struct{}

// RecordPlan implements AuditSink.
func (LogAuditSink) RecordPlan(_ context.Context, record PlanRecord) error {
	if record.Certified {
		logging.Info("Audit", "Plan %s certified for tenant %s: %s %s",
			record.PlanID, record.TenantID, record.Direction, strings.Join(record.Plan.Order, ", "))
		return nil
	}
	logging.Info("Audit", "Plan refused for tenant %s: %s [%s] (%s): %s",
		record.TenantID, record.Direction, strings.Join(record.Targets, ", "), record.Outcome, record.Refusal)
	return nil
}
