package catalog

import (
	"testing"

	"modgraph/internal/dependency"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validEdgeRecord() EdgeRecord {
	return EdgeRecord{
		Source:              "leads",
		Target:              "reports",
		Type:                "required",
		Priority:            "P1",
		FailureImpact:       3,
		MTTREstimateMinutes: 30,
	}
}

func TestEdgeRecord_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*EdgeRecord)
		wantErr bool
	}{
		{"valid", func(*EdgeRecord) {}, false},
		{"zero mttr allowed", func(r *EdgeRecord) { r.MTTREstimateMinutes = 0 }, false},
		{"empty source", func(r *EdgeRecord) { r.Source = "" }, true},
		{"padded target", func(r *EdgeRecord) { r.Target = " reports" }, true},
		{"unknown type", func(r *EdgeRecord) { r.Type = "mandatory" }, true},
		{"unknown priority", func(r *EdgeRecord) { r.Priority = "P4" }, true},
		{"impact too low", func(r *EdgeRecord) { r.FailureImpact = 0 }, true},
		{"impact too high", func(r *EdgeRecord) { r.FailureImpact = 6 }, true},
		{"negative mttr", func(r *EdgeRecord) { r.MTTREstimateMinutes = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validEdgeRecord()
			tt.mutate(&r)
			err := r.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestModuleRecord_Validate(t *testing.T) {
	assert.NoError(t, ModuleRecord{ID: "leads", LifecycleState: "active"}.Validate())
	assert.NoError(t, ModuleRecord{ID: "billing", LifecycleState: "locked"}.Validate())
	assert.Error(t, ModuleRecord{ID: "", LifecycleState: "active"}.Validate())
	assert.Error(t, ModuleRecord{ID: "leads", LifecycleState: "enabled"}.Validate())
	assert.Error(t, ModuleRecord{ID: "leads"}.Validate())
}

func TestConvertEdges_ReportsRecordError(t *testing.T) {
	bad := validEdgeRecord()
	bad.FailureImpact = 9
	bad.Priority = "urgent"

	_, err := ConvertEdges("acme", []EdgeRecord{validEdgeRecord(), bad})
	require.Error(t, err)
	assert.True(t, IsRecordError(err))

	var recordErr *RecordError
	require.ErrorAs(t, err, &recordErr)
	assert.Equal(t, "acme", recordErr.TenantID)
	assert.Equal(t, "edge", recordErr.Kind)
	assert.Equal(t, 1, recordErr.Index)
	assert.Equal(t, "leads -> reports", recordErr.Key)
	assert.Len(t, recordErr.Problems, 2)
	assert.Contains(t, err.Error(), "Priority")
	assert.Contains(t, err.Error(), "FailureImpact must be at most 5")
}

func TestConvertModules(t *testing.T) {
	modules, err := ConvertModules("acme", []ModuleRecord{
		{ID: "reports", Name: "Reports", LifecycleState: "inactive"},
		{ID: "billing", Name: "Billing", LifecycleState: "active", Locked: true},
	})
	require.NoError(t, err)

	assert.Equal(t, []dependency.Module{
		{ID: "reports", Name: "Reports", State: dependency.StateInactive},
		{ID: "billing", Name: "Billing", State: dependency.StateActive, Locked: true},
	}, modules)
}

func TestRecordConversionRoundTrip(t *testing.T) {
	edge := dependency.Edge{
		Source: "leads", Target: "reports", Type: dependency.EdgeOptional,
		Priority: dependency.PriorityP2, FailureImpact: 2, MTTREstimateMinutes: 45,
	}
	assert.Equal(t, edge, NewEdgeRecord(edge).Edge())

	module := dependency.Module{ID: "leads", Name: "Leads", State: dependency.StatePendingActivation}
	assert.Equal(t, module, NewModuleRecord(module).Module())
}
