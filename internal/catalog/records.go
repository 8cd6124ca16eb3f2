package catalog

import (
	"errors"
	"fmt"
	"strings"

	"modgraph/internal/dependency"

	"github.com/go-playground/validator/v10"
)

// recordValidate checks catalog records at the persistence boundary.
var recordValidate *validator.Validate

func init() {
	recordValidate = validator.New()
	_ = recordValidate.RegisterValidation("moduleid", validateModuleID)
}

// validateModuleID rejects ids that are blank or carry surrounding whitespace.
func validateModuleID(fl validator.FieldLevel) bool {
	id := fl.Field().String()
	return id != "" && strings.TrimSpace(id) == id
}

// ModuleRecord is a module row as stored by a catalog adapter.
type ModuleRecord struct {
	ID             string `yaml:"id" validate:"moduleid"`
	Name           string `yaml:"name"`
	LifecycleState string `yaml:"lifecycleState" validate:"required,oneof=inactive pending_activation active pending_deactivation locked"`
	Locked         bool   `yaml:"locked,omitempty"`
}

// EdgeRecord is a dependency edge row as stored by a catalog adapter.
type EdgeRecord struct {
	Source              string `yaml:"source" validate:"moduleid"`
	Target              string `yaml:"target" validate:"moduleid"`
	Type                string `yaml:"type" validate:"required,oneof=required optional recommended"`
	Priority            string `yaml:"priority" validate:"required,oneof=P0 P1 P2 P3"`
	FailureImpact       int    `yaml:"failureImpact" validate:"min=1,max=5"`
	MTTREstimateMinutes int    `yaml:"mttrEstimateMinutes" validate:"gte=0"`
}

// Validate checks the record against its validation tags.
func (r ModuleRecord) Validate() error {
	return recordValidate.Struct(r)
}

// Validate checks the record against its validation tags.
func (r EdgeRecord) Validate() error {
	return recordValidate.Struct(r)
}

// Module converts the record into the engine's model.
func (r ModuleRecord) Module() dependency.Module {
	return dependency.Module{
		ID:     r.ID,
		Name:   r.Name,
		State:  dependency.LifecycleState(r.LifecycleState),
		Locked: r.Locked,
	}
}

// Edge converts the record into the engine's model.
func (r EdgeRecord) Edge() dependency.Edge {
	return dependency.Edge{
		Source:              r.Source,
		Target:              r.Target,
		Type:                dependency.EdgeType(r.Type),
		Priority:            dependency.Priority(r.Priority),
		FailureImpact:       r.FailureImpact,
		MTTREstimateMinutes: r.MTTREstimateMinutes,
	}
}

// NewModuleRecord is the inverse of ModuleRecord.Module.
func NewModuleRecord(m dependency.Module) ModuleRecord {
	return ModuleRecord{ID: m.ID, Name: m.Name, LifecycleState: string(m.State), Locked: m.Locked}
}

// NewEdgeRecord is the inverse of EdgeRecord.Edge.
func NewEdgeRecord(e dependency.Edge) EdgeRecord {
	return EdgeRecord{
		Source:              e.Source,
		Target:              e.Target,
		Type:                string(e.Type),
		Priority:            string(e.Priority),
		FailureImpact:       e.FailureImpact,
		MTTREstimateMinutes: e.MTTREstimateMinutes,
	}
}

// RecordError reports a stored record that violates the catalog schema.
type RecordError struct {
	TenantID string
	Kind     string // "module" or "edge"
	Index    int
	Key      string
	Problems []string
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("tenant %s: invalid %s record #%d (%s): %s",
		e.TenantID, e.Kind, e.Index, e.Key, strings.Join(e.Problems, "; "))
}

// IsRecordError checks if an error is a RecordError.
func IsRecordError(err error) bool {
	var recordErr *RecordError
	return errors.As(err, &recordErr)
}

func newRecordError(tenantID, kind string, index int, key string, err error) *RecordError {
	recordErr := &RecordError{TenantID: tenantID, Kind: kind, Index: index, Key: key}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			recordErr.Problems = append(recordErr.Problems, describeFieldError(fe))
		}
	} else {
		recordErr.Problems = []string{err.Error()}
	}
	return recordErr
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "moduleid":
		return fmt.Sprintf("%s must be a non-empty id without surrounding whitespace", fe.Field())
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s %q is not one of [%s]", fe.Field(), fe.Value(), fe.Param())
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s, got %v", fe.Field(), fe.Param(), fe.Value())
	case "max":
		return fmt.Sprintf("%s must be at most %s, got %v", fe.Field(), fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}

// ConvertModules validates every record and converts the list.
func ConvertModules(tenantID string, records []ModuleRecord) ([]dependency.Module, error) {
	modules := make([]dependency.Module, 0, len(records))
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return nil, newRecordError(tenantID, "module", i, r.ID, err)
		}
		modules = append(modules, r.Module())
	}
	return modules, nil
}

// ConvertEdges validates every record and converts the list.
func ConvertEdges(tenantID string, records []EdgeRecord) ([]dependency.Edge, error) {
	edges := make([]dependency.Edge, 0, len(records))
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return nil, newRecordError(tenantID, "edge", i, r.Source+" -> "+r.Target, err)
		}
		edges = append(edges, r.Edge())
	}
	return edges, nil
}
