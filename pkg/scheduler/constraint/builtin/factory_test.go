package builtin

import (
	"testing"

	"github.com/lunban/lunban/pkg/errors"
	"github.com/lunban/lunban/pkg/model"
)

func TestNew_AllKnownTypes(t *testing.T) {
	types := []model.ConstraintType{
		model.TypeSingleAssignment,
		model.TypeMinRest,
		model.TypeForbiddenSequence,
		model.TypeMaxConsecutiveWork,
		model.TypeWeeklyHoursCap,
		model.TypeMinStaffing,
		model.TypeShiftPreference,
		model.TypeWeekendBalance,
		model.TypeCoverageBalance,
		model.TypeOffBalance,
		model.TypeAvoidPattern,
	}

	for _, typ := range types {
		t.Run(string(typ), func(t *testing.T) {
			c, err := New(&model.Constraint{Type: typ, Kind: model.ConstraintSoft, Weight: 0.5})
			if err != nil {
				t.Fatalf("New(%s) error = %v", typ, err)
			}
			if c.Type() != typ {
				t.Errorf("Type() = %s, expected %s", c.Type(), typ)
			}
		})
	}
}

func TestNew_UnknownType(t *testing.T) {
	_, err := New(&model.Constraint{Type: "made_up_constraint"})
	if !errors.Is(err, errors.CodeUnknownConstraint) {
		t.Errorf("expected CodeUnknownConstraint, got %v", err)
	}
}

func TestNew_HardWeightForcedToOne(t *testing.T) {
	c, err := New(&model.Constraint{Type: model.TypeMinRest, Kind: model.ConstraintHard, Weight: 0.3})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if c.Weight() != 1.0 {
		t.Errorf("硬约束权重 = %v, expected 1.0", c.Weight())
	}
}

func TestDefaultCatalog(t *testing.T) {
	cat, err := DefaultCatalog(nil)
	if err != nil {
		t.Fatalf("DefaultCatalog() error = %v", err)
	}
	if len(cat.Hard()) != 6 {
		t.Errorf("默认硬约束数量 = %d, expected 6", len(cat.Hard()))
	}
	if len(cat.Soft()) != 5 {
		t.Errorf("默认软约束数量 = %d, expected 5", len(cat.Soft()))
	}
}

func TestDefaultCatalog_PatternAvoidSequences(t *testing.T) {
	pattern := &model.TeamPattern{AvoidPatterns: []string{"NNN"}}
	cat, err := DefaultCatalog(pattern)
	if err != nil {
		t.Fatalf("DefaultCatalog() error = %v", err)
	}

	found := false
	for _, c := range cat.Soft() {
		if c.Type() == model.TypeAvoidPattern {
			found = true
		}
	}
	if !found {
		t.Error("默认目录应包含禁用序列约束")
	}
}
