package constraint

import (
	"testing"

	"github.com/lunban/lunban/pkg/errors"
	"github.com/lunban/lunban/pkg/model"
)

// stubConstraint 测试用约束
type stubConstraint struct {
	name   string
	typ    model.ConstraintType
	kind   model.ConstraintKind
	weight float64
}

func (s *stubConstraint) Name() string               { return s.name }
func (s *stubConstraint) Type() model.ConstraintType { return s.typ }
func (s *stubConstraint) Kind() model.ConstraintKind { return s.kind }
func (s *stubConstraint) Weight() float64            { return s.weight }
func (s *stubConstraint) Evaluate(*Context) []model.ConstraintViolation {
	return nil
}
func (s *stubConstraint) EvaluateAssignment(*Context, *model.Assignment) (bool, float64) {
	return true, 0
}

func stubFactory(def *model.Constraint) (Constraint, error) {
	if def.Type == "bogus" {
		return nil, errors.UnknownConstraint(string(def.Type))
	}
	return &stubConstraint{
		name:   string(def.Type),
		typ:    def.Type,
		kind:   def.Kind,
		weight: def.Weight,
	}, nil
}

func TestBuild_UnknownTypeFailsClosed(t *testing.T) {
	defs := []*model.Constraint{
		{Type: "bogus", Kind: model.ConstraintHard, Active: true},
	}
	_, err := Build(defs, stubFactory)
	if !errors.Is(err, errors.CodeUnknownConstraint) {
		t.Errorf("未知约束类型应整体拒绝, got %v", err)
	}
}

func TestBuild_SkipsInactiveAndZeroWeight(t *testing.T) {
	defs := []*model.Constraint{
		{Type: model.TypeSingleAssignment, Kind: model.ConstraintHard, Weight: 1, Active: true},
		{Type: model.TypeMinRest, Kind: model.ConstraintHard, Weight: 1, Active: false},
		{Type: model.TypeShiftPreference, Kind: model.ConstraintSoft, Weight: 0, Active: true},
		{Type: model.TypeWeekendBalance, Kind: model.ConstraintSoft, Weight: 0.8, Active: true},
	}

	cat, err := Build(defs, stubFactory)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if len(cat.Hard()) != 1 {
		t.Errorf("硬约束数量 = %d, expected 1（未激活的被剔除）", len(cat.Hard()))
	}
	if len(cat.Soft()) != 1 {
		t.Errorf("软约束数量 = %d, expected 1（零权重的被剔除）", len(cat.Soft()))
	}
	if cat.Count() != 2 {
		t.Errorf("Count() = %d, expected 2", cat.Count())
	}
}

func TestBuild_HardPriorityOrder(t *testing.T) {
	// 按定义逆序输入，构建后仍按固定优先级排序
	defs := []*model.Constraint{
		{Type: model.TypeMinStaffing, Kind: model.ConstraintHard, Weight: 1, Active: true},
		{Type: model.TypeWeeklyHoursCap, Kind: model.ConstraintHard, Weight: 1, Active: true},
		{Type: model.TypeMaxConsecutiveWork, Kind: model.ConstraintHard, Weight: 1, Active: true},
		{Type: model.TypeForbiddenSequence, Kind: model.ConstraintHard, Weight: 1, Active: true},
		{Type: model.TypeMinRest, Kind: model.ConstraintHard, Weight: 1, Active: true},
		{Type: model.TypeSingleAssignment, Kind: model.ConstraintHard, Weight: 1, Active: true},
	}

	cat, err := Build(defs, stubFactory)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	expected := []model.ConstraintType{
		model.TypeSingleAssignment,
		model.TypeMinRest,
		model.TypeForbiddenSequence,
		model.TypeMaxConsecutiveWork,
		model.TypeWeeklyHoursCap,
		model.TypeMinStaffing,
	}
	for i, c := range cat.Hard() {
		if c.Type() != expected[i] {
			t.Errorf("hard[%d] = %s, expected %s", i, c.Type(), expected[i])
		}
	}
}

func TestBuild_SoftWeightOrder(t *testing.T) {
	defs := []*model.Constraint{
		{Type: model.TypeShiftPreference, Kind: model.ConstraintSoft, Weight: 0.3, Active: true},
		{Type: model.TypeWeekendBalance, Kind: model.ConstraintSoft, Weight: 0.9, Active: true},
		{Type: model.TypeOffBalance, Kind: model.ConstraintSoft, Weight: 0.5, Active: true},
	}

	cat, err := Build(defs, stubFactory)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	soft := cat.Soft()
	if soft[0].Weight() != 0.9 || soft[1].Weight() != 0.5 || soft[2].Weight() != 0.3 {
		t.Errorf("软约束应按权重降序: %v %v %v", soft[0].Weight(), soft[1].Weight(), soft[2].Weight())
	}
}

func TestMaxConsecutiveRun(t *testing.T) {
	tests := []struct {
		name     string
		dates    []string
		expected int
	}{
		{"空集", nil, 0},
		{"单日", []string{"2026-02-02"}, 1},
		{"连续三天", []string{"2026-02-02", "2026-02-03", "2026-02-04"}, 3},
		{"断开的两段", []string{"2026-02-02", "2026-02-03", "2026-02-05", "2026-02-06", "2026-02-07"}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if run := MaxConsecutiveRun(tt.dates); run != tt.expected {
				t.Errorf("MaxConsecutiveRun() = %d, expected %d", run, tt.expected)
			}
		})
	}
}
