package accrual

import (
	"testing"

	"github.com/google/uuid"
	"github.com/lunban/lunban/pkg/model"
)

var (
	dayShift = &model.Shift{
		BaseModel: model.NewBaseModel(),
		Name:      "白班", Code: "D", Type: model.ShiftDay,
		StartTime: "08:00", EndTime: "16:00", Duration: 480,
	}
	offShift = &model.Shift{
		BaseModel: model.NewBaseModel(),
		Name:      "休班", Code: "O", Type: model.ShiftOff,
	}
)

func offDays(empID uuid.UUID, n int, dates []string) []*model.Assignment {
	out := make([]*model.Assignment, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, &model.Assignment{
			BaseModel:  model.NewBaseModel(),
			EmployeeID: empID,
			ShiftID:    offShift.ID,
			Date:       dates[i],
		})
	}
	return out
}

var weekDates = []string{
	"2026-02-02", "2026-02-03", "2026-02-04", "2026-02-05",
	"2026-02-06", "2026-02-07", "2026-02-08",
}

func TestSummarize(t *testing.T) {
	shifts := []*model.Shift{dayShift, offShift}

	tests := []struct {
		name            string
		guaranteed      int
		actualOff       int
		carried         int
		expectedExtra   int
		expectedBalance int
	}{
		{"恰好达标", 2, 2, 0, 0, 0},
		{"超额休假", 2, 4, 0, 2, 2},
		{"欠休结余为负", 2, 1, 0, 0, -1},
		{"结转叠加", 2, 3, 1, 1, 2},
		{"结转弥补欠休", 2, 1, 2, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emp := &model.Employee{
				BaseModel:         model.NewBaseModel(),
				Name:              "甲",
				GuaranteedOffDays: tt.guaranteed,
			}
			tracker := NewTracker(map[uuid.UUID]int{emp.ID: tt.carried})
			assignments := offDays(emp.ID, tt.actualOff, weekDates)

			summaries := tracker.Summarize(assignments, []*model.Employee{emp}, shifts)
			if len(summaries) != 1 {
				t.Fatalf("汇总条数 = %d, expected 1", len(summaries))
			}
			s := summaries[0]
			if s.ActualOffDays != tt.actualOff {
				t.Errorf("ActualOffDays = %d, expected %d", s.ActualOffDays, tt.actualOff)
			}
			if s.ExtraOffDays != tt.expectedExtra {
				t.Errorf("ExtraOffDays = %d, expected %d", s.ExtraOffDays, tt.expectedExtra)
			}
			if s.CarriedOver != tt.carried {
				t.Errorf("CarriedOver = %d, expected %d", s.CarriedOver, tt.carried)
			}
			if s.Balance != tt.expectedBalance {
				t.Errorf("Balance = %d, expected %d", s.Balance, tt.expectedBalance)
			}
		})
	}
}

func TestSummarize_IgnoresWorkingShifts(t *testing.T) {
	emp := &model.Employee{BaseModel: model.NewBaseModel(), Name: "甲", GuaranteedOffDays: 1}
	assignments := []*model.Assignment{
		{BaseModel: model.NewBaseModel(), EmployeeID: emp.ID, ShiftID: dayShift.ID, Date: "2026-02-02"},
		{BaseModel: model.NewBaseModel(), EmployeeID: emp.ID, ShiftID: offShift.ID, Date: "2026-02-03"},
	}

	tracker := NewTracker(nil)
	summaries := tracker.Summarize(assignments, []*model.Employee{emp}, []*model.Shift{dayShift, offShift})
	if summaries[0].ActualOffDays != 1 {
		t.Errorf("ActualOffDays = %d, expected 1", summaries[0].ActualOffDays)
	}
}

func TestNewTracker_NilPrevious(t *testing.T) {
	tracker := NewTracker(nil)
	if got := tracker.CarriedOver(uuid.New()); got != 0 {
		t.Errorf("CarriedOver() = %d, expected 0", got)
	}
}

func TestNextPeriodBalances(t *testing.T) {
	emp := &model.Employee{BaseModel: model.NewBaseModel(), Name: "甲", GuaranteedOffDays: 2}
	tracker := NewTracker(map[uuid.UUID]int{emp.ID: 1})
	summaries := tracker.Summarize(offDays(emp.ID, 3, weekDates), []*model.Employee{emp}, []*model.Shift{offShift})

	next := NextPeriodBalances(summaries)
	if next[emp.ID] != 2 {
		t.Errorf("下期结转 = %d, expected 2", next[emp.ID])
	}

	// 下期以结转为起点再跑一轮
	second := NewTracker(next)
	if second.CarriedOver(emp.ID) != 2 {
		t.Errorf("CarriedOver() = %d, expected 2", second.CarriedOver(emp.ID))
	}
}
