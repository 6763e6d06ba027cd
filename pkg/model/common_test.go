package model

import (
	"testing"
	"time"
)

func TestDateRange_Days(t *testing.T) {
	tests := []struct {
		name     string
		start    string
		end      string
		expected int
	}{
		{"一周", "2026-02-02", "2026-02-08", 7},
		{"单日", "2026-02-02", "2026-02-02", 1},
		{"跨月", "2026-01-30", "2026-02-02", 4},
		{"起止颠倒", "2026-02-08", "2026-02-02", 0},
		{"非法日期", "not-a-date", "2026-02-02", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dr := DateRange{StartDate: tt.start, EndDate: tt.end}
			days := dr.Days()
			if len(days) != tt.expected {
				t.Errorf("Days() 返回 %d 天, expected %d", len(days), tt.expected)
			}
			if dr.NumDays() != tt.expected {
				t.Errorf("NumDays() = %d, expected %d", dr.NumDays(), tt.expected)
			}
		})
	}
}

func TestDateRange_DaysOrdered(t *testing.T) {
	dr := DateRange{StartDate: "2026-02-02", EndDate: "2026-02-05"}
	days := dr.Days()
	expected := []string{"2026-02-02", "2026-02-03", "2026-02-04", "2026-02-05"}
	for i, d := range expected {
		if days[i] != d {
			t.Errorf("days[%d] = %s, expected %s", i, days[i], d)
		}
	}
}

func TestDateRange_Contains(t *testing.T) {
	dr := DateRange{StartDate: "2026-02-02", EndDate: "2026-02-08"}

	tests := []struct {
		date     string
		expected bool
	}{
		{"2026-02-02", true},
		{"2026-02-08", true},
		{"2026-02-05", true},
		{"2026-02-01", false},
		{"2026-02-09", false},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			if result := dr.Contains(tt.date); result != tt.expected {
				t.Errorf("Contains(%s) = %v, expected %v", tt.date, result, tt.expected)
			}
		})
	}
}

func TestIsWeekend(t *testing.T) {
	tests := []struct {
		date     string
		expected bool
	}{
		{"2026-02-07", true},  // 周六
		{"2026-02-08", true},  // 周日
		{"2026-02-06", false}, // 周五
		{"2026-02-09", false}, // 周一
		{"bad-date", false},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			if result := IsWeekend(tt.date); result != tt.expected {
				t.Errorf("IsWeekend(%s) = %v, expected %v", tt.date, result, tt.expected)
			}
		})
	}
}

func TestISOWeek(t *testing.T) {
	tests := []struct {
		date     string
		expected string
	}{
		{"2026-02-02", "2026-W06"},
		{"2026-02-08", "2026-W06"},
		{"2026-02-09", "2026-W07"},
		{"2026-01-01", "2026-W01"},
		{"bad", ""},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			if result := ISOWeek(tt.date); result != tt.expected {
				t.Errorf("ISOWeek(%s) = %s, expected %s", tt.date, result, tt.expected)
			}
		})
	}
}

func TestPrevNextDate(t *testing.T) {
	if d := NextDate("2026-02-28"); d != "2026-03-01" {
		t.Errorf("NextDate 跨月 = %s, expected 2026-03-01", d)
	}
	if d := PrevDate("2026-03-01"); d != "2026-02-28" {
		t.Errorf("PrevDate 跨月 = %s, expected 2026-02-28", d)
	}
	if d := NextDate("bad"); d != "" {
		t.Errorf("NextDate 非法日期 = %s, expected 空串", d)
	}
}

func TestWeekday(t *testing.T) {
	if wd := Weekday("2026-02-02"); wd != time.Monday {
		t.Errorf("Weekday(2026-02-02) = %v, expected Monday", wd)
	}
}
