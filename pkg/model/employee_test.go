package model

import (
	"testing"
)

func TestEmployee_IsActive(t *testing.T) {
	tests := []struct {
		name     string
		status   string
		expected bool
	}{
		{"active员工", "active", true},
		{"空状态默认在职", "", true},
		{"inactive员工", "inactive", false},
		{"leave员工", "leave", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &Employee{Status: tt.status}
			if result := e.IsActive(); result != tt.expected {
				t.Errorf("IsActive() = %v, expected %v", result, tt.expected)
			}
		})
	}
}

func TestEmployee_PreferenceFor(t *testing.T) {
	e := &Employee{
		ShiftPreferences: map[string]float64{"D": 0.9, "N": 0.1},
	}

	tests := []struct {
		code     string
		expected float64
	}{
		{"D", 0.9},
		{"N", 0.1},
		{"E", 0.5}, // 未配置回退中性值
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if result := e.PreferenceFor(tt.code); result != tt.expected {
				t.Errorf("PreferenceFor(%s) = %v, expected %v", tt.code, result, tt.expected)
			}
		})
	}

	// 完全没有偏好表的员工
	plain := &Employee{}
	if result := plain.PreferenceFor("D"); result != 0.5 {
		t.Errorf("无偏好表时 PreferenceFor(D) = %v, expected 0.5", result)
	}
}

func TestCareerGroup_Matches(t *testing.T) {
	g := &CareerGroup{MinYears: 1, MaxYears: 3}

	tests := []struct {
		years    float64
		expected bool
	}{
		{1, true},
		{3, true}, // 闭区间
		{2.5, true},
		{0.9, false},
		{3.1, false},
	}

	for _, tt := range tests {
		if result := g.Matches(tt.years); result != tt.expected {
			t.Errorf("Matches(%v) = %v, expected %v", tt.years, result, tt.expected)
		}
	}
}
