// ABOUTME: Tests for benchmark metric calculations
// ABOUTME: Covers faithfulness grading, context recall ratios, and pass/fail status

package ragas

import (
	"testing"
)

func TestCalculateFaithfulness(t *testing.T) {
	m := NewMetricsCalculator()

	tests := []struct {
		name      string
		response  string
		expected  []string
		forbidden []string
		want      float64
	}{
		{"all expected, none forbidden", "Metformin is first-line.", []string{"metformin"}, []string{"insulin"}, 1.0},
		{"missing expected", "Lifestyle changes.", []string{"Metformin"}, nil, 0.5},
		{"forbidden present", "Metformin or insulin.", []string{"Metformin"}, []string{"insulin"}, 0.5},
		{"missing and forbidden", "Insulin.", []string{"Metformin"}, []string{"insulin"}, 0.0},
		{"no expectations", "anything", nil, nil, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, detail := m.CalculateFaithfulness(tt.response, tt.expected, tt.forbidden)
			if got != tt.want {
				t.Errorf("score = %v, want %v (%s)", got, tt.want, detail)
			}
			if detail == "" {
				t.Error("detail should not be empty")
			}
		})
	}
}

func TestCalculateContextRecall(t *testing.T) {
	m := NewMetricsCalculator()

	got, _ := m.CalculateContextRecall([]string{"Blood pressure above 130/80"}, []string{"130/80", "BLOOD PRESSURE"})
	if got != 1.0 {
		t.Errorf("full recall = %v, want 1.0", got)
	}

	got, detail := m.CalculateContextRecall([]string{"Blood pressure"}, []string{"130/80", "blood pressure"})
	if got != 0.5 {
		t.Errorf("half recall = %v, want 0.5 (%s)", got, detail)
	}

	got, _ = m.CalculateContextRecall(nil, nil)
	if got != 1.0 {
		t.Errorf("no expectations = %v, want 1.0", got)
	}
}

func TestCheckTopSource(t *testing.T) {
	m := NewMetricsCalculator()

	if ok, _ := m.CheckTopSource([]string{"a.pdf", "b.pdf"}, "a.pdf"); !ok {
		t.Error("expected match on top source")
	}
	if ok, _ := m.CheckTopSource([]string{"b.pdf", "a.pdf"}, "a.pdf"); ok {
		t.Error("second-place source should not count")
	}
	if ok, _ := m.CheckTopSource(nil, "a.pdf"); ok {
		t.Error("empty retrieval should fail")
	}
	if ok, _ := m.CheckTopSource(nil, ""); !ok {
		t.Error("no expectation should pass")
	}
}

func TestEvaluateTest_Status(t *testing.T) {
	m := NewMetricsCalculator()
	scenario := GetFirstLineTherapy()

	pass := m.EvaluateTest(scenario, "Metformin.", []string{"Metformin is first-line"}, []string{"diabetes.txt"})
	if pass.Status != "PASS" {
		t.Errorf("status = %s, want PASS: %v", pass.Status, pass.Details)
	}
	if pass.OverallScore != 1.0 {
		t.Errorf("overall = %v, want 1.0", pass.OverallScore)
	}

	wrongSource := m.EvaluateTest(scenario, "Metformin.", []string{"Metformin is first-line"}, []string{"cardio.txt"})
	if wrongSource.Status != "FAIL" {
		t.Error("wrong top source should fail")
	}

	wrongAnswer := m.EvaluateTest(scenario, "Use corticosteroids.", []string{"Metformin"}, []string{"diabetes.txt"})
	if wrongAnswer.Status != "FAIL" {
		t.Error("unfaithful answer should fail")
	}
}
