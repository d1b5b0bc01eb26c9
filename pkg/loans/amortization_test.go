package loans

import (
	"math"
	"testing"

	"go.uber.org/zap"
)

func TestCalculateMonthlyPayment(t *testing.T) {
	tests := []struct {
		name          string
		principal     float64
		downPayment   float64
		annualRate    float64
		termMonths    int
		expectedRange []float64 // [min, max] expected range
	}{
		{
			name:          "Standard 30-year mortgage",
			principal:     300000,
			downPayment:   60000, // 20%
			annualRate:    0.06,
			termMonths:    360,
			expectedRange: []float64{1400, 1500}, // Around $1439
		},
		{
			name:          "5-year car loan",
			principal:     25000,
			downPayment:   5000,
			annualRate:    0.04,
			termMonths:    60,
			expectedRange: []float64{360, 380}, // Around $368
		},
		{
			name:          "Zero interest loan",
			principal:     12000,
			downPayment:   2000,
			annualRate:    0.0,
			termMonths:    60,
			expectedRange: []float64{166, 167}, // Exactly $166.67
		},
		{
			name:          "100% down payment",
			principal:     50000,
			downPayment:   50000,
			annualRate:    0.05,
			termMonths:    60,
			expectedRange: []float64{0, 0}, // Should be 0
		},
		{
			name:          "High interest loan",
			principal:     10000,
			downPayment:   0,
			annualRate:    0.18,
			termMonths:    36,
			expectedRange: []float64{360, 380}, // Around $372
		},
		{
			name:          "No periods",
			principal:     10000,
			annualRate:    0.05,
			termMonths:    0,
			expectedRange: []float64{0, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateMonthlyPayment(tt.principal, tt.downPayment, tt.annualRate, tt.termMonths)

			if result < tt.expectedRange[0] || result > tt.expectedRange[1] {
				t.Errorf("CalculateMonthlyPayment() = %.2f, expected range [%.2f, %.2f]",
					result, tt.expectedRange[0], tt.expectedRange[1])
			}
		})
	}
}

func TestCalculatePaymentQuarterly(t *testing.T) {
	// 10,000 over 5 years quarterly at 8%: 2% per quarter for 20 quarters
	result := CalculatePayment(10000, 0, 0.08, 4, 20)
	if math.Abs(result-611.57) > 0.01 {
		t.Errorf("CalculatePayment() = %.4f, expected 611.57", result)
	}
}

func TestCalculateInterestPayment(t *testing.T) {
	tests := []struct {
		name      string
		remaining float64
		rate      float64
		perYear   int
		expected  float64
	}{
		{"Monthly", 300000, 0.06, 12, 1500},
		{"Semi-annual", 1000, 0.05, 2, 25},
		{"Zero balance", 0, 0.06, 12, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateInterestPayment(tt.remaining, tt.rate, tt.perYear)
			if math.Abs(result-tt.expected) > 0.001 {
				t.Errorf("CalculateInterestPayment() = %.4f, expected %.4f", result, tt.expected)
			}
		})
	}
}

func TestGenerateScheduleErrors(t *testing.T) {
	generator := NewScheduleGenerator(nil)

	if _, err := generator.GenerateSchedule(-1, 0.05, 12, 12); err == nil {
		t.Error("GenerateSchedule() expected error for negative principal")
	}
	if _, err := generator.GenerateSchedule(1000, 0.05, 0, 12); err == nil {
		t.Error("GenerateSchedule() expected error for zero periods per year")
	}
	if _, err := generator.GenerateSchedule(1000, 0.05, 12, 0); err == nil {
		t.Error("GenerateSchedule() expected error for zero periods")
	}
	if _, err := generator.GenerateSchedule(1000, 0.05, 12, 1<<50); err == nil {
		t.Error("GenerateSchedule() expected error for periods beyond the cap")
	}
}

func TestGenerateScheduleZeroRate(t *testing.T) {
	schedule, err := NewScheduleGenerator(zap.NewNop()).GenerateSchedule(1200, 0, 12, 12)
	if err != nil {
		t.Fatalf("GenerateSchedule() error = %v", err)
	}
	if len(schedule) != 12 {
		t.Fatalf("expected 12 payments, got %d", len(schedule))
	}
	for _, p := range schedule {
		if math.Abs(p.Payment-100) > 1e-9 || p.Interest != 0 {
			t.Errorf("period %d: payment %.2f interest %.2f", p.Period, p.Payment, p.Interest)
		}
	}
	if TotalInterest(schedule) != 0 {
		t.Errorf("TotalInterest() = %.2f, expected 0", TotalInterest(schedule))
	}
}

func TestNetPresentValue(t *testing.T) {
	tests := []struct {
		name      string
		rate      float64
		cashFlows []float64
		expected  float64
	}{
		{"Single flow at t0", 0.10, []float64{-1000}, -1000},
		{"Classic project", 0.10, []float64{-1000, 300, 400, 500}, -21.0368},
		{"Zero rate sums flows", 0, []float64{-100, 50, 60}, 10},
		{"No flows", 0.05, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NetPresentValue(tt.rate, tt.cashFlows)
			if math.Abs(result-tt.expected) > 0.001 {
				t.Errorf("NetPresentValue() = %.4f, expected %.4f", result, tt.expected)
			}
		})
	}
}
