package calculator

import (
	"errors"
	"math"
	"testing"

	"GoldSentinel/internal/model"
)

func bars(closes ...float64) []model.Candle {
	out := make([]model.Candle, len(closes))
	for i, c := range closes {
		out[i] = model.Candle{Open: c, High: c, Low: c, Close: c}
	}
	return out
}

func TestCalculateSMA(t *testing.T) {
	tests := []struct {
		prices  []float64
		period  int
		want    float64
		wantErr bool
	}{
		{[]float64{1, 2, 3, 4, 5}, 5, 3, false},
		{[]float64{1, 2, 3, 4, 5}, 2, 4.5, false},
		{[]float64{1, 2}, 3, 0, true},
		{[]float64{1, 2}, 0, 0, true},
	}
	for _, tt := range tests {
		got, err := CalculateSMA(tt.prices, tt.period)
		if (err != nil) != tt.wantErr {
			t.Errorf("CalculateSMA(%v, %d): err = %v, wantErr %v", tt.prices, tt.period, err, tt.wantErr)
			continue
		}
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("CalculateSMA(%v, %d) = %f, want %f", tt.prices, tt.period, got, tt.want)
		}
	}
}

func TestMeanClose(t *testing.T) {
	mean, err := MeanClose(bars(1, 2, 3, 4, 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mean != 4 {
		t.Errorf("expected mean 4, got %f", mean)
	}

	if _, err := MeanClose(nil); !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
}

func TestLastClose(t *testing.T) {
	last, err := LastClose(bars(1, 2, 7))
	if err != nil || last != 7 {
		t.Errorf("expected 7, got %f (err=%v)", last, err)
	}
	if _, err := LastClose(nil); !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
}
