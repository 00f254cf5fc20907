package indicators

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"smabacktest/types"
)

func prices(closes ...string) []types.PricePoint {
	base := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]types.PricePoint, len(closes))
	for i, c := range closes {
		out[i] = types.PricePoint{
			Date:  base.AddDate(0, 0, i),
			Close: decimal.RequireFromString(c),
		}
	}
	return out
}

func TestSMA(t *testing.T) {
	tests := []struct {
		name   string
		closes []string
		window int
		want   []string // "" means undefined
	}{
		{
			name:   "window one is the series itself",
			closes: []string{"100", "102", "98"},
			window: 1,
			want:   []string{"100", "102", "98"},
		},
		{
			name:   "window three",
			closes: []string{"100", "102", "98", "104", "106"},
			window: 3,
			want:   []string{"", "", "100", "101.3333333333333333", "102.6666666666666667"},
		},
		{
			name:   "window equals length",
			closes: []string{"10", "20", "30"},
			window: 3,
			want:   []string{"", "", "20"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SMA(prices(tt.closes...), tt.window)
			if err != nil {
				t.Fatalf("SMA() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("SMA() returned %d points, want %d", len(got), len(tt.want))
			}
			for i, want := range tt.want {
				if want == "" {
					if got[i].Defined {
						t.Errorf("sma[%d] defined during warm-up, want undefined", i)
					}
					continue
				}
				if !got[i].Defined {
					t.Errorf("sma[%d] undefined, want %s", i, want)
					continue
				}
				if !got[i].Value.Equal(decimal.RequireFromString(want)) {
					t.Errorf("sma[%d] = %s, want %s", i, got[i].Value, want)
				}
			}
		})
	}
}

func TestSMA_InvalidWindow(t *testing.T) {
	if _, err := SMA(prices("100", "101"), 0); err == nil {
		t.Error("SMA(window=0) expected error")
	}
	if _, err := SMA(prices("100", "101"), 3); err == nil {
		t.Error("SMA(window > length) expected error")
	}
}

func TestSMA_DatesAligned(t *testing.T) {
	in := prices("100", "102", "98")
	got, err := SMA(in, 2)
	if err != nil {
		t.Fatalf("SMA() error = %v", err)
	}
	for i := range got {
		if !got[i].Date.Equal(in[i].Date) {
			t.Errorf("sma[%d] date = %v, want %v", i, got[i].Date, in[i].Date)
		}
	}
}
