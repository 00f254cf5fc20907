package engine

import (
	"smabacktest/types"
)

// GenerateSignals converts two date-aligned moving-average series into a
// discrete long/flat signal series. A period is long when the fast average is
// strictly above the slow one, flat otherwise (ties resolve to flat), and
// undefined while either average is still warming up.
func GenerateSignals(fast, slow []types.MAPoint) ([]types.SignalPoint, error) {
	if len(fast) != len(slow) {
		return nil, &DataError{
			Index:  min(len(fast), len(slow)),
			Reason: "fast and slow series length mismatch",
		}
	}

	signals := make([]types.SignalPoint, len(fast))
	for i := range fast {
		if !fast[i].Date.Equal(slow[i].Date) {
			return nil, &DataError{
				Index:  i,
				Date:   fast[i].Date,
				Reason: "fast and slow series date mismatch",
			}
		}

		sig := types.SignalUndefined
		if fast[i].Defined && slow[i].Defined {
			if fast[i].Value.GreaterThan(slow[i].Value) {
				sig = types.SignalLong
			} else {
				sig = types.SignalFlat
			}
		}
		signals[i] = types.SignalPoint{Date: fast[i].Date, Signal: sig}
	}
	return signals, nil
}
