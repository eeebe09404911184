package validation

import (
	"github.com/khanhng/martingale-bot/pkg/types"
)

// SplitByRatio splits a bar sequence into train and holdout slices.
// Parameter sweeps score candidates on the train slice and report the
// winner against the holdout, so the chosen schedule is never judged on
// the data that picked it. A ratio outside (0,1) returns everything as
// train.
func SplitByRatio(data []types.OHLCV, ratio float64) ([]types.OHLCV, []types.OHLCV) {
	if ratio <= 0 || ratio >= 1 {
		return data, nil
	}

	n := int(float64(len(data)) * ratio)
	if n < 1 || n >= len(data) {
		return data, nil
	}

	return data[:n], data[n:]
}
