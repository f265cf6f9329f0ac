package collector

import (
	"time"

	"TDSentinel/internal/model"
)

// Resample aggregates fine-grained bars into buckets of the given interval:
// first open, max high, min low, last close, summed volume. Input must be in
// ascending time order; bucket boundaries align to the interval.
func Resample(bars []model.PriceBar, interval time.Duration) []model.PriceBar {
	if len(bars) == 0 {
		return nil
	}

	var out []model.PriceBar
	var cur model.PriceBar
	var started bool

	for _, b := range bars {
		bucket := b.Time.Truncate(interval)
		if !started || !bucket.Equal(cur.Time) {
			if started {
				out = append(out, cur)
			}
			cur = model.PriceBar{
				Time:   bucket,
				Open:   b.Open,
				High:   b.High,
				Low:    b.Low,
				Close:  b.Close,
				Volume: b.Volume,
			}
			started = true
			continue
		}
		if b.High > cur.High {
			cur.High = b.High
		}
		if b.Low < cur.Low {
			cur.Low = b.Low
		}
		cur.Close = b.Close
		cur.Volume += b.Volume
	}
	out = append(out, cur)
	return out
}
