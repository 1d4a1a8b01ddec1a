package core

import "github.com/signalsfoundry/longitude/model"

// mergeSeries merges base samples with refinement samples, both sorted by
// time, in a single linear pass. A refinement whose timestamp is already
// present is dropped, so the result is strictly increasing. kept holds the
// refinements that made it into out.
func mergeSeries(base, refined []model.Sample) (out, kept []model.Sample) {
	out = make([]model.Sample, 0, len(base)+len(refined))
	i := 0
	for _, r := range refined {
		for i < len(base) && base[i].Time.Before(r.Time) {
			out = append(out, base[i])
			i++
		}
		if i < len(base) && base[i].Time.Equal(r.Time) {
			continue
		}
		if n := len(out); n > 0 && !out[n-1].Time.Before(r.Time) {
			continue
		}
		out = append(out, r)
		kept = append(kept, r)
	}
	return append(out, base[i:]...), kept
}
