package suggestion

import (
	"math"
	"sort"
	"time"

	"github.com/GriffinCanCode/formfill/internal/shared/types"
)

// FrecencyScore combines use count and days since last use. Higher ranks
// first; a record used often and recently scores closest to zero.
func FrecencyScore(useCount int, useDate, now time.Time) float64 {
	days := 0.0
	if !useDate.IsZero() && now.After(useDate) {
		days = math.Floor(now.Sub(useDate).Hours() / 24)
	}
	if useCount < 0 {
		useCount = 0
	}
	return -math.Log(days+2) / math.Log(float64(useCount)+2)
}

// candidate is a record on its way to becoming a suggestion
type candidate struct {
	record  types.Record
	expired bool
	score   float64
	value   string
	label   string
}

// rank orders candidates: unexpired before expired, then by score. Equal
// keys keep storage order.
func rank(cands []candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].expired != cands[j].expired {
			return !cands[i].expired
		}
		return cands[i].score > cands[j].score
	})
}

// dedupAddresses merges entries that display the same value and label. The
// merged entry keeps the first position and takes its GUID from the most
// recently used duplicate.
func dedupAddresses(cands []candidate) []candidate {
	out := make([]candidate, 0, len(cands))
	index := make(map[[2]string]int, len(cands))
	for _, c := range cands {
		key := [2]string{c.value, c.label}
		i, seen := index[key]
		if !seen {
			index[key] = len(out)
			out = append(out, c)
			continue
		}
		_, kept := out[i].record.UseStats()
		_, dup := c.record.UseStats()
		if dup.After(kept) {
			pos := out[i]
			pos.record = c.record
			out[i] = pos
		}
	}
	return out
}
