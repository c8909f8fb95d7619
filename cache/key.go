package cache

import (
	"fmt"
	"strings"
	"time"

	"github.com/quantsignal/consensus/types"
)

// Key computes the signal cache key for (pair, timeframe, as_of),
// bucketing as_of to the timeframe's bar duration so that two
// requests falling in the same bar hit the same cache entry
// (spec.md §4.4 step 1, Glossary "cache bucket").
func Key(pair string, tf types.Timeframe, asOf time.Time) string {
	pair = strings.ToUpper(strings.TrimSpace(pair))
	durSeconds, ok := tf.Duration()
	if !ok || durSeconds <= 0 {
		return fmt.Sprintf("%s|%s|%d", pair, tf, asOf.Unix())
	}
	bucket := asOf.Unix() / durSeconds
	return fmt.Sprintf("%s|%s|%d", pair, tf, bucket)
}
