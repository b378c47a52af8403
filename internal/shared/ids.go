package shared

import (
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

var idSeq atomic.Uint32

// NewID returns an opaque, time-derived identifier such as "AUD-M2K9Q1X40A".
// A rolling two-character suffix keeps identifiers minted in the same
// millisecond distinct.
func NewID(prefix string, at time.Time) string {
	seq := int64(idSeq.Add(1)%1296) + 1296
	return prefix + "-" + strings.ToUpper(strconv.FormatInt(at.UnixMilli(), 36)+strconv.FormatInt(seq, 36)[1:])
}
