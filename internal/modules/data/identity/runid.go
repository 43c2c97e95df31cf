package identity

import (
	"fmt"
	"sync/atomic"
	"time"
)

// runSeq is a process-local monotonic counter disambiguating ingest runs
// started within the same second, matching the original implementation's
// "ing_{YYYYMMDD_HHMMSSZ}_{seq:04d}" format.
var runSeq uint32

// GenerateIngestRunID returns a new ingest_run_id of the form
// "ing_YYYYMMDD_HHMMSSZ_NNNN". It is safe for concurrent use by the
// ingestion runner's per-request goroutines.
func GenerateIngestRunID(now time.Time) string {
	seq := atomic.AddUint32(&runSeq, 1) % 10000
	return fmt.Sprintf("ing_%sZ_%04d", now.UTC().Format("20060102_150405"), seq)
}
