// Package history fetches job-execution history documents from the cluster
// and extracts canonical execution records from their varying schemas.
package history

import "fmt"

// ExecutionRecord is one task execution sample extracted from a history
// document. Times are milliseconds since epoch.
type ExecutionRecord struct {
	Node       string
	StartTime  int64
	FinishTime int64
	BytesRead  int64
}

// Skip records why a single history element was dropped during extraction.
type Skip struct {
	Element string
	Reason  string
}

// String implements fmt.Stringer.
func (s Skip) String() string {
	return fmt.Sprintf("%s: %s", s.Element, s.Reason)
}

// Extraction is the result of extracting one or more history documents.
// Skipped elements are kept for observability; they never abort extraction.
type Extraction struct {
	Records []ExecutionRecord
	Skipped []Skip
}

// Merge appends another extraction's records and skips.
func (e *Extraction) Merge(other *Extraction) {
	if other == nil {
		return
	}
	e.Records = append(e.Records, other.Records...)
	e.Skipped = append(e.Skipped, other.Skipped...)
}
