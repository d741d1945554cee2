package vectorstore

import (
	"encoding/json"
	"fmt"
)

// ItemError records why one ingest item was skipped.
type ItemError struct {
	Index int // zero-based position in the ingest batch
	Err   error
}

func (e ItemError) Error() string {
	return fmt.Sprintf("item %d: %v", e.Index, e.Err)
}

func (e ItemError) Unwrap() error {
	return e.Err
}

// MarshalJSON renders the error as {"index":i,"error":"..."}.
func (e ItemError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Index int    `json:"index"`
		Error string `json:"error"`
	}{e.Index, e.Err.Error()})
}

// IngestResult reports a best-effort bulk ingest.
type IngestResult struct {
	Added  int         `json:"added"`  // chunks committed
	Errors []ItemError `json:"errors"` // one entry per skipped item, in item order
}

// Messages returns the item errors as strings.
func (r *IngestResult) Messages() []string {
	out := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		out[i] = e.Error()
	}
	return out
}
