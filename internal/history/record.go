package history

// DateLayout is the timestamp layout of output records.
const DateLayout = "2006-01-02T15:04:05"

// Record is the flat form of an entry handed to report writers.
type Record struct {
	CommitID    string   `json:"commitId"`
	Date        string   `json:"date"`
	Before      string   `json:"before"`
	After       string   `json:"after"`
	ChangeTypes []string `json:"changeTypes"`
}

// Record flattens the entry.
func (e Entry) Record() Record {
	kinds := e.Kinds()
	labels := make([]string, len(kinds))
	for i, k := range kinds {
		labels[i] = k.String()
	}
	date := ""
	if !e.Date().IsZero() {
		date = e.Date().Format(DateLayout)
	}
	return Record{
		CommitID:    e.CommitID(),
		Date:        date,
		Before:      e.Before.String(),
		After:       e.After.String(),
		ChangeTypes: labels,
	}
}

// Records flattens every entry of the history.
func (i Info) Records() []Record {
	out := make([]Record, len(i.Entries))
	for j, e := range i.Entries {
		out[j] = e.Record()
	}
	return out
}

// Descriptions returns the non-empty change descriptions of the entry.
func (e Entry) Descriptions() []string {
	var out []string
	for _, c := range e.Changes {
		if c.Description != "" {
			out = append(out, c.Description)
		}
	}
	return out
}
