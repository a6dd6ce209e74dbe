package flow

// Record accumulates the values accepted across steps, keyed by field name.
type Record map[string]string

// Clone returns an independent copy.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Merge returns a new record holding r overlaid with values.
func (r Record) Merge(values map[string]string) Record {
	out := r.Clone()
	for k, v := range values {
		out[k] = v
	}
	return out
}

// State is the explicit position of one flow instance.
type State struct {
	Flow   string `json:"flow"`
	Step   int    `json:"step"`
	Record Record `json:"record"`
	Done   bool   `json:"done,omitempty"`
}

// Clone returns a copy that shares nothing with s.
func (s State) Clone() State {
	s.Record = s.Record.Clone()
	return s
}

// Start returns the initial state for def: step 1 with an empty record.
func Start(def Definition) State {
	return State{Flow: def.ID, Step: 1, Record: Record{}}
}
