package model

// DeletionStep records the outcome of one step of a cascading delete.
type DeletionStep struct {
	Name  string `json:"name"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// DeletionReport collects every step of a best-effort class deletion.
type DeletionReport struct {
	ClassID string         `json:"class_id"`
	Steps   []DeletionStep `json:"steps"`
	Deleted bool           `json:"deleted"`
}

func (r *DeletionReport) Record(name string, err error) {
	step := DeletionStep{Name: name, OK: err == nil}
	if err != nil {
		step.Error = err.Error()
	}
	r.Steps = append(r.Steps, step)
}

// Failed returns the names of the steps that did not succeed.
func (r *DeletionReport) Failed() []string {
	var failed []string
	for _, s := range r.Steps {
		if !s.OK {
			failed = append(failed, s.Name)
		}
	}
	return failed
}
