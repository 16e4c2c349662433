package audit

import "time"

// Entry represents a single audit log record: one pdftk invocation.
type Entry struct {
	Seq       uint64    `json:"seq"`
	ID        string    `json:"id"`
	Time      time.Time `json:"ts"`
	PrevHash  string    `json:"prev_hash"`
	Job       string    `json:"job,omitempty"` // job label, when run from a job file
	Operation string    `json:"operation"`     // pdftk operation name, empty for none
	Command   string    `json:"command"`       // redacted command line
	Inputs    []string  `json:"inputs"`        // input file paths
	Output    string    `json:"output"`
	ExitCode  int       `json:"exit_code"`       // -1 if pdftk never ran
	Error     string    `json:"error,omitempty"` // error message if failed
	Duration  float64   `json:"duration_ms"`     // execution time in milliseconds
	Cwd       string    `json:"cwd"`             // working directory
	Hash      string    `json:"hash"`            // SHA-256 of this entry (with hash field empty)
}

// Record carries the details of one invocation to Log.
type Record struct {
	Job       string
	Operation string
	Command   string
	Inputs    []string
	Output    string
	ExitCode  int
	Err       error
	Duration  time.Duration
	Cwd       string
}
