package verification

// Status is the run state of a verification.
type Status uint8

const (
	NotStarted Status = iota
	Running
	FinishedSuccessfully
	FinishedWithErrors
	FinishedWithFailures
)

var statusNames = map[Status]string{
	NotStarted:           "not started",
	Running:              "running",
	FinishedSuccessfully: "success",
	FinishedWithErrors:   "errors",
	FinishedWithFailures: "failures",
}

func (s Status) String() string {
	return statusNames[s]
}

// Finished reports whether the status is final.
func (s Status) Finished() bool {
	return s >= FinishedSuccessfully
}

// statusOf derives the final status. Errors take priority over failures.
func statusOf(r *Result) Status {
	switch {
	case r.HasErrors():
		return FinishedWithErrors
	case r.HasFailures():
		return FinishedWithFailures
	default:
		return FinishedSuccessfully
	}
}
