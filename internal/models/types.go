package models

type SubmissionStatus string

const (
	StatusFinished SubmissionStatus = "finished"
	StatusWorking  SubmissionStatus = "working"
	StatusWaiting  SubmissionStatus = "waiting"
	StatusCreating SubmissionStatus = "creating"
)

// PerfectScore is the domain maximum; anything at or above it counts as solved.
const PerfectScore = 100

// TimeLayout is how submission timestamps are stored: the record's own
// wall-clock time at second precision, without an offset.
const TimeLayout = "2006-01-02 15:04:05"
