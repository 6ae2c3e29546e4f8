package pipeline

// Stage is a state of a pipeline run.
type Stage int

const (
	StageStart Stage = iota
	StageAddressFetched
	StageStatsFetched
	StageHolidaysFetched
	StageReported
	StageDone
	StageFailed
)

var stageNames = [...]string{
	StageStart:           "start",
	StageAddressFetched:  "address_fetched",
	StageStatsFetched:    "stats_fetched",
	StageHolidaysFetched: "holidays_fetched",
	StageReported:        "reported",
	StageDone:            "done",
	StageFailed:          "failed",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}
	return stageNames[s]
}

// Terminal reports whether no further transition can follow s.
func (s Stage) Terminal() bool {
	return s == StageDone || s == StageFailed
}
