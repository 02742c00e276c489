package convert

import "github.com/philipparndt/glb2step/internal/repair"

// State names a stage of the conversion state machine
type State int

const (
	StateStart State = iota
	StateLoad
	StateRepair
	StateWriteSTL
	StateTryPrecise
	StateTryFallback
	StateDoneStep
	StateDoneSTLOnly
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "START"
	case StateLoad:
		return "LOAD"
	case StateRepair:
		return "REPAIR"
	case StateWriteSTL:
		return "WRITE_STL"
	case StateTryPrecise:
		return "TRY_PRECISE"
	case StateTryFallback:
		return "TRY_FALLBACK"
	case StateDoneStep:
		return "DONE_STEP"
	case StateDoneSTLOnly:
		return "DONE_STL_ONLY"
	case StateFailed:
		return "FAILED"
	}
	return "UNKNOWN"
}

// Status is the tagged outcome of a conversion. Exactly one status is
// produced per run.
type Status int

const (
	// StatusStep means a STEP solid was produced (plus the STL)
	StatusStep Status = iota
	// StatusSTLOnly means reconstruction failed but the STL artifact
	// is available
	StatusSTLOnly
	// StatusFailed means no artifact was produced
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusStep:
		return "step"
	case StatusSTLOnly:
		return "stl-only"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// ExitCode maps the status onto the CLI exit-code contract:
// 0 = STEP produced, 1 = degraded STL-only, 2 = hard failure
func (s Status) ExitCode() int {
	switch s {
	case StatusStep:
		return 0
	case StatusSTLOnly:
		return 1
	default:
		return 2
	}
}

// Result is the single structured outcome of a conversion run
type Result struct {
	Status   Status
	STLPath  string // empty only when writing the STL itself failed
	StepPath string // empty unless Status == StatusStep
	Reason   string // human-readable explanation for degraded or failed runs
	Report   repair.Report
}
