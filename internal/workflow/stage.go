package workflow

// Stage is a step of the guided flow. Only the actions of the current stage
// are accepted.
type Stage string

const (
	StageURL        Stage = "url"
	StageResume     Stage = "resume"
	StageCreate     Stage = "create"
	StageGenerating Stage = "generating"
	StageView       Stage = "view"
	// StageError is only ever displayed. The session itself stays at the stage
	// whose action failed so it can be retried.
	StageError Stage = "error"
)

func (s Stage) in(stages ...Stage) bool {
	for _, v := range stages {
		if s == v {
			return true
		}
	}
	return false
}
