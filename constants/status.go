package constants

// ProcessingStatus is the canonical lifecycle status for rows in documents.
type ProcessingStatus string

// Stable values (store these exact strings in DB).
const (
	StatusUploaded   ProcessingStatus = "uploaded"   // record created, pipeline not yet started
	StatusProcessing ProcessingStatus = "processing" // pipeline run in progress
	StatusCompleted  ProcessingStatus = "completed"  // terminal success
	StatusFailed     ProcessingStatus = "failed"     // terminal failure
)

// Terminal reports whether no further transition is allowed from s.
func (s ProcessingStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransition enforces the forward-only state machine:
// uploaded -> processing -> {completed | failed}.
func CanTransition(from, to ProcessingStatus) bool {
	switch from {
	case StatusUploaded:
		return to == StatusProcessing || to == StatusFailed
	case StatusProcessing:
		return to == StatusCompleted || to == StatusFailed
	default:
		return false
	}
}
