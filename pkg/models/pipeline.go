package models

// Stage is a named position in the candidate pipeline.
type Stage string

const (
	StageNew        Stage = "new"
	StageScreening  Stage = "screening"
	StageInterview  Stage = "interview"
	StageReschedule Stage = "reschedule"
	StageOffer      Stage = "offer"
	StageRejected   Stage = "rejected"
	StageHired      Stage = "hired"
)

// Stages lists all pipeline stages in board order.
var Stages = []Stage{
	StageNew,
	StageScreening,
	StageInterview,
	StageReschedule,
	StageOffer,
	StageRejected,
	StageHired,
}

// Valid reports whether s is a known pipeline stage.
func (s Stage) Valid() bool {
	for _, known := range Stages {
		if s == known {
			return true
		}
	}
	return false
}

// EmailType returns the outbound email category for a stage. The email log
// records this so near-duplicate sends (e.g. a manual offer email racing the
// offer-stage workflow) can be detected.
func (s Stage) EmailType() string {
	switch s {
	case StageNew:
		return "new_candidate"
	case StageScreening:
		return "screening"
	case StageInterview:
		return "interview_invite"
	case StageReschedule:
		return "interview_reschedule"
	case StageOffer:
		return "offer"
	case StageRejected:
		return "rejection"
	case StageHired:
		return "hired"
	default:
		return "general"
	}
}

// SourceDirectApplication marks candidates that applied themselves rather
// than being sourced or generated. Test candidates with this source still
// receive stage emails.
const SourceDirectApplication = "direct_application"
