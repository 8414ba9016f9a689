package dto

// Severity bands for similarity scores. A score is a normalized measure of
// textual overlap, not a proof of copying.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// SimilarityMatch pairs a cohort submission with its similarity score
// against the target. Matches are computed on demand and never persisted.
type SimilarityMatch struct {
	SubmissionID uint    `json:"submission_id"`
	StudentID    uint    `json:"student_id"`
	Score        float64 `json:"score"`
	Severity     string  `json:"severity"`
}

// PlagiarismReport is the response of a plagiarism check, ranked by
// descending similarity.
type PlagiarismReport struct {
	TargetSubmissionID uint              `json:"target_submission_id"`
	Matches            []SimilarityMatch `json:"matches"`
}

// SeverityFor maps a similarity score to its band.
func SeverityFor(score float64) string {
	switch {
	case score >= 0.70:
		return SeverityHigh
	case score >= 0.40:
		return SeverityMedium
	default:
		return SeverityLow
	}
}
