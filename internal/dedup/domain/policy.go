package domain

import (
	"fmt"

	"github.com/mediavault/mediavault/pkg/models"
)

// RetentionThresholds are the score-delta boundaries of the retention policy.
type RetentionThresholds struct {
	// ManualReview is the delta below which the gap is too small to act on.
	ManualReview int
	// AutoApprove is the delta at or above which deletion may be automatic.
	AutoApprove int
}

// MemberVerdict is the per-member outcome of a retention decision, aligned
// with the ranked member order.
type MemberVerdict struct {
	Action models.MemberAction
	Reason string
}

// Verdict is the outcome of evaluating the retention policy over one ranked
// group.
type Verdict struct {
	Action          models.GroupAction
	Reason          string
	ScoreDelta      int
	LanguageConcern bool
	LanguageReason  string
	Members         []MemberVerdict
}

// EvaluateRetention classifies a ranked group (best quality first). The
// policy only classifies; it never deletes.
//
// delta < ManualReview threshold: the copies are too close to call.
// delta >= AutoApprove threshold: auto-delete, unless removing any non-best
// member raises a language concern, which downgrades to manual review.
// Anything between: manual review.
func EvaluateRetention(ranked []*models.MediaFile, th RetentionThresholds, lang LanguagePolicy) Verdict {
	best := ranked[0]
	worst := ranked[len(ranked)-1]
	delta := best.QualityScore - worst.QualityScore

	verdict := Verdict{ScoreDelta: delta}

	switch {
	case delta < th.ManualReview:
		verdict.Action = models.GroupActionManualReview
		verdict.Reason = fmt.Sprintf("quality difference too small (delta %d)", delta)

	case delta >= th.AutoApprove:
		verdict.Action = models.GroupActionAutoDelete
		verdict.Reason = fmt.Sprintf("clear quality winner (delta %d)", delta)
		for _, member := range ranked[1:] {
			if concern, reason := lang.CheckLanguageConcern(member); concern {
				verdict.Action = models.GroupActionManualReview
				verdict.Reason = "language concern on deletion candidate"
				verdict.LanguageConcern = true
				verdict.LanguageReason = reason
				break
			}
		}

	default:
		verdict.Action = models.GroupActionManualReview
		verdict.Reason = fmt.Sprintf("moderate quality difference (delta %d)", delta)
	}

	verdict.Members = memberVerdicts(ranked, verdict.Action)
	return verdict
}

// memberVerdicts mirrors the group verdict onto each ranked member: rank 1
// is always kept; the rest are deleted only under auto_delete, otherwise
// held for review.
func memberVerdicts(ranked []*models.MediaFile, action models.GroupAction) []MemberVerdict {
	verdicts := make([]MemberVerdict, len(ranked))
	verdicts[0] = MemberVerdict{
		Action: models.MemberActionKeep,
		Reason: "highest quality score",
	}

	for i := 1; i < len(ranked); i++ {
		if action == models.GroupActionAutoDelete {
			verdicts[i] = MemberVerdict{
				Action: models.MemberActionDelete,
				Reason: "lower quality duplicate",
			}
		} else {
			verdicts[i] = MemberVerdict{
				Action: models.MemberActionReview,
				Reason: "pending manual review",
			}
		}
	}
	return verdicts
}
