package moderation

// AutoApprovalMinConfidence is the fixed confidence floor for activating
// content without an admin. It is a design constant, not configuration.
const AutoApprovalMinConfidence = 85

// IsEligibleForAutoApproval decides whether a verdict clears content for
// publication without human review. Every condition must hold; there is no
// partial credit.
func IsEligibleForAutoApproval(v Verdict) bool {
	return v.Success &&
		v.IsApproved &&
		v.Confidence >= AutoApprovalMinConfidence &&
		v.Category == CategorySafe &&
		len(v.Issues) == 0
}
