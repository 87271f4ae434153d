package moderation

// Category classifies why content was approved or held. The set is closed so
// the decision policy can be exhaustive.
type Category string

const (
	CategorySafe             Category = "SAFE"
	CategoryCollegeCriticism Category = "COLLEGE_CRITICISM"
	CategoryProfanity        Category = "PROFANITY"
	CategoryUnprofessional   Category = "UNPROFESSIONAL"
	CategorySpam             Category = "SPAM"
	CategoryError            Category = "ERROR"
	CategoryNotChecked       Category = "NOT_CHECKED"
)

func ParseCategory(value string) (Category, bool) {
	switch Category(value) {
	case CategorySafe, CategoryCollegeCriticism, CategoryProfanity, CategoryUnprofessional, CategorySpam, CategoryError, CategoryNotChecked:
		return Category(value), true
	default:
		return "", false
	}
}

// Verdict is the outcome of one moderation call. Success is false whenever the
// call itself failed, in which case the rest of the fields are fail-closed.
type Verdict struct {
	Success    bool     `json:"success"`
	IsApproved bool     `json:"is_approved"`
	Confidence int      `json:"confidence"`
	Issues     []string `json:"issues"`
	Reason     string   `json:"reason"`
	Category   Category `json:"category"`
}

func failClosed(reason string) Verdict {
	return Verdict{
		Success:    false,
		IsApproved: false,
		Confidence: 0,
		Issues:     []string{},
		Reason:     reason,
		Category:   CategoryError,
	}
}

// Draft is the advisory result of the extraction assist. It never influences
// an approval decision.
type Draft struct {
	Success     bool   `json:"success"`
	CompanyName string `json:"company_name"`
	Title       string `json:"title"`
	Content     string `json:"content"`
}
