package entities

// BadgeTier is a quiz badge tier.
type BadgeTier string

const (
	TierGold   BadgeTier = "gold"
	TierSilver BadgeTier = "silver"
	TierBronze BadgeTier = "bronze"
)

// Tiers lists quiz badge tiers from highest to lowest.
var Tiers = []BadgeTier{TierGold, TierSilver, TierBronze}

// Title returns the display title of the tier.
func (t BadgeTier) Title() string {
	switch t {
	case TierGold:
		return "Quiz Gold"
	case TierSilver:
		return "Quiz Silver"
	case TierBronze:
		return "Quiz Bronze"
	default:
		return string(t)
	}
}

// Badge score thresholds, compared against the raw correct-answer count.
const (
	GoldThreshold   = 9
	SilverThreshold = 7
	BronzeThreshold = 5
)

// TierForScore returns the single tier an attempt with the given raw score earns.
func TierForScore(score int) (BadgeTier, bool) {
	switch {
	case score >= GoldThreshold:
		return TierGold, true
	case score >= SilverThreshold:
		return TierSilver, true
	case score >= BronzeThreshold:
		return TierBronze, true
	default:
		return "", false
	}
}

// QuizBadge records the attempt that most recently earned a tier.
type QuizBadge struct {
	QuizName   string `json:"quizName"`
	Difficulty string `json:"difficulty"`
}

// QuizBadges holds at most one record per tier.
type QuizBadges map[BadgeTier]QuizBadge

// Award stores the record for the tier, replacing any previous one.
func (b QuizBadges) Award(tier BadgeTier, badge QuizBadge) {
	b[tier] = badge
}

// CourseBadge is a derived course-completion badge.
type CourseBadge struct {
	CourseKey string
	Icon      string
	Title     string
	Unlocked  bool
}
