package repository

// Persistent store keys.
const (
	ProgressKey    = "ResQEdProgressData"
	QuizBadgesKey  = "ResQEdQuizBadges"
	QuizHistoryKey = "ResQEdQuizHistory"
)
