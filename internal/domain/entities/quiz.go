package entities

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// QuizQuestion is a multiple-choice question of the question bank.
// Answer must equal one of Options exactly.
type QuizQuestion struct {
	Q       string   `json:"q" validate:"required"`
	Options []string `json:"options" validate:"min=2,dive,required"`
	Answer  string   `json:"answer" validate:"required"`
}

// IsCorrect reports whether the option is the recorded answer.
// Comparison is literal.
func (q QuizQuestion) IsCorrect(option string) bool {
	return option == q.Answer
}

// QuestionBank maps topic, then difficulty, to its question pool.
type QuestionBank map[string]map[string][]QuizQuestion

// Pool returns the questions for the topic and difficulty pair.
func (b QuestionBank) Pool(topic, difficulty string) ([]QuizQuestion, bool) {
	byDifficulty, ok := b[topic]
	if !ok {
		return nil, false
	}
	pool, ok := byDifficulty[difficulty]
	if !ok || len(pool) == 0 {
		return nil, false
	}
	return pool, true
}

// HistoryDateLayout is the en-GB day/short month/year date format.
const HistoryDateLayout = "02 Jan 2006"

// QuizHistoryEntry is one past quiz attempt.
type QuizHistoryEntry struct {
	Name  string `json:"name"`
	Date  string `json:"date"`
	Score string `json:"score"`
}

// NewQuizHistoryEntry builds a history entry for an attempt.
func NewQuizHistoryEntry(name string, at time.Time, score, total int) QuizHistoryEntry {
	return QuizHistoryEntry{
		Name:  name,
		Date:  at.Format(HistoryDateLayout),
		Score: FormatScore(score, total),
	}
}

// FormatScore formats a score as stored in quiz history.
func FormatScore(score, total int) string {
	return fmt.Sprintf("%d / %d", score, total)
}

// Percentage parses the stored score and returns the percentage correct.
// Entries that cannot be parsed count as zero.
func (e QuizHistoryEntry) Percentage() float64 {
	correctStr, totalStr, ok := strings.Cut(e.Score, "/")
	if !ok {
		return 0
	}

	correct, err := strconv.Atoi(strings.TrimSpace(correctStr))
	if err != nil {
		return 0
	}
	total, err := strconv.Atoi(strings.TrimSpace(totalStr))
	if err != nil || total <= 0 {
		return 0
	}

	return float64(correct) / float64(total) * 100
}

// TopicName turns a question bank topic key into its display name.
func TopicName(topic string) string {
	name := strings.Replace(topic, "cyclones", "Cyclone", 1)
	if name == "" {
		return ""
	}
	return strings.ToUpper(name[:1]) + strings.Replace(name[1:], "fire", " Fire", 1)
}

// Capitalize upper-cases the first letter of s.
func Capitalize(s string) string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// AttemptName returns the quiz history name of an attempt.
func AttemptName(topic, difficulty string) string {
	return fmt.Sprintf("%s (%s)", TopicName(topic), difficulty)
}

// QuizTitle returns the heading of a running quiz.
func QuizTitle(topic, difficulty string) string {
	return fmt.Sprintf("%s — %s Quiz", TopicName(topic), strings.ToUpper(difficulty))
}

// FeedbackTier classifies a finished attempt for the result message.
type FeedbackTier string

const (
	FeedbackExcellent      FeedbackTier = "excellent"
	FeedbackGood           FeedbackTier = "good"
	FeedbackKeepPracticing FeedbackTier = "keep practicing"
)

// FeedbackFor returns the feedback tier for a percentage.
func FeedbackFor(percentage float64) FeedbackTier {
	switch {
	case percentage >= 80:
		return FeedbackExcellent
	case percentage >= 50:
		return FeedbackGood
	default:
		return FeedbackKeepPracticing
	}
}

// Topics returns the bank topics in sorted order.
func (b QuestionBank) Topics() []string {
	topics := make([]string, 0, len(b))
	for topic := range b {
		topics = append(topics, topic)
	}
	sort.Strings(topics)
	return topics
}

var difficultyOrder = map[string]int{"easy": 0, "medium": 1, "hard": 2}

// Difficulties returns the non-empty difficulty levels of a topic,
// easy to hard first and unknown levels after them alphabetically.
func (b QuestionBank) Difficulties(topic string) []string {
	levels := make([]string, 0, len(b[topic]))
	for level, pool := range b[topic] {
		if len(pool) > 0 {
			levels = append(levels, level)
		}
	}

	sort.Slice(levels, func(i, j int) bool {
		ri, iKnown := difficultyOrder[levels[i]]
		rj, jKnown := difficultyOrder[levels[j]]
		switch {
		case iKnown && jKnown:
			return ri < rj
		case iKnown != jKnown:
			return iKnown
		default:
			return levels[i] < levels[j]
		}
	})
	return levels
}
