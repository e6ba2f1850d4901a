package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCatalog_HeadingsIdentifyOwnCourse(t *testing.T) {
	for _, c := range Catalog {
		key, ok := IdentifyCourse(c.Title)
		assert.True(t, ok, c.Key)
		assert.Equal(t, c.Key, key)
	}
}

func TestCatalog_ModuleIDsUniquePerCourse(t *testing.T) {
	for _, c := range Catalog {
		seen := map[string]bool{}
		for i := range c.Modules {
			id := c.ModuleID(i)
			assert.False(t, seen[id], id)
			seen[id] = true
			assert.Equal(t, c.Key, CourseKeyOf(id))
		}
	}
}

func TestCourseTotals(t *testing.T) {
	totals := CourseTotals()
	assert.Equal(t, map[string]int{
		"floods": 7, "earthquakes": 7, "landslides": 6, "forestFires": 7,
		"tsunami": 7, "cyclones": 8, "chemical": 10, "biological": 11, "nuclear": 11,
	}, totals)
}

func TestIdentifyCourse(t *testing.T) {
	tests := []struct {
		heading string
		want    string
		ok      bool
	}{
		{"FLOOD Preparedness", "floods", true},
		{"Living with wildfire season", "forestFires", true},
		{"Forest Fire after an Earthquake", "earthquakes", true},
		{"Hurricane Season", "cyclones", true},
		{"Welcome to ResQEd", "", false},
	}

	for _, tt := range tests {
		got, ok := IdentifyCourse(tt.heading)
		assert.Equal(t, tt.ok, ok, tt.heading)
		assert.Equal(t, tt.want, got, tt.heading)
	}
}

func TestSlugifyAndDisambiguator(t *testing.T) {
	assert.Equal(t, "drop-cover-and-hold-on", Slugify("  Drop, Cover and Hold On "))
	assert.Equal(t, "post-cyclone-hazards", Slugify("Post-Cyclone\tHazards"))
	assert.Equal(t, "module-3", Disambiguator(3, "!!!"))
	assert.Equal(t, "floods_module-0", ModuleID("floods", Disambiguator(0, "")))
}

func TestCourseKeyOf(t *testing.T) {
	assert.Equal(t, "forestFires", CourseKeyOf("forestFires_fire-behaviour-basics"))
	assert.Equal(t, "orphan", CourseKeyOf("orphan"))
}

func TestProgress_MarkCompleteIdempotent(t *testing.T) {
	p := NewProgress()
	assert.True(t, p.MarkComplete("floods_a"))
	assert.False(t, p.MarkComplete("floods_a"))
	assert.Len(t, p.ModuleStatus, 1)
}

func TestProgress_CompletedCounts(t *testing.T) {
	p := NewProgress()
	p.ModuleStatus = ModuleStatus{
		"floods_a":     true,
		"floods_b":     true,
		"floods_c":     false,
		"Floods_d":     true,
		"volcanoes_a":  true,
		"tsunami_wave": true,
	}

	counts := p.CompletedCounts()
	assert.Equal(t, 2, counts["floods"])
	assert.Equal(t, 1, counts["tsunami"])
	assert.Equal(t, 0, counts["nuclear"])
	assert.NotContains(t, counts, "volcanoes")
	assert.NotContains(t, counts, "Floods")
}

func TestTierForScore(t *testing.T) {
	tests := []struct {
		score int
		tier  BadgeTier
		ok    bool
	}{
		{10, TierGold, true},
		{9, TierGold, true},
		{8, TierSilver, true},
		{7, TierSilver, true},
		{6, TierBronze, true},
		{5, TierBronze, true},
		{4, "", false},
		{0, "", false},
	}

	for _, tt := range tests {
		tier, ok := TierForScore(tt.score)
		assert.Equal(t, tt.ok, ok, tt.score)
		assert.Equal(t, tt.tier, tier, tt.score)
	}
}

func TestQuizHistoryEntry_Percentage(t *testing.T) {
	assert.InDelta(t, 70.0, QuizHistoryEntry{Score: "7 / 10"}.Percentage(), 1e-9)
	assert.InDelta(t, 50.0, QuizHistoryEntry{Score: "1/2"}.Percentage(), 1e-9)
	assert.Zero(t, QuizHistoryEntry{Score: "0 / 0"}.Percentage())
	assert.Zero(t, QuizHistoryEntry{Score: "garbage"}.Percentage())
}

func TestNewQuizHistoryEntry(t *testing.T) {
	at := time.Date(2026, time.October, 4, 9, 0, 0, 0, time.UTC)
	e := NewQuizHistoryEntry(AttemptName("forestfire", "easy"), at, 7, 10)

	assert.Equal(t, QuizHistoryEntry{Name: "Forest Fire (easy)", Date: "04 Oct 2026", Score: "7 / 10"}, e)
}

func TestTopicNames(t *testing.T) {
	assert.Equal(t, "Floods", TopicName("floods"))
	assert.Equal(t, "Forest Fire", TopicName("forestfire"))
	assert.Equal(t, "Cyclone", TopicName("cyclones"))
	assert.Equal(t, "Floods — HARD Quiz", QuizTitle("floods", "hard"))
	assert.Equal(t, "Medium", Capitalize("medium"))
}

func TestFeedbackFor(t *testing.T) {
	assert.Equal(t, FeedbackExcellent, FeedbackFor(80))
	assert.Equal(t, FeedbackGood, FeedbackFor(79.9))
	assert.Equal(t, FeedbackGood, FeedbackFor(50))
	assert.Equal(t, FeedbackKeepPracticing, FeedbackFor(49))
}

func TestQuestionBank_TopicsAndDifficulties(t *testing.T) {
	q := QuizQuestion{Q: "q", Options: []string{"a", "b"}, Answer: "a"}
	bank := QuestionBank{
		"tsunami": {"hard": {q}, "easy": {q}, "medium": {q}, "expert": {q}, "empty": {}},
		"floods":  {"easy": {q}},
	}

	assert.Equal(t, []string{"floods", "tsunami"}, bank.Topics())
	assert.Equal(t, []string{"easy", "medium", "hard", "expert"}, bank.Difficulties("tsunami"))

	_, ok := bank.Pool("tsunami", "empty")
	assert.False(t, ok)
	_, ok = bank.Pool("volcano", "easy")
	assert.False(t, ok)
}
