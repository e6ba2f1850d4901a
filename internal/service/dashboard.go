package service

import (
	"context"
	"math"
	"sort"

	"github.com/resqed/resqed-bot/internal/domain/entities"
)

// Call-to-action labels for course progress.
const (
	ActionStart    = "Start Now"
	ActionContinue = "Continue"
	ActionReview   = "Review"
)

// CourseProgress is the aggregated progress of one course.
type CourseProgress struct {
	Key        string
	Title      string
	Completed  int
	Total      int
	Percentage int
	Action     string
}

// QuizBadgeView is an unlocked quiz badge tier.
type QuizBadgeView struct {
	Tier  entities.BadgeTier
	Title string
	entities.QuizBadge
}

// LeaderboardEntry is one ranked leaderboard row.
type LeaderboardEntry struct {
	Rank    int
	Name    string
	Score   int
	Current bool
}

// Dashboard is everything the dashboard page shows.
type Dashboard struct {
	Courses     []CourseProgress
	Overall     int
	CourseBadge []entities.CourseBadge // unlocked course badges only
	QuizBadges  []QuizBadgeView
	History     []entities.QuizHistoryEntry
	Leaderboard []LeaderboardEntry
}

// HasBadges reports whether any badge is unlocked.
func (d *Dashboard) HasBadges() bool {
	return len(d.CourseBadge) > 0 || len(d.QuizBadges) > 0
}

// BadgeShowcase lists every badge with its locked state.
type BadgeShowcase struct {
	Courses []entities.CourseBadge
	Quiz    []QuizTierState
}

// QuizTierState is a quiz tier and, when unlocked, the attempt that earned it.
type QuizTierState struct {
	Tier     entities.BadgeTier
	Title    string
	Unlocked bool
	Badge    entities.QuizBadge
}

// ReferenceScore is a fixed leaderboard entry.
type ReferenceScore struct {
	Name  string
	Score int
}

// DefaultReferenceScores are the fixed leaderboard entries.
var DefaultReferenceScores = []ReferenceScore{
	{Name: "Ravi Kumar", Score: 95},
	{Name: "Anjali Mehta", Score: 82},
	{Name: "Suresh Gupta", Score: 68},
	{Name: "Priya Singh", Score: 55},
}

type DashboardService struct {
	progressRepo ProgressRepository
	badgeRepo    BadgeRepository
	historyRepo  HistoryRepository
	references   []ReferenceScore
}

func NewDashboardService(
	progressRepo ProgressRepository,
	badgeRepo BadgeRepository,
	historyRepo HistoryRepository,
	references []ReferenceScore,
) *DashboardService {
	if references == nil {
		references = DefaultReferenceScores
	}
	return &DashboardService{
		progressRepo: progressRepo,
		badgeRepo:    badgeRepo,
		historyRepo:  historyRepo,
		references:   references,
	}
}

// Build aggregates the learner's stores into a dashboard.
func (s *DashboardService) Build(ctx context.Context, learnerID int64, learnerName string) *Dashboard {
	progress := s.progressRepo.Load(ctx, learnerID)
	badges := s.badgeRepo.LoadBadges(ctx, learnerID)
	history := s.historyRepo.LoadHistory(ctx, learnerID)

	counts := progress.CompletedCounts()
	d := &Dashboard{History: history}

	var totalCompleted, totalModules int
	for _, c := range entities.Catalog {
		total := progress.CourseTotals[c.Key]
		completed := counts[c.Key]
		pct := percentage(completed, total)

		d.Courses = append(d.Courses, CourseProgress{
			Key:        c.Key,
			Title:      c.Title,
			Completed:  completed,
			Total:      total,
			Percentage: pct,
			Action:     callToAction(pct),
		})

		if total > 0 && completed >= total {
			d.CourseBadge = append(d.CourseBadge, entities.CourseBadge{
				CourseKey: c.Key,
				Icon:      c.BadgeIcon,
				Title:     c.Badge,
				Unlocked:  true,
			})
		}

		totalCompleted += completed
		totalModules += total
	}
	d.Overall = percentage(totalCompleted, totalModules)

	for _, tier := range entities.Tiers {
		if b, ok := badges[tier]; ok {
			d.QuizBadges = append(d.QuizBadges, QuizBadgeView{Tier: tier, Title: tier.Title(), QuizBadge: b})
		}
	}

	d.Leaderboard = BuildLeaderboard(s.references, learnerName, LearnerScore(history))

	return d
}

// Showcase returns all course badges and quiz tiers with their locked state.
func (s *DashboardService) Showcase(ctx context.Context, learnerID int64) *BadgeShowcase {
	progress := s.progressRepo.Load(ctx, learnerID)
	badges := s.badgeRepo.LoadBadges(ctx, learnerID)
	counts := progress.CompletedCounts()

	sc := &BadgeShowcase{}
	for _, c := range entities.Catalog {
		total := progress.CourseTotals[c.Key]
		sc.Courses = append(sc.Courses, entities.CourseBadge{
			CourseKey: c.Key,
			Icon:      c.BadgeIcon,
			Title:     c.Badge,
			Unlocked:  total > 0 && counts[c.Key] >= total,
		})
	}

	for _, tier := range entities.Tiers {
		b, ok := badges[tier]
		sc.Quiz = append(sc.Quiz, QuizTierState{
			Tier:     tier,
			Title:    tier.Title(),
			Unlocked: ok,
			Badge:    b,
		})
	}

	return sc
}

// LearnerScore returns the rounded mean percentage correct over all attempts.
func LearnerScore(history []entities.QuizHistoryEntry) int {
	if len(history) == 0 {
		return 0
	}

	var sum float64
	for _, h := range history {
		sum += h.Percentage()
	}

	return int(math.Round(sum / float64(len(history))))
}

// BuildLeaderboard ranks the reference scores together with the learner.
// Ties keep input order, so the learner ranks below equal reference scores.
func BuildLeaderboard(references []ReferenceScore, learnerName string, learnerScore int) []LeaderboardEntry {
	entries := make([]LeaderboardEntry, 0, len(references)+1)
	for _, r := range references {
		entries = append(entries, LeaderboardEntry{Name: r.Name, Score: r.Score})
	}
	entries = append(entries, LeaderboardEntry{Name: learnerName, Score: learnerScore, Current: true})

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}

	return entries
}

func percentage(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

func callToAction(pct int) string {
	switch {
	case pct >= 100:
		return ActionReview
	case pct > 0:
		return ActionContinue
	default:
		return ActionStart
	}
}
