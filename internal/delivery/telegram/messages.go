// messages.go contains message templates and formatting functions for Telegram.

package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/resqed/resqed-bot/internal/domain/entities"
	"github.com/resqed/resqed-bot/internal/service"
)

// Error and notice messages.
const (
	msgInternalError    = "Something went wrong. Please try again later."
	msgUnknownCommand   = "Unknown command. Send /help to see what I can do."
	msgCourseUsage      = "Use: /course floods. Send /courses to see every course."
	msgCourseNotFound   = "Course not found. Send /courses to pick one."
	msgProgressSaved    = "Progress saved!"
	msgAlreadyCompleted = "Already completed."
	msgSaveFailed       = "Could not save your progress. Please try again."
	msgQuestionsLoading = "Quiz questions are still loading. Please try again in a moment."
	msgBankUnavailable  = "Could not load quiz questions. Please try again later."
	msgNoQuestions      = "No questions available for this selection. Please try another."
	msgQuizExpired      = "This quiz is no longer active."
	msgAlreadyAnswered  = "You already answered this question."
	msgCorrect          = "✅ Correct!"
	msgIncorrect        = "❌ Incorrect!"
	msgResetPrompt      = "Are you sure you want to reset all course and quiz progress? This cannot be undone."
	msgResetDone        = "All progress has been reset."
	msgResetCancelled   = "Reset cancelled."
	msgNoBadges         = "Complete courses and quizzes to earn badges!"
	msgNoHistory        = "No quizzes taken yet."
)

const progressBarLength = 10

// dashboardHistoryRows bounds the history section so the dashboard stays
// under Telegram's 4096 character message limit.
const dashboardHistoryRows = 10

// md escapes plain text for MarkdownV2.
func md(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2, s)
}

func bold(s string) string {
	return "*" + md(s) + "*"
}

func italic(s string) string {
	return "_" + md(s) + "_"
}

// newMessage creates a message with MarkdownV2 parse mode.
func newMessage(chatID int64, text string) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	return msg
}

// newPlainMessage creates a plain message without MarkdownV2 parse mode.
func newPlainMessage(chatID int64, text string) tgbotapi.MessageConfig {
	return tgbotapi.NewMessage(chatID, text)
}

// newEdit creates an edit with MarkdownV2 parse mode.
func newEdit(chatID int64, msgID int, text string) tgbotapi.EditMessageTextConfig {
	edit := tgbotapi.NewEditMessageText(chatID, msgID, text)
	edit.ParseMode = tgbotapi.ModeMarkdownV2
	return edit
}

// welcomeMessage builds the /start greeting.
func welcomeMessage(firstName string) string {
	name := firstName
	if name == "" {
		name = "there"
	}

	return strings.Join([]string{
		bold(fmt.Sprintf("👋 Welcome to ResQEd, %s!", name)),
		"",
		md("Learn how to prepare for floods, earthquakes, cyclones and other disasters. " +
			"Complete course modules, test yourself with timed quizzes and collect badges."),
		"",
		helpMessage(),
	}, "\n")
}

// helpMessage lists the available commands.
func helpMessage() string {
	lines := []string{
		bold("Commands"),
		md("/dashboard - your progress, badges and leaderboard"),
		md("/courses - all courses"),
		md("/course <name> - open a course, e.g. /course floods"),
		md("/quiz - take a timed quiz"),
		md("/badges - every badge you can earn"),
		md("/reset - clear all course and quiz progress"),
		md("/help - this message"),
	}
	return strings.Join(lines, "\n")
}

// buildProgressBar creates an ASCII progress bar.
func buildProgressBar(current, total, length int) string {
	if total == 0 {
		return fmt.Sprintf("[%s]", strings.Repeat("░", length))
	}

	filled := int(float64(current) / float64(total) * float64(length))
	if filled > length {
		filled = length
	}

	empty := length - filled
	bar := strings.Repeat("█", filled) + strings.Repeat("░", empty)
	return fmt.Sprintf("[%s]", bar)
}

func tierIcon(tier entities.BadgeTier) string {
	switch tier {
	case entities.TierGold:
		return "🥇"
	case entities.TierSilver:
		return "🥈"
	case entities.TierBronze:
		return "🥉"
	default:
		return "🏅"
	}
}

func courseIcon(key string) string {
	if c, ok := entities.CourseByKey(key); ok {
		return c.BadgeIcon
	}
	return "📘"
}

// learnerName is the leaderboard name of the current learner.
func learnerName(firstName string) string {
	if firstName == "" {
		return "You"
	}
	return firstName + " (You)"
}

// formatDashboard renders the dashboard (MarkdownV2 safe).
func formatDashboard(d *service.Dashboard) string {
	var sb strings.Builder

	sb.WriteString(bold("📊 Your Dashboard") + "\n\n")
	sb.WriteString(fmt.Sprintf("%s %s\n%s\n\n",
		bold("Overall progress:"),
		md(fmt.Sprintf("%d%%", d.Overall)),
		md(buildProgressBar(d.Overall, 100, progressBarLength)),
	))

	sb.WriteString(bold("📚 Courses") + "\n")
	for _, c := range d.Courses {
		sb.WriteString(md(fmt.Sprintf("%s %s: %d/%d (%d%%)\n%s %s\n",
			courseIcon(c.Key), c.Title, c.Completed, c.Total, c.Percentage,
			buildProgressBar(c.Percentage, 100, progressBarLength), c.Action,
		)))
	}

	sb.WriteString("\n" + bold("🏅 Badges") + "\n")
	if !d.HasBadges() {
		sb.WriteString(italic(msgNoBadges) + "\n")
	}
	for _, b := range d.CourseBadge {
		sb.WriteString(md(fmt.Sprintf("%s %s\n", b.Icon, b.Title)))
	}
	for _, b := range d.QuizBadges {
		sb.WriteString(md(fmt.Sprintf("%s %s: %s (%s)\n", tierIcon(b.Tier), b.Title, b.QuizName, b.Difficulty)))
	}

	sb.WriteString("\n" + bold("📝 Quiz History") + "\n")
	if len(d.History) == 0 {
		sb.WriteString(italic(msgNoHistory) + "\n")
	}
	shown := d.History
	if len(shown) > dashboardHistoryRows {
		shown = shown[:dashboardHistoryRows]
	}
	for _, h := range shown {
		sb.WriteString(md(fmt.Sprintf("%s · %s · %s\n", h.Name, h.Date, h.Score)))
	}
	if older := len(d.History) - len(shown); older > 0 {
		sb.WriteString(italic(fmt.Sprintf("…and %d older attempts", older)) + "\n")
	}

	sb.WriteString("\n" + bold("🏆 Leaderboard") + "\n")
	for _, e := range d.Leaderboard {
		row := fmt.Sprintf("%d. %s %d pts", e.Rank, e.Name, e.Score)
		if e.Current {
			sb.WriteString(bold(row) + "\n")
			continue
		}
		sb.WriteString(md(row) + "\n")
	}

	return strings.TrimRight(sb.String(), "\n")
}

// formatCourseList renders the course overview (MarkdownV2 safe).
func formatCourseList(d *service.Dashboard) string {
	var sb strings.Builder
	sb.WriteString(bold("📚 Courses") + "\n\n")
	for _, c := range d.Courses {
		sb.WriteString(md(fmt.Sprintf("%s %s: %d/%d modules (%d%%)\n",
			courseIcon(c.Key), c.Title, c.Completed, c.Total, c.Percentage)))
	}
	sb.WriteString("\n" + md("Pick a course to open its modules."))
	return sb.String()
}

// formatCoursePage renders a course page with its module list (MarkdownV2 safe).
func formatCoursePage(page *service.CoursePage) string {
	var sb strings.Builder

	total := len(page.Modules)
	done := page.CompletedCount()

	sb.WriteString(bold(fmt.Sprintf("%s %s", courseIcon(page.CourseKey), page.Heading)) + "\n")
	sb.WriteString(md(fmt.Sprintf("Progress: %d/%d\n%s", done, total, buildProgressBar(done, total, progressBarLength))) + "\n\n")

	for _, m := range page.Modules {
		mark := "⬜"
		if m.Completed {
			mark = "✅"
		}
		sb.WriteString(md(fmt.Sprintf("%s %d. %s", mark, m.Index+1, m.Title)) + "\n")
	}

	return strings.TrimRight(sb.String(), "\n")
}

// formatBadgeShowcase renders every badge with its locked state (MarkdownV2 safe).
func formatBadgeShowcase(sc *service.BadgeShowcase) string {
	var sb strings.Builder

	sb.WriteString(bold("🏅 Course Badges") + "\n")
	for _, b := range sc.Courses {
		if b.Unlocked {
			sb.WriteString(md(fmt.Sprintf("%s %s: unlocked", b.Icon, b.Title)) + "\n")
			continue
		}
		sb.WriteString(md(fmt.Sprintf("🔒 %s: locked", b.Title)) + "\n")
	}

	sb.WriteString("\n" + bold("🎯 Quiz Badges") + "\n")
	for _, q := range sc.Quiz {
		if q.Unlocked {
			sb.WriteString(md(fmt.Sprintf("%s %s: %s (%s)", tierIcon(q.Tier), q.Title, q.Badge.QuizName, q.Badge.Difficulty)) + "\n")
			continue
		}
		sb.WriteString(md(fmt.Sprintf("🔒 %s: locked", q.Title)) + "\n")
	}

	sb.WriteString("\n" + italic(fmt.Sprintf(
		"Score %d, %d or %d correct answers in a quiz to earn gold, silver or bronze.",
		entities.GoldThreshold, entities.SilverThreshold, entities.BronzeThreshold,
	)))

	return sb.String()
}

// formatTopicMenu renders the quiz topic prompt.
func formatTopicMenu() string {
	return bold("🎯 Quiz") + "\n\n" + md("Choose a topic:")
}

// formatDifficultyMenu renders the difficulty prompt for a topic.
func formatDifficultyMenu(topic string) string {
	return bold("🎯 "+entities.TopicName(topic)) + "\n\n" + md("Choose a difficulty:")
}

func formatTimeLeft(left int) string {
	if left < 0 {
		left = 0
	}
	return fmt.Sprintf("⏱ %ds", left)
}

// formatQuizQuestion formats the current question (MarkdownV2 safe).
func formatQuizQuestion(v service.QuestionView) string {
	var sb strings.Builder

	sb.WriteString(bold(v.Title) + "\n")
	sb.WriteString(md(fmt.Sprintf("Question %d of %d · %s", v.Number, v.Total, formatTimeLeft(v.TimeLeft))) + "\n\n")
	sb.WriteString(bold(v.Text))

	if v.Answered {
		sb.WriteString("\n\n" + formatAnswerFeedback(v.Correct, v.Answer))
	}

	return sb.String()
}

// formatAnswerFeedback formats feedback for a quiz answer (MarkdownV2 safe).
func formatAnswerFeedback(isCorrect bool, correctAnswer string) string {
	if isCorrect {
		return md(msgCorrect)
	}
	return fmt.Sprintf("%s %s %s", md(msgIncorrect), md("Correct answer:"), bold(correctAnswer))
}

// formatQuizResult formats a finished attempt (MarkdownV2 safe).
func formatQuizResult(res *service.QuizResult) string {
	var sb strings.Builder

	sb.WriteString(bold("🏁 Quiz complete") + "\n")
	sb.WriteString(md(entities.QuizTitle(res.Topic, res.Difficulty)) + "\n\n")
	sb.WriteString(md(res.Message()) + "\n")
	sb.WriteString(md(buildProgressBar(res.Score, res.Total, progressBarLength)))

	if res.Awarded != "" {
		sb.WriteString("\n\n" + bold(fmt.Sprintf("%s New badge: %s", tierIcon(res.Awarded), res.Awarded.Title())))
	}

	return sb.String()
}
