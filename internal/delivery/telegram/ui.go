package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/resqed/resqed-bot/internal/service"
)

// buildDashboardKeyboard builds one call-to-action button per course plus navigation.
func buildDashboardKeyboard(d *service.Dashboard) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, c := range d.Courses {
		label := fmt.Sprintf("%s %s · %s", courseIcon(c.Key), c.Title, c.Action)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, buildCourseCallback(c.Key)),
		))
	}

	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎯 Take a Quiz", buildQuizMenuCallback()),
			tgbotapi.NewInlineKeyboardButtonData("🏅 Badges", buildBadgesCallback()),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Refresh", buildDashboardCallback()),
			tgbotapi.NewInlineKeyboardButtonData("🗑 Reset Progress", buildResetAskCallback()),
		),
	)

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// buildCourseListKeyboard builds one button per course.
func buildCourseListKeyboard(d *service.Dashboard) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, c := range d.Courses {
		label := fmt.Sprintf("%s %s (%d%%)", courseIcon(c.Key), c.Title, c.Percentage)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, buildCourseCallback(c.Key)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("📊 Dashboard", buildDashboardCallback()),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// buildCourseKeyboard builds the "Mark as Complete" controls of a course page.
func buildCourseKeyboard(page *service.CoursePage) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, m := range page.Modules {
		label := fmt.Sprintf("%d. Mark as Complete", m.Index+1)
		if m.Completed {
			label = fmt.Sprintf("%d. ✅ Completed", m.Index+1)
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, buildModuleCallback(page.CourseKey, m.Index)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("« Courses", buildCoursesCallback()),
		tgbotapi.NewInlineKeyboardButtonData("📊 Dashboard", buildDashboardCallback()),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// buildBadgesKeyboard builds keyboard for the badge page.
func buildBadgesKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎯 Take a Quiz", buildQuizMenuCallback()),
			tgbotapi.NewInlineKeyboardButtonData("📊 Dashboard", buildDashboardCallback()),
		),
	)
}

// buildTopicKeyboard builds the quiz topic selection.
func buildTopicKeyboard(topics []string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i, topic := range topics {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(quizTopicLabel(topic), buildQuizTopicCallback(i)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("📊 Dashboard", buildDashboardCallback()),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func quizTopicLabel(topic string) string {
	if key, ok := quizTopicCourse(topic); ok {
		return courseIcon(key) + " " + topicDisplayName(topic)
	}
	return topicDisplayName(topic)
}

// buildDifficultyKeyboard builds the difficulty selection for a topic.
func buildDifficultyKeyboard(topicIndex int, difficulties []string) tgbotapi.InlineKeyboardMarkup {
	var row []tgbotapi.InlineKeyboardButton
	for i, d := range difficulties {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(difficultyLabel(d), buildQuizDifficultyCallback(topicIndex, i)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		row,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("« Topics", buildQuizMenuCallback()),
		),
	)
}

// buildQuizAnswerKeyboard builds keyboard for a quiz question. Once the
// question is answered the correct option and a wrong selection are marked
// and the next button appears.
func buildQuizAnswerKeyboard(v service.QuestionView) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i, option := range v.Options {
		label := option
		if v.Answered {
			switch {
			case option == v.Answer:
				label = "✅ " + option
			case option == v.Selected:
				label = "❌ " + option
			}
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, buildQuizAnswerCallback(v.Number, i)),
		))
	}

	if v.Answered {
		next := "Next ➡️"
		if v.Number >= v.Total {
			next = "Finish 🏁"
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(next, buildQuizNextCallback(v.Number)),
		))
	}

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// buildQuizResultKeyboard builds keyboard for quiz results screen.
func buildQuizResultKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Restart Quiz", buildQuizRestartCallback()),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 Dashboard", buildDashboardCallback()),
		),
	)
}

// buildResetConfirmKeyboard builds the yes/no reset confirmation.
func buildResetConfirmKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Yes, reset", buildResetConfirmCallback()),
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", buildResetCancelCallback()),
		),
	)
}
