package telegram

import (
	"strconv"
	"strings"
)

// Callback action constants.
const (
	actionDashboard = "dash"
	actionCourses   = "courses"
	actionCourse    = "course"
	actionModule    = "module"
	actionBadges    = "badges"
	actionQuiz      = "quiz"
	actionReset     = "reset"
)

// Quiz sub-actions.
const (
	quizMenu       = "menu"
	quizTopic      = "topic"
	quizDifficulty = "diff"
	quizAnswer     = "ans"
	quizNext       = "next"
	quizRestart    = "restart"
)

const (
	resetAsk     = "ask"
	resetConfirm = "confirm"
	resetCancel  = "cancel"
)

// callbackData represents structured callback data.
// Telegram limits callback data to 64 bytes, so topics and difficulties
// travel as indices into the sorted question bank listings.
type callbackData struct {
	Action string
	Params []string
	Raw    string
}

// encode creates callback string.
func (cd callbackData) encode() string {
	if len(cd.Params) == 0 {
		return cd.Action
	}
	return cd.Action + ":" + strings.Join(cd.Params, ":")
}

// decodeCallback parses callback data string.
func decodeCallback(data string) callbackData {
	parts := strings.Split(data, ":")
	return callbackData{
		Action: parts[0],
		Params: parts[1:],
		Raw:    data,
	}
}

// param returns the i-th parameter or "".
func (cd callbackData) param(i int) string {
	if i < 0 || i >= len(cd.Params) {
		return ""
	}
	return cd.Params[i]
}

// intParam parses the i-th parameter as an int.
func (cd callbackData) intParam(i int) (int, bool) {
	n, err := strconv.Atoi(cd.param(i))
	if err != nil {
		return 0, false
	}
	return n, true
}

func buildDashboardCallback() string {
	return actionDashboard
}

func buildCoursesCallback() string {
	return actionCourses
}

func buildBadgesCallback() string {
	return actionBadges
}

// buildCourseCallback builds callback data for opening a course page.
func buildCourseCallback(courseKey string) string {
	return callbackData{Action: actionCourse, Params: []string{courseKey}}.encode()
}

// buildModuleCallback builds callback data for a module "Mark as Complete" button.
func buildModuleCallback(courseKey string, index int) string {
	return callbackData{
		Action: actionModule,
		Params: []string{courseKey, strconv.Itoa(index)},
	}.encode()
}

func buildQuizMenuCallback() string {
	return callbackData{Action: actionQuiz, Params: []string{quizMenu}}.encode()
}

func buildQuizTopicCallback(topicIndex int) string {
	return callbackData{
		Action: actionQuiz,
		Params: []string{quizTopic, strconv.Itoa(topicIndex)},
	}.encode()
}

func buildQuizDifficultyCallback(topicIndex, difficultyIndex int) string {
	return callbackData{
		Action: actionQuiz,
		Params: []string{quizDifficulty, strconv.Itoa(topicIndex), strconv.Itoa(difficultyIndex)},
	}.encode()
}

// buildQuizAnswerCallback builds callback data for answering the question
// with the given 1-based number.
func buildQuizAnswerCallback(questionNum, optionIndex int) string {
	return callbackData{
		Action: actionQuiz,
		Params: []string{quizAnswer, strconv.Itoa(questionNum), strconv.Itoa(optionIndex)},
	}.encode()
}

func buildQuizNextCallback(questionNum int) string {
	return callbackData{
		Action: actionQuiz,
		Params: []string{quizNext, strconv.Itoa(questionNum)},
	}.encode()
}

func buildQuizRestartCallback() string {
	return callbackData{Action: actionQuiz, Params: []string{quizRestart}}.encode()
}

func buildResetAskCallback() string {
	return callbackData{Action: actionReset, Params: []string{resetAsk}}.encode()
}

func buildResetConfirmCallback() string {
	return callbackData{Action: actionReset, Params: []string{resetConfirm}}.encode()
}

func buildResetCancelCallback() string {
	return callbackData{Action: actionReset, Params: []string{resetCancel}}.encode()
}
