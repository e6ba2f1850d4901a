package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.ModuleCompleted("floods")
	m.ModuleCompleted("floods")
	m.QuizFinished("floods", "easy", false, "gold")
	m.QuizFinished("floods", "easy", true, "")
	m.ProgressReset()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.modulesCompleted.WithLabelValues("floods")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.quizAttempts.WithLabelValues("floods", "easy", "completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.quizAttempts.WithLabelValues("floods", "easy", "timeout")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.badgesAwarded.WithLabelValues("gold")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.resets))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ModuleCompleted("tsunami")

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `resqed_modules_completed_total{course="tsunami"} 1`)
}
