package app

import (
	"adaptive_lms_backend/internal/config"
	"adaptive_lms_backend/internal/model"
	"adaptive_lms_backend/internal/testutil"
	"adaptive_lms_backend/internal/util"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-secret-for-router-tests"

func testConfig() *config.Config {
	return &config.Config{
		Server:    config.ServerConfig{Port: "0", Mode: gin.TestMode},
		JWT:       config.JWTConfig{Secret: testSecret, ExpireTime: time.Hour},
		CORS:      config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		RateLimit: config.RateLimitConfig{MaxRequests: 1000, WindowMinutes: 1},
		Scoring:   config.ScoringConfig{DefaultPassPercent: 70, MasteryHigh: 80, MasteryMedium: 50},
		Practice:  config.PracticeConfig{DirectiveQueue: "practice:directives"},
	}
}

func newTestApp(t *testing.T) (*App, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t)
	return New(testConfig(), db, nil), db
}

func token(t *testing.T, userID uint, role model.UserRole) string {
	t.Helper()
	tok, err := util.GenerateJWT(userID, role, testSecret, time.Hour)
	require.NoError(t, err)
	return tok
}

func do(t *testing.T, a *App, method, path, tok, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)

	var payload map[string]interface{}
	if w.Body.Len() > 0 && strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	}
	return w, payload
}

func dataField(t *testing.T, payload map[string]interface{}, key string) interface{} {
	t.Helper()
	data, ok := payload["data"].(map[string]interface{})
	require.True(t, ok, "response has no data object: %v", payload)
	return data[key]
}

func TestHealth(t *testing.T) {
	a, _ := newTestApp(t)

	w, payload := do(t, a, http.MethodGet, "/api/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	components := dataField(t, payload, "components").(map[string]interface{})
	assert.Equal(t, "up", components["database"])
	assert.Equal(t, "disabled", components["directiveQueue"])
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestAuthRequired(t *testing.T) {
	a, _ := newTestApp(t)

	w, _ := do(t, a, http.MethodPost, "/api/quizzes/1/attempts/start", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = do(t, a, http.MethodPost, "/api/quizzes/1/attempts/start", "not-a-token", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = do(t, a, http.MethodPost, "/api/admin/practice-sets", token(t, 7, model.Student), `{}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestQuizFlowOverHTTP(t *testing.T) {
	a, db := newTestApp(t)
	f := testutil.SeedQuizFixture(t, db, 2, []string{"loops", "maps"}, []string{`"A"`, `["B","C"]`})
	tok := token(t, 42, model.Student)

	w, _ := do(t, a, http.MethodPost, fmt.Sprintf("/api/courses/%d/enroll", f.Course.ID), tok, "")
	require.Equal(t, http.StatusCreated, w.Code)
	w, _ = do(t, a, http.MethodPost, fmt.Sprintf("/api/courses/%d/enroll", f.Course.ID), tok, "")
	require.Equal(t, http.StatusOK, w.Code)

	w, payload := do(t, a, http.MethodPost, fmt.Sprintf("/api/quizzes/%d/attempts/start", f.Quiz.ID), tok, "")
	require.Equal(t, http.StatusCreated, w.Code)
	attemptID := uint(dataField(t, payload, "attemptId").(float64))

	answerPath := fmt.Sprintf("/api/quiz-attempts/%d/questions/%d/answer", attemptID, f.Questions[0].ID)
	w, payload = do(t, a, http.MethodPost, answerPath, tok, `{"selectedAnswer":"A","timeSpentMs":1500}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, true, dataField(t, payload, "isCorrect"))

	w, _ = do(t, a, http.MethodPost, answerPath, tok, `{"selectedAnswer":"B","timeSpentMs":100}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	answerPath = fmt.Sprintf("/api/quiz-attempts/%d/questions/%d/answer", attemptID, f.Questions[1].ID)
	w, _ = do(t, a, http.MethodPost, answerPath, tok, `{"selectedAnswer":["C","B"],"timeSpentMs":1500}`)
	require.Equal(t, http.StatusCreated, w.Code)

	other := token(t, 43, model.Student)
	w, _ = do(t, a, http.MethodPost, fmt.Sprintf("/api/quiz-attempts/%d/submit", attemptID), other, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, payload = do(t, a, http.MethodPost, fmt.Sprintf("/api/quiz-attempts/%d/submit", attemptID), tok, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(100), dataField(t, payload, "scorePercent"))
	assert.Equal(t, "high", dataField(t, payload, "masteryLevel"))
	assert.Equal(t, float64(50), dataField(t, payload, "progressPercent"))
	assert.Equal(t, float64(3), dataField(t, payload, "totalTimeSec"))

	w, _ = do(t, a, http.MethodPost, fmt.Sprintf("/api/quiz-attempts/%d/submit", attemptID), tok, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w, payload = do(t, a, http.MethodGet, fmt.Sprintf("/api/quiz-attempts/%d", attemptID), tok, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), dataField(t, payload, "totalTries"))

	w, _ = do(t, a, http.MethodGet, "/api/quiz-attempts/abc", tok, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPracticeFlowOverHTTP(t *testing.T) {
	a, db := newTestApp(t)
	f := testutil.SeedQuizFixture(t, db, 1, []string{"loops"}, []string{`"A"`})
	testutil.SeedEnrollment(t, db, 42, f.Course.ID, model.EnrollmentEnrolled)
	studentTok := token(t, 42, model.Student)
	adminTok := token(t, 1, model.Admin)

	body := fmt.Sprintf(`{
		"userId": 42, "courseId": %d, "lessonId": %d,
		"trigger": "manual_request", "difficultyTarget": "medium", "weakTopics": [],
		"questions": [{"questionKey": "q1", "prompt": "Pick A", "correctAnswer": "A"}]
	}`, f.Course.ID, f.Lessons[0].ID)
	w, payload := do(t, a, http.MethodPost, "/api/admin/practice-sets", adminTok, body)
	require.Equal(t, http.StatusCreated, w.Code)
	setID := uint(dataField(t, payload, "id").(float64))

	w, payload = do(t, a, http.MethodGet, "/api/me/practice-sets", studentTok, "")
	require.Equal(t, http.StatusOK, w.Code)
	sets := payload["data"].([]interface{})
	require.Len(t, sets, 1)
	question := sets[0].(map[string]interface{})["questions"].([]interface{})[0].(map[string]interface{})
	_, hasAnswer := question["correctAnswer"]
	assert.False(t, hasAnswer)

	w, payload = do(t, a, http.MethodPost, fmt.Sprintf("/api/practice-sets/%d/attempts/start", setID), studentTok, "")
	require.Equal(t, http.StatusCreated, w.Code)
	attemptID := uint(dataField(t, payload, "attemptId").(float64))

	w, _ = do(t, a, http.MethodPost, fmt.Sprintf("/api/practice-attempts/%d/answer", attemptID), studentTok,
		`{"questionKey":"q1","selectedAnswer":"A","timeSpentMs":900}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w, payload = do(t, a, http.MethodPost, fmt.Sprintf("/api/practice-attempts/%d/submit", attemptID), studentTok, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Great job. You answered all practice questions correctly.", dataField(t, payload, "feedbackSummary"))

	w, payload = do(t, a, http.MethodPost, fmt.Sprintf("/api/lessons/%d/practice-requests", f.Lessons[0].ID), studentTok, "")
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, false, dataField(t, payload, "queued"))

	w, _ = do(t, a, http.MethodPatch, fmt.Sprintf("/api/admin/practice-sets/%d/expire", setID), adminTok, "")
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = do(t, a, http.MethodPost, fmt.Sprintf("/api/practice-sets/%d/attempts/start", setID), studentTok, "")
	assert.Equal(t, http.StatusConflict, w.Code)
}
