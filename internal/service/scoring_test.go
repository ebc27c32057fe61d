package service

import (
	"adaptive_lms_backend/internal/config"
	"adaptive_lms_backend/internal/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(id, question uint, try int, topic string, correct bool, ms int64) model.AnswerRecord {
	r := model.AnswerRecord{
		QuestionID:  question,
		TryNumber:   try,
		TopicTag:    topic,
		IsCorrect:   correct,
		TimeSpentMs: ms,
	}
	r.ID = id
	return r
}

func TestRoundPercent(t *testing.T) {
	assert.Equal(t, 0, RoundPercent(0, 4))
	assert.Equal(t, 50, RoundPercent(2, 4))
	assert.Equal(t, 33, RoundPercent(1, 3))
	assert.Equal(t, 67, RoundPercent(2, 3))
	assert.Equal(t, 100, RoundPercent(3, 3))
	// 1/8 = 12.5 进位
	assert.Equal(t, 13, RoundPercent(1, 8))
	assert.Equal(t, 0, RoundPercent(3, 0))
	assert.Equal(t, 100, RoundPercent(5, 4))
}

func TestMsToSeconds(t *testing.T) {
	assert.Equal(t, 0, MsToSeconds(0))
	assert.Equal(t, 0, MsToSeconds(499))
	assert.Equal(t, 1, MsToSeconds(500))
	assert.Equal(t, 12, MsToSeconds(12345))
}

func TestMasteryBoundaries(t *testing.T) {
	p := DefaultScoringPolicy()
	assert.Equal(t, model.MasteryLow, p.Mastery(0))
	assert.Equal(t, model.MasteryLow, p.Mastery(49))
	assert.Equal(t, model.MasteryMedium, p.Mastery(50))
	assert.Equal(t, model.MasteryMedium, p.Mastery(79))
	assert.Equal(t, model.MasteryHigh, p.Mastery(80))
	assert.Equal(t, model.MasteryHigh, p.Mastery(100))
}

func TestPassed(t *testing.T) {
	p := DefaultScoringPolicy()
	assert.True(t, p.Passed(70, nil))
	assert.False(t, p.Passed(69, nil))
	assert.True(t, p.Passed(60, &model.Quiz{PassPercent: 60}))
	assert.False(t, p.Passed(59, &model.Quiz{PassPercent: 60}))
}

func TestLatestPerQuestion(t *testing.T) {
	base := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)

	first := record(1, 7, 1, "loops", false, 0)
	first.CreatedAt = base
	second := record(2, 7, 2, "loops", true, 0)
	second.CreatedAt = base.Add(-time.Minute)
	latest := LatestPerQuestion([]model.AnswerRecord{first, second})
	require.Len(t, latest, 1)
	assert.Equal(t, uint(2), latest[7].ID, "higher try wins even if written earlier")

	older := record(3, 8, 1, "maps", false, 0)
	older.CreatedAt = base
	newer := record(4, 8, 1, "maps", true, 0)
	newer.CreatedAt = base.Add(time.Second)
	latest = LatestPerQuestion([]model.AnswerRecord{newer, older})
	assert.Equal(t, uint(4), latest[8].ID, "same try resolved by write time")

	a := record(5, 9, 1, "", false, 0)
	b := record(6, 9, 1, "", true, 0)
	latest = LatestPerQuestion([]model.AnswerRecord{b, a})
	assert.Equal(t, uint(6), latest[9].ID, "full tie resolved by id")
}

func TestScoreQuizScenario(t *testing.T) {
	p := DefaultScoringPolicy()
	records := []model.AnswerRecord{
		record(1, 1, 1, "variables", true, 1200),
		record(2, 2, 1, "loops", false, 800),
		record(3, 3, 1, "functions", true, 2000),
	}

	score := p.ScoreQuiz(4, records)
	assert.Equal(t, 4, score.TotalQuestions)
	assert.Equal(t, 3, score.AnsweredCount)
	assert.Equal(t, 2, score.CorrectCount)
	assert.Equal(t, 50, score.ScorePercent)
	assert.Equal(t, model.MasteryMedium, score.MasteryLevel)
	// 未作答的第 4 题不进入任何知识点统计
	assert.Equal(t, []string{"loops"}, score.WeakTopics)
	assert.Equal(t, 4, score.TotalTimeSec)
}

func TestScoreQuizWeakTopicBoundary(t *testing.T) {
	p := DefaultScoringPolicy()

	half := p.ScoreQuiz(2, []model.AnswerRecord{
		record(1, 1, 1, "loops", true, 0),
		record(2, 2, 1, "loops", false, 0),
	})
	assert.Equal(t, []string{"loops"}, half.WeakTopics)

	third := p.ScoreQuiz(3, []model.AnswerRecord{
		record(1, 1, 1, "loops", true, 0),
		record(2, 2, 1, "loops", true, 0),
		record(3, 3, 1, "loops", false, 0),
	})
	assert.Empty(t, third.WeakTopics)
}

func TestScoreQuizUsesLatestTryAndSumsAllTime(t *testing.T) {
	p := DefaultScoringPolicy()
	score := p.ScoreQuiz(1, []model.AnswerRecord{
		record(1, 1, 1, "", false, 1500),
		record(2, 1, 2, "", true, 1500),
	})
	assert.Equal(t, 1, score.CorrectCount)
	assert.Equal(t, 100, score.ScorePercent)
	assert.Empty(t, score.WeakTopics)
	assert.Equal(t, 3, score.TotalTimeSec)

	missed := p.ScoreQuiz(1, []model.AnswerRecord{record(1, 1, 1, "", false, 0)})
	assert.Equal(t, []string{"unknown"}, missed.WeakTopics)
}

func TestScoreQuizDeterministic(t *testing.T) {
	p := DefaultScoringPolicy()
	records := []model.AnswerRecord{
		record(1, 1, 1, "b", false, 10),
		record(2, 2, 1, "a", false, 10),
		record(3, 3, 1, "c", true, 10),
	}
	first := p.ScoreQuiz(3, records)
	second := p.ScoreQuiz(3, records)
	assert.Equal(t, first, second)
	assert.Equal(t, []string{"a", "b"}, first.WeakTopics)
}

func TestScorePractice(t *testing.T) {
	p := DefaultScoringPolicy()
	questions := []model.PracticeQuestion{{QuestionKey: "q1"}, {QuestionKey: "q2"}, {QuestionKey: "q3"}}

	all := p.ScorePractice(3, questions, []model.PracticeAnswer{
		{QuestionKey: "q1", IsCorrect: true, TimeSpentMs: 1000},
		{QuestionKey: "q2", IsCorrect: true, TimeSpentMs: 1000},
		{QuestionKey: "q3", IsCorrect: true, TimeSpentMs: 1000},
	})
	assert.Equal(t, 100, all.ScorePercent)
	assert.Equal(t, model.MasteryHigh, all.MasteryAfter)
	assert.Equal(t, 3, all.DurationSeconds)
	assert.Equal(t, "Great job. You answered all practice questions correctly.", all.FeedbackSummary)

	partial := p.ScorePractice(3, questions, []model.PracticeAnswer{
		{QuestionKey: "q1", IsCorrect: true, TimeSpentMs: 400},
		{QuestionKey: "q2", IsCorrect: false, TimeSpentMs: 400},
	})
	assert.Equal(t, 1, partial.CorrectCount)
	assert.Equal(t, 2, partial.AnsweredCount)
	assert.Equal(t, 33, partial.ScorePercent)
	assert.Equal(t, model.MasteryLow, partial.MasteryAfter)
	assert.Equal(t, 1, partial.DurationSeconds)
	assert.Equal(t, "You missed 2 practice question(s). Review the explanations and retry.", partial.FeedbackSummary)
}

func TestPolicyStoreUpdate(t *testing.T) {
	store := NewPolicyStore(DefaultScoringPolicy())

	require.NoError(t, store.Update(config.ScoringConfig{DefaultPassPercent: 60, MasteryHigh: 90, MasteryMedium: 40}))
	p := store.Load()
	assert.Equal(t, model.MasteryMedium, p.Mastery(85))
	assert.Equal(t, model.MasteryLow, p.Mastery(39))

	err := store.Update(config.ScoringConfig{DefaultPassPercent: 60, MasteryHigh: 40, MasteryMedium: 90})
	require.Error(t, err)
	assert.Equal(t, 90, store.Load().MasteryHigh, "rejected update keeps previous policy")
}

func TestTarget(t *testing.T) {
	p := DefaultScoringPolicy()

	trigger, difficulty := p.Target(35)
	assert.Equal(t, model.TriggerPostQuizLow, trigger)
	assert.Equal(t, model.DifficultyLow, difficulty)

	trigger, difficulty = p.Target(65)
	assert.Equal(t, model.TriggerPostQuizMedium, trigger)
	assert.Equal(t, model.DifficultyMedium, difficulty)

	trigger, difficulty = p.Target(95)
	assert.Equal(t, model.TriggerChallengeHigh, trigger)
	assert.Equal(t, model.DifficultyHigh, difficulty)
}

func TestDirectiveForAttempt(t *testing.T) {
	attempt := &model.QuizAttempt{UserID: 3, CourseID: 4, LessonID: 5}
	attempt.ID = 42
	weak := []string{"loops"}
	now := time.Now()

	d := DefaultScoringPolicy().DirectiveForAttempt(attempt, 35, weak, now)
	assert.NotEmpty(t, d.ID)
	assert.Equal(t, uint(3), d.UserID)
	assert.Equal(t, uint(5), d.LessonID)
	assert.Equal(t, model.TriggerPostQuizLow, d.Trigger)
	require.NotNil(t, d.SourceQuizAttemptID)
	assert.Equal(t, uint(42), *d.SourceQuizAttemptID)
	assert.Equal(t, []string{"loops"}, d.WeakTopics)

	weak[0] = "changed"
	assert.Equal(t, "loops", d.WeakTopics[0])
}

func TestCanActAsOwner(t *testing.T) {
	assert.True(t, CanActAsOwner(Caller{UserID: 1, Role: model.Student}, 1))
	assert.False(t, CanActAsOwner(Caller{UserID: 1, Role: model.Student}, 2))
	assert.False(t, CanActAsOwner(Caller{UserID: 1, Role: model.Staff}, 2))
	assert.True(t, CanActAsOwner(Caller{UserID: 1, Role: model.Admin}, 2))
}
