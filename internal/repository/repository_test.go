package repository

import (
	"adaptive_lms_backend/internal/model"
	"adaptive_lms_backend/internal/testutil"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestAnswerRecordUniqueTry(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewAnswerRecordRepository(db)
	ctx := context.Background()

	rec := &model.AnswerRecord{QuizAttemptID: 1, QuestionID: 2, TryNumber: 1, SelectedAnswer: datatypes.JSON(`"A"`)}
	require.NoError(t, repo.Create(ctx, rec))

	dup := &model.AnswerRecord{QuizAttemptID: 1, QuestionID: 2, TryNumber: 1, SelectedAnswer: datatypes.JSON(`"B"`)}
	err := repo.Create(ctx, dup)
	require.Error(t, err)
	assert.True(t, IsDuplicateKey(err))

	next := &model.AnswerRecord{QuizAttemptID: 1, QuestionID: 2, TryNumber: 2, SelectedAnswer: datatypes.JSON(`"B"`)}
	require.NoError(t, repo.Create(ctx, next))

	list, err := repo.ListByAttempt(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 2, list[0].TryNumber)
}

func TestQuizAttemptVersionedSubmission(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewQuizAttemptRepository(db)
	ctx := context.Background()

	attempt := &model.QuizAttempt{UserID: 1, CourseID: 1, LessonID: 1, QuizID: 1, TotalQuestions: 3, StartedAt: time.Now()}
	require.NoError(t, repo.Create(ctx, attempt))

	rows, err := repo.BumpOpen(ctx, attempt.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	score, correct := 67, 2
	mastery := model.MasteryMedium
	now := time.Now()
	attempt.ScorePercent = &score
	attempt.CorrectCount = &correct
	attempt.MasteryLevel = &mastery
	attempt.WeakTopics = []string{"loops"}
	attempt.SubmittedAt = &now

	// 读取后又有答案写入，旧版本号提交失败
	rows, err = repo.CompleteSubmission(ctx, attempt, 0)
	require.NoError(t, err)
	assert.Zero(t, rows)

	stored, err := repo.FindByID(ctx, attempt.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.SubmittedAt)
	assert.Nil(t, stored.ScorePercent)

	rows, err = repo.CompleteSubmission(ctx, attempt, stored.Version)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	rows, err = repo.BumpOpen(ctx, attempt.ID)
	require.NoError(t, err)
	assert.Zero(t, rows, "submitted attempts no longer accept answers")

	stored, err = repo.FindByID(ctx, attempt.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ScorePercent)
	assert.Equal(t, 67, *stored.ScorePercent)
	assert.Equal(t, []string{"loops"}, []string(stored.WeakTopics))

	latest, err := repo.LatestSubmitted(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, attempt.ID, latest.ID)

	_, err = repo.LatestSubmitted(ctx, 2, 1)
	assert.True(t, IsNotFound(err))
}

func TestLessonProgressKeepsFirstCompletion(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewLessonProgressRepository(db)
	ctx := context.Background()

	first := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.MarkCompleted(ctx, 5, 1, 10, first))
	require.NoError(t, repo.MarkCompleted(ctx, 5, 1, 10, first.Add(48*time.Hour)))

	p, err := repo.Find(ctx, 5, 10)
	require.NoError(t, err)
	assert.Equal(t, model.LessonCompleted, p.Status)
	require.NotNil(t, p.CompletedAt)
	assert.True(t, first.Equal(*p.CompletedAt))

	count, err := repo.CountCompleted(ctx, 5, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestEnrollmentUniqueAndProgress(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewEnrollmentRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.Enrollment{UserID: 1, CourseID: 2, Status: model.EnrollmentEnrolled}))
	err := repo.Create(ctx, &model.Enrollment{UserID: 1, CourseID: 2, Status: model.EnrollmentEnrolled})
	assert.True(t, IsDuplicateKey(err))

	require.NoError(t, repo.UpdateProgress(ctx, 1, 2, 40, 7))
	enr, err := repo.Find(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 40, enr.ProgressPercent)
	require.NotNil(t, enr.LastLessonID)
	assert.Equal(t, uint(7), *enr.LastLessonID)

	// 没有选课记录时不报错
	require.NoError(t, repo.UpdateProgress(ctx, 9, 2, 40, 7))
}

func TestPracticeAnswerUpsert(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPracticeAttemptRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.UpsertAnswer(ctx, &model.PracticeAnswer{PracticeAttemptID: 1, QuestionKey: "k", SelectedAnswer: datatypes.JSON(`"A"`), TimeSpentMs: 100}))
	require.NoError(t, repo.UpsertAnswer(ctx, &model.PracticeAnswer{PracticeAttemptID: 1, QuestionKey: "k", SelectedAnswer: datatypes.JSON(`"B"`), IsCorrect: true, TimeSpentMs: 300}))

	answers, err := repo.ListAnswers(ctx, 1)
	require.NoError(t, err)
	require.Len(t, answers, 1)
	assert.True(t, answers[0].IsCorrect)
	assert.Equal(t, int64(300), answers[0].TimeSpentMs)
	assert.JSONEq(t, `"B"`, string(answers[0].SelectedAnswer))
}

func TestIsDuplicateKeyFallback(t *testing.T) {
	assert.False(t, IsDuplicateKey(nil))
	assert.True(t, IsDuplicateKey(assertErr("Error 1062 (23000): Duplicate entry '1-2' for key 'idx'")))
	assert.True(t, IsDuplicateKey(assertErr("UNIQUE constraint failed: enrollments.user_id")))
	assert.False(t, IsDuplicateKey(assertErr("connection refused")))
}

type assertErr string

func (e assertErr) Error() string { return string(e) }
