package service

import (
	"adaptive_lms_backend/internal/model"
	"adaptive_lms_backend/internal/repository"
	"adaptive_lms_backend/internal/util"
	"adaptive_lms_backend/pkg/logger"
	"adaptive_lms_backend/pkg/monitoring"
	"adaptive_lms_backend/pkg/tracing"
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var errPracticeQuestionNotFound = util.NewError(util.ErrNotFound, "question not found in practice set")

type PracticeAttemptService struct {
	DB       *gorm.DB
	Sets     *repository.PracticeSetRepository
	Attempts *repository.PracticeAttemptRepository
	Policy   *PolicyStore

	now func() time.Time
}

func NewPracticeAttemptService(
	db *gorm.DB,
	sets *repository.PracticeSetRepository,
	attempts *repository.PracticeAttemptRepository,
	policy *PolicyStore,
) *PracticeAttemptService {
	return &PracticeAttemptService{
		DB:       db,
		Sets:     sets,
		Attempts: attempts,
		Policy:   policy,
		now:      time.Now,
	}
}

type StartPracticeAttemptResp struct {
	AttemptID      uint      `json:"attemptId"`
	PracticeSetID  uint      `json:"practiceSetId"`
	TotalQuestions int       `json:"totalQuestions"`
	StartedAt      time.Time `json:"startedAt"`
}

func (s *PracticeAttemptService) StartAttempt(ctx context.Context, caller Caller, setID uint) (resp *StartPracticeAttemptResp, err error) {
	ctx, span := tracing.StartSpan(ctx, "practice_attempt.start", attribute.Int64("practice_set.id", int64(setID)))
	defer func() { tracing.End(span, err) }()

	set, err := s.Sets.FindByID(ctx, setID)
	if err != nil {
		return nil, notFoundAs(err, util.ErrPracticeSetNotFound)
	}
	if !CanActAsOwner(caller, set.UserID) {
		return nil, util.ErrPermissionDenied
	}
	if !set.IsActive(s.now()) {
		return nil, util.ErrPracticeSetInactive
	}
	if len(set.Questions) == 0 {
		return nil, util.ErrPracticeSetNoQuestion
	}

	attempt := &model.PracticeAttempt{
		PracticeSetID:  set.ID,
		UserID:         caller.UserID,
		CourseID:       set.CourseID,
		LessonID:       set.LessonID,
		TotalQuestions: len(set.Questions),
		StartedAt:      s.now(),
	}
	if err := s.Attempts.Create(ctx, attempt); err != nil {
		return nil, err
	}

	logger.Log.Info("Practice attempt started",
		zap.Uint("attemptId", attempt.ID),
		zap.Uint("practiceSetId", set.ID),
		zap.Uint("userId", caller.UserID))

	return &StartPracticeAttemptResp{
		AttemptID:      attempt.ID,
		PracticeSetID:  set.ID,
		TotalQuestions: attempt.TotalQuestions,
		StartedAt:      attempt.StartedAt,
	}, nil
}

type PracticeAnswerReq struct {
	QuestionKey    string          `json:"questionKey"`
	SelectedAnswer json.RawMessage `json:"selectedAnswer"`
	TimeSpentMs    int64           `json:"timeSpentMs"`
}

type PracticeAnswerResp struct {
	QuestionKey string `json:"questionKey"`
	IsCorrect   bool   `json:"isCorrect"`
}

// RecordAnswer 按题目键覆盖写入，练习集必须仍处于活动状态
func (s *PracticeAttemptService) RecordAnswer(ctx context.Context, caller Caller, attemptID uint, req PracticeAnswerReq) (resp *PracticeAnswerResp, err error) {
	ctx, span := tracing.StartSpan(ctx, "practice_attempt.answer", attribute.Int64("attempt.id", int64(attemptID)))
	defer func() { tracing.End(span, err) }()

	key := strings.TrimSpace(req.QuestionKey)
	if key == "" {
		return nil, util.Validation("questionKey is required")
	}
	if req.TimeSpentMs < 0 {
		return nil, util.Validation("timeSpentMs must not be negative")
	}

	attempt, err := s.Attempts.FindByID(ctx, attemptID)
	if err != nil {
		return nil, notFoundAs(err, util.ErrAttemptNotFound)
	}
	if !CanActAsOwner(caller, attempt.UserID) {
		return nil, util.ErrPermissionDenied
	}
	if attempt.IsSubmitted() {
		return nil, util.ErrAttemptSubmitted
	}

	set, err := s.Sets.FindByID(ctx, attempt.PracticeSetID)
	if err != nil {
		return nil, notFoundAs(err, util.ErrPracticeSetNotFound)
	}
	if !set.IsActive(s.now()) {
		return nil, util.ErrPracticeSetInactive
	}
	question, ok := set.FindQuestion(key)
	if !ok {
		return nil, errPracticeQuestionNotFound
	}

	selected := rawAnswer(req.SelectedAnswer)
	answer := &model.PracticeAnswer{
		PracticeAttemptID: attempt.ID,
		QuestionKey:       key,
		SelectedAnswer:    selected,
		IsCorrect:         IsCorrect(question.CorrectAnswer, selected),
		TimeSpentMs:       req.TimeSpentMs,
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		attempts := s.Attempts.WithTx(tx)
		rows, err := attempts.BumpOpen(ctx, attempt.ID)
		if err != nil {
			return err
		}
		if rows == 0 {
			return util.ErrAttemptSubmitted
		}
		return attempts.UpsertAnswer(ctx, answer)
	})
	if err != nil {
		return nil, err
	}

	monitoring.ObserveAnswer("practice", answer.IsCorrect)
	return &PracticeAnswerResp{QuestionKey: key, IsCorrect: answer.IsCorrect}, nil
}

type SubmitPracticeAttemptResp struct {
	AttemptID       uint               `json:"attemptId"`
	PracticeSetID   uint               `json:"practiceSetId"`
	TotalQuestions  int                `json:"totalQuestions"`
	AnsweredCount   int                `json:"answeredCount"`
	CorrectCount    int                `json:"correctCount"`
	ScorePercent    int                `json:"scorePercent"`
	MasteryAfter    model.MasteryLevel `json:"masteryAfter"`
	DurationSeconds int                `json:"durationSeconds"`
	FeedbackSummary string             `json:"feedbackSummary"`
}

// Submit 与测验提交相同的一次性迁移；练习集过期不影响提交
func (s *PracticeAttemptService) Submit(ctx context.Context, caller Caller, attemptID uint) (resp *SubmitPracticeAttemptResp, err error) {
	ctx, span := tracing.StartSpan(ctx, "practice_attempt.submit", attribute.Int64("attempt.id", int64(attemptID)))
	defer func() { tracing.End(span, err) }()

	attempt, err := s.Attempts.FindByID(ctx, attemptID)
	if err != nil {
		return nil, notFoundAs(err, util.ErrAttemptNotFound)
	}
	if !CanActAsOwner(caller, attempt.UserID) {
		return nil, util.ErrPermissionDenied
	}
	if attempt.IsSubmitted() {
		return nil, util.ErrAttemptSubmitted
	}

	policy := s.Policy.Load()
	var score PracticeScore

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		attempts := s.Attempts.WithTx(tx)

		current, err := attempts.FindByID(ctx, attemptID)
		if err != nil {
			return notFoundAs(err, util.ErrAttemptNotFound)
		}
		if current.IsSubmitted() {
			return util.ErrAttemptSubmitted
		}

		set, err := s.Sets.WithTx(tx).FindByID(ctx, current.PracticeSetID)
		if err != nil {
			return notFoundAs(err, util.ErrPracticeSetNotFound)
		}
		answers, err := attempts.ListAnswers(ctx, current.ID)
		if err != nil {
			return err
		}
		score = policy.ScorePractice(current.TotalQuestions, set.Questions, answers)

		now := s.now()
		mastery := score.MasteryAfter
		current.CorrectCount = &score.CorrectCount
		current.ScorePercent = &score.ScorePercent
		current.MasteryAfter = &mastery
		current.DurationSeconds = &score.DurationSeconds
		current.FeedbackSummary = score.FeedbackSummary
		current.SubmittedAt = &now

		rows, err := attempts.CompleteSubmission(ctx, current, current.Version)
		if err != nil {
			return err
		}
		if rows == 0 {
			latest, err := attempts.FindByID(ctx, current.ID)
			if err == nil && latest.IsSubmitted() {
				return util.ErrAttemptSubmitted
			}
			return util.ErrAttemptChanged
		}
		attempt = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	monitoring.ObserveSubmission("practice", string(score.MasteryAfter), score.ScorePercent)
	logger.Log.Info("Practice attempt submitted",
		zap.Uint("attemptId", attempt.ID),
		zap.Uint("practiceSetId", attempt.PracticeSetID),
		zap.Int("scorePercent", score.ScorePercent))

	return &SubmitPracticeAttemptResp{
		AttemptID:       attempt.ID,
		PracticeSetID:   attempt.PracticeSetID,
		TotalQuestions:  score.TotalQuestions,
		AnsweredCount:   score.AnsweredCount,
		CorrectCount:    score.CorrectCount,
		ScorePercent:    score.ScorePercent,
		MasteryAfter:    score.MasteryAfter,
		DurationSeconds: score.DurationSeconds,
		FeedbackSummary: score.FeedbackSummary,
	}, nil
}
