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
	"errors"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuizAttemptService struct {
	DB                *gorm.DB
	Catalog           *repository.CatalogRepository
	Attempts          *repository.QuizAttemptRepository
	Answers           *repository.AnswerRecordRepository
	Access            *AccessPolicy
	Progress          *ProgressService
	Policy            *PolicyStore
	Publisher         DirectivePublisher
	PublishDirectives bool

	now func() time.Time
}

func NewQuizAttemptService(
	db *gorm.DB,
	catalog *repository.CatalogRepository,
	attempts *repository.QuizAttemptRepository,
	answers *repository.AnswerRecordRepository,
	access *AccessPolicy,
	progress *ProgressService,
	policy *PolicyStore,
	publisher DirectivePublisher,
	publishDirectives bool,
) *QuizAttemptService {
	if publisher == nil {
		publisher = NoopDirectivePublisher{}
	}
	return &QuizAttemptService{
		DB:                db,
		Catalog:           catalog,
		Attempts:          attempts,
		Answers:           answers,
		Access:            access,
		Progress:          progress,
		Policy:            policy,
		Publisher:         publisher,
		PublishDirectives: publishDirectives,
		now:               time.Now,
	}
}

type StartQuizAttemptResp struct {
	AttemptID      uint      `json:"attemptId"`
	QuizID         uint      `json:"quizId"`
	QuizVersion    int       `json:"quizVersion"`
	TotalQuestions int       `json:"totalQuestions"`
	StartedAt      time.Time `json:"startedAt"`
}

// StartAttempt 快照测验版本与题目数量，之后题目增删不影响本次作答的分母
func (s *QuizAttemptService) StartAttempt(ctx context.Context, caller Caller, quizID uint) (resp *StartQuizAttemptResp, err error) {
	ctx, span := tracing.StartSpan(ctx, "quiz_attempt.start", attribute.Int64("quiz.id", int64(quizID)))
	defer func() { tracing.End(span, err) }()

	quiz, err := s.Catalog.FindQuiz(ctx, quizID)
	if err != nil {
		return nil, notFoundAs(err, util.ErrQuizNotFound)
	}
	// 课时或课程缺失一律报测验不存在
	lesson, err := s.Catalog.FindLesson(ctx, quiz.LessonID)
	if err != nil {
		return nil, notFoundAs(err, util.ErrQuizNotFound)
	}
	course, err := s.Catalog.FindCourse(ctx, lesson.CourseID)
	if err != nil {
		return nil, notFoundAs(err, util.ErrQuizNotFound)
	}
	if err := s.Access.CheckCourse(ctx, caller, course, util.ErrQuizNotFound); err != nil {
		return nil, err
	}

	total, err := s.Catalog.CountQuestions(ctx, quiz.ID)
	if err != nil {
		return nil, err
	}
	if total <= 0 {
		return nil, util.ErrQuizHasNoQuestions
	}

	attempt := &model.QuizAttempt{
		UserID:         caller.UserID,
		CourseID:       lesson.CourseID,
		LessonID:       quiz.LessonID,
		QuizID:         quiz.ID,
		QuizVersion:    quiz.Version,
		TotalQuestions: int(total),
		StartedAt:      s.now(),
	}
	if err := s.Attempts.Create(ctx, attempt); err != nil {
		return nil, err
	}

	logger.Log.Info("Quiz attempt started",
		zap.Uint("attemptId", attempt.ID),
		zap.Uint("quizId", quiz.ID),
		zap.Uint("userId", caller.UserID),
		zap.Int("totalQuestions", attempt.TotalQuestions))

	return &StartQuizAttemptResp{
		AttemptID:      attempt.ID,
		QuizID:         attempt.QuizID,
		QuizVersion:    attempt.QuizVersion,
		TotalQuestions: attempt.TotalQuestions,
		StartedAt:      attempt.StartedAt,
	}, nil
}

type RecordAnswerReq struct {
	SelectedAnswer json.RawMessage `json:"selectedAnswer"`
	TimeSpentMs    int64           `json:"timeSpentMs"`
	AttemptNo      *int            `json:"attemptNo"`
	HintUsed       bool            `json:"hintUsed"`
}

type RecordAnswerResp struct {
	AnswerRecordID uint `json:"questionAttemptId"`
	AttemptNo      int  `json:"attemptNo"`
	IsCorrect      bool `json:"isCorrect"`
}

// RecordAnswer 追加一条答题流水。同一题重复提交必须使用新的 attemptNo
func (s *QuizAttemptService) RecordAnswer(ctx context.Context, caller Caller, attemptID, questionID uint, req RecordAnswerReq) (resp *RecordAnswerResp, err error) {
	ctx, span := tracing.StartSpan(ctx, "quiz_attempt.answer",
		attribute.Int64("attempt.id", int64(attemptID)),
		attribute.Int64("question.id", int64(questionID)))
	defer func() { tracing.End(span, err) }()

	if req.TimeSpentMs < 0 {
		return nil, util.Validation("timeSpentMs must not be negative")
	}
	tryNumber := 1
	if req.AttemptNo != nil {
		if *req.AttemptNo < 0 {
			return nil, util.Validation("attemptNo must be a positive integer")
		}
		if *req.AttemptNo > 0 {
			tryNumber = *req.AttemptNo
		}
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

	question, err := s.Catalog.FindQuestion(ctx, questionID)
	if err != nil {
		return nil, notFoundAs(err, util.ErrQuestionNotFound)
	}
	if question.QuizID != attempt.QuizID {
		return nil, util.ErrQuestionNotInQuiz
	}

	selected := rawAnswer(req.SelectedAnswer)
	record := &model.AnswerRecord{
		QuizAttemptID:  attempt.ID,
		QuestionID:     question.ID,
		TryNumber:      tryNumber,
		TopicTag:       question.TopicTag,
		Difficulty:     question.Difficulty,
		SelectedAnswer: selected,
		IsCorrect:      IsCorrect(question.CorrectAnswer, selected),
		TimeSpentMs:    req.TimeSpentMs,
		HintUsed:       req.HintUsed,
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 版本号 +1 同时确认作答仍未提交，使并发提交能感知到新答案
		rows, err := s.Attempts.WithTx(tx).BumpOpen(ctx, attempt.ID)
		if err != nil {
			return err
		}
		if rows == 0 {
			return util.ErrAttemptSubmitted
		}
		if err := s.Answers.WithTx(tx).Create(ctx, record); err != nil {
			if repository.IsDuplicateKey(err) {
				return util.ErrDuplicateTry
			}
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, util.ErrDuplicateTry) {
			monitoring.LedgerConflicts.Inc()
			logger.Log.Warn("Duplicate try number rejected",
				zap.Uint("attemptId", attempt.ID),
				zap.Uint("questionId", question.ID),
				zap.Int("attemptNo", tryNumber))
		}
		return nil, err
	}

	monitoring.ObserveAnswer("quiz", record.IsCorrect)
	return &RecordAnswerResp{
		AnswerRecordID: record.ID,
		AttemptNo:      record.TryNumber,
		IsCorrect:      record.IsCorrect,
	}, nil
}

type SubmitQuizAttemptResp struct {
	AttemptID         uint               `json:"attemptId"`
	ScorePercent      int                `json:"scorePercent"`
	CorrectCount      int                `json:"correctCount"`
	TotalQuestions    int                `json:"totalQuestions"`
	AnsweredCount     int                `json:"answeredCount"`
	MasteryLevel      model.MasteryLevel `json:"masteryLevel"`
	WeakTopics        []string           `json:"weakTopics"`
	TotalTimeSec      int                `json:"totalTimeSec"`
	Passed            bool               `json:"passed"`
	ProgressPercent   *int               `json:"progressPercent,omitempty"`
	PracticeDirective Directive          `json:"practiceDirective"`
}

// Submit 一次性的状态迁移：读流水、计分、写结果在同一事务中完成，
// 并以版本号保证计分期间没有新答案写入
func (s *QuizAttemptService) Submit(ctx context.Context, caller Caller, attemptID uint) (resp *SubmitQuizAttemptResp, err error) {
	ctx, span := tracing.StartSpan(ctx, "quiz_attempt.submit", attribute.Int64("attempt.id", int64(attemptID)))
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
	var (
		score    QuizScore
		passed   bool
		progress *int
	)

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		attempts := s.Attempts.WithTx(tx)

		current, err := attempts.FindByID(ctx, attemptID)
		if err != nil {
			return notFoundAs(err, util.ErrAttemptNotFound)
		}
		if current.IsSubmitted() {
			return util.ErrAttemptSubmitted
		}

		records, err := s.Answers.WithTx(tx).ListByAttempt(ctx, current.ID)
		if err != nil {
			return err
		}
		score = policy.ScoreQuiz(current.TotalQuestions, records)

		quiz, err := s.Catalog.WithTx(tx).FindQuiz(ctx, current.QuizID)
		if err != nil && !repository.IsNotFound(err) {
			return err
		}
		passed = policy.Passed(score.ScorePercent, quiz)

		now := s.now()
		mastery := score.MasteryLevel
		current.CorrectCount = &score.CorrectCount
		current.ScorePercent = &score.ScorePercent
		current.WeakTopics = score.WeakTopics
		current.MasteryLevel = &mastery
		current.TotalTimeSec = &score.TotalTimeSec
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

		// 管理员提交不影响学生进度
		if caller.IsOperator() {
			return nil
		}
		percent, err := s.Progress.Propagate(ctx, tx, current, passed, now)
		if err != nil {
			return err
		}
		progress = &percent
		return nil
	})
	if err != nil {
		return nil, err
	}

	monitoring.ObserveSubmission("quiz", string(score.MasteryLevel), score.ScorePercent)
	logger.Log.Info("Quiz attempt submitted",
		zap.Uint("attemptId", attempt.ID),
		zap.Uint("userId", attempt.UserID),
		zap.Int("scorePercent", score.ScorePercent),
		zap.String("mastery", string(score.MasteryLevel)),
		zap.Bool("passed", passed),
		zap.Bool("operator", caller.IsOperator()))

	directive := policy.DirectiveForAttempt(attempt, score.ScorePercent, score.WeakTopics, s.now())
	if !caller.IsOperator() {
		s.publish(ctx, directive)
	}

	return &SubmitQuizAttemptResp{
		AttemptID:         attempt.ID,
		ScorePercent:      score.ScorePercent,
		CorrectCount:      score.CorrectCount,
		TotalQuestions:    score.TotalQuestions,
		AnsweredCount:     score.AnsweredCount,
		MasteryLevel:      score.MasteryLevel,
		WeakTopics:        score.WeakTopics,
		TotalTimeSec:      score.TotalTimeSec,
		Passed:            passed,
		ProgressPercent:   progress,
		PracticeDirective: directive,
	}, nil
}

// publish 提交已落库，投递失败只记录日志
func (s *QuizAttemptService) publish(ctx context.Context, d Directive) {
	if !s.PublishDirectives {
		return
	}
	if err := s.Publisher.Publish(ctx, d); err != nil {
		monitoring.DirectivesPublished.WithLabelValues(string(d.Trigger), "error").Inc()
		logger.Log.Error("Failed to publish practice directive",
			zap.String("directiveId", d.ID),
			zap.Uint("userId", d.UserID),
			zap.Error(err))
		return
	}
	monitoring.DirectivesPublished.WithLabelValues(string(d.Trigger), "ok").Inc()
}

type AnswerView struct {
	QuestionID     uint           `json:"questionId"`
	AttemptNo      int            `json:"attemptNo"`
	TopicTag       string         `json:"topicTag"`
	SelectedAnswer datatypes.JSON `json:"selectedAnswer"`
	IsCorrect      bool           `json:"isCorrect"`
	TimeSpentMs    int64          `json:"timeSpentMs"`
	HintUsed       bool           `json:"hintUsed"`
	AnsweredAt     time.Time      `json:"answeredAt"`
}

type QuizAttemptDetail struct {
	Attempt    *model.QuizAttempt `json:"attempt"`
	TotalTries int                `json:"totalTries"`
	Latest     []AnswerView       `json:"latestAnswers"`
}

// GetDetail 作答详情，只返回每题的最新答案，不包含标准答案
func (s *QuizAttemptService) GetDetail(ctx context.Context, caller Caller, attemptID uint) (*QuizAttemptDetail, error) {
	attempt, err := s.Attempts.FindByID(ctx, attemptID)
	if err != nil {
		return nil, notFoundAs(err, util.ErrAttemptNotFound)
	}
	if !CanActAsOwner(caller, attempt.UserID) {
		return nil, util.ErrPermissionDenied
	}

	records, err := s.Answers.ListByAttempt(ctx, attempt.ID)
	if err != nil {
		return nil, err
	}
	latest := LatestPerQuestion(records)
	views := make([]AnswerView, 0, len(latest))
	for _, rec := range latest {
		views = append(views, AnswerView{
			QuestionID:     rec.QuestionID,
			AttemptNo:      rec.TryNumber,
			TopicTag:       rec.TopicTag,
			SelectedAnswer: rec.SelectedAnswer,
			IsCorrect:      rec.IsCorrect,
			TimeSpentMs:    rec.TimeSpentMs,
			HintUsed:       rec.HintUsed,
			AnsweredAt:     rec.CreatedAt,
		})
	}
	sort.Slice(views, func(i, j int) bool { return views[i].QuestionID < views[j].QuestionID })

	return &QuizAttemptDetail{
		Attempt:    attempt,
		TotalTries: len(records),
		Latest:     views,
	}, nil
}

// ListForQuiz 默认查看自己的作答；管理员可指定 userID
func (s *QuizAttemptService) ListForQuiz(ctx context.Context, caller Caller, quizID, userID uint) ([]model.QuizAttempt, error) {
	if _, err := s.Catalog.FindQuiz(ctx, quizID); err != nil {
		return nil, notFoundAs(err, util.ErrQuizNotFound)
	}
	target := caller.UserID
	if userID != 0 && userID != caller.UserID {
		if !caller.IsOperator() {
			return nil, util.ErrPermissionDenied
		}
		target = userID
	}
	return s.Attempts.ListByUserAndQuiz(ctx, target, quizID)
}

// notFoundAs 记录不存在时替换为业务错误，其余错误原样返回
func notFoundAs(err, domainErr error) error {
	if repository.IsNotFound(err) {
		return domainErr
	}
	return err
}

// rawAnswer 缺省答案存为 JSON null
func rawAnswer(raw json.RawMessage) datatypes.JSON {
	if len(raw) == 0 {
		return datatypes.JSON("null")
	}
	return datatypes.JSON(raw)
}
