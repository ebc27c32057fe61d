package service

import (
	"adaptive_lms_backend/internal/model"
	"adaptive_lms_backend/internal/repository"
	"adaptive_lms_backend/internal/util"
	"adaptive_lms_backend/pkg/logger"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

const maxQuestionKeyLen = 64

type PracticeSetService struct {
	Sets        *repository.PracticeSetRepository
	Catalog     *repository.CatalogRepository
	Enrollments *repository.EnrollmentRepository
	Attempts    *repository.QuizAttemptRepository
	Access      *AccessPolicy
	Publisher   DirectivePublisher

	now func() time.Time
}

func NewPracticeSetService(
	sets *repository.PracticeSetRepository,
	catalog *repository.CatalogRepository,
	enrollments *repository.EnrollmentRepository,
	attempts *repository.QuizAttemptRepository,
	access *AccessPolicy,
	publisher DirectivePublisher,
) *PracticeSetService {
	if publisher == nil {
		publisher = NoopDirectivePublisher{}
	}
	return &PracticeSetService{
		Sets:        sets,
		Catalog:     catalog,
		Enrollments: enrollments,
		Attempts:    attempts,
		Access:      access,
		Publisher:   publisher,
		now:         time.Now,
	}
}

type PracticeQuestionReq struct {
	QuestionKey   string                 `json:"questionKey"`
	Type          model.QuestionType     `json:"type"`
	Prompt        string                 `json:"prompt"`
	Options       []model.PracticeOption `json:"options"`
	CorrectAnswer json.RawMessage        `json:"correctAnswer"`
	Explanation   string                 `json:"explanation"`
	TopicTag      string                 `json:"topicTag"`
	Difficulty    int                    `json:"difficulty"`
	Order         int                    `json:"order"`
}

type AIMetaReq struct {
	Model         *string `json:"model"`
	PromptVersion *string `json:"promptVersion"`
	InputHash     *string `json:"inputHash"`
}

// CreatePracticeSetReq 外部生成器回传的练习集
type CreatePracticeSetReq struct {
	UserID              uint                   `json:"userId" binding:"required"`
	CourseID            uint                   `json:"courseId" binding:"required"`
	LessonID            uint                   `json:"lessonId" binding:"required"`
	Trigger             model.PracticeTrigger  `json:"trigger"`
	WeakTopics          []string               `json:"weakTopics"`
	DifficultyTarget    model.DifficultyTarget `json:"difficultyTarget"`
	SourceQuizAttemptID *uint                  `json:"sourceQuizAttemptId"`
	Questions           []PracticeQuestionReq  `json:"questions"`
	AIMeta              *AIMetaReq             `json:"aiMeta"`
	ExpiresAt           *time.Time             `json:"expiresAt"`
}

// Create 校验生成器输出并落库，仅管理员（生成器服务账号）可调用
func (s *PracticeSetService) Create(ctx context.Context, caller Caller, req CreatePracticeSetReq) (*model.PracticeSet, error) {
	if !caller.IsOperator() {
		return nil, util.ErrPermissionDenied
	}
	if !req.Trigger.Valid() {
		return nil, util.Validation(fmt.Sprintf("invalid trigger %q", req.Trigger))
	}
	if !req.DifficultyTarget.Valid() {
		return nil, util.Validation(fmt.Sprintf("invalid difficultyTarget %q", req.DifficultyTarget))
	}
	questions, err := normalizePracticeQuestions(req.Questions)
	if err != nil {
		return nil, err
	}

	lesson, err := s.Catalog.FindLesson(ctx, req.LessonID)
	if err != nil {
		return nil, notFoundAs(err, util.ErrLessonNotFound)
	}
	if lesson.CourseID != req.CourseID {
		return nil, util.NewError(util.ErrMismatchedParent, "lesson does not belong to course")
	}
	if _, err := s.Enrollments.Find(ctx, req.UserID, req.CourseID); err != nil {
		if repository.IsNotFound(err) {
			return nil, util.Validation("user is not enrolled in course")
		}
		return nil, err
	}
	if req.SourceQuizAttemptID != nil {
		src, err := s.Attempts.FindByID(ctx, *req.SourceQuizAttemptID)
		if err != nil {
			return nil, notFoundAs(err, util.ErrAttemptNotFound)
		}
		if src.UserID != req.UserID || src.LessonID != req.LessonID {
			return nil, util.NewError(util.ErrMismatchedParent, "source attempt does not match user and lesson")
		}
	}

	weak := req.WeakTopics
	if weak == nil {
		weak = []string{}
	}
	set := &model.PracticeSet{
		UserID:              req.UserID,
		CourseID:            req.CourseID,
		LessonID:            req.LessonID,
		Trigger:             req.Trigger,
		WeakTopics:          weak,
		DifficultyTarget:    req.DifficultyTarget,
		SourceQuizAttemptID: req.SourceQuizAttemptID,
		Questions:           questions,
		Status:              model.PracticeSetActive,
		ExpiresAt:           req.ExpiresAt,
	}
	if req.AIMeta != nil {
		set.AIModel = req.AIMeta.Model
		set.PromptVersion = req.AIMeta.PromptVersion
		set.InputHash = req.AIMeta.InputHash
	}
	if err := s.Sets.Create(ctx, set); err != nil {
		return nil, err
	}

	logger.Log.Info("Practice set created",
		zap.Uint("practiceSetId", set.ID),
		zap.Uint("userId", set.UserID),
		zap.String("trigger", string(set.Trigger)),
		zap.Int("questions", len(set.Questions)))
	return set, nil
}

func normalizePracticeQuestions(in []PracticeQuestionReq) ([]model.PracticeQuestion, error) {
	if len(in) == 0 {
		return nil, util.Validation("practice set must contain at least one question")
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]model.PracticeQuestion, 0, len(in))
	for i, q := range in {
		key := strings.TrimSpace(q.QuestionKey)
		if key == "" {
			return nil, util.Validation(fmt.Sprintf("questions[%d]: questionKey is required", i))
		}
		if len(key) > maxQuestionKeyLen {
			return nil, util.Validation(fmt.Sprintf("questions[%d]: questionKey exceeds %d characters", i, maxQuestionKeyLen))
		}
		if _, dup := seen[key]; dup {
			return nil, util.Validation(fmt.Sprintf("questions[%d]: duplicate questionKey %q", i, key))
		}
		seen[key] = struct{}{}

		if strings.TrimSpace(q.Prompt) == "" {
			return nil, util.Validation(fmt.Sprintf("questions[%d]: prompt is required", i))
		}
		raw := bytes.TrimSpace(q.CorrectAnswer)
		if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
			return nil, util.Validation(fmt.Sprintf("questions[%d]: correctAnswer is required", i))
		}

		difficulty := q.Difficulty
		if difficulty == 0 {
			difficulty = 3
		}
		if difficulty < 1 || difficulty > 5 {
			return nil, util.Validation(fmt.Sprintf("questions[%d]: difficulty must be between 1 and 5", i))
		}

		qType := q.Type
		if qType == "" {
			qType = model.QuestionMCQ
		}
		switch qType {
		case model.QuestionMCQ, model.QuestionMulti, model.QuestionTrueFalse:
		default:
			return nil, util.Validation(fmt.Sprintf("questions[%d]: unsupported type %q", i, qType))
		}

		order := q.Order
		if order <= 0 {
			order = i + 1
		}
		options := q.Options
		if options == nil {
			options = []model.PracticeOption{}
		}

		out = append(out, model.PracticeQuestion{
			QuestionKey:   key,
			Type:          qType,
			Prompt:        strings.TrimSpace(q.Prompt),
			Options:       options,
			CorrectAnswer: json.RawMessage(raw),
			Explanation:   strings.TrimSpace(q.Explanation),
			TopicTag:      strings.TrimSpace(q.TopicTag),
			Difficulty:    difficulty,
			Order:         order,
		})
	}
	return out, nil
}

// Get 学生查看时去掉标准答案
func (s *PracticeSetService) Get(ctx context.Context, caller Caller, id uint) (*model.PracticeSet, error) {
	set, err := s.Sets.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, util.ErrPracticeSetNotFound)
	}
	if !CanActAsOwner(caller, set.UserID) {
		return nil, util.ErrPermissionDenied
	}
	if !caller.IsOperator() {
		hideAnswers(set)
	}
	return set, nil
}

func (s *PracticeSetService) ListActive(ctx context.Context, caller Caller) ([]model.PracticeSet, error) {
	sets, err := s.Sets.ListActiveByUser(ctx, caller.UserID, s.now())
	if err != nil {
		return nil, err
	}
	for i := range sets {
		hideAnswers(&sets[i])
	}
	return sets, nil
}

func (s *PracticeSetService) Expire(ctx context.Context, caller Caller, id uint) error {
	if !caller.IsOperator() {
		return util.ErrPermissionDenied
	}
	rows, err := s.Sets.Expire(ctx, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return util.ErrPracticeSetNotFound
	}
	logger.Log.Info("Practice set expired", zap.Uint("practiceSetId", id), zap.Uint("operatorId", caller.UserID))
	return nil
}

func hideAnswers(set *model.PracticeSet) {
	questions := make([]model.PracticeQuestion, len(set.Questions))
	for i, q := range set.Questions {
		q.CorrectAnswer = nil
		questions[i] = q
	}
	set.Questions = questions
}

type ManualPracticeResp struct {
	Directive Directive `json:"directive"`
	Queued    bool      `json:"queued"`
}

// RequestManual 学生主动申请练习：难度与薄弱点取自该课时测验最近一次提交，没有则为 medium
func (s *PracticeSetService) RequestManual(ctx context.Context, caller Caller, lessonID uint) (*ManualPracticeResp, error) {
	lesson, err := s.Catalog.FindLesson(ctx, lessonID)
	if err != nil {
		return nil, notFoundAs(err, util.ErrLessonNotFound)
	}
	course, err := s.Catalog.FindCourse(ctx, lesson.CourseID)
	if err != nil {
		return nil, notFoundAs(err, util.ErrLessonNotFound)
	}
	if err := s.Access.CheckCourse(ctx, caller, course, util.ErrLessonNotFound); err != nil {
		return nil, err
	}

	directive := Directive{
		ID:               newDirectiveID(),
		UserID:           caller.UserID,
		CourseID:         course.ID,
		LessonID:         lesson.ID,
		Trigger:          model.TriggerManualRequest,
		DifficultyTarget: model.DifficultyMedium,
		WeakTopics:       []string{},
		IssuedAt:         s.now(),
	}

	quiz, err := s.Catalog.FindQuizByLesson(ctx, lesson.ID)
	if err != nil && !repository.IsNotFound(err) {
		return nil, err
	}
	if quiz != nil {
		latest, err := s.Attempts.LatestSubmitted(ctx, caller.UserID, quiz.ID)
		if err != nil && !repository.IsNotFound(err) {
			return nil, err
		}
		if latest != nil {
			if latest.MasteryLevel != nil {
				directive.DifficultyTarget = difficultyForMastery(*latest.MasteryLevel)
			}
			directive.WeakTopics = append(directive.WeakTopics, latest.WeakTopics...)
			source := latest.ID
			directive.SourceQuizAttemptID = &source
		}
	}

	resp := &ManualPracticeResp{Directive: directive}
	if _, disabled := s.Publisher.(NoopDirectivePublisher); disabled {
		return resp, nil
	}
	if err := s.Publisher.Publish(ctx, directive); err != nil {
		logger.Log.Error("Failed to publish manual practice directive",
			zap.String("directiveId", directive.ID),
			zap.Uint("userId", caller.UserID),
			zap.Error(err))
		return resp, nil
	}
	resp.Queued = true
	return resp, nil
}
