package service

import (
	"adaptive_lms_backend/internal/model"
	"time"

	"github.com/google/uuid"
)

// Directive 交给外部练习题生成器的指令
type Directive struct {
	ID                  string                 `json:"id"`
	UserID              uint                   `json:"userId"`
	CourseID            uint                   `json:"courseId"`
	LessonID            uint                   `json:"lessonId"`
	Trigger             model.PracticeTrigger  `json:"trigger"`
	DifficultyTarget    model.DifficultyTarget `json:"difficultyTarget"`
	WeakTopics          []string               `json:"weakTopics"`
	SourceQuizAttemptID *uint                  `json:"sourceQuizAttemptId"`
	IssuedAt            time.Time              `json:"issuedAt"`
}

// Target 按得分选择触发类型与难度，阈值与掌握度一致
func (p ScoringPolicy) Target(scorePercent int) (model.PracticeTrigger, model.DifficultyTarget) {
	switch {
	case scorePercent < p.MasteryMedium:
		return model.TriggerPostQuizLow, model.DifficultyLow
	case scorePercent < p.MasteryHigh:
		return model.TriggerPostQuizMedium, model.DifficultyMedium
	default:
		return model.TriggerChallengeHigh, model.DifficultyHigh
	}
}

// DirectiveForAttempt 已提交作答 -> 生成指令；薄弱知识点原样作为提示转交
func (p ScoringPolicy) DirectiveForAttempt(attempt *model.QuizAttempt, scorePercent int, weakTopics []string, now time.Time) Directive {
	trigger, difficulty := p.Target(scorePercent)
	source := attempt.ID
	topics := make([]string, len(weakTopics))
	copy(topics, weakTopics)
	return Directive{
		ID:                  newDirectiveID(),
		UserID:              attempt.UserID,
		CourseID:            attempt.CourseID,
		LessonID:            attempt.LessonID,
		Trigger:             trigger,
		DifficultyTarget:    difficulty,
		WeakTopics:          topics,
		SourceQuizAttemptID: &source,
		IssuedAt:            now,
	}
}

func difficultyForMastery(m model.MasteryLevel) model.DifficultyTarget {
	switch m {
	case model.MasteryLow:
		return model.DifficultyLow
	case model.MasteryHigh:
		return model.DifficultyHigh
	default:
		return model.DifficultyMedium
	}
}

func newDirectiveID() string {
	return uuid.NewString()
}
