package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type PracticeTrigger string

const (
	TriggerPostQuizLow    PracticeTrigger = "post_quiz_low"
	TriggerPostQuizMedium PracticeTrigger = "post_quiz_medium"
	TriggerChallengeHigh  PracticeTrigger = "challenge_high"
	TriggerManualRequest  PracticeTrigger = "manual_request"
)

func (t PracticeTrigger) Valid() bool {
	switch t {
	case TriggerPostQuizLow, TriggerPostQuizMedium, TriggerChallengeHigh, TriggerManualRequest:
		return true
	}
	return false
}

type DifficultyTarget string

const (
	DifficultyLow    DifficultyTarget = "low"
	DifficultyMedium DifficultyTarget = "medium"
	DifficultyHigh   DifficultyTarget = "high"
)

func (d DifficultyTarget) Valid() bool {
	return d == DifficultyLow || d == DifficultyMedium || d == DifficultyHigh
}

type PracticeSetStatus string

const (
	PracticeSetActive  PracticeSetStatus = "active"
	PracticeSetExpired PracticeSetStatus = "expired"
)

type PracticeOption struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

// PracticeQuestion 内嵌在练习集中的题目，QuestionKey 仅在集合内唯一
type PracticeQuestion struct {
	QuestionKey   string           `json:"questionKey"`
	Type          QuestionType     `json:"type"`
	Prompt        string           `json:"prompt"`
	Options       []PracticeOption `json:"options"`
	CorrectAnswer json.RawMessage  `json:"correctAnswer,omitempty"`
	Explanation   string           `json:"explanation,omitempty"`
	TopicTag      string           `json:"topicTag"`
	Difficulty    int              `json:"difficulty"`
	Order         int              `json:"order"`
}

// swagger:model PracticeSet
type PracticeSet struct {
	BaseModel
	UserID              uint                                  `gorm:"index:idx_practice_user_lesson;not null" json:"userId"`
	CourseID            uint                                  `gorm:"index;not null" json:"courseId"`
	LessonID            uint                                  `gorm:"index:idx_practice_user_lesson;not null" json:"lessonId"`
	Trigger             PracticeTrigger                       `gorm:"size:30;index" json:"trigger"`
	WeakTopics          datatypes.JSONSlice[string]           `json:"weakTopics"`
	DifficultyTarget    DifficultyTarget                      `gorm:"size:10" json:"difficultyTarget"`
	SourceQuizAttemptID *uint                                 `gorm:"index" json:"sourceQuizAttemptId"`
	Questions           datatypes.JSONSlice[PracticeQuestion] `json:"questions"`
	AIModel             *string                               `gorm:"size:100" json:"aiModel"`
	PromptVersion       *string                               `gorm:"size:50" json:"promptVersion"`
	InputHash           *string                               `gorm:"size:128" json:"inputHash"`
	Status              PracticeSetStatus                     `gorm:"size:10;default:'active';index" json:"status"`
	ExpiresAt           *time.Time                            `gorm:"index" json:"expiresAt"`
}

func (PracticeSet) TableName() string {
	return "practice_sets"
}

// IsActive 过期时间已到的练习集视为非活动
func (s *PracticeSet) IsActive(now time.Time) bool {
	if s.Status != PracticeSetActive {
		return false
	}
	return s.ExpiresAt == nil || now.Before(*s.ExpiresAt)
}

func (s *PracticeSet) FindQuestion(key string) (PracticeQuestion, bool) {
	for _, q := range s.Questions {
		if q.QuestionKey == key {
			return q, true
		}
	}
	return PracticeQuestion{}, false
}

// swagger:model PracticeAttempt
type PracticeAttempt struct {
	BaseModel
	PracticeSetID  uint       `gorm:"index;not null" json:"practiceSetId"`
	UserID         uint       `gorm:"index;not null" json:"userId"`
	CourseID       uint       `gorm:"index" json:"courseId"`
	LessonID       uint       `gorm:"index" json:"lessonId"`
	TotalQuestions int        `json:"totalQuestions"`
	StartedAt      time.Time  `json:"startedAt"`
	SubmittedAt    *time.Time `gorm:"index" json:"submittedAt"`

	CorrectCount    *int          `json:"correctCount"`
	ScorePercent    *int          `json:"scorePercent"`
	MasteryAfter    *MasteryLevel `gorm:"size:10" json:"masteryAfter"`
	DurationSeconds *int          `json:"durationSeconds"`
	FeedbackSummary string        `gorm:"type:text" json:"feedbackSummary"`

	Version int `gorm:"default:0" json:"-"`
}

func (PracticeAttempt) TableName() string {
	return "practice_attempts"
}

func (a *PracticeAttempt) IsSubmitted() bool {
	return a.SubmittedAt != nil
}

// PracticeAnswer 每个题目键只保留最后一次作答
type PracticeAnswer struct {
	BaseModel
	PracticeAttemptID uint           `gorm:"uniqueIndex:idx_practice_answer_key;not null" json:"practiceAttemptId"`
	QuestionKey       string         `gorm:"uniqueIndex:idx_practice_answer_key;size:64;not null" json:"questionKey"`
	SelectedAnswer    datatypes.JSON `json:"selectedAnswer"`
	IsCorrect         bool           `json:"isCorrect"`
	TimeSpentMs       int64          `json:"timeSpentMs"`
}

func (PracticeAnswer) TableName() string {
	return "practice_answers"
}
