package model

import (
	"time"

	"gorm.io/datatypes"
)

type MasteryLevel string

const (
	MasteryLow    MasteryLevel = "low"
	MasteryMedium MasteryLevel = "medium"
	MasteryHigh   MasteryLevel = "high"
)

// QuizAttempt 一次测验作答。SubmittedAt 为空表示进行中；
// 结果字段（CorrectCount 之后）只在提交时与 SubmittedAt 一起写入
// swagger:model QuizAttempt
type QuizAttempt struct {
	BaseModel
	UserID         uint       `gorm:"index;not null" json:"userId"`
	CourseID       uint       `gorm:"index;not null" json:"courseId"`
	LessonID       uint       `gorm:"index;not null" json:"lessonId"`
	QuizID         uint       `gorm:"index;not null" json:"quizId"`
	QuizVersion    int        `json:"quizVersion"`
	TotalQuestions int        `json:"totalQuestions"`
	StartedAt      time.Time  `json:"startedAt"`
	SubmittedAt    *time.Time `gorm:"index" json:"submittedAt"`

	CorrectCount *int                        `json:"correctCount"`
	ScorePercent *int                        `json:"scorePercent"`
	WeakTopics   datatypes.JSONSlice[string] `json:"weakTopics"`
	MasteryLevel *MasteryLevel               `gorm:"size:10" json:"masteryLevel"`
	TotalTimeSec *int                        `json:"totalTimeSec"`

	// 乐观锁：每记录一次答案 +1，提交时比对
	Version int `gorm:"default:0" json:"-"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}

func (a *QuizAttempt) IsSubmitted() bool {
	return a.SubmittedAt != nil
}

// AnswerRecord 答题流水，只追加不覆盖
// swagger:model AnswerRecord
type AnswerRecord struct {
	BaseModel
	QuizAttemptID  uint           `gorm:"uniqueIndex:idx_answer_attempt_question_try;not null" json:"quizAttemptId"`
	QuestionID     uint           `gorm:"uniqueIndex:idx_answer_attempt_question_try;not null" json:"questionId"`
	TryNumber      int            `gorm:"uniqueIndex:idx_answer_attempt_question_try;not null" json:"attemptNo"`
	TopicTag       string         `gorm:"size:80" json:"topicTag"`
	Difficulty     int            `json:"difficulty"`
	SelectedAnswer datatypes.JSON `json:"selectedAnswer"`
	IsCorrect      bool           `json:"isCorrect"`
	TimeSpentMs    int64          `json:"timeSpentMs"`
	HintUsed       bool           `json:"hintUsed"`
}

func (AnswerRecord) TableName() string {
	return "answer_records"
}
