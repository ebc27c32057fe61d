package model

import "gorm.io/datatypes"

// 课程目录（只读），由内容编辑侧维护

// swagger:model Course
type Course struct {
	BaseModel
	Title     string `gorm:"size:120;not null" json:"title"`
	Published bool   `gorm:"default:false;index" json:"published"`
}

func (Course) TableName() string {
	return "courses"
}

// swagger:model Lesson
type Lesson struct {
	BaseModel
	CourseID uint   `gorm:"index;not null" json:"courseId"`
	Title    string `gorm:"size:150;not null" json:"title"`
	Order    int    `gorm:"column:sort_order" json:"order"`
}

func (Lesson) TableName() string {
	return "lessons"
}

// swagger:model Quiz
type Quiz struct {
	BaseModel
	LessonID     uint   `gorm:"uniqueIndex;not null" json:"lessonId"`
	Title        string `gorm:"size:150;not null" json:"title"`
	PassPercent  int    `gorm:"default:70" json:"passPercent"`
	TimeLimitSec int    `gorm:"default:0" json:"timeLimitSec"`
	Version      int    `gorm:"default:1" json:"version"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

type QuestionType string

const (
	QuestionMCQ       QuestionType = "mcq"
	QuestionMulti     QuestionType = "multi"
	QuestionTrueFalse QuestionType = "truefalse"
	QuestionCodeTrace QuestionType = "code_trace"
)

// swagger:model Question
type Question struct {
	BaseModel
	QuizID        uint           `gorm:"index;not null" json:"quizId"`
	Type          QuestionType   `gorm:"size:20;default:'mcq'" json:"type"`
	Prompt        string         `gorm:"type:text" json:"prompt"`
	Options       datatypes.JSON `json:"options"`
	CorrectAnswer datatypes.JSON `json:"correctAnswer,omitempty"`
	Explanation   string         `gorm:"type:text" json:"explanation"`
	TopicTag      string         `gorm:"size:80;index" json:"topicTag"`
	Difficulty    int            `gorm:"default:3" json:"difficulty"`
	Order         int            `gorm:"column:sort_order" json:"order"`
}

func (Question) TableName() string {
	return "questions"
}
