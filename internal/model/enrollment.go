package model

import "time"

type EnrollmentStatus string

const (
	EnrollmentEnrolled  EnrollmentStatus = "enrolled"
	EnrollmentCompleted EnrollmentStatus = "completed"
	EnrollmentDropped   EnrollmentStatus = "dropped"
)

// swagger:model Enrollment
type Enrollment struct {
	BaseModel
	UserID          uint             `gorm:"uniqueIndex:idx_enrollment_user_course;not null" json:"userId"`
	CourseID        uint             `gorm:"uniqueIndex:idx_enrollment_user_course;index;not null" json:"courseId"`
	Status          EnrollmentStatus `gorm:"size:20;default:'enrolled';index" json:"status"`
	ProgressPercent int              `gorm:"default:0" json:"progressPercent"`
	LastLessonID    *uint            `json:"lastLessonId"`
	StartedAt       time.Time        `json:"startedAt"`
	CompletedAt     *time.Time       `json:"completedAt"`

	Course *Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}

type LessonProgressStatus string

const (
	LessonNotStarted LessonProgressStatus = "not_started"
	LessonInProgress LessonProgressStatus = "in_progress"
	LessonCompleted  LessonProgressStatus = "completed"
)

// LessonProgress 只由进度传播逻辑写入
type LessonProgress struct {
	BaseModel
	UserID      uint                 `gorm:"uniqueIndex:idx_progress_user_lesson;not null" json:"userId"`
	LessonID    uint                 `gorm:"uniqueIndex:idx_progress_user_lesson;not null" json:"lessonId"`
	CourseID    uint                 `gorm:"index;not null" json:"courseId"`
	Status      LessonProgressStatus `gorm:"size:20;default:'not_started';index" json:"status"`
	CompletedAt *time.Time           `json:"completedAt"`
}

func (LessonProgress) TableName() string {
	return "lesson_progress"
}
