package testutil

import (
	"adaptive_lms_backend/internal/model"
	"adaptive_lms_backend/pkg/database"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB 每个测试独立的内存库，已完成迁移
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func SeedCourse(t *testing.T, db *gorm.DB, published bool) *model.Course {
	t.Helper()
	course := &model.Course{Title: "Intro to Go", Published: published}
	require.NoError(t, db.Create(course).Error)
	return course
}

func SeedLesson(t *testing.T, db *gorm.DB, courseID uint, order int) *model.Lesson {
	t.Helper()
	lesson := &model.Lesson{CourseID: courseID, Title: fmt.Sprintf("Lesson %d", order), Order: order}
	require.NoError(t, db.Create(lesson).Error)
	return lesson
}

func SeedQuiz(t *testing.T, db *gorm.DB, lessonID uint, passPercent int) *model.Quiz {
	t.Helper()
	quiz := &model.Quiz{LessonID: lessonID, Title: "Checkpoint", PassPercent: passPercent, Version: 1}
	require.NoError(t, db.Create(quiz).Error)
	return quiz
}

// SeedQuestion correct 为 JSON 文本，例如 `"B"` 或 `["A","C"]`
func SeedQuestion(t *testing.T, db *gorm.DB, quizID uint, topic, correct string) *model.Question {
	t.Helper()
	q := &model.Question{
		QuizID:        quizID,
		Type:          model.QuestionMCQ,
		Prompt:        "Pick one",
		Options:       datatypes.JSON(`[{"key":"A"},{"key":"B"},{"key":"C"}]`),
		CorrectAnswer: datatypes.JSON(correct),
		TopicTag:      topic,
		Difficulty:    3,
	}
	require.NoError(t, db.Create(q).Error)
	return q
}

func SeedEnrollment(t *testing.T, db *gorm.DB, userID, courseID uint, status model.EnrollmentStatus) *model.Enrollment {
	t.Helper()
	enr := &model.Enrollment{UserID: userID, CourseID: courseID, Status: status}
	require.NoError(t, db.Create(enr).Error)
	return enr
}

// QuizFixture 已发布课程 + N 个课时，第一个课时挂一个测验
type QuizFixture struct {
	Course    *model.Course
	Lessons   []*model.Lesson
	Quiz      *model.Quiz
	Questions []*model.Question
}

// SeedQuizFixture topics 与 answers 一一对应，每对生成一道题
func SeedQuizFixture(t *testing.T, db *gorm.DB, lessons int, topics, answers []string) *QuizFixture {
	t.Helper()
	require.Equal(t, len(topics), len(answers))

	f := &QuizFixture{Course: SeedCourse(t, db, true)}
	for i := 1; i <= lessons; i++ {
		f.Lessons = append(f.Lessons, SeedLesson(t, db, f.Course.ID, i))
	}
	f.Quiz = SeedQuiz(t, db, f.Lessons[0].ID, 70)
	for i := range topics {
		f.Questions = append(f.Questions, SeedQuestion(t, db, f.Quiz.ID, topics[i], answers[i]))
	}
	return f
}

func SeedPracticeSet(t *testing.T, db *gorm.DB, userID, courseID, lessonID uint, questions []model.PracticeQuestion) *model.PracticeSet {
	t.Helper()
	set := &model.PracticeSet{
		UserID:           userID,
		CourseID:         courseID,
		LessonID:         lessonID,
		Trigger:          model.TriggerPostQuizLow,
		WeakTopics:       []string{},
		DifficultyTarget: model.DifficultyLow,
		Questions:        questions,
		Status:           model.PracticeSetActive,
	}
	require.NoError(t, db.Create(set).Error)
	return set
}
