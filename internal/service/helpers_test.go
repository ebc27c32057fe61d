package service

import (
	"adaptive_lms_backend/internal/model"
	"adaptive_lms_backend/internal/repository"
	"context"
	"encoding/json"
	"testing"

	"gorm.io/gorm"
)

var (
	student      = Caller{UserID: 100, Role: model.Student}
	otherStudent = Caller{UserID: 200, Role: model.Student}
	admin        = Caller{UserID: 1, Role: model.Admin}
)

type recordingPublisher struct {
	directives []Directive
	err        error
}

func (p *recordingPublisher) Publish(_ context.Context, d Directive) error {
	if p.err != nil {
		return p.err
	}
	p.directives = append(p.directives, d)
	return nil
}

type testServices struct {
	db        *gorm.DB
	publisher *recordingPublisher
	quiz      *QuizAttemptService
	practice  *PracticeAttemptService
	sets      *PracticeSetService
	enroll    *EnrollmentService
}

func newTestServices(t *testing.T, db *gorm.DB) *testServices {
	t.Helper()

	catalog := repository.NewCatalogRepository(db)
	enrollments := repository.NewEnrollmentRepository(db)
	progress := repository.NewLessonProgressRepository(db)
	attempts := repository.NewQuizAttemptRepository(db)
	answers := repository.NewAnswerRecordRepository(db)
	practiceSets := repository.NewPracticeSetRepository(db)
	practiceAttempts := repository.NewPracticeAttemptRepository(db)

	policy := NewPolicyStore(DefaultScoringPolicy())
	access := NewAccessPolicy(enrollments)
	pub := &recordingPublisher{}

	return &testServices{
		db:        db,
		publisher: pub,
		quiz: NewQuizAttemptService(db, catalog, attempts, answers, access,
			NewProgressService(catalog, progress, enrollments), policy, pub, true),
		practice: NewPracticeAttemptService(db, practiceSets, practiceAttempts, policy),
		sets:     NewPracticeSetService(practiceSets, catalog, enrollments, attempts, access, pub),
		enroll:   NewEnrollmentService(catalog, enrollments),
	}
}

func answer(v string) RecordAnswerReq {
	return RecordAnswerReq{SelectedAnswer: json.RawMessage(v), TimeSpentMs: 1000}
}

func tryNo(n int) *int {
	return &n
}
