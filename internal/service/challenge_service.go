package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/challenge-api/internal/dto"
	"github.com/noah-isme/challenge-api/internal/models"
	"github.com/noah-isme/challenge-api/internal/observability"
	"github.com/noah-isme/challenge-api/internal/repository"
)

// ChallengeService covers challenge authoring and the assign → solve → review workflow.
type ChallengeService interface {
	Create(ctx context.Context, actor ActivityActor, payload dto.ChallengeRequest) (dto.ChallengeResponse, error)
	List(ctx context.Context, filter string) ([]dto.ChallengeResponse, error)
	Get(ctx context.Context, id uint) (dto.ChallengeResponse, error)
	Update(ctx context.Context, actor ActivityActor, id uint, payload dto.ChallengeRequest) (dto.ChallengeResponse, error)
	Delete(ctx context.Context, actor ActivityActor, id uint) error
	Assign(ctx context.Context, teacher ActivityActor, payload dto.AssignChallengeRequest) (dto.StudentChallengeResponse, error)
	ListForReviewer(ctx context.Context, teacherID uint, status string) ([]dto.StudentChallengeResponse, error)
	ListForStudent(ctx context.Context, studentID uint, status string) ([]dto.StudentChallengeResponse, error)
	Solve(ctx context.Context, student ActivityActor, payload dto.SolveChallengeRequest) (dto.StudentChallengeResponse, error)
	Review(ctx context.Context, teacher ActivityActor, payload dto.ReviewChallengeRequest) (dto.StudentChallengeResponse, error)
}

type challengeService struct {
	db          *gorm.DB
	challenges  repository.ChallengeRepository
	assignments repository.StudentChallengeRepository
	users       repository.UserRepository
	activity    ActivityRecorder
	events      ChallengeEventPublisher
	validator   *validator.Validate
	text        plainTextPolicy
	tracer      trace.Tracer
	logger      zerolog.Logger
	now         func() time.Time
}

// NewChallengeService builds the challenge workflow service. activity and events may be nil.
func NewChallengeService(
	db *gorm.DB,
	challenges repository.ChallengeRepository,
	assignments repository.StudentChallengeRepository,
	users repository.UserRepository,
	activity ActivityRecorder,
	events ChallengeEventPublisher,
	validate *validator.Validate,
	logger zerolog.Logger,
) ChallengeService {
	return &challengeService{
		db:          db,
		challenges:  challenges,
		assignments: assignments,
		users:       users,
		activity:    activity,
		events:      events,
		validator:   validate,
		text:        newPlainTextPolicy(),
		tracer:      otel.Tracer("github.com/noah-isme/challenge-api/internal/service/challenge"),
		logger:      logger.With().Str("component", "challenge_service").Logger(),
		now:         time.Now,
	}
}

func (s *challengeService) Create(ctx context.Context, actor ActivityActor, payload dto.ChallengeRequest) (dto.ChallengeResponse, error) {
	ctx, span := s.tracer.Start(ctx, "challenge.create", trace.WithAttributes(attribute.Int64("challenge.actor_id", int64(actor.ID))))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		return dto.ChallengeResponse{}, spanError(span, err, "validation_failed")
	}

	description, err := s.text.Clean(payload.Description)
	if err != nil {
		return dto.ChallengeResponse{}, spanError(span, err, "invalid_description")
	}

	if err := s.ensureUniqueDescription(ctx, description, 0); err != nil {
		return dto.ChallengeResponse{}, spanError(span, err, "duplicate_description")
	}

	challenge := models.Challenge{Description: description}
	if err := s.challenges.Create(ctx, &challenge); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			err = ErrChallengeExists
		}
		return dto.ChallengeResponse{}, spanError(span, err, "create_failed")
	}

	span.SetAttributes(attribute.Int64("challenge.id", int64(challenge.ID)))
	s.record(ctx, actor, "challenge.created", models.ActivityEntityChallenge, challenge.ID, map[string]interface{}{
		"description": challenge.Description,
	})
	observability.ChallengeTransitions().WithLabelValues("created").Inc()
	s.logger.Info().Uint("challenge_id", challenge.ID).Msg("challenge created")

	return dto.NewChallengeResponse(challenge), nil
}

func (s *challengeService) List(ctx context.Context, filter string) ([]dto.ChallengeResponse, error) {
	challenges, err := s.challenges.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	if len(challenges) == 0 {
		return nil, ErrChallengeNotFound
	}

	return dto.NewChallengeResponseSlice(challenges), nil
}

func (s *challengeService) Get(ctx context.Context, id uint) (dto.ChallengeResponse, error) {
	challenge, err := s.findChallenge(ctx, s.challenges, id)
	if err != nil {
		return dto.ChallengeResponse{}, err
	}

	return dto.NewChallengeResponse(challenge), nil
}

func (s *challengeService) Update(ctx context.Context, actor ActivityActor, id uint, payload dto.ChallengeRequest) (dto.ChallengeResponse, error) {
	ctx, span := s.tracer.Start(ctx, "challenge.update", trace.WithAttributes(
		attribute.Int64("challenge.id", int64(id)),
		attribute.Int64("challenge.actor_id", int64(actor.ID)),
	))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		return dto.ChallengeResponse{}, spanError(span, err, "validation_failed")
	}

	challenge, err := s.findChallenge(ctx, s.challenges, id)
	if err != nil {
		return dto.ChallengeResponse{}, spanError(span, err, "challenge_lookup_failed")
	}

	description, err := s.text.Clean(payload.Description)
	if err != nil {
		return dto.ChallengeResponse{}, spanError(span, err, "invalid_description")
	}

	if err := s.ensureUniqueDescription(ctx, description, challenge.ID); err != nil {
		return dto.ChallengeResponse{}, spanError(span, err, "duplicate_description")
	}

	previous := challenge.Description
	challenge.Description = description
	if err := s.challenges.Update(ctx, &challenge); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			err = ErrChallengeExists
		}
		return dto.ChallengeResponse{}, spanError(span, err, "update_failed")
	}

	s.record(ctx, actor, "challenge.updated", models.ActivityEntityChallenge, challenge.ID, map[string]interface{}{
		"previous_description": previous,
		"description":          challenge.Description,
	})
	observability.ChallengeTransitions().WithLabelValues("updated").Inc()
	s.logger.Info().Uint("challenge_id", challenge.ID).Msg("challenge updated")

	return dto.NewChallengeResponse(challenge), nil
}

func (s *challengeService) Delete(ctx context.Context, actor ActivityActor, id uint) error {
	ctx, span := s.tracer.Start(ctx, "challenge.delete", trace.WithAttributes(attribute.Int64("challenge.id", int64(id))))
	defer span.End()

	if err := s.challenges.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = ErrChallengeNotFound
		}
		return spanError(span, err, "delete_failed")
	}

	s.record(ctx, actor, "challenge.deleted", models.ActivityEntityChallenge, id, nil)
	observability.ChallengeTransitions().WithLabelValues("deleted").Inc()
	s.logger.Info().Uint("challenge_id", id).Msg("challenge soft-deleted")

	return nil
}

// Assign creates the assignment inside one transaction so the existence check, the duplicate
// check and the insert see the same snapshot. The unique (challenge, student) index settles any
// race that still slips through.
func (s *challengeService) Assign(ctx context.Context, teacher ActivityActor, payload dto.AssignChallengeRequest) (dto.StudentChallengeResponse, error) {
	ctx, span := s.tracer.Start(ctx, "challenge.assign", trace.WithAttributes(
		attribute.Int64("challenge.id", int64(payload.ChallengeID)),
		attribute.Int64("challenge.student_id", int64(payload.StudentID)),
		attribute.Int64("challenge.reviewer_id", int64(teacher.ID)),
	))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		return dto.StudentChallengeResponse{}, spanError(span, err, "validation_failed")
	}

	student, err := s.users.GetByID(ctx, payload.StudentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = ErrStudentNotFound
		}
		return dto.StudentChallengeResponse{}, spanError(span, err, "student_lookup_failed")
	}
	if student.Role != models.RoleStudent {
		return dto.StudentChallengeResponse{}, spanError(span, ErrStudentNotFound, "assignee_not_student")
	}

	item := models.StudentChallenge{
		ChallengeID: payload.ChallengeID,
		StudentID:   student.ID,
		ReviewerID:  teacher.ID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.findChallenge(ctx, s.challenges.WithTx(tx), payload.ChallengeID); err != nil {
			return err
		}

		assignments := s.assignments.WithTx(tx)
		exists, err := assignments.Exists(ctx, payload.ChallengeID, student.ID)
		if err != nil {
			return err
		}
		if exists {
			return ErrChallengeAlreadyAssigned
		}

		return assignments.Create(ctx, &item)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			err = ErrChallengeAlreadyAssigned
		}
		return dto.StudentChallengeResponse{}, spanError(span, err, "assign_failed")
	}

	created, err := s.assignments.GetByID(ctx, item.ID)
	if err != nil {
		return dto.StudentChallengeResponse{}, spanError(span, err, "reload_failed")
	}

	s.record(ctx, teacher, "challenge.assigned", models.ActivityEntityStudentChallenge, created.ID, map[string]interface{}{
		"challenge_id": created.ChallengeID,
		"student_id":   created.StudentID,
	})
	s.publish(ctx, EventChallengeAssigned, created)
	observability.ChallengeTransitions().WithLabelValues("assigned").Inc()
	s.logger.Info().
		Uint("student_challenge_id", created.ID).
		Uint("challenge_id", created.ChallengeID).
		Uint("student_id", created.StudentID).
		Msg("challenge assigned")

	return dto.NewStudentChallengeResponse(created), nil
}

func (s *challengeService) ListForReviewer(ctx context.Context, teacherID uint, status string) ([]dto.StudentChallengeResponse, error) {
	return s.listAssignments(ctx, repository.StudentChallengeFilter{ReviewerID: &teacherID}, status)
}

func (s *challengeService) ListForStudent(ctx context.Context, studentID uint, status string) ([]dto.StudentChallengeResponse, error) {
	return s.listAssignments(ctx, repository.StudentChallengeFilter{StudentID: &studentID}, status)
}

func (s *challengeService) listAssignments(ctx context.Context, filter repository.StudentChallengeFilter, status string) ([]dto.StudentChallengeResponse, error) {
	parsed, err := models.ParseChallengeStatus(status)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, strings.TrimSpace(status))
	}
	filter.Status = parsed

	items, err := s.assignments.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return dto.NewStudentChallengeResponseSlice(items), nil
}

func (s *challengeService) Solve(ctx context.Context, student ActivityActor, payload dto.SolveChallengeRequest) (dto.StudentChallengeResponse, error) {
	ctx, span := s.tracer.Start(ctx, "challenge.solve", trace.WithAttributes(
		attribute.Int64("challenge.student_challenge_id", int64(payload.StudentChallengeID)),
		attribute.Int64("challenge.student_id", int64(student.ID)),
	))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		return dto.StudentChallengeResponse{}, spanError(span, err, "validation_failed")
	}
	if strings.TrimSpace(payload.Solution) == "" {
		return dto.StudentChallengeResponse{}, spanError(span, ErrEmptyContent, "empty_solution")
	}

	item, err := s.assignments.GetByID(ctx, payload.StudentChallengeID)
	if err != nil || item.StudentID != student.ID {
		if err == nil || errors.Is(err, gorm.ErrRecordNotFound) {
			err = ErrStudentChallengeNotFound
		}
		return dto.StudentChallengeResponse{}, spanError(span, err, "assignment_lookup_failed")
	}

	if item.IsDone {
		return dto.StudentChallengeResponse{}, spanError(span, ErrChallengeAlreadySolved, "already_solved")
	}

	solved, err := s.assignments.MarkSolved(ctx, item.ID, student.ID, payload.Solution, s.now())
	if err != nil {
		return dto.StudentChallengeResponse{}, spanError(span, err, "solve_failed")
	}
	if !solved {
		return dto.StudentChallengeResponse{}, spanError(span, ErrChallengeAlreadySolved, "already_solved")
	}

	updated, err := s.assignments.GetByID(ctx, item.ID)
	if err != nil {
		return dto.StudentChallengeResponse{}, spanError(span, err, "reload_failed")
	}

	s.record(ctx, student, "challenge.solved", models.ActivityEntityStudentChallenge, updated.ID, map[string]interface{}{
		"challenge_id": updated.ChallengeID,
		"solution":     updated.Solution,
	})
	s.publish(ctx, EventChallengeSolved, updated)
	observability.ChallengeTransitions().WithLabelValues("solved").Inc()
	s.logger.Info().Uint("student_challenge_id", updated.ID).Msg("challenge solved")

	return dto.NewStudentChallengeResponse(updated), nil
}

func (s *challengeService) Review(ctx context.Context, teacher ActivityActor, payload dto.ReviewChallengeRequest) (dto.StudentChallengeResponse, error) {
	ctx, span := s.tracer.Start(ctx, "challenge.review", trace.WithAttributes(
		attribute.Int64("challenge.student_challenge_id", int64(payload.StudentChallengeID)),
		attribute.Int64("challenge.reviewer_id", int64(teacher.ID)),
	))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		return dto.StudentChallengeResponse{}, spanError(span, err, "validation_failed")
	}

	item, err := s.assignments.GetByID(ctx, payload.StudentChallengeID)
	if err != nil || item.ReviewerID != teacher.ID {
		if err == nil || errors.Is(err, gorm.ErrRecordNotFound) {
			err = ErrStudentChallengeNotFound
		}
		return dto.StudentChallengeResponse{}, spanError(span, err, "assignment_lookup_failed")
	}

	if !item.IsDone {
		return dto.StudentChallengeResponse{}, spanError(span, ErrChallengeNotSolved, "not_solved")
	}
	if item.IsReviewed {
		return dto.StudentChallengeResponse{}, spanError(span, ErrChallengeAlreadyReviewed, "already_reviewed")
	}

	comment, err := s.text.Clean(payload.Comment)
	if err != nil {
		return dto.StudentChallengeResponse{}, spanError(span, err, "invalid_comment")
	}

	reviewed, err := s.assignments.MarkReviewed(ctx, item.ID, teacher.ID, *payload.Grade, comment, s.now())
	if err != nil {
		return dto.StudentChallengeResponse{}, spanError(span, err, "review_failed")
	}
	if !reviewed {
		return dto.StudentChallengeResponse{}, spanError(span, ErrChallengeAlreadyReviewed, "already_reviewed")
	}

	updated, err := s.assignments.GetByID(ctx, item.ID)
	if err != nil {
		return dto.StudentChallengeResponse{}, spanError(span, err, "reload_failed")
	}

	span.SetAttributes(attribute.Float64("challenge.grade", *payload.Grade))
	s.record(ctx, teacher, "challenge.reviewed", models.ActivityEntityStudentChallenge, updated.ID, map[string]interface{}{
		"challenge_id": updated.ChallengeID,
		"student_id":   updated.StudentID,
		"grade":        *payload.Grade,
	})
	s.publish(ctx, EventChallengeReviewed, updated)
	observability.ChallengeTransitions().WithLabelValues("reviewed").Inc()
	s.logger.Info().Uint("student_challenge_id", updated.ID).Float64("grade", *payload.Grade).Msg("challenge reviewed")

	return dto.NewStudentChallengeResponse(updated), nil
}

func (s *challengeService) findChallenge(ctx context.Context, repo repository.ChallengeRepository, id uint) (models.Challenge, error) {
	challenge, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Challenge{}, ErrChallengeNotFound
		}
		return models.Challenge{}, err
	}

	return challenge, nil
}

func (s *challengeService) ensureUniqueDescription(ctx context.Context, description string, excludeID uint) error {
	count, err := s.challenges.CountByDescription(ctx, description, excludeID)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrChallengeExists
	}
	return nil
}

func (s *challengeService) record(ctx context.Context, actor ActivityActor, action, entityType string, entityID uint, metadata map[string]interface{}) {
	if s.activity == nil {
		return
	}

	id := entityID
	if _, err := s.activity.Record(ctx, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     action,
		EntityType: entityType,
		EntityID:   &id,
		Metadata:   metadata,
	}); err != nil {
		s.logger.Warn().Err(err).Str("action", action).Msg("failed to record activity")
	}
}

func (s *challengeService) publish(ctx context.Context, eventType string, item models.StudentChallenge) {
	if s.events == nil {
		return
	}

	event := ChallengeEvent{
		Type:               eventType,
		StudentChallengeID: item.ID,
		ChallengeID:        item.ChallengeID,
		StudentID:          item.StudentID,
		ReviewerID:         item.ReviewerID,
		OccurredAt:         s.now().UTC(),
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn().Err(err).Str("type", eventType).Msg("failed to publish challenge event")
	}
}

func spanError(span trace.Span, err error, reason string) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, reason)
	return err
}
