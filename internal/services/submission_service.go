package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	apperrors "github.com/SAP-F-2025/survey-service/internal/errors"
	"github.com/SAP-F-2025/survey-service/internal/events"
	"github.com/SAP-F-2025/survey-service/internal/models"
	"github.com/SAP-F-2025/survey-service/internal/repositories"
	"github.com/SAP-F-2025/survey-service/internal/validator"
)

type submissionService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
	opLogger  *ServiceLogger
	validator *validator.Validator
	clock     Clock
}

// NewSubmissionService wires the lifecycle use cases. publisher may be nil,
// in which case no domain events are emitted.
func NewSubmissionService(
	repo repositories.Repository,
	publisher events.EventPublisher,
	logger *slog.Logger,
	validator *validator.Validator,
	clock Clock,
) SubmissionService {
	if clock == nil {
		clock = SystemClock
	}
	return &submissionService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		opLogger:  NewServiceLogger(logger, "submission"),
		validator: validator,
		clock:     clock,
	}
}

// ===== LIFECYCLE =====

func (s *submissionService) Start(ctx context.Context, req *StartSubmissionRequest) (sub *models.Submission, err error) {
	start := time.Now()
	defer func() {
		var id uint
		if sub != nil {
			id = sub.ID()
		}
		s.opLogger.LogOperation(ctx, "start_submission", id, "submission", time.Since(start), err)
	}()

	s.logger.Info("Starting submission",
		"form_id", req.FormID,
		"respondent_type", req.Respondent.Type)

	// Form, window, anonymity, respondent payload, then limits. The first failure wins.
	policies, err := s.loadPolicies(ctx, req.FormID)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	if err := policies.CheckWindow(now); err != nil {
		return nil, err
	}

	if req.Respondent.Type == models.RespondentAnonymous && !policies.AnonymousAllowed {
		return nil, apperrors.NewPolicyViolation(apperrors.RuleAnonymousNotAllowed,
			"this form does not accept anonymous responses")
	}

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	respondent, err := models.RespondentFromSpec(req.Respondent)
	if err != nil {
		return nil, err
	}

	if err := s.checkStartLimit(ctx, policies, respondent); err != nil {
		return nil, err
	}

	sub, err = models.NewSubmission(req.FormID, respondent, now)
	if err != nil {
		return nil, err
	}
	sub.SetSourceIP(req.SourceIP)

	sub, err = s.repo.Submission().Save(ctx, sub)
	if err != nil {
		return nil, fmt.Errorf("failed to save submission: %w", err)
	}

	s.publish(ctx, events.NewSubmissionStartedEvent(sub))

	return sub, nil
}

func (s *submissionService) Submit(ctx context.Context, submissionID uint) (sub *models.Submission, err error) {
	start := time.Now()
	defer func() {
		s.opLogger.LogOperation(ctx, "submit_submission", submissionID, "submission", time.Since(start), err)
	}()

	sub, err = s.load(ctx, submissionID)
	if err != nil {
		return nil, err
	}

	policies, err := s.loadPolicies(ctx, sub.FormID())
	if err != nil {
		return nil, err
	}

	// Policies may have changed since the draft was started
	now := s.clock()
	if err := policies.CheckWindow(now); err != nil {
		return nil, err
	}

	snapshots, err := s.repo.Form().BuildQuestionSnapshots(ctx, sub.FormID())
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrFormNotFound
		}
		return nil, fmt.Errorf("failed to build question snapshots: %w", err)
	}

	if answerErrs := s.validator.Submission().Validate(sub, snapshots); len(answerErrs) > 0 {
		failed := &ValidationFailedError{Errors: answerErrs}
		s.opLogger.LogAnswerErrors(ctx, submissionID, *failed)
		return nil, failed
	}

	limit, limited := policies.SubmitLimit()
	if limited {
		count, err := s.repo.Submission().CountSubmittedByForm(ctx, sub.FormID())
		if err != nil {
			return nil, fmt.Errorf("failed to count submissions: %w", err)
		}
		if count >= limit {
			s.publish(ctx, events.NewResponseLimitReachedEvent(sub.FormID(), limit, count))
			return nil, limitReached(limit)
		}
	}

	if err := sub.MarkSubmitted(now); err != nil {
		return nil, err
	}

	saved, err := s.repo.Submission().SaveSubmitted(ctx, sub, policies.Guard())
	if err != nil {
		if repositories.IsCommitConflict(err) {
			rule := conflictRule(err)
			s.logger.Warn("Submit lost a concurrent policy race",
				"submission_id", submissionID,
				"form_id", sub.FormID(),
				"rule", rule)
			return nil, commitConflictViolation(rule, policies)
		}
		return nil, fmt.Errorf("failed to save submission: %w", err)
	}

	s.publish(ctx, events.NewSubmissionSubmittedEvent(saved))

	if limited {
		count, err := s.repo.Submission().CountSubmittedByForm(ctx, saved.FormID())
		if err != nil {
			s.logger.Warn("Failed to recount submissions", "form_id", saved.FormID(), "error", err)
		} else if count == limit {
			s.publish(ctx, events.NewResponseLimitReachedEvent(saved.FormID(), limit, count))
		}
	}

	return saved, nil
}

// ===== DRAFT EDITING =====

func (s *submissionService) SaveChoiceAnswer(ctx context.Context, submissionID uint, req *SaveChoiceAnswerRequest) (*models.Submission, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return s.saveAnswer(ctx, submissionID, models.NewChoiceAnswer(req.QuestionID, req.QuestionVersion, req.SelectedOptionIDs))
}

func (s *submissionService) SaveTrueFalseAnswer(ctx context.Context, submissionID uint, req *SaveTrueFalseAnswerRequest) (*models.Submission, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return s.saveAnswer(ctx, submissionID, models.NewTrueFalseAnswer(req.QuestionID, req.QuestionVersion, *req.Value))
}

func (s *submissionService) SaveTextAnswer(ctx context.Context, submissionID uint, req *SaveTextAnswerRequest) (*models.Submission, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return s.saveAnswer(ctx, submissionID, models.NewTextAnswer(req.QuestionID, req.QuestionVersion, req.Text))
}

func (s *submissionService) SaveMatchingAnswer(ctx context.Context, submissionID uint, req *SaveMatchingAnswerRequest) (*models.Submission, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return s.saveAnswer(ctx, submissionID, models.NewMatchingAnswer(req.QuestionID, req.QuestionVersion, req.Pairs))
}

func (s *submissionService) RemoveAnswer(ctx context.Context, submissionID, questionID uint) (*models.Submission, error) {
	sub, err := s.load(ctx, submissionID)
	if err != nil {
		return nil, err
	}

	if err := sub.RemoveAnswer(questionID, s.clock()); err != nil {
		return nil, err
	}

	saved, err := s.repo.Submission().Save(ctx, sub)
	if err != nil {
		return nil, fmt.Errorf("failed to save submission: %w", err)
	}

	s.logger.Debug("Answer removed", "submission_id", submissionID, "question_id", questionID)
	return saved, nil
}

// saveAnswer upserts a draft answer. Drafts are not checked against the
// form's questions; that happens on submit.
func (s *submissionService) saveAnswer(ctx context.Context, submissionID uint, answer models.SubmissionAnswer) (*models.Submission, error) {
	sub, err := s.load(ctx, submissionID)
	if err != nil {
		return nil, err
	}

	if err := sub.AddOrReplaceAnswer(answer, s.clock()); err != nil {
		return nil, err
	}

	saved, err := s.repo.Submission().Save(ctx, sub)
	if err != nil {
		return nil, fmt.Errorf("failed to save submission: %w", err)
	}

	s.logger.Debug("Answer saved",
		"submission_id", submissionID,
		"question_id", answer.QuestionID(),
		"kind", answer.Kind())
	return saved, nil
}

// ===== QUERIES =====

func (s *submissionService) GetByID(ctx context.Context, submissionID uint) (*models.Submission, error) {
	return s.load(ctx, submissionID)
}

func (s *submissionService) List(ctx context.Context, filters repositories.SubmissionFilters) ([]*models.Submission, int64, error) {
	if filters.FormID == 0 {
		return nil, 0, apperrors.InvalidArgumentf("form id is required")
	}
	if err := s.validator.Validate(filters); err != nil {
		return nil, 0, fmt.Errorf("validation failed: %w", err)
	}
	if _, err := s.loadPolicies(ctx, filters.FormID); err != nil {
		return nil, 0, err
	}

	subs, total, err := s.repo.Submission().List(ctx, filters.Normalize())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list submissions: %w", err)
	}
	return subs, total, nil
}

func (s *submissionService) Delete(ctx context.Context, submissionID uint) error {
	if err := s.repo.Submission().Delete(ctx, submissionID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrSubmissionNotFound
		}
		return fmt.Errorf("failed to delete submission: %w", err)
	}

	s.logger.Info("Submission deleted", "submission_id", submissionID)
	return nil
}

// ===== HELPERS =====

func (s *submissionService) load(ctx context.Context, submissionID uint) (*models.Submission, error) {
	sub, err := s.repo.Submission().GetByID(ctx, submissionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return sub, nil
}

func (s *submissionService) loadPolicies(ctx context.Context, formID uint) (*models.FormPolicies, error) {
	policies, err := s.repo.Form().LoadFormPolicies(ctx, formID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrFormNotFound
		}
		return nil, fmt.Errorf("failed to load form policies: %w", err)
	}
	return policies, nil
}

// checkStartLimit is the optimistic pre-check. SaveSubmitted enforces the
// same rules again at commit time.
func (s *submissionService) checkStartLimit(ctx context.Context, policies *models.FormPolicies, respondent models.Respondent) error {
	switch policies.LimitMode {
	case models.LimitOnePerRespondent:
		kind, value, ok := respondent.Identity()
		if !ok {
			return nil
		}
		exists, err := s.repo.Submission().ExistsSubmittedByRespondent(ctx, policies.FormID, kind, value)
		if err != nil {
			return fmt.Errorf("failed to check respondent: %w", err)
		}
		if exists {
			return apperrors.NewPolicyViolation(apperrors.RuleDuplicateRespondent,
				"respondent has already submitted this form")
		}
	case models.LimitLimitedN:
		limit, ok := policies.SubmitLimit()
		if !ok {
			s.logger.Warn("LIMITED_N form has no limit configured", "form_id", policies.FormID)
			return nil
		}
		count, err := s.repo.Submission().CountSubmittedByForm(ctx, policies.FormID)
		if err != nil {
			return fmt.Errorf("failed to count submissions: %w", err)
		}
		if count >= limit {
			return limitReached(limit)
		}
	}
	return nil
}

func (s *submissionService) publish(ctx context.Context, event *events.SubmissionEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish event",
			"event_type", event.Type,
			"event_id", event.ID,
			"error", err)
	}
}

func limitReached(limit int) error {
	return apperrors.NewPolicyViolation(apperrors.RuleLimitReached,
		fmt.Sprintf("response limit of %d reached", limit))
}

// conflictRule extracts the rule a store reported; a bare ErrCommitConflict has none.
func conflictRule(err error) string {
	var conflict *apperrors.CommitConflictError
	if errors.As(err, &conflict) {
		return conflict.Rule
	}
	return ""
}

func commitConflictViolation(rule string, policies *models.FormPolicies) error {
	switch rule {
	case apperrors.RuleLimitReached:
		if limit, ok := policies.SubmitLimit(); ok {
			return limitReached(limit)
		}
		return apperrors.NewPolicyViolation(rule, "response limit reached")
	case apperrors.RuleDuplicateRespondent:
		return apperrors.NewPolicyViolation(rule, "respondent has already submitted this form")
	default:
		return apperrors.NewPolicyViolation(rule, "submission conflicts with a concurrent submission")
	}
}
