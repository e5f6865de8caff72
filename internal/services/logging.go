package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ServiceLogger provides structured logging for service layer operations
type ServiceLogger struct {
	logger *slog.Logger
}

func NewServiceLogger(logger *slog.Logger, component string) *ServiceLogger {
	return &ServiceLogger{
		logger: logger.With("service", "survey-service", "component", component),
	}
}

// LogOperation logs the outcome of one use case. Domain rejections are
// logged below error level so they do not page anyone.
func (l *ServiceLogger) LogOperation(ctx context.Context, operation string, resourceID uint, resourceType string, duration time.Duration, err error) {
	level := slog.LevelInfo
	status := "success"

	if err != nil {
		level = slog.LevelError
		status = "error"

		switch {
		case IsValidationFailed(err) || IsValidation(err):
			level, status = slog.LevelWarn, "validation_error"
		case IsPolicyViolation(err):
			level, status = slog.LevelWarn, "policy_violation"
		case IsConflict(err):
			level, status = slog.LevelWarn, "conflict"
		case IsNotFound(err):
			level, status = slog.LevelInfo, "not_found"
		}
	}

	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.Uint64("resource_id", uint64(resourceID)),
		slog.String("resource_type", resourceType),
		slog.String("status", status),
		slog.Duration("duration", duration),
	}

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))

		var pv *PolicyViolationError
		var vf *ValidationFailedError
		if errors.As(err, &pv) {
			attrs = append(attrs, slog.String("policy_rule", pv.Rule))
		} else if errors.As(err, &vf) {
			attrs = append(attrs, slog.Int("answer_errors_count", len(vf.Errors)))
		}
	}

	l.logger.LogAttrs(ctx, level, fmt.Sprintf("%s operation %s", operation, status), attrs...)
}

// LogAnswerErrors logs the first few answer errors of a rejected submit
func (l *ServiceLogger) LogAnswerErrors(ctx context.Context, submissionID uint, errs ValidationFailedError) {
	attrs := []slog.Attr{
		slog.Uint64("submission_id", uint64(submissionID)),
		slog.Int("error_count", len(errs.Errors)),
	}

	for i, e := range errs.Errors {
		if i == 5 {
			break
		}
		attrs = append(attrs, slog.Group(fmt.Sprintf("error_%d", i+1),
			slog.Uint64("question_id", uint64(e.QuestionID)),
			slog.String("code", e.Code),
		))
	}

	l.logger.LogAttrs(ctx, slog.LevelWarn, "Answer validation failed", attrs...)
}
