package validator

import (
	"reflect"
	"strings"

	"github.com/SAP-F-2025/survey-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// Validator combines request struct validation with answer validation
type Validator struct {
	structValidator     *validator.Validate
	submissionValidator *SubmissionValidator
}

// New creates a new centralized validator instance
func New() *Validator {
	structValidator := validator.New()

	registerCustomValidators(structValidator)

	return &Validator{
		structValidator:     structValidator,
		submissionValidator: NewSubmissionValidator(),
	}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// Validate validates a request and converts tag failures to ValidationErrors
func (v *Validator) Validate(s interface{}) error {
	if err := v.ValidateStruct(s); err != nil {
		if errs := ToValidationErrors(err); len(errs) > 0 {
			return errs
		}
		return err
	}
	return nil
}

// Submission returns the answer validator used at submit time
func (v *Validator) Submission() *SubmissionValidator {
	return v.submissionValidator
}

func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("respondent_type", validateRespondentType)
	validate.RegisterValidation("submission_status", validateSubmissionStatus)
	validate.RegisterValidation("unique_ids", validateUniqueIDs)

	// Report json names in errors
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateRespondentType(fl validator.FieldLevel) bool {
	switch models.RespondentType(fl.Field().String()) {
	case models.RespondentAnonymous, models.RespondentUser, models.RespondentEmail, models.RespondentCode:
		return true
	}
	return false
}

func validateSubmissionStatus(fl validator.FieldLevel) bool {
	switch models.SubmissionStatus(fl.Field().String()) {
	case models.SubmissionDraft, models.SubmissionSubmitted:
		return true
	}
	return false
}

func validateUniqueIDs(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.Slice {
		return false
	}
	seen := make(map[uint64]struct{}, field.Len())
	for i := 0; i < field.Len(); i++ {
		id := field.Index(i).Uint()
		if _, ok := seen[id]; ok {
			return false
		}
		seen[id] = struct{}{}
	}
	return true
}
