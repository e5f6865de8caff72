package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	apperrors "github.com/SAP-F-2025/survey-service/internal/errors"
	"github.com/SAP-F-2025/survey-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestFormPostgreSQL_LoadFormPolicies(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFormPostgreSQL(db)
	closeAt := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "forms" WHERE "forms"."id" = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "campaign_id", "anonymous_allowed", "close_at", "limit_mode", "limited_n"}).
			AddRow(4, 1, true, closeAt, "LIMITED_N", 10))

	policies, err := repo.LoadFormPolicies(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, uint(4), policies.FormID)
	assert.True(t, policies.AnonymousAllowed)
	assert.Equal(t, models.LimitLimitedN, policies.LimitMode)
	require.NotNil(t, policies.LimitedN)
	assert.Equal(t, 10, *policies.LimitedN)
	assert.Nil(t, policies.OpenAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFormPostgreSQL_LoadFormPoliciesNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFormPostgreSQL(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "forms"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.LoadFormPolicies(context.Background(), 99)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFormPostgreSQL_BuildQuestionSnapshotsUnknownForm(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFormPostgreSQL(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "forms" WHERE id = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, err := repo.BuildQuestionSnapshots(context.Background(), 3)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCampaignPostgreSQL_ListFormIDs(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCampaignPostgreSQL(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "id" FROM "forms" WHERE campaign_id = $1 ORDER BY id ASC`)).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2).AddRow(5))

	ids, err := repo.ListFormIDsByCampaign(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, []uint{2, 5}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionPostgreSQL_CountSubmittedByForm(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSubmissionPostgreSQL(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "submissions" WHERE form_id = $1 AND status = $2`)).
		WithArgs(3, "SUBMITTED").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	count, err := repo.CountSubmittedByForm(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionPostgreSQL_ExistsSubmittedByRespondent(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSubmissionPostgreSQL(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "submissions" WHERE (form_id = $1 AND status = $2) AND respondent_email = $3`)).
		WithArgs(3, "SUBMITTED", "a@b.io").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	exists, err := repo.ExistsSubmittedByRespondent(context.Background(), 3, models.RespondentEmail, "a@b.io")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = repo.ExistsSubmittedByRespondent(context.Background(), 3, models.RespondentUser, "abc")
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)

	exists, err = repo.ExistsSubmittedByRespondent(context.Background(), 3, models.RespondentAnonymous, "")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionPostgreSQL_GetByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSubmissionPostgreSQL(db)
	created := time.Date(2025, 4, 2, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "submissions" WHERE "submissions"."id" = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "form_id", "respondent_type", "respondent_code", "source_ip", "status", "created_at", "updated_at"}).
			AddRow(11, 3, "CODE", "X-1", "10.1.1.1", "DRAFT", created, created))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "submission_answers" WHERE "submission_answers"."submission_id" = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "submission_id", "question_id", "kind", "payload"}).
			AddRow(1, 11, 5, "CHOICE", []byte(`{"selected_option_ids":[7,8]}`)).
			AddRow(2, 11, 6, "MATCHING", []byte(`{"pairs":[{"left_id":1,"right_id":10}]}`)))

	sub, err := repo.GetByID(context.Background(), 11)
	require.NoError(t, err)
	assert.Equal(t, uint(11), sub.ID())
	assert.Equal(t, "X-1", sub.Respondent().Code())
	assert.Equal(t, models.SubmissionDraft, sub.Status())

	a, ok := sub.FindAnswer(5)
	require.True(t, ok)
	assert.Equal(t, []uint{7, 8}, a.(*models.ChoiceAnswer).SelectedOptionIDs())

	m, ok := sub.FindAnswer(6)
	require.True(t, ok)
	assert.Equal(t, []models.MatchingPair{{LeftID: 1, RightID: 10}}, m.(*models.MatchingAnswer).Pairs())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func submittedSubmission(t *testing.T, id uint, r models.Respondent) *models.Submission {
	t.Helper()
	created := time.Date(2025, 4, 2, 8, 0, 0, 0, time.UTC)
	sub := models.RehydrateSubmission(models.SubmissionState{
		ID: id, FormID: 3, Respondent: r, Status: models.SubmissionDraft,
		CreatedAt: created, UpdatedAt: created,
	})
	require.NoError(t, sub.MarkSubmitted(created.Add(time.Hour)))
	return sub
}

// expectDraftWrite covers the guarded row update and the answer rewrite of saveTx.
func expectDraftWrite(mock sqlmock.Sqlmock, id uint) {
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "submissions" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "submission_answers" WHERE submission_id = $1`)).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))
}

func expectSlotClaim(mock sqlmock.Sqlmock, alreadySubmitted int, granted bool) {
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "submissions" WHERE form_id = $1 AND status = $2 AND id <> $3`)).
		WithArgs(3, "SUBMITTED", 21).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(alreadySubmitted))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "form_response_counters"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	affected := int64(0)
	if granted {
		affected = 1
	}
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "form_response_counters" SET`)).
		WillReturnResult(sqlmock.NewResult(0, affected))
}

func TestSubmissionPostgreSQL_SaveSubmittedDuplicateRespondent(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSubmissionPostgreSQL(db)

	r, err := models.EmailRespondent("a@b.io")
	require.NoError(t, err)
	sub := submittedSubmission(t, 21, r)

	mock.ExpectBegin()
	expectDraftWrite(mock, 21)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "respondent_claims"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err = repo.SaveSubmitted(context.Background(), sub, models.SubmitGuard{OnePerRespondent: true})
	var cc *apperrors.CommitConflictError
	require.ErrorAs(t, err, &cc)
	assert.Equal(t, apperrors.RuleDuplicateRespondent, cc.Rule)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionPostgreSQL_SaveSubmittedLimitSlot(t *testing.T) {
	limit := 3

	t.Run("slot granted", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewSubmissionPostgreSQL(db)
		sub := submittedSubmission(t, 21, models.AnonymousRespondent())

		mock.ExpectBegin()
		expectDraftWrite(mock, 21)
		expectSlotClaim(mock, 2, true)
		mock.ExpectCommit()

		saved, err := repo.SaveSubmitted(context.Background(), sub, models.SubmitGuard{Limit: &limit})
		require.NoError(t, err)
		assert.True(t, saved.IsSubmitted())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("slot denied", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewSubmissionPostgreSQL(db)
		sub := submittedSubmission(t, 21, models.AnonymousRespondent())

		mock.ExpectBegin()
		expectDraftWrite(mock, 21)
		expectSlotClaim(mock, 3, false)
		mock.ExpectRollback()

		_, err := repo.SaveSubmitted(context.Background(), sub, models.SubmitGuard{Limit: &limit})
		var cc *apperrors.CommitConflictError
		require.ErrorAs(t, err, &cc)
		assert.Equal(t, apperrors.RuleLimitReached, cc.Rule)
		assert.ErrorIs(t, err, apperrors.ErrCommitConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSubmissionPostgreSQL_SaveKeepsSubmittedRows(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSubmissionPostgreSQL(db)

	stale := models.RehydrateSubmission(models.SubmissionState{
		ID: 21, FormID: 3, Respondent: models.AnonymousRespondent(), Status: models.SubmissionDraft,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	})
	require.NoError(t, stale.AddOrReplaceAnswer(models.NewTextAnswer(1, nil, "late"), time.Now()))

	// The row was submitted by another request, so the guarded update matches nothing
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "submissions" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "submissions" WHERE id = $1`)).
		WithArgs(21).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	_, err := repo.Save(context.Background(), stale)
	assert.ErrorIs(t, err, apperrors.ErrEditNotAllowed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionPostgreSQL_SaveUnknownRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSubmissionPostgreSQL(db)
	sub := submittedSubmission(t, 40, models.AnonymousRespondent())

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "submissions" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "submissions" WHERE id = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectRollback()

	_, err := repo.SaveSubmitted(context.Background(), sub, models.SubmitGuard{})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionPostgreSQL_Delete(t *testing.T) {
	columns := []string{"id", "form_id", "respondent_type", "status"}

	t.Run("submitted row releases its slot", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewSubmissionPostgreSQL(db)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "submissions" WHERE "submissions"."id" = $1`)).
			WillReturnRows(sqlmock.NewRows(columns).AddRow(7, 3, "ANONYMOUS", "SUBMITTED"))
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "submission_answers" WHERE submission_id = $1`)).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "respondent_claims" WHERE submission_id = $1`)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`UPDATE "form_response_counters" SET .*submitted - 1`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "submissions" WHERE "submissions"."id" = $1`)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.Delete(context.Background(), 7))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("draft row leaves the counter alone", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewSubmissionPostgreSQL(db)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "submissions" WHERE "submissions"."id" = $1`)).
			WillReturnRows(sqlmock.NewRows(columns).AddRow(8, 3, "ANONYMOUS", "DRAFT"))
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "submission_answers"`)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "respondent_claims"`)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "submissions"`)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.Delete(context.Background(), 8))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown row", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewSubmissionPostgreSQL(db)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "submissions"`)).
			WillReturnRows(sqlmock.NewRows(columns))
		mock.ExpectRollback()

		assert.ErrorIs(t, repo.Delete(context.Background(), 9), apperrors.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMapperRoundTripKeepsAnswerKinds(t *testing.T) {
	uid := uint(9)
	r, err := models.RespondentFromSpec(models.RespondentSpec{Type: models.RespondentUser, UserID: &uid})
	require.NoError(t, err)
	sub, err := models.NewSubmission(2, r, time.Now())
	require.NoError(t, err)
	require.NoError(t, sub.AddOrReplaceAnswer(models.NewTrueFalseAnswer(1, models.IntPtr(3), true), time.Now()))
	require.NoError(t, sub.AddOrReplaceAnswer(models.NewTextAnswer(2, nil, "hello"), time.Now()))

	rec, err := toSubmissionRecord(sub)
	require.NoError(t, err)
	require.NotNil(t, rec.RespondentUserID)
	assert.Equal(t, uint(9), *rec.RespondentUserID)
	require.Len(t, rec.Answers, 2)

	back, err := toSubmission(rec)
	require.NoError(t, err)
	tf, _ := back.FindAnswer(1)
	assert.True(t, tf.(*models.TrueFalseAnswer).Value())
	assert.Equal(t, 3, *tf.QuestionVersion())
	txt, _ := back.FindAnswer(2)
	assert.Equal(t, "hello", txt.(*models.TextAnswer).Text())
}
