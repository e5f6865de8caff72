package memory

import (
	"context"
	"sort"
	"sync"

	apperrors "github.com/SAP-F-2025/survey-service/internal/errors"
	"github.com/SAP-F-2025/survey-service/internal/models"
	"github.com/SAP-F-2025/survey-service/internal/repositories"
)

type formEntry struct {
	campaignID uint
	policies   models.FormPolicies
	snapshots  []*models.QuestionSnapshot
}

// Store is an in-process implementation of every repository port.
// Submissions are cloned on the way in and out so callers never share state.
type Store struct {
	mu          sync.RWMutex
	nextID      uint
	forms       map[uint]formEntry
	submissions map[uint]*models.Submission
}

func NewStore() *Store {
	return &Store{
		forms:       make(map[uint]formEntry),
		submissions: make(map[uint]*models.Submission),
	}
}

func (s *Store) Form() repositories.FormRepository             { return s }
func (s *Store) Submission() repositories.SubmissionRepository { return s }
func (s *Store) Campaign() repositories.CampaignRepository     { return s }

// PutForm registers or replaces a form definition.
func (s *Store) PutForm(campaignID uint, policies models.FormPolicies, snapshots ...*models.QuestionSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if policies.LimitMode == "" {
		policies.LimitMode = models.LimitUnlimited
	}
	s.forms[policies.FormID] = formEntry{
		campaignID: campaignID,
		policies:   policies,
		snapshots:  append([]*models.QuestionSnapshot(nil), snapshots...),
	}
}

func (s *Store) LoadFormPolicies(_ context.Context, formID uint) (*models.FormPolicies, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.forms[formID]
	if !ok {
		return nil, apperrors.NotFoundf("form %d", formID)
	}
	p := entry.policies
	return &p, nil
}

func (s *Store) BuildQuestionSnapshots(_ context.Context, formID uint) (*models.SnapshotSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.forms[formID]
	if !ok {
		return nil, apperrors.NotFoundf("form %d", formID)
	}
	return models.NewSnapshotSet(entry.snapshots...), nil
}

func (s *Store) ListFormIDsByCampaign(_ context.Context, campaignID uint) ([]uint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []uint
	for id, entry := range s.forms {
		if entry.campaignID == campaignID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// Save writes a draft. A stored submission that is already SUBMITTED is never overwritten.
func (s *Store) Save(_ context.Context, submission *models.Submission) (*models.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submittedLocked(submission.ID()) {
		return nil, apperrors.ErrEditNotAllowed
	}
	return s.saveLocked(submission), nil
}

func (s *Store) SaveSubmitted(_ context.Context, submission *models.Submission, guard models.SubmitGuard) (*models.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.submittedLocked(submission.ID()) {
		return nil, apperrors.ErrAlreadySubmitted
	}
	if guard.OnePerRespondent {
		if kind, value, ok := submission.Respondent().Identity(); ok {
			if s.existsSubmittedLocked(submission.FormID(), kind, value, submission.ID()) {
				return nil, &apperrors.CommitConflictError{Rule: apperrors.RuleDuplicateRespondent}
			}
		}
	}
	if guard.Limit != nil && s.countSubmittedLocked(submission.FormID(), submission.ID()) >= *guard.Limit {
		return nil, &apperrors.CommitConflictError{Rule: apperrors.RuleLimitReached}
	}

	return s.saveLocked(submission), nil
}

func (s *Store) GetByID(_ context.Context, id uint) (*models.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.submissions[id]
	if !ok {
		return nil, apperrors.NotFoundf("submission %d", id)
	}
	return sub.Clone(), nil
}

func (s *Store) Delete(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.submissions[id]; !ok {
		return apperrors.NotFoundf("submission %d", id)
	}
	delete(s.submissions, id)
	return nil
}

func (s *Store) List(_ context.Context, filters repositories.SubmissionFilters) ([]*models.Submission, int64, error) {
	filters = filters.Normalize()

	s.mu.RLock()
	var matched []*models.Submission
	for _, sub := range s.submissions {
		if filters.FormID != 0 && sub.FormID() != filters.FormID {
			continue
		}
		if filters.Status != nil && sub.Status() != *filters.Status {
			continue
		}
		matched = append(matched, sub.Clone())
	}
	s.mu.RUnlock()

	sortSubmissions(matched, filters.SortBy, filters.SortOrder == "asc")

	total := int64(len(matched))
	if filters.Offset >= len(matched) {
		return []*models.Submission{}, total, nil
	}
	end := filters.Offset + filters.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[filters.Offset:end], total, nil
}

func (s *Store) ListByForm(_ context.Context, formID uint) ([]*models.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Submission
	for _, sub := range s.submissions {
		if sub.FormID() == formID {
			out = append(out, sub.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out, nil
}

func (s *Store) ExistsSubmittedByRespondent(_ context.Context, formID uint, kind models.RespondentType, value string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.existsSubmittedLocked(formID, kind, value, 0), nil
}

func (s *Store) CountSubmittedByForm(_ context.Context, formID uint) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countSubmittedLocked(formID, 0), nil
}

func (s *Store) saveLocked(submission *models.Submission) *models.Submission {
	if submission.ID() == 0 {
		s.nextID++
		submission.AssignID(s.nextID)
	}
	s.submissions[submission.ID()] = submission.Clone()
	return submission
}

func (s *Store) submittedLocked(id uint) bool {
	stored, ok := s.submissions[id]
	return ok && stored.IsSubmitted()
}

func (s *Store) existsSubmittedLocked(formID uint, kind models.RespondentType, value string, exclude uint) bool {
	for id, sub := range s.submissions {
		if id == exclude || sub.FormID() != formID || !sub.IsSubmitted() {
			continue
		}
		if k, v, ok := sub.Respondent().Identity(); ok && k == kind && v == value {
			return true
		}
	}
	return false
}

func (s *Store) countSubmittedLocked(formID uint, exclude uint) int {
	n := 0
	for id, sub := range s.submissions {
		if id != exclude && sub.FormID() == formID && sub.IsSubmitted() {
			n++
		}
	}
	return n
}

func sortSubmissions(subs []*models.Submission, by string, asc bool) {
	key := func(sub *models.Submission) int64 {
		switch by {
		case "updated_at":
			return sub.UpdatedAt().UnixNano()
		case "submitted_at":
			if t := sub.SubmittedAt(); t != nil {
				return t.UnixNano()
			}
			return 0
		default:
			return sub.CreatedAt().UnixNano()
		}
	}
	sort.SliceStable(subs, func(i, j int) bool {
		ki, kj := key(subs[i]), key(subs[j])
		if ki == kj {
			if asc {
				return subs[i].ID() < subs[j].ID()
			}
			return subs[i].ID() > subs[j].ID()
		}
		if asc {
			return ki < kj
		}
		return ki > kj
	})
}
