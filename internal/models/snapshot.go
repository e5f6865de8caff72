package models

import (
	"encoding/json"
	"fmt"

	apperrors "github.com/SAP-F-2025/survey-service/internal/errors"
)

type QuestionKind string

const (
	KindChoice    QuestionKind = "CHOICE"
	KindTrueFalse QuestionKind = "TRUE_FALSE"
	KindText      QuestionKind = "TEXT"
	KindMatching  QuestionKind = "MATCHING"
)

type SelectionMode string

const (
	SelectionSingle SelectionMode = "SINGLE"
	SelectionMulti  SelectionMode = "MULTI"
)

type TextMode string

const (
	TextShort TextMode = "SHORT"
	TextLong  TextMode = "LONG"
)

// QuestionSnapshot is the frozen answerable shape of one question.
// Only the fields relevant to Kind are populated.
type QuestionSnapshot struct {
	questionID uint
	kind       QuestionKind
	required   bool

	selectionMode SelectionMode
	minSelections *int
	maxSelections *int
	optionIDs     []uint
	optionSet     map[uint]struct{}

	textMode  TextMode
	minLength *int
	maxLength *int

	leftIDs  []uint
	rightIDs []uint
	leftSet  map[uint]struct{}
	rightSet map[uint]struct{}
}

func (q *QuestionSnapshot) QuestionID() uint            { return q.questionID }
func (q *QuestionSnapshot) Kind() QuestionKind          { return q.kind }
func (q *QuestionSnapshot) Required() bool              { return q.required }
func (q *QuestionSnapshot) SelectionMode() SelectionMode { return q.selectionMode }
func (q *QuestionSnapshot) MinSelections() *int         { return copyInt(q.minSelections) }
func (q *QuestionSnapshot) MaxSelections() *int         { return copyInt(q.maxSelections) }
func (q *QuestionSnapshot) OptionIDs() []uint           { return append([]uint(nil), q.optionIDs...) }
func (q *QuestionSnapshot) TextMode() TextMode          { return q.textMode }
func (q *QuestionSnapshot) MinLength() *int             { return copyInt(q.minLength) }
func (q *QuestionSnapshot) MaxLength() *int             { return copyInt(q.maxLength) }
func (q *QuestionSnapshot) LeftIDs() []uint             { return append([]uint(nil), q.leftIDs...) }
func (q *QuestionSnapshot) RightIDs() []uint            { return append([]uint(nil), q.rightIDs...) }

func (q *QuestionSnapshot) HasOption(id uint) bool { return contains(q.optionSet, id) }
func (q *QuestionSnapshot) HasLeft(id uint) bool   { return contains(q.leftSet, id) }
func (q *QuestionSnapshot) HasRight(id uint) bool  { return contains(q.rightSet, id) }
func (q *QuestionSnapshot) OptionCount() int       { return len(q.optionIDs) }

// SnapshotBuilder assembles a QuestionSnapshot. Build freezes the result.
type SnapshotBuilder struct {
	s QuestionSnapshot
}

func NewSnapshotBuilder() *SnapshotBuilder {
	return &SnapshotBuilder{}
}

func (b *SnapshotBuilder) QuestionID(id uint) *SnapshotBuilder {
	b.s.questionID = id
	return b
}

func (b *SnapshotBuilder) Kind(kind QuestionKind) *SnapshotBuilder {
	b.s.kind = kind
	return b
}

func (b *SnapshotBuilder) Required(required bool) *SnapshotBuilder {
	b.s.required = required
	return b
}

func (b *SnapshotBuilder) Choice(mode SelectionMode, minSelections, maxSelections *int, optionIDs []uint) *SnapshotBuilder {
	b.s.selectionMode = mode
	b.s.minSelections = copyInt(minSelections)
	b.s.maxSelections = copyInt(maxSelections)
	b.s.optionIDs = orderedSet(optionIDs)
	return b
}

func (b *SnapshotBuilder) Text(mode TextMode, minLength, maxLength *int) *SnapshotBuilder {
	b.s.textMode = mode
	b.s.minLength = copyInt(minLength)
	b.s.maxLength = copyInt(maxLength)
	return b
}

func (b *SnapshotBuilder) Matching(leftIDs, rightIDs []uint) *SnapshotBuilder {
	b.s.leftIDs = orderedSet(leftIDs)
	b.s.rightIDs = orderedSet(rightIDs)
	return b
}

func (b *SnapshotBuilder) Build() (*QuestionSnapshot, error) {
	if b.s.questionID == 0 {
		return nil, apperrors.InvalidArgumentf("snapshot requires a question id")
	}
	switch b.s.kind {
	case KindChoice, KindTrueFalse, KindText, KindMatching:
	default:
		return nil, apperrors.InvalidArgumentf("snapshot %d has unknown kind %q", b.s.questionID, b.s.kind)
	}

	s := b.s
	s.optionSet = toSet(s.optionIDs)
	s.leftSet = toSet(s.leftIDs)
	s.rightSet = toSet(s.rightIDs)
	b.s = QuestionSnapshot{}
	return &s, nil
}

// MustBuild is Build for statically known snapshots. It panics on error.
func (b *SnapshotBuilder) MustBuild() *QuestionSnapshot {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}

// SnapshotSet holds the snapshots of one form in question order.
type SnapshotSet struct {
	order []uint
	byID  map[uint]*QuestionSnapshot
}

// NewSnapshotSet keeps the first position of each question id; a repeated id
// replaces the earlier snapshot.
func NewSnapshotSet(snapshots ...*QuestionSnapshot) *SnapshotSet {
	set := &SnapshotSet{byID: make(map[uint]*QuestionSnapshot, len(snapshots))}
	for _, s := range snapshots {
		if s == nil {
			continue
		}
		if _, ok := set.byID[s.questionID]; !ok {
			set.order = append(set.order, s.questionID)
		}
		set.byID[s.questionID] = s
	}
	return set
}

func (s *SnapshotSet) Get(questionID uint) (*QuestionSnapshot, bool) {
	if s == nil {
		return nil, false
	}
	q, ok := s.byID[questionID]
	return q, ok
}

func (s *SnapshotSet) All() []*QuestionSnapshot {
	if s == nil {
		return nil
	}
	out := make([]*QuestionSnapshot, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

func (s *SnapshotSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// snapshotJSON is the cache representation of a QuestionSnapshot.
type snapshotJSON struct {
	QuestionID    uint          `json:"question_id"`
	Kind          QuestionKind  `json:"kind"`
	Required      bool          `json:"required"`
	SelectionMode SelectionMode `json:"selection_mode,omitempty"`
	MinSelections *int          `json:"min_selections,omitempty"`
	MaxSelections *int          `json:"max_selections,omitempty"`
	OptionIDs     []uint        `json:"option_ids,omitempty"`
	TextMode      TextMode      `json:"text_mode,omitempty"`
	MinLength     *int          `json:"min_length,omitempty"`
	MaxLength     *int          `json:"max_length,omitempty"`
	LeftIDs       []uint        `json:"left_ids,omitempty"`
	RightIDs      []uint        `json:"right_ids,omitempty"`
}

func (q *QuestionSnapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(snapshotJSON{
		QuestionID:    q.questionID,
		Kind:          q.kind,
		Required:      q.required,
		SelectionMode: q.selectionMode,
		MinSelections: q.minSelections,
		MaxSelections: q.maxSelections,
		OptionIDs:     q.optionIDs,
		TextMode:      q.textMode,
		MinLength:     q.minLength,
		MaxLength:     q.maxLength,
		LeftIDs:       q.leftIDs,
		RightIDs:      q.rightIDs,
	})
}

func (q *QuestionSnapshot) UnmarshalJSON(data []byte) error {
	var raw snapshotJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	b := NewSnapshotBuilder().QuestionID(raw.QuestionID).Kind(raw.Kind).Required(raw.Required)
	switch raw.Kind {
	case KindChoice:
		b.Choice(raw.SelectionMode, raw.MinSelections, raw.MaxSelections, raw.OptionIDs)
	case KindText:
		b.Text(raw.TextMode, raw.MinLength, raw.MaxLength)
	case KindMatching:
		b.Matching(raw.LeftIDs, raw.RightIDs)
	}
	built, err := b.Build()
	if err != nil {
		return fmt.Errorf("failed to decode snapshot: %w", err)
	}
	*q = *built
	return nil
}

func (s *SnapshotSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.All())
}

func (s *SnapshotSet) UnmarshalJSON(data []byte) error {
	var list []*QuestionSnapshot
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*s = *NewSnapshotSet(list...)
	return nil
}

func orderedSet(ids []uint) []uint {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func toSet(ids []uint) map[uint]struct{} {
	set := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func contains(set map[uint]struct{}, id uint) bool {
	_, ok := set[id]
	return ok
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// IntPtr is a helper for optional bounds.
func IntPtr(v int) *int {
	return &v
}
