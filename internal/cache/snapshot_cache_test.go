package cache

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/SAP-F-2025/survey-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

func (m *MockCacheService) Get(ctx context.Context, key string, dest interface{}) error {
	args := m.Called(ctx, key, dest)
	if raw, ok := args.Get(1).([]byte); ok && raw != nil {
		if err := json.Unmarshal(raw, dest); err != nil {
			return err
		}
	}
	return args.Error(0)
}

func (m *MockCacheService) DeletePattern(ctx context.Context, pattern string) error {
	return m.Called(ctx, pattern).Error(0)
}

type MockSnapshotSource struct {
	mock.Mock
}

func (m *MockSnapshotSource) BuildQuestionSnapshots(ctx context.Context, formID uint) (*models.SnapshotSet, error) {
	args := m.Called(ctx, formID)
	set, _ := args.Get(0).(*models.SnapshotSet)
	return set, args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleSet() *models.SnapshotSet {
	return models.NewSnapshotSet(
		models.NewSnapshotBuilder().QuestionID(1).Kind(models.KindChoice).
			Choice(models.SelectionSingle, nil, nil, []uint{4, 5}).MustBuild(),
	)
}

func TestSnapshotCache_Hit(t *testing.T) {
	ctx := context.Background()
	cacheSvc := new(MockCacheService)
	source := new(MockSnapshotSource)

	raw, err := json.Marshal(sampleSet())
	require.NoError(t, err)
	cacheSvc.On("Get", ctx, "survey:snapshots:form:8", mock.Anything).Return(nil, raw)

	c := NewSnapshotCache(source, cacheSvc, time.Minute, testLogger())
	set, err := c.BuildQuestionSnapshots(ctx, 8)
	require.NoError(t, err)

	q, ok := set.Get(1)
	require.True(t, ok)
	assert.Equal(t, []uint{4, 5}, q.OptionIDs())
	source.AssertNotCalled(t, "BuildQuestionSnapshots", mock.Anything, mock.Anything)
}

func TestSnapshotCache_MissPopulates(t *testing.T) {
	ctx := context.Background()
	cacheSvc := new(MockCacheService)
	source := new(MockSnapshotSource)
	set := sampleSet()

	cacheSvc.On("Get", ctx, "survey:snapshots:form:8", mock.Anything).Return(ErrCacheMiss, nil)
	source.On("BuildQuestionSnapshots", ctx, uint(8)).Return(set, nil)
	cacheSvc.On("Set", ctx, "survey:snapshots:form:8", set, 5*time.Minute).Return(nil)

	c := NewSnapshotCache(source, cacheSvc, 5*time.Minute, testLogger())
	got, err := c.BuildQuestionSnapshots(ctx, 8)
	require.NoError(t, err)
	assert.Same(t, set, got)
	cacheSvc.AssertExpectations(t)
	source.AssertExpectations(t)
}

func TestSnapshotCache_BrokenCacheFallsThrough(t *testing.T) {
	ctx := context.Background()
	cacheSvc := new(MockCacheService)
	source := new(MockSnapshotSource)
	set := sampleSet()

	cacheSvc.On("Get", ctx, mock.Anything, mock.Anything).Return(errors.New("connection refused"), nil)
	cacheSvc.On("Set", ctx, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("connection refused"))
	source.On("BuildQuestionSnapshots", ctx, uint(2)).Return(set, nil)

	c := NewSnapshotCache(source, cacheSvc, time.Minute, testLogger())
	got, err := c.BuildQuestionSnapshots(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Len())
}

func TestSnapshotCache_SourceErrorIsReturned(t *testing.T) {
	ctx := context.Background()
	cacheSvc := new(MockCacheService)
	source := new(MockSnapshotSource)
	boom := errors.New("db down")

	cacheSvc.On("Get", ctx, mock.Anything, mock.Anything).Return(ErrCacheMiss, nil)
	source.On("BuildQuestionSnapshots", ctx, uint(2)).Return(nil, boom)

	c := NewSnapshotCache(source, cacheSvc, time.Minute, testLogger())
	_, err := c.BuildQuestionSnapshots(ctx, 2)
	assert.ErrorIs(t, err, boom)
	cacheSvc.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSnapshotCache_InvalidateAll(t *testing.T) {
	ctx := context.Background()
	cacheSvc := new(MockCacheService)
	cacheSvc.On("DeletePattern", ctx, "survey:snapshots:form:*").Return(nil).Once()

	c := NewSnapshotCache(new(MockSnapshotSource), cacheSvc, time.Minute, testLogger())
	require.NoError(t, c.InvalidateAll(ctx))
	cacheSvc.AssertExpectations(t)

	failing := new(MockCacheService)
	failing.On("DeletePattern", ctx, mock.Anything).Return(errors.New("redis down"))
	c = NewSnapshotCache(new(MockSnapshotSource), failing, time.Minute, testLogger())
	assert.Error(t, c.InvalidateAll(ctx))
}
