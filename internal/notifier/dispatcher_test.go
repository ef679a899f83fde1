package notifier

import (
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/staylinehq/stayline/internal/apiserver/database"
	"github.com/staylinehq/stayline/internal/common/config"
)

func newTestStore(t *testing.T) *database.Store {
	t.Helper()
	store, err := database.NewStore(zap.NewNop(), &config.DatabaseConfig{
		Type:   "sqlite",
		DBName: filepath.Join(t.TempDir(), "notifier_test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func enqueue(t *testing.T, store *database.Store, userID uint, title string) {
	t.Helper()
	require.NoError(t, store.EnqueueNotifications(t.Context(), []*database.NotificationOutbox{{
		UserID:     userID,
		Title:      title,
		Message:    "m",
		EntityKind: "quotation",
		EntityID:   1,
	}}))
}

func TestDrainOnceMaterializesNotifications(t *testing.T) {
	store := newTestStore(t)
	d := NewDispatcher(zap.NewNop(), store, nil, nil, config.NotifierConfig{Batch: 10})

	enqueue(t, store, 1, "first")
	enqueue(t, store, 2, "second")

	require.NoError(t, d.DrainOnce(t.Context()))

	for userID, title := range map[uint]string{1: "first", 2: "second"} {
		list, err := store.ListNotifications(t.Context(), userID, database.NotificationFilter{})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, title, list[0].Title)
		assert.False(t, list[0].Read)
	}

	// a second drain sees an empty outbox and creates nothing
	require.NoError(t, d.DrainOnce(t.Context()))
	list, err := store.ListNotifications(t.Context(), 1, database.NotificationFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestDrainOnceRespectsBatchLimit(t *testing.T) {
	store := newTestStore(t)
	d := NewDispatcher(zap.NewNop(), store, nil, nil, config.NotifierConfig{Batch: 2})

	for i := 0; i < 3; i++ {
		enqueue(t, store, 1, "n")
	}

	require.NoError(t, d.DrainOnce(t.Context()))
	pending, err := store.PendingOutbox(t.Context(), 10)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	require.NoError(t, d.DrainOnce(t.Context()))
	pending, err = store.PendingOutbox(t.Context(), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestDispatcherPublishesToRedisStream(t *testing.T) {
	store := newTestStore(t)

	mr := miniredis.RunT(t)
	publisher, err := NewRedisPublisher(zap.NewNop(), config.NotifierRedisConfig{
		Addr:   mr.Addr(),
		Stream: "stayline:notifications",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = publisher.Close() })

	d := NewDispatcher(zap.NewNop(), store, publisher, nil, config.NotifierConfig{Batch: 10})

	enqueue(t, store, 7, "Quotation accepted")
	require.NoError(t, d.DrainOnce(t.Context()))

	entries, err := mr.Stream("stayline:notifications")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Len(t, entries[0].Values, 2)
	assert.Equal(t, "notification", entries[0].Values[0])
	assert.Contains(t, entries[0].Values[1], "Quotation accepted")
}

func TestDispatcherSurvivesPublishFailure(t *testing.T) {
	store := newTestStore(t)

	mr := miniredis.RunT(t)
	publisher, err := NewRedisPublisher(zap.NewNop(), config.NotifierRedisConfig{
		Addr:   mr.Addr(),
		Stream: "stayline:notifications",
	})
	require.NoError(t, err)
	mr.Close() // stream publication will fail from here on

	d := NewDispatcher(zap.NewNop(), store, publisher, nil, config.NotifierConfig{Batch: 10})
	enqueue(t, store, 7, "still delivered in-app")

	require.NoError(t, d.DrainOnce(t.Context()))

	list, err := store.ListNotifications(t.Context(), 7, database.NotificationFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)

	pending, err := store.PendingOutbox(t.Context(), 10)
	require.NoError(t, err)
	assert.Empty(t, pending, "publish failure must not strand outbox rows")
}
