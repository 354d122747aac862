package sync

import (
	"context"
	stdsql "database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/notaryapp/backend/internal/db"
	apperrors "github.com/notaryapp/backend/internal/errors"
	"github.com/notaryapp/backend/internal/notify"
	"github.com/notaryapp/backend/internal/retry"
)

// fakeSource serves canned payloads and can fail a set number of times
// before succeeding.
type fakeSource struct {
	records  []NotaryRecord
	failures int
	calls    int
}

func (s *fakeSource) FetchNotaries(ctx context.Context) ([]NotaryRecord, error) {
	s.calls++
	if s.calls <= s.failures {
		return nil, errors.New("connection refused")
	}
	return s.records, nil
}

func fastRetry() *retry.Config {
	return &retry.Config{
		MaxRetries:   2,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func setupRepo(t *testing.T) *db.Repository {
	t.Helper()
	sqlDB, err := stdsql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.MigrateUp(sqlDB))
	return db.NewRepository(sqlDB)
}

func record(id, fio, region string) NotaryRecord {
	return NotaryRecord{
		ID:     id,
		FIO:    fio,
		Region: region,
		Phone:  "+7 (495) 000-00-00",
	}
}

func TestSyncInsertsNewRecords(t *testing.T) {
	repo := setupRepo(t)
	source := &fakeSource{records: []NotaryRecord{
		record("7b8a9c10-1234-4abc-8def-000000000001", "Иванов Иван Иванович", "Москва"),
		record("notary-spb-003", "Петрова Анна", "Санкт-Петербург"),
	}}
	engine := NewEngine(repo, source, notify.NewBus(), fastRetry())

	result, err := engine.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Created)
	assert.Zero(t, result.Updated)

	// A UUID external id becomes the primary id.
	n, err := repo.GetNotaryByIDString("7b8a9c10-1234-4abc-8def-000000000001")
	require.NoError(t, err)
	assert.Equal(t, "7b8a9c10-1234-4abc-8def-000000000001", n.ID.String())

	// A non-UUID external id is preserved as the upsert key while the
	// primary id is generated.
	n, err = repo.GetNotaryByIDString("notary-spb-003")
	require.NoError(t, err)
	assert.NotEqual(t, "notary-spb-003", n.ID.String())
}

// Re-syncing the same external ids updates records in place: the count
// stays flat and existing rows keep their primary ids.
func TestSyncUpdatesInPlace(t *testing.T) {
	repo := setupRepo(t)
	source := &fakeSource{records: []NotaryRecord{
		record("notary-ekb-005", "Сидоров Павел", "Екатеринбург"),
	}}
	engine := NewEngine(repo, source, notify.NewBus(), fastRetry())

	_, err := engine.Sync(context.Background())
	require.NoError(t, err)
	before, err := repo.GetNotaryByIDString("notary-ekb-005")
	require.NoError(t, err)

	// Same external id, changed business fields.
	source.records[0].Region = "Тюмень"
	source.records[0].Phone = "+7 (345) 222-33-44"

	result, err := engine.Sync(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.Created)
	assert.Equal(t, 1, result.Updated)

	count, err := repo.CountNotaries()
	require.NoError(t, err)
	assert.Equal(t, 1, count, "re-sync must not duplicate records")

	after, err := repo.GetNotaryByIDString("notary-ekb-005")
	require.NoError(t, err)
	assert.Equal(t, before.ID, after.ID, "primary id must survive the update")
	assert.Equal(t, "Тюмень", after.Region)
	assert.Equal(t, "+7 (345) 222-33-44", after.Phone)
}

func TestSyncRetriesTransientFetchFailures(t *testing.T) {
	repo := setupRepo(t)
	source := &fakeSource{
		failures: 2,
		records:  []NotaryRecord{record("notary-kzn-009", "Васильев Игорь", "Казань")},
	}
	engine := NewEngine(repo, source, notify.NewBus(), fastRetry())

	result, err := engine.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 3, source.calls)
}

func TestSyncGivesUpAfterRetries(t *testing.T) {
	repo := setupRepo(t)
	source := &fakeSource{failures: 10}
	engine := NewEngine(repo, source, notify.NewBus(), fastRetry())

	_, err := engine.Sync(context.Background())
	assert.True(t, apperrors.Is(err, apperrors.ErrSyncSource))

	count, _ := repo.CountNotaries()
	assert.Zero(t, count)
}

func TestSyncCancelable(t *testing.T) {
	repo := setupRepo(t)
	source := &fakeSource{records: []NotaryRecord{record("notary-1", "А", "Москва")}}
	engine := NewEngine(repo, source, notify.NewBus(), fastRetry())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Sync(ctx)
	require.Error(t, err)

	count, _ := repo.CountNotaries()
	assert.Zero(t, count, "canceled sync must leave the store untouched")
}

func TestSyncPublishesEvents(t *testing.T) {
	repo := setupRepo(t)
	bus := notify.NewBus()
	events, unsubscribe := bus.Subscribe()
	defer unsubscribe()

	source := &fakeSource{records: []NotaryRecord{record("notary-1", "А", "Москва")}}
	engine := NewEngine(repo, source, bus, fastRetry())

	_, err := engine.Sync(context.Background())
	require.NoError(t, err)

	var types []string
	for len(events) > 0 {
		types = append(types, (<-events).Type)
	}
	assert.Contains(t, types, notify.EventNotariesChanged)
	assert.Contains(t, types, notify.EventSyncCompleted)
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/payload.json"
	payload := `[{"id":"notary-1","fio":"Иванов","region":"Москва","latitude":55.75,"longitude":37.61}]`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))

	records, err := NewFileSource(path).FetchNotaries(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Иванов", records[0].FIO)
	assert.Equal(t, 55.75, records[0].Latitude)

	_, err = NewFileSource(dir + "/missing.json").FetchNotaries(context.Background())
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))
	_, err = NewFileSource(path).FetchNotaries(context.Background())
	assert.Error(t, err)
}
