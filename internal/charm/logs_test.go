// ABOUTME: Unit tests for Charm-based daily log storage.
// ABOUTME: Tests key layout and client-side filtering without a live KV store.
package charm

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/charm/kv"
	"github.com/harperreed/healthtrends/internal/models"
	"github.com/harperreed/healthtrends/internal/storage"
)

// memStore is an in-memory stand-in for the Charm KV database.
type memStore struct {
	mu       sync.Mutex
	data     map[string][]byte
	syncs    int
	readOnly bool
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (m *memStore) Get(key []byte) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[string(key)]
	if !ok {
		return nil, kv.ErrMissingKey
	}
	return v, nil
}

func (m *memStore) Set(key, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[string(key)] = value
	return nil
}

func (m *memStore) Delete(key []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, string(key))
	return nil
}

func (m *memStore) Keys() ([][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([][]byte, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, []byte(k))
	}
	return keys, nil
}

func (m *memStore) Sync() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.syncs++
	return nil
}

func (m *memStore) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string][]byte)
	return nil
}

func (m *memStore) Close() error     { return nil }
func (m *memStore) IsReadOnly() bool { return m.readOnly }

func TestLogKeyFormat(t *testing.T) {
	key := LogKey("alice", models.Date(2025, time.March, 4))

	if key != "daylog:alice:2025-03-04" {
		t.Errorf("Expected key daylog:alice:2025-03-04, got: %s", key)
	}
	if !strings.HasPrefix(key, LogPrefix) {
		t.Errorf("Expected key to start with %q, got: %s", LogPrefix, key)
	}
}

func TestLogKeyIgnoresTimeOfDay(t *testing.T) {
	a := LogKey("alice", time.Date(2025, time.March, 4, 0, 0, 0, 0, time.UTC))
	b := LogKey("alice", time.Date(2025, time.March, 4, 23, 59, 0, 0, time.UTC))
	if a != b {
		t.Errorf("Expected same key for same day, got %s and %s", a, b)
	}
}

func TestDefaultHost(t *testing.T) {
	if DefaultHost != "charm.2389.dev" {
		t.Errorf("Expected default host charm.2389.dev, got %s", DefaultHost)
	}
}

func sampleLogs() []*models.DailyRecord {
	return []*models.DailyRecord{
		models.NewDailyRecord("alice", models.Date(2025, time.March, 3)),
		models.NewDailyRecord("bob", models.Date(2025, time.March, 1)),
		models.NewDailyRecord("alice", models.Date(2025, time.March, 1)),
		models.NewDailyRecord("alice", models.Date(2025, time.March, 2)),
	}
}

func TestFilterLogsOrdersAscending(t *testing.T) {
	got := filterLogs(sampleLogs(), "", nil, nil, 0)
	if len(got) != 4 {
		t.Fatalf("Expected 4 logs, got %d", len(got))
	}
	if got[0].UserID != "alice" || got[1].UserID != "bob" {
		t.Errorf("Expected ties broken by user, got %s then %s", got[0].UserID, got[1].UserID)
	}
	for i := 1; i < len(got); i++ {
		if got[i].Date.Before(got[i-1].Date) {
			t.Errorf("Logs out of order at %d", i)
		}
	}
}

func TestFilterLogsByUserAndRange(t *testing.T) {
	from := models.Date(2025, time.March, 2)
	to := models.Date(2025, time.March, 3)

	got := filterLogs(sampleLogs(), "alice", &from, &to, 0)
	if len(got) != 2 {
		t.Fatalf("Expected 2 logs, got %d", len(got))
	}
	if got[0].Date.Day() != 2 || got[1].Date.Day() != 3 {
		t.Errorf("Expected days 2 and 3, got %d and %d", got[0].Date.Day(), got[1].Date.Day())
	}
}

func TestFilterLogsLimitKeepsMostRecent(t *testing.T) {
	got := filterLogs(sampleLogs(), "alice", nil, nil, 1)
	if len(got) != 1 {
		t.Fatalf("Expected 1 log, got %d", len(got))
	}
	if got[0].Date.Day() != 3 {
		t.Errorf("Expected most recent day 3, got %d", got[0].Date.Day())
	}
}

func TestDistinctUsers(t *testing.T) {
	got := distinctUsers(sampleLogs())
	if len(got) != 2 || got[0] != "alice" || got[1] != "bob" {
		t.Errorf("Expected [alice bob], got %v", got)
	}
}

func TestGetMissingKeyIsNotFound(t *testing.T) {
	c := newClient(newMemStore())

	_, err := c.GetLog("alice", models.Date(2025, time.March, 4))
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if err := c.DeleteLog("alice", models.Date(2025, time.March, 4)); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound on delete, got %v", err)
	}
}

func TestUpsertLogKeepsIdentity(t *testing.T) {
	st := newMemStore()
	c := newClient(st)
	day := models.Date(2025, time.March, 4)

	first := models.NewDailyRecord("alice", day)
	if err := c.UpsertLog(first); err != nil {
		t.Fatalf("UpsertLog failed: %v", err)
	}

	second := models.NewDailyRecord("alice", day)
	mood := 4
	second.Mood = &mood
	if err := c.UpsertLog(second); err != nil {
		t.Fatalf("UpsertLog failed: %v", err)
	}

	got, err := c.GetLog("alice", day)
	if err != nil {
		t.Fatalf("GetLog failed: %v", err)
	}
	if got.ID != first.ID {
		t.Errorf("Expected ID %s kept, got %s", first.ID, got.ID)
	}
	if !got.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("Expected CreatedAt kept, got %v", got.CreatedAt)
	}
	if got.Mood == nil || *got.Mood != 4 {
		t.Errorf("Expected mood 4, got %v", got.Mood)
	}
	if st.syncs != 2 {
		t.Errorf("Expected a sync after each write, got %d", st.syncs)
	}
}

func TestConcurrentUpsertsShareOneIdentity(t *testing.T) {
	c := newClient(newMemStore())
	c.SetAutoSync(false)
	day := models.Date(2025, time.March, 4)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := c.UpsertLog(models.NewDailyRecord("alice", day)); err != nil {
				t.Errorf("UpsertLog failed: %v", err)
			}
		}()
	}
	wg.Wait()

	logs, err := c.ListLogs("alice", nil, nil, 0)
	if err != nil {
		t.Fatalf("ListLogs failed: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("Expected 1 log, got %d", len(logs))
	}

	// The first writer's ID survives every later upsert.
	again := models.NewDailyRecord("alice", day)
	if err := c.UpsertLog(again); err != nil {
		t.Fatalf("UpsertLog failed: %v", err)
	}
	if again.ID != logs[0].ID {
		t.Errorf("Expected ID %s, got %s", logs[0].ID, again.ID)
	}
}

func TestReadOnlyClientRefusesWrites(t *testing.T) {
	st := newMemStore()
	st.readOnly = true
	c := newClient(st)

	if err := c.UpsertLog(models.NewDailyRecord("alice", models.Date(2025, time.March, 4))); err == nil {
		t.Error("Expected write to fail in read-only mode")
	}
	if _, err := c.DeleteAllLogs(); err == nil {
		t.Error("Expected delete-all to fail in read-only mode")
	}
	if err := c.Reset(); err == nil {
		t.Error("Expected reset to fail in read-only mode")
	}
}

func TestDeleteAllLogs(t *testing.T) {
	st := newMemStore()
	c := newClient(st)
	for _, r := range sampleLogs() {
		if err := c.UpsertLog(r); err != nil {
			t.Fatalf("UpsertLog failed: %v", err)
		}
	}
	_ = st.Set([]byte("other:key"), []byte("x"))

	n, err := c.DeleteAllLogs()
	if err != nil {
		t.Fatalf("DeleteAllLogs failed: %v", err)
	}
	if n != 4 {
		t.Errorf("Expected 4 deleted, got %d", n)
	}
	if _, err := st.Get([]byte("other:key")); err != nil {
		t.Errorf("Expected unrelated key to survive, got %v", err)
	}

	users, err := c.ListUsers()
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(users) != 0 {
		t.Errorf("Expected no users left, got %v", users)
	}
}
