package pool

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/stockpilot/internal/feed"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	store, err := NewStore(t.TempDir(), log)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return store
}

// TestLoadEmptyPool tests that a missing pool file reads as empty
func TestLoadEmptyPool(t *testing.T) {
	store := testStore(t)

	entries, err := store.Load(Picking)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty pool, got %d entries", len(entries))
	}
}

// TestAddAndLoad tests the add round trip
func TestAddAndLoad(t *testing.T) {
	store := testStore(t)

	if err := store.Add(Picking, "600519", "Kweichow Moutai"); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	entries, err := store.Load(Picking)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Code != "600519" || entries[0].Name != "Kweichow Moutai" {
		t.Errorf("unexpected entry: %+v", entries[0])
	}
	if entries[0].AddedAt.IsZero() {
		t.Error("expected AddedAt to be set")
	}
}

// TestAddDuplicate tests rejection of duplicate symbols
func TestAddDuplicate(t *testing.T) {
	store := testStore(t)

	if err := store.Add(Picking, "600519", "Kweichow Moutai"); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := store.Add(Picking, "600519", "Kweichow Moutai"); err == nil {
		t.Fatal("expected error for duplicate symbol")
	}
}

// TestRemove tests removal and the missing-symbol error
func TestRemove(t *testing.T) {
	store := testStore(t)

	if err := store.Add(Picking, "600519", "Kweichow Moutai"); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := store.Remove(Picking, "600519"); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if err := store.Remove(Picking, "600519"); err == nil {
		t.Fatal("expected error removing missing symbol")
	}

	entries, _ := store.Load(Picking)
	if len(entries) != 0 {
		t.Errorf("expected empty pool after remove, got %d", len(entries))
	}
}

// TestUpdateNoteAndTags tests note and tag updates
func TestUpdateNoteAndTags(t *testing.T) {
	store := testStore(t)

	if err := store.Add(Watching, "000001", "Ping An Bank"); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	if err := store.UpdateNote(Watching, "000001", "breakout candidate"); err != nil {
		t.Fatalf("update note failed: %v", err)
	}
	if err := store.UpdateTags(Watching, "000001", []string{"bank", "value"}); err != nil {
		t.Fatalf("update tags failed: %v", err)
	}

	entries, _ := store.Load(Watching)
	if entries[0].Note.Content != "breakout candidate" {
		t.Errorf("unexpected note: %+v", entries[0].Note)
	}
	if entries[0].Note.UpdatedAt.IsZero() {
		t.Error("expected note UpdatedAt to be set")
	}
	if len(entries[0].Tags) != 2 || entries[0].Tags[0] != "bank" {
		t.Errorf("unexpected tags: %v", entries[0].Tags)
	}
}

// TestSetPlan tests attaching a trade plan
func TestSetPlan(t *testing.T) {
	store := testStore(t)

	if err := store.Add(Trading, "600519", "Kweichow Moutai"); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	plan := TradePlan{
		BuyPrice:   decimal.NewFromFloat(1700.5),
		Shares:     100,
		StopLoss:   decimal.NewFromFloat(1650),
		TakeProfit: decimal.NewFromFloat(1800),
	}
	if err := store.SetPlan(Trading, "600519", plan); err != nil {
		t.Fatalf("set plan failed: %v", err)
	}

	entries, _ := store.Load(Trading)
	if entries[0].Plan == nil {
		t.Fatal("expected plan to be set")
	}
	if !entries[0].Plan.BuyPrice.Equal(decimal.NewFromFloat(1700.5)) {
		t.Errorf("unexpected buy price: %s", entries[0].Plan.BuyPrice)
	}
}

// TestMoveBetweenPools tests promoting a symbol from picking to watching
func TestMoveBetweenPools(t *testing.T) {
	store := testStore(t)

	if err := store.Add(Picking, "600519", "Kweichow Moutai"); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := store.UpdateNote(Picking, "600519", "keep this note"); err != nil {
		t.Fatalf("update note failed: %v", err)
	}

	if err := store.Move("600519", Picking, Watching); err != nil {
		t.Fatalf("move failed: %v", err)
	}

	picking, _ := store.Load(Picking)
	if len(picking) != 0 {
		t.Errorf("expected picking pool empty, got %d", len(picking))
	}

	watching, _ := store.Load(Watching)
	if len(watching) != 1 {
		t.Fatalf("expected 1 watching entry, got %d", len(watching))
	}
	if watching[0].Note.Content != "keep this note" {
		t.Errorf("expected note to survive move, got %+v", watching[0].Note)
	}
}

// TestMoveMissingSymbol tests moving a symbol that is not pooled
func TestMoveMissingSymbol(t *testing.T) {
	store := testStore(t)

	if err := store.Move("600519", Picking, Watching); err == nil {
		t.Fatal("expected error moving unknown symbol")
	}
}

// TestUnknownPoolType tests the unknown-pool guard
func TestUnknownPoolType(t *testing.T) {
	store := testStore(t)

	if _, err := store.Load(Type("retired")); err == nil {
		t.Fatal("expected error for unknown pool type")
	}
}

// stubSource serves one fixed bar series for refresher tests
type stubSource struct {
	bars  []feed.Bar
	calls int
}

func (s *stubSource) FetchBars(ctx context.Context, symbol string, start, end time.Time) ([]feed.Bar, error) {
	s.calls++
	return s.bars, nil
}

func (s *stubSource) Name() string    { return "stub" }
func (s *stubSource) IsEnabled() bool { return true }

// TestRefresherRefreshAll tests last-close updates across pools
func TestRefresherRefreshAll(t *testing.T) {
	store := testStore(t)
	log := logrus.New()
	log.SetOutput(io.Discard)

	if err := store.Add(Picking, "600519", "Kweichow Moutai"); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := store.Add(Trading, "000001", "Ping An Bank"); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	source := &stubSource{bars: []feed.Bar{
		{Timestamp: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Open: 99, High: 101, Low: 98, Close: 100, Volume: 1000},
		{Timestamp: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), Open: 100, High: 103, Low: 99, Close: 102.5, Volume: 1200},
	}}

	refresher := NewRefresher(store, source, log)
	if err := refresher.RefreshAll(context.Background()); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	if source.calls != 2 {
		t.Errorf("expected 2 fetches, got %d", source.calls)
	}

	entries, _ := store.Load(Picking)
	if !entries[0].LastClose.Equal(decimal.NewFromFloat(102.5)) {
		t.Errorf("expected last close 102.5, got %s", entries[0].LastClose)
	}
	if entries[0].RefreshedAt.IsZero() {
		t.Error("expected RefreshedAt to be set")
	}
}

// TestRefresherScheduleAndStart tests scheduler lifecycle
func TestRefresherScheduleAndStart(t *testing.T) {
	store := testStore(t)
	log := logrus.New()
	log.SetOutput(io.Discard)

	refresher := NewRefresher(store, &stubSource{}, log)

	if err := refresher.Start(); err == nil {
		t.Fatal("expected error starting with no jobs")
	}

	if err := refresher.Schedule("not a cron expr"); err == nil {
		t.Fatal("expected error for invalid cron expression")
	}
	if err := refresher.Schedule("0 18 * * 1-5"); err != nil {
		t.Fatalf("schedule failed: %v", err)
	}

	if err := refresher.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if !refresher.IsRunning() {
		t.Error("expected refresher to be running")
	}
	if refresher.NextRun().IsZero() {
		t.Error("expected a next run time")
	}

	refresher.Stop()
	if refresher.IsRunning() {
		t.Error("expected refresher to be stopped")
	}
}
