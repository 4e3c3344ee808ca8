package backup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"restock/internal/model"
	"restock/internal/store"
)

func seededStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.New(filepath.Join(t.TempDir(), "restock.db"))
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	if err := st.UpsertProducts([]*model.Product{
		{Reference: "R1", Name: "Tomates", DestinationCode: "CUI", StockUnit: "kg"},
		{Reference: "R2", Name: "Basilic", DestinationCode: "CUI", StockUnit: "botte"},
	}); err != nil {
		t.Fatal(err)
	}
	p, _ := st.GetProductByReference("R2")
	if err := st.SetProductHidden(p.ID, true); err != nil {
		t.Fatal(err)
	}
	if err := st.SetUnitConversion(p.ID, &model.UnitConversion{NumberOfPacks: 2, UnitsPerPack: 6, Unit: "carton"}); err != nil {
		t.Fatal(err)
	}
	if _, err := st.CreateCategory("Légumes"); err != nil {
		t.Fatal(err)
	}

	w, err := st.MergeWeekData(2024, 51, model.ConsumptionData{"R1": 1.5}, model.SalesForecast{"2024-12-16": 1000})
	if err != nil {
		t.Fatal(err)
	}
	if err := st.CreateInitialOrders(w.ID, []string{"2024-12-19", "2024-12-21", "2024-12-24"}); err != nil {
		t.Fatal(err)
	}
	orders, _ := st.ListOrders(w.ID)
	if _, err := st.SetRealStock(orders[0].ID, p.ID, 24); err != nil {
		t.Fatal(err)
	}
	return st
}

func TestWriteAndLoad(t *testing.T) {
	t.Parallel()

	st := seededStore(t)
	dir := filepath.Join(t.TempDir(), "backups")
	now := time.Date(2024, 12, 18, 9, 30, 0, 0, time.UTC)

	path, err := Write(st, dir, now)
	if err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if filepath.Base(path) != "restock-20241218-093000.msgpack" {
		t.Errorf("path = %s", path)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file left behind")
	}

	snapshot, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if snapshot.Version != FormatVersion || !snapshot.CreatedAt.Equal(now) {
		t.Errorf("header = v%d %v", snapshot.Version, snapshot.CreatedAt)
	}
	if len(snapshot.Products) != 2 || len(snapshot.Categories) != 1 || len(snapshot.Weeks) != 1 || len(snapshot.Orders) != 3 {
		t.Fatalf("snapshot sizes = %d/%d/%d/%d", len(snapshot.Products), len(snapshot.Categories), len(snapshot.Weeks), len(snapshot.Orders))
	}

	var hidden *model.Product
	for _, p := range snapshot.Products {
		if p.Reference == "R2" {
			hidden = p
		}
	}
	if hidden == nil || !hidden.IsHidden || hidden.UnitConversion == nil || hidden.UnitConversion.UnitsPerPack != 6 {
		t.Errorf("hidden product = %+v", hidden)
	}
	if snapshot.Weeks[0].ConsumptionData.Ratio("R1") != 1.5 {
		t.Errorf("week = %+v", snapshot.Weeks[0])
	}
	if snapshot.Orders[0].RealStock.Get(hidden.ID) != 24 {
		t.Errorf("order stock = %v", snapshot.Orders[0].RealStock)
	}
}

func TestList(t *testing.T) {
	t.Parallel()

	st := seededStore(t)
	dir := t.TempDir()

	if paths, err := List(filepath.Join(dir, "missing")); err != nil || len(paths) != 0 {
		t.Fatalf("List(missing) = %v, %v", paths, err)
	}

	first, _ := Write(st, dir, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC))
	second, _ := Write(st, dir, time.Date(2024, 12, 2, 0, 0, 0, 0, time.UTC))
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644)

	paths, err := List(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 2 || paths[0] != second || paths[1] != first {
		t.Errorf("List() = %v, want [%s %s]", paths, second, first)
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "restock-bad.msgpack")
	os.WriteFile(path, []byte("not msgpack"), 0644)
	if _, err := Load(path); err == nil {
		t.Error("Load() of garbage should fail")
	}
}
