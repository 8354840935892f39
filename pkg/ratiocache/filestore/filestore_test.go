package filestore

import (
	"path/filepath"
	"testing"

	"github.com/paiban/engine/pkg/ratiocache"
)

func TestStore_UpsertThenLookupRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ratio_cache.json")
	store, err := New(path)
	if err != nil {
		t.Fatalf("New() 返回错误: %v", err)
	}

	if err := store.Upsert("abc123", ratiocache.Entry{OptimalRatio: 0.7, EmployeesUsed: 12}); err != nil {
		t.Fatalf("Upsert() 返回错误: %v", err)
	}

	entry, ok, err := store.Lookup("abc123")
	if err != nil {
		t.Fatalf("Lookup() 返回错误: %v", err)
	}
	if !ok {
		t.Fatal("写入后应能查到该哈希")
	}
	if entry.OptimalRatio != 0.7 || entry.EmployeesUsed != 12 {
		t.Errorf("Lookup() 条目 = %+v, 内容不匹配", entry)
	}
	if entry.UsageCount != 1 {
		t.Errorf("首次写入 UsageCount = %d, want 1", entry.UsageCount)
	}
}

func TestStore_UpsertIncrementsUsageCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ratio_cache.json")
	store, _ := New(path)

	_ = store.Upsert("h1", ratiocache.Entry{OptimalRatio: 0.6, EmployeesUsed: 10})
	_ = store.Upsert("h1", ratiocache.Entry{OptimalRatio: 0.65, EmployeesUsed: 9})

	entry, _, _ := store.Lookup("h1")
	if entry.UsageCount != 2 {
		t.Errorf("UsageCount = %d, want 2", entry.UsageCount)
	}
	if entry.OptimalRatio != 0.65 {
		t.Errorf("第二次写入应覆盖比例: got %v", entry.OptimalRatio)
	}
}

func TestStore_InvalidateRemovesEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ratio_cache.json")
	store, _ := New(path)
	_ = store.Upsert("h1", ratiocache.Entry{OptimalRatio: 0.6, EmployeesUsed: 10})

	if err := store.Invalidate("h1"); err != nil {
		t.Fatalf("Invalidate() 返回错误: %v", err)
	}
	if _, ok, _ := store.Lookup("h1"); ok {
		t.Error("失效后不应再查到该条目")
	}
}

func TestStore_ClearRemovesAllEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ratio_cache.json")
	store, _ := New(path)
	_ = store.Upsert("h1", ratiocache.Entry{OptimalRatio: 0.6, EmployeesUsed: 10})
	_ = store.Upsert("h2", ratiocache.Entry{OptimalRatio: 0.7, EmployeesUsed: 8})

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear() 返回错误: %v", err)
	}
	stats, _ := store.Stats()
	if stats.EntryCount != 0 {
		t.Errorf("Clear() 后 EntryCount = %d, want 0", stats.EntryCount)
	}
}

func TestStore_ExportImportRoundTrips(t *testing.T) {
	srcPath := filepath.Join(t.TempDir(), "src.json")
	src, _ := New(srcPath)
	_ = src.Upsert("h1", ratiocache.Entry{OptimalRatio: 0.6, EmployeesUsed: 10})

	data, err := src.Export()
	if err != nil {
		t.Fatalf("Export() 返回错误: %v", err)
	}

	dstPath := filepath.Join(t.TempDir(), "dst.json")
	dst, _ := New(dstPath)
	if err := dst.Import(data); err != nil {
		t.Fatalf("Import() 返回错误: %v", err)
	}

	entry, ok, _ := dst.Lookup("h1")
	if !ok || entry.OptimalRatio != 0.6 {
		t.Errorf("导入后条目应与导出一致, got %+v ok=%v", entry, ok)
	}
}
