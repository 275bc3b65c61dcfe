package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

type doc struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

func backends(t *testing.T) map[string]Backend {
	t.Helper()
	sqlite, err := NewSQLiteBackend(filepath.Join(t.TempDir(), "data", "finboard.db"))
	if err != nil {
		t.Fatalf("NewSQLiteBackend: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })
	return map[string]Backend{
		"memory": NewMemoryBackend(),
		"sqlite": sqlite,
		"cached": NewCachedBackend(NewMemoryBackend(), 8, time.Minute),
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := NewStore(b, nil)

			var got doc
			if s.Get(ctx, KeyGoals, &got) {
				t.Fatalf("empty store reported a value")
			}

			s.Set(ctx, KeyGoals, doc{Name: "car", Value: 12.5})
			if !s.Get(ctx, KeyGoals, &got) || got != (doc{Name: "car", Value: 12.5}) {
				t.Fatalf("Get = %+v", got)
			}

			s.Set(ctx, KeyGoals, doc{Name: "house", Value: 1})
			if !s.Get(ctx, KeyGoals, &got) || got.Name != "house" {
				t.Fatalf("overwrite not visible: %+v", got)
			}

			s.Remove(ctx, KeyGoals)
			s.Remove(ctx, KeyGoals)
			if s.Get(ctx, KeyGoals, &got) {
				t.Fatalf("removed key still present")
			}
		})
	}
}

func TestStoreCorruptValueIsAbsent(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	if err := b.Write(ctx, KeyTransactions, []byte("{not json")); err != nil {
		t.Fatal(err)
	}
	s := NewStore(b, nil)

	got := []doc{{Name: "keep"}}
	if s.Get(ctx, KeyTransactions, &got) {
		t.Fatalf("corrupt value decoded")
	}
	if len(got) != 1 || got[0].Name != "keep" {
		t.Fatalf("dst modified on failure: %+v", got)
	}
}

func TestStoreTypeMismatchLeavesDstUntouched(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	// Valid JSON whose second element fails to decode after the first one
	// already has.
	if err := b.Write(ctx, KeyGoals, []byte(`[{"name":"new","value":1},{"name":"bad","value":"x"}]`)); err != nil {
		t.Fatal(err)
	}
	s := NewStore(b, nil)

	got := []doc{{Name: "keep", Value: 7}}
	if s.Get(ctx, KeyGoals, &got) {
		t.Fatalf("mismatched value decoded")
	}
	if len(got) != 1 || got[0] != (doc{Name: "keep", Value: 7}) {
		t.Fatalf("dst modified on failure: %+v", got)
	}

	var notPointer doc
	if s.Get(ctx, KeyGoals, notPointer) {
		t.Error("non-pointer dst reported success")
	}
}

func TestStoreGetReplacesDst(t *testing.T) {
	ctx := context.Background()
	s := NewStore(NewMemoryBackend(), nil)
	s.Set(ctx, KeyGoals, doc{Name: "stored"})

	got := doc{Name: "old", Value: 3}
	if !s.Get(ctx, KeyGoals, &got) {
		t.Fatal("value not found")
	}
	if got != (doc{Name: "stored"}) {
		t.Errorf("got %+v, want the stored document only", got)
	}
}

type failingBackend struct {
	MemoryBackend
	err error
}

func (f *failingBackend) Write(context.Context, string, []byte) error { return f.err }
func (f *failingBackend) Read(context.Context, string) ([]byte, bool, error) {
	return nil, false, f.err
}

func TestStoreSwallowsBackendErrors(t *testing.T) {
	ctx := context.Background()
	s := NewStore(&failingBackend{err: errors.New("quota exceeded")}, nil)

	s.Set(ctx, KeyBudgets, []doc{{Name: "x"}})
	var got []doc
	if s.Get(ctx, KeyBudgets, &got) {
		t.Fatalf("read error reported as present")
	}
}

func TestRunMigrationsIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "finboard.db")
	for run := 1; run <= 2; run++ {
		version, err := RunMigrations(path)
		if err != nil {
			t.Fatalf("run %d: %v", run, err)
		}
		if version != SchemaVersion {
			t.Errorf("run %d: version = %d, want %d", run, version, SchemaVersion)
		}
	}

	b, err := NewSQLiteBackend(path)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()
	ctx := context.Background()
	if err := b.Write(ctx, KeyMonthlyIncome, []byte("12")); err != nil {
		t.Fatalf("kv table missing: %v", err)
	}
}

func TestMemoryBackendClosed(t *testing.T) {
	b := NewMemoryBackend()
	b.Close()
	if err := b.Write(context.Background(), "k", nil); !errors.Is(err, ErrClosed) {
		t.Fatalf("Write after Close = %v", err)
	}
}

func TestSQLiteBackendPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "finboard.db")

	b, err := NewSQLiteBackend(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Write(ctx, KeySelectedCurrency, []byte(`"EUR"`)); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := b.UpdatedAt(ctx, KeySelectedCurrency); err != nil || !ok {
		t.Fatalf("UpdatedAt = %v, %v", ok, err)
	}
	b.Close()

	b, err = NewSQLiteBackend(path)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()
	v, ok, err := b.Read(ctx, KeySelectedCurrency)
	if err != nil || !ok || string(v) != `"EUR"` {
		t.Fatalf("Read = %q, %v, %v", v, ok, err)
	}
}

type countingBackend struct {
	*MemoryBackend
	reads int
}

func (c *countingBackend) Read(ctx context.Context, key string) ([]byte, bool, error) {
	c.reads++
	return c.MemoryBackend.Read(ctx, key)
}

func TestCachedBackendServesFromCache(t *testing.T) {
	ctx := context.Background()
	inner := &countingBackend{MemoryBackend: NewMemoryBackend()}
	c := NewCachedBackend(inner, 4, time.Minute)

	if err := c.Write(ctx, "k", []byte("1")); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if v, ok, _ := c.Read(ctx, "k"); !ok || string(v) != "1" {
			t.Fatalf("Read = %q, %v", v, ok)
		}
	}
	if inner.reads != 0 {
		t.Errorf("inner reads = %d, want 0", inner.reads)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := c.Read(ctx, "k"); ok {
		t.Errorf("deleted key served from cache")
	}
	if inner.reads != 1 {
		t.Errorf("inner reads = %d, want 1", inner.reads)
	}
}

func TestCachedBackendReloadSeesOtherWriters(t *testing.T) {
	ctx := context.Background()
	shared := NewMemoryBackend()
	reader := NewCachedBackend(shared, 4, time.Hour)

	if err := reader.Write(ctx, KeyMonthlyIncome, []byte("100")); err != nil {
		t.Fatal(err)
	}
	if err := shared.Write(ctx, KeyMonthlyIncome, []byte("200")); err != nil {
		t.Fatal(err)
	}
	if v, _, _ := reader.Read(ctx, KeyMonthlyIncome); string(v) != "100" {
		t.Fatalf("before reload = %q, want cached 100", v)
	}

	reader.Reload(ctx)
	if v, _, _ := reader.Read(ctx, KeyMonthlyIncome); string(v) != "200" {
		t.Fatalf("after reload = %q, want 200", v)
	}
	if reader.Cache().Size() != 1 {
		t.Errorf("cache size = %d, want 1", reader.Cache().Size())
	}
}
