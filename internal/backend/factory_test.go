package backend

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"finboard/internal/config"
	"finboard/internal/storage"
)

func TestCreateBackend(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name       string
		config     Config
		wantCached bool
		wantErr    bool
	}{
		{name: "memory", config: Config{Type: MemoryBackend}},
		{name: "memory cached", config: Config{Type: MemoryBackend, CacheSize: 4, CacheTTL: time.Minute}, wantCached: true},
		{name: "sqlite", config: Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(t.TempDir(), "f.db")}},
		{name: "sqlite without path", config: Config{Type: SQLiteBackend}, wantErr: true},
		{name: "unknown", config: Config{Type: "sheets"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := NewFactory(nil).CreateBackend(ctx, tt.config)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			defer res.Cleanup()

			_, cached := res.Backend.(*storage.CachedBackend)
			if cached != tt.wantCached {
				t.Errorf("cached = %v, want %v", cached, tt.wantCached)
			}
			if err := res.Backend.Write(ctx, storage.KeyGoals, []byte("[]")); err != nil {
				t.Fatalf("Write: %v", err)
			}
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	cfg, err := FromAppConfig(&config.Config{DataBackend: "memory", StoreCacheSize: 8, StoreCacheTTL: time.Second})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Type != MemoryBackend || cfg.CacheSize != 8 {
		t.Errorf("cfg = %+v", cfg)
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "nope"}); err == nil {
		t.Error("expected error for unknown backend")
	}
	if _, err := FromAppConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}
}
