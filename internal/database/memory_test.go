package database

import (
	"context"
	"testing"
	"time"

	"github.com/nao1215/comet/internal/model"
)

// TestMemoryStore tests the in-memory store.
func TestMemoryStore(t *testing.T) {
	t.Parallel()

	t.Run("zero value reads false and unset", func(t *testing.T) {
		t.Parallel()
		var m MemoryStore
		enabled, err := m.ProxyEnabled(context.Background())
		if err != nil || enabled {
			t.Errorf("expected false, nil; got %v, %v", enabled, err)
		}
		if m.enabled != nil {
			t.Error("expected flag to be unset")
		}
	})

	t.Run("set and read", func(t *testing.T) {
		t.Parallel()
		m := NewMemoryStore()
		ctx := context.Background()
		if err := m.SetProxyEnabled(ctx, true); err != nil {
			t.Fatal(err)
		}
		enabled, _ := m.ProxyEnabled(ctx)
		if !enabled || m.enabled == nil {
			t.Error("expected flag to be set to true")
		}
	})

	t.Run("events newest first with limit", func(t *testing.T) {
		t.Parallel()
		m := NewMemoryStore()
		ctx := context.Background()
		base := time.Now()
		for i, id := range []string{"a", "b", "c"} {
			e := model.ToggleEvent{ID: id, Timestamp: base.Add(time.Duration(i) * time.Second)}
			if err := m.RecordEvent(ctx, e); err != nil {
				t.Fatal(err)
			}
		}
		got, err := m.ListEvents(ctx, 2)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 2 || got[0].ID != "c" || got[1].ID != "b" {
			t.Errorf("unexpected events %+v", got)
		}
	})
}
