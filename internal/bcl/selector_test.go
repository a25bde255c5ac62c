package bcl_test

import (
	"testing"

	"bcl-go/internal/bcl"
)

func TestStoreSelector(t *testing.T) {
	t.Run("no patterns selects everything", func(t *testing.T) {
		sel, err := bcl.NewStoreSelector([]string{"", "  ", "# comment"})
		if err != nil {
			t.Fatalf("NewStoreSelector() error = %v", err)
		}
		if !sel.All() {
			t.Error("All() = false, want true")
		}
		if !sel.Match("anything") {
			t.Error("Match() = false, want true")
		}
	})

	t.Run("nil selector selects everything", func(t *testing.T) {
		var sel *bcl.StoreSelector
		if !sel.Match("filestore_01") {
			t.Error("Match() = false on nil selector")
		}
	})

	t.Run("glob patterns", func(t *testing.T) {
		sel, err := bcl.NewStoreSelector([]string{"filestore_*", "thumbnail_store_01"})
		if err != nil {
			t.Fatalf("NewStoreSelector() error = %v", err)
		}
		tests := map[string]bool{
			"filestore_01":       true,
			"filestore_02":       true,
			"thumbnail_store_01": true,
			"thumbnail_store_02": false,
			"streaming_store":    false,
		}
		for name, want := range tests {
			if got := sel.Match(name); got != want {
				t.Errorf("Match(%q) = %t, want %t", name, got, want)
			}
		}
	})

	t.Run("select by id", func(t *testing.T) {
		sel, _ := bcl.NewStoreSelector([]string{"thumbnail_*"})
		selected := sel.Select(testStores(t))
		if selected[plainStoreID] {
			t.Error("filestore_01 selected")
		}
		if !selected[extStoreID] {
			t.Error("thumbnail_store_01 not selected")
		}
	})

	t.Run("malformed pattern", func(t *testing.T) {
		if _, err := bcl.NewStoreSelector([]string{"[a-"}); err == nil {
			t.Error("NewStoreSelector() expected error")
		}
	})
}
