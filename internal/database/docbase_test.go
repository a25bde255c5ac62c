package database_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"bcl-go/internal/bcl"
	"bcl-go/internal/testutil"
)

func TestDocbaseDatabase_LoadStores(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	db.AddStore("2800162a80000100", "filestore_01", "/data/docbase/content_storage_01", false)
	db.AddStore("2800162a80000200", "thumbnail_store_01", "/data/docbase/thumbnail_storage_01", true)

	stores, err := db.LoadStores(context.Background())
	if err != nil {
		t.Fatalf("LoadStores() error = %v", err)
	}
	if len(stores) != 2 {
		t.Fatalf("len(stores) = %d, want 2", len(stores))
	}

	registry, err := bcl.NewStores(stores...)
	if err != nil {
		t.Fatalf("NewStores() error = %v", err)
	}
	thumb, ok := registry.ByName("thumbnail_store_01")
	if !ok {
		t.Fatal("thumbnail_store_01 not loaded")
	}
	if thumb.Path != "/data/docbase/thumbnail_storage_01/0000162a" {
		t.Errorf("Path = %q, want %q", thumb.Path, "/data/docbase/thumbnail_storage_01/0000162a")
	}
	if !thumb.Extension {
		t.Error("Extension = false, want true")
	}
	fs01, _ := registry.ByName("filestore_01")
	if fs01.Extension {
		t.Error("filestore_01 Extension = true, want false")
	}
}

func TestDocbaseDatabase_FormatExtensions(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	db.AddFormat("pdf", "pdf")
	db.AddFormat("msw8", "doc")
	db.AddFormat("crtext", "")
	db.AddFormat("blank", " ")
	db.AddFormat("padded", "png   ")
	db.AddFormat("spaces", "   ")

	got, err := db.FormatExtensions(context.Background())
	if err != nil {
		t.Fatalf("FormatExtensions() error = %v", err)
	}

	want := map[string]string{"pdf": ".pdf", "msw8": ".doc", "padded": ".png"}
	if len(got) != len(want) {
		t.Fatalf("FormatExtensions() = %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("FormatExtensions()[%q] = %q, want %q", k, got[k], v)
		}
	}
}

func TestDocbaseDatabase_ScanContents(t *testing.T) {
	const (
		extStore   = "2800162a80000200"
		plainStore = "2800162a80000100"
	)
	modified := time.Date(2014, 3, 2, 11, 30, 0, 0, time.UTC)

	setup := func(t *testing.T) *testutil.TestDocbase {
		t.Helper()
		db := testutil.NewTestDatabase(t)
		db.AddObject("0900162a80001001", "contract.pdf", "dm_document", true)
		db.AddObject("0900162a80001002", "", "my_report", false)
		db.AddContent(testutil.TestContent{Store: extStore, Ticket: 0x00017a2b, Parent: "0900162a80001001", Format: "pdf", Size: 2048, Modified: modified})
		db.AddContent(testutil.TestContent{Store: plainStore, Ticket: -2, Parent: "0900162a80001002", Format: "pdf", Page: 1, Rendition: 2, Size: 10})
		db.AddContent(testutil.TestContent{Store: plainStore, Ticket: 5, Parent: "0900162a80001002", Format: "crtext"})
		db.AddContent(testutil.TestContent{Store: "0000000000000000", Ticket: 9, Parent: "0900162a80001001", Format: "crtext"})
		return db
	}

	t.Run("streams ordered decorated contents", func(t *testing.T) {
		db := setup(t)
		ext := bcl.NewExtensionResolver([]string{extStore}, map[string]string{"pdf": ".pdf"})

		var got []bcl.DecoratedContent
		err := db.ScanContents(context.Background(), ext, func(dc bcl.DecoratedContent) error {
			got = append(got, dc)
			return nil
		})
		if err != nil {
			t.Fatalf("ScanContents() error = %v", err)
		}

		if len(got) != 3 {
			t.Fatalf("got %d contents, want 3 (unstored content excluded)", len(got))
		}

		// ordered by store then ticket, the negative ticket sorting first
		if got[0].Content.Store != plainStore || got[0].Content.Ticket != 0xfffffffe {
			t.Errorf("first = %s, want %s/%d", got[0].Content.Key(), plainStore, uint32(0xfffffffe))
		}
		if got[1].Content.Ticket != 5 {
			t.Errorf("second ticket = %d, want 5", got[1].Content.Ticket)
		}

		first := got[0]
		if !first.Content.Rendition || first.Content.Page != 1 || first.Content.Size != 10 {
			t.Errorf("first content = %s", first.Content)
		}
		if first.Content.HasExtension() {
			t.Errorf("content of a store without extensions got %q", first.Content.Extension)
		}
		if first.Parent.Name != "" || first.Parent.Type != "my_report" || first.Parent.Current {
			t.Errorf("first parent = %+v", first.Parent)
		}

		last := got[2]
		if last.Content.Extension != ".pdf" {
			t.Errorf("Extension = %q, want %q", last.Content.Extension, ".pdf")
		}
		if last.Content.Rendition {
			t.Error("Rendition = true, want false")
		}
		if !last.Content.Modified.Equal(modified) {
			t.Errorf("Modified = %v, want %v", last.Content.Modified, modified)
		}
		if last.Parent.Name != "contract.pdf" || !last.Parent.Current {
			t.Errorf("last parent = %+v", last.Parent)
		}
	})

	t.Run("stops on callback error", func(t *testing.T) {
		db := setup(t)
		ext := bcl.NewExtensionResolver(nil, nil)
		stop := errors.New("stop")

		calls := 0
		err := db.ScanContents(context.Background(), ext, func(bcl.DecoratedContent) error {
			calls++
			return stop
		})
		if !errors.Is(err, stop) {
			t.Fatalf("ScanContents() error = %v, want %v", err, stop)
		}
		if calls != 1 {
			t.Errorf("callback called %d times, want 1", calls)
		}
	})
}
