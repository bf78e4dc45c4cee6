package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/siftertools/sift2bb/internal/convert"
	"github.com/siftertools/sift2bb/internal/model"
)

func download(url, filename string, issueID int) *convert.Download {
	return &convert.Download{
		URL: url,
		Record: &model.Attachment{
			Filename: filename,
			IssueID:  issueID,
			Path:     "attachments/" + filename,
		},
	}
}

func testOptions() Options {
	return Options{
		Concurrency: 3,
		Timeout:     5 * time.Second,
		MaxRetries:  2,
	}
}

func TestFetchAllPreservesInputOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Later downloads finish first.
		if r.URL.Path == "/0" {
			time.Sleep(100 * time.Millisecond)
		}
		fmt.Fprintf(w, "payload %s", r.URL.Path)
	}))
	defer srv.Close()

	dir := t.TempDir()
	f := New(dir, testOptions())

	downloads := []*convert.Download{
		download(srv.URL+"/0", "a.png", 1),
		download(srv.URL+"/1", "b.png", 1),
		download(srv.URL+"/2", "c.png", 2),
	}

	results, err := f.FetchAll(context.Background(), downloads, true)
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}

	for i, r := range results {
		if r.Download != downloads[i] {
			t.Errorf("results[%d] holds %q, want %q (input order must be preserved)",
				i, r.Download.Record.Filename, downloads[i].Record.Filename)
		}
		if r.Err != nil {
			t.Errorf("results[%d] unexpected error: %v", i, r.Err)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, "a.png"))
	if err != nil {
		t.Fatalf("reading stored file: %v", err)
	}
	if string(data) != "payload /0" {
		t.Errorf("stored bytes = %q, want %q", data, "payload /0")
	}
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, "ok after retries")
	}))
	defer srv.Close()

	f := New(t.TempDir(), Options{Concurrency: 1, Timeout: 5 * time.Second, MaxRetries: 3})

	results, err := f.FetchAll(context.Background(), []*convert.Download{download(srv.URL, "x.bin", 1)}, true)
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if results[0].Err != nil {
		t.Fatalf("result error = %v, want nil", results[0].Err)
	}
	if got := hits.Load(); got != 3 {
		t.Errorf("server hits = %d, want 3", got)
	}
}

func TestFetchClientErrorIsPermanent(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	dir := t.TempDir()
	f := New(dir, testOptions())

	_, err := f.FetchAll(context.Background(), []*convert.Download{download(srv.URL, "x.bin", 1)}, true)
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("server hits = %d, want 1 (4xx must not be retried)", got)
	}

	// No partial file left behind.
	if _, err := os.Stat(filepath.Join(dir, "x.bin")); !os.IsNotExist(err) {
		t.Error("failed download left a file in the staging directory")
	}
}

func TestFetchAllCollectsFailuresWithoutFailFast(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/bad" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, "ok")
	}))
	defer srv.Close()

	f := New(t.TempDir(), testOptions())

	downloads := []*convert.Download{
		download(srv.URL+"/good", "good.png", 1),
		download(srv.URL+"/bad", "bad.png", 1),
	}

	results, err := f.FetchAll(context.Background(), downloads, false)
	if err != nil {
		t.Fatalf("FetchAll without failFast returned error: %v", err)
	}
	if results[0].Err != nil {
		t.Errorf("good download error = %v, want nil", results[0].Err)
	}
	if results[1].Err == nil {
		t.Error("bad download error = nil, want recorded failure")
	}
}
