package archive

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
)

func TestZipDir(t *testing.T) {
	src := t.TempDir()
	if err := os.WriteFile(filepath.Join(src, "db-1.0.json"), []byte(`{"issues":[]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(src, "attachments"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "attachments", "a.png"), []byte("bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	dest := filepath.Join(t.TempDir(), "bundle.zip")
	if err := ZipDir(src, dest); err != nil {
		t.Fatalf("ZipDir: %v", err)
	}

	zr, err := zip.OpenReader(dest)
	if err != nil {
		t.Fatalf("opening archive: %v", err)
	}
	defer zr.Close()

	contents := map[string]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("opening entry %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("reading entry %s: %v", f.Name, err)
		}
		contents[f.Name] = string(data)
	}

	if contents["db-1.0.json"] != `{"issues":[]}` {
		t.Errorf("db-1.0.json entry = %q", contents["db-1.0.json"])
	}
	if contents["attachments/a.png"] != "bytes" {
		t.Errorf("attachments/a.png entry = %q", contents["attachments/a.png"])
	}
}
