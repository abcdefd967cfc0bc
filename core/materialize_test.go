package core

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	bolt "go.etcd.io/bbolt"
)

func TestCopyFile(t *testing.T) {
	tmpDir := t.TempDir()
	content := []byte("test content for copy")
	srcPath := writeTestFile(t, filepath.Join(tmpDir, "source.jpg"), content)

	mtime := time.Date(2015, 6, 7, 8, 9, 10, 0, time.UTC)
	if err := os.Chtimes(srcPath, mtime, mtime); err != nil {
		t.Fatalf("failed to set times: %v", err)
	}

	dstPath := filepath.Join(tmpDir, "destination.jpg")
	if err := copyFile(hashOf(content), srcPath, dstPath); err != nil {
		t.Fatalf("copyFile() error = %v", err)
	}

	got, err := os.ReadFile(dstPath)
	if err != nil {
		t.Fatalf("failed to read destination file: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("destination content = %q, want %q", got, content)
	}
	info, err := os.Stat(dstPath)
	if err != nil {
		t.Fatal(err)
	}
	if !info.ModTime().Equal(mtime) {
		t.Errorf("mtime = %v, want %v", info.ModTime(), mtime)
	}
}

func TestCopyFile_Errors(t *testing.T) {
	tmpDir := t.TempDir()
	content := []byte("content")
	srcPath := writeTestFile(t, filepath.Join(tmpDir, "src.jpg"), content)

	tests := []struct {
		name string
		hash []byte
		src  string
		dst  string
	}{
		{"empty source", hashOf(content), "", filepath.Join(tmpDir, "a.jpg")},
		{"empty destination", hashOf(content), srcPath, ""},
		{"missing source", hashOf(content), filepath.Join(tmpDir, "missing.jpg"), filepath.Join(tmpDir, "b.jpg")},
		{"stale hash", hashOf([]byte("other")), srcPath, filepath.Join(tmpDir, "c.jpg")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := copyFile(tt.hash, tt.src, tt.dst); err == nil {
				t.Fatal("expected error")
			}
			if tt.dst == "" {
				return
			}
			if _, err := os.Stat(tt.dst); !os.IsNotExist(err) {
				t.Errorf("destination should not exist, stat error = %v", err)
			}
		})
	}
}

func TestTargetPath(t *testing.T) {
	hash := []byte{0xab, 0xcd}
	dated := &indexEntry{Image: &imageRecord{DateTaken: time.Date(2009, 11, 3, 0, 0, 0, 0, time.UTC)}}
	undated := &indexEntry{Image: &imageRecord{}}

	tests := []struct {
		name  string
		entry *indexEntry
		src   string
		want  string
	}{
		{"dated", dated, "/a/IMG_1.JPG", filepath.Join("2009", "11", "abcd.JPG")},
		{"undated", undated, "/a/b.png", filepath.Join("undated", "abcd.png")},
		{"no extension", dated, "/a/file", filepath.Join("2009", "11", "abcd")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := targetPath(hash, tt.entry, tt.src); got != tt.want {
				t.Errorf("targetPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMaterialize(t *testing.T) {
	logger := hclog.NewNullLogger()
	dbPath := initTestDatabase(t)
	src := t.TempDir()
	dst := t.TempDir()

	files := map[string][]byte{
		"dated.jpg":   []byte("dated"),
		"undated.png": []byte("undated"),
		"tagged.jpg":  []byte("tagged"),
		"absent.txt":  []byte("absent"),
	}
	for name, data := range files {
		writeTestFile(t, filepath.Join(src, name), data)
	}

	date := time.Date(2021, 12, 24, 18, 0, 0, 0, time.UTC)
	entries := map[string]*indexEntry{
		"dated": {
			Paths:   map[string]struct{}{filepath.Join(src, "dated.jpg"): {}},
			Outcome: "resolved",
			Image:   &imageRecord{Orientation: 1, Width: 1, Height: 1, DateTaken: date},
		},
		"undated": {
			Paths:   map[string]struct{}{filepath.Join(src, "undated.png"): {}},
			Outcome: "degraded",
			Image:   &imageRecord{Orientation: 1, Width: 1, Height: 1},
		},
		"tagged": {
			Paths:   map[string]struct{}{filepath.Join(src, "tagged.jpg"): {}},
			Outcome: "resolved",
			Image:   &imageRecord{Orientation: 1, Width: 1, Height: 1, HasDeleteTag: true, DateTaken: date},
		},
		"absent": {
			Paths:   map[string]struct{}{filepath.Join(src, "absent.txt"): {}},
			Outcome: "absent",
		},
	}
	putTestEntries(t, dbPath, "photos", entries)

	// Running twice skips files that are already in place.
	for i := 0; i < 2; i++ {
		if err := Materialize(logger, dbPath, "photos", dst); err != nil {
			t.Fatalf("Materialize() error = %v", err)
		}
	}

	tests := []struct {
		content string
		rel     string
		want    bool
	}{
		{"dated", filepath.Join("2021", "12"), true},
		{"undated", "undated", true},
		{"tagged", filepath.Join("2021", "12"), false},
	}
	for _, tt := range tests {
		t.Run(tt.content, func(t *testing.T) {
			ext := filepath.Ext(firstPath(entries[tt.content]))
			path := filepath.Join(dst, tt.rel, hexName(tt.content)+ext)
			_, err := os.Stat(path)
			if exists := err == nil; exists != tt.want {
				t.Errorf("%s exists = %v, want %v", path, exists, tt.want)
			}
		})
	}

	var count int
	err := filepath.Walk(dst, func(path string, info os.FileInfo, err error) error {
		if err == nil && info.Mode().IsRegular() {
			count++
		}
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("materialized %d files, want 2", count)
	}
}

func TestMaterialize_StaleIndex(t *testing.T) {
	logger := hclog.NewNullLogger()
	dbPath := initTestDatabase(t)
	src := writeTestFile(t, filepath.Join(t.TempDir(), "a.jpg"), []byte("changed"))

	putTestEntries(t, dbPath, "photos", map[string]*indexEntry{
		"original": {
			Paths:   map[string]struct{}{src: {}},
			Outcome: "resolved",
			Image:   &imageRecord{Orientation: 1, Width: 1, Height: 1},
		},
	})
	if err := Materialize(logger, dbPath, "photos", t.TempDir()); err == nil {
		t.Error("Materialize() with stale index should fail")
	}
}

func TestMaterialize_MissingIndex(t *testing.T) {
	logger := hclog.NewNullLogger()
	dbPath := initTestDatabase(t)

	db, err := getDB(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := getBucketForIndexes(tx)
		return err
	})
	db.Close()
	if err != nil {
		t.Fatal(err)
	}

	if err := Materialize(logger, dbPath, "missing", t.TempDir()); err == nil {
		t.Error("Materialize() on missing index should fail")
	}
	if err := Materialize(logger, dbPath, "", t.TempDir()); err == nil {
		t.Error("Materialize() with empty index name should fail")
	}
}

func firstPath(entry *indexEntry) string {
	return sortedPaths(entry)[0]
}

func hexName(content string) string {
	return fmt.Sprintf("%x", hashOf([]byte(content)))
}
