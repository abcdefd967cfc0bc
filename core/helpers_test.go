package core

import (
	"bytes"
	"crypto/sha256"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/slackpad/picmeta/config"
	bolt "go.etcd.io/bbolt"
)

func initTestDatabase(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	if err := CreateDB(hclog.NewNullLogger(), dbPath); err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	return dbPath
}

func testConfig(dbPath string) *config.Config {
	return &config.Config{
		DBPath:      dbPath,
		Workers:     2,
		FileTimeout: 10 * time.Second,
		LogLevel:    "INFO",
	}
}

func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = old })
	return &buf
}

func testImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 0x40, A: 0xFF})
		}
	}
	return img
}

func writeTestFile(t *testing.T, path string, data []byte) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

func jpegData(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, testImage(width, height), nil); err != nil {
		t.Fatalf("failed to encode jpeg: %v", err)
	}
	return buf.Bytes()
}

func pngData(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, testImage(width, height)); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func hashOf(data []byte) []byte {
	h := sha256.Sum256(data)
	return h[:]
}

// putTestEntries stores entries directly, bypassing the scanner.
func putTestEntries(t *testing.T, dbPath, indexName string, entries map[string]*indexEntry) {
	t.Helper()
	db, err := getDB(dbPath)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	err = db.Update(func(tx *bolt.Tx) error {
		b, err := getBucketForIndex(tx, indexName, hashesBucketKey)
		if err != nil {
			return err
		}
		for content, entry := range entries {
			if err := putEntry(b, hashOf([]byte(content)), entry); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("failed to store entries: %v", err)
	}
}

func readEntries(t *testing.T, dbPath, indexName string) map[string]*indexEntry {
	t.Helper()
	entries := make(map[string]*indexEntry)
	err := forEachEntry(dbPath, indexName, func(hash []byte, entry *indexEntry) error {
		entries[string(hash)] = entry
		return nil
	})
	if err != nil {
		t.Fatalf("failed to read entries: %v", err)
	}
	return entries
}
