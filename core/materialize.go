package core

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cheggaaa/pb/v3"
	"github.com/hashicorp/go-hclog"
	bolt "go.etcd.io/bbolt"
)

const undatedDir = "undated"

// Materialize copies every kept image of an index into a date layout under
// rootPath. Files without metadata and files tagged for deletion are left
// out.
func Materialize(logger hclog.Logger, dbPath, indexName, rootPath string) error {
	if indexName == "" {
		return ErrEmptyIndexName
	}
	if rootPath == "" {
		return fmt.Errorf("root path cannot be empty")
	}
	db, err := getDB(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	return db.View(func(tx *bolt.Tx) error {
		b, err := getBucketForIndex(tx, indexName, hashesBucketKey)
		if err != nil {
			return err
		}

		bar := pb.StartNew(b.Stats().KeyN)
		defer bar.Finish()

		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			bar.Increment()

			entry, err := decodeEntry(v)
			if err != nil {
				return err
			}
			if entry.Image == nil {
				logger.Debug("Skipping file without metadata", "hash", fmt.Sprintf("%x", k))
				continue
			}
			if entry.hasDeleteTag() {
				logger.Debug("Skipping file tagged for deletion", "hash", fmt.Sprintf("%x", k))
				continue
			}

			paths := sortedPaths(entry)
			if len(paths) == 0 {
				continue
			}
			src := paths[0]
			dst := filepath.Join(rootPath, targetPath(k, entry, src))
			if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
				return err
			}

			_, err = os.Stat(dst)
			if os.IsNotExist(err) {
				// Fall through, we need to copy the file.
			} else if err != nil {
				return err
			} else {
				logger.Debug("Skipping copy of existing file", "path", src)
				continue
			}

			if err := copyFile(k, src, dst); err != nil {
				return fmt.Errorf("Failed to copy %q: %v", src, err)
			}
		}
		return nil
	})
}

// targetPath is YYYY/MM/<hash><ext> relative to the materialize root, or
// undated/<hash><ext> when the image has no date.
func targetPath(hash []byte, entry *indexEntry, src string) string {
	ext := filepath.Ext(src)
	if ext == "." {
		ext = ""
	}
	name := fmt.Sprintf("%x%s", hash, ext)

	t, ok := entry.Image.info().DateTaken()
	if !ok {
		return filepath.Join(undatedDir, name)
	}
	return filepath.Join(fmt.Sprintf("%04d", t.Year()), fmt.Sprintf("%02d", int(t.Month())), name)
}

func copyFile(hash []byte, src, dst string) error {
	if src == "" || dst == "" {
		return fmt.Errorf("source and destination must be set")
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	tmp, err := os.CreateTemp(filepath.Dir(dst), "")
	if err != nil {
		return err
	}

	h := sha256.New()
	tee := io.TeeReader(in, h)
	_, err = io.Copy(tmp, tee)
	if err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	// A different hash means the index is out of date.
	if !bytes.Equal(hash, h.Sum(nil)) {
		os.Remove(tmp.Name())
		return fmt.Errorf("Hash does not match, index is stale")
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return err
	}

	// Keep the time from the source file.
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}
