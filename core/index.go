package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cheggaaa/pb/v3"
	"github.com/hashicorp/go-hclog"
	"github.com/slackpad/picmeta/config"
	"github.com/slackpad/picmeta/metadata"
	"github.com/slackpad/picmeta/metrics"
	bolt "go.etcd.io/bbolt"
)

const dateFormat = "2006-01-02 15:04:05"

// IndexAdd resolves every file under rootPath and records the outcomes in
// the named index, keyed by content hash.
func IndexAdd(logger hclog.Logger, cfg *config.Config, indexName, rootPath string) error {
	if indexName == "" {
		return ErrEmptyIndexName
	}
	if rootPath == "" {
		return fmt.Errorf("root path cannot be empty")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	paths, err := collectFiles(rootPath)
	if err != nil {
		return err
	}
	logger.Info("Indexing files", "index", indexName, "root", rootPath, "files", len(paths))

	db, err := getDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	m := metrics.New()
	s := &scanner{
		logger:   logger,
		resolver: metadata.NewResolver(),
		workers:  cfg.Workers,
		timeout:  cfg.FileTimeout,
		metrics:  m,
	}

	bar := pb.StartNew(len(paths))
	err = db.Update(func(tx *bolt.Tx) error {
		b, err := getBucketForIndex(tx, indexName, hashesBucketKey)
		if err != nil {
			return err
		}

		return s.run(context.Background(), paths, func(r scanResult) error {
			defer bar.Increment()

			update := newEntry(r)
			entry, err := getEntry(b, r.hash)
			if err != nil {
				return err
			}
			if entry == nil {
				entry = update
			} else {
				entry.merge(update)
			}
			return putEntry(b, r.hash, entry)
		})
	})
	bar.Finish()
	if err != nil {
		return err
	}

	if cfg.MetricsFile != "" {
		if err := m.WriteTextfile(cfg.MetricsFile); err != nil {
			logger.Warn("Unable to write metrics", "path", cfg.MetricsFile, "error", err)
		}
	}
	return nil
}

// collectFiles returns the regular files under rootPath in walk order.
func collectFiles(rootPath string) ([]string, error) {
	var paths []string
	err := filepath.Walk(rootPath,
		func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			if !info.Mode().IsRegular() {
				return nil
			}

			paths = append(paths, path)
			return nil
		})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

// IndexList prints the names of all indexes.
func IndexList(logger hclog.Logger, dbPath string) error {
	db, err := getDB(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	return db.View(func(tx *bolt.Tx) error {
		all := tx.Bucket([]byte(indexesBucketKey))
		if all == nil {
			return nil
		}

		return all.ForEach(func(k, v []byte) error {
			// Only nested buckets are indexes.
			if v == nil {
				fmt.Fprintln(stdout, string(k))
			}
			return nil
		})
	})
}

// IndexCat prints one row per hash in the index.
func IndexCat(logger hclog.Logger, dbPath, indexName string) error {
	rows := []string{tableRow("Hash", "Outcome", "Size", "Orientation", "Dimensions", "Date", "Delete", "Unique ID", "Paths")}
	err := forEachEntry(dbPath, indexName, func(hash []byte, entry *indexEntry) error {
		orientation, dims, date, del, id := "-", "-", "-", "-", "-"
		if entry.Image != nil {
			info := entry.Image.info()
			orientation = fmt.Sprintf("%d", info.Orientation())
			dims = fmt.Sprintf("%dx%d", info.Width(), info.Height())
			if t, ok := info.DateTaken(); ok {
				date = t.Format(dateFormat)
			}
			del = fmt.Sprintf("%t", info.HasDeleteTag())
			if info.UniqueID() != "" {
				id = info.UniqueID()
			}
		}
		rows = append(rows, tableRow(fmt.Sprintf("%x", hash), entry.Outcome, fmt.Sprintf("%d", entry.Size),
			orientation, dims, date, del, id, strings.Join(sortedPaths(entry), ",")))
		return nil
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, formatTable(rows))
	return nil
}

type indexStats struct {
	hashes       int
	files        int
	dups         int
	bytes        int64
	outcomes     map[string]int
	orientations map[int]int
	tagged       int
	transposed   int
	undated      int
}

func collectStats(dbPath, indexName string) (*indexStats, error) {
	stats := &indexStats{
		outcomes:     make(map[string]int),
		orientations: make(map[int]int),
	}
	err := forEachEntry(dbPath, indexName, func(hash []byte, entry *indexEntry) error {
		stats.hashes++
		stats.bytes += entry.Size
		stats.files += len(entry.Paths)
		if len(entry.Paths) > 1 {
			stats.dups++
		}
		stats.outcomes[entry.Outcome]++

		if entry.Image == nil {
			return nil
		}
		info := entry.Image.info()
		stats.orientations[info.Orientation()]++
		if info.HasDeleteTag() {
			stats.tagged++
		}
		if info.Transposed() {
			stats.transposed++
		}
		if _, ok := info.DateTaken(); !ok {
			stats.undated++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// IndexStats prints outcome and orientation counts and a summary for the
// index.
func IndexStats(logger hclog.Logger, dbPath, indexName string) error {
	stats, err := collectStats(dbPath, indexName)
	if err != nil {
		return err
	}

	var rows []string
	for o, c := range stats.outcomes {
		rows = append(rows, tableRow(o, fmt.Sprintf("%d", c)))
	}
	sort.Strings(rows)
	rows = append([]string{tableRow("Outcome", "Hash Count")}, rows...)
	fmt.Fprintln(stdout, formatTable(rows))
	fmt.Fprintln(stdout, "")

	var codes []int
	for o := range stats.orientations {
		codes = append(codes, o)
	}
	sort.Ints(codes)
	rows = []string{tableRow("Orientation", "Hash Count")}
	for _, o := range codes {
		rows = append(rows, tableRow(fmt.Sprintf("%d", o), fmt.Sprintf("%d", stats.orientations[o])))
	}
	fmt.Fprintln(stdout, formatTable(rows))
	fmt.Fprintln(stdout, "")
	fmt.Fprintf(stdout, "%d hashes for %d files (%d hashes with duplicates); %d bytes total\n",
		stats.hashes, stats.files, stats.dups, stats.bytes)
	fmt.Fprintf(stdout, "%d tagged for deletion, %d transposed, %d without a date\n",
		stats.tagged, stats.transposed, stats.undated)
	return nil
}

// IndexTagged prints the paths of every file carrying the delete keyword.
func IndexTagged(logger hclog.Logger, dbPath, indexName string) error {
	paths, err := taggedPaths(dbPath, indexName)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintln(stdout, p)
	}
	return nil
}

func taggedPaths(dbPath, indexName string) ([]string, error) {
	var paths []string
	err := forEachEntry(dbPath, indexName, func(hash []byte, entry *indexEntry) error {
		if entry.hasDeleteTag() {
			paths = append(paths, sortedPaths(entry)...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

// IndexDelete removes an index and everything in it.
func IndexDelete(logger hclog.Logger, dbPath, indexName string) error {
	if indexName == "" {
		return ErrEmptyIndexName
	}
	db, err := getDB(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	return db.Update(func(tx *bolt.Tx) error {
		if !bucketExistsForIndex(tx, indexName) {
			return fmt.Errorf("Index %q does not exist", indexName)
		}

		return deleteBucketForIndex(tx, indexName)
	})
}

func sortedPaths(entry *indexEntry) []string {
	paths := make([]string, 0, len(entry.Paths))
	for p := range entry.Paths {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
