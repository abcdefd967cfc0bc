package core

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/slackpad/picmeta/metadata"
	bolt "go.etcd.io/bbolt"
)

const (
	indexesBucketKey = "INDEXES"
	hashesBucketKey  = "hashes"
)

var (
	// ErrNotInitialized is returned when the database file does not exist.
	ErrNotInitialized = errors.New("picmeta has not been initialized")

	// ErrEmptyIndexName is returned when an index name is missing.
	ErrEmptyIndexName = errors.New("index name cannot be empty")
)

// stdout is where commands print their results.
var stdout io.Writer = os.Stdout

// imageRecord is the stored form of metadata.ImageInformation.
type imageRecord struct {
	Orientation  int
	Width        int
	Height       int
	HasDeleteTag bool
	UniqueID     string
	DateTaken    time.Time
}

type indexEntry struct {
	Paths   map[string]struct{}
	Size    int64
	Outcome string
	Image   *imageRecord
	Cause   string
}

func newImageRecord(info metadata.ImageInformation) *imageRecord {
	date, _ := info.DateTaken()
	return &imageRecord{
		Orientation:  info.Orientation(),
		Width:        info.Width(),
		Height:       info.Height(),
		HasDeleteTag: info.HasDeleteTag(),
		UniqueID:     info.UniqueID(),
		DateTaken:    date,
	}
}

func (r *imageRecord) info() metadata.ImageInformation {
	return metadata.NewImageInformation(r.Orientation, r.Width, r.Height, r.HasDeleteTag, r.UniqueID, r.DateTaken)
}

func (e *indexEntry) hasDeleteTag() bool {
	return e.Image != nil && e.Image.HasDeleteTag
}

// merge adds the paths of other and takes over its metadata, which comes
// from the more recent scan.
func (e *indexEntry) merge(other *indexEntry) {
	if e == nil || other == nil {
		return
	}
	if e.Paths == nil {
		e.Paths = make(map[string]struct{})
	}
	for p := range other.Paths {
		e.Paths[p] = struct{}{}
	}
	e.Size = other.Size
	e.Outcome = other.Outcome
	e.Image = other.Image
	e.Cause = other.Cause
}

// CreateDB creates an empty database at dbPath.
func CreateDB(logger hclog.Logger, dbPath string) error {
	if _, err := os.Stat(dbPath); err == nil {
		return fmt.Errorf("database %q already exists", dbPath)
	}
	db, err := bolt.Open(dbPath, 0666, nil)
	if err != nil {
		return err
	}
	logger.Debug("Created database", "path", dbPath)
	return db.Close()
}

func getDB(dbPath string) (*bolt.DB, error) {
	_, err := os.Stat(dbPath)
	if os.IsNotExist(err) {
		return nil, ErrNotInitialized
	}

	db, err := bolt.Open(dbPath, 0666, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	return db, nil
}

func getBucketForIndexes(tx *bolt.Tx) (*bolt.Bucket, error) {
	containerKey := []byte(indexesBucketKey)

	if tx.Writable() {
		return tx.CreateBucketIfNotExists(containerKey)
	}

	all := tx.Bucket(containerKey)
	if all == nil {
		return nil, fmt.Errorf("No indexes have been created")
	}
	return all, nil
}

func getBucketForIndex(tx *bolt.Tx, indexName, subName string) (*bolt.Bucket, error) {
	if indexName == "" {
		return nil, ErrEmptyIndexName
	}
	indexKey := []byte(indexName)
	subKey := []byte(subName)

	all, err := getBucketForIndexes(tx)
	if err != nil {
		return nil, err
	}

	if tx.Writable() {
		b, err := all.CreateBucketIfNotExists(indexKey)
		if err != nil {
			return nil, err
		}

		return b.CreateBucketIfNotExists(subKey)
	}

	b := all.Bucket(indexKey)
	if b == nil {
		return nil, fmt.Errorf("Index %q does not exist", indexName)
	}

	s := b.Bucket(subKey)
	if s == nil {
		return nil, fmt.Errorf("Index is not well-formed")
	}
	return s, nil
}

func bucketExistsForIndex(tx *bolt.Tx, indexName string) bool {
	all := tx.Bucket([]byte(indexesBucketKey))
	if all == nil {
		return false
	}
	return all.Bucket([]byte(indexName)) != nil
}

func deleteBucketForIndex(tx *bolt.Tx, indexName string) error {
	all, err := tx.CreateBucketIfNotExists([]byte(indexesBucketKey))
	if err != nil {
		return err
	}

	return all.DeleteBucket([]byte(indexName))
}

func getEntry(b *bolt.Bucket, hash []byte) (*indexEntry, error) {
	if b == nil {
		return nil, fmt.Errorf("bucket cannot be nil")
	}
	if len(hash) == 0 {
		return nil, fmt.Errorf("hash cannot be empty")
	}
	v := b.Get(hash)
	if v == nil {
		return nil, nil
	}
	return decodeEntry(v)
}

func putEntry(b *bolt.Bucket, hash []byte, entry *indexEntry) error {
	if b == nil {
		return fmt.Errorf("bucket cannot be nil")
	}
	if len(hash) == 0 {
		return fmt.Errorf("hash cannot be empty")
	}
	if entry == nil {
		return fmt.Errorf("entry cannot be nil")
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(entry); err != nil {
		return err
	}
	return b.Put(hash, buf.Bytes())
}

func decodeEntry(v []byte) (*indexEntry, error) {
	buf := bytes.NewReader(v)
	var entry indexEntry
	if err := gob.NewDecoder(buf).Decode(&entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// forEachEntry calls fn for every entry of an index in hash order.
func forEachEntry(dbPath, indexName string, fn func(hash []byte, entry *indexEntry) error) error {
	if indexName == "" {
		return ErrEmptyIndexName
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

		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			entry, err := decodeEntry(v)
			if err != nil {
				return err
			}
			if err := fn(k, entry); err != nil {
				return err
			}
		}
		return nil
	})
}
