package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/imgvault/imgvault/interfaces"
	"go.etcd.io/bbolt"
)

var bucketObjects = []byte("objects")

// BoltCatalog implements interfaces.MetadataCatalog backed by a bbolt
// database. Records are JSON-encoded inside a nested bucket per owner.
type BoltCatalog struct {
	db  *bbolt.DB
	log *slog.Logger
}

// OpenBoltCatalog opens or creates the bbolt database at dbPath.
// The parent directory is created if it does not exist.
func OpenBoltCatalog(dbPath string, log *slog.Logger) (*BoltCatalog, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("catalog: create directory: %w", err)
	}

	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("catalog: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketObjects)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("catalog: create root bucket: %w", err)
	}

	return &BoltCatalog{db: db, log: log}, nil
}

// Close closes the underlying database.
func (c *BoltCatalog) Close() error { return c.db.Close() }

// Put persists a new record inside the owner's bucket in one transaction.
func (c *BoltCatalog) Put(ctx context.Context, record *interfaces.ObjectMetadata) error {
	encoded, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("catalog: encode record: %w", err)
	}

	err = c.db.Update(func(tx *bbolt.Tx) error {
		owners := tx.Bucket(bucketObjects)
		ownerBucket, err := owners.CreateBucketIfNotExists([]byte(record.Owner))
		if err != nil {
			return fmt.Errorf("create owner bucket: %w", err)
		}
		return ownerBucket.Put(record.ContentID.Bytes(), encoded)
	})
	if err != nil {
		return fmt.Errorf("catalog: put record: %w", err)
	}

	c.log.Debug("Stored metadata record",
		slog.String("owner", record.Owner.String()),
		slog.String("contentID", record.ContentID.String()))

	return nil
}

// Get returns the record for (owner, id), or ErrRecordNotFound. Records
// stored under a different owner are structurally invisible.
func (c *BoltCatalog) Get(ctx context.Context, owner interfaces.OwnerID, id interfaces.ContentID) (*interfaces.ObjectMetadata, error) {
	var record *interfaces.ObjectMetadata

	err := c.db.View(func(tx *bbolt.Tx) error {
		ownerBucket := tx.Bucket(bucketObjects).Bucket([]byte(owner))
		if ownerBucket == nil {
			return interfaces.ErrRecordNotFound
		}

		encoded := ownerBucket.Get(id.Bytes())
		if encoded == nil {
			return interfaces.ErrRecordNotFound
		}

		record = &interfaces.ObjectMetadata{}
		if err := json.Unmarshal(encoded, record); err != nil {
			return fmt.Errorf("decode record: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return record, nil
}

// Delete removes the record for (owner, id), or returns ErrRecordNotFound.
func (c *BoltCatalog) Delete(ctx context.Context, owner interfaces.OwnerID, id interfaces.ContentID) error {
	err := c.db.Update(func(tx *bbolt.Tx) error {
		ownerBucket := tx.Bucket(bucketObjects).Bucket([]byte(owner))
		if ownerBucket == nil {
			return interfaces.ErrRecordNotFound
		}
		if ownerBucket.Get(id.Bytes()) == nil {
			return interfaces.ErrRecordNotFound
		}
		return ownerBucket.Delete(id.Bytes())
	})
	if err != nil {
		return err
	}

	c.log.Debug("Deleted metadata record",
		slog.String("owner", owner.String()),
		slog.String("contentID", id.String()))

	return nil
}

// ListOwner returns all records belonging to one owner, newest first.
func (c *BoltCatalog) ListOwner(ctx context.Context, owner interfaces.OwnerID) ([]*interfaces.ObjectMetadata, error) {
	var records []*interfaces.ObjectMetadata

	err := c.db.View(func(tx *bbolt.Tx) error {
		ownerBucket := tx.Bucket(bucketObjects).Bucket([]byte(owner))
		if ownerBucket == nil {
			return nil
		}

		return ownerBucket.ForEach(func(_, encoded []byte) error {
			record := &interfaces.ObjectMetadata{}
			if err := json.Unmarshal(encoded, record); err != nil {
				return fmt.Errorf("decode record: %w", err)
			}
			records = append(records, record)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("catalog: list owner: %w", err)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	return records, nil
}
