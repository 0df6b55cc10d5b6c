package catalog

import (
	"context"
	"sort"
	"sync"

	"github.com/imgvault/imgvault/interfaces"
)

// MemoryCatalog implements interfaces.MetadataCatalog in process memory.
// Safe for concurrent use. Intended for tests and ephemeral deployments.
type MemoryCatalog struct {
	mu      sync.RWMutex
	records map[interfaces.OwnerID]map[interfaces.ContentID]*interfaces.ObjectMetadata
}

// NewMemoryCatalog creates an empty in-memory catalog.
func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{
		records: make(map[interfaces.OwnerID]map[interfaces.ContentID]*interfaces.ObjectMetadata),
	}
}

// Put persists a new record.
func (c *MemoryCatalog) Put(ctx context.Context, record *interfaces.ObjectMetadata) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ownerRecords, ok := c.records[record.Owner]
	if !ok {
		ownerRecords = make(map[interfaces.ContentID]*interfaces.ObjectMetadata)
		c.records[record.Owner] = ownerRecords
	}

	clone := *record
	ownerRecords[record.ContentID] = &clone
	return nil
}

// Get returns the record for (owner, id), or ErrRecordNotFound.
func (c *MemoryCatalog) Get(ctx context.Context, owner interfaces.OwnerID, id interfaces.ContentID) (*interfaces.ObjectMetadata, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	record, ok := c.records[owner][id]
	if !ok {
		return nil, interfaces.ErrRecordNotFound
	}

	clone := *record
	return &clone, nil
}

// Delete removes the record for (owner, id), or returns ErrRecordNotFound.
func (c *MemoryCatalog) Delete(ctx context.Context, owner interfaces.OwnerID, id interfaces.ContentID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.records[owner][id]; !ok {
		return interfaces.ErrRecordNotFound
	}

	delete(c.records[owner], id)
	return nil
}

// ListOwner returns all records belonging to one owner, newest first.
func (c *MemoryCatalog) ListOwner(ctx context.Context, owner interfaces.OwnerID) ([]*interfaces.ObjectMetadata, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	records := make([]*interfaces.ObjectMetadata, 0, len(c.records[owner]))
	for _, record := range c.records[owner] {
		clone := *record
		records = append(records, &clone)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	return records, nil
}

// Close is a no-op for the in-memory catalog.
func (c *MemoryCatalog) Close() error { return nil }
