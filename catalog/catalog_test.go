package catalog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/imgvault/imgvault/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Both adapters must behave identically, so the suite runs against each.
func catalogs(t *testing.T) map[string]interfaces.MetadataCatalog {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bolt, err := OpenBoltCatalog(filepath.Join(t.TempDir(), "catalog.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = bolt.Close() })

	return map[string]interfaces.MetadataCatalog{
		"bolt":   bolt,
		"memory": NewMemoryCatalog(),
	}
}

func testRecord(owner interfaces.OwnerID, seed byte, createdAt time.Time) *interfaces.ObjectMetadata {
	var id interfaces.ContentID
	id[0] = seed

	return &interfaces.ObjectMetadata{
		ContentID:        id,
		Owner:            owner,
		OriginalName:     "holiday.jpg",
		DeclaredMimeType: "image/jpeg",
		Algorithm:        interfaces.AlgorithmAES256CBC,
		IV:               make([]byte, 16),
		KDFSalt:          make([]byte, 16),
		Checksum:         make([]byte, 32),
		Size:             42,
		CreatedAt:        createdAt,
	}
}

func TestCatalog_PutGetRoundTrip(t *testing.T) {
	for name, cat := range catalogs(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			record := testRecord("alice", 1, time.Now().UTC().Truncate(time.Millisecond))

			require.NoError(t, cat.Put(ctx, record))

			got, err := cat.Get(ctx, "alice", record.ContentID)
			require.NoError(t, err)
			assert.Equal(t, record.ContentID, got.ContentID)
			assert.Equal(t, record.Owner, got.Owner)
			assert.Equal(t, record.OriginalName, got.OriginalName)
			assert.Equal(t, record.IV, got.IV)
			assert.True(t, record.CreatedAt.Equal(got.CreatedAt))
		})
	}
}

func TestCatalog_GetMissing(t *testing.T) {
	for name, cat := range catalogs(t) {
		t.Run(name, func(t *testing.T) {
			var id interfaces.ContentID
			_, err := cat.Get(context.Background(), "alice", id)
			assert.True(t, errors.Is(err, interfaces.ErrRecordNotFound))
		})
	}
}

func TestCatalog_OwnerScoping(t *testing.T) {
	for name, cat := range catalogs(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			record := testRecord("alice", 2, time.Now())
			require.NoError(t, cat.Put(ctx, record))

			// Another owner sees neither the record nor a hint it exists.
			_, err := cat.Get(ctx, "bob", record.ContentID)
			assert.True(t, errors.Is(err, interfaces.ErrRecordNotFound))

			err = cat.Delete(ctx, "bob", record.ContentID)
			assert.True(t, errors.Is(err, interfaces.ErrRecordNotFound))

			// The owner's copy is untouched.
			_, err = cat.Get(ctx, "alice", record.ContentID)
			assert.NoError(t, err)
		})
	}
}

func TestCatalog_Delete(t *testing.T) {
	for name, cat := range catalogs(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			record := testRecord("alice", 3, time.Now())
			require.NoError(t, cat.Put(ctx, record))

			require.NoError(t, cat.Delete(ctx, "alice", record.ContentID))

			_, err := cat.Get(ctx, "alice", record.ContentID)
			assert.True(t, errors.Is(err, interfaces.ErrRecordNotFound))

			err = cat.Delete(ctx, "alice", record.ContentID)
			assert.True(t, errors.Is(err, interfaces.ErrRecordNotFound))
		})
	}
}

func TestCatalog_ListOwnerNewestFirst(t *testing.T) {
	for name, cat := range catalogs(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			base := time.Now().UTC()

			require.NoError(t, cat.Put(ctx, testRecord("alice", 10, base.Add(-2*time.Hour))))
			require.NoError(t, cat.Put(ctx, testRecord("alice", 11, base)))
			require.NoError(t, cat.Put(ctx, testRecord("alice", 12, base.Add(-time.Hour))))
			require.NoError(t, cat.Put(ctx, testRecord("bob", 13, base)))

			records, err := cat.ListOwner(ctx, "alice")
			require.NoError(t, err)
			require.Len(t, records, 3)

			assert.Equal(t, byte(11), records[0].ContentID[0])
			assert.Equal(t, byte(12), records[1].ContentID[0])
			assert.Equal(t, byte(10), records[2].ContentID[0])
		})
	}
}

func TestCatalog_ListOwnerEmpty(t *testing.T) {
	for name, cat := range catalogs(t) {
		t.Run(name, func(t *testing.T) {
			records, err := cat.ListOwner(context.Background(), "nobody")
			require.NoError(t, err)
			assert.Empty(t, records)
		})
	}
}

func TestBoltCatalog_PersistsAcrossReopen(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dbPath := filepath.Join(t.TempDir(), "catalog.db")
	ctx := context.Background()

	cat, err := OpenBoltCatalog(dbPath, logger)
	require.NoError(t, err)

	record := testRecord("alice", 42, time.Now())
	require.NoError(t, cat.Put(ctx, record))
	require.NoError(t, cat.Close())

	reopened, err := OpenBoltCatalog(dbPath, logger)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, "alice", record.ContentID)
	require.NoError(t, err)
	assert.Equal(t, record.ContentID, got.ContentID)
}
