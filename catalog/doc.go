// Package catalog provides metadata catalog adapters holding one record per
// encrypted object, keyed by owner and content ID.
//
// Two implementations are provided:
//
//   - BoltCatalog persists records in a bbolt database with one nested bucket
//     per owner, so lookups and deletes are structurally scoped to the owner
//     and cross-owner probing is impossible at the storage layer.
//   - MemoryCatalog keeps records in a mutex-guarded map, for tests and
//     ephemeral deployments.
//
// Every operation is a single atomic record write, read or delete; the
// consistency between a record and its ciphertext blob is the pipelines'
// responsibility.
package catalog
