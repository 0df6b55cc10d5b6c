// Package vault implements the encrypted object pipelines: upload, retrieval
// and deletion, composed from an injected blob store and metadata catalog.
//
// One logical encrypted object is materialized across the two stores: the
// blob store holds only ciphertext, addressed by content ID; the catalog
// holds the owner, the IV, the KDF salt and display attributes. The pipelines
// own the consistency discipline between them.
//
// # Upload
//
// Validation happens before any I/O. The payload is optionally compressed,
// encrypted under a key derived from the caller's passphrase with a fresh
// per-object salt and a fresh IV, written to the blob store, and only then
// recorded in the catalog. A reader can therefore trust that any record it
// observes references a durable blob. If the metadata write fails, the
// pipeline deletes the just-written blob; if that compensating delete also
// fails, the orphan is logged for out-of-band reconciliation. This is the one
// place partial failure is tolerated rather than retried inline.
//
// # Retrieval
//
// Lookup is scoped to the requesting owner; a record that does not exist and
// a record owned by someone else produce the identical not-found error.
// Decryption failures (wrong passphrase or corrupted ciphertext) are a
// distinct outcome, never folded into generic server errors and never broken
// down further.
//
// # Deletion
//
// The blob is deleted before the record, so a successful deletion can never
// leave a metadata-only object behind. A blob that is already absent is
// tolerated; any other blob-store failure keeps the record discoverable
// rather than silently orphaning it.
//
// Each pipeline invocation is an independent request-scoped unit of work with
// no shared mutable state; invocations for different objects proceed fully in
// parallel. The pipelines perform no automatic retries: retrying cannot fix a
// wrong passphrase, and retrying a store write risks duplicate writes.
package vault
