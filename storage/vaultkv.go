package storage

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hashicorp/vault/api"
	"github.com/imgvault/imgvault/interfaces"
)

// VaultKVBackend implements a blob store using HashiCorp Vault's KV v2
// engine. Ciphertext is stored base64-encoded inside the secret payload.
// Suitable for small deployments that already run Vault; large blobs belong
// in S3 or the file backend.
type VaultKVBackend struct {
	client      *api.Client
	mountPath   string
	dataPath    string
	log         *slog.Logger
	locationURI string
}

// NewVaultKVBackend creates a new Vault KV blob store.
//
// Parameters:
//   - address: Vault server address (e.g. https://vault.example.com:8200)
//   - mountPath: KV v2 mount path (e.g. "secret")
//   - dataPath: Path within the mount (e.g. "imgvault")
//   - token: Vault token; falls back to the VAULT_TOKEN environment variable
//     when empty
//   - log: Structured logger for operational insights
func NewVaultKVBackend(address, mountPath, dataPath, token string, log *slog.Logger) (*VaultKVBackend, error) {
	config := api.DefaultConfig()
	config.Address = address
	config.Timeout = 30 * time.Second

	client, err := api.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vault client: %w", err)
	}
	if token != "" {
		client.SetToken(token)
	}

	mountPath = strings.Trim(mountPath, "/")
	dataPath = strings.Trim(dataPath, "/")

	return &VaultKVBackend{
		client:      client,
		mountPath:   mountPath,
		dataPath:    dataPath,
		log:         log,
		locationURI: fmt.Sprintf("vault://%s/%s/%s", address, mountPath, dataPath),
	}, nil
}

// Fetch retrieves a blob from Vault by its content identifier.
// It uses the KV v2 API which requires a specific path structure.
func (b *VaultKVBackend) Fetch(ctx context.Context, id interfaces.ContentID) ([]byte, error) {
	start := time.Now()
	path := b.dataPathFor(id)

	secret, err := b.client.Logical().ReadWithContext(ctx, path)
	if err != nil {
		b.log.Error("Failed to read from Vault",
			slog.String("path", path),
			"err", err)
		return nil, fmt.Errorf("%w: %v", interfaces.ErrBackendUnavailable, err)
	}

	if secret == nil || secret.Data == nil {
		b.log.Debug("Blob not found in Vault", slog.String("path", path))
		return nil, interfaces.ErrContentNotFound
	}

	// KV v2 nests the payload under "data"
	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("invalid data format in Vault response")
	}

	encoded, ok := data["blob"].(string)
	if !ok {
		return nil, fmt.Errorf("blob key not found in Vault data")
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode blob from Vault: %w", err)
	}

	b.log.Debug("Fetched blob from Vault",
		slog.String("contentID", id.String()),
		slog.Duration("duration", time.Since(start)))

	return raw, nil
}

// Store saves a blob to Vault and returns its content identifier,
// the SHA-256 hash of the data.
func (b *VaultKVBackend) Store(ctx context.Context, data []byte) (interfaces.ContentID, error) {
	start := time.Now()
	id := interfaces.ComputeID(data)
	path := b.dataPathFor(id)

	secretData := map[string]interface{}{
		"data": map[string]interface{}{
			"blob": base64.StdEncoding.EncodeToString(data),
		},
	}

	if _, err := b.client.Logical().WriteWithContext(ctx, path, secretData); err != nil {
		b.log.Error("Failed to write to Vault",
			slog.String("path", path),
			"err", err)
		return id, fmt.Errorf("%w: %v", interfaces.ErrBackendUnavailable, err)
	}

	b.log.Debug("Stored blob in Vault",
		slog.String("contentID", id.String()),
		slog.Duration("duration", time.Since(start)))

	return id, nil
}

// Delete removes a blob and all its KV versions from Vault.
// Returns ErrContentNotFound if the blob is already absent.
func (b *VaultKVBackend) Delete(ctx context.Context, id interfaces.ContentID) error {
	dataPath := b.dataPathFor(id)

	secret, err := b.client.Logical().ReadWithContext(ctx, dataPath)
	if err != nil {
		return fmt.Errorf("%w: %v", interfaces.ErrBackendUnavailable, err)
	}
	if secret == nil || secret.Data == nil {
		return interfaces.ErrContentNotFound
	}

	// Deleting metadata removes every version of the secret.
	metadataPath := fmt.Sprintf("%s/metadata/%s/%s", b.mountPath, b.dataPath, id.String())
	if _, err := b.client.Logical().DeleteWithContext(ctx, metadataPath); err != nil {
		return fmt.Errorf("failed to delete blob from Vault: %w", err)
	}

	b.log.Debug("Deleted blob from Vault", slog.String("contentID", id.String()))
	return nil
}

// Available checks if the Vault backend is accessible.
// It uses the health endpoint to verify that Vault is initialized and unsealed.
func (b *VaultKVBackend) Available(ctx context.Context) bool {
	healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	health, err := b.client.Sys().HealthWithContext(healthCtx)
	if err != nil {
		b.log.Debug("Vault health check failed", "err", err)
		return false
	}

	if !health.Initialized || health.Sealed {
		b.log.Debug("Vault is not available",
			slog.Bool("initialized", health.Initialized),
			slog.Bool("sealed", health.Sealed))
		return false
	}

	return true
}

// Name returns a unique identifier for this blob store backend.
func (b *VaultKVBackend) Name() string {
	return fmt.Sprintf("vault-%s-%s", b.mountPath, b.dataPath)
}

// LocationURI returns the URI that identifies this backend.
func (b *VaultKVBackend) LocationURI() string {
	return b.locationURI
}

// dataPathFor builds the KV v2 data path for a content ID.
func (b *VaultKVBackend) dataPathFor(id interfaces.ContentID) string {
	return fmt.Sprintf("%s/data/%s/%s", b.mountPath, b.dataPath, id.String())
}
