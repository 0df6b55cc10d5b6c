// Package client provides a typed HTTP client for the vault API, used by the
// command-line client and by integration tests.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/imgvault/imgvault/interfaces"
)

// OwnerHeader carries the owner identity the server scopes every request to.
// In production deployments an authenticating proxy sets it; the client sets
// it directly for development and testing.
const OwnerHeader = "X-Vault-Owner"

// VaultClient talks to a vault server on behalf of one owner.
type VaultClient struct {
	// ServerAddr is the base URL of the vault server.
	ServerAddr string

	// Owner is the identity sent with every request.
	Owner interfaces.OwnerID

	// HTTPClient overrides http.DefaultClient when set.
	HTTPClient *http.Client
}

func (c *VaultClient) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

// Upload encrypts and stores an image, returning its metadata record.
func (c *VaultClient) Upload(ctx context.Context, name, mimeType string, payload io.Reader, passphrase string) (*interfaces.ObjectMetadata, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	partHeader := textproto.MIMEHeader{}
	partHeader.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, name))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	partHeader.Set("Content-Type", mimeType)

	part, err := writer.CreatePart(partHeader)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, payload); err != nil {
		return nil, fmt.Errorf("could not buffer payload: %w", err)
	}
	if err := writer.WriteField("passphrase", passphrase); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.ServerAddr+"/api/images", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set(OwnerHeader, c.Owner.String())

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not request upload endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, responseError("upload", resp)
	}

	var record interfaces.ObjectMetadata
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return nil, fmt.Errorf("could not parse upload response: %w", err)
	}
	return &record, nil
}

// List returns the owner's metadata records, newest first.
func (c *VaultClient) List(ctx context.Context) ([]*interfaces.ObjectMetadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ServerAddr+"/api/images", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set(OwnerHeader, c.Owner.String())

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not request list endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, responseError("list", resp)
	}

	var records []*interfaces.ObjectMetadata
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("could not parse list response: %w", err)
	}
	return records, nil
}

// View retrieves and decrypts an object, returning the plaintext and its
// declared content type.
func (c *VaultClient) View(ctx context.Context, id interfaces.ContentID, passphrase string) ([]byte, string, error) {
	form := url.Values{"passphrase": {passphrase}}
	endpoint := fmt.Sprintf("%s/api/images/%s/view", c.ServerAddr, id.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set(OwnerHeader, c.Owner.String())

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("could not request view endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", responseError("view", resp)
	}

	plaintext, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("could not read view response: %w", err)
	}
	return plaintext, resp.Header.Get("Content-Type"), nil
}

// Delete removes an object.
func (c *VaultClient) Delete(ctx context.Context, id interfaces.ContentID) error {
	endpoint := fmt.Sprintf("%s/api/images/%s", c.ServerAddr, id.String())
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set(OwnerHeader, c.Owner.String())

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("could not request delete endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return responseError("delete", resp)
	}
	return nil
}

func responseError(op string, resp *http.Response) error {
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil || len(bodyBytes) == 0 {
		return fmt.Errorf("%s endpoint returned error %d", op, resp.StatusCode)
	}
	return fmt.Errorf("%s endpoint returned error %d: %s", op, resp.StatusCode, strings.TrimSpace(string(bodyBytes)))
}
