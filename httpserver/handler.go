package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/imgvault/imgvault/interfaces"
	"github.com/imgvault/imgvault/vault"
)

// ownerHeader carries the upstream-authenticated owner identity. The vault
// trusts this header; authenticating the caller is the proxy's job.
const ownerHeader = "X-Vault-Owner"

// maxMultipartMemory bounds the in-memory portion of multipart parsing;
// larger parts spill to temp files.
const maxMultipartMemory = 8 << 20

// Handler translates HTTP requests into vault pipeline invocations and
// pipeline errors back into status codes. Response bodies stay generic: no
// key material, salts or internal paths ever leave through this layer.
type Handler struct {
	vault *vault.Service
	log   *slog.Logger
}

// NewHandler creates a request handler backed by the given vault service.
func NewHandler(svc *vault.Service, log *slog.Logger) *Handler {
	return &Handler{vault: svc, log: log}
}

// HandleUpload handles POST /api/images: a multipart form with an "image"
// file part plus "passphrase" and optional "algorithm" fields.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.requireOwner(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		h.writeError(w, fmt.Errorf("%w: malformed multipart form", interfaces.ErrInvalidInput))
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		h.writeError(w, fmt.Errorf("%w: missing image file part", interfaces.ErrInvalidInput))
		return
	}
	defer file.Close()

	algorithm := interfaces.Algorithm(r.FormValue("algorithm"))
	if algorithm == "" {
		algorithm = interfaces.AlgorithmAES256CBC
	}

	record, err := h.vault.Upload(r.Context(), vault.UploadRequest{
		Owner:            owner,
		Payload:          file,
		OriginalName:     header.Filename,
		DeclaredMimeType: header.Header.Get("Content-Type"),
		Algorithm:        algorithm,
		Passphrase:       r.FormValue("passphrase"),
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, record)
}

// HandleList handles GET /api/images: the owner's records, newest first.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.requireOwner(w, r)
	if !ok {
		return
	}

	records, err := h.vault.List(r.Context(), owner)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if records == nil {
		records = []*interfaces.ObjectMetadata{}
	}

	h.writeJSON(w, http.StatusOK, records)
}

// HandleView handles POST /api/images/{content_id}/view: decrypts the object
// with the passphrase from the form body and streams the plaintext back under
// its declared content type.
func (h *Handler) HandleView(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.requireOwner(w, r)
	if !ok {
		return
	}
	id, ok := h.contentID(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		h.writeError(w, fmt.Errorf("%w: malformed form body", interfaces.ErrInvalidInput))
		return
	}

	plaintext, record, err := h.vault.Retrieve(r.Context(), owner, id, r.FormValue("passphrase"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	contentType := record.DeclaredMimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(plaintext)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(plaintext); err != nil {
		h.log.Debug("Failed writing plaintext response", "err", err)
	}
}

// HandleDelete handles DELETE /api/images/{content_id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.requireOwner(w, r)
	if !ok {
		return
	}
	id, ok := h.contentID(w, r)
	if !ok {
		return
	}

	if err := h.vault.Delete(r.Context(), owner, id); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) requireOwner(w http.ResponseWriter, r *http.Request) (interfaces.OwnerID, bool) {
	owner := interfaces.OwnerID(r.Header.Get(ownerHeader))
	if owner == "" {
		h.writeError(w, fmt.Errorf("%w: missing %s header", interfaces.ErrInvalidInput, ownerHeader))
		return "", false
	}
	return owner, true
}

func (h *Handler) contentID(w http.ResponseWriter, r *http.Request) (interfaces.ContentID, bool) {
	id, err := interfaces.NewContentIDFromHex(chi.URLParam(r, "content_id"))
	if err != nil {
		h.writeError(w, fmt.Errorf("%w: malformed content id", interfaces.ErrInvalidInput))
		return interfaces.ContentID{}, false
	}
	return id, true
}

// writeError maps pipeline errors onto status codes. The response body is a
// generic category message; detail stays in the server log.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, interfaces.ErrInvalidInput):
		status, message = http.StatusBadRequest, "invalid input"
	case errors.Is(err, interfaces.ErrNotFoundOrUnauthorized):
		status, message = http.StatusNotFound, "not found"
	case errors.Is(err, interfaces.ErrDecryptionFailed):
		status, message = http.StatusForbidden, "decryption failed"
	case errors.Is(err, interfaces.ErrIntegrity):
		status, message = http.StatusInternalServerError, "integrity error"
	case errors.Is(err, interfaces.ErrStorageWrite), errors.Is(err, interfaces.ErrStorageDelete):
		status, message = http.StatusBadGateway, "storage error"
	}

	if status >= http.StatusInternalServerError {
		h.log.Error("Request failed", "status", status, "err", err)
	} else {
		h.log.Debug("Request rejected", "status", status, "err", err)
	}

	h.writeJSON(w, status, map[string]string{"error": message})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Debug("Failed encoding response", "err", err)
	}
}
