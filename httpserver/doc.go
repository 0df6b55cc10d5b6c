/*
Package httpserver exposes the vault pipelines over HTTP.

The API trusts an upstream-authenticated owner identity presented in the
X-Vault-Owner header; the server performs no authentication of its own. Every
route is scoped to that owner.

# API routes

  - POST /api/images - multipart upload ("image" file part, "passphrase" and
    optional "algorithm" fields), returns the created metadata record
  - GET /api/images - the owner's records, newest first
  - POST /api/images/{content_id}/view - decrypts with the passphrase from the
    form body and returns the plaintext under its declared content type
  - DELETE /api/images/{content_id} - removes the object

# Operational endpoints

  - GET /livez, /readyz - health and readiness probes
  - GET /drain, /undrain - flip readiness for graceful rollout draining
  - /debug - optional pprof profiler

Pipeline error categories map onto status codes: invalid input 400, not found
or unauthorized 404, decryption failure 403, integrity error 500, storage
write or delete failure 502. Bodies carry only the generic category; key
material and internal detail never leave through this layer.

Prometheus metrics are served from a separate listener so scraping is
unaffected by API draining or load.
*/
package httpserver
