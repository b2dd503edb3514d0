package uploads

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"threadpost/utils"
)

// Resolver uploads attachment bytes to the external object store and returns
// the stable URL the store assigns. Uploads are unsigned, keyed by a preset
// name the way Cloudinary-style endpoints expect.
type Resolver struct {
	endpoint string
	preset   string
	client   *http.Client
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	URL       string `json:"url"`
}

// NewResolver creates an attachment resolver for the configured endpoint
func NewResolver(endpoint, preset string) *Resolver {
	return &Resolver{
		endpoint: endpoint,
		preset:   preset,
		client:   &http.Client{Timeout: 60 * time.Second},
	}
}

// Upload sends a single file to the object store and returns its URL.
// A nil file is a no-op: callers compose a message's attachment list from
// zero or more resolved references. The caller must not persist a message
// until this call has returned, so a failed upload never leaves a message
// pointing at a half-uploaded reference.
func (r *Resolver) Upload(ctx context.Context, filename string, file io.Reader) (string, error) {
	if file == nil {
		return "", nil
	}
	if r.endpoint == "" {
		return "", utils.StorageUnavailableError("Attachment storage is not configured", nil)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", utils.StorageUnavailableError("Attachment upload failed. Please try again.", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", utils.StorageUnavailableError("Attachment upload failed. Please try again.", err)
	}
	if r.preset != "" {
		if err := writer.WriteField("upload_preset", r.preset); err != nil {
			return "", utils.StorageUnavailableError("Attachment upload failed. Please try again.", err)
		}
	}
	if err := writer.Close(); err != nil {
		return "", utils.StorageUnavailableError("Attachment upload failed. Please try again.", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, &buf)
	if err != nil {
		return "", utils.StorageUnavailableError("Attachment upload failed. Please try again.", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := r.client.Do(req)
	if err != nil {
		return "", utils.StorageUnavailableError("Attachment upload failed. Please try again.", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		utils.Log.Warn("Object store rejected upload: status=%d body=%s", resp.StatusCode, body)
		return "", utils.StorageUnavailableError("Attachment upload failed. Please try again.", nil)
	}

	var result uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", utils.StorageUnavailableError("Attachment upload failed. Please try again.", err)
	}

	url := result.SecureURL
	if url == "" {
		url = result.URL
	}
	if url == "" {
		return "", utils.StorageUnavailableError("Object store returned no reference URL", nil)
	}

	return url, nil
}
