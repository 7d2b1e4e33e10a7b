package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/emezab/registro/internal/common"
)

// Category identifies which attachment slot a blob belongs to. The values
// double as upload form hints and storage-key folders.
type Category string

const (
	CategoryFrontID  Category = "ine-front"
	CategoryBackID   Category = "ine-back"
	CategoryPortrait Category = "selfie"
)

// UploadResult is the remote location of a successfully uploaded blob.
type UploadResult struct {
	URL string `json:"url"`
	Key string `json:"s3Key"`
}

// Uploader pushes one attachment blob to remote object storage.
type Uploader interface {
	Upload(ctx context.Context, blob []byte, filename string, category Category) (*UploadResult, error)
}

// APIUploader uploads through the registry API's multipart endpoints, which
// store the blob and return its public URL and storage key.
type APIUploader struct {
	baseURL string
	http    *http.Client
}

// NewAPIUploader returns an uploader for the API rooted at baseURL.
func NewAPIUploader(baseURL string) *APIUploader {
	return &APIUploader{
		baseURL: baseURL,
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

func (u *APIUploader) Upload(ctx context.Context, blob []byte, filename string, category Category) (*UploadResult, error) {
	endpoint, field := "/api/ine/upload", "ine"
	if category == CategoryPortrait {
		endpoint, field = "/api/selfie/upload", "selfie"
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUploadFailed, err)
	}
	if _, err := fw.Write(blob); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUploadFailed, err)
	}
	// the ID endpoint needs to know which side of the document this is
	switch category {
	case CategoryFrontID:
		if err := mw.WriteField("side", "front"); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrUploadFailed, err)
		}
	case CategoryBackID:
		if err := mw.WriteField("side", "back"); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrUploadFailed, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUploadFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.baseURL+endpoint, &body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUploadFailed, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := u.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUploadFailed, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUploadFailed, err)
	}
	if resp.StatusCode != http.StatusOK {
		var ae apiError
		_ = json.Unmarshal(data, &ae)
		if ae.Error != "" {
			return nil, fmt.Errorf("%w: %s", common.ErrUploadFailed, ae.Error)
		}
		return nil, fmt.Errorf("%w: status %d", common.ErrUploadFailed, resp.StatusCode)
	}

	result := &UploadResult{}
	if err := json.Unmarshal(data, result); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUploadFailed, err)
	}
	if result.URL == "" || result.Key == "" {
		return nil, fmt.Errorf("%w: incomplete upload response", common.ErrUploadFailed)
	}
	return result, nil
}

// UploadFilename builds the conventional filename for a category, e.g.
// "ine-front-1717243200.jpg".
func UploadFilename(category Category) string {
	return fmt.Sprintf("%s-%d.jpg", category, time.Now().Unix())
}
