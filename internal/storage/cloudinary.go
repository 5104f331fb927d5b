package storage

import (
	"bytes"
	"crypto/sha1"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"
)

// CloudinaryStore uploads media to a Cloudinary-compatible HTTP API using
// signed requests.
type CloudinaryStore struct {
	cloudName string
	apiKey    string
	apiSecret string
	client    *http.Client
}

func NewCloudinaryStore(cloudName, apiKey, apiSecret string) *CloudinaryStore {
	return &CloudinaryStore{
		cloudName: cloudName,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

type cloudinaryUploadResponse struct {
	SecureURL    string `json:"secure_url"`
	PublicID     string `json:"public_id"`
	ResourceType string `json:"resource_type"`
	Error        struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (s *CloudinaryStore) Put(data []byte, folder, filename string) (*PutResult, error) {
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	signature := s.sign("folder=" + folder + "&timestamp=" + ts)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	_ = w.WriteField("api_key", s.apiKey)
	_ = w.WriteField("timestamp", ts)
	_ = w.WriteField("folder", folder)
	_ = w.WriteField("signature", signature)
	if err := w.Close(); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("https://api.cloudinary.com/v1_1/%s/auto/upload", s.cloudName)
	req, err := http.NewRequest(http.MethodPost, url, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("object store upload: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var parsed cloudinaryUploadResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("object store upload: bad response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || parsed.SecureURL == "" {
		msg := parsed.Error.Message
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("object store upload failed: %s", msg)
	}

	resourceType := parsed.ResourceType
	if resourceType != "video" {
		resourceType = "image"
	}
	return &PutResult{
		URL:          parsed.SecureURL,
		PublicID:     parsed.PublicID,
		ResourceType: resourceType,
	}, nil
}

func (s *CloudinaryStore) Delete(publicID string) error {
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	signature := s.sign("public_id=" + publicID + "&timestamp=" + ts)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	_ = w.WriteField("public_id", publicID)
	_ = w.WriteField("api_key", s.apiKey)
	_ = w.WriteField("timestamp", ts)
	_ = w.WriteField("signature", signature)
	if err := w.Close(); err != nil {
		return err
	}

	url := fmt.Sprintf("https://api.cloudinary.com/v1_1/%s/image/destroy", s.cloudName)
	req, err := http.NewRequest(http.MethodPost, url, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("object store destroy: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("object store destroy failed: status %d", resp.StatusCode)
	}
	return nil
}

func (s *CloudinaryStore) sign(params string) string {
	h := sha1.Sum([]byte(params + s.apiSecret))
	return fmt.Sprintf("%x", h)
}
