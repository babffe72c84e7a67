package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"dentascope/dataset"
	"dentascope/editor"
	"dentascope/models"
)

// Client talks to the annotation service's HTTP API. It implements
// editor.Saver, so an Autosaver can flush a session straight to the
// service. No deadline is imposed on any request; the caller's context
// governs how long a round trip may take.
type Client struct {
	base string
	http *http.Client
}

var _ editor.Saver = (*Client)(nil)

// NewClient Create a client for the service at serviceURL
func NewClient(serviceURL string) (*Client, error) {
	parsed, err := url.Parse(serviceURL)
	if err != nil {
		return nil, fmt.Errorf("invalid service URL: %v", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("service URL needs a scheme and host, got %q", serviceURL)
	}
	return &Client{
		base: strings.TrimRight(parsed.String(), "/"),
		http: http.DefaultClient,
	}, nil
}

// Summary List every record with its box count
func (c *Client) Summary(ctx context.Context) ([]models.RecordSummary, error) {
	body, err := c.get(ctx, c.base+"/api/v1/summary")
	if err != nil {
		return nil, err
	}
	var payload struct {
		Data []models.RecordSummary `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decoding summary: %v", err)
	}
	return payload.Data, nil
}

// Record Fetch one record, with every member the dataset stores for it
func (c *Client) Record(ctx context.Context, file string) (models.AnnotationRecord, error) {
	body, err := c.get(ctx, fmt.Sprintf("%s/api/v1/records/%s", c.base, url.PathEscape(file)))
	if err != nil {
		return models.AnnotationRecord{}, err
	}
	var rec models.AnnotationRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		return models.AnnotationRecord{}, fmt.Errorf("decoding record %s: %v", file, err)
	}
	return rec, nil
}

// ReplaceObjects Persist a record's boxes
func (c *Client) ReplaceObjects(ctx context.Context, file string, boxes []models.BoundingBox) error {
	if boxes == nil {
		boxes = []models.BoundingBox{}
	}
	payload, err := json.Marshal(map[string][]models.BoundingBox{"objects": boxes})
	if err != nil {
		return fmt.Errorf("encoding objects for %s: %v", file, err)
	}

	target := fmt.Sprintf("%s/api/v1/records/%s/objects", c.base, url.PathEscape(file))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, target, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return c.apiError(resp.StatusCode, body)
	}
	return nil
}

// Image Fetch a radiograph's bytes
func (c *Client) Image(ctx context.Context, file string) ([]byte, error) {
	return c.get(ctx, fmt.Sprintf("%s/images/%s", c.base, url.PathEscape(file)))
}

// Thumbnail Fetch a downscaled JPEG of a radiograph
func (c *Client) Thumbnail(ctx context.Context, file string, size int) ([]byte, error) {
	return c.get(ctx, fmt.Sprintf("%s/images/%s/thumbnail.jpg?size=%d", c.base, url.PathEscape(file), size))
}

func (c *Client) get(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, c.apiError(resp.StatusCode, body)
	}
	return body, nil
}

// apiError turns an error response into something callers can test with
// errors.Is: missing records map onto dataset.ErrNotFound.
func (c *Client) apiError(status int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		msg = payload.Error
	}
	if status == http.StatusNotFound {
		return fmt.Errorf("%w: %s", dataset.ErrNotFound, msg)
	}
	return fmt.Errorf("service returned %d: %s", status, msg)
}
