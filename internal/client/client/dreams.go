package client

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/dreamtracer/internal/client/models"
)

func (c *HTTPClient) SyncDream(ctx context.Context, d models.ServerDream) error {
	return c.do(ctx, request{method: http.MethodPost, path: "/dreams/sync", body: d, auth: true}, nil)
}

// dreamQuery renders a filter as list query parameters.
func dreamQuery(f models.DreamFilter) url.Values {
	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	q := pageQuery(f.Skip, limit)
	if f.StartDate != "" {
		q.Set("start_date", f.StartDate)
	}
	if f.EndDate != "" {
		q.Set("end_date", f.EndDate)
	}
	if f.DreamType != "" {
		q.Set("dream_type", f.DreamType)
	}
	for _, e := range f.EmotionFilter {
		q.Add("emotion_filter", e)
	}
	return q
}

func (c *HTTPClient) ListDreams(ctx context.Context, f models.DreamFilter) (*models.DreamList, error) {
	var out models.DreamList
	if err := c.do(ctx, request{method: http.MethodGet, path: "/dreams/", query: dreamQuery(f), auth: true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) GetDream(ctx context.Context, id string) (*models.ServerDream, error) {
	var out models.ServerDream
	if err := c.do(ctx, request{method: http.MethodGet, path: "/dreams/" + url.PathEscape(id), auth: true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateDream sends the patch without private fields; the server never
// stores body text or audio.
func (c *HTTPClient) UpdateDream(ctx context.Context, id string, patch models.DreamPatch) (*models.ServerDream, error) {
	patch.BodyText = nil
	patch.AudioFilePath = nil

	var out models.ServerDream
	if err := c.do(ctx, request{method: http.MethodPut, path: "/dreams/" + url.PathEscape(id), body: patch, auth: true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) DeleteDream(ctx context.Context, id string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: "/dreams/" + url.PathEscape(id), auth: true}, nil)
}

// UploadAudio streams r as the audio_file part of a multipart form.
func (c *HTTPClient) UploadAudio(ctx context.Context, filename string, r io.Reader) (*models.AudioUpload, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		part, err := mw.CreateFormFile("audio_file", filename)
		if err == nil {
			_, err = io.Copy(part, r)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	var out models.AudioUpload
	err := c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/dreams/upload-audio",
		rawBody:     pr,
		contentType: mw.FormDataContentType(),
		auth:        true,
	}, &out)
	_ = pr.Close()
	if err != nil {
		return nil, fmt.Errorf("upload audio: %w", err)
	}
	return &out, nil
}
