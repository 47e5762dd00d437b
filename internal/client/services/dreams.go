package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/dreamtracer/internal/client/client"
	"github.com/dmitrijs2005/dreamtracer/internal/client/models"
	"github.com/dmitrijs2005/dreamtracer/internal/common"
	"github.com/dmitrijs2005/dreamtracer/internal/validation"
)

var audioExtensions = map[string]bool{
	".m4a": true, ".mp3": true, ".wav": true, ".aac": true, ".ogg": true, ".webm": true,
}

// DreamService works on the server-side copies of dreams.
type DreamService struct {
	api      client.Client
	validate *validation.Validator
}

func NewDreamService(api client.Client) *DreamService {
	return &DreamService{api: api, validate: validation.New()}
}

func (s *DreamService) List(ctx context.Context, f models.DreamFilter) (*models.DreamList, error) {
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Skip < 0 {
		f.Skip = 0
	}
	return s.api.ListDreams(ctx, f)
}

func (s *DreamService) Get(ctx context.Context, id string) (*models.ServerDream, error) {
	return s.api.GetDream(ctx, id)
}

func (s *DreamService) Update(ctx context.Context, id string, patch models.DreamPatch) (*models.ServerDream, error) {
	if err := s.validate.Validate(patch); err != nil {
		return nil, err
	}
	return s.api.UpdateDream(ctx, id, patch)
}

// UploadAudio streams a recording to the server. Only common audio
// container extensions are accepted.
func (s *DreamService) UploadAudio(ctx context.Context, name string, r io.Reader) (*models.AudioUpload, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if !audioExtensions[ext] {
		return nil, fmt.Errorf("%w: unsupported audio format %q", common.ErrValidation, ext)
	}
	return s.api.UploadAudio(ctx, filepath.Base(name), r)
}
