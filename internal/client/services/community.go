package services

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/dreamtracer/internal/client/client"
	"github.com/dmitrijs2005/dreamtracer/internal/client/models"
)

const (
	feedTitleRunes = 20
	anonymousLabel = "Anonymous"
	unknownLabel   = "Unknown"
)

type CommunityService struct {
	api client.Client
}

func NewCommunityService(api client.Client) *CommunityService {
	return &CommunityService{api: api}
}

// CreatePost publishes without plan checks; HybridDataManager.ShareDreamToCommunity
// is the gated entry point.
func (s *CommunityService) CreatePost(ctx context.Context, req models.ShareRequest) (*models.CommunityPost, error) {
	return s.api.CreatePost(ctx, req)
}

// Posts returns one page of the feed mapped for display.
func (s *CommunityService) Posts(ctx context.Context, skip, limit int) ([]models.FeedItem, error) {
	if limit <= 0 {
		limit = 20
	}
	list, err := s.api.Posts(ctx, skip, limit)
	if err != nil {
		return nil, err
	}

	items := make([]models.FeedItem, 0, len(list.Posts))
	for _, p := range list.Posts {
		items = append(items, toFeedItem(p))
	}
	return items, nil
}

func toFeedItem(p models.CommunityPost) models.FeedItem {
	author := p.AuthorName
	if author == "" {
		author = unknownLabel
		if p.IsAnonymous {
			author = anonymousLabel
		}
	}

	tags := make([]string, 0, len(p.EmotionTags)+len(p.Symbols))
	tags = append(tags, p.EmotionTags...)
	tags = append(tags, p.Symbols...)

	return models.FeedItem{
		ID:        p.ID,
		Author:    author,
		Title:     FeedTitle(p.SharedText),
		Content:   p.SharedText,
		Tags:      tags,
		Likes:     p.LikeCount,
		Comments:  p.CommentCount,
		ImageURL:  p.SharedImage,
		CreatedAt: p.CreatedAt,
	}
}

// FeedTitle is the first line of text, cut to 20 runes with an ellipsis.
func FeedTitle(text string) string {
	line, _, _ := strings.Cut(text, "\n")
	r := []rune(line)
	if len(r) > feedTitleRunes {
		return string(r[:feedTitleRunes]) + "..."
	}
	return line
}
