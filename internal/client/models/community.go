package models

import "time"

// CommunityPost is a dream shared to the community feed.
type CommunityPost struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	DreamID      string    `json:"dream_id"`
	SharedText   string    `json:"shared_text"`
	SharedImage  string    `json:"shared_image,omitempty"`
	EmotionTags  []string  `json:"emotion_tags"`
	Symbols      []string  `json:"symbols"`
	IsAnonymous  bool      `json:"is_anonymous"`
	AuthorName   string    `json:"author_name,omitempty"`
	LikeCount    int       `json:"like_count"`
	CommentCount int       `json:"comment_count"`
	ViewCount    int       `json:"view_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ShareRequest is the body of a community post creation.
type ShareRequest struct {
	DreamID     string `json:"dream_id"`
	SharedText  string `json:"shared_text"`
	SharedImage string `json:"shared_image,omitempty"`
	IsAnonymous bool   `json:"is_anonymous"`
}

// PostList is a page of the community feed.
type PostList struct {
	Posts      []CommunityPost `json:"posts"`
	TotalCount int             `json:"total_count"`
	HasNext    bool            `json:"has_next"`
}

// FeedItem is a post prepared for display.
type FeedItem struct {
	ID        string
	Author    string
	Title     string
	Content   string
	Tags      []string
	Likes     int
	Comments  int
	ImageURL  string
	CreatedAt time.Time
}
