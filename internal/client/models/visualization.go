package models

import "time"

type Visualization struct {
	ID         string    `json:"id"`
	DreamID    string    `json:"dream_id"`
	DreamTitle string    `json:"dream_title,omitempty"`
	ImagePath  string    `json:"image_path"`
	ArtStyle   string    `json:"art_style"`
	CreatedAt  time.Time `json:"created_at"`
}

type VisualizationGallery struct {
	Visualizations []Visualization `json:"visualizations"`
	TotalCount     int             `json:"total_count"`
	Page           int             `json:"page"`
	PageSize       int             `json:"page_size"`
}

type VisualizationStyle struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}
