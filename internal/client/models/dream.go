package models

import "time"

// DateLayout is the calendar format used for DreamDate and list filters.
const DateLayout = "2006-01-02"

// Dream is a journal entry as stored on the device. BodyText and
// AudioFilePath are private and never leave the local store; see ToServer.
type Dream struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	DreamDate     string    `json:"dream_date"`
	Title         string    `json:"title,omitempty"`
	BodyText      string    `json:"body_text"`
	AudioFilePath string    `json:"audio_file_path,omitempty"`
	LucidityLevel *int      `json:"lucidity_level,omitempty"`
	EmotionTags   []string  `json:"emotion_tags"`
	DreamType     string    `json:"dream_type,omitempty"`
	SleepQuality  *int      `json:"sleep_quality,omitempty"`
	DreamDuration *int      `json:"dream_duration,omitempty"`
	Location      string    `json:"location,omitempty"`
	Characters    []string  `json:"characters"`
	Symbols       []string  `json:"symbols"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	IsSynced  bool   `json:"is_synced"`
	SyncError string `json:"sync_error,omitempty"`
}

// DreamInput carries user-supplied fields for a new dream.
type DreamInput struct {
	UserID        string   `json:"user_id"`
	DreamDate     string   `json:"dream_date" validate:"required,datetime=2006-01-02"`
	Title         string   `json:"title,omitempty" validate:"max=200"`
	BodyText      string   `json:"body_text" validate:"required"`
	AudioFilePath string   `json:"audio_file_path,omitempty"`
	LucidityLevel *int     `json:"lucidity_level,omitempty" validate:"omitempty,gte=1,lte=5"`
	EmotionTags   []string `json:"emotion_tags"`
	DreamType     string   `json:"dream_type,omitempty"`
	SleepQuality  *int     `json:"sleep_quality,omitempty" validate:"omitempty,gte=1,lte=5"`
	DreamDuration *int     `json:"dream_duration,omitempty" validate:"omitempty,gte=0"`
	Location      string   `json:"location,omitempty"`
	Characters    []string `json:"characters"`
	Symbols       []string `json:"symbols"`
}

// DreamPatch is a partial update; nil fields are left unchanged.
type DreamPatch struct {
	DreamDate     *string   `json:"dream_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Title         *string   `json:"title,omitempty" validate:"omitempty,max=200"`
	BodyText      *string   `json:"body_text,omitempty"`
	AudioFilePath *string   `json:"audio_file_path,omitempty"`
	LucidityLevel *int      `json:"lucidity_level,omitempty" validate:"omitempty,gte=1,lte=5"`
	EmotionTags   *[]string `json:"emotion_tags,omitempty"`
	DreamType     *string   `json:"dream_type,omitempty"`
	SleepQuality  *int      `json:"sleep_quality,omitempty" validate:"omitempty,gte=1,lte=5"`
	DreamDuration *int      `json:"dream_duration,omitempty" validate:"omitempty,gte=0"`
	Location      *string   `json:"location,omitempty"`
	Characters    *[]string `json:"characters,omitempty"`
	Symbols       *[]string `json:"symbols,omitempty"`
}

// Apply copies the set fields of p onto d.
func (p DreamPatch) Apply(d *Dream) {
	if p.DreamDate != nil {
		d.DreamDate = *p.DreamDate
	}
	if p.Title != nil {
		d.Title = *p.Title
	}
	if p.BodyText != nil {
		d.BodyText = *p.BodyText
	}
	if p.AudioFilePath != nil {
		d.AudioFilePath = *p.AudioFilePath
	}
	if p.LucidityLevel != nil {
		d.LucidityLevel = p.LucidityLevel
	}
	if p.EmotionTags != nil {
		d.EmotionTags = *p.EmotionTags
	}
	if p.DreamType != nil {
		d.DreamType = *p.DreamType
	}
	if p.SleepQuality != nil {
		d.SleepQuality = p.SleepQuality
	}
	if p.DreamDuration != nil {
		d.DreamDuration = p.DreamDuration
	}
	if p.Location != nil {
		d.Location = *p.Location
	}
	if p.Characters != nil {
		d.Characters = *p.Characters
	}
	if p.Symbols != nil {
		d.Symbols = *p.Symbols
	}
}

// AnalysisStatus is the server-side processing state of a dream.
type AnalysisStatus string

const (
	AnalysisPending    AnalysisStatus = "pending"
	AnalysisProcessing AnalysisStatus = "processing"
	AnalysisCompleted  AnalysisStatus = "completed"
	AnalysisFailed     AnalysisStatus = "failed"
)

// ServerDream is the mirrored copy kept by the backend.
type ServerDream struct {
	ID             string          `json:"id"`
	UserID         string          `json:"user_id"`
	DreamDate      string          `json:"dream_date"`
	Title          string          `json:"title,omitempty"`
	LucidityLevel  *int            `json:"lucidity_level,omitempty"`
	EmotionTags    []string        `json:"emotion_tags"`
	AnalysisStatus AnalysisStatus  `json:"analysis_status"`
	IsShared       bool            `json:"is_shared"`
	DreamType      string          `json:"dream_type,omitempty"`
	SleepQuality   *int            `json:"sleep_quality,omitempty"`
	DreamDuration  *int            `json:"dream_duration,omitempty"`
	Location       string          `json:"location,omitempty"`
	Characters     []string        `json:"characters"`
	Symbols        []string        `json:"symbols"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	AnalysisResult *AnalysisResult `json:"analysis_result,omitempty"`

	CommunitySharedText  string `json:"community_shared_text,omitempty"`
	CommunitySharedImage string `json:"community_shared_image,omitempty"`
}

// ToServer builds the payload sent to the backend. Body text and audio are
// dropped here and nowhere else.
func ToServer(d Dream) ServerDream {
	return ServerDream{
		ID:             d.ID,
		UserID:         d.UserID,
		DreamDate:      d.DreamDate,
		Title:          d.Title,
		LucidityLevel:  d.LucidityLevel,
		EmotionTags:    nonNil(d.EmotionTags),
		AnalysisStatus: AnalysisPending,
		DreamType:      d.DreamType,
		SleepQuality:   d.SleepQuality,
		DreamDuration:  d.DreamDuration,
		Location:       d.Location,
		Characters:     nonNil(d.Characters),
		Symbols:        nonNil(d.Symbols),
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// DreamFilter narrows a server-side dream listing.
type DreamFilter struct {
	Skip          int
	Limit         int
	StartDate     string
	EndDate       string
	DreamType     string
	EmotionFilter []string
}

// DreamList is one page of server-side dreams.
type DreamList struct {
	Dreams      []ServerDream `json:"dreams"`
	TotalCount  int           `json:"total_count"`
	Page        int           `json:"page"`
	PageSize    int           `json:"page_size"`
	HasNext     bool          `json:"has_next"`
	HasPrevious bool          `json:"has_previous"`
}

// AudioUpload is the response of an audio upload.
type AudioUpload struct {
	AudioFilePath string   `json:"audio_file_path"`
	FileSize      int64    `json:"file_size"`
	Duration      *float64 `json:"duration,omitempty"`
}
