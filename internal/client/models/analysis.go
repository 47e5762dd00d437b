package models

import "time"

// AnalysisResult is the AI interpretation of one dream.
type AnalysisResult struct {
	ID                 string            `json:"id"`
	DreamID            string            `json:"dream_id"`
	SummaryText        string            `json:"summary_text"`
	Keywords           []string          `json:"keywords"`
	EmotionalFlowText  string            `json:"emotional_flow_text"`
	SymbolAnalysis     map[string]string `json:"symbol_analysis"`
	ReflectiveQuestion string            `json:"reflective_question"`
	DejaVuAnalysis     map[string]any    `json:"deja_vu_analysis,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
}

// AnalysisTask is returned when an analysis is queued and while it runs.
type AnalysisTask struct {
	TaskID  string          `json:"task_id"`
	Status  AnalysisStatus  `json:"status"`
	Message string          `json:"message,omitempty"`
	Result  *AnalysisResult `json:"result,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Done reports whether the task reached a final state.
func (t AnalysisTask) Done() bool {
	return t.Status == AnalysisCompleted || t.Status == AnalysisFailed
}

type DailyInsight struct {
	Insight        string `json:"insight"`
	Pattern        string `json:"pattern"`
	Recommendation string `json:"recommendation"`
}

// NamedCount is one entry of a server-side frequency list.
type NamedCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ServerPatterns is the backend's aggregate over a period.
type ServerPatterns struct {
	AnalysisPeriod  string       `json:"analysis_period"`
	TotalDreams     int          `json:"total_dreams"`
	Emotions        []NamedCount `json:"emotions"`
	Symbols         []NamedCount `json:"symbols"`
	Characters      []NamedCount `json:"characters"`
	DreamTypes      []NamedCount `json:"dream_types"`
	AverageLucidity float64      `json:"average_lucidity"`
}

// DreamRef identifies a dream in a network edge.
type DreamRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Date  string `json:"date"`
}

// DreamLink connects two similar dreams.
type DreamLink struct {
	Dream1     DreamRef `json:"dream1"`
	Dream2     DreamRef `json:"dream2"`
	Similarity float64  `json:"similarity"`
}

type DreamNetwork struct {
	Network          []DreamLink `json:"network"`
	TotalConnections int         `json:"total_connections"`
}
