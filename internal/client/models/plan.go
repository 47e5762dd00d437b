package models

import "time"

// Plan is a subscription tier.
type Plan string

const (
	PlanFree    Plan = "free"
	PlanPlus    Plan = "plus"
	PlanPremium Plan = "premium"
)

// Unlimited marks a limit that is never reached.
const Unlimited = -1

// Feature names a gated, metered action.
type Feature string

const (
	FeatureCommunityPosts Feature = "community_posts"
	FeatureImageUploads   Feature = "image_uploads"
	FeatureAIAnalyses     Feature = "ai_analyses"
	FeatureVisualizations Feature = "visualizations"
)

// PlanLimits are the ceilings for one tier.
type PlanLimits struct {
	CommunityTextLimit int
	ImageUploadLimit   int
	AIAnalysisLimit    int
	VisualizationLimit int
}

// LimitTable maps a tier to its limits.
type LimitTable map[Plan]PlanLimits

// DefaultLimits is the stock quota table.
func DefaultLimits() LimitTable {
	return LimitTable{
		PlanFree:    {CommunityTextLimit: 200, ImageUploadLimit: 3, AIAnalysisLimit: 5, VisualizationLimit: 2},
		PlanPlus:    {CommunityTextLimit: 500, ImageUploadLimit: 10, AIAnalysisLimit: 20, VisualizationLimit: 10},
		PlanPremium: {CommunityTextLimit: 1000, ImageUploadLimit: Unlimited, AIAnalysisLimit: Unlimited, VisualizationLimit: Unlimited},
	}
}

// For returns the limits of p, falling back to the free tier for unknown plans.
func (t LimitTable) For(p Plan) PlanLimits {
	if l, ok := t[p]; ok {
		return l
	}
	return t[PlanFree]
}

// Limit returns the usage ceiling of a metered feature.
func (l PlanLimits) Limit(f Feature) int {
	switch f {
	case FeatureImageUploads:
		return l.ImageUploadLimit
	case FeatureAIAnalyses:
		return l.AIAnalysisLimit
	case FeatureVisualizations:
		return l.VisualizationLimit
	default:
		return Unlimited
	}
}

// FeaturesUsed counts usage in the current period.
type FeaturesUsed struct {
	CommunityPosts int `json:"community_posts"`
	ImageUploads   int `json:"image_uploads"`
	AIAnalyses     int `json:"ai_analyses"`
	Visualizations int `json:"visualizations"`
}

// Used returns the counter for f.
func (u FeaturesUsed) Used(f Feature) int {
	switch f {
	case FeatureCommunityPosts:
		return u.CommunityPosts
	case FeatureImageUploads:
		return u.ImageUploads
	case FeatureAIAnalyses:
		return u.AIAnalyses
	case FeatureVisualizations:
		return u.Visualizations
	default:
		return 0
	}
}

// Add increments the counter for f by delta.
func (u *FeaturesUsed) Add(f Feature, delta int) {
	switch f {
	case FeatureCommunityPosts:
		u.CommunityPosts += delta
	case FeatureImageUploads:
		u.ImageUploads += delta
	case FeatureAIAnalyses:
		u.AIAnalyses += delta
	case FeatureVisualizations:
		u.Visualizations += delta
	}
}

// UserPlan is the user's tier and usage.
type UserPlan struct {
	Plan             Plan         `json:"plan"`
	ExpiresAt        *time.Time   `json:"expires_at,omitempty"`
	FeaturesUsed     FeaturesUsed `json:"features_used"`
	MonthlyResetDate time.Time    `json:"monthly_reset_date"`

	// Unknown is set on the synthesized fallback returned when the plan
	// could not be fetched.
	Unknown bool `json:"-"`
}

// DefaultPlan is the free tier with no usage.
func DefaultPlan(now time.Time) UserPlan {
	return UserPlan{Plan: PlanFree, MonthlyResetDate: now}
}

// UsageUpdate is the body of a usage increment.
type UsageUpdate struct {
	Feature   Feature   `json:"feature"`
	Increment int       `json:"increment"`
	Timestamp time.Time `json:"timestamp"`
}
