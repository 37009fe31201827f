package model

// Recommendation is a single catalog entry served by the recommendation service.
type Recommendation struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Type  string `json:"type"`
}

// RecommendationList is the response body of GET /recommendations.
type RecommendationList struct {
	Version         string           `json:"version"`
	Recommendations []Recommendation `json:"recommendations"`
}

// PersonalizedRecommendations echoes the caller's preferences next to the list.
type PersonalizedRecommendations struct {
	RecommendationList
	UserPreferences map[string]any `json:"userPreferences"`
}
