package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"meshdemo/internal/model"
)

var (
	ErrUnknownVersion             = errors.New("unknown recommendation version")
	ErrPersonalizationUnsupported = errors.New("personalized recommendations are not available in this version")
	ErrPreferencesRequired        = errors.New("user preferences are required")
)

const unknownUser = "unknown"

// RecommendationService defines the use cases of the recommendation stub.
type RecommendationService interface {
	// Version reports the catalog version served, "v1" or "v2".
	Version() string

	// List returns the static catalog for the configured version.
	List(ctx context.Context) (*model.RecommendationList, error)

	// Personalize returns the catalog tailored to the posted preferences and echoes them back.
	// Only v2 supports it; v1 returns ErrPersonalizationUnsupported.
	Personalize(ctx context.Context, prefs map[string]any) (*model.PersonalizedRecommendations, error)
}

var catalogs = map[string][]model.Recommendation{
	"v1": {
		{ID: 1, Title: "Movie A", Type: "Popular"},
		{ID: 2, Title: "Movie B", Type: "Trending"},
		{ID: 3, Title: "Movie C", Type: "Top Rated"},
	},
	"v2": {
		{ID: 1, Title: "Movie X", Type: "AI-Enhanced"},
		{ID: 2, Title: "Movie Y", Type: "Personalized"},
		{ID: 3, Title: "Movie Z", Type: "Recently Watched"},
	},
}

type recommendationService struct {
	version string
}

// NewRecommendationService constructs a RecommendationService for the given catalog version.
func NewRecommendationService(version string) (RecommendationService, error) {
	if _, ok := catalogs[version]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVersion, version)
	}
	return &recommendationService{version: version}, nil
}

func (s *recommendationService) Version() string {
	return s.version
}

func (s *recommendationService) List(_ context.Context) (*model.RecommendationList, error) {
	return &model.RecommendationList{
		Version:         s.version,
		Recommendations: s.items(),
	}, nil
}

func (s *recommendationService) Personalize(_ context.Context, prefs map[string]any) (*model.PersonalizedRecommendations, error) {
	if s.version != "v2" {
		return nil, ErrPersonalizationUnsupported
	}
	if prefs == nil {
		return nil, ErrPreferencesRequired
	}

	items := s.items()
	items[0].Title = fmt.Sprintf("%s for user %s", items[0].Title, userID(prefs))

	return &model.PersonalizedRecommendations{
		RecommendationList: model.RecommendationList{
			Version:         s.version,
			Recommendations: items,
		},
		UserPreferences: prefs,
	}, nil
}

// items returns a copy so callers can modify entries without touching the catalog.
func (s *recommendationService) items() []model.Recommendation {
	src := catalogs[s.version]
	out := make([]model.Recommendation, len(src))
	copy(out, src)
	return out
}

// userID renders prefs["userId"] for the title: strings as-is, other values as
// compact JSON, absent or null as "unknown".
func userID(prefs map[string]any) string {
	switch v := prefs["userId"].(type) {
	case nil:
		return unknownUser
	case string:
		return v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return unknownUser
		}
		return string(b)
	}
}
