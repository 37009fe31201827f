package service

import (
	"context"
	"encoding/json"
	"testing"

	"meshdemo/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecommendationService(t *testing.T) {
	t.Run("known versions", func(t *testing.T) {
		for _, v := range []string{"v1", "v2"} {
			svc, err := NewRecommendationService(v)
			require.NoError(t, err)
			assert.Equal(t, v, svc.Version())
		}
	})

	t.Run("unknown version", func(t *testing.T) {
		svc, err := NewRecommendationService("v9")
		assert.ErrorIs(t, err, ErrUnknownVersion)
		assert.Nil(t, svc)
	})
}

func TestRecommendationService_List(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		version string
		want    []model.Recommendation
	}{
		{
			version: "v1",
			want: []model.Recommendation{
				{ID: 1, Title: "Movie A", Type: "Popular"},
				{ID: 2, Title: "Movie B", Type: "Trending"},
				{ID: 3, Title: "Movie C", Type: "Top Rated"},
			},
		},
		{
			version: "v2",
			want: []model.Recommendation{
				{ID: 1, Title: "Movie X", Type: "AI-Enhanced"},
				{ID: 2, Title: "Movie Y", Type: "Personalized"},
				{ID: 3, Title: "Movie Z", Type: "Recently Watched"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			svc, err := NewRecommendationService(tt.version)
			require.NoError(t, err)

			res, err := svc.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.version, res.Version)
			assert.Equal(t, tt.want, res.Recommendations)
		})
	}
}

func TestRecommendationService_Personalize(t *testing.T) {
	ctx := context.Background()

	t.Run("v1 unsupported", func(t *testing.T) {
		svc, _ := NewRecommendationService("v1")
		res, err := svc.Personalize(ctx, map[string]any{"userId": "u1"})
		assert.ErrorIs(t, err, ErrPersonalizationUnsupported)
		assert.Nil(t, res)
	})

	t.Run("nil preferences", func(t *testing.T) {
		svc, _ := NewRecommendationService("v2")
		res, err := svc.Personalize(ctx, nil)
		assert.ErrorIs(t, err, ErrPreferencesRequired)
		assert.Nil(t, res)
	})

	tests := []struct {
		name      string
		prefs     map[string]any
		wantTitle string
	}{
		{name: "string user id", prefs: map[string]any{"userId": "alice"}, wantTitle: "Movie X for user alice"},
		{name: "numeric user id", prefs: map[string]any{"userId": json.Number("42")}, wantTitle: "Movie X for user 42"},
		{name: "missing user id", prefs: map[string]any{"genre": "drama"}, wantTitle: "Movie X for user unknown"},
		{name: "null user id", prefs: map[string]any{"userId": nil}, wantTitle: "Movie X for user unknown"},
		{name: "boolean user id", prefs: map[string]any{"userId": true}, wantTitle: "Movie X for user true"},
		{name: "object user id", prefs: map[string]any{"userId": map[string]any{"a": json.Number("1")}}, wantTitle: `Movie X for user {"a":1}`},
		{name: "array user id", prefs: map[string]any{"userId": []any{"a", json.Number("2")}}, wantTitle: `Movie X for user ["a",2]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := NewRecommendationService("v2")
			res, err := svc.Personalize(ctx, tt.prefs)
			require.NoError(t, err)

			assert.Equal(t, "v2", res.Version)
			require.Len(t, res.Recommendations, 3)
			assert.Equal(t, tt.wantTitle, res.Recommendations[0].Title)
			assert.Equal(t, "Movie Y", res.Recommendations[1].Title)
			assert.Equal(t, tt.prefs, res.UserPreferences)
		})
	}

	t.Run("catalog is not mutated", func(t *testing.T) {
		svc, _ := NewRecommendationService("v2")
		_, err := svc.Personalize(ctx, map[string]any{"userId": "bob"})
		require.NoError(t, err)

		res, err := svc.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Movie X", res.Recommendations[0].Title)
	})
}
