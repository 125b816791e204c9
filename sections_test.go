package p2p

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/sections/show_collections.json", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "/news/local", q.Get("section_path"))
		assert.Equal(t, "chinews", q.Get("product_affiliate_code"))
		assert.Equal(t, "default_section_path_collections", q.Get("include"))
		w.Write([]byte(`{"results":{"default_section_path_collections":[]}}`))
	}))
	defer server.Close()

	client := New(testConfig(server.URL))
	section, err := client.GetSection(context.Background(), "/news/local", nil, false)
	require.NoError(t, err)
	assert.Contains(t, section, "results")
}

func TestGetSectionConfigs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/sections/show_configs.json", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "/news/local", q.Get("section_path"))
		assert.Equal(t, "tRibbit", q.Get("webapp_name"))
		w.Write([]byte(`{"results":{"section_config":{}}}`))
	}))
	defer server.Close()

	client := New(testConfig(server.URL))
	configs, err := client.GetSectionConfigs(context.Background(), "/news/local", nil, false)
	require.NoError(t, err)
	assert.Contains(t, configs, "results")
}

func TestGetThumbForSlug(t *testing.T) {
	images := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/photos/turbine/my-story.json", r.URL.Path)
		w.Write([]byte(`{"url":"https://img.example.com/my-story.jpg"}`))
	}))
	defer images.Close()

	cfg := testConfig("http://api.unused.invalid")
	cfg.ImageServicesURL = images.URL
	client := New(cfg)

	thumb, err := client.GetThumbForSlug(context.Background(), "my-story", false)
	require.NoError(t, err)
	assert.Equal(t, "https://img.example.com/my-story.jpg", thumb["url"])
}
