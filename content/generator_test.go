package content

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Daily Wire</title>
    <link>https://example.com</link>
    <description>Sample</description>
    <item>
      <title>Gophers reach the summit</title>
      <link>https://example.com/summit</link>
      <description>A short summary.</description>
    </item>
    <item>
      <title>Older news</title>
      <link>https://example.com/old</link>
    </item>
  </channel>
</rss>`

func TestStubGenerator(t *testing.T) {
	text, err := StubGenerator{}.Generate(context.Background(), "News")
	require.NoError(t, err)
	assert.Contains(t, text, "News")
}

func TestFeedGenerator(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(sampleRSS))
	}))
	defer srv.Close()

	text, err := NewFeedGenerator(srv.URL).Generate(context.Background(), "Science")
	require.NoError(t, err)
	assert.Contains(t, text, "Science")
	assert.Contains(t, text, "Daily Wire: Gophers reach the summit")
	assert.Contains(t, text, "A short summary.")
	assert.Contains(t, text, "https://example.com/summit")
	assert.NotContains(t, text, "Older news")
}

func TestFeedGeneratorFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	text, err := NewFeedGenerator(srv.URL).Generate(context.Background(), "News")
	require.NoError(t, err)
	stub, _ := StubGenerator{}.Generate(context.Background(), "News")
	assert.Equal(t, stub, text)
}

func TestNew(t *testing.T) {
	assert.IsType(t, StubGenerator{}, New(""))
	assert.IsType(t, &FeedGenerator{}, New("https://example.com/rss"))
}
