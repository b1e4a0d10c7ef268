// Package content produces the text of automatically published articles.
package content

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/sirupsen/logrus"
)

// Generator produces article text for a topic.
type Generator interface {
	Generate(ctx context.Context, topic string) (string, error)
}

// StubGenerator returns fixed placeholder text.
type StubGenerator struct{}

func (StubGenerator) Generate(_ context.Context, topic string) (string, error) {
	return fmt.Sprintf("This is an automatically generated article on the topic %s. Test content.", topic), nil
}

// FeedGenerator builds the placeholder around the newest item of an RSS or
// Atom feed. When the feed cannot be fetched it falls back to Fallback.
type FeedGenerator struct {
	URL      string
	Fallback Generator
	parser   *gofeed.Parser
}

func NewFeedGenerator(url string) *FeedGenerator {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{
		Timeout: 30 * time.Second,
	}
	return &FeedGenerator{
		URL:      url,
		Fallback: StubGenerator{},
		parser:   parser,
	}
}

func (fg *FeedGenerator) Generate(ctx context.Context, topic string) (string, error) {
	feed, err := fg.parser.ParseURLWithContext(fg.URL, ctx)
	if err != nil {
		logrus.WithError(err).WithField("url", fg.URL).Warn("Failed to fetch feed, using fallback content")
		return fg.Fallback.Generate(ctx, topic)
	}
	if len(feed.Items) == 0 {
		return fg.Fallback.Generate(ctx, topic)
	}

	item := feed.Items[0]
	summary := strings.TrimSpace(item.Description)
	if summary == "" {
		summary = strings.TrimSpace(item.Content)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "This is an automatically generated article on the topic %s.\n\n", topic)
	fmt.Fprintf(&b, "Latest from %s: %s", feed.Title, item.Title)
	if summary != "" {
		fmt.Fprintf(&b, "\n\n%s", summary)
	}
	if item.Link != "" {
		fmt.Fprintf(&b, "\n\nSource: %s", item.Link)
	}
	return b.String(), nil
}

// New returns a FeedGenerator when feedURL is set and a StubGenerator
// otherwise.
func New(feedURL string) Generator {
	if feedURL == "" {
		return StubGenerator{}
	}
	return NewFeedGenerator(feedURL)
}
