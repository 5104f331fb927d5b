package handlers

import (
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/aydinemrecan/scamradar-backend/internal/classifier"
	"github.com/aydinemrecan/scamradar-backend/internal/config"
	"github.com/gofiber/fiber/v2"
)

// FeedHandler proxies a scam-news RSS feed so mobile clients avoid CORS and
// mixed-content issues. Only the configured host may be fetched.
type FeedHandler struct {
	cfg    *config.Config
	client *http.Client
}

func NewFeedHandler(cfg *config.Config) *FeedHandler {
	return &FeedHandler{
		cfg:    cfg,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

type rssFeed struct {
	Channel struct {
		Title string    `xml:"title"`
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
}

type feedItem struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Summary     string `json:"summary"`
	ImageURL    string `json:"image_url,omitempty"`
	PublishedAt string `json:"published_at"`
}

func (h *FeedHandler) News(c *fiber.Ctx) error {
	target := c.Query("url", fmt.Sprintf("https://%s/rss", h.cfg.FeedHost))

	parsed, err := url.Parse(target)
	if err != nil || parsed.Scheme != "https" || parsed.Hostname() != h.cfg.FeedHost {
		return respondError(c, fiber.NewError(fiber.StatusBadRequest, "feed url not allowed"))
	}

	req, err := http.NewRequestWithContext(c.Context(), http.MethodGet, parsed.String(), nil)
	if err != nil {
		return respondError(c, err)
	}
	req.Header.Set("User-Agent", "ScamRadar/1.0")

	resp, err := h.client.Do(req)
	if err != nil {
		return respondError(c, fiber.NewError(fiber.StatusBadGateway, "feed unavailable"))
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return respondError(c, fiber.NewError(fiber.StatusBadGateway, "feed unavailable"))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return respondError(c, fiber.NewError(fiber.StatusBadGateway, "feed unavailable"))
	}

	var feed rssFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return respondError(c, fiber.NewError(fiber.StatusBadGateway, "feed malformed"))
	}

	items := make([]feedItem, 0, len(feed.Channel.Items))
	for _, item := range feed.Channel.Items {
		items = append(items, feedItem{
			Title:       item.Title,
			Link:        item.Link,
			Summary:     classifier.StripHTML(item.Description),
			ImageURL:    classifier.FirstImageURL(item.Description),
			PublishedAt: item.PubDate,
		})
	}

	return c.JSON(fiber.Map{"source": feed.Channel.Title, "items": items})
}
