package musicapi

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"playdeck/shared/go/models"
)

const (
	defaultYouTubeBaseURL = "https://www.googleapis.com/youtube/v3"
	defaultRatePerSecond  = 5
)

// YouTubeClient implements SearchClient on the YouTube Data API v3.
type YouTubeClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewYouTubeClient creates a YouTube search client.
func NewYouTubeClient(cfg Config) *YouTubeClient {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultYouTubeBaseURL
	}
	perSecond := cfg.RatePerSecond
	if perSecond <= 0 {
		perSecond = defaultRatePerSecond
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &YouTubeClient{
		apiKey:  cfg.YouTubeAPIKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
	}
}

// YouTube API response structures
type youtubeSearchResponse struct {
	Items []youtubeSearchItem `json:"items"`
}

type youtubeSearchItem struct {
	ID struct {
		VideoID string `json:"videoId"`
	} `json:"id"`
	Snippet youtubeSnippet `json:"snippet"`
}

type youtubeSnippet struct {
	Title        string `json:"title"`
	ChannelTitle string `json:"channelTitle"`
	Thumbnails   struct {
		Default youtubeThumbnail `json:"default"`
		Medium  youtubeThumbnail `json:"medium"`
		High    youtubeThumbnail `json:"high"`
	} `json:"thumbnails"`
}

type youtubeThumbnail struct {
	URL string `json:"url"`
}

type youtubeVideosResponse struct {
	Items []struct {
		ID             string `json:"id"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
	} `json:"items"`
}

// doRequest performs a rate limited GET against the API.
func (c *YouTubeClient) doRequest(ctx context.Context, endpoint string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("wait for rate limiter: %w", err)
	}

	params.Set("key", c.apiKey)
	apiURL := c.baseURL + "/" + endpoint + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("youtube api error: %s - %s", resp.Status, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// SearchSongs returns up to limit videos matching query as external songs.
func (c *YouTubeClient) SearchSongs(ctx context.Context, query string, limit int) ([]models.Song, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.Song{}, nil
	}

	params := url.Values{
		"part":            []string{"snippet"},
		"type":            []string{"video"},
		"videoCategoryId": []string{"10"},
		"q":               []string{query},
		"maxResults":      []string{strconv.Itoa(clampLimit(limit))},
	}

	var search youtubeSearchResponse
	if err := c.doRequest(ctx, "search", params, &search); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(search.Items))
	for _, item := range search.Items {
		if item.ID.VideoID != "" {
			ids = append(ids, item.ID.VideoID)
		}
	}
	if len(ids) == 0 {
		return []models.Song{}, nil
	}

	durations, err := c.durations(ctx, ids)
	if err != nil {
		return nil, err
	}

	songs := make([]models.Song, 0, len(ids))
	for _, item := range search.Items {
		if item.ID.VideoID == "" {
			continue
		}
		songs = append(songs, c.convertVideo(item, durations[item.ID.VideoID]))
	}
	return songs, nil
}

func (c *YouTubeClient) durations(ctx context.Context, ids []string) (map[string]string, error) {
	params := url.Values{
		"part": []string{"contentDetails"},
		"id":   []string{strings.Join(ids, ",")},
	}

	var videos youtubeVideosResponse
	if err := c.doRequest(ctx, "videos", params, &videos); err != nil {
		return nil, err
	}

	out := make(map[string]string, len(videos.Items))
	for _, v := range videos.Items {
		out[v.ID] = FormatISODuration(v.ContentDetails.Duration)
	}
	return out, nil
}

func (c *YouTubeClient) convertVideo(item youtubeSearchItem, duration string) models.Song {
	thumb := item.Snippet.Thumbnails.High.URL
	if thumb == "" {
		thumb = item.Snippet.Thumbnails.Medium.URL
	}
	if thumb == "" {
		thumb = item.Snippet.Thumbnails.Default.URL
	}
	if duration == "" {
		duration = "0:00"
	}

	return models.Song{
		Title:      html.UnescapeString(item.Snippet.Title),
		Artist:     html.UnescapeString(item.Snippet.ChannelTitle),
		Duration:   duration,
		Thumbnail:  thumb,
		SourceType: models.SourceExternal,
		SourceID:   item.ID.VideoID,
	}
}

var isoDuration = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// FormatISODuration turns an ISO 8601 duration such as PT1H2M3S into
// "1:02:03", or PT3M5S into "3:05". Unparseable input yields "".
func FormatISODuration(raw string) string {
	m := isoDuration.FindStringSubmatch(raw)
	if m == nil || raw == "PT" {
		return ""
	}
	part := func(s string) int {
		n, _ := strconv.Atoi(s)
		return n
	}
	hours, minutes, seconds := part(m[1]), part(m[2]), part(m[3])
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}
