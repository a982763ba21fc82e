package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

const (
	videoIDPattern       = `(?:youtube\.com\/(?:[^\/]+\/.+\/|(?:v|e(?:mbed)?)\/|.*[?&]v=)|youtu\.be\/)([^"&?\/\s]{11})`
	xmlTranscriptPattern = `<text start="([^"]*)" dur="([^"]*)">([^<]*)<\/text>`
)

var (
	videoIDRegexp    = regexp.MustCompile(videoIDPattern)
	xmlTextRegexp    = regexp.MustCompile(xmlTranscriptPattern)
	videoTitleRegexp = regexp.MustCompile(`<title>(.+?) - YouTube</title>`)
)

// Client fetches video transcripts by scraping the caption track referenced
// from the watch page.
type Client struct {
	http *http.Client
}

// New creates a transcript client with a bounded request timeout.
func New() *Client {
	return &Client{http: &http.Client{Timeout: 30 * time.Second}}
}

// Transcript returns the full caption text and the video title for a YouTube
// URL or bare 11-character video ID.
func (c *Client) Transcript(ctx context.Context, url string) (text, title string, err error) {
	videoID, err := parseVideoID(url)
	if err != nil {
		return "", "", err
	}

	pageBody, err := c.get(ctx, fmt.Sprintf("https://www.youtube.com/watch?v=%s", videoID))
	if err != nil {
		return "", "", fmt.Errorf("fetch video page: %w", err)
	}

	if match := videoTitleRegexp.FindSubmatch(pageBody); len(match) > 1 {
		title = html.UnescapeString(string(match[1]))
	}
	if title == "" {
		title = videoID
	}

	parts := strings.SplitN(string(pageBody), `"captions":`, 2)
	if len(parts) < 2 {
		return "", "", fmt.Errorf("no captions available for video %s", videoID)
	}

	var captions struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []struct {
				BaseURL      string `json:"baseUrl"`
				LanguageCode string `json:"languageCode"`
			} `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	}
	end := strings.Index(parts[1], `,"videoDetails`)
	if end < 0 {
		return "", "", fmt.Errorf("malformed captions metadata for video %s", videoID)
	}
	if err := json.Unmarshal([]byte(parts[1][:end]), &captions); err != nil {
		return "", "", fmt.Errorf("parse captions metadata: %w", err)
	}
	tracks := captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	if len(tracks) == 0 {
		return "", "", fmt.Errorf("no transcripts available for video %s", videoID)
	}

	transcriptBody, err := c.get(ctx, tracks[0].BaseURL)
	if err != nil {
		return "", "", fmt.Errorf("fetch transcript: %w", err)
	}

	var full strings.Builder
	for _, match := range xmlTextRegexp.FindAllStringSubmatch(string(transcriptBody), -1) {
		full.WriteString(html.UnescapeString(match[3]))
		full.WriteString(" ")
	}
	if full.Len() == 0 {
		return "", "", fmt.Errorf("empty transcript for video %s", videoID)
	}
	return full.String(), title, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func parseVideoID(url string) (string, error) {
	if len(url) == 11 {
		return url, nil
	}
	if match := videoIDRegexp.FindStringSubmatch(url); match != nil {
		return match[1], nil
	}
	return "", fmt.Errorf("invalid YouTube URL or video ID")
}
