package backends

import "strings"

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func capCount(n, max int) int {
	if max > 0 && n > max {
		return max
	}
	return n
}

// newWebResult applies the documented defaults for absent fields
func newWebResult(title, url, content string) WebResult {
	return WebResult{
		Title:   firstNonEmpty(title, defaultTitle),
		URL:     url,
		Content: firstNonEmpty(content, defaultContent),
	}
}

// newImageResult falls back to the full image URL for both the thumbnail and
// the page link.
func newImageResult(title, link, imageURL, thumbnailURL string) ImageResult {
	return ImageResult{
		Title:        title,
		Link:         firstNonEmpty(link, imageURL),
		ThumbnailURL: firstNonEmpty(thumbnailURL, imageURL),
	}
}

// renumberVideos assigns positions by list index, ignoring upstream ranks
func renumberVideos(videos []VideoResult) []VideoResult {
	for i := range videos {
		videos[i].Position = i
	}
	return videos
}

func truncateWeb(items []WebResult, max int) []WebResult {
	return items[:capCount(len(items), max)]
}

func truncateVideos(items []VideoResult, max int) []VideoResult {
	return items[:capCount(len(items), max)]
}

func truncateImages(items []ImageResult, max int) []ImageResult {
	return items[:capCount(len(items), max)]
}
