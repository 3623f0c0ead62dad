// File: internal/xapi/media.go
package xapi

import (
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// MediaType classifies an attached media item.
type MediaType string

const (
	MediaPhoto       MediaType = "photo"
	MediaVideo       MediaType = "video"
	MediaAnimatedGIF MediaType = "animated_gif"
)

// knownExtensions is the set of file extensions media URLs are allowed to
// carry. Anything else falls back to a type-based default.
var knownExtensions = map[string]struct{}{
	"jpg": {}, "jpeg": {}, "png": {}, "webp": {}, "mp4": {}, "gif": {},
}

// Media is one downloadable item resolved from a post envelope.
type Media struct {
	Type      MediaType
	Index     int
	URL       string
	Extension string
}

// ResolveMedia walks a post envelope and returns the downloadable media
// items in their listed order. Posts without media, unavailable posts, and
// items whose URLs cannot be resolved all yield an empty slice rather than
// an error.
func ResolveMedia(env Envelope, logger *zap.Logger) []Media {
	log := logger.Named("media")

	result, ok := env.Result()
	if !ok {
		return nil
	}
	if typename, ok := childString(result, "__typename"); ok && typename == "TweetUnavailable" {
		log.Warn("Post is unavailable; no media to resolve.")
		return nil
	}
	legacy, ok := childObject(result, "legacy")
	if !ok {
		return nil
	}

	// extended_entities carries the full variant lists; entities is a
	// reduced legacy shape kept as a fallback.
	items, ok := mediaList(legacy, "extended_entities")
	if !ok {
		items, ok = mediaList(legacy, "entities")
	}
	if !ok {
		return nil
	}

	var resolved []Media
	for i, raw := range items {
		item, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		media, ok := resolveItem(item, i)
		if !ok {
			log.Warn("Skipping unresolvable media item.", zap.Int("index", i))
			continue
		}
		resolved = append(resolved, media)
	}
	return resolved
}

func mediaList(legacy map[string]interface{}, key string) ([]interface{}, bool) {
	container, ok := childObject(legacy, key)
	if !ok {
		return nil, false
	}
	list, ok := childSlice(container, "media")
	if !ok || len(list) == 0 {
		return nil, false
	}
	return list, true
}

func resolveItem(item map[string]interface{}, index int) (Media, bool) {
	rawType, _ := childString(item, "type")
	mediaType := MediaType(rawType)

	var rawURL, defaultExt string
	switch mediaType {
	case MediaPhoto:
		rawURL, _ = childString(item, "media_url_https")
		defaultExt = "jpg"
	case MediaVideo:
		rawURL = bestVideoVariant(item)
		defaultExt = "mp4"
	case MediaAnimatedGIF:
		rawURL = firstVariant(item)
		defaultExt = "mp4"
	default:
		return Media{}, false
	}
	if rawURL == "" {
		return Media{}, false
	}

	clean := stripQuery(rawURL)
	return Media{
		Type:      mediaType,
		Index:     index,
		URL:       clean,
		Extension: deriveExtension(clean, defaultExt),
	}, true
}

// bestVideoVariant returns the URL of the highest-bitrate MP4 variant.
// Only "video/mp4" variants qualify; HLS playlists and other encodings are
// skipped even when they carry a bitrate. Ties keep the first seen.
func bestVideoVariant(item map[string]interface{}) string {
	variants := videoVariants(item)
	var bestURL string
	bestRate := -1.0
	for _, raw := range variants {
		variant, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		if ct, _ := childString(variant, "content_type"); ct != "video/mp4" {
			continue
		}
		rate, ok := childFloat(variant, "bitrate")
		if !ok {
			continue
		}
		variantURL, ok := childString(variant, "url")
		if !ok {
			continue
		}
		if rate > bestRate {
			bestRate = rate
			bestURL = variantURL
		}
	}
	return bestURL
}

// firstVariant returns the first variant URL regardless of bitrate. Animated
// GIFs are served as a single MP4 variant.
func firstVariant(item map[string]interface{}) string {
	variants := videoVariants(item)
	for _, raw := range variants {
		variant, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		if variantURL, ok := childString(variant, "url"); ok {
			return variantURL
		}
	}
	return ""
}

func videoVariants(item map[string]interface{}) []interface{} {
	info, ok := childObject(item, "video_info")
	if !ok {
		return nil
	}
	variants, _ := childSlice(info, "variants")
	return variants
}

func stripQuery(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}

// deriveExtension re-derives the extension from the cleaned URL path,
// falling back to the type default when the suffix is unrecognized.
func deriveExtension(cleanURL, fallback string) string {
	idx := strings.LastIndex(cleanURL, ".")
	if idx < 0 || idx == len(cleanURL)-1 {
		return fallback
	}
	ext := strings.ToLower(cleanURL[idx+1:])
	if _, ok := knownExtensions[ext]; ok {
		return ext
	}
	return fallback
}
