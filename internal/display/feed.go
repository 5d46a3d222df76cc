package display

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/roach88/precario/internal/catalog"
)

// DomainFeed prefixes feed fingerprints. The version suffix changes whenever
// the feed shape does.
const DomainFeed = "precario/display-feed/v1"

// Entry is one queue as the TV app sees it.
type Entry struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Number          int    `json:"number"`
	Icon            int    `json:"icon"`
	BackgroundColor int64  `json:"backgroundColor"`
	Color           string `json:"color"`
	VideoURL        string `json:"videoURL"`
	VideoVolume     int    `json:"videoVolume"`
	SoundVolume     int    `json:"soundVolume"`
	Velocity        int    `json:"velocity"`
	HasNews         bool   `json:"hasNews"`
}

// Feed is the document served at /api/display/queues.
type Feed struct {
	Queues []Entry `json:"queues"`
}

// BuildFeed converts queues (already in name order) into a feed. A nil input
// yields an empty, non-nil list.
func BuildFeed(queues []catalog.Queue) Feed {
	entries := make([]Entry, 0, len(queues))
	for _, q := range queues {
		entries = append(entries, Entry{
			ID:              q.ID,
			Name:            q.Name,
			Number:          q.Number,
			Icon:            q.Icon,
			BackgroundColor: q.BackgroundColor,
			Color:           catalog.ColorHex(q.BackgroundColor),
			VideoURL:        q.VideoURL,
			VideoVolume:     q.VideoVolume,
			SoundVolume:     q.SoundVolume,
			Velocity:        q.Velocity,
			HasNews:         q.HasNews,
		})
	}
	return Feed{Queues: entries}
}

// canonicalValue mirrors the JSON encoding of f with MarshalCanonical types.
func (f Feed) canonicalValue() map[string]any {
	queues := make([]any, 0, len(f.Queues))
	for _, e := range f.Queues {
		queues = append(queues, map[string]any{
			"id":              e.ID,
			"name":            e.Name,
			"number":          e.Number,
			"icon":            e.Icon,
			"backgroundColor": e.BackgroundColor,
			"color":           e.Color,
			"videoURL":        e.VideoURL,
			"videoVolume":     e.VideoVolume,
			"soundVolume":     e.SoundVolume,
			"velocity":        e.Velocity,
			"hasNews":         e.HasNews,
		})
	}
	return map[string]any{"queues": queues}
}

// Fingerprint is the hex SHA-256 of the feed's canonical JSON, domain
// separated with DomainFeed.
func (f Feed) Fingerprint() (string, error) {
	canonical, err := MarshalCanonical(f.canonicalValue())
	if err != nil {
		return "", fmt.Errorf("fingerprint feed: %w", err)
	}
	return hashWithDomain(DomainFeed, canonical), nil
}

// ETag is the strong entity tag for the feed: the quoted fingerprint.
func (f Feed) ETag() (string, error) {
	fp, err := f.Fingerprint()
	if err != nil {
		return "", err
	}
	return `"` + fp + `"`, nil
}

// hashWithDomain computes SHA256(domain + 0x00 + data). The null byte keeps
// the domain/data boundary unambiguous.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// MatchesETag reports whether an If-None-Match header value matches etag.
// Handles "*", comma separated lists and weak (W/) validators.
func MatchesETag(ifNoneMatch, etag string) bool {
	for _, candidate := range strings.Split(ifNoneMatch, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" {
			return true
		}
		candidate = strings.TrimPrefix(candidate, "W/")
		if candidate != "" && candidate == etag {
			return true
		}
	}
	return false
}
