package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

// Default values for a new queue display.
const (
	DefaultQueueColor       int64 = 4294922834 // 0xFFFF5252
	DefaultQueueVideoURL          = "https://sicnot.live.impresa.pt/sicnot.m3u8"
	DefaultQueueSoundVolume       = 100
	DefaultQueueVelocity          = 50
)

// MaxColor is the largest ARGB value a queue background may hold.
const MaxColor int64 = 0xFFFFFFFF

// Queue is one "now serving" display shown by the TV app.
type Queue struct {
	ID              string `json:"id" yaml:"id"`
	Name            string `json:"name" yaml:"name"`
	Number          int    `json:"number" yaml:"number"`
	Icon            int    `json:"icon" yaml:"icon"`
	BackgroundColor int64  `json:"backgroundColor" yaml:"backgroundColor"`
	VideoURL        string `json:"videoURL" yaml:"videoURL"`
	VideoVolume     int    `json:"videoVolume" yaml:"videoVolume"`
	SoundVolume     int    `json:"soundVolume" yaml:"soundVolume"`
	Velocity        int    `json:"velocity" yaml:"velocity"`
	HasNews         bool   `json:"hasNews" yaml:"hasNews"`
}

// QueueInput holds the editable fields of a queue.
type QueueInput struct {
	Name            string `json:"name"`
	Number          int    `json:"number"`
	Icon            int    `json:"icon"`
	BackgroundColor int64  `json:"backgroundColor"`
	VideoURL        string `json:"videoURL"`
	VideoVolume     int    `json:"videoVolume"`
	SoundVolume     int    `json:"soundVolume"`
	Velocity        int    `json:"velocity"`
	HasNews         bool   `json:"hasNews"`
}

// DefaultQueueInput is the blank "new queue" form.
func DefaultQueueInput() QueueInput {
	return QueueInput{
		BackgroundColor: DefaultQueueColor,
		VideoURL:        DefaultQueueVideoURL,
		SoundVolume:     DefaultQueueSoundVolume,
		Velocity:        DefaultQueueVelocity,
		HasNews:         true,
	}
}

// Input returns the editable fields of q.
func (q Queue) Input() QueueInput {
	return QueueInput{
		Name:            q.Name,
		Number:          q.Number,
		Icon:            q.Icon,
		BackgroundColor: q.BackgroundColor,
		VideoURL:        q.VideoURL,
		VideoVolume:     q.VideoVolume,
		SoundVolume:     q.SoundVolume,
		Velocity:        q.Velocity,
		HasNews:         q.HasNews,
	}
}

// WithInput returns q with its editable fields replaced by in.
func (q Queue) WithInput(in QueueInput) Queue {
	q.Name = in.Name
	q.Number = in.Number
	q.Icon = in.Icon
	q.BackgroundColor = in.BackgroundColor
	q.VideoURL = in.VideoURL
	q.VideoVolume = in.VideoVolume
	q.SoundVolume = in.SoundVolume
	q.Velocity = in.Velocity
	q.HasNews = in.HasNews
	return q
}

// QueueDocument is the stored / imported shape of a queue. Absent fields take
// the DefaultQueueInput values in FromQueueDocument; explicit zeros are kept.
type QueueDocument struct {
	ID              string  `json:"id,omitempty" yaml:"id,omitempty"`
	Name            string  `json:"name" yaml:"name"`
	Number          *int    `json:"number,omitempty" yaml:"number,omitempty"`
	Icon            *int    `json:"icon,omitempty" yaml:"icon,omitempty"`
	BackgroundColor *int64  `json:"backgroundColor,omitempty" yaml:"backgroundColor,omitempty"`
	VideoURL        *string `json:"videoURL,omitempty" yaml:"videoURL,omitempty"`
	VideoVolume     *int    `json:"videoVolume,omitempty" yaml:"videoVolume,omitempty"`
	SoundVolume     *int    `json:"soundVolume,omitempty" yaml:"soundVolume,omitempty"`
	Velocity        *int    `json:"velocity,omitempty" yaml:"velocity,omitempty"`
	HasNews         *bool   `json:"hasNews,omitempty" yaml:"hasNews,omitempty"`
}

// Document converts q to its stored shape.
func (q Queue) Document() QueueDocument {
	return QueueDocument{
		ID:              q.ID,
		Name:            q.Name,
		Number:          &q.Number,
		Icon:            &q.Icon,
		BackgroundColor: &q.BackgroundColor,
		VideoURL:        &q.VideoURL,
		VideoVolume:     &q.VideoVolume,
		SoundVolume:     &q.SoundVolume,
		Velocity:        &q.Velocity,
		HasNews:         &q.HasNews,
	}
}

// FromQueueDocument reads a stored document, defaulting absent fields.
func FromQueueDocument(doc QueueDocument) Queue {
	in := DefaultQueueInput()
	in.Name = doc.Name
	if doc.Number != nil {
		in.Number = *doc.Number
	}
	if doc.Icon != nil {
		in.Icon = *doc.Icon
	}
	if doc.BackgroundColor != nil {
		in.BackgroundColor = *doc.BackgroundColor
	}
	if doc.VideoURL != nil {
		in.VideoURL = *doc.VideoURL
	}
	if doc.VideoVolume != nil {
		in.VideoVolume = *doc.VideoVolume
	}
	if doc.SoundVolume != nil {
		in.SoundVolume = *doc.SoundVolume
	}
	if doc.Velocity != nil {
		in.Velocity = *doc.Velocity
	}
	if doc.HasNews != nil {
		in.HasNews = *doc.HasNews
	}
	return Queue{ID: doc.ID}.WithInput(in)
}

// ColorHex converts an Android ARGB color to CSS "#RRGGBBAA".
func ColorHex(argb int64) string {
	c := uint32(argb)
	a := c >> 24
	rgb := c & 0x00FFFFFF
	return fmt.Sprintf("#%06x%02x", rgb, a)
}

// ParseColor accepts "#rrggbb" (opaque), "#aarrggbb" or a decimal ARGB value.
// Empty input yields DefaultQueueColor.
func ParseColor(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultQueueColor, nil
	}
	if hex, ok := strings.CutPrefix(raw, "#"); ok {
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return 0, fmt.Errorf("parse color %q: %w", raw, err)
		}
		switch len(hex) {
		case 6:
			return int64(v) | 0xFF000000, nil
		case 8:
			return int64(v), nil
		}
		return 0, fmt.Errorf("parse color %q: want #rrggbb or #aarrggbb", raw)
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse color %q: %w", raw, err)
	}
	return v, nil
}
