package catalog

import (
	"net/url"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeProductInput cleans user input before validation: the price is
// sanitized and switched to a comma separator, the description trimmed and
// NFC-normalized so that visually equal descriptions compare equal.
func NormalizeProductInput(in ProductInput) ProductInput {
	in.Price = NormalizePrice(strings.TrimSpace(in.Price))
	in.Description = norm.NFC.String(strings.TrimSpace(in.Description))
	return in
}

// ValidateProduct checks a (normalized) product input.
// Returns *ValidationError listing every offending field, or nil.
func ValidateProduct(in ProductInput) error {
	errs := fieldErrors{}

	if strings.TrimSpace(in.Description) == "" {
		errs.add("description", "Description is required")
	}

	if strings.TrimSpace(in.Price) == "" {
		errs.add("price", "Price is required")
	} else if !priceRe.MatchString(in.Price) {
		errs.add("price", "Price must be in format: 24,95 or 24.95")
	} else if !ValidPrice(in.Price) {
		errs.add("price", "Price is too large")
	}

	if !in.Category.Valid() {
		errs.add("category", "Unknown category")
	}
	if !in.Unit.Valid() {
		errs.add("unit", "Unknown unit")
	}
	if !in.LabelSize.Valid() {
		errs.add("labelSize", "Unknown label size")
	}

	return errs.err()
}

// NormalizeQueueInput trims the free-text queue fields.
func NormalizeQueueInput(in QueueInput) QueueInput {
	in.Name = norm.NFC.String(strings.TrimSpace(in.Name))
	in.VideoURL = strings.TrimSpace(in.VideoURL)
	return in
}

// ValidateQueue checks a (normalized) queue input.
func ValidateQueue(in QueueInput) error {
	errs := fieldErrors{}

	if strings.TrimSpace(in.Name) == "" {
		errs.add("name", "Queue name is required")
	}
	if in.Number < 0 {
		errs.add("number", "Number must be positive")
	}

	if strings.TrimSpace(in.VideoURL) == "" {
		errs.add("videoURL", "Video URL is required")
	} else if !isHTTPURL(in.VideoURL) {
		errs.add("videoURL", "Video URL must be an absolute http(s) URL")
	}

	if in.VideoVolume < 0 || in.VideoVolume > 100 {
		errs.add("videoVolume", "Video volume must be between 0 and 100")
	}
	if in.SoundVolume < 0 || in.SoundVolume > 100 {
		errs.add("soundVolume", "Sound volume must be between 0 and 100")
	}
	if in.BackgroundColor < 0 || in.BackgroundColor > MaxColor {
		errs.add("backgroundColor", "Background color must be a 32-bit ARGB value")
	}
	if in.Velocity < 0 {
		errs.add("velocity", "Velocity must be positive")
	}

	return errs.err()
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
