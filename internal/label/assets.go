package label

import (
	"encoding/base64"
	"html/template"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
)

// Background images for the two layouts.
const (
	NormalBackground = "precario.png"
	SmallBackground  = "etiqueta_pequena.png"
)

// Assets resolves label image names to URLs.
type Assets struct {
	// Dir holds the image files. Empty means no images at all.
	Dir string

	// URLPrefix is where Dir is served, e.g. "/assets". Ignored when Inline.
	URLPrefix string

	// Inline embeds images as data URIs.
	Inline bool

	mu    sync.Mutex
	cache map[string]template.URL
}

// URL returns the image URL for name, or "" when the file is missing.
func (a *Assets) URL(name string) template.URL {
	if a == nil || a.Dir == "" || name == "" {
		return ""
	}
	name = filepath.Base(name)

	a.mu.Lock()
	defer a.mu.Unlock()
	if u, ok := a.cache[name]; ok {
		return u
	}

	u := a.resolve(name)
	if a.cache == nil {
		a.cache = make(map[string]template.URL)
	}
	a.cache[name] = u
	return u
}

func (a *Assets) resolve(name string) template.URL {
	full := filepath.Join(a.Dir, name)
	if !a.Inline {
		if _, err := os.Stat(full); err != nil {
			return ""
		}
		prefix := strings.TrimSuffix(a.URLPrefix, "/")
		return template.URL(path.Join(prefix+"/", name))
	}

	data, err := os.ReadFile(full)
	if err != nil {
		return ""
	}
	mimeType := mime.TypeByExtension(filepath.Ext(name))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return template.URL("data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data))
}
