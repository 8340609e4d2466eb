package domain

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/mediavault/mediavault/pkg/models"
)

// subdirNames maps media types onto staging subdirectory names.
var subdirNames = map[models.MediaType]string{
	models.MediaTypeMovie:       "movies",
	models.MediaTypeTV:          "tv",
	models.MediaTypeDocumentary: "documentaries",
}

// SubdirFor returns the staging subdirectory for a media type. Types without
// a recognized subdirectory fall back to "other".
func SubdirFor(mediaType models.MediaType, allowed []string) string {
	name, ok := subdirNames[mediaType]
	if !ok {
		return "other"
	}
	for _, a := range allowed {
		if a == name {
			return name
		}
	}
	return "other"
}

// StagingDir builds the per-media-type, per-date staging directory under a
// root.
func StagingDir(root string, mediaType models.MediaType, allowed []string, now time.Time) string {
	return filepath.Join(root, SubdirFor(mediaType, allowed), now.Format("2006-01-02"))
}

// UniquePath returns the first collision-free path for filename inside dir,
// appending _1, _2, ... before the extension on a name clash.
func UniquePath(dir, filename string, exists func(string) bool) string {
	candidate := filepath.Join(dir, filename)
	ext := filepath.Ext(filename)
	stem := strings.TrimSuffix(filename, ext)

	for counter := 1; exists(candidate); counter++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, counter, ext))
	}
	return candidate
}
