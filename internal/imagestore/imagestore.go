package imagestore

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/altairhq/usermanagement/internal/dto"
)

// AllowedExtensions lists the image types accepted for profile pictures.
var AllowedExtensions = []string{".jpg", ".jpeg", ".png", ".gif"}

// Store saves and removes profile images in an external object store.
type Store interface {
	SaveImage(ctx context.Context, file *dto.FileUpload) (string, error)
	DeleteImage(ctx context.Context, url string) error
}

// IsValidImage reports whether the filename carries an accepted image
// extension. The check is case insensitive.
func IsValidImage(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
