package media

import (
	"fmt"
	"slices"
	"strings"

	"github.com/desertthunder/onlyhub/internal/shared"
)

// ValidateImage checks an image against the allowed types and the 10MB ceiling. It makes no network call.
func ValidateImage(file *File) error {
	return validate(file, ImageTypes, MaxImageSize)
}

// ValidateVideo checks a video against the allowed types and the 100MB ceiling. It makes no network call.
func ValidateVideo(file *File) error {
	return validate(file, VideoTypes, MaxVideoSize)
}

// ValidateMedia checks file as a video when its content type says so and as an image otherwise.
func ValidateMedia(file *File) error {
	if file != nil && strings.HasPrefix(normalizeType(file.ContentType), "video/") {
		return ValidateVideo(file)
	}
	return ValidateImage(file)
}

func validate(file *File, allowed []string, maxSize int64) error {
	if file == nil {
		return fmt.Errorf("%w: no file given", shared.ErrValidation)
	}
	if !slices.Contains(allowed, normalizeType(file.ContentType)) {
		return fmt.Errorf("%w: file type not allowed, accepted: %s", shared.ErrValidation, strings.Join(allowed, ", "))
	}
	if file.Size > maxSize {
		return fmt.Errorf("%w: file too large, maximum: %dMB", shared.ErrValidation, maxSize/MB)
	}
	return nil
}
