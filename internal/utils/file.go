package utils

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var imageContentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

func GetFileExtension(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

// IsImageFile reports whether the file has an extension the avatar pipeline
// can decode.
func IsImageFile(filename string) bool {
	_, ok := imageContentTypes[GetFileExtension(filename)]
	return ok
}

// GenerateObjectKey builds a unique storage key under prefix keeping the
// original extension.
func GenerateObjectKey(prefix, originalFilename string) string {
	return fmt.Sprintf("%s/%s%s", strings.Trim(prefix, "/"), uuid.New().String(), GetFileExtension(originalFilename))
}

func GetContentType(filename string) string {
	if contentType, exists := imageContentTypes[GetFileExtension(filename)]; exists {
		return contentType
	}
	return "application/octet-stream"
}
