// Package media stores uploaded images and videos.
package media

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MaxUploadSize bounds a single uploaded file.
const MaxUploadSize = 100 << 20

// Kind is the broad class of an uploaded file.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// ErrUnsupported is returned for files that are neither an allowed image nor video.
var ErrUnsupported = errors.New("unsupported file type")

var (
	imageExts = map[string]bool{".jpeg": true, ".jpg": true, ".png": true, ".gif": true, ".webp": true}
	videoExts = map[string]bool{
		".mp4": true, ".avi": true, ".mov": true, ".wmv": true,
		".flv": true, ".mkv": true, ".webm": true,
	}
)

// Detect sniffs the content and checks it against the filename extension.
// Both must agree on image or video.
func Detect(filename string, head []byte) (Kind, string, error) {
	mt := mimetype.Detect(head)
	ext := strings.ToLower(filepath.Ext(filename))
	switch {
	case strings.HasPrefix(mt.String(), "image/") && imageExts[ext]:
		return KindImage, mt.String(), nil
	case strings.HasPrefix(mt.String(), "video/") && videoExts[ext]:
		return KindVideo, mt.String(), nil
	}
	return "", mt.String(), ErrUnsupported
}

// Upload is one file ready to be stored.
type Upload struct {
	Filename string
	Kind     Kind
	Data     []byte
}

// Store persists uploads and returns a URL clients can fetch them from.
// Delete removes a previously saved upload by the URL Save returned.
type Store interface {
	Save(ctx context.Context, folder string, up Upload) (string, error)
	Delete(ctx context.Context, url string) error
}
