package handler

import (
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/codequest/backend/internal/contextkeys"
	"github.com/codequest/backend/internal/domain"
	"github.com/codequest/backend/pkg/media"
)

// multipartMemory is how much of a multipart body is kept in memory before spilling to disk.
const multipartMemory = 32 << 20

// ClientIP returns the client IP, preferring proxy headers if available.
func ClientIP(r *http.Request) string {
	// Check X-Real-IP first (set by Nginx)
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	// Check X-Forwarded-For (first entry is the original client)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.SplitN(xff, ",", 2)
		return strings.TrimSpace(parts[0])
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func requestMeta(r *http.Request) domain.RequestMeta {
	return domain.RequestMeta{UserAgent: r.UserAgent(), IPAddress: ClientIP(r)}
}

// userID returns the authenticated account id set by the auth middleware.
func userID(r *http.Request) string {
	id, _ := r.Context().Value(contextkeys.UserID).(string)
	return id
}

func queryInt(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return def
	}
	return v
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// parseMultipart bounds and parses a multipart body.
func parseMultipart(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, media.MaxUploadSize+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return domain.ErrBadRequest("file too large")
		}
		return domain.ErrBadRequest("invalid multipart body")
	}
	return nil
}

// readUpload returns the file in field, or nil when none was sent.
// The content must sniff as an allowed image or video.
func readUpload(r *http.Request, field string) (*media.Upload, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.ErrBadRequest("invalid file upload")
	}
	defer file.Close()

	if header.Size > media.MaxUploadSize {
		return nil, domain.ErrBadRequest("file too large")
	}
	data, err := io.ReadAll(io.LimitReader(file, media.MaxUploadSize+1))
	if err != nil {
		return nil, domain.ErrBadRequest("failed to read upload")
	}
	if len(data) > media.MaxUploadSize {
		return nil, domain.ErrBadRequest("file too large")
	}

	kind, _, err := media.Detect(header.Filename, data)
	if err != nil {
		return nil, domain.ErrBadRequest("Only image and video files are allowed")
	}
	return &media.Upload{Filename: header.Filename, Kind: kind, Data: data}, nil
}

// splitTags accepts "a,b" or repeated form values.
func splitTags(values []string) []string {
	var tags []string
	for _, v := range values {
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
	}
	return tags
}
