package media

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/cloudinary/cloudinary-go/v2/config"
	"github.com/google/uuid"
)

// CloudinaryStore uploads media to Cloudinary.
type CloudinaryStore struct {
	uploader *uploader.API
	base     string
}

// NewCloudinaryStore builds a store from account credentials. base is the root folder.
func NewCloudinaryStore(cloudName, apiKey, apiSecret, base string) (*CloudinaryStore, error) {
	cfg, err := config.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("invalid cloudinary config: %w", err)
	}
	up, err := uploader.NewWithConfiguration(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudinary uploader: %w", err)
	}
	return &CloudinaryStore{uploader: up, base: base}, nil
}

// Save uploads the file and returns its secure URL.
func (s *CloudinaryStore) Save(ctx context.Context, folder string, up Upload) (string, error) {
	resourceType := "image"
	if up.Kind == KindVideo {
		resourceType = "video"
	}
	result, err := s.uploader.Upload(ctx, bytes.NewReader(up.Data), uploader.UploadParams{
		Folder:       s.base + "/" + folder,
		PublicID:     uuid.NewString(),
		ResourceType: resourceType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to cloudinary: %w", err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("cloudinary: %s", result.Error.Message)
	}
	return result.SecureURL, nil
}

// assetPath matches <resource_type>/upload/[v<version>/]<public_id>.<ext> in a delivery URL.
var assetPath = regexp.MustCompile(`/(image|video|raw)/upload/(?:v\d+/)?(.+)$`)

// cloudinaryAsset recovers the resource type and public id from a delivery URL.
func cloudinaryAsset(url string) (resourceType, publicID string, ok bool) {
	m := assetPath.FindStringSubmatch(url)
	if m == nil {
		return "", "", false
	}
	id := m[2]
	if ext := path.Ext(id); ext != "" {
		id = strings.TrimSuffix(id, ext)
	}
	return m[1], id, id != ""
}

// Delete destroys the asset behind url.
func (s *CloudinaryStore) Delete(ctx context.Context, url string) error {
	resourceType, publicID, ok := cloudinaryAsset(url)
	if !ok {
		return fmt.Errorf("not a cloudinary asset url: %q", url)
	}
	result, err := s.uploader.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: resourceType,
	})
	if err != nil {
		return fmt.Errorf("failed to delete from cloudinary: %w", err)
	}
	if result.Error.Message != "" {
		return fmt.Errorf("cloudinary: %s", result.Error.Message)
	}
	return nil
}
