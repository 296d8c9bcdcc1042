package entities

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Image is a photo attached to a plant. The keys point into object storage.
type Image struct {
	ImageID      string
	PlantID      string
	FullPhotoKey string
	ThumbnailKey string
	Timestamp    time.Time
}

// NewImage creates an image record for a plant
func NewImage(plantID, fullPhotoKey, thumbnailKey string, taken time.Time) *Image {
	if taken.IsZero() {
		taken = time.Now().UTC()
	}
	return &Image{
		ImageID:      uuid.New().String(),
		PlantID:      plantID,
		FullPhotoKey: fullPhotoKey,
		ThumbnailKey: thumbnailKey,
		Timestamp:    taken,
	}
}

// ObjectKeys returns the non-empty storage keys of the image
func (i *Image) ObjectKeys() []string {
	keys := make([]string, 0, 2)
	if i.FullPhotoKey != "" {
		keys = append(keys, i.FullPhotoKey)
	}
	if i.ThumbnailKey != "" && i.ThumbnailKey != i.FullPhotoKey {
		keys = append(keys, i.ThumbnailKey)
	}
	return keys
}

// SortImagesNewestFirst orders images by timestamp, newest first
func SortImagesNewestFirst(images []*Image) {
	sort.SliceStable(images, func(a, b int) bool {
		return images[a].Timestamp.After(images[b].Timestamp)
	})
}
