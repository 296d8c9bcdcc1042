package queries

import (
	"time"

	"plant-backend/domain/core/entities"
	pkgerrors "plant-backend/pkg/errors"
)

// ListImagesQuery lists the photos of a plant, newest first
type ListImagesQuery struct {
	PlantID     string `json:"plant_id"`
	RequesterID string `json:"requester_id"`
}

// Validate validates the query
func (q ListImagesQuery) Validate() error {
	if q.PlantID == "" {
		return pkgerrors.NewValidationError("plant_id is required")
	}
	return requireRequester(q.RequesterID)
}

// GetImageQuery fetches one photo
type GetImageQuery struct {
	ImageID     string `json:"image_id"`
	RequesterID string `json:"requester_id"`
}

// Validate validates the query
func (q GetImageQuery) Validate() error {
	if q.ImageID == "" {
		return pkgerrors.NewValidationError("image_id is required")
	}
	return requireRequester(q.RequesterID)
}

// ImageView is the API representation of an image
type ImageView struct {
	ImageID      string    `json:"image_id"`
	PlantID      string    `json:"plant_id"`
	FullPhotoKey string    `json:"full_photo_s3_url"`
	ThumbnailKey string    `json:"thumbnail_photo_s3_url"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewImageView converts an image entity into its view
func NewImageView(i *entities.Image) ImageView {
	return ImageView{
		ImageID:      i.ImageID,
		PlantID:      i.PlantID,
		FullPhotoKey: i.FullPhotoKey,
		ThumbnailKey: i.ThumbnailKey,
		Timestamp:    i.Timestamp,
	}
}
