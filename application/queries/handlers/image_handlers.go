package handlers

import (
	"context"

	"plant-backend/application/ports"
	"plant-backend/application/queries"
	"plant-backend/domain/core/entities"
)

// ListImagesHandler lists the photos of a plant
type ListImagesHandler struct {
	plantRepo ports.PlantRepository
	imageRepo ports.ImageRepository
	userRepo  ports.UserRepository
}

// NewListImagesHandler creates a new image listing handler
func NewListImagesHandler(plantRepo ports.PlantRepository, imageRepo ports.ImageRepository, userRepo ports.UserRepository) *ListImagesHandler {
	return &ListImagesHandler{
		plantRepo: plantRepo,
		imageRepo: imageRepo,
		userRepo:  userRepo,
	}
}

// Handle executes the query
func (h *ListImagesHandler) Handle(ctx context.Context, query queries.ListImagesQuery) ([]queries.ImageView, error) {
	plant, err := h.plantRepo.GetByID(ctx, query.PlantID)
	if err != nil {
		return nil, err
	}
	if err := authorizeView(ctx, h.userRepo, query.RequesterID, plant.UserID()); err != nil {
		return nil, err
	}

	images, err := h.imageRepo.ListByPlant(ctx, query.PlantID)
	if err != nil {
		return nil, err
	}
	entities.SortImagesNewestFirst(images)

	views := make([]queries.ImageView, len(images))
	for i, img := range images {
		views[i] = queries.NewImageView(img)
	}
	return views, nil
}

// GetImageHandler fetches a single photo. Visibility follows the owner of
// the plant the photo belongs to.
type GetImageHandler struct {
	plantRepo ports.PlantRepository
	imageRepo ports.ImageRepository
	userRepo  ports.UserRepository
}

// NewGetImageHandler creates a new image lookup handler
func NewGetImageHandler(plantRepo ports.PlantRepository, imageRepo ports.ImageRepository, userRepo ports.UserRepository) *GetImageHandler {
	return &GetImageHandler{
		plantRepo: plantRepo,
		imageRepo: imageRepo,
		userRepo:  userRepo,
	}
}

// Handle executes the query
func (h *GetImageHandler) Handle(ctx context.Context, query queries.GetImageQuery) (queries.ImageView, error) {
	img, err := h.imageRepo.GetByID(ctx, query.ImageID)
	if err != nil {
		return queries.ImageView{}, err
	}
	plant, err := h.plantRepo.GetByID(ctx, img.PlantID)
	if err != nil {
		return queries.ImageView{}, err
	}
	if err := authorizeView(ctx, h.userRepo, query.RequesterID, plant.UserID()); err != nil {
		return queries.ImageView{}, err
	}
	return queries.NewImageView(img), nil
}
