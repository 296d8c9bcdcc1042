package dynamodb

import (
	"fmt"
	"strings"
	"time"

	"plant-backend/domain/core/entities"
	"plant-backend/domain/core/valueobjects"
	"plant-backend/pkg/utils"
)

// plantItem represents the DynamoDB item structure for a plant
type plantItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"entity_type"`
	PlantID    string `dynamodbav:"plant_id"`
	UserID     string `dynamodbav:"user_id"`
	HumanID    int    `dynamodbav:"human_id"`
	HumanName  string `dynamodbav:"human_name"`
	Species    string `dynamodbav:"species,omitempty"`
	Location   string `dynamodbav:"location,omitempty"`
	ParentIDs  []int  `dynamodbav:"parent_id,omitempty"`
	Source     string `dynamodbav:"source,omitempty"`
	SourceDate string `dynamodbav:"source_date,omitempty"`
	Sink       string `dynamodbav:"sink,omitempty"`
	SinkDate   string `dynamodbav:"sink_date,omitempty"`
	Notes      string `dynamodbav:"notes,omitempty"`
	CreatedAt  string `dynamodbav:"created_at"`
	UpdatedAt  string `dynamodbav:"updated_at"`
	Version    int    `dynamodbav:"version"`
}

// humanIDItem reserves a human id within a user's partition
type humanIDItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"entity_type"`
	PlantID    string `dynamodbav:"plant_id"`
}

// userItem represents the DynamoDB item structure for a user
type userItem struct {
	PK              string `dynamodbav:"PK"`
	SK              string `dynamodbav:"SK"`
	EntityType      string `dynamodbav:"entity_type"`
	GoogleID        string `dynamodbav:"google_id"`
	Email           string `dynamodbav:"email"`
	GivenName       string `dynamodbav:"given_name"`
	FamilyName      string `dynamodbav:"family_name"`
	Disabled        bool   `dynamodbav:"disabled"`
	IsPublicProfile bool   `dynamodbav:"is_public_profile"`
	CreatedAt       string `dynamodbav:"created_at,omitempty"`
}

// imageItem represents the DynamoDB item structure for an image
type imageItem struct {
	PK            string `dynamodbav:"PK"`
	SK            string `dynamodbav:"SK"`
	EntityType    string `dynamodbav:"entity_type"`
	ImageID       string `dynamodbav:"image_id"`
	PlantID       string `dynamodbav:"plant_id"`
	FullPhotoURL  string `dynamodbav:"full_photo_s3_url"`
	ThumbPhotoURL string `dynamodbav:"thumbnail_photo_s3_url"`
	Timestamp     string `dynamodbav:"timestamp"`
}

// sessionItem represents the DynamoDB item structure for a session token
type sessionItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"entity_type"`
	IssuedAt   string `dynamodbav:"issued_at"`
	ExpiresAt  string `dynamodbav:"expires_at"`
	Revoked    bool   `dynamodbav:"revoked"`
}

func newPlantItem(p *entities.Plant) plantItem {
	d := p.Details()
	item := plantItem{
		PK:         userKey(p.UserID()),
		SK:         plantKey(p.ID()),
		EntityType: entityPlant,
		PlantID:    p.ID(),
		UserID:     p.UserID(),
		HumanID:    p.HumanID(),
		HumanName:  p.Name().String(),
		Species:    d.Species,
		Location:   d.Location,
		ParentIDs:  d.ParentIDs,
		Source:     d.Source,
		Sink:       d.Sink,
		Notes:      d.Notes,
		CreatedAt:  p.CreatedAt().UTC().Format(time.RFC3339),
		UpdatedAt:  p.UpdatedAt().UTC().Format(time.RFC3339),
		Version:    p.Version(),
	}
	if s := utils.FormatDate(d.SourceDate); s != nil {
		item.SourceDate = *s
	}
	if s := utils.FormatDate(d.SinkDate); s != nil {
		item.SinkDate = *s
	}
	return item
}

func (i plantItem) toEntity() (*entities.Plant, error) {
	name, err := valueobjects.NewPlantName(i.HumanName)
	if err != nil {
		return nil, fmt.Errorf("plant %s: %w", i.SK, err)
	}
	sourceDate, err := utils.ParseDate(i.SourceDate)
	if err != nil {
		return nil, fmt.Errorf("plant %s source_date: %w", i.SK, err)
	}
	sinkDate, err := utils.ParseDate(i.SinkDate)
	if err != nil {
		return nil, fmt.Errorf("plant %s sink_date: %w", i.SK, err)
	}

	plantID := i.PlantID
	if plantID == "" {
		plantID = strings.TrimPrefix(i.SK, prefixPlant)
	}
	userID := i.UserID
	if userID == "" {
		userID = strings.TrimPrefix(i.PK, prefixUser)
	}

	createdAt, _ := utils.ParseRFC3339(i.CreatedAt)
	updatedAt, _ := utils.ParseRFC3339(i.UpdatedAt)

	return entities.ReconstructPlant(plantID, userID, i.HumanID, name, entities.PlantDetails{
		Species:    i.Species,
		Location:   i.Location,
		ParentIDs:  i.ParentIDs,
		Source:     i.Source,
		SourceDate: sourceDate,
		Sink:       i.Sink,
		SinkDate:   sinkDate,
		Notes:      i.Notes,
	}, createdAt, updatedAt, i.Version)
}

func (i userItem) toEntity() (*entities.User, error) {
	googleID := i.GoogleID
	if googleID == "" {
		googleID = strings.TrimPrefix(i.PK, prefixUser)
	}
	createdAt, _ := utils.ParseRFC3339(i.CreatedAt)
	return entities.ReconstructUser(googleID, i.Email, i.GivenName, i.FamilyName, i.Disabled, i.IsPublicProfile, createdAt)
}

func newImageItem(img *entities.Image) imageItem {
	return imageItem{
		PK:            plantKey(img.PlantID),
		SK:            imageKey(img.ImageID),
		EntityType:    entityImage,
		ImageID:       img.ImageID,
		PlantID:       img.PlantID,
		FullPhotoURL:  img.FullPhotoKey,
		ThumbPhotoURL: img.ThumbnailKey,
		Timestamp:     img.Timestamp.UTC().Format(time.RFC3339),
	}
}

func (i imageItem) toEntity() *entities.Image {
	imageID := i.ImageID
	if imageID == "" {
		imageID = strings.TrimPrefix(i.SK, prefixImage)
	}
	plantID := i.PlantID
	if plantID == "" {
		plantID = strings.TrimPrefix(i.PK, prefixPlant)
	}
	ts, _ := utils.ParseRFC3339(i.Timestamp)
	return &entities.Image{
		ImageID:      imageID,
		PlantID:      plantID,
		FullPhotoKey: i.FullPhotoURL,
		ThumbnailKey: i.ThumbPhotoURL,
		Timestamp:    ts,
	}
}

func (i sessionItem) toEntity() *entities.SessionToken {
	issuedAt, _ := utils.ParseRFC3339(i.IssuedAt)
	expiresAt, _ := utils.ParseRFC3339(i.ExpiresAt)
	return &entities.SessionToken{
		TokenID:   strings.TrimPrefix(i.PK, prefixSession),
		UserID:    strings.TrimPrefix(i.SK, prefixUser),
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
		Revoked:   i.Revoked,
	}
}
