package valueobjects

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"plant-backend/domain/config"
	pkgerrors "plant-backend/pkg/errors"
)

// PlantName is a value object for the display name of a plant
type PlantName struct {
	value string
}

// NewPlantName creates a name with validation using default configuration
func NewPlantName(name string) (PlantName, error) {
	return NewPlantNameWithConfig(name, config.DefaultDomainConfig())
}

// NewPlantNameWithConfig creates a name with validation and configuration
func NewPlantNameWithConfig(name string, cfg *config.DomainConfig) (PlantName, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return PlantName{}, pkgerrors.NewValidationError("human_name cannot be empty")
	}

	length := utf8.RuneCountInString(name)
	if length < cfg.MinNameLength {
		return PlantName{}, fmt.Errorf("human_name too short: minimum %d characters required", cfg.MinNameLength)
	}
	if length > cfg.MaxNameLength {
		return PlantName{}, fmt.Errorf("human_name exceeds maximum length of %d characters", cfg.MaxNameLength)
	}

	return PlantName{value: name}, nil
}

func (n PlantName) String() string {
	return n.value
}

// Equals checks if two names are equal
func (n PlantName) Equals(other PlantName) bool {
	return n.value == other.value
}

// Summary returns the name truncated to maxLength runes
func (n PlantName) Summary(maxLength int) string {
	if maxLength <= 0 {
		return ""
	}
	if utf8.RuneCountInString(n.value) <= maxLength {
		return n.value
	}
	if maxLength <= 3 {
		return string([]rune(n.value)[:maxLength])
	}
	runes := []rune(n.value)
	return string(runes[:maxLength-3]) + "..."
}
