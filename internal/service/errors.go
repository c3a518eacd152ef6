package service

import (
	"errors"

	"gazette/internal/models"

	"gorm.io/gorm"
)

// storeError maps a repository failure onto the API error taxonomy: a missing
// row becomes NOT_FOUND, anything else STORE_UNAVAILABLE.
func storeError(op, resource string, id interface{}, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return models.NewStoreUnavailableError(op, err)
}
