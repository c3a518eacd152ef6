package seed

import (
	"fmt"

	"gazette/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BuiltInCategories defines the permanent category set every fresh
// deployment starts with. Seeding is idempotent; existing rows are kept.
var BuiltInCategories = []string{
	"technology",
	"science",
	"politics",
	"business",
	"culture",
	"sports",
	"health",
	"travel",
	"food",
	"opinion",
}

// Categories seeds the built-in category set.
func Categories(db *gorm.DB) error {
	for _, name := range BuiltInCategories {
		category := models.Category{Name: name}
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&category).Error
		if err != nil {
			return fmt.Errorf("seed built-in category %s: %w", name, err)
		}
	}
	return nil
}
