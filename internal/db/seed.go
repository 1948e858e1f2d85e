package db

import (
	"fmt"

	"github.com/wbsdickson/bpsp-portal-sub001/internal/models"
	"gorm.io/gorm"
)

// SeedTaxes inserts the default tax categories that are missing. Running it twice is a no-op.
func SeedTaxes(db *gorm.DB) error {
	for _, tax := range models.DefaultTaxes() {
		t := tax
		if err := db.Where(models.Tax{ID: t.ID}).FirstOrCreate(&t).Error; err != nil {
			return fmt.Errorf("seed tax %s: %w", t.ID, err)
		}
	}
	return nil
}

// LoadTaxes returns every tax category ordered by id.
func LoadTaxes(db *gorm.DB) ([]models.Tax, error) {
	var taxes []models.Tax
	if err := db.Order("id").Find(&taxes).Error; err != nil {
		return nil, err
	}
	return taxes, nil
}
