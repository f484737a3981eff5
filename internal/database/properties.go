package database

import (
	"github.com/dlomaxw/shinebebright-sub001/internal/models"
	"gorm.io/gorm"
)

// PropertyFilter narrows the public listing query
type PropertyFilter struct {
	Category  string
	Developer string
	Status    string
	Featured  *bool
	Limit     int
	Offset    int
}

const (
	defaultPageSize = 24
	maxPageSize     = 100
)

func (f PropertyFilter) apply(q *gorm.DB) *gorm.DB {
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Developer != "" {
		q = q.Where("developer = ?", f.Developer)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Featured != nil {
		q = q.Where("featured = ?", *f.Featured)
	}
	return q
}

func pageSize(limit int) int {
	if limit <= 0 {
		return defaultPageSize
	}
	if limit > maxPageSize {
		return maxPageSize
	}
	return limit
}

// ListProperties returns one page of properties and the total match count.
// Featured listings come first, then newest.
func (gdb *GormDB) ListProperties(f PropertyFilter) ([]models.Property, int64, error) {
	var total int64
	if err := f.apply(gdb.db.Model(&models.Property{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var properties []models.Property
	err := f.apply(gdb.db).
		Order("featured DESC").
		Order("created_at DESC").
		Limit(pageSize(f.Limit)).
		Offset(max(f.Offset, 0)).
		Find(&properties).Error
	return properties, total, err
}

// GetAllProperties retrieves every property, newest first
func (gdb *GormDB) GetAllProperties() ([]models.Property, error) {
	var properties []models.Property
	err := gdb.db.Order("created_at DESC").Find(&properties).Error
	return properties, err
}

// GetPropertyByID retrieves a property by ID
func (gdb *GormDB) GetPropertyByID(id string) (*models.Property, error) {
	var property models.Property
	err := gdb.db.Where("id = ?", id).First(&property).Error
	if err != nil {
		return nil, err
	}
	return &property, nil
}

// CreateProperty inserts p and its creation record in one transaction
func (gdb *GormDB) CreateProperty(p *models.Property, changes ...models.PropertyChange) error {
	return gdb.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		return saveChanges(tx, p.ID, changes)
	})
}

// SavePropertyWithChanges updates p and records its field changes in one
// transaction
func (gdb *GormDB) SavePropertyWithChanges(p *models.Property, changes []models.PropertyChange) error {
	return gdb.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(p).Error; err != nil {
			return err
		}
		return saveChanges(tx, p.ID, changes)
	})
}

// DeleteProperty removes the row and its media binding. The change history
// is kept.
func (gdb *GormDB) DeleteProperty(id string, changes ...models.PropertyChange) error {
	return gdb.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ?", id).Delete(&models.Property{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Where("entity_id = ?", id).Delete(&models.PropertyMediaBinding{}).Error; err != nil {
			return err
		}
		return saveChanges(tx, id, changes)
	})
}

func saveChanges(tx *gorm.DB, propertyID string, changes []models.PropertyChange) error {
	if len(changes) == 0 {
		return nil
	}
	for i := range changes {
		changes[i].PropertyID = propertyID
	}
	return tx.Create(&changes).Error
}
