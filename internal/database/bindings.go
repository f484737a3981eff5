package database

import (
	"time"

	"github.com/dlomaxw/shinebebright-sub001/internal/models"
	"github.com/dlomaxw/shinebebright-sub001/internal/registry"
	"gorm.io/gorm"
)

// TitleIndex matches registry titles against stored properties and
// projects
type TitleIndex struct {
	db *gorm.DB
}

func (gdb *GormDB) TitleIndex() *TitleIndex {
	return &TitleIndex{db: gdb.db}
}

// MatchTitle returns every property and project titled exactly title
func (t *TitleIndex) MatchTitle(title string) ([]registry.Match, error) {
	var matches []registry.Match

	var propertyIDs []string
	if err := t.db.Model(&models.Property{}).Where("title = ?", title).Pluck("id", &propertyIDs).Error; err != nil {
		return nil, err
	}
	for _, id := range propertyIDs {
		matches = append(matches, registry.Match{EntityType: models.BindingEntityProperty, EntityID: id})
	}

	var projectIDs []string
	if err := t.db.Model(&models.Project{}).Where("title = ?", title).Pluck("id", &projectIDs).Error; err != nil {
		return nil, err
	}
	for _, id := range projectIDs {
		matches = append(matches, registry.Match{EntityType: models.BindingEntityProject, EntityID: id})
	}

	return matches, nil
}

// SaveBindings replaces every stored binding with bindings
func (gdb *GormDB) SaveBindings(bindings []registry.Binding) error {
	now := time.Now()
	rows := make([]models.PropertyMediaBinding, 0, len(bindings))
	for _, b := range bindings {
		rows = append(rows, models.PropertyMediaBinding{
			EntityType:   b.EntityType,
			EntityID:     b.EntityID,
			Title:        b.Title,
			Developer:    b.Developer,
			Folder:       b.Folder,
			VideoEmbedID: b.VideoEmbedID,
			BoundAt:      now,
		})
	}

	return gdb.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.PropertyMediaBinding{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}

// GetBinding returns the binding of an entity, or gorm.ErrRecordNotFound
func (gdb *GormDB) GetBinding(entityID string) (*models.PropertyMediaBinding, error) {
	var binding models.PropertyMediaBinding
	if err := gdb.db.Where("entity_id = ?", entityID).First(&binding).Error; err != nil {
		return nil, err
	}
	return &binding, nil
}

// GetBindings returns the bindings of the given entities keyed by id
func (gdb *GormDB) GetBindings(entityIDs []string) (map[string]*models.PropertyMediaBinding, error) {
	result := make(map[string]*models.PropertyMediaBinding, len(entityIDs))
	if len(entityIDs) == 0 {
		return result, nil
	}
	var bindings []models.PropertyMediaBinding
	if err := gdb.db.Where("entity_id IN ?", entityIDs).Find(&bindings).Error; err != nil {
		return nil, err
	}
	for i := range bindings {
		result[bindings[i].EntityID] = &bindings[i]
	}
	return result, nil
}

// ListBindings returns every stored binding
func (gdb *GormDB) ListBindings() ([]models.PropertyMediaBinding, error) {
	var bindings []models.PropertyMediaBinding
	err := gdb.db.Order("title ASC").Find(&bindings).Error
	return bindings, err
}
