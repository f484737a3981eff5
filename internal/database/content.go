package database

import (
	"time"

	"github.com/dlomaxw/shinebebright-sub001/internal/models"
	"gorm.io/gorm"
)

// ListProjects returns portfolio entries, featured first. service filters
// by service type when set.
func (gdb *GormDB) ListProjects(service string) ([]models.Project, error) {
	var projects []models.Project
	q := gdb.db.Order("featured DESC").Order("created_at DESC")
	if service != "" {
		q = q.Where("service = ?", service)
	}
	err := q.Find(&projects).Error
	return projects, err
}

// GetProject finds a project by id or slug
func (gdb *GormDB) GetProject(idOrSlug string) (*models.Project, error) {
	var project models.Project
	err := gdb.db.Where("id = ? OR slug = ?", idOrSlug, idOrSlug).First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (gdb *GormDB) CreateProject(p *models.Project) error {
	return gdb.db.Create(p).Error
}

func (gdb *GormDB) SaveProject(p *models.Project) error {
	return gdb.db.Save(p).Error
}

// DeleteProject removes the project and its media binding
func (gdb *GormDB) DeleteProject(id string) error {
	return gdb.db.Transaction(func(tx *gorm.DB) error {
		return deleteWithBinding(tx, &models.Project{}, id)
	})
}

// ListTeamMembers returns the team in display order
func (gdb *GormDB) ListTeamMembers() ([]models.TeamMember, error) {
	var members []models.TeamMember
	err := gdb.db.Order("sort_order ASC").Order("name ASC").Find(&members).Error
	return members, err
}

func (gdb *GormDB) GetTeamMember(id string) (*models.TeamMember, error) {
	var member models.TeamMember
	if err := gdb.db.Where("id = ?", id).First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (gdb *GormDB) CreateTeamMember(m *models.TeamMember) error {
	return gdb.db.Create(m).Error
}

func (gdb *GormDB) SaveTeamMember(m *models.TeamMember) error {
	return gdb.db.Save(m).Error
}

func (gdb *GormDB) DeleteTeamMember(id string) error {
	return deleteByID(gdb.db, &models.TeamMember{}, id)
}

// ListPosts returns news posts, newest first. publishedOnly hides drafts
// and posts scheduled in the future.
func (gdb *GormDB) ListPosts(publishedOnly bool, limit, offset int) ([]models.BlogPost, int64, error) {
	q := gdb.db.Model(&models.BlogPost{})
	if publishedOnly {
		q = q.Where("status = ? AND published_at <= ?", models.PostStatusPublished, time.Now())
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []models.BlogPost
	err := q.Order("published_at DESC").Order("created_at DESC").
		Limit(pageSize(limit)).
		Offset(max(offset, 0)).
		Find(&posts).Error
	return posts, total, err
}

// GetPublishedPosts returns every live post, newest first
func (gdb *GormDB) GetPublishedPosts() ([]models.BlogPost, error) {
	var posts []models.BlogPost
	err := gdb.db.Where("status = ? AND published_at <= ?", models.PostStatusPublished, time.Now()).
		Order("published_at DESC").
		Find(&posts).Error
	return posts, err
}

// GetPublishedPost finds a published post by slug
func (gdb *GormDB) GetPublishedPost(slug string) (*models.BlogPost, error) {
	var post models.BlogPost
	err := gdb.db.Where("slug = ? AND status = ?", slug, models.PostStatusPublished).First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (gdb *GormDB) GetPost(id string) (*models.BlogPost, error) {
	var post models.BlogPost
	if err := gdb.db.Where("id = ?", id).First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (gdb *GormDB) CreatePost(p *models.BlogPost) error {
	return gdb.db.Create(p).Error
}

func (gdb *GormDB) SavePost(p *models.BlogPost) error {
	return gdb.db.Save(p).Error
}

func (gdb *GormDB) DeletePost(id string) error {
	return deleteByID(gdb.db, &models.BlogPost{}, id)
}

func deleteByID(db *gorm.DB, model any, id string) error {
	result := db.Where("id = ?", id).Delete(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func deleteWithBinding(tx *gorm.DB, model any, id string) error {
	if err := deleteByID(tx, model, id); err != nil {
		return err
	}
	return tx.Where("entity_id = ?", id).Delete(&models.PropertyMediaBinding{}).Error
}
