package handlers

import (
	"net/http"

	"github.com/dlomaxw/shinebebright-sub001/internal/database"
	"github.com/dlomaxw/shinebebright-sub001/internal/history"
	"github.com/dlomaxw/shinebebright-sub001/internal/logging"
	"github.com/dlomaxw/shinebebright-sub001/internal/models"
	"github.com/dlomaxw/shinebebright-sub001/internal/schema"
	"github.com/dlomaxw/shinebebright-sub001/internal/search"
	"github.com/gin-gonic/gin"
)

// Index updates after a write only log failures; the row is committed.

func (h *AdminHandler) indexProperty(c *gin.Context, p *models.Property) {
	if h.index == nil {
		return
	}
	doc, err := h.catalog.PropertyDocument(p)
	if err == nil {
		err = h.index.IndexProperties([]search.PropertyDocument{doc})
	}
	if err != nil {
		logging.FromGin(c).Warn().Err(err).Str("property_id", p.ID).Msg("failed to index property")
	}
}

func (h *AdminHandler) indexPost(c *gin.Context, p *models.BlogPost) {
	if h.index == nil {
		return
	}
	var err error
	if p.Status == models.PostStatusPublished {
		err = h.index.IndexNews([]search.NewsDocument{search.NewNewsDocument(p)})
	} else {
		err = h.index.DeleteNews(p.ID)
	}
	if err != nil {
		logging.FromGin(c).Warn().Err(err).Str("post_id", p.ID).Msg("failed to index post")
	}
}

func (h *AdminHandler) unindex(c *gin.Context, remove func(string) error, id string) {
	if h.index == nil {
		return
	}
	if err := remove(id); err != nil {
		logging.FromGin(c).Warn().Err(err).Str("id", id).Msg("failed to remove search document")
	}
}

// ListProperties returns listings without media resolution
func (h *AdminHandler) ListProperties(c *gin.Context) {
	props, total, err := h.db.ListProperties(database.PropertyFilter{
		Category:  c.Query("category"),
		Developer: c.Query("developer"),
		Status:    c.Query("status"),
		Featured:  queryBool(c, "featured"),
		Limit:     queryInt(c, "limit", 100),
		Offset:    queryInt(c, "offset", 0),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"properties": props, "total": total, "count": len(props)})
}

func (h *AdminHandler) CreateProperty(c *gin.Context) {
	var in schema.PropertyInput
	if !bindJSON(c, &in) {
		return
	}
	p := in.ToModel()
	if err := h.db.CreateProperty(p, history.NewPropertyChange(models.ChangeTypeNew, p)); err != nil {
		respondError(c, err)
		return
	}
	h.indexProperty(c, p)
	c.JSON(http.StatusCreated, p)
}

// UpdateProperty saves the form and records one change per edited field
func (h *AdminHandler) UpdateProperty(c *gin.Context) {
	var in schema.PropertyInput
	if !bindJSON(c, &in) {
		return
	}
	prev, err := h.db.GetPropertyByID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	next := *prev
	in.Apply(&next)
	changes := history.DetectChanges(prev, &next)
	if err := h.db.SavePropertyWithChanges(&next, changes); err != nil {
		respondError(c, err)
		return
	}
	h.indexProperty(c, &next)
	c.JSON(http.StatusOK, gin.H{"property": next, "changes": changes})
}

func (h *AdminHandler) DeleteProperty(c *gin.Context) {
	p, err := h.db.GetPropertyByID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.db.DeleteProperty(p.ID, history.NewPropertyChange(models.ChangeTypeRemoved, p)); err != nil {
		respondError(c, err)
		return
	}
	if h.index != nil {
		h.unindex(c, h.index.DeleteProperty, p.ID)
	}
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) ListProjects(c *gin.Context) {
	projects, err := h.db.ListProjects(c.Query("service"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects, "count": len(projects)})
}

func (h *AdminHandler) CreateProject(c *gin.Context) {
	var in schema.ProjectInput
	if !bindJSON(c, &in) {
		return
	}
	p := in.ToModel()
	if err := h.db.CreateProject(p); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *AdminHandler) UpdateProject(c *gin.Context) {
	var in schema.ProjectInput
	if !bindJSON(c, &in) {
		return
	}
	p, err := h.db.GetProject(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	in.Apply(p)
	if err := h.db.SaveProject(p); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *AdminHandler) DeleteProject(c *gin.Context) {
	if err := h.db.DeleteProject(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) CreateTeamMember(c *gin.Context) {
	var in schema.TeamMemberInput
	if !bindJSON(c, &in) {
		return
	}
	m := in.ToModel()
	if err := h.db.CreateTeamMember(m); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *AdminHandler) UpdateTeamMember(c *gin.Context) {
	var in schema.TeamMemberInput
	if !bindJSON(c, &in) {
		return
	}
	m, err := h.db.GetTeamMember(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	in.Apply(m)
	if err := h.db.SaveTeamMember(m); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *AdminHandler) DeleteTeamMember(c *gin.Context) {
	if err := h.db.DeleteTeamMember(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListPosts includes drafts
func (h *AdminHandler) ListPosts(c *gin.Context) {
	posts, total, err := h.db.ListPosts(false, queryInt(c, "limit", 50), queryInt(c, "offset", 0))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts, "total": total, "count": len(posts)})
}

func (h *AdminHandler) CreatePost(c *gin.Context) {
	var in schema.BlogPostInput
	if !bindJSON(c, &in) {
		return
	}
	p := in.ToModel()
	if err := h.db.CreatePost(p); err != nil {
		respondError(c, err)
		return
	}
	h.indexPost(c, p)
	c.JSON(http.StatusCreated, p)
}

func (h *AdminHandler) UpdatePost(c *gin.Context) {
	var in schema.BlogPostInput
	if !bindJSON(c, &in) {
		return
	}
	p, err := h.db.GetPost(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	in.Apply(p)
	if err := h.db.SavePost(p); err != nil {
		respondError(c, err)
		return
	}
	h.indexPost(c, p)
	c.JSON(http.StatusOK, p)
}

func (h *AdminHandler) DeletePost(c *gin.Context) {
	id := c.Param("id")
	if err := h.db.DeletePost(id); err != nil {
		respondError(c, err)
		return
	}
	if h.index != nil {
		h.unindex(c, h.index.DeleteNews, id)
	}
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) ListInquiries(c *gin.Context) {
	inquiries, total, err := h.db.ListInquiries(c.Query("status"), queryInt(c, "limit", 50), queryInt(c, "offset", 0))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"inquiries": inquiries, "total": total, "count": len(inquiries)})
}

func (h *AdminHandler) UpdateInquiryStatus(c *gin.Context) {
	var in schema.InquiryStatusInput
	if !bindJSON(c, &in) {
		return
	}
	inquiry, err := h.db.UpdateInquiryStatus(c.Param("id"), models.InquiryStatus(in.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, inquiry)
}

func (h *AdminHandler) ListSubscribers(c *gin.Context) {
	activeOnly := true
	if v := queryBool(c, "active"); v != nil {
		activeOnly = *v
	}
	subs, total, err := h.db.ListSubscribers(activeOnly, queryInt(c, "limit", 100), queryInt(c, "offset", 0))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subscribers": subs, "total": total, "count": len(subs)})
}

func (h *AdminHandler) ListBookings(c *gin.Context) {
	bookings, total, err := h.db.ListBookings(c.Query("status"), queryInt(c, "limit", 50), queryInt(c, "offset", 0))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "total": total, "count": len(bookings)})
}

func (h *AdminHandler) UpdateBookingStatus(c *gin.Context) {
	var in schema.BookingStatusInput
	if !bindJSON(c, &in) {
		return
	}
	booking, err := h.db.UpdateBookingStatus(c.Param("id"), models.BookingStatus(in.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}
