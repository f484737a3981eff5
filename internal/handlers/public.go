package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/dlomaxw/shinebebright-sub001/internal/catalog"
	"github.com/dlomaxw/shinebebright-sub001/internal/content"
	"github.com/dlomaxw/shinebebright-sub001/internal/database"
	"github.com/dlomaxw/shinebebright-sub001/internal/media"
	"github.com/dlomaxw/shinebebright-sub001/internal/models"
	"github.com/dlomaxw/shinebebright-sub001/internal/search"
	"github.com/gin-gonic/gin"
)

// PublicHandler serves the read-only site API
type PublicHandler struct {
	db      *database.GormDB
	catalog *catalog.Service
	search  search.Searcher
}

// NewPublicHandler creates the public handler. searcher may be nil when
// search is disabled.
func NewPublicHandler(db *database.GormDB, cat *catalog.Service, searcher search.Searcher) *PublicHandler {
	return &PublicHandler{db: db, catalog: cat, search: searcher}
}

// propertyView is a listing with its resolved media
type propertyView struct {
	models.Property
	ImageURLs     []string `json:"image_urls"`
	ThumbnailURLs []string `json:"thumbnail_urls"`
	MediaSource   string   `json:"media_source"`
}

type propertyDetail struct {
	models.Property
	catalog.Media
	ImageURLs     []string `json:"image_urls"`
	ThumbnailURLs []string `json:"thumbnail_urls"`
}

type projectView struct {
	models.Project
	catalog.Media
}

type postView struct {
	models.BlogPost
	HTML string `json:"html"`
}

func (h *PublicHandler) Health(c *gin.Context) {
	if sqlDB, err := h.db.DB().DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListProperties returns one page of listings
func (h *PublicHandler) ListProperties(c *gin.Context) {
	filter := database.PropertyFilter{
		Category:  c.Query("category"),
		Developer: c.Query("developer"),
		Status:    c.Query("status"),
		Featured:  queryBool(c, "featured"),
		Limit:     queryInt(c, "limit", 24),
		Offset:    queryInt(c, "offset", 0),
	}

	props, total, err := h.db.ListProperties(filter)
	if err != nil {
		respondError(c, err)
		return
	}
	mediaByID, err := h.catalog.PropertiesMedia(props)
	if err != nil {
		respondError(c, err)
		return
	}

	views := make([]propertyView, 0, len(props))
	for _, p := range props {
		m := mediaByID[p.ID]
		views = append(views, propertyView{Property: p, ImageURLs: m.Gallery, ThumbnailURLs: m.Thumbnails, MediaSource: m.Source})
	}

	c.JSON(http.StatusOK, gin.H{
		"properties": views,
		"total":      total,
		"count":      len(views),
	})
}

// GetProperty returns one listing with gallery, video and developer folder
func (h *PublicHandler) GetProperty(c *gin.Context) {
	p, err := h.db.GetPropertyByID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	m, err := h.catalog.PropertyMedia(p)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, propertyDetail{
		Property:      *p,
		Media:         m,
		ImageURLs:     m.Gallery,
		ThumbnailURLs: m.Thumbnails,
	})
}

func (h *PublicHandler) ListProjects(c *gin.Context) {
	projects, err := h.db.ListProjects(c.Query("service"))
	if err != nil {
		respondError(c, err)
		return
	}
	views := make([]projectView, 0, len(projects))
	for _, p := range projects {
		m, err := h.catalog.ProjectMedia(&p)
		if err != nil {
			respondError(c, err)
			return
		}
		views = append(views, projectView{Project: p, Media: m})
	}
	c.JSON(http.StatusOK, gin.H{"projects": views, "count": len(views)})
}

// GetProject accepts an id or a slug
func (h *PublicHandler) GetProject(c *gin.Context) {
	p, err := h.db.GetProject(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	m, err := h.catalog.ProjectMedia(p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, projectView{Project: *p, Media: m})
}

func (h *PublicHandler) ListTeam(c *gin.Context) {
	team, err := h.db.ListTeamMembers()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"team": team, "count": len(team)})
}

// ListNews returns published posts without their bodies
func (h *PublicHandler) ListNews(c *gin.Context) {
	posts, total, err := h.db.ListPosts(true, queryInt(c, "limit", 12), queryInt(c, "offset", 0))
	if err != nil {
		respondError(c, err)
		return
	}
	for i := range posts {
		posts[i].Content = ""
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts, "total": total, "count": len(posts)})
}

// GetNews returns a published post with its markdown rendered to HTML
func (h *PublicHandler) GetNews(c *gin.Context) {
	post, err := h.db.GetPublishedPost(c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	html, err := content.RenderMarkdown(post.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, postView{BlogPost: *post, HTML: html})
}

// Search queries listings and news together
func (h *PublicHandler) Search(c *gin.Context) {
	if h.search == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "search is not enabled"})
		return
	}

	params := search.FilterParams{
		Query:    strings.TrimSpace(c.Query("q")),
		Category: c.Query("category"),
		Status:   c.Query("status"),
		Featured: queryBool(c, "featured"),
		SortBy:   c.Query("sort"),
		Limit:    int64(queryInt(c, "limit", 20)),
		Offset:   int64(queryInt(c, "offset", 0)),
	}
	if dev := c.Query("developer"); dev != "" {
		params.Developers = strings.Split(dev, ",")
	}
	if v, err := strconv.ParseInt(c.Query("min_price"), 10, 64); err == nil {
		params.MinPrice = &v
	}
	if v, err := strconv.ParseInt(c.Query("max_price"), 10, 64); err == nil {
		params.MaxPrice = &v
	}
	if v, err := strconv.Atoi(c.Query("min_bedrooms")); err == nil {
		params.MinBedrooms = &v
	}

	props, err := h.search.SearchProperties(params)
	if err != nil {
		respondError(c, err)
		return
	}
	news, err := h.search.SearchNews(params.Query, 5)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query":      params.Query,
		"properties": props,
		"news":       news,
	})
}

// Placeholder serves the SVG behind media.PlaceholderURL
func (h *PublicHandler) Placeholder(c *gin.Context) {
	w, _ := strconv.Atoi(c.Param("w"))
	hgt, _ := strconv.Atoi(c.Param("h"))
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "image/svg+xml", media.PlaceholderSVG(w, hgt))
}
