package handlers

import (
	"github.com/dlomaxw/shinebebright-sub001/internal/auth"
	"github.com/gin-gonic/gin"
)

// Routes groups the handlers mounted by Register. Limit guards the public
// lead forms and may be nil.
type Routes struct {
	Public *PublicHandler
	Leads  *LeadsHandler
	Auth   *AuthHandler
	Admin  *AdminHandler
	Gate   *auth.Manager
	Limit  gin.HandlerFunc
}

// NewEngine returns a gin engine that reads the client IP from forwarding
// headers only when the peer is one of trustedProxies. nil trusts no one.
func NewEngine(trustedProxies []string, middleware ...gin.HandlerFunc) (*gin.Engine, error) {
	r := gin.New()
	if err := r.SetTrustedProxies(trustedProxies); err != nil {
		return nil, err
	}
	r.Use(middleware...)
	return r, nil
}

// Register mounts the health check and the /api routes
func Register(r *gin.Engine, rt Routes) {
	api := r.Group("/api")

	pub := rt.Public
	r.GET("/health", pub.Health)
	api.GET("/properties", pub.ListProperties)
	api.GET("/properties/:id", pub.GetProperty)
	api.GET("/projects", pub.ListProjects)
	api.GET("/projects/:id", pub.GetProject)
	api.GET("/team", pub.ListTeam)
	api.GET("/news", pub.ListNews)
	api.GET("/news/:slug", pub.GetNews)
	api.GET("/search", pub.Search)
	api.GET("/placeholder/:w/:h", pub.Placeholder)

	forms := api.Group("")
	if rt.Limit != nil {
		forms.Use(rt.Limit)
	}
	forms.POST("/contact", rt.Leads.SubmitContact)
	forms.POST("/newsletter", rt.Leads.Subscribe)
	forms.POST("/newsletter/unsubscribe", rt.Leads.Unsubscribe)
	forms.POST("/bookings", rt.Leads.SubmitBooking)

	session := api.Group("/admin", rt.Gate.Attach())
	session.POST("/login", rt.Auth.Login)
	session.POST("/login/credentials", rt.Auth.LoginWithCredentials)
	session.POST("/logout", rt.Auth.Logout)
	session.GET("/session", rt.Auth.Session)

	admin := session.Group("", auth.RequireAdmin())
	a := rt.Admin
	admin.GET("/stats", a.GetStats)

	admin.GET("/properties", a.ListProperties)
	admin.POST("/properties", a.CreateProperty)
	admin.PUT("/properties/:id", a.UpdateProperty)
	admin.DELETE("/properties/:id", a.DeleteProperty)
	admin.GET("/properties/:id/history", a.GetPropertyHistory)
	admin.GET("/changes/recent", a.GetRecentChanges)

	admin.GET("/projects", a.ListProjects)
	admin.POST("/projects", a.CreateProject)
	admin.PUT("/projects/:id", a.UpdateProject)
	admin.DELETE("/projects/:id", a.DeleteProject)

	admin.POST("/team", a.CreateTeamMember)
	admin.PUT("/team/:id", a.UpdateTeamMember)
	admin.DELETE("/team/:id", a.DeleteTeamMember)

	admin.GET("/posts", a.ListPosts)
	admin.POST("/posts", a.CreatePost)
	admin.PUT("/posts/:id", a.UpdatePost)
	admin.DELETE("/posts/:id", a.DeletePost)
	admin.POST("/news/preview", a.PreviewLink)

	admin.GET("/inquiries", a.ListInquiries)
	admin.PUT("/inquiries/:id/status", a.UpdateInquiryStatus)
	admin.GET("/subscribers", a.ListSubscribers)
	admin.GET("/bookings", a.ListBookings)
	admin.PUT("/bookings/:id/status", a.UpdateBookingStatus)

	admin.POST("/cleanup/run", a.RunCleanup)
	admin.GET("/cleanup/logs", a.GetDeleteLogs)

	admin.POST("/media/thumbnails", a.RunThumbnails)
	admin.GET("/media/registry/validate", a.ValidateRegistry)
	admin.POST("/media/registry/bind", a.BindRegistry)
	admin.POST("/search/reindex", a.Reindex)
}
