package database_test

import (
	"errors"
	"net/url"
	"testing"

	"github.com/dlomaxw/shinebebright-sub001/internal/config"
	"github.com/dlomaxw/shinebebright-sub001/internal/database"
	"github.com/dlomaxw/shinebebright-sub001/internal/database/dbtest"
	"github.com/dlomaxw/shinebebright-sub001/internal/models"
	"github.com/dlomaxw/shinebebright-sub001/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestOpenRejectsUnknownType(t *testing.T) {
	_, err := database.Open(config.DatabaseConfig{Type: "oracle"}, logger.Discard)
	assert.ErrorContains(t, err, "unsupported database type")
}

func TestPostgresDSNEscapesCredentials(t *testing.T) {
	dsn := database.PostgresDSN(config.PostgresConfig{
		Host:     "db.internal",
		User:     "site admin",
		Password: `p@ss word'"=`,
		Database: "shinebebright",
	})

	u, err := url.Parse(dsn)
	require.NoError(t, err)
	assert.Equal(t, "postgres", u.Scheme)
	assert.Equal(t, "db.internal:5432", u.Host)
	assert.Equal(t, "site admin", u.User.Username())
	password, _ := u.User.Password()
	assert.Equal(t, `p@ss word'"=`, password)
	assert.Equal(t, "/shinebebright", u.Path)
	assert.Equal(t, "disable", u.Query().Get("sslmode"))
}

func TestPropertyLifecycle(t *testing.T) {
	gdb := dbtest.New(t)

	p := &models.Property{
		Title:     "VAAL Kololo Gardens",
		Developer: "VAAL",
		Images:    datatypes.JSON(`["vaal-kololo-aerial.jpg"]`),
	}
	require.NoError(t, gdb.CreateProperty(p, models.PropertyChange{ChangeType: models.ChangeTypeNew}))
	assert.Len(t, p.ID, 26)
	assert.Equal(t, "residential", p.Category)
	assert.Equal(t, models.PropertyStatusAvailable, p.Status)

	dup := &models.Property{Title: "VAAL Kololo Gardens"}
	assert.Error(t, gdb.CreateProperty(dup), "titles are unique")

	p.Featured = true
	require.NoError(t, gdb.SavePropertyWithChanges(p, []models.PropertyChange{
		{ChangeType: models.ChangeTypeFeatured, OldValue: "false", NewValue: "true"},
	}))

	var changes []models.PropertyChange
	require.NoError(t, gdb.DB().Where("property_id = ?", p.ID).Order("id").Find(&changes).Error)
	require.Len(t, changes, 2)
	assert.Equal(t, models.ChangeTypeNew, changes[0].ChangeType)
	assert.Equal(t, models.ChangeTypeFeatured, changes[1].ChangeType)

	require.NoError(t, gdb.DeleteProperty(p.ID, models.PropertyChange{ChangeType: models.ChangeTypeRemoved}))
	_, err := gdb.GetPropertyByID(p.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, gdb.DeleteProperty(p.ID), gorm.ErrRecordNotFound)
}

func TestListProperties(t *testing.T) {
	gdb := dbtest.New(t)
	for _, p := range []*models.Property{
		{Title: "A", Developer: "VAAL", Category: "residential"},
		{Title: "B", Developer: "VAAL", Category: "commercial", Featured: true},
		{Title: "C", Developer: "Comfort Homes", Category: "residential"},
	} {
		require.NoError(t, gdb.CreateProperty(p))
	}

	all, total, err := gdb.ListProperties(database.PropertyFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Equal(t, "B", all[0].Title, "featured first")

	vaal, total, err := gdb.ListProperties(database.PropertyFilter{Developer: "VAAL", Category: "residential"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "A", vaal[0].Title)

	featured := true
	page, total, err := gdb.ListProperties(database.PropertyFilter{Featured: &featured, Limit: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, page, 1)

	page, _, err = gdb.ListProperties(database.PropertyFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, page, 1)
}

func TestMatchTitleAndBindings(t *testing.T) {
	gdb := dbtest.New(t)
	reg := registry.Default()

	// one row per registry title; bedroom variants are separate listings
	ids := make(map[string]string)
	for _, title := range reg.Titles() {
		p := &models.Property{Title: title}
		require.NoError(t, gdb.CreateProperty(p))
		ids[title] = p.ID
	}

	bindings, err := reg.Bind(gdb.TitleIndex())
	require.NoError(t, err)
	require.NoError(t, gdb.SaveBindings(bindings))

	b, err := gdb.GetBinding(ids["Cadenza Residences Nakasero - 1 Bedroom"])
	require.NoError(t, err)
	assert.Equal(t, "edifice", b.Folder)
	assert.Equal(t, "q3Xc9Lm2TzA", b.VideoEmbedID)

	// rebinding replaces rather than appends
	require.NoError(t, gdb.SaveBindings(bindings))
	stored, err := gdb.ListBindings()
	require.NoError(t, err)
	assert.Len(t, stored, len(bindings))

	byID, err := gdb.GetBindings([]string{ids["VAAL Nakasero Heights"], "missing"})
	require.NoError(t, err)
	assert.Len(t, byID, 1)

	t.Run("project with a duplicate title is ambiguous", func(t *testing.T) {
		require.NoError(t, gdb.CreateProject(&models.Project{Title: "VAAL Nakasero Heights", Slug: "vaal-nakasero-heights", Service: models.ServiceDrone}))
		_, err := reg.Bind(gdb.TitleIndex())
		var unmatched *registry.UnmatchedTitlesError
		require.ErrorAs(t, err, &unmatched)
		assert.Len(t, unmatched.Ambiguous["VAAL Nakasero Heights"], 2)
	})

	t.Run("renamed row is unmatched", func(t *testing.T) {
		require.NoError(t, gdb.DB().Model(&models.Property{}).Where("id = ?", ids["VAAL Kololo Gardens"]).Update("title", "VAAL Kololo Gardens Phase 2").Error)
		_, err := reg.Bind(gdb.TitleIndex())
		var unmatched *registry.UnmatchedTitlesError
		require.ErrorAs(t, err, &unmatched)
		assert.Contains(t, unmatched.Unmatched, "VAAL Kololo Gardens")
	})
}

func TestSubscribeNewsletterIsIdempotent(t *testing.T) {
	gdb := dbtest.New(t)
	outboxCalls := 0
	outbox := func(tx *gorm.DB) error {
		outboxCalls++
		return nil
	}

	created, err := gdb.SubscribeNewsletter(&models.NewsletterSubscriber{Email: "a@example.com"}, outbox)
	require.NoError(t, err)
	assert.True(t, created)

	sub := &models.NewsletterSubscriber{Email: "a@example.com", Name: "Amina"}
	created, err = gdb.SubscribeNewsletter(sub, outbox)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "Amina", sub.Name)
	assert.Equal(t, 1, outboxCalls)

	require.NoError(t, gdb.UnsubscribeNewsletter("a@example.com"))
	active, total, err := gdb.ListSubscribers(true, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, active)
	assert.Zero(t, total)

	_, err = gdb.SubscribeNewsletter(&models.NewsletterSubscriber{Email: "a@example.com"}, outbox)
	require.NoError(t, err)
	active, _, err = gdb.ListSubscribers(true, 0, 0)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Nil(t, active[0].UnsubscribedAt)
}

func TestCreateLeadRollsBackOnOutboxFailure(t *testing.T) {
	gdb := dbtest.New(t)
	inquiry := &models.ContactInquiry{Name: "A", Email: "a@example.com", Message: "hello there"}

	err := gdb.CreateLead(inquiry, func(tx *gorm.DB) error { return errors.New("boom") })
	assert.EqualError(t, err, "boom")

	_, total, err := gdb.ListInquiries("", 0, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestInquiryAndBookingStatus(t *testing.T) {
	gdb := dbtest.New(t)
	inquiry := &models.ContactInquiry{Name: "A", Email: "a@example.com", Message: "hello there"}
	require.NoError(t, gdb.CreateLead(inquiry, nil))

	updated, err := gdb.UpdateInquiryStatus(inquiry.ID, models.InquiryStatusArchived)
	require.NoError(t, err)
	assert.NotNil(t, updated.ClosedAt)

	_, err = gdb.UpdateInquiryStatus("missing", models.InquiryStatusArchived)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	booking := &models.DemoBooking{Name: "B", Email: "b@example.com", Service: models.ServiceDrone}
	require.NoError(t, gdb.CreateLead(booking, nil))
	got, err := gdb.UpdateBookingStatus(booking.ID, models.BookingStatusConfirmed)
	require.NoError(t, err)
	assert.Nil(t, got.ClosedAt)

	list, total, err := gdb.ListBookings(string(models.BookingStatusConfirmed), 0, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, booking.ID, list[0].ID)
}

func TestUserCredentials(t *testing.T) {
	gdb := dbtest.New(t)
	creds := gdb.UserCredentials()

	_, ok := creds.PasswordHash("admin")
	assert.False(t, ok)

	_, err := gdb.SetUserPassword("admin", "hash-1")
	require.NoError(t, err)
	_, err = gdb.SetUserPassword("admin", "hash-2")
	require.NoError(t, err)

	hash, ok := creds.PasswordHash("admin")
	assert.True(t, ok)
	assert.Equal(t, "hash-2", hash)
}

func TestJobRuns(t *testing.T) {
	gdb := dbtest.New(t)

	require.NoError(t, gdb.BeginJobRun("thumbnails"))
	require.NoError(t, gdb.FinishJobRun("thumbnails", nil))
	require.NoError(t, gdb.BeginJobRun("thumbnails"))
	require.NoError(t, gdb.FinishJobRun("thumbnails", errors.New("disk full")))

	runs, err := gdb.ListJobRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 1, runs[0].SuccessCount)
	assert.Equal(t, 1, runs[0].FailureCount)
	assert.Equal(t, "disk full", runs[0].LastError)
	assert.False(t, runs[0].IsRunning)
}

func TestContentQueries(t *testing.T) {
	gdb := dbtest.New(t)

	draft := &models.BlogPost{Title: "Draft", Slug: "draft", Content: "x"}
	require.NoError(t, gdb.CreatePost(draft))
	live := &models.BlogPost{Title: "Live", Slug: "live", Content: "y"}
	live.Publish()
	require.NoError(t, gdb.CreatePost(live))

	posts, total, err := gdb.ListPosts(true, 0, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "live", posts[0].Slug)

	_, err = gdb.GetPublishedPost("draft")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, gdb.CreateTeamMember(&models.TeamMember{Name: "Zed", SortOrder: 2}))
	require.NoError(t, gdb.CreateTeamMember(&models.TeamMember{Name: "Ann", SortOrder: 1}))
	team, err := gdb.ListTeamMembers()
	require.NoError(t, err)
	assert.Equal(t, "Ann", team[0].Name)

	project := &models.Project{Title: "Kololo", Slug: "kololo", Service: models.ServiceDrone}
	require.NoError(t, gdb.CreateProject(project))
	bySlug, err := gdb.GetProject("kololo")
	require.NoError(t, err)
	assert.Equal(t, project.ID, bySlug.ID)
	require.NoError(t, gdb.DeleteProject(project.ID))
	assert.ErrorIs(t, gdb.DeleteProject(project.ID), gorm.ErrRecordNotFound)
}
