package schema

import (
	"errors"
	"testing"
	"time"

	"github.com/dlomaxw/shinebebright-sub001/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr), "expected a ValidationError, got %v", err)
	return vErr.Fields
}

func TestContactInput(t *testing.T) {
	valid := ContactInput{
		Name:    "Sarah Namubiru",
		Email:   "Sarah@Example.com ",
		Phone:   "+256 700 123456",
		Message: "I would like a viewing of the penthouse.",
	}

	t.Run("valid", func(t *testing.T) {
		in := valid
		in.Email = "sarah@example.com"
		require.NoError(t, Validate(&in))
	})

	t.Run("missing and malformed fields", func(t *testing.T) {
		in := ContactInput{Email: "not-an-email", Phone: "abc", Message: "short"}
		fields := fieldErrors(t, Validate(&in))
		assert.Equal(t, "is required", fields["name"])
		assert.Equal(t, "must be a valid email address", fields["email"])
		assert.Equal(t, "must be a valid phone number", fields["phone"])
		assert.Equal(t, "must be at least 10 characters", fields["message"])
	})

	t.Run("to model normalizes", func(t *testing.T) {
		in := valid
		m := in.ToModel()
		assert.Equal(t, "sarah@example.com", m.Email)
		assert.Equal(t, "Sarah Namubiru", m.Name)
	})
}

func TestBookingInput(t *testing.T) {
	in := BookingInput{
		Name:          "Okello James",
		Email:         "okello@example.com",
		Service:       models.ServiceVirtualTour,
		PreferredDate: "2026-01-15",
	}
	require.NoError(t, Validate(&in))
	m := in.ToModel()
	assert.Equal(t, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), m.PreferredDate)

	in.PreferredDate = "15/01/2026"
	in.Service = "karaoke"
	fields := fieldErrors(t, Validate(&in))
	assert.Contains(t, fields["preferred_date"], "2006-01-02")
	assert.Contains(t, fields["service"], "must be one of")
}

func TestPropertyInput(t *testing.T) {
	price := int64(450000000)
	beds := 2
	in := PropertyInput{
		Title:     "Cadenza Residences Nakasero - 2 Bedroom",
		Developer: "Edifice Properties",
		Price:     &price,
		Currency:  "UGX",
		Bedrooms:  &beds,
		Images:    []string{"cadenza-2br-living.jpg", "  ", "cadenza-2br-view.jpg"},
	}
	require.NoError(t, Validate(&in))

	p := in.ToModel()
	assert.JSONEq(t, `["cadenza-2br-living.jpg","cadenza-2br-view.jpg"]`, string(p.Images))
	assert.Equal(t, &price, p.Price)

	t.Run("apply keeps unset enums", func(t *testing.T) {
		existing := &models.Property{Category: "commercial", Status: models.PropertyStatusSold, Currency: "USD"}
		update := PropertyInput{Title: "X"}
		update.Apply(existing)
		assert.Equal(t, "commercial", existing.Category)
		assert.Equal(t, models.PropertyStatusSold, existing.Status)
		assert.Equal(t, "USD", existing.Currency)
	})

	t.Run("invalid", func(t *testing.T) {
		neg := int64(-1)
		bad := PropertyInput{Price: &neg, Category: "castle", Currency: "ugx"}
		fields := fieldErrors(t, Validate(&bad))
		assert.Contains(t, fields, "title")
		assert.Contains(t, fields, "price")
		assert.Contains(t, fields, "category")
		assert.Contains(t, fields, "currency")
	})
}

func TestBlogPostInput(t *testing.T) {
	in := BlogPostInput{
		Title:   "Shine Be Bright launches VR tours",
		Content: "We now offer **virtual tours** for every listing.",
		Status:  "published",
	}
	require.NoError(t, Validate(&in))

	post := in.ToModel()
	assert.Equal(t, "shine-be-bright-launches-vr-tours", post.Slug)
	assert.Equal(t, "We now offer virtual tours for every listing.", post.Excerpt)
	assert.Equal(t, models.PostStatusPublished, post.Status)
	require.NotNil(t, post.PublishedAt)

	first := *post.PublishedAt
	in.Apply(post)
	assert.Equal(t, first, *post.PublishedAt)

	in.Slug = "Not A Slug"
	fields := fieldErrors(t, Validate(&in))
	assert.Contains(t, fields["slug"], "lowercase")
}

func TestProjectInputDerivesSlug(t *testing.T) {
	in := ProjectInput{Title: "Kololo Drone Shoot", Service: models.ServiceDrone, VideoURL: "https://youtu.be/abc"}
	require.NoError(t, Validate(&in))
	assert.Equal(t, "kololo-drone-shoot", in.ToModel().Slug)

	in.VideoURL = "not a url"
	assert.Contains(t, fieldErrors(t, Validate(&in)), "video_url")
}

func TestImageNamesMustStayInTheirFolder(t *testing.T) {
	for _, name := range []string{"../vaal/vaal-nakasero-exterior.jpg", "vaal/exterior.jpg", `..\vaal\exterior.jpg`} {
		prop := PropertyInput{Title: "Unlisted Plot", Images: []string{"plot.jpg", name}}
		assert.Contains(t, fieldErrors(t, Validate(&prop)), "images[1]", "property image %q", name)

		proj := ProjectInput{Title: "Kololo Drone Shoot", Service: models.ServiceDrone, Images: []string{name}}
		assert.Contains(t, fieldErrors(t, Validate(&proj)), "images[0]", "project image %q", name)
	}
}

func TestStatusInputs(t *testing.T) {
	assert.NoError(t, Validate(&InquiryStatusInput{Status: "archived"}))
	assert.Contains(t, fieldErrors(t, Validate(&InquiryStatusInput{Status: "closed"})), "status")
	assert.NoError(t, Validate(&BookingStatusInput{Status: "cancelled"}))
	assert.Contains(t, fieldErrors(t, Validate(&LoginInput{})), "passcode")
	assert.Len(t, fieldErrors(t, Validate(&CredentialsInput{})), 2)
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"b": "is required", "a": "is required"}}
	assert.Equal(t, "validation failed: a: is required; b: is required", err.Error())
}
