package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/dlomaxw/shinebebright-sub001/internal/models"
	"gorm.io/gorm"
)

var layout = template.Must(template.New("layout").Parse(`<!doctype html>
<html><body style="font-family:Arial,sans-serif;color:#1a1a1a">
<h2 style="color:#b8860b">{{.Heading}}</h2>
<table cellpadding="4">
{{range .Rows}}<tr><td><strong>{{.Label}}</strong></td><td>{{.Value}}</td></tr>
{{end}}</table>
{{if .Body}}<p style="white-space:pre-wrap">{{.Body}}</p>{{end}}
<p style="color:#888;font-size:12px">Shine Be Bright</p>
</body></html>`))

type row struct {
	Label string
	Value string
}

type page struct {
	Heading string
	Rows    []row
	Body    string
}

func render(p page) (string, error) {
	// skip empty optional fields
	rows := p.Rows[:0]
	for _, r := range p.Rows {
		if strings.TrimSpace(r.Value) != "" {
			rows = append(rows, r)
		}
	}
	p.Rows = rows

	var buf bytes.Buffer
	if err := layout.Execute(&buf, p); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Outbox builds notification rows for new leads. Each builder returns a
// callback that inserts the row inside the lead's transaction.
type Outbox struct {
	staff []string
}

func NewOutbox(staff []string) *Outbox {
	return &Outbox{staff: staff}
}

// ContactInquiry notifies staff of a new contact message
func (o *Outbox) ContactInquiry(inquiry *models.ContactInquiry) func(tx *gorm.DB) error {
	return func(tx *gorm.DB) error {
		subject := "New enquiry from " + inquiry.Name
		if inquiry.Subject != "" {
			subject += ": " + inquiry.Subject
		}
		body, err := render(page{
			Heading: "New contact enquiry",
			Rows: []row{
				{"Name", inquiry.Name},
				{"Email", inquiry.Email},
				{"Phone", inquiry.Phone},
				{"Subject", inquiry.Subject},
				{"Property", inquiry.PropertyID},
			},
			Body: inquiry.Message,
		})
		if err != nil {
			return err
		}
		return o.enqueue(tx, models.NotificationContact, inquiry.ID, o.staff, inquiry.Email, subject, body)
	}
}

// DemoBooking notifies staff of a new demo request
func (o *Outbox) DemoBooking(booking *models.DemoBooking) func(tx *gorm.DB) error {
	return func(tx *gorm.DB) error {
		body, err := render(page{
			Heading: "New demo booking",
			Rows: []row{
				{"Name", booking.Name},
				{"Email", booking.Email},
				{"Phone", booking.Phone},
				{"Company", booking.Company},
				{"Service", booking.Service},
				{"Preferred date", booking.PreferredDate.Format("Mon 2 Jan 2006")},
			},
			Body: booking.Notes,
		})
		if err != nil {
			return err
		}
		subject := fmt.Sprintf("Demo booking: %s (%s)", booking.Service, booking.Name)
		return o.enqueue(tx, models.NotificationBooking, booking.ID, o.staff, booking.Email, subject, body)
	}
}

// Newsletter sends a welcome message to a new subscriber
func (o *Outbox) Newsletter(sub *models.NewsletterSubscriber) func(tx *gorm.DB) error {
	return func(tx *gorm.DB) error {
		greeting := "Thanks for subscribing"
		if sub.Name != "" {
			greeting += ", " + sub.Name
		}
		body, err := render(page{
			Heading: greeting,
			Body:    "You will hear from us when new properties, projects and stories go live.",
		})
		if err != nil {
			return err
		}
		return o.enqueue(tx, models.NotificationNewsletter, sub.ID, []string{sub.Email}, "", "Welcome to Shine Be Bright", body)
	}
}

func (o *Outbox) enqueue(tx *gorm.DB, kind, sourceID string, to []string, replyTo, subject, body string) error {
	if len(to) == 0 {
		return nil
	}
	return tx.Create(&models.Notification{
		Kind:       kind,
		SourceID:   sourceID,
		Recipients: strings.Join(to, ","),
		ReplyTo:    replyTo,
		Subject:    subject,
		HTMLBody:   body,
		Status:     models.NotificationPending,
	}).Error
}
