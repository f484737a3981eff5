package handlers

import (
	"net/http"

	"github.com/dlomaxw/shinebebright-sub001/internal/database"
	"github.com/dlomaxw/shinebebright-sub001/internal/logging"
	"github.com/dlomaxw/shinebebright-sub001/internal/notify"
	"github.com/dlomaxw/shinebebright-sub001/internal/schema"
	"github.com/gin-gonic/gin"
)

// LeadsHandler accepts the public contact, newsletter and booking forms.
// Each lead is stored together with its outbox notification.
type LeadsHandler struct {
	db     *database.GormDB
	outbox *notify.Outbox
}

func NewLeadsHandler(db *database.GormDB, outbox *notify.Outbox) *LeadsHandler {
	return &LeadsHandler{db: db, outbox: outbox}
}

func (h *LeadsHandler) SubmitContact(c *gin.Context) {
	var in schema.ContactInput
	if !bindJSON(c, &in) {
		return
	}

	inquiry := in.ToModel()
	if err := h.db.CreateLead(inquiry, h.outbox.ContactInquiry(inquiry)); err != nil {
		respondError(c, err)
		return
	}

	logging.FromGin(c).Info().Str("inquiry_id", inquiry.ID).Msg("contact inquiry received")
	c.JSON(http.StatusCreated, gin.H{
		"id":      inquiry.ID,
		"message": "Thank you, we will be in touch shortly.",
	})
}

// Subscribe is idempotent by email; a repeat signup reactivates
func (h *LeadsHandler) Subscribe(c *gin.Context) {
	var in schema.NewsletterInput
	if !bindJSON(c, &in) {
		return
	}

	sub := in.ToModel()
	created, err := h.db.SubscribeNewsletter(sub, h.outbox.Newsletter(sub))
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{
		"email":   sub.Email,
		"active":  sub.Active,
		"message": "You are subscribed.",
	})
}

func (h *LeadsHandler) Unsubscribe(c *gin.Context) {
	var in schema.NewsletterInput
	if !bindJSON(c, &in) {
		return
	}
	if err := h.db.UnsubscribeNewsletter(in.ToModel().Email); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "You have been unsubscribed."})
}

func (h *LeadsHandler) SubmitBooking(c *gin.Context) {
	var in schema.BookingInput
	if !bindJSON(c, &in) {
		return
	}

	booking := in.ToModel()
	if err := h.db.CreateLead(booking, h.outbox.DemoBooking(booking)); err != nil {
		respondError(c, err)
		return
	}

	logging.FromGin(c).Info().Str("booking_id", booking.ID).Str("service", booking.Service).Msg("demo booking received")
	c.JSON(http.StatusCreated, gin.H{
		"id":      booking.ID,
		"status":  booking.Status,
		"message": "Your demo request has been received.",
	})
}
