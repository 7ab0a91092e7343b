package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jask/jaskbooks/internal/database"
	"github.com/jask/jaskbooks/internal/database/repository"
	"github.com/jask/jaskbooks/internal/logger"
)

// ReminderService manages payment reminders tied to contacts.
type ReminderService struct {
	Reminders *repository.ReminderRepo
	Contacts  *repository.ContactRepo
}

// NewReminder is the input to Create.
type NewReminder struct {
	UserID        string
	ContactID     string
	TransactionID string
	Type          repository.ReminderType
	AmountCents   int64
	DueDate       time.Time
	Channel       repository.ReminderChannel
	Message       string
}

func (s *ReminderService) Create(ctx context.Context, in NewReminder) (*repository.Reminder, error) {
	in.Message = strings.TrimSpace(in.Message)
	if in.UserID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrValidation)
	}
	if in.ContactID == "" {
		return nil, fmt.Errorf("%w: contact id is required", ErrValidation)
	}
	if in.Type != repository.ReminderReceivable && in.Type != repository.ReminderPayable {
		return nil, fmt.Errorf("%w: unknown reminder type %q", ErrValidation, in.Type)
	}
	if in.AmountCents <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	if in.DueDate.IsZero() {
		return nil, fmt.Errorf("%w: due date is required", ErrValidation)
	}
	if in.Message == "" {
		return nil, fmt.Errorf("%w: message is required", ErrValidation)
	}
	switch in.Channel {
	case "", repository.ChannelSMS, repository.ChannelWhatsApp, repository.ChannelEmail:
	default:
		return nil, fmt.Errorf("%w: unknown channel %q", ErrValidation, in.Channel)
	}
	if contact, err := s.Contacts.Get(ctx, in.UserID, in.ContactID); err != nil {
		return nil, err
	} else if contact == nil {
		return nil, fmt.Errorf("%w: contact %s", ErrNotFound, in.ContactID)
	}

	rem := repository.Reminder{
		ID:          uuid.NewString(),
		UserID:      in.UserID,
		ContactID:   &in.ContactID,
		Type:        in.Type,
		AmountCents: in.AmountCents,
		DueDate:     in.DueDate.UTC(),
		Message:     in.Message,
		Status:      repository.ReminderPending,
		CreatedAt:   database.Now(),
	}
	if in.TransactionID != "" {
		rem.TransactionID = &in.TransactionID
	}
	if in.Channel != "" {
		ch := in.Channel
		rem.Channel = &ch
	}
	if err := s.Reminders.Insert(ctx, rem); err != nil {
		return nil, err
	}
	log := logger.FromContext(ctx)
	log.Info().
		Str("reminder", rem.ID).
		Str("type", string(rem.Type)).
		Time("due", rem.DueDate).
		Msg("reminder created")
	return &rem, nil
}

// MarkSent moves a pending reminder to sent and stamps the send time.
// Dispatch itself happens outside; sending needs a delivery channel.
func (s *ReminderService) MarkSent(ctx context.Context, userID, reminderID string) (*repository.Reminder, error) {
	rem, err := s.get(ctx, userID, reminderID)
	if err != nil {
		return nil, err
	}
	if rem.Status != repository.ReminderPending {
		return nil, fmt.Errorf("%w: reminder is %s", ErrReminderFinal, rem.Status)
	}
	if rem.Channel == nil {
		return nil, fmt.Errorf("%w: no delivery channel configured", ErrValidation)
	}
	now := database.Now()
	if err := s.Reminders.UpdateStatus(ctx, userID, rem.ID, repository.ReminderSent, &now); err != nil {
		return nil, err
	}
	rem.Status = repository.ReminderSent
	rem.SentAt = &now
	return rem, nil
}

// Complete marks a reminder settled. Allowed from pending or sent.
func (s *ReminderService) Complete(ctx context.Context, userID, reminderID string) error {
	return s.finish(ctx, userID, reminderID, repository.ReminderCompleted)
}

// Cancel withdraws a reminder. Allowed from pending or sent.
func (s *ReminderService) Cancel(ctx context.Context, userID, reminderID string) error {
	return s.finish(ctx, userID, reminderID, repository.ReminderCancelled)
}

func (s *ReminderService) finish(ctx context.Context, userID, reminderID string, status repository.ReminderStatus) error {
	rem, err := s.get(ctx, userID, reminderID)
	if err != nil {
		return err
	}
	if rem.Status == repository.ReminderCompleted || rem.Status == repository.ReminderCancelled {
		return fmt.Errorf("%w: reminder is %s", ErrReminderFinal, rem.Status)
	}
	return s.Reminders.UpdateStatus(ctx, userID, rem.ID, status, nil)
}

// List returns the user's reminders, optionally filtered by status.
func (s *ReminderService) List(ctx context.Context, userID string, status repository.ReminderStatus) ([]repository.Reminder, error) {
	return s.Reminders.List(ctx, userID, status)
}

// Overdue returns pending reminders whose due date has passed.
func (s *ReminderService) Overdue(ctx context.Context, userID string, now time.Time) ([]repository.Reminder, error) {
	pending, err := s.Reminders.List(ctx, userID, repository.ReminderPending)
	if err != nil {
		return nil, err
	}
	var out []repository.Reminder
	for _, rem := range pending {
		if rem.Overdue(now) {
			out = append(out, rem)
		}
	}
	return out, nil
}

func (s *ReminderService) get(ctx context.Context, userID, reminderID string) (*repository.Reminder, error) {
	rem, err := s.Reminders.Get(ctx, userID, reminderID)
	if err != nil {
		return nil, err
	}
	if rem == nil {
		return nil, fmt.Errorf("%w: reminder %s", ErrNotFound, reminderID)
	}
	return rem, nil
}
