package repository

import (
	"fmt"
	"time"
)

// LedgerCategory is the closed set of categorization targets.
type LedgerCategory string

const (
	CategoryIncome     LedgerCategory = "income"
	CategoryExpense    LedgerCategory = "expense"
	CategoryReceivable LedgerCategory = "receivable"
	CategoryPayable    LedgerCategory = "payable"
	CategoryAsset      LedgerCategory = "asset"
	CategoryLiability  LedgerCategory = "liability"
	CategoryEquity     LedgerCategory = "equity"
)

// ParseLedgerCategory validates a raw category string.
func ParseLedgerCategory(s string) (LedgerCategory, error) {
	switch LedgerCategory(s) {
	case CategoryIncome, CategoryExpense, CategoryReceivable, CategoryPayable,
		CategoryAsset, CategoryLiability, CategoryEquity:
		return LedgerCategory(s), nil
	}
	return "", fmt.Errorf("unknown ledger category %q", s)
}

// Direction encodes the sign of a transaction; amounts are stored as
// non-negative magnitudes.
type Direction string

const (
	Credit Direction = "credit" // inflow
	Debit  Direction = "debit"  // outflow
)

// Ledger represents a categorization bucket. System ledgers have a nil
// UserID and are visible to all users.
type Ledger struct {
	ID        string
	UserID    *string
	Name      string
	Category  LedgerCategory
	IsSystem  bool
	CreatedAt time.Time
}

// Transaction represents one bank or cash transaction row. BankID nil means
// cash. LedgerID stays nil until the transaction is categorized.
type Transaction struct {
	ID                   string
	UserID               string
	BankID               *string
	Date                 time.Time
	Description          string
	AmountCents          int64
	Direction            Direction
	LedgerID             *string
	Narration            *string
	Confirmed            bool
	Reconciled           bool
	BalanceAfterCents    *int64
	ContactID            *string
	RelatedTransactionID *string
	AISuggested          bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// IsCash reports whether the transaction has no originating bank account.
func (t Transaction) IsCash() bool { return t.BankID == nil }

// SignedCents returns the amount with the direction applied.
func (t Transaction) SignedCents() int64 {
	if t.Direction == Debit {
		return -t.AmountCents
	}
	return t.AmountCents
}

// Mapping is a learned association between an exact transaction description
// and the ledger/narration previously chosen for it.
type Mapping struct {
	ID          string
	UserID      string
	Description string
	LedgerID    string
	Narration   *string
	UsageCount  int
	Confidence  float64
	LastUsedAt  time.Time
	CreatedAt   time.Time
}

// Bank represents a bank account row. BalanceCents is the seed balance
// entered at creation; it is reported as-is, never recomputed from history.
type Bank struct {
	ID            string
	UserID        string
	Name          string
	AccountNumber *string
	AccountType   string
	BalanceCents  int64
	Currency      string
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Contact represents a counterparty with cached receivable/payable totals.
type Contact struct {
	ID              string
	UserID          string
	Name            string
	Phone           *string
	ReceivableCents int64
	PayableCents    int64
	CreatedAt       time.Time
}

// ReminderType distinguishes money owed to the user from money the user owes.
type ReminderType string

const (
	ReminderReceivable ReminderType = "receivable"
	ReminderPayable    ReminderType = "payable"
)

// ReminderStatus is the reminder state machine.
type ReminderStatus string

const (
	ReminderPending   ReminderStatus = "pending"
	ReminderSent      ReminderStatus = "sent"
	ReminderCompleted ReminderStatus = "completed"
	ReminderCancelled ReminderStatus = "cancelled"
)

// ReminderChannel is the optional delivery channel.
type ReminderChannel string

const (
	ChannelSMS      ReminderChannel = "sms"
	ChannelWhatsApp ReminderChannel = "whatsapp"
	ChannelEmail    ReminderChannel = "email"
)

// Reminder represents a payment reminder row.
type Reminder struct {
	ID            string
	UserID        string
	TransactionID *string
	ContactID     *string
	DueDate       time.Time
	AmountCents   int64
	Message       string
	Type          ReminderType
	Status        ReminderStatus
	Channel       *ReminderChannel
	SentAt        *time.Time
	CreatedAt     time.Time
}

// Overdue reports whether the reminder is past due. Only pending reminders
// can be overdue; same-day due dates are not overdue.
func (r Reminder) Overdue(now time.Time) bool {
	if r.Status != ReminderPending {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	due := time.Date(r.DueDate.Year(), r.DueDate.Month(), r.DueDate.Day(), 0, 0, 0, 0, time.UTC)
	return due.Before(today)
}
