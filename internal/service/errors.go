package service

import "errors"

// Errors surfaced to callers. External-AI failures are never among them:
// a failed suggestion degrades to "no suggestion".
var (
	// ErrValidation covers missing required fields and non-positive amounts.
	ErrValidation = errors.New("validation failed")
	// ErrMissingLedger rejects a confirmation without a ledger assignment.
	ErrMissingLedger = errors.New("ledger required to confirm")
	// ErrDuplicateLedgerName rejects creating a ledger name the user already owns.
	ErrDuplicateLedgerName = errors.New("ledger name already exists")
	// ErrLedgerInUse protects the category of a ledger with confirmed history.
	ErrLedgerInUse = errors.New("ledger has confirmed transactions")
	// ErrConfirmedImmutable rejects changes to date/amount/direction after
	// confirmation, and deletion of confirmed rows.
	ErrConfirmedImmutable = errors.New("transaction is confirmed")
	// ErrReminderFinal rejects transitions out of completed/cancelled.
	ErrReminderFinal = errors.New("reminder is in a terminal state")
	// ErrNotFound is returned when the row does not exist for this user.
	ErrNotFound = errors.New("not found")
)
