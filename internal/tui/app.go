package tui

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/jask/jaskbooks/internal/config"
	"github.com/jask/jaskbooks/internal/database/repository"
	"github.com/jask/jaskbooks/internal/service"
)

// App ties together views.
type App struct {
	ctx            context.Context
	userID         string
	repos          Repos
	services       Services
	cfg            config.Config
	state          appState
	transactions   []repository.Transaction
	ledgers        []repository.Ledger
	ledgerName     map[string]string // id -> name
	reminders      []repository.Reminder
	duplicates     []service.DuplicatePair
	snapshot       service.Snapshot
	txCursor       int
	ledgerCursor   int
	remCursor      int
	dupCursor      int
	settingsCursor int
	status         string
	tz             *time.Location
	modal          modalState
	inputBuffer    string
	editingTxID    string
	newLedgerCat   int
	form           []formField
	formCursor     int
	insight        string
	apiKeyCached   string
	showAPIKey     bool
	currency       string
	dateFormat     string
	showAll        bool // include unconfirmed in the transactions view
}

type Repos struct {
	Transactions *repository.TransactionRepo
	Ledgers      *repository.LedgerRepo
	Reminders    *repository.ReminderRepo
	Contacts     *repository.ContactRepo
}

type Services struct {
	Catalog     *service.CatalogService
	Book        *service.LedgerBook
	Suggester   *service.Suggester
	Balances    *service.BalanceService
	Reminders   *service.ReminderService
	Deduper     *service.Deduper
	Maintenance *service.MaintenanceService
	Insights    *service.InsightService
}

// formField is one line of an entry form. Fields with options cycle with
// left/right instead of taking typed input.
type formField struct {
	label   string
	value   string
	options []string
	optIdx  int
}

func (f formField) current() string {
	if len(f.options) > 0 {
		return f.options[f.optIdx]
	}
	return f.value
}

type appState string

const (
	viewDashboard    appState = "dashboard"
	viewTransactions appState = "transactions"
	viewReminders    appState = "reminders"
	viewDuplicates   appState = "duplicates"
	viewSettings     appState = "settings"
)

type modalState string

const (
	modalNone           modalState = ""
	modalLedgerPicker   modalState = "ledgerPicker"
	modalNewLedger      modalState = "newLedger"
	modalNewTransaction modalState = "newTransaction"
	modalNewReminder    modalState = "newReminder"
	modalConfirmReset   modalState = "confirmReset"
	modalEditAPIKey     modalState = "editAPIKey"
)

// ledgerCategories is the pick order for the new-ledger modal.
var ledgerCategories = []repository.LedgerCategory{
	repository.CategoryExpense,
	repository.CategoryIncome,
	repository.CategoryReceivable,
	repository.CategoryPayable,
	repository.CategoryAsset,
	repository.CategoryLiability,
	repository.CategoryEquity,
}

func New(ctx context.Context, cfg config.Config, userID string, repos Repos, services Services, tz *time.Location) *App {
	if tz == nil {
		tz = time.Local
	}
	return &App{
		ctx:          ctx,
		userID:       userID,
		repos:        repos,
		services:     services,
		cfg:          cfg,
		tz:           tz,
		apiKeyCached: config.ResolveAPIKey(cfg),
		currency:     cfg.UI.CurrencySymbol,
		dateFormat:   cfg.UI.DateFormat,
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.loadTransactions(), a.loadLedgers(), a.loadReminders(), a.loadSnapshot())
}

func (a *App) loadTransactions() tea.Cmd {
	return func() tea.Msg {
		var filters repository.TransactionFilters
		if !a.showAll {
			confirmed := false
			filters.Confirmed = &confirmed
		}
		list, err := a.services.Book.List(a.ctx, a.userID, filters)
		if err != nil {
			return errMsg{err}
		}
		return transactionsMsg(list)
	}
}

func (a *App) loadLedgers() tea.Cmd {
	return func() tea.Msg {
		ledgers, err := a.services.Catalog.ListAvailable(a.ctx, a.userID)
		if err != nil {
			return errMsg{err}
		}
		return ledgerListMsg(ledgers)
	}
}

func (a *App) loadReminders() tea.Cmd {
	return func() tea.Msg {
		list, err := a.services.Reminders.List(a.ctx, a.userID, "")
		if err != nil {
			return errMsg{err}
		}
		return reminderListMsg(list)
	}
}

func (a *App) loadSnapshot() tea.Cmd {
	return func() tea.Msg {
		snap, err := a.services.Balances.Snapshot(a.ctx, a.userID)
		if err != nil {
			return errMsg{err}
		}
		return snapshotMsg(snap)
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.KeyMsg:
		if a.modal != modalNone {
			return a.handleModalKey(m)
		}
		if a.state == viewSettings {
			return a.handleSettingsKey(m)
		}
		switch m.String() {
		case "q", "ctrl+c":
			return a, tea.Quit
		case "t":
			a.state = viewTransactions
		case "d":
			a.state = viewDashboard
			return a, a.loadSnapshot()
		case "r":
			a.state = viewReminders
		case "u":
			a.state = viewDuplicates
		case "p":
			a.state = viewSettings
			a.status = ""
		case "up", "k":
			if a.state == viewTransactions && a.txCursor > 0 {
				a.txCursor--
			}
			if a.state == viewReminders && a.remCursor > 0 {
				a.remCursor--
			}
			if a.state == viewDuplicates && a.dupCursor > 0 {
				a.dupCursor--
			}
		case "down", "j":
			if a.state == viewTransactions && a.txCursor < len(a.transactions)-1 {
				a.txCursor++
			}
			if a.state == viewReminders && a.remCursor < len(a.reminders)-1 {
				a.remCursor++
			}
			if a.state == viewDuplicates && a.dupCursor < len(a.duplicates)-1 {
				a.dupCursor++
			}
		case "a":
			if a.state == viewTransactions {
				a.showAll = !a.showAll
				a.txCursor = 0
				return a, a.loadTransactions()
			}
		case "i":
			if a.state == viewDashboard {
				a.status = "summarizing..."
				return a, a.insightCmd()
			}
		case "m":
			if a.state == viewTransactions {
				a.openNewTransactionForm()
			}
			if a.state == viewReminders {
				a.openNewReminderForm()
			}
		case "enter", "c":
			if a.state == viewTransactions && len(a.transactions) > 0 {
				tx := a.transactions[a.txCursor]
				if tx.Confirmed {
					a.status = "already confirmed"
					return a, nil
				}
				a.editingTxID = tx.ID
				a.ledgerCursor = a.suggestedCursor(tx)
				a.modal = modalLedgerPicker
			}
			if a.state == viewReminders && len(a.reminders) > 0 {
				return a, a.reminderStatusCmd(a.reminders[a.remCursor].ID, "sent")
			}
		case "x":
			if a.state == viewReminders && len(a.reminders) > 0 {
				return a, a.reminderStatusCmd(a.reminders[a.remCursor].ID, "completed")
			}
		case "n":
			if a.state == viewReminders && len(a.reminders) > 0 {
				return a, a.reminderStatusCmd(a.reminders[a.remCursor].ID, "cancelled")
			}
		case "s":
			if a.state == viewDuplicates {
				a.status = "scanning..."
				return a, a.scanCmd()
			}
		case "y":
			if a.state == viewDuplicates && len(a.duplicates) > 0 {
				return a, a.mergeCmd(a.duplicates[a.dupCursor])
			}
		case "backspace", "delete":
			if a.state == viewTransactions && len(a.transactions) > 0 {
				tx := a.transactions[a.txCursor]
				return a, a.deleteTxCmd(tx.ID)
			}
		}
	case transactionsMsg:
		a.transactions = []repository.Transaction(m)
		if a.txCursor >= len(a.transactions) {
			a.txCursor = 0
		}
	case ledgerListMsg:
		a.ledgers = []repository.Ledger(m)
		a.ledgerName = make(map[string]string, len(a.ledgers))
		for _, l := range a.ledgers {
			a.ledgerName[l.ID] = l.Name
		}
	case reminderListMsg:
		a.reminders = []repository.Reminder(m)
		if a.remCursor >= len(a.reminders) {
			a.remCursor = 0
		}
	case duplicatesMsg:
		a.duplicates = []service.DuplicatePair(m)
		if a.dupCursor >= len(a.duplicates) {
			a.dupCursor = 0
		}
		a.status = fmt.Sprintf("%d candidate pairs", len(a.duplicates))
	case snapshotMsg:
		a.snapshot = service.Snapshot(m)
	case insightMsg:
		a.insight = string(m)
		a.status = ""
	case statusMsg:
		a.status = string(m)
	case errMsg:
		a.status = "error: " + m.Error()
	}
	return a, nil
}

func (a *App) View() string {
	var body string
	switch a.state {
	case viewTransactions:
		body = a.renderTransactions()
	case viewReminders:
		body = a.renderReminders()
	case viewDuplicates:
		body = a.renderDuplicates()
	case viewSettings:
		body = a.renderSettings()
	default:
		body = a.renderDashboard()
	}
	if a.modal != modalNone {
		body += "\n\n" + a.renderModal()
	}
	return body
}

// suggestedCursor preselects the remembered or AI-suggested ledger when
// the picker opens.
func (a *App) suggestedCursor(tx repository.Transaction) int {
	sug, err := a.services.Suggester.Suggest(a.ctx, tx)
	if err != nil || sug == nil {
		return 0
	}
	for i, l := range a.ledgers {
		if strings.EqualFold(l.Name, sug.LedgerName) {
			a.status = fmt.Sprintf("suggested: %s (%.0f%%)", sug.LedgerName, sug.Confidence*100)
			return i + 1 // +1 for the new-ledger row
		}
	}
	return 0
}

func (a *App) openNewTransactionForm() {
	a.modal = modalNewTransaction
	a.formCursor = 0
	a.form = []formField{
		{label: "Description"},
		{label: "Amount"},
		{label: "Direction", options: []string{"debit", "credit"}},
		{label: "Date", value: time.Now().In(a.tz).Format("2006-01-02")},
	}
}

func (a *App) openNewReminderForm() {
	a.modal = modalNewReminder
	a.formCursor = 0
	a.form = []formField{
		{label: "Contact"},
		{label: "Type", options: []string{"receivable", "payable"}},
		{label: "Amount"},
		{label: "Due date", value: time.Now().In(a.tz).AddDate(0, 0, 7).Format("2006-01-02")},
		{label: "Message"},
		{label: "Channel", options: []string{"-", "sms", "whatsapp", "email"}},
	}
}

// commands
func (a *App) confirmCmd(txID, ledgerName string, category repository.LedgerCategory) tea.Cmd {
	return tea.Batch(
		func() tea.Msg {
			_, err := a.services.Book.Confirm(a.ctx, service.ConfirmInput{
				UserID:        a.userID,
				TransactionID: txID,
				LedgerName:    ledgerName,
				Category:      category,
			})
			if err != nil {
				return errMsg{err}
			}
			return statusMsg("confirmed to " + ledgerName)
		},
		a.loadTransactions(),
		a.loadLedgers(),
		a.loadSnapshot(),
	)
}

func (a *App) insightCmd() tea.Cmd {
	return func() tea.Msg {
		if a.services.Insights == nil {
			return errMsg{fmt.Errorf("insights not configured")}
		}
		now := time.Now().In(a.tz)
		from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		to := from.AddDate(0, 1, 0)
		text, err := a.services.Insights.PeriodSummary(a.ctx, a.userID, now.Format("January 2006"), from, to)
		if err != nil {
			return errMsg{err}
		}
		return insightMsg(text)
	}
}

func (a *App) createTxCmd(form []formField) tea.Cmd {
	return tea.Batch(
		func() tea.Msg {
			cents, err := parseMoney(form[1].current())
			if err != nil {
				return errMsg{err}
			}
			date, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(form[3].current()), a.tz)
			if err != nil {
				return errMsg{fmt.Errorf("date must be YYYY-MM-DD: %w", err)}
			}
			_, err = a.services.Book.Create(a.ctx, service.NewTransaction{
				UserID:      a.userID,
				Date:        date,
				Description: form[0].current(),
				AmountCents: cents,
				Direction:   repository.Direction(form[2].current()),
			})
			if err != nil {
				return errMsg{err}
			}
			return statusMsg("cash entry recorded")
		},
		a.loadTransactions(),
		a.loadSnapshot(),
	)
}

func (a *App) createReminderCmd(form []formField) tea.Cmd {
	return tea.Batch(
		func() tea.Msg {
			contactID, err := a.resolveContact(form[0].current())
			if err != nil {
				return errMsg{err}
			}
			cents, err := parseMoney(form[2].current())
			if err != nil {
				return errMsg{err}
			}
			due, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(form[3].current()), a.tz)
			if err != nil {
				return errMsg{fmt.Errorf("due date must be YYYY-MM-DD: %w", err)}
			}
			var channel repository.ReminderChannel
			if c := form[5].current(); c != "-" {
				channel = repository.ReminderChannel(c)
			}
			_, err = a.services.Reminders.Create(a.ctx, service.NewReminder{
				UserID:      a.userID,
				ContactID:   contactID,
				Type:        repository.ReminderType(form[1].current()),
				AmountCents: cents,
				DueDate:     due,
				Channel:     channel,
				Message:     form[4].current(),
			})
			if err != nil {
				return errMsg{err}
			}
			return statusMsg("reminder scheduled")
		},
		a.loadReminders(),
	)
}

// resolveContact finds a contact by name, creating one when it does not
// exist yet.
func (a *App) resolveContact(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("contact name is required")
	}
	existing, err := a.repos.Contacts.List(a.ctx, a.userID)
	if err != nil {
		return "", err
	}
	for _, c := range existing {
		if strings.EqualFold(c.Name, name) {
			return c.ID, nil
		}
	}
	c := repository.Contact{ID: uuid.NewString(), UserID: a.userID, Name: name}
	if err := a.repos.Contacts.Insert(a.ctx, c); err != nil {
		return "", err
	}
	return c.ID, nil
}

// parseMoney turns "1234.50" into cents.
func parseMoney(s string) (int64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("amount must be a non-negative number")
	}
	return int64(math.Round(v * 100)), nil
}

func (a *App) deleteTxCmd(txID string) tea.Cmd {
	return tea.Batch(
		func() tea.Msg {
			if err := a.services.Book.Delete(a.ctx, a.userID, txID); err != nil {
				return errMsg{err}
			}
			return statusMsg("entry deleted")
		},
		a.loadTransactions(),
		a.loadSnapshot(),
	)
}

func (a *App) reminderStatusCmd(id, action string) tea.Cmd {
	return tea.Batch(
		func() tea.Msg {
			var err error
			switch action {
			case "sent":
				_, err = a.services.Reminders.MarkSent(a.ctx, a.userID, id)
			case "completed":
				err = a.services.Reminders.Complete(a.ctx, a.userID, id)
			case "cancelled":
				err = a.services.Reminders.Cancel(a.ctx, a.userID, id)
			}
			if err != nil {
				return errMsg{err}
			}
			return statusMsg("reminder " + action)
		},
		a.loadReminders(),
	)
}

func (a *App) scanCmd() tea.Cmd {
	return func() tea.Msg {
		pairs, err := a.services.Deduper.Scan(a.ctx, a.userID)
		if err != nil {
			return errMsg{err}
		}
		return duplicatesMsg(pairs)
	}
}

func (a *App) mergeCmd(pair service.DuplicatePair) tea.Cmd {
	return tea.Batch(
		func() tea.Msg {
			if err := a.services.Deduper.Merge(a.ctx, a.userID, pair); err != nil {
				return errMsg{err}
			}
			return statusMsg("duplicate removed")
		},
		a.scanCmd(),
		a.loadTransactions(),
	)
}

func (a *App) resetCmd() tea.Cmd {
	return tea.Batch(
		func() tea.Msg {
			if a.services.Maintenance == nil {
				return errMsg{fmt.Errorf("maintenance not configured")}
			}
			if err := a.services.Maintenance.Reset(a.ctx); err != nil {
				return errMsg{err}
			}
			a.txCursor, a.remCursor, a.dupCursor, a.settingsCursor = 0, 0, 0, 0
			return statusMsg("database reset (restart to reseed system ledgers)")
		},
		a.loadTransactions(),
		a.loadLedgers(),
		a.loadReminders(),
		a.loadSnapshot(),
	)
}

func (a *App) saveAPIKeyCmd(key string) tea.Cmd {
	return func() tea.Msg {
		a.cfg.LLM.APIKey = strings.TrimSpace(key)
		if err := config.Save(a.cfg); err != nil {
			return errMsg{err}
		}
		a.apiKeyCached = a.cfg.LLM.APIKey
		return statusMsg("API key saved to config (restart to apply)")
	}
}

func (a *App) handleModalKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.modal {
	case modalLedgerPicker:
		switch m.String() {
		case "esc":
			a.modal = modalNone
			a.editingTxID = ""
		case "up", "k":
			if a.ledgerCursor > 0 {
				a.ledgerCursor--
			}
		case "down", "j":
			if a.ledgerCursor < len(a.ledgers) { // row 0 is [new ledger]
				a.ledgerCursor++
			}
		case "enter":
			txID := a.editingTxID
			a.modal = modalNone
			if txID == "" {
				return a, nil
			}
			if a.ledgerCursor == 0 {
				a.modal = modalNewLedger
				a.editingTxID = txID
				a.inputBuffer = ""
				a.newLedgerCat = 0
				return a, nil
			}
			idx := a.ledgerCursor - 1
			if idx >= len(a.ledgers) {
				return a, nil
			}
			a.editingTxID = ""
			return a, a.confirmCmd(txID, a.ledgers[idx].Name, "")
		}
	case modalNewLedger:
		switch m.Type {
		case tea.KeyEsc:
			a.modal = modalNone
			a.inputBuffer = ""
			a.editingTxID = ""
		case tea.KeyEnter:
			name := strings.TrimSpace(a.inputBuffer)
			if name == "" {
				a.status = "enter a ledger name"
				return a, nil
			}
			txID := a.editingTxID
			category := ledgerCategories[a.newLedgerCat]
			a.modal = modalNone
			a.inputBuffer = ""
			a.editingTxID = ""
			return a, a.confirmCmd(txID, name, category)
		case tea.KeyLeft:
			a.newLedgerCat = (a.newLedgerCat + len(ledgerCategories) - 1) % len(ledgerCategories)
		case tea.KeyRight, tea.KeyTab:
			a.newLedgerCat = (a.newLedgerCat + 1) % len(ledgerCategories)
		case tea.KeyBackspace, tea.KeyCtrlH, tea.KeyDelete:
			if len(a.inputBuffer) > 0 {
				a.inputBuffer = a.inputBuffer[:len(a.inputBuffer)-1]
			}
		case tea.KeySpace:
			a.inputBuffer += " "
		case tea.KeyRunes:
			a.inputBuffer += string(m.Runes)
		}
	case modalNewTransaction, modalNewReminder:
		return a.handleFormKey(m)
	case modalConfirmReset:
		switch m.String() {
		case "y", "Y":
			a.modal = modalNone
			return a, a.resetCmd()
		case "n", "N", "esc":
			a.modal = modalNone
		}
	case modalEditAPIKey:
		switch m.Type {
		case tea.KeyEsc:
			a.modal = modalNone
			a.inputBuffer = ""
		case tea.KeyEnter:
			key := strings.TrimSpace(a.inputBuffer)
			a.modal = modalNone
			a.inputBuffer = ""
			if key == "" {
				a.status = "enter a value"
				return a, nil
			}
			return a, a.saveAPIKeyCmd(key)
		case tea.KeyBackspace, tea.KeyCtrlH, tea.KeyDelete:
			if len(a.inputBuffer) > 0 {
				a.inputBuffer = a.inputBuffer[:len(a.inputBuffer)-1]
			}
		case tea.KeySpace:
			a.inputBuffer += " "
		case tea.KeyRunes:
			a.inputBuffer += string(m.Runes)
		}
	}
	return a, nil
}

func (a *App) handleFormKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	field := &a.form[a.formCursor]
	switch m.Type {
	case tea.KeyEsc:
		a.modal = modalNone
		a.form = nil
	case tea.KeyUp:
		if a.formCursor > 0 {
			a.formCursor--
		}
	case tea.KeyDown, tea.KeyTab:
		if a.formCursor < len(a.form)-1 {
			a.formCursor++
		}
	case tea.KeyLeft:
		if len(field.options) > 0 {
			field.optIdx = (field.optIdx + len(field.options) - 1) % len(field.options)
		}
	case tea.KeyRight:
		if len(field.options) > 0 {
			field.optIdx = (field.optIdx + 1) % len(field.options)
		}
	case tea.KeyEnter:
		form := a.form
		modal := a.modal
		a.modal = modalNone
		a.form = nil
		if modal == modalNewTransaction {
			return a, a.createTxCmd(form)
		}
		return a, a.createReminderCmd(form)
	case tea.KeyBackspace, tea.KeyCtrlH, tea.KeyDelete:
		if len(field.options) == 0 && len(field.value) > 0 {
			field.value = field.value[:len(field.value)-1]
		}
	case tea.KeySpace:
		if len(field.options) == 0 {
			field.value += " "
		}
	case tea.KeyRunes:
		if len(field.options) == 0 {
			field.value += string(m.Runes)
		}
	}
	return a, nil
}

func (a *App) handleSettingsKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "esc", "d":
		a.state = viewDashboard
		a.status = ""
		return a, a.loadSnapshot()
	case "t":
		a.state = viewTransactions
		return a, nil
	case "up", "k":
		if a.settingsCursor > 0 {
			a.settingsCursor--
		}
	case "down", "j":
		if a.settingsCursor < len(a.ledgers)-1 {
			a.settingsCursor++
		}
	case "e":
		a.modal = modalEditAPIKey
		a.inputBuffer = a.apiKeyCached
		return a, nil
	case "v":
		a.showAPIKey = !a.showAPIKey
	case "g":
		return a, func() tea.Msg {
			if err := a.services.Maintenance.RepairContactTotals(a.ctx, a.userID); err != nil {
				return errMsg{err}
			}
			return statusMsg("contact totals rebuilt from books")
		}
	case "x":
		a.modal = modalConfirmReset
		return a, nil
	}
	return a, nil
}

// messages
type transactionsMsg []repository.Transaction

type ledgerListMsg []repository.Ledger

type reminderListMsg []repository.Reminder

type duplicatesMsg []service.DuplicatePair

type snapshotMsg service.Snapshot

type statusMsg string

type insightMsg string

type errMsg struct{ error }

// styles
var titleStyle = lipgloss.NewStyle().Bold(true).Underline(true)

func (a *App) renderDashboard() string {
	title := titleStyle.Render("JaskBooks")
	s := a.snapshot
	body := fmt.Sprintf("Cash in hand: %s\nBank accounts: %s", a.money(s.CashCents), a.money(s.BankTotalCents))
	for _, b := range s.Banks {
		body += fmt.Sprintf("\n  %-24s %s", b.Bank.Name, a.money(b.BalanceCents))
	}
	body += fmt.Sprintf("\nIncome: %s  Expenses: %s  Net: %s",
		a.money(s.IncomeCents), a.money(s.ExpenseCents), a.money(s.IncomeCents-s.ExpenseCents))
	body += fmt.Sprintf("\nTo collect: %s  To pay: %s", a.money(s.ReceivableCents), a.money(s.PayableCents))
	if a.insight != "" {
		body += "\n\n" + a.insight
	}
	body += "\n[t] Transactions  [r] Reminders  [u] Duplicates  [i] Month summary  [p] Settings  [q] Quit"
	if a.status != "" {
		body += "\n" + a.status
	}
	return fmt.Sprintf("%s\n%s", title, body)
}

func (a *App) renderTransactions() string {
	label := "Unconfirmed Transactions"
	if a.showAll {
		label = "All Transactions"
	}
	title := titleStyle.Render(label)
	out := title + "\n"
	if len(a.transactions) == 0 {
		out += "(nothing here)\n"
	}
	for i, t := range a.transactions {
		marker := " "
		if i == a.txCursor {
			marker = "▶"
		}
		sign := "+"
		if t.Direction == repository.Debit {
			sign = "-"
		}
		ledger := "[unconfirmed]"
		if t.LedgerID != nil {
			if name, ok := a.ledgerName[*t.LedgerID]; ok {
				ledger = name
			}
		}
		out += fmt.Sprintf("%s %s  %-36s  %s%s  %s\n",
			marker, t.Date.In(a.tz).Format(a.dateFormat), t.Description, sign, a.money(t.AmountCents), ledger)
	}
	out += "[enter] Confirm to ledger  [m] Manual cash entry  [a] Toggle all/unconfirmed  [del] Delete  [d] Dashboard  [r] Reminders  [u] Duplicates  [q] Quit"
	if a.status != "" {
		out += "\n" + a.status
	}
	return out
}

func (a *App) renderReminders() string {
	title := titleStyle.Render("Payment Reminders")
	out := title + "\n"
	if len(a.reminders) == 0 {
		out += "(no reminders)\n"
	}
	now := time.Now()
	for i, r := range a.reminders {
		marker := " "
		if i == a.remCursor {
			marker = "▶"
		}
		due := r.DueDate.In(a.tz).Format(a.dateFormat)
		if r.Overdue(now) {
			due += " OVERDUE"
		}
		channel := "-"
		if r.Channel != nil {
			channel = string(*r.Channel)
		}
		out += fmt.Sprintf("%s %-10s %-9s %s  %s  via %s\n", marker, r.Type, r.Status, a.money(r.AmountCents), due, channel)
	}
	out += "[m] New reminder  [enter] Mark sent  [x] Complete  [n] Cancel  [d] Dashboard  [t] Transactions  [q] Quit"
	if a.status != "" {
		out += "\n" + a.status
	}
	return out
}

func (a *App) renderDuplicates() string {
	title := titleStyle.Render("Duplicate Candidates")
	if len(a.duplicates) == 0 {
		return fmt.Sprintf("%s\nNo candidates. Press [s] to scan unconfirmed entries.\n[d] Dashboard  [t] Transactions  [q] Quit", title)
	}
	p := a.duplicates[a.dupCursor]
	out := fmt.Sprintf("%s\nPair %d of %d  Similarity: %.2f\nKeep: %s  %-36s %s\nDrop: %s  %-36s %s\n[y] Merge (drop newer)  [s] Rescan  [d] Dashboard  [t] Transactions  [q] Quit",
		title, a.dupCursor+1, len(a.duplicates), p.Similarity,
		p.Keep.Date.In(a.tz).Format(a.dateFormat), p.Keep.Description, a.money(p.Keep.AmountCents),
		p.Drop.Date.In(a.tz).Format(a.dateFormat), p.Drop.Description, a.money(p.Drop.AmountCents))
	if a.status != "" {
		out += "\n" + a.status
	}
	return out
}

func (a *App) renderSettings() string {
	title := titleStyle.Render("Settings")
	out := title + "\n"
	out += "Ledgers (system ledgers cannot be renamed)\n"
	for i, l := range a.ledgers {
		marker := " "
		if i == a.settingsCursor {
			marker = "▶"
		}
		kind := ""
		if l.IsSystem {
			kind = " (system)"
		}
		out += fmt.Sprintf("%s %-28s %s%s\n", marker, l.Name, l.Category, kind)
	}

	apiValue := "(not set)"
	if a.apiKeyCached != "" {
		if a.showAPIKey {
			apiValue = a.apiKeyCached
		} else {
			apiValue = strings.Repeat("*", len(a.apiKeyCached))
		}
	}
	out += fmt.Sprintf("\nAI API key (%s): %s\n", a.cfg.LLM.APIKeyEnv, apiValue)
	out += "[e] Edit API key  [v] Toggle visibility\n"
	out += "[g] Rebuild contact totals\n"
	out += "[x] Reset database (clears everything)\n"
	out += "[d] Dashboard  [t] Transactions  [q] Quit"
	if a.status != "" {
		out += "\n" + a.status
	}
	return out
}

func (a *App) renderModal() string {
	switch a.modal {
	case modalLedgerPicker:
		out := titleStyle.Render("Confirm to Ledger") + "\n"
		options := []string{"[new ledger...]"}
		for _, l := range a.ledgers {
			options = append(options, fmt.Sprintf("%s (%s)", l.Name, l.Category))
		}
		for i, opt := range options {
			marker := " "
			if i == a.ledgerCursor {
				marker = "▶"
			}
			out += fmt.Sprintf("%s %s\n", marker, opt)
		}
		out += "[enter] Select  [esc] Cancel"
		return out
	case modalNewLedger:
		return titleStyle.Render("New ledger") +
			fmt.Sprintf("\nName: %s\nCategory: < %s >\n[enter] Confirm  [←/→] Category  [esc] Cancel",
				a.inputBuffer, ledgerCategories[a.newLedgerCat])
	case modalNewTransaction, modalNewReminder:
		label := "New cash entry"
		if a.modal == modalNewReminder {
			label = "New reminder"
		}
		out := titleStyle.Render(label) + "\n"
		for i, f := range a.form {
			marker := " "
			if i == a.formCursor {
				marker = "▶"
			}
			value := f.current()
			if len(f.options) > 0 {
				value = "< " + value + " >"
			}
			out += fmt.Sprintf("%s %-12s %s\n", marker, f.label+":", value)
		}
		out += "[enter] Save  [↑/↓] Field  [←/→] Option  [esc] Cancel"
		return out
	case modalConfirmReset:
		return titleStyle.Render("Reset database?") + "\nThis will delete all data.\n[y] Yes  [n] No"
	case modalEditAPIKey:
		return titleStyle.Render("Set AI API key (stored in config.toml)") + fmt.Sprintf("\n%s\n[enter] Save  [esc] Cancel", a.inputBuffer)
	default:
		return ""
	}
}

func (a *App) money(cents int64) string {
	return fmt.Sprintf("%s%.2f", a.currency, float64(cents)/100)
}
