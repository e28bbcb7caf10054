// Package ledger maintains the in-memory transaction list for one statement:
// running balances, per-row validation error tables and the reconciliation
// flag against the balance declared on the statement.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/extratolab/extrato/internal/domain"
	"github.com/extratolab/extrato/internal/validate"
)

// Field names accepted by EditField.
const (
	FieldDate          = "date"
	FieldDescription   = "description"
	FieldDebit         = "debit"
	FieldCredit        = "credit"
	FieldCompanyName   = "companyName"
	FieldCNPJ          = "cnpj"
	FieldCategory      = "category"
	FieldUnusualReason = "unusualReason"
)

var (
	// ErrRecordNotFound is returned when an edit names an unknown record id.
	ErrRecordNotFound = errors.New("record not found")
	// ErrUnknownField is returned when an edit names a field that does not exist.
	ErrUnknownField = errors.New("unknown field")
	// ErrUnknownCategory is returned when a category edit is outside the taxonomy.
	ErrUnknownCategory = errors.New("unknown category")
	// ErrSuggestionInFlight is returned while another category suggestion is running.
	ErrSuggestionInFlight = errors.New("a category suggestion is already in progress")
)

// mismatchTolerance absorbs cent-level rounding between the computed and the
// declared final balance.
var mismatchTolerance = decimal.RequireFromString("0.01")

// DateCorrector proposes a corrected form of an invalid date string.
// Implementations are best-effort: on failure they return the input unchanged.
type DateCorrector interface {
	CorrectDate(ctx context.Context, raw string) (string, error)
}

// CategorySuggester proposes a category for a transaction description,
// constrained to the fixed taxonomy.
type CategorySuggester interface {
	SuggestCategory(ctx context.Context, description, current string) (string, error)
}

// CurrencyError keys a currency validation failure to one of the two amount
// columns of a row. Debit and credit errors are tracked independently even on
// the same row.
type CurrencyError struct {
	RecordID string `json:"recordId"`
	Field    string `json:"field"` // FieldDebit or FieldCredit
	Message  string `json:"message"`
}

// Ledger is the single owner of the record list and its derived state. All
// mutation goes through Ingest, EditField and SuggestCategory; the
// error side tables are recomputed reactively and never persisted.
type Ledger struct {
	mu sync.Mutex

	id      string
	records []domain.Transaction

	declaredFinal *decimal.Decimal

	dateErrs        map[string]string
	dateSuggestions map[string]string
	cnpjErrs        map[string]string
	currencyErrs    map[currencyKey]string

	// dateRev stamps each row's date field. Async correction lookups capture
	// the stamp at request time and discard their result if the row was edited
	// in the meantime.
	dateRev map[string]uint64

	corrector   DateCorrector
	suggester   CategorySuggester
	suggestBusy atomic.Bool

	lookups sync.WaitGroup
	log     zerolog.Logger
}

type currencyKey struct {
	recordID string
	field    string
}

// New creates an empty ledger. The oracles may be nil; a nil corrector just
// means invalid dates get no correction proposals.
func New(corrector DateCorrector, suggester CategorySuggester, log zerolog.Logger) *Ledger {
	return &Ledger{
		id:              uuid.NewString(),
		dateErrs:        make(map[string]string),
		dateSuggestions: make(map[string]string),
		cnpjErrs:        make(map[string]string),
		currencyErrs:    make(map[currencyKey]string),
		dateRev:         make(map[string]uint64),
		corrector:       corrector,
		suggester:       suggester,
		log:             log,
	}
}

// ID returns the ledger's opaque identifier.
func (l *Ledger) ID() string {
	return l.id
}

// Ingest loads a batch of raw extracted rows: every row gets a fresh id, the
// balance sequence is computed from a zero accumulator, and the initial date
// and identifier error tables are filled. Correction lookups for all invalid
// dates run concurrently; Ingest does not return until every lookup has
// resolved or failed, so callers can treat the returned state as fully
// validated.
func (l *Ledger) Ingest(ctx context.Context, rows []domain.Transaction, declaredFinal *decimal.Decimal) {
	l.mu.Lock()

	l.records = make([]domain.Transaction, len(rows))
	copy(l.records, rows)
	l.declaredFinal = declaredFinal

	for i := range l.records {
		l.records[i].ID = uuid.NewString()
		l.records[i].CNPJ = validate.OnlyDigits(l.records[i].CNPJ)
	}
	l.recomputeBalances()

	type pending struct {
		id, raw string
		rev     uint64
	}
	var flagged []pending

	for i := range l.records {
		rec := &l.records[i]
		if err := validate.ValidateDate(rec.Date); err != nil {
			l.dateErrs[rec.ID] = err.Error()
			flagged = append(flagged, pending{id: rec.ID, raw: rec.Date, rev: l.dateRev[rec.ID]})
		}
		if err := validate.ValidateCNPJ(rec.CNPJ); err != nil {
			l.cnpjErrs[rec.ID] = err.Error()
		}
	}
	l.mu.Unlock()

	// Lookups complete in any order; each one re-checks staleness before it
	// records anything.
	for _, p := range flagged {
		l.lookups.Add(1)
		go func(p pending) {
			defer l.lookups.Done()
			l.lookupDateCorrection(ctx, p.id, p.raw, p.rev)
		}(p)
	}
	l.lookups.Wait()
}

// EditField replaces one field of the record identified by id, recomputes the
// full balance sequence and re-runs the validator for the changed field.
// Malformed values are stored as given: the flaw shows up in the error tables,
// never as a rejected edit.
func (l *Ledger) EditField(ctx context.Context, id, field, value string) error {
	l.mu.Lock()

	idx := l.indexOf(id)
	if idx < 0 {
		l.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}
	rec := &l.records[idx]

	switch field {
	case FieldDate:
		rec.Date = value
	case FieldDescription:
		rec.Description = value
	case FieldDebit:
		rec.Debit = value
	case FieldCredit:
		rec.Credit = value
	case FieldCompanyName:
		rec.CompanyName = value
	case FieldCNPJ:
		rec.CNPJ = validate.OnlyDigits(value)
	case FieldCategory:
		if !domain.ValidCategory(value) {
			l.mu.Unlock()
			return fmt.Errorf("%w: %q", ErrUnknownCategory, value)
		}
		rec.Category = value
	case FieldUnusualReason:
		rec.UnusualReason = value
	default:
		l.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	l.recomputeBalances()

	switch field {
	case FieldDate:
		l.dateRev[id]++
		delete(l.dateErrs, id)
		delete(l.dateSuggestions, id)
		if err := validate.ValidateDate(rec.Date); err != nil {
			l.dateErrs[id] = err.Error()
			raw, rev := rec.Date, l.dateRev[id]
			l.lookups.Add(1)
			// Detached from the request context so an early client disconnect
			// does not lose the correction.
			bg := context.WithoutCancel(ctx)
			go func() {
				defer l.lookups.Done()
				l.lookupDateCorrection(bg, id, raw, rev)
			}()
		}
	case FieldCNPJ:
		delete(l.cnpjErrs, id)
		if err := validate.ValidateCNPJ(rec.CNPJ); err != nil {
			l.cnpjErrs[id] = err.Error()
		}
	case FieldDebit, FieldCredit:
		key := currencyKey{recordID: id, field: field}
		delete(l.currencyErrs, key)
		if err := validate.ValidateCurrency(value); err != nil {
			l.currencyErrs[key] = err.Error()
		}
	}

	l.mu.Unlock()
	return nil
}

// lookupDateCorrection asks the oracle for a fix and records it only if the
// row's date is still the one the lookup was issued for, the proposal itself
// validates, and it differs from the current value. Oracle failures are
// swallowed: the user just gets no proposal.
func (l *Ledger) lookupDateCorrection(ctx context.Context, id, raw string, rev uint64) {
	if l.corrector == nil {
		return
	}
	suggestion, err := l.corrector.CorrectDate(ctx, raw)
	if err != nil {
		l.log.Debug().Err(err).Str("record_id", id).Msg("date correction lookup failed")
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.dateRev[id] != rev {
		l.log.Debug().Str("record_id", id).Msg("discarding stale date correction")
		return
	}
	idx := l.indexOf(id)
	if idx < 0 {
		return
	}
	if suggestion == l.records[idx].Date {
		return
	}
	if validate.ValidateDate(suggestion) != nil {
		return
	}
	l.dateSuggestions[id] = suggestion
}

// SuggestCategory asks the category oracle about the record's description and
// applies the answer when it is a taxonomy member. Only one suggestion request
// may be in flight at a time. Out-of-taxonomy answers and oracle failures fall
// back to the record's current category.
func (l *Ledger) SuggestCategory(ctx context.Context, id string) (string, error) {
	if l.suggester == nil {
		return "", errors.New("no category suggester configured")
	}
	if !l.suggestBusy.CompareAndSwap(false, true) {
		return "", ErrSuggestionInFlight
	}
	defer l.suggestBusy.Store(false)

	l.mu.Lock()
	idx := l.indexOf(id)
	if idx < 0 {
		l.mu.Unlock()
		return "", fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}
	description := l.records[idx].Description
	current := l.records[idx].Category
	l.mu.Unlock()

	suggested, err := l.suggester.SuggestCategory(ctx, description, current)
	if err != nil || !domain.ValidCategory(suggested) {
		if err != nil {
			l.log.Debug().Err(err).Str("record_id", id).Msg("category suggestion failed")
		}
		return current, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	idx = l.indexOf(id)
	if idx < 0 {
		return "", fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}
	l.records[idx].Category = suggested
	return suggested, nil
}

// Mismatch reports whether the computed final balance disagrees with the
// declared one by more than the rounding tolerance. Without a declared balance
// or without rows there is nothing to reconcile.
func (l *Ledger) Mismatch() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.mismatchLocked()
}

func (l *Ledger) mismatchLocked() bool {
	if l.declaredFinal == nil || len(l.records) == 0 {
		return false
	}
	diff := l.records[len(l.records)-1].Balance.Sub(*l.declaredFinal).Abs()
	return diff.GreaterThan(mismatchTolerance)
}

// Records returns a copy of the current record list.
func (l *Ledger) Records() []domain.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.Transaction, len(l.records))
	copy(out, l.records)
	return out
}

// Snapshot is a read-only view of the ledger handed to the API layer.
type Snapshot struct {
	ID                   string                 `json:"id"`
	Records              []domain.Transaction   `json:"records"`
	DateErrors           map[string]string      `json:"dateErrors"`
	DateSuggestions      map[string]string      `json:"dateSuggestions"`
	CNPJErrors           map[string]string      `json:"cnpjErrors"`
	CurrencyErrors       []CurrencyError        `json:"currencyErrors"`
	DeclaredFinalBalance *decimal.Decimal       `json:"declaredFinalBalance,omitempty"`
	Mismatch             bool                   `json:"mismatch"`
}

// Snapshot copies the records and error tables out under the lock. Absence of
// an entry in an error table means "currently believed valid", not "never
// checked".
func (l *Ledger) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	snap := Snapshot{
		ID:              l.id,
		Records:         make([]domain.Transaction, len(l.records)),
		DateErrors:      make(map[string]string, len(l.dateErrs)),
		DateSuggestions: make(map[string]string, len(l.dateSuggestions)),
		CNPJErrors:      make(map[string]string, len(l.cnpjErrs)),
		CurrencyErrors:  make([]CurrencyError, 0, len(l.currencyErrs)),
		Mismatch:        l.mismatchLocked(),
	}
	copy(snap.Records, l.records)
	for k, v := range l.dateErrs {
		snap.DateErrors[k] = v
	}
	for k, v := range l.dateSuggestions {
		snap.DateSuggestions[k] = v
	}
	for k, v := range l.cnpjErrs {
		snap.CNPJErrors[k] = v
	}
	for k, v := range l.currencyErrs {
		snap.CurrencyErrors = append(snap.CurrencyErrors, CurrencyError{
			RecordID: k.recordID,
			Field:    k.field,
			Message:  v,
		})
	}
	if l.declaredFinal != nil {
		d := *l.declaredFinal
		snap.DeclaredFinalBalance = &d
	}
	return snap
}

// WaitLookups blocks until all outstanding date-correction lookups finish.
// Ingest already waits for its own batch; this exists for edit-time lookups.
func (l *Ledger) WaitLookups() {
	l.lookups.Wait()
}

// recomputeBalances runs the single left-to-right pass over the whole list.
// Statements are small, so a full recompute on every edit beats bookkeeping
// for incremental updates. Callers must hold l.mu.
func (l *Ledger) recomputeBalances() {
	running := decimal.Zero
	for i := range l.records {
		running = running.
			Add(validate.ParseCurrency(l.records[i].Credit)).
			Sub(validate.ParseCurrency(l.records[i].Debit))
		l.records[i].Balance = running
	}
}

// indexOf finds a record by id. Callers must hold l.mu.
func (l *Ledger) indexOf(id string) int {
	for i := range l.records {
		if l.records[i].ID == id {
			return i
		}
	}
	return -1
}
