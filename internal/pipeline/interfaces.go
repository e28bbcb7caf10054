// Package pipeline turns an uploaded bank-statement PDF into raw ledger rows
// via a vision model, and hosts the best-effort correction oracles built on
// the same model.
package pipeline

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/extratolab/extrato/internal/domain"
)

// ErrDocumentUnreadable is returned when the model output cannot be shaped
// into transactions. It is fatal for the uploaded document; the user retries
// with a new upload.
var ErrDocumentUnreadable = errors.New("document could not be processed")

// ExtractionResult is the oracle's answer for one statement.
type ExtractionResult struct {
	// Rows lack IDs and balances; the ledger engine assigns both at ingest.
	Rows []domain.Transaction

	// DeclaredFinalBalance is the closing balance printed on the statement,
	// when the model found one. Used for the reconciliation mismatch flag.
	DeclaredFinalBalance *decimal.Decimal
}

// Extractor turns statement PDF bytes into raw ledger rows. The concrete
// implementation is Gemini; the interface exists so handlers and jobs can be
// tested with a fake.
type Extractor interface {
	ExtractStatement(ctx context.Context, pdfBytes []byte) (*ExtractionResult, error)
}

// DefaultModel is the Gemini model used for extraction and suggestions.
const DefaultModel = "gemini-2.5-flash"
