package pipeline

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/extratolab/extrato/internal/domain"
	"github.com/extratolab/extrato/internal/validate"
)

// transformExtraction shapes the model's generic JSON into raw ledger rows.
// Shape violations wrap ErrDocumentUnreadable: the document as a whole failed,
// there is no per-row salvage at this stage.
func transformExtraction(payload map[string]interface{}) (*ExtractionResult, error) {
	txAny, ok := payload["transactions"]
	if !ok {
		return nil, fmt.Errorf("transformExtraction: missing 'transactions' key: %w", ErrDocumentUnreadable)
	}
	txSlice, ok := txAny.([]interface{})
	if !ok {
		return nil, fmt.Errorf("transformExtraction: 'transactions' is %T, want array: %w", txAny, ErrDocumentUnreadable)
	}

	result := &ExtractionResult{
		Rows: make([]domain.Transaction, 0, len(txSlice)),
	}

	for i, item := range txSlice {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("transformExtraction: element %d is %T, want object: %w", i, item, ErrDocumentUnreadable)
		}
		row, err := transformRow(obj)
		if err != nil {
			return nil, fmt.Errorf("transformExtraction: transaction %d: %w", i, err)
		}
		result.Rows = append(result.Rows, row)
	}

	finalBalance, err := getOptionalFloat64Field(payload, "final_balance")
	if err != nil {
		return nil, fmt.Errorf("transformExtraction: %w: %w", err, ErrDocumentUnreadable)
	}
	if finalBalance != nil {
		d := decimal.NewFromFloat(*finalBalance)
		result.DeclaredFinalBalance = &d
	}

	return result, nil
}

func transformRow(obj map[string]interface{}) (domain.Transaction, error) {
	var row domain.Transaction

	date, err := getStringField(obj, "date", true)
	if err != nil {
		return row, fmt.Errorf("%v: %w", err, ErrDocumentUnreadable)
	}
	desc, err := getStringField(obj, "description", true)
	if err != nil {
		return row, fmt.Errorf("%v: %w", err, ErrDocumentUnreadable)
	}
	company, err := getStringField(obj, "company_name", false)
	if err != nil {
		return row, fmt.Errorf("%v: %w", err, ErrDocumentUnreadable)
	}
	cnpj, err := getStringField(obj, "cnpj", false)
	if err != nil {
		return row, fmt.Errorf("%v: %w", err, ErrDocumentUnreadable)
	}
	category, err := getStringField(obj, "category", false)
	if err != nil {
		return row, fmt.Errorf("%v: %w", err, ErrDocumentUnreadable)
	}
	debit, err := getFloat64Field(obj, "debit")
	if err != nil {
		return row, fmt.Errorf("%v: %w", err, ErrDocumentUnreadable)
	}
	credit, err := getFloat64Field(obj, "credit")
	if err != nil {
		return row, fmt.Errorf("%v: %w", err, ErrDocumentUnreadable)
	}
	unusual, err := getBoolField(obj, "is_unusual")
	if err != nil {
		return row, fmt.Errorf("%v: %w", err, ErrDocumentUnreadable)
	}
	reason, err := getStringField(obj, "unusual_reason", false)
	if err != nil {
		return row, fmt.Errorf("%v: %w", err, ErrDocumentUnreadable)
	}

	if !domain.ValidCategory(category) {
		category = domain.CategoryUncategorized
	}

	row = domain.Transaction{
		Date:          date,
		Description:   desc,
		Debit:         amountString(debit),
		Credit:        amountString(credit),
		CompanyName:   company,
		CNPJ:          validate.OnlyDigits(cnpj),
		Category:      category,
		IsUnusual:     unusual,
		UnusualReason: reason,
	}
	return row, nil
}

// amountString renders a model number into the Brazilian-locale string the
// ledger stores; zero means the column is unset.
func amountString(v float64) string {
	if v == 0 {
		return ""
	}
	return validate.FormatCurrency(decimal.NewFromFloat(v))
}

func getStringField(m map[string]interface{}, key string, required bool) (string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		if required {
			return "", fmt.Errorf("missing required field %q", key)
		}
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %q has type %T, want string", key, v)
	}
	if required && strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("required field %q is empty", key)
	}
	return s, nil
}

func getFloat64Field(m map[string]interface{}, key string) (float64, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return 0, nil
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("field %q has type %T, want number", key, v)
	}
	return f, nil
}

func getOptionalFloat64Field(m map[string]interface{}, key string) (*float64, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, nil
	}
	f, ok := v.(float64)
	if !ok {
		return nil, fmt.Errorf("field %q has type %T, want number or null", key, v)
	}
	return &f, nil
}

func getBoolField(m map[string]interface{}, key string) (bool, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("field %q has type %T, want boolean", key, v)
	}
	return b, nil
}
