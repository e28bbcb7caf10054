package pipeline

import (
	"strings"

	"github.com/extratolab/extrato/internal/domain"
)

// extractionPrompt builds the instruction block sent ahead of the PDF.
func extractionPrompt() string {
	var b strings.Builder

	b.WriteString("You are a financial statement parser for Brazilian bank statement PDFs (extratos bancários).\n\n")
	b.WriteString("Task:\n")
	b.WriteString("- Parse ALL transactions in the attached statement.\n")
	b.WriteString("- Output STRICT JSON only (no comments, no trailing commas, no extra text).\n")
	b.WriteString("- Output a single JSON object:\n")
	b.WriteString("  {\"transactions\": [...], \"final_balance\": number or null}\n\n")

	b.WriteString("Each element of \"transactions\" must have these fields:\n")
	b.WriteString("- \"date\": string, ISO format \"YYYY-MM-DD\"\n")
	b.WriteString("- \"description\": string, the transaction history text\n")
	b.WriteString("- \"debit\": number (money OUT, 0 if none)\n")
	b.WriteString("- \"credit\": number (money IN, 0 if none)\n")
	b.WriteString("- \"company_name\": string, counterparty name or \"\"\n")
	b.WriteString("- \"cnpj\": string, counterparty CNPJ digits if visible, else \"\"\n")
	b.WriteString("- \"category\": string (one of the categories below)\n")
	b.WriteString("- \"is_unusual\": boolean, true if the transaction looks anomalous for this account\n")
	b.WriteString("- \"unusual_reason\": string, why it is unusual, \"\" when is_unusual is false\n\n")

	b.WriteString(categoriesPrompt())

	b.WriteString("\nRules:\n")
	b.WriteString("- A transaction is either a debit or a credit, never both; set the other to 0.\n")
	b.WriteString("- \"final_balance\" is the closing balance printed on the statement; null if absent.\n")
	b.WriteString("- Keep amounts as plain JSON numbers with a dot decimal separator.\n")
	b.WriteString("- If you are unsure of the category, use \"" + domain.CategoryUncategorized + "\".\n\n")
	b.WriteString("Return ONLY valid raw JSON.\n")
	b.WriteString("Do NOT wrap the response in code fences.\n")
	b.WriteString("Do NOT use ```json or any Markdown.\n")
	b.WriteString("Output must begin with \"{\" and end with \"}\".\n")

	return b.String()
}

// categoriesPrompt lists the fixed taxonomy for the model.
func categoriesPrompt() string {
	var b strings.Builder
	b.WriteString("Use ONLY the following categories (exact spelling):\n")
	for _, c := range domain.Categories {
		b.WriteString("  - " + c + "\n")
	}
	return b.String()
}
