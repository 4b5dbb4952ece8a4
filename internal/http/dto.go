package http

import (
	"time"

	"hearth/internal/core"
)

// JSON representations. Amounts travel as canonical two-decimal strings,
// months as "MM/YYYY", categories as their token form.

type connectionDTO struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	DisplayName    string `json:"display_name,omitempty"`
	CurrentBalance string `json:"current_balance"`
	OnBudget       bool   `json:"on_budget"`
	AccountType    string `json:"account_type,omitempty"`
	LastSyncedAt   string `json:"last_synced_at,omitempty"`
}

func toConnectionDTO(c core.Connection) connectionDTO {
	dto := connectionDTO{
		ID:             c.ID,
		Name:           c.Name,
		DisplayName:    c.DisplayName,
		CurrentBalance: core.FormatAmount(c.CurrentBalance),
		OnBudget:       c.OnBudget,
		AccountType:    c.AccountType,
	}
	if !c.LastSyncedAt.IsZero() {
		dto.LastSyncedAt = c.LastSyncedAt.UTC().Format(time.RFC3339)
	}
	return dto
}

type splitDTO struct {
	ID          string `json:"id,omitempty"`
	Label       string `json:"label,omitempty"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	Category    string `json:"category"`
	IncomeMonth string `json:"income_month,omitempty"`
}

type transactionDTO struct {
	ID           string     `json:"id"`
	ConnectionID string     `json:"connection_id"`
	Date         string     `json:"date"`
	Name         string     `json:"name"`
	Amount       string     `json:"amount"`
	Category     string     `json:"category,omitempty"`
	IncomeMonth  string     `json:"income_month,omitempty"`
	IsSplit      bool       `json:"is_split"`
	Splits       []splitDTO `json:"splits,omitempty"`
}

const dateLayout = "2006-01-02"

func toTransactionDTO(t core.Transaction) transactionDTO {
	dto := transactionDTO{
		ID:           t.ID,
		ConnectionID: t.ConnectionID,
		Date:         t.Date.Format(dateLayout),
		Name:         t.Name,
		Amount:       core.FormatAmount(t.Amount),
		Category:     t.Category.Token(),
		IsSplit:      t.IsSplit,
	}
	if !t.IncomeMonth.IsZero() {
		dto.IncomeMonth = t.IncomeMonth.String()
	}
	for _, sp := range t.Splits {
		spDTO := splitDTO{
			ID:       sp.ID,
			Label:    sp.Label,
			Amount:   core.FormatAmount(sp.Amount),
			Date:     sp.Date.Format(dateLayout),
			Category: sp.Category.Token(),
		}
		if !sp.IncomeMonth.IsZero() {
			spDTO.IncomeMonth = sp.IncomeMonth.String()
		}
		dto.Splits = append(dto.Splits, spDTO)
	}
	return dto
}

func toTransactionDTOs(txns []core.Transaction) []transactionDTO {
	dtos := make([]transactionDTO, 0, len(txns))
	for _, t := range txns {
		dtos = append(dtos, toTransactionDTO(t))
	}
	return dtos
}

type billDTO struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	ExpectedAmount string `json:"expected_amount"`
	Month          string `json:"month"`
	Paid           bool   `json:"paid"`
	PaidAmount     string `json:"paid_amount,omitempty"`
	PaidDate       string `json:"paid_date,omitempty"`
}

func toBillDTO(b core.Bill) billDTO {
	dto := billDTO{
		ID:             b.ID,
		Name:           b.Name,
		ExpectedAmount: core.FormatAmount(b.ExpectedAmount),
		Month:          b.Month.String(),
		Paid:           b.Paid(),
	}
	if b.HasPayment() {
		dto.PaidAmount = core.FormatAmount(b.PaidAmount)
		dto.PaidDate = b.PaidDate.Format(dateLayout)
	}
	return dto
}

func toBillDTOs(bills []core.Bill) []billDTO {
	dtos := make([]billDTO, 0, len(bills))
	for _, b := range bills {
		dtos = append(dtos, toBillDTO(b))
	}
	return dtos
}

type fundBalanceDTO struct {
	FundID   string `json:"fund_id"`
	Name     string `json:"name"`
	Position string `json:"position"`
	Visible  bool   `json:"visible"`
	Balance  string `json:"balance"`
}

func toFundBalanceDTOs(funds []core.FundBalance) []fundBalanceDTO {
	dtos := make([]fundBalanceDTO, 0, len(funds))
	for _, f := range funds {
		dtos = append(dtos, fundBalanceDTO{
			FundID:   f.FundID,
			Name:     f.Name,
			Position: f.Position,
			Visible:  f.Visible,
			Balance:  core.FormatAmount(f.Balance),
		})
	}
	return dtos
}

type summaryDTO struct {
	Month              string           `json:"month"`
	Income             string           `json:"income"`
	BillsExpectedTotal string           `json:"bills_expected_total"`
	BillsPaidTotal     string           `json:"bills_paid_total"`
	BillsPaidCount     int              `json:"bills_paid_count"`
	BillsTotalCount    int              `json:"bills_total_count"`
	EverythingElse     string           `json:"everything_else"`
	SavingsTarget      string           `json:"savings_target"`
	RemainingCash      string           `json:"remaining_cash"`
	TotalRemainingCash string           `json:"total_remaining_cash"`
	UncategorizedCount int              `json:"uncategorized_count"`
	Sealed             bool             `json:"sealed"`
	Bills              []billDTO        `json:"bills"`
	Funds              []fundBalanceDTO `json:"funds"`
}

func toSummaryDTO(s core.MonthSummary) summaryDTO {
	return summaryDTO{
		Month:              s.Month.String(),
		Income:             core.FormatAmount(s.Income),
		BillsExpectedTotal: core.FormatAmount(s.BillsExpectedTotal),
		BillsPaidTotal:     core.FormatAmount(s.BillsPaidTotal),
		BillsPaidCount:     s.BillsPaidCount,
		BillsTotalCount:    s.BillsTotalCount,
		EverythingElse:     core.FormatAmount(s.EverythingElse),
		SavingsTarget:      core.FormatAmount(s.SavingsTarget),
		RemainingCash:      core.FormatAmount(s.RemainingCash),
		TotalRemainingCash: core.FormatAmount(s.TotalRemainingCash),
		UncategorizedCount: s.UncategorizedCount,
		Sealed:             s.Sealed,
		Bills:              toBillDTOs(s.Bills),
		Funds:              toFundBalanceDTOs(s.Funds),
	}
}
