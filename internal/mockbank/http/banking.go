package http

import (
	"errors"
	"net/http"

	"github.com/ledgerlane/comdirect/internal/mockbank/domain"
	"github.com/ledgerlane/comdirect/internal/mockbank/service"
	"github.com/ledgerlane/comdirect/internal/mockbank/store"
	"github.com/ledgerlane/comdirect/pkg/httpx"
	"github.com/ledgerlane/comdirect/pkg/slogx"
)

// Banking payloads follow the real API's shapes: amounts are decimal
// strings with a currency unit, listings come in a "values" envelope.

type amountValue struct {
	Value string `json:"value"`
	Unit  string `json:"unit"`
}

type keyText struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

type accountInfo struct {
	AccountID        string  `json:"accountId"`
	AccountDisplayID string  `json:"accountDisplayId"`
	IBAN             string  `json:"iban"`
	Currency         string  `json:"currency"`
	AccountType      keyText `json:"accountType"`
}

type accountBalance struct {
	AccountID           string      `json:"accountId"`
	Account             accountInfo `json:"account"`
	Balance             amountValue `json:"balance"`
	AvailableCashAmount amountValue `json:"availableCashAmount"`
}

type partyName struct {
	HolderName string `json:"holderName"`
}

type transaction struct {
	Reference       string      `json:"reference"`
	BookingStatus   string      `json:"bookingStatus"`
	BookingDate     string      `json:"bookingDate"`
	Amount          amountValue `json:"amount"`
	Remitter        *partyName  `json:"remitter"`
	Creditor        *partyName  `json:"creditor"`
	TransactionType keyText     `json:"transactionType"`
	RemittanceInfo  string      `json:"remittanceInfo"`
}

type valuesEnvelope[T any] struct {
	Values []T `json:"values"`
}

// BankingHandler serves the two read endpoints the SDK exposes.
type BankingHandler struct {
	BankingService *service.BankingService
}

func (h *BankingHandler) HandleBalances(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accounts, err := h.BankingService.Balances(ctx)
	if err != nil {
		slogx.FromContext(ctx).Error("balances read failed", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	values := make([]accountBalance, 0, len(accounts))
	for _, a := range accounts {
		values = append(values, toBalance(a))
	}
	httpx.WriteJSON(w, http.StatusOK, valuesEnvelope[accountBalance]{Values: values})
}

func (h *BankingHandler) HandleTransactions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	txns, err := h.BankingService.Transactions(ctx,
		r.PathValue("id"), r.URL.Query().Get("transactionState"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidBookingStatus):
			writeError(w, http.StatusUnprocessableEntity, "invalid_transaction_state")
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "account_not_found")
		default:
			slogx.FromContext(ctx).Error("transactions read failed", "err", err)
			writeError(w, http.StatusInternalServerError, "server_error")
		}
		return
	}

	values := make([]transaction, 0, len(txns))
	for _, t := range txns {
		values = append(values, toTransaction(t))
	}
	httpx.WriteJSON(w, http.StatusOK, valuesEnvelope[transaction]{Values: values})
}

func toBalance(a domain.Account) accountBalance {
	return accountBalance{
		AccountID: a.ID,
		Account: accountInfo{
			AccountID:        a.ID,
			AccountDisplayID: a.ID,
			Currency:         a.BalanceUnit,
			AccountType:      keyText{Key: "CA", Text: "Girokonto"},
		},
		Balance:             amountValue{Value: a.BalanceValue, Unit: a.BalanceUnit},
		AvailableCashAmount: amountValue{Value: a.AvailableValue, Unit: a.BalanceUnit},
	}
}

func toTransaction(t domain.Transaction) transaction {
	out := transaction{
		Reference:       t.Reference,
		BookingStatus:   t.BookingStatus,
		BookingDate:     t.BookingDate,
		Amount:          amountValue{Value: t.AmountValue, Unit: t.AmountUnit},
		TransactionType: keyText{Key: t.TransactionType, Text: t.TransactionType},
		RemittanceInfo:  t.RemittanceInfo,
	}
	if t.Remitter != "" {
		out.Remitter = &partyName{HolderName: t.Remitter}
	}
	if t.Creditor != "" {
		out.Creditor = &partyName{HolderName: t.Creditor}
	}
	return out
}
