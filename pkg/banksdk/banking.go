package banksdk

import (
	"context"
	"net/url"
)

const balancesPath = "/api/banking/clients/user/v2/accounts/balances"

// AmountValue is a monetary amount as the bank reports it: a decimal
// string plus a currency unit.
type AmountValue struct {
	Value string `json:"value"`
	Unit  string `json:"unit"`
}

// KeyText is the bank's enumeration wrapper (machine key + display text).
type KeyText struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

// AccountInfo identifies one account.
type AccountInfo struct {
	AccountID        string  `json:"accountId"`
	AccountDisplayID string  `json:"accountDisplayId"`
	IBAN             string  `json:"iban"`
	Currency         string  `json:"currency"`
	AccountType      KeyText `json:"accountType"`
}

// AccountBalance is one entry of the balances listing.
type AccountBalance struct {
	AccountID           string      `json:"accountId"`
	Account             AccountInfo `json:"account"`
	Balance             AmountValue `json:"balance"`
	AvailableCashAmount AmountValue `json:"availableCashAmount"`
}

// PartyName names a counterparty of a transaction.
type PartyName struct {
	HolderName string `json:"holderName"`
}

// Transaction is one entry of an account's transaction listing.
type Transaction struct {
	Reference       string      `json:"reference"`
	BookingStatus   string      `json:"bookingStatus"`
	BookingDate     string      `json:"bookingDate"`
	Amount          AmountValue `json:"amount"`
	Remitter        *PartyName  `json:"remitter"`
	Creditor        *PartyName  `json:"creditor"`
	TransactionType KeyText     `json:"transactionType"`
	RemittanceInfo  string      `json:"remittanceInfo"`
}

// AccountBalances lists balances for all accounts of the authenticated
// user.
func (c *Client) AccountBalances(ctx context.Context) ([]AccountBalance, error) {
	var envelope struct {
		Values []AccountBalance `json:"values"`
	}
	if err := c.getJSON(ctx, balancesPath, &envelope); err != nil {
		return nil, err
	}
	return envelope.Values, nil
}

// AccountTransactions lists transactions for one account. An unknown
// account ID surfaces as ErrAccountNotFound.
func (c *Client) AccountTransactions(ctx context.Context, accountID string) ([]Transaction, error) {
	path := "/api/banking/v1/accounts/" + url.PathEscape(accountID) + "/transactions"

	var envelope struct {
		Values []Transaction `json:"values"`
	}
	if err := c.getJSON(ctx, path, &envelope); err != nil {
		return nil, err
	}
	return envelope.Values, nil
}
