package sqlite

import (
	"context"

	"github.com/ledgerlane/comdirect/internal/mockbank/domain"
)

type accountsRepo struct {
	h dbtx
}

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) error {
	_, err := r.h.ExecContext(ctx, `
		INSERT INTO accounts (id, holder_name, balance_value, balance_unit, available_value)
		VALUES (?, ?, ?, ?, ?)`,
		a.ID, a.HolderName, a.BalanceValue, a.BalanceUnit, a.AvailableValue,
	)
	return err
}

func (r *accountsRepo) CreateTransaction(ctx context.Context, t domain.Transaction) error {
	_, err := r.h.ExecContext(ctx, `
		INSERT INTO transactions (
			id, account_id, reference, booking_status, booking_date,
			amount_value, amount_unit, remitter, creditor, transaction_type, remittance_info
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.AccountID, t.Reference, t.BookingStatus, t.BookingDate,
		t.AmountValue, t.AmountUnit, t.Remitter, t.Creditor, t.TransactionType, t.RemittanceInfo,
	)
	return err
}

func (r *accountsRepo) GetAccount(ctx context.Context, id string) (domain.Account, error) {
	row := r.h.QueryRowContext(ctx, `
		SELECT id, holder_name, balance_value, balance_unit, available_value
		FROM accounts WHERE id = ?`, id)

	var a domain.Account
	if err := row.Scan(&a.ID, &a.HolderName, &a.BalanceValue, &a.BalanceUnit, &a.AvailableValue); err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return a, nil
}

func (r *accountsRepo) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	rows, err := r.h.QueryContext(ctx, `
		SELECT id, holder_name, balance_value, balance_unit, available_value
		FROM accounts ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		var a domain.Account
		if err := rows.Scan(&a.ID, &a.HolderName, &a.BalanceValue, &a.BalanceUnit, &a.AvailableValue); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *accountsRepo) ListTransactions(ctx context.Context, accountID string) ([]domain.Transaction, error) {
	rows, err := r.h.QueryContext(ctx, `
		SELECT id, account_id, reference, booking_status, booking_date,
		       amount_value, amount_unit, remitter, creditor, transaction_type, remittance_info
		FROM transactions WHERE account_id = ?
		ORDER BY booking_date DESC, id DESC`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(
			&t.ID, &t.AccountID, &t.Reference, &t.BookingStatus, &t.BookingDate,
			&t.AmountValue, &t.AmountUnit, &t.Remitter, &t.Creditor, &t.TransactionType, &t.RemittanceInfo,
		); err != nil {
			return nil, err
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

func (r *accountsRepo) IsEmpty(ctx context.Context) (bool, error) {
	var count int
	if err := r.h.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&count); err != nil {
		return false, err
	}
	return count == 0, nil
}
