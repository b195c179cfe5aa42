package service

import (
	"context"

	"github.com/ledgerlane/comdirect/internal/mockbank/domain"
	"github.com/ledgerlane/comdirect/internal/mockbank/store"
)

// Booking-status filter values accepted by the transactions endpoint.
const (
	BookingStatusBooked    = "BOOKED"
	BookingStatusNotBooked = "NOTBOOKED"
	BookingStatusBoth      = "BOTH"
)

// BankingService reads the seeded account fixtures.
type BankingService struct {
	Store store.Store
}

// Balances returns every account with its balance.
func (s *BankingService) Balances(ctx context.Context) ([]domain.Account, error) {
	return s.Store.Accounts().ListAccounts(ctx)
}

// Transactions returns an account's transactions, optionally filtered by
// booking status. An empty filter means BOTH.
func (s *BankingService) Transactions(ctx context.Context, accountID, bookingStatus string) ([]domain.Transaction, error) {
	switch bookingStatus {
	case "", BookingStatusBoth:
		bookingStatus = ""
	case BookingStatusBooked, BookingStatusNotBooked:
	default:
		return nil, ErrInvalidBookingStatus
	}

	if _, err := s.Store.Accounts().GetAccount(ctx, accountID); err != nil {
		return nil, err
	}

	txns, err := s.Store.Accounts().ListTransactions(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if bookingStatus == "" {
		return txns, nil
	}

	filtered := txns[:0]
	for _, t := range txns {
		if t.BookingStatus == bookingStatus {
			filtered = append(filtered, t)
		}
	}
	return filtered, nil
}
