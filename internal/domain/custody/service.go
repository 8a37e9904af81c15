package custody

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rpggio/grantflow/internal/domain/grant"
	"github.com/rpggio/grantflow/internal/repository"
	"github.com/rs/zerolog"
)

// Service is the built-in custody book. It implements Gateway.
type Service struct {
	repo   Repository
	tx     repository.Transactor
	logger zerolog.Logger
}

// NewService creates a new custody service.
func NewService(repo Repository, tx repository.Transactor, logger zerolog.Logger) *Service {
	return &Service{repo: repo, tx: tx, logger: logger}
}

// Transfer debits req.From and credits req.To in one unit of work.
func (s *Service) Transfer(ctx context.Context, req TransferRequest) error {
	if req.Amount == 0 || blank(req.From) || blank(req.To) || blank(req.Mint) || req.From == req.To {
		return ErrInvalidTransfer
	}
	if req.Authority != req.From {
		return ErrUnauthorizedTransfer
	}

	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		from, err := s.repo.Get(ctx, req.From, req.Mint)
		if err != nil {
			return fmt.Errorf("loading source account: %w", err)
		}
		if from.Balance < req.Amount {
			return ErrInsufficientFunds
		}
		from.Balance -= req.Amount
		if err := s.credit(ctx, req.To, req.Mint, req.Amount); err != nil {
			return err
		}
		from.UpdatedAt = time.Now().UTC()
		if err := s.repo.Put(ctx, from); err != nil {
			return fmt.Errorf("saving source account: %w", err)
		}
		s.logger.Debug().
			Str("from", req.From).
			Str("to", req.To).
			Str("mint", req.Mint).
			Uint64("amount", req.Amount).
			Msg("custody transfer")
		return nil
	})
}

// Deposit credits owner with amount of mint. It is the only way tokens enter the book.
func (s *Service) Deposit(ctx context.Context, owner, mint string, amount uint64) (*Account, error) {
	if amount == 0 || blank(owner) || blank(mint) {
		return nil, ErrInvalidTransfer
	}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		return s.credit(ctx, owner, mint, amount)
	})
	if err != nil {
		return nil, err
	}
	return s.Balance(ctx, owner, mint)
}

// Balance returns the account of owner for mint.
func (s *Service) Balance(ctx context.Context, owner, mint string) (*Account, error) {
	if blank(owner) || blank(mint) {
		return nil, ErrInvalidTransfer
	}
	acct, err := s.repo.Get(ctx, owner, mint)
	if err != nil {
		return nil, fmt.Errorf("getting account: %w", err)
	}
	return acct, nil
}

func (s *Service) credit(ctx context.Context, owner, mint string, amount uint64) error {
	acct, err := s.repo.Get(ctx, owner, mint)
	if err != nil {
		return fmt.Errorf("loading account: %w", err)
	}
	balance, ok := grant.CheckedAdd(acct.Balance, amount)
	if !ok {
		return ErrBalanceOverflow
	}
	acct.Balance = balance
	acct.UpdatedAt = time.Now().UTC()
	if err := s.repo.Put(ctx, acct); err != nil {
		return fmt.Errorf("saving account: %w", err)
	}
	return nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
