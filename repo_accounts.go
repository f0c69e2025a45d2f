package credentials

import (
	"context"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Accounts is the persistence surface for credential accounts. It
// satisfies AccountStore and exposes transactional variants for callers
// that compose operations inside a bun transaction.
type Accounts interface {
	AccountStore

	FindByEmailTx(ctx context.Context, tx bun.IDB, email string) (*Account, error)
	FindByUsernameTx(ctx context.Context, tx bun.IDB, username string) (*Account, error)
	FindByVerificationCodeTx(ctx context.Context, tx bun.IDB, code string) (*Account, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *Account) (*Account, error)
	UpdateTx(ctx context.Context, tx bun.IDB, record *Account) (*Account, error)
}

type accounts struct {
	repo repository.Repository[*Account]
	db   *bun.DB
}

var (
	_ Accounts     = (*accounts)(nil)
	_ AccountStore = (*accounts)(nil)
)

// NewAccountsRepository builds the bun backed account store.
func NewAccountsRepository(db *bun.DB) Accounts {
	repo := repository.NewRepository[*Account](db, repository.ModelHandlers[*Account]{
		NewRecord: func() *Account { return &Account{} },
		GetID: func(a *Account) uuid.UUID {
			if a == nil {
				return uuid.Nil
			}
			return a.ID
		},
		SetID: func(a *Account, id uuid.UUID) {
			if a != nil {
				a.ID = id
			}
		},
	})

	return &accounts{
		repo: repo,
		db:   db,
	}
}

func (a *accounts) FindByEmail(ctx context.Context, email string) (*Account, error) {
	return a.FindByEmailTx(ctx, a.db, email)
}

func (a *accounts) FindByEmailTx(ctx context.Context, tx bun.IDB, email string) (*Account, error) {
	return a.findByColumnTx(ctx, tx, "email", strings.TrimSpace(strings.ToLower(email)))
}

func (a *accounts) FindByUsername(ctx context.Context, username string) (*Account, error) {
	return a.FindByUsernameTx(ctx, a.db, username)
}

func (a *accounts) FindByUsernameTx(ctx context.Context, tx bun.IDB, username string) (*Account, error) {
	return a.findByColumnTx(ctx, tx, "username", strings.TrimSpace(username))
}

func (a *accounts) FindByVerificationCode(ctx context.Context, code string) (*Account, error) {
	return a.FindByVerificationCodeTx(ctx, a.db, code)
}

func (a *accounts) FindByVerificationCodeTx(ctx context.Context, tx bun.IDB, code string) (*Account, error) {
	return a.findByColumnTx(ctx, tx, "verification_code", code)
}

func (a *accounts) findByColumnTx(ctx context.Context, tx bun.IDB, column, value string) (*Account, error) {
	record := &Account{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias."+column+" = ?", value).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					column: value,
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *accounts) Create(ctx context.Context, record *Account) (*Account, error) {
	return a.CreateTx(ctx, a.db, record)
}

func (a *accounts) CreateTx(ctx context.Context, tx bun.IDB, record *Account) (*Account, error) {
	prepareAccountDefaults(record)

	created, err := a.repo.CreateTx(ctx, tx, record)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateAccount.WithMetadata(map[string]any{
				"email":    record.Email,
				"username": record.Username,
			})
		}
		return nil, err
	}

	return created, nil
}

func (a *accounts) Update(ctx context.Context, record *Account) (*Account, error) {
	return a.UpdateTx(ctx, a.db, record)
}

func (a *accounts) UpdateTx(ctx context.Context, tx bun.IDB, record *Account) (*Account, error) {
	if record == nil || record.ID == uuid.Nil {
		return nil, goerrors.New("cannot update account without id", goerrors.CategoryValidation)
	}

	// NOTE: verification fields must be reset to NULL when cleared, so we
	// update every column instead of going through the repository helper
	// which skips zero values.
	now := time.Now()
	record.UpdatedAt = &now

	res, err := tx.NewUpdate().
		Model(record).
		WherePK().
		Where("?TableAlias.deleted_at IS NULL").
		Exec(ctx)
	if err != nil {
		return nil, err
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": record.ID.String(),
			})
	}

	return record, nil
}

func prepareAccountDefaults(record *Account) {
	if record == nil {
		return
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}

// isUniqueViolation matches driver specific unique constraint errors for
// the dialects we support, sqlite and postgres.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint") ||
		strings.Contains(msg, "SQLSTATE 23505")
}
