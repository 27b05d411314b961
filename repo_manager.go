package auth

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	repository.Validator
	repository.TransactionManager
	MustValidate()
	Migrate(ctx context.Context) error
	Accounts() Accounts
	// AccountsTx binds an Accounts store to tx
	AccountsTx(tx bun.IDB) Accounts
}

type mngr struct {
	db       *bun.DB
	hasher   PasswordHasher
	accounts *accounts
}

func NewRepositoryManager(db *bun.DB, hasher PasswordHasher, opts ...AccountsOption) RepositoryManager {
	m := &mngr{
		db:     db,
		hasher: hasher,
	}
	if db != nil && hasher != nil {
		m.accounts = newAccounts(db, hasher, opts...)
	}
	return m
}

func (m mngr) Validate() error {
	if m.db == nil {
		return errors.New("repository manager requires a database")
	}

	if m.hasher == nil {
		return errors.New("repository manager requires a password hasher")
	}

	if m.accounts == nil {
		return errors.New("repository accounts should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

// Migrate creates the accounts table and its unique email index
func (m mngr) Migrate(ctx context.Context) error {
	return m.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewCreateTable().
			Model((*Account)(nil)).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return err
		}

		_, err = tx.NewCreateIndex().
			Model((*Account)(nil)).
			Index("accounts_email_key").
			Column("email").
			Unique().
			IfNotExists().
			Exec(ctx)
		return err
	})
}

func (m mngr) Accounts() Accounts {
	if m.accounts == nil {
		return nil
	}
	return m.accounts
}

func (m mngr) AccountsTx(tx bun.IDB) Accounts {
	if m.accounts == nil {
		return nil
	}
	return m.accounts.withTx(tx)
}
