package auth

import (
	"context"
	"database/sql"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const passwordHashColumn = "password_hash"

type findOptions struct {
	includeSecret bool
}

// FindOption changes the projection returned by the store
type FindOption func(*findOptions)

// IncludeSecret loads password_hash, which is excluded by default
func IncludeSecret() FindOption {
	return func(o *findOptions) {
		o.includeSecret = true
	}
}

type accounts struct {
	repository.Repository[*Account]
	db        bun.IDB
	hasher    PasswordHasher
	useHashid bool
	logger    Logger
	now       func() time.Time
}

var _ Accounts = (*accounts)(nil)

type AccountsOption func(*accounts)

// WithHashidIDs derives account IDs from the email instead of random UUIDs
func WithHashidIDs(enabled bool) AccountsOption {
	return func(a *accounts) {
		a.useHashid = enabled
	}
}

func WithAccountsLogger(l Logger) AccountsOption {
	return func(a *accounts) {
		a.logger = resolveLogger(l)
	}
}

// NewAccountsRepositoryHandlers resolves IDs and looks accounts up by email
func NewAccountsRepositoryHandlers() repository.ModelHandlers[*Account] {
	return repository.ModelHandlers[*Account]{
		NewRecord: func() *Account {
			return &Account{}
		},
		GetID: func(record *Account) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *Account, id uuid.UUID) {
			if record != nil {
				record.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	}
}

// NewAccountsRepository returns an Accounts store on top of go-repository-bun.
// Uniqueness of email is enforced by the accounts table, see RepositoryManager.Migrate.
func NewAccountsRepository(db *bun.DB, hasher PasswordHasher, opts ...AccountsOption) Accounts {
	return newAccounts(db, hasher, opts...)
}

func newAccounts(db *bun.DB, hasher PasswordHasher, opts ...AccountsOption) *accounts {
	repo := &accounts{
		Repository: repository.NewRepository[*Account](db, NewAccountsRepositoryHandlers()),
		db:         db,
		hasher:     hasher,
		logger:     defLogger{},
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(repo)
		}
	}
	return repo
}

// withTx shares the repository and binds every query to tx
func (a *accounts) withTx(tx bun.IDB) *accounts {
	clone := *a
	clone.db = tx
	return &clone
}

// secretCriteria drops password_hash unless IncludeSecret was passed
func secretCriteria(opts []FindOption) []repository.SelectCriteria {
	o := &findOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if o.includeSecret {
		return nil
	}
	return []repository.SelectCriteria{
		func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.ExcludeColumn(passwordHashColumn)
		},
	}
}

func (a *accounts) FindByEmail(ctx context.Context, email string, opts ...FindOption) (*Account, error) {
	record, err := a.Repository.GetByIdentifierTx(ctx, a.db, email, secretCriteria(opts)...)
	return a.found(record, err, map[string]any{"email": email})
}

func (a *accounts) FindByID(ctx context.Context, id uuid.UUID, opts ...FindOption) (*Account, error) {
	record, err := a.Repository.GetByIDTx(ctx, a.db, id.String(), secretCriteria(opts)...)
	return a.found(record, err, map[string]any{"id": id.String()})
}

func (a *accounts) found(record *Account, err error, meta map[string]any) (*Account, error) {
	if err != nil {
		if isRecordNotFound(err) {
			return nil, ErrAccountNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve account").
			WithMetadata(meta)
	}
	if record == nil {
		return nil, ErrAccountNotFound
	}
	return record, nil
}

func (a *accounts) Create(ctx context.Context, email, password string) (*Account, error) {
	// best effort, the unique index on email is the actual guard
	if _, err := a.FindByEmail(ctx, email); err == nil {
		return nil, ErrDuplicateAccount
	} else if !IsAccountNotFound(err) {
		return nil, err
	}

	record := &Account{Email: email}
	if _, err := record.SetPassword(a.hasher, password); err != nil {
		return nil, err
	}

	record.ID = a.newID(email)
	record.CreatedAt = a.now()
	record.UpdatedAt = record.CreatedAt

	created, err := a.Repository.CreateTx(ctx, a.db, record)
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, ErrDuplicateAccount
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to create account")
	}
	if created == nil {
		created = record
	}

	a.logger.Debug("account created", "id", created.ID.String())

	return created, nil
}

func (a *accounts) SetPassword(ctx context.Context, id uuid.UUID, password string) (*Account, error) {
	record, err := a.FindByID(ctx, id, IncludeSecret())
	if err != nil {
		return nil, err
	}

	changed, err := record.SetPassword(a.hasher, password)
	if err != nil {
		return nil, err
	}

	if !changed {
		return record, nil
	}

	record.UpdatedAt = a.now()

	updated, err := a.Repository.UpdateTx(ctx, a.db, record, repository.UpdateByID(id.String()))
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to update account password").
			WithMetadata(map[string]any{"id": id.String()})
	}
	if updated == nil {
		updated = record
	}

	return updated, nil
}

// ListAccountsSQL selects every account without the password hash
var ListAccountsSQL = `SELECT "acc"."id", "acc"."email", "acc"."created_at", "acc"."updated_at"
FROM "accounts" AS "acc"
ORDER BY "acc"."created_at" ASC, "acc"."email" ASC;`

func (a *accounts) List(ctx context.Context) ([]*Account, error) {
	records, err := a.Repository.RawTx(ctx, a.db, ListAccountsSQL)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to list accounts")
	}
	if records == nil {
		records = make([]*Account, 0)
	}
	return records, nil
}

func (a *accounts) newID(email string) uuid.UUID {
	if a.useHashid {
		if id, err := hashid.NewUUID(email); err == nil {
			return id
		}
	}
	return uuid.New()
}

func isRecordNotFound(err error) bool {
	return repository.IsRecordNotFound(err) || errors.Is(err, sql.ErrNoRows)
}
