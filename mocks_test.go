package auth_test

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	auth "github.com/goliatone/go-authsvc"
)

// MockAccounts implements auth.Accounts
type MockAccounts struct {
	mock.Mock
}

func (m *MockAccounts) FindByEmail(ctx context.Context, email string, opts ...auth.FindOption) (*auth.Account, error) {
	args := m.Called(ctx, email)
	if v := args.Get(0); v != nil {
		return v.(*auth.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccounts) FindByID(ctx context.Context, id uuid.UUID, opts ...auth.FindOption) (*auth.Account, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*auth.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccounts) Create(ctx context.Context, email, password string) (*auth.Account, error) {
	args := m.Called(ctx, email, password)
	if v := args.Get(0); v != nil {
		return v.(*auth.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccounts) SetPassword(ctx context.Context, id uuid.UUID, password string) (*auth.Account, error) {
	args := m.Called(ctx, id, password)
	if v := args.Get(0); v != nil {
		return v.(*auth.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccounts) List(ctx context.Context) ([]*auth.Account, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]*auth.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

type logEntry struct {
	Level string
	Msg   string
	Args  []any
}

// recordingLogger keeps every entry so tests can assert on what was logged
type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *recordingLogger) add(level, msg string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{Level: level, Msg: msg, Args: args})
}

func (l *recordingLogger) Debug(msg string, args ...any) { l.add("debug", msg, args) }
func (l *recordingLogger) Info(msg string, args ...any)  { l.add("info", msg, args) }
func (l *recordingLogger) Warn(msg string, args ...any)  { l.add("warn", msg, args) }
func (l *recordingLogger) Error(msg string, args ...any) { l.add("error", msg, args) }

func (l *recordingLogger) Entries(level string) []logEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := []logEntry{}
	for _, e := range l.entries {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}
