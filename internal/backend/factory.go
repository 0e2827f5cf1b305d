package backend

import (
	"context"
	"fmt"
	"log/slog"

	"dairyledger/internal/core"
	"dairyledger/internal/store/file"
	"dairyledger/internal/store/memory"
	"dairyledger/internal/store/remote"
	"dairyledger/internal/store/sqlite"
)

// DefaultFactory implements the Factory interface.
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory.
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateBackend implements Factory.CreateBackend.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case MemoryBackend:
		return f.createMemoryBackend()
	case FileBackend:
		return f.createFileBackend(config)
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case RemoteBackend:
		return f.createRemoteBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createMemoryBackend() (*Result, error) {
	f.logger.Info("Initialized memory backend")

	return &Result{
		Expenses: memory.New(core.SeedExpenses()),
		Income:   memory.New(nil),
		Cleanup:  nil,
	}, nil
}

func (f *DefaultFactory) createFileBackend(config Config) (*Result, error) {
	expenses, err := file.New(config.DataDirectory, core.KindExpense)
	if err != nil {
		return nil, fmt.Errorf("initialize expense file store: %w", err)
	}
	income, err := file.New(config.DataDirectory, core.KindIncome)
	if err != nil {
		return nil, fmt.Errorf("initialize income file store: %w", err)
	}

	f.logger.Info("Initialized file backend", "data_directory", config.DataDirectory)

	return &Result{
		Expenses: expenses,
		Income:   income,
		Cleanup:  nil,
	}, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*Result, error) {
	repo, err := sqlite.NewRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("initialize sqlite repository: %w", err)
	}

	f.logger.Info("Initialized sqlite backend", "db_path", config.SQLiteDBPath)

	return &Result{
		Expenses: repo.Records(core.KindExpense),
		Income:   repo.Records(core.KindIncome),
		Cleanup:  repo.Close,
	}, nil
}

func (f *DefaultFactory) createRemoteBackend(config Config) (*Result, error) {
	expenses := remote.New(config.RemoteBaseURL, core.KindExpense, config.RemoteAccessKey, nil)
	income := remote.New(config.RemoteBaseURL, core.KindIncome, config.RemoteAccessKey, nil)

	f.logger.Info("Initialized remote backend", "base_url", config.RemoteBaseURL)

	return &Result{
		Expenses: expenses,
		Income:   income,
		Cleanup:  nil,
	}, nil
}
