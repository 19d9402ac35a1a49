package simpletxmanager

import (
	"context"
	"database/sql"

	"github.com/m04kA/HPS-BookingService/pkg/dbmetrics"
	"github.com/m04kA/HPS-BookingService/pkg/txmanager"
)

// TransactionManager менеджер транзакций поверх обычного *sql.DB
// (вариант без метрик; семантика идентична pkg/txmanager)
type TransactionManager struct {
	inner *txmanager.TransactionManager
}

// NewTransactionManager создает менеджер транзакций для *sql.DB
func NewTransactionManager(db *sql.DB) *TransactionManager {
	return &TransactionManager{
		inner: txmanager.NewTransactionManager(&sqlBeginner{db: db}),
	}
}

// Do выполняет fn в транзакции с уровнем изоляции по умолчанию
func (m *TransactionManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.inner.Do(ctx, fn)
}

// DoReadOnly выполняет fn в read-only транзакции
func (m *TransactionManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.inner.DoReadOnly(ctx, fn)
}

// DoSerializable выполняет fn в SERIALIZABLE транзакции с одним повтором
// при конфликте сериализации
func (m *TransactionManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.inner.DoSerializable(ctx, fn)
}

// sqlBeginner адаптер *sql.DB под интерфейс txmanager.TxBeginner
type sqlBeginner struct {
	db *sql.DB
}

func (b *sqlBeginner) BeginTx(ctx context.Context, opts *sql.TxOptions) (dbmetrics.TxExecutor, error) {
	tx, err := b.db.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &dbmetrics.SqlTxWrapper{Tx: tx}, nil
}
