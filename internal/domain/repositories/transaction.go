package repositories

import "context"

// TxFn runs inside a transaction; repositories pick it up from ctx
type TxFn func(ctx context.Context) error

// TransactionManager groups a snapshot write and its move-log record
type TransactionManager interface {
	ExecTx(ctx context.Context, fn TxFn) error
}
