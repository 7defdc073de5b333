package db

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

type txKey struct{}

type txState struct {
	tx          *gorm.DB
	afterCommit []func()
}

// Transactor はユースケース単位のトランザクションを開始し、context 経由で各リポジトリに渡します。
type Transactor struct {
	db *gorm.DB
}

func NewTransactor(db *gorm.DB) *Transactor {
	return &Transactor{db: db}
}

// WithinTx は読み書きトランザクション内で fn を実行します。
// 既にトランザクション中の context が渡された場合はそれに参加します。
func (t *Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return t.within(ctx, nil, fn)
}

// WithinReadOnlyTx は読み取り専用トランザクション内で fn を実行します。
func (t *Transactor) WithinReadOnlyTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return t.within(ctx, &sql.TxOptions{ReadOnly: true}, fn)
}

func (t *Transactor) within(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*txState); ok {
		return fn(ctx)
	}

	st := &txState{}
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		st.tx = tx
		return fn(context.WithValue(ctx, txKey{}, st))
	}, opts)
	if err != nil {
		return err
	}
	for _, f := range st.afterCommit {
		f()
	}
	return nil
}

// Conn は context にトランザクションがあればそれを、なければ fallback を返します。
func Conn(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if st, ok := ctx.Value(txKey{}).(*txState); ok {
		return st.tx
	}
	return fallback.WithContext(ctx)
}

// AfterCommit は fn をコミット成功後に実行するよう登録します。
// トランザクション外で呼ばれた場合は即座に実行します。ロールバック時は実行されません。
func AfterCommit(ctx context.Context, fn func()) {
	if st, ok := ctx.Value(txKey{}).(*txState); ok {
		st.afterCommit = append(st.afterCommit, fn)
		return
	}
	fn()
}
