package repo

import (
	"context"
	"database/sql"
	"errors"
)

// Postgres implementa o livro-razão de ativos em banco
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNotFound          = errors.New("not found")
)

// Balance retorna o saldo de um ativo na conta; conta sem linha tem saldo zero
func (p *Postgres) Balance(ctx context.Context, account, asset string) (int64, error) {
	var bal int64
	err := p.db.QueryRowContext(ctx,
		`SELECT balance FROM treasury_accounts WHERE account=$1 AND asset=$2`,
		account, asset).Scan(&bal)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return bal, nil
}

// Deposit credita (emite) um ativo na conta, criando a linha se não existir
// Garante idempotência por ref no journal
func (p *Postgres) Deposit(ctx context.Context, account, asset string, amount int64, ref string) (newBalance int64, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	// 1) Idempotência: ref já aplicado não credita de novo
	if ref != "" {
		applied, aerr := refApplied(ctx, tx, ref)
		if aerr != nil {
			return 0, aerr
		}
		if applied {
			if err = tx.QueryRowContext(ctx,
				`SELECT balance FROM treasury_accounts WHERE account=$1 AND asset=$2`,
				account, asset).Scan(&newBalance); err != nil {
				return 0, err
			}
			return newBalance, tx.Commit()
		}
	}

	// 2) Upsert da conta com o crédito
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO treasury_accounts(account, asset, balance, version) VALUES($1,$2,$3,1)
		ON CONFLICT (account, asset)
		DO UPDATE SET balance = treasury_accounts.balance + EXCLUDED.balance, version = treasury_accounts.version + 1`,
		account, asset, amount); err != nil {
		return 0, err
	}

	// 3) Registra a emissão no journal
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO treasury_journal(ref, operation_type, from_account, to_account, asset, amount) VALUES($1,'MINT','',$2,$3,$4)`,
		ref, account, asset, amount); err != nil {
		return 0, err
	}

	if err = tx.QueryRowContext(ctx,
		`SELECT balance FROM treasury_accounts WHERE account=$1 AND asset=$2`,
		account, asset).Scan(&newBalance); err != nil {
		return 0, err
	}

	return newBalance, tx.Commit()
}

// Transfer move um ativo entre contas com lock pessimista na conta de origem
// Garante idempotência por ref: repetir a mesma transferência não aplica de novo
func (p *Postgres) Transfer(ctx context.Context, from, to, asset string, amount int64, ref string) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// 1) Lock pessimista na origem; origem sem linha não tem o que debitar
	var balance int64
	err = tx.QueryRowContext(ctx,
		`SELECT balance FROM treasury_accounts WHERE account=$1 AND asset=$2 FOR UPDATE`,
		from, asset).Scan(&balance)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	// 2) Idempotência: ref já aplicado (o lock na origem serializa refs repetidos)
	if ref != "" {
		applied, aerr := refApplied(ctx, tx, ref)
		if aerr != nil {
			return aerr
		}
		if applied {
			return tx.Commit()
		}
	}

	if balance < amount {
		return ErrInsufficientFunds
	}

	// 3) Débito na origem e crédito no destino (upsert)
	if _, err = tx.ExecContext(ctx,
		`UPDATE treasury_accounts SET balance = balance - $1, version = version + 1 WHERE account=$2 AND asset=$3`,
		amount, from, asset); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO treasury_accounts(account, asset, balance, version) VALUES($1,$2,$3,1)
		ON CONFLICT (account, asset)
		DO UPDATE SET balance = treasury_accounts.balance + EXCLUDED.balance, version = treasury_accounts.version + 1`,
		to, asset, amount); err != nil {
		return err
	}

	// 4) Journal da operação
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO treasury_journal(ref, operation_type, from_account, to_account, asset, amount) VALUES($1,'TRANSFER',$2,$3,$4,$5)`,
		ref, from, to, asset, amount); err != nil {
		return err
	}

	return tx.Commit()
}

// refApplied verifica no journal se um ref de operação já foi aplicado
func refApplied(ctx context.Context, tx *sql.Tx, ref string) (bool, error) {
	var id int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM treasury_journal WHERE ref=$1`, ref).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
