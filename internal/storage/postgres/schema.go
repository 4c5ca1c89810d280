package postgres

// Schema creates the ledger tables. A book holds at most one posted opening balance. Amounts are BIGINT minor units.
const Schema = `
CREATE TABLE IF NOT EXISTS ledger_transactions (
	id TEXT PRIMARY KEY,
	ledger_number TEXT NOT NULL UNIQUE,
	transaction_date DATE NOT NULL,
	reference_type TEXT NOT NULL,
	status TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS ledger_lines (
	transaction_id TEXT NOT NULL REFERENCES ledger_transactions(id) ON DELETE CASCADE,
	line_no INTEGER NOT NULL,
	account_id INTEGER NOT NULL,
	debit BIGINT NOT NULL DEFAULT 0 CHECK (debit >= 0),
	credit BIGINT NOT NULL DEFAULT 0 CHECK (credit >= 0),
	description TEXT NOT NULL DEFAULT '',
	reference TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (transaction_id, line_no)
);

CREATE INDEX IF NOT EXISTS idx_ledger_transactions_date ON ledger_transactions(transaction_date);
CREATE INDEX IF NOT EXISTS idx_ledger_lines_account ON ledger_lines(account_id);

CREATE UNIQUE INDEX IF NOT EXISTS idx_ledger_transactions_one_opening_balance
	ON ledger_transactions(reference_type)
	WHERE reference_type = 'opening_balance' AND status = 'posted';
`
