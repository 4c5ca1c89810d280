package sqlite

// Schema creates the ledger tables. A book holds at most one posted opening balance. Amounts are integer minor units.
const Schema = `
CREATE TABLE IF NOT EXISTS ledger_transactions (
	id TEXT PRIMARY KEY,
	ledger_number TEXT NOT NULL UNIQUE,
	transaction_date TEXT NOT NULL,
	reference_type TEXT NOT NULL,
	status TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS ledger_lines (
	transaction_id TEXT NOT NULL REFERENCES ledger_transactions(id),
	line_no INTEGER NOT NULL,
	account_id INTEGER NOT NULL,
	debit INTEGER NOT NULL DEFAULT 0,
	credit INTEGER NOT NULL DEFAULT 0,
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
