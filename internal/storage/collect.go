package storage

import "github.com/cleared-dev/erpledger/internal/model"

// Collector rebuilds transactions from joined header/line rows, keeping the
// order in which headers first appear.
type Collector struct {
	txs   []model.LedgerTransaction
	index map[string]int
}

// NewCollector returns an empty Collector.
func NewCollector() *Collector {
	return &Collector{index: make(map[string]int)}
}

// Add records a header row and, when line is non-nil, appends the line to it.
func (c *Collector) Add(tx model.LedgerTransaction, line *model.LedgerLine) {
	i, ok := c.index[tx.ID]
	if !ok {
		tx.Lines = []model.LedgerLine{}
		c.txs = append(c.txs, tx)
		i = len(c.txs) - 1
		c.index[tx.ID] = i
	}
	if line != nil {
		c.txs[i].Lines = append(c.txs[i].Lines, *line)
	}
}

// Transactions returns the collected transactions.
func (c *Collector) Transactions() []model.LedgerTransaction {
	return c.txs
}
