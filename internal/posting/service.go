// Package posting turns validated ledger lines into numbered, stored
// transactions and announces them.
package posting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cleared-dev/erpledger/internal/auditlog"
	"github.com/cleared-dev/erpledger/internal/events"
	"github.com/cleared-dev/erpledger/internal/gitops"
	"github.com/cleared-dev/erpledger/internal/id"
	"github.com/cleared-dev/erpledger/internal/ledger"
	"github.com/cleared-dev/erpledger/internal/model"
	"github.com/cleared-dev/erpledger/internal/storage"
)

var (
	// ErrUnbalanced is returned when a non-draft transaction's debits and credits differ.
	ErrUnbalanced = errors.New("transaction is not balanced")
	// ErrOpeningBalanceExists is returned for a second posted opening balance.
	ErrOpeningBalanceExists = errors.New("opening balance already posted")
	// ErrInvalidRequest covers malformed requests: no date, no lines, bad reference type.
	ErrInvalidRequest = errors.New("invalid posting request")
)

// maxNumberAttempts bounds retries when another writer takes the same ledger number.
const maxNumberAttempts = 3

// LineError reports line-level problems found before saving.
type LineError struct {
	Issues []ledger.Issue
}

func (e *LineError) Error() string {
	msgs := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		msgs[i] = issue.Error()
	}
	return "invalid lines: " + strings.Join(msgs, "; ")
}

// Is makes errors.Is(err, ErrInvalidRequest) hold for line errors.
func (e *LineError) Is(target error) bool {
	return target == ErrInvalidRequest
}

// Request describes a transaction to post.
type Request struct {
	Date          time.Time
	ReferenceType model.ReferenceType // defaults to journal
	Description   string
	Lines         []model.LedgerLine
	Draft         bool
	Actor         string // recorded in the audit log
}

// Options wires the optional collaborators of a Service.
type Options struct {
	Audit     *auditlog.Log    // nil disables the audit log
	Publisher events.Publisher // nil means events.Nop
	GitDir    string           // commit the book here after each save when it is a git repo
	GitAuthor gitops.Author
	Logger    *zap.Logger
	Now       func() time.Time
}

// Service posts transactions to a LedgerStore.
type Service struct {
	store    storage.LedgerStore
	accounts ledger.AccountChecker
	opts     Options

	// mu serializes number allocation within this process.
	mu sync.Mutex
}

// New returns a Service. accounts may be nil to skip the chart check.
func New(store storage.LedgerStore, accounts ledger.AccountChecker, opts Options) *Service {
	if opts.Publisher == nil {
		opts.Publisher = events.Nop{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{store: store, accounts: accounts, opts: opts}
}

// Check validates lines without saving anything. Issues are data, not errors.
func (s *Service) Check(lines []model.LedgerLine) (ledger.Result, []ledger.Issue) {
	return ledger.Validate(lines), ledger.CheckLines(lines, s.accounts)
}

// Post validates req, assigns an ID and the next ledger number, and saves it.
// The balance result is returned even when the post is refused with ErrUnbalanced.
// Opening balances go through OpeningBalance.
func (s *Service) Post(ctx context.Context, req Request) (model.LedgerTransaction, ledger.Result, error) {
	if req.ReferenceType == model.RefOpeningBalance {
		return model.LedgerTransaction{}, ledger.Result{}, fmt.Errorf("%w: reference type %s is reserved for opening balance posts", ErrInvalidRequest, req.ReferenceType)
	}
	return s.post(ctx, req)
}

// OpeningBalance posts lines as the book's opening balance on asOf. Only one
// posted opening balance may exist; drafts are not limited.
func (s *Service) OpeningBalance(ctx context.Context, asOf time.Time, lines []model.LedgerLine, draft bool, actor string) (model.LedgerTransaction, ledger.Result, error) {
	return s.post(ctx, Request{
		Date:          asOf,
		ReferenceType: model.RefOpeningBalance,
		Description:   "Opening balance as of " + asOf.Format("2006-01-02"),
		Lines:         lines,
		Draft:         draft,
		Actor:         actor,
	})
}

func (s *Service) post(ctx context.Context, req Request) (model.LedgerTransaction, ledger.Result, error) {
	if req.ReferenceType == "" {
		req.ReferenceType = model.RefJournal
	}
	if !req.ReferenceType.Valid() {
		return model.LedgerTransaction{}, ledger.Result{}, fmt.Errorf("%w: unknown reference type %q", ErrInvalidRequest, req.ReferenceType)
	}
	if req.Date.IsZero() {
		return model.LedgerTransaction{}, ledger.Result{}, fmt.Errorf("%w: date is required", ErrInvalidRequest)
	}
	if len(req.Lines) == 0 {
		return model.LedgerTransaction{}, ledger.Result{}, fmt.Errorf("%w: at least one line is required", ErrInvalidRequest)
	}

	result, issues := s.Check(req.Lines)
	if len(issues) > 0 {
		return model.LedgerTransaction{}, result, &LineError{Issues: issues}
	}
	if !req.Draft && !result.IsBalanced {
		return model.LedgerTransaction{}, result, fmt.Errorf("%w: debits %s, credits %s, difference %s",
			ErrUnbalanced, result.TotalDebit, result.TotalCredit, result.Difference)
	}

	status := model.StatusPosted
	if req.Draft {
		status = model.StatusDraft
	}
	tx := model.LedgerTransaction{
		ID:              id.NewTransactionID(),
		TransactionDate: storage.DateOnly(req.Date),
		ReferenceType:   req.ReferenceType,
		Status:          status,
		Description:     req.Description,
		Lines:           append([]model.LedgerLine(nil), req.Lines...),
	}

	if err := s.save(ctx, &tx); err != nil {
		return model.LedgerTransaction{}, result, err
	}

	log := s.opts.Logger.With(
		zap.String("ledger_number", tx.LedgerNumber),
		zap.String("status", string(tx.Status)),
	)
	log.Info("transaction saved",
		zap.Stringer("total_debit", result.TotalDebit),
		zap.Stringer("total_credit", result.TotalCredit),
	)

	hash := s.commit(ctx, tx, log)
	s.audit(req, tx, result, hash, log)

	if err := s.opts.Publisher.PublishLedgerPosted(ctx, events.NewLedgerPosted(tx, s.opts.Now())); err != nil {
		log.Warn("publishing ledger event failed", zap.Error(err))
	}
	return tx, result, nil
}

// save numbers and stores tx. The opening balance check runs under the same
// lock so two posts in this process cannot both pass it; the SQL stores back
// it with a unique index across processes.
func (s *Service) save(ctx context.Context, tx *model.LedgerTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tx.ReferenceType == model.RefOpeningBalance && tx.Status == model.StatusPosted {
		existing, err := s.store.ListTransactions(ctx, storage.Filter{
			Status:        model.StatusPosted,
			ReferenceType: model.RefOpeningBalance,
		})
		if err != nil {
			return fmt.Errorf("checking opening balance: %w", err)
		}
		if len(existing) > 0 {
			return fmt.Errorf("%w: %s", ErrOpeningBalanceExists, existing[0].LedgerNumber)
		}
	}

	prefix := tx.ReferenceType.NumberPrefix()
	year, month := tx.TransactionDate.Year(), int(tx.TransactionDate.Month())

	var err error
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		var seq int
		seq, err = s.store.NextSequence(ctx, prefix, year, month)
		if err != nil {
			return fmt.Errorf("allocating ledger number: %w", err)
		}
		tx.LedgerNumber = id.FormatLedgerNumber(prefix, year, month, seq)

		err = s.store.SaveTransaction(ctx, *tx)
		if !errors.Is(err, storage.ErrDuplicateLedgerNumber) {
			break
		}
		s.opts.Logger.Debug("ledger number taken, retrying", zap.String("ledger_number", tx.LedgerNumber))
	}
	if errors.Is(err, storage.ErrDuplicateOpeningBalance) {
		return fmt.Errorf("%w: %v", ErrOpeningBalanceExists, err)
	}
	if err != nil {
		return fmt.Errorf("saving %s: %w", tx.LedgerNumber, err)
	}
	return nil
}

func (s *Service) commit(ctx context.Context, tx model.LedgerTransaction, log *zap.Logger) string {
	if s.opts.GitDir == "" || !gitops.IsRepo(s.opts.GitDir) {
		return ""
	}
	msg := fmt.Sprintf("%s: %s %s", tx.ReferenceType, tx.LedgerNumber, tx.Description)
	hash, err := gitops.CommitAll(ctx, s.opts.GitDir, strings.TrimSpace(msg), s.opts.GitAuthor)
	if err != nil && !errors.Is(err, gitops.ErrNothingToCommit) {
		log.Warn("committing book failed", zap.Error(err))
	}
	return hash
}

func (s *Service) audit(req Request, tx model.LedgerTransaction, r ledger.Result, hash string, log *zap.Logger) {
	if s.opts.Audit == nil {
		return
	}
	action := auditlog.ActionPost
	switch {
	case tx.Status == model.StatusDraft:
		action = auditlog.ActionDraft
	case tx.ReferenceType == model.RefOpeningBalance:
		action = auditlog.ActionOpeningBalance
	}
	actor := req.Actor
	if actor == "" {
		actor = "erpledger"
	}
	err := s.opts.Audit.Append(auditlog.Entry{
		Timestamp:    s.opts.Now(),
		Actor:        actor,
		Action:       action,
		Details:      fmt.Sprintf("%d lines, debit %s, credit %s", len(tx.Lines), r.TotalDebit, r.TotalCredit),
		LedgerNumber: tx.LedgerNumber,
		CommitHash:   hash,
	})
	if err != nil {
		log.Warn("writing audit log failed", zap.Error(err))
	}
}
