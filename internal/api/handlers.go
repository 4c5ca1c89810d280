package api

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/cleared-dev/erpledger/internal/ledger"
	"github.com/cleared-dev/erpledger/internal/model"
	"github.com/cleared-dev/erpledger/internal/money"
	"github.com/cleared-dev/erpledger/internal/posting"
)

const dateLayout = "2006-01-02"

// actorHeader names the caller in the audit log.
const actorHeader = "X-Actor"

type lineRequest struct {
	AccountID   int          `json:"accountId" validate:"required,gt=0"`
	Debit       money.Amount `json:"debit"`
	Credit      money.Amount `json:"credit"`
	Description string       `json:"description" validate:"max=500"`
	Reference   string       `json:"reference" validate:"max=100"`
}

type validateRequest struct {
	Lines []lineRequest `json:"lines" validate:"dive"`
}

type postRequest struct {
	Date          string        `json:"date" validate:"required,datetime=2006-01-02"`
	ReferenceType string        `json:"referenceType" validate:"omitempty,oneof=journal adjustment closing"`
	Description   string        `json:"description" validate:"max=500"`
	Draft         bool          `json:"draft"`
	Lines         []lineRequest `json:"lines" validate:"required,min=1,dive"`
}

type openingBalanceRequest struct {
	Date  string        `json:"date" validate:"required,datetime=2006-01-02"`
	Draft bool          `json:"draft"`
	Lines []lineRequest `json:"lines" validate:"required,min=1,dive"`
}

// ValidateResponse is returned by POST /v1/ledger/validate.
type ValidateResponse struct {
	ledger.Result
	Issues []ledger.Issue `json:"issues"`
}

// PostResponse is returned when a transaction is saved.
type PostResponse struct {
	Transaction model.LedgerTransaction `json:"transaction"`
	Result      ledger.Result           `json:"result"`
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "available"})
}

func (s *Server) validateLines(c *fiber.Ctx) error {
	var req validateRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	result, issues := s.posting.Check(toLines(req.Lines))
	if issues == nil {
		issues = []ledger.Issue{}
	}
	return c.JSON(ValidateResponse{Result: result, Issues: issues})
}

func (s *Server) postTransaction(c *fiber.Ctx) error {
	var req postRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		return err
	}
	tx, result, err := s.posting.Post(c.UserContext(), posting.Request{
		Date:          date,
		ReferenceType: model.ReferenceType(req.ReferenceType),
		Description:   req.Description,
		Lines:         toLines(req.Lines),
		Draft:         req.Draft,
		Actor:         actor(c),
	})
	return s.posted(c, tx, result, err)
}

func (s *Server) postOpeningBalance(c *fiber.Ctx) error {
	var req openingBalanceRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		return err
	}
	tx, result, err := s.posting.OpeningBalance(c.UserContext(), date, toLines(req.Lines), req.Draft, actor(c))
	return s.posted(c, tx, result, err)
}

func (s *Server) posted(c *fiber.Ctx, tx model.LedgerTransaction, result ledger.Result, err error) error {
	if errors.Is(err, posting.ErrUnbalanced) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{
			Code:    CodeUnbalanced,
			Title:   "Transaction not balanced",
			Message: err.Error(),
			Result:  &result,
		})
	}
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(PostResponse{Transaction: tx, Result: result})
}

func (s *Server) generalLedger(c *fiber.Ctx) error {
	from, err := parseDate("from", c.Query("from"))
	if err != nil {
		return err
	}
	to, err := parseDate("to", c.Query("to"))
	if err != nil {
		return err
	}
	agg, err := s.reporting.GeneralLedger(c.UserContext(), from, to)
	if err != nil {
		return err
	}
	return c.JSON(agg)
}

func (s *Server) balanceSheet(c *fiber.Ctx) error {
	asOf, err := s.asOf(c)
	if err != nil {
		return err
	}
	snap, err := s.reporting.BalanceSheet(c.UserContext(), asOf)
	if err != nil {
		return err
	}
	return c.JSON(snap)
}

func (s *Server) trialBalance(c *fiber.Ctx) error {
	asOf, err := s.asOf(c)
	if err != nil {
		return err
	}
	tb, err := s.reporting.TrialBalance(c.UserContext(), asOf)
	if err != nil {
		return err
	}
	return c.JSON(tb)
}

func (s *Server) accountStatement(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id <= 0 {
		return &inputError{msg: "account id must be a positive integer: " + strconv.Quote(c.Params("id"))}
	}
	from, err := parseDate("from", c.Query("from"))
	if err != nil {
		return err
	}
	to, err := parseDate("to", c.Query("to"))
	if err != nil {
		return err
	}
	st, err := s.reporting.AccountStatement(c.UserContext(), id, from, to)
	if err != nil {
		return err
	}
	return c.JSON(st)
}

// bind decodes the JSON body into v and validates it.
func (s *Server) bind(c *fiber.Ctx, v any) error {
	if err := c.App().Config().JSONDecoder(c.Body(), v); err != nil {
		if errors.Is(err, money.ErrInvalidAmount) {
			return err
		}
		return &inputError{msg: "malformed JSON body", err: err}
	}
	return validateStruct(v)
}

// asOf reads the asOf query parameter, defaulting to today.
func (s *Server) asOf(c *fiber.Ctx) (time.Time, error) {
	if c.Query("asOf") == "" {
		return s.now(), nil
	}
	return parseDate("asOf", c.Query("asOf"))
}

func parseDate(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, &inputError{msg: name + " must be formatted YYYY-MM-DD", err: err}
	}
	return t, nil
}

func toLines(in []lineRequest) []model.LedgerLine {
	out := make([]model.LedgerLine, len(in))
	for i, l := range in {
		out[i] = model.LedgerLine{
			AccountID:   l.AccountID,
			Debit:       l.Debit,
			Credit:      l.Credit,
			Description: l.Description,
			Reference:   l.Reference,
		}
	}
	return out
}

func actor(c *fiber.Ctx) string {
	if a := c.Get(actorHeader); a != "" {
		return a
	}
	return "api"
}
