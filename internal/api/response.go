package api

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/cleared-dev/erpledger/internal/ledger"
	"github.com/cleared-dev/erpledger/internal/money"
	"github.com/cleared-dev/erpledger/internal/posting"
	"github.com/cleared-dev/erpledger/internal/report"
	"github.com/cleared-dev/erpledger/internal/reporting"
)

// Error codes returned in ErrorResponse.Code.
const (
	CodeInvalidInput     = "invalid_input"
	CodeValidation       = "validation_error"
	CodeInvalidLines     = "invalid_lines"
	CodeUnbalanced       = "unbalanced"
	CodeConflict         = "opening_balance_exists"
	CodeNotFound         = "not_found"
	CodeUnclassified     = "unclassified_account"
	CodeInternal         = "internal_error"
	CodeRouteNotFound    = "route_not_found"
	CodeMethodNotAllowed = "method_not_allowed"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Title   string         `json:"title"`
	Message string         `json:"message"`
	Issues  []ledger.Issue `json:"issues,omitempty"`
	Result  *ledger.Result `json:"result,omitempty"`
}

func writeError(c *fiber.Ctx, status int, code, title, message string) error {
	return c.Status(status).JSON(ErrorResponse{Code: code, Title: title, Message: message})
}

// errorHandler maps domain errors to HTTP responses. Unknown errors become a
// generic 500 so internal details are not leaked.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var (
		fiberErr *fiber.Error
		lineErr  *posting.LineError
		inputErr *inputError
	)
	switch {
	case errors.As(err, &inputErr), errors.Is(err, money.ErrInvalidAmount):
		return writeError(c, fiber.StatusBadRequest, CodeInvalidInput, "Invalid input", err.Error())
	case errors.Is(err, errValidation):
		return writeError(c, fiber.StatusBadRequest, CodeValidation, "Validation failed", err.Error())
	case errors.Is(err, reporting.ErrInvalidRange):
		return writeError(c, fiber.StatusBadRequest, CodeInvalidInput, "Invalid date range", err.Error())
	case errors.As(err, &lineErr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{
			Code:    CodeInvalidLines,
			Title:   "Invalid ledger lines",
			Message: err.Error(),
			Issues:  lineErr.Issues,
		})
	case errors.Is(err, posting.ErrUnbalanced):
		return writeError(c, fiber.StatusUnprocessableEntity, CodeUnbalanced, "Transaction not balanced", err.Error())
	case errors.Is(err, posting.ErrInvalidRequest):
		return writeError(c, fiber.StatusUnprocessableEntity, CodeValidation, "Invalid posting request", err.Error())
	case errors.Is(err, posting.ErrOpeningBalanceExists):
		return writeError(c, fiber.StatusConflict, CodeConflict, "Opening balance exists", err.Error())
	case errors.Is(err, reporting.ErrUnknownAccount):
		return writeError(c, fiber.StatusNotFound, CodeNotFound, "Account not found", err.Error())
	case errors.Is(err, report.ErrUnclassifiedAccount):
		return writeError(c, fiber.StatusUnprocessableEntity, CodeUnclassified, "Unclassified account", err.Error())
	case errors.As(err, &fiberErr):
		code := CodeInvalidInput
		switch fiberErr.Code {
		case fiber.StatusNotFound:
			code = CodeRouteNotFound
		case fiber.StatusMethodNotAllowed:
			code = CodeMethodNotAllowed
		}
		return writeError(c, fiberErr.Code, code, fiberErr.Message, fiberErr.Message)
	}

	s.logger.Error("request failed",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err))
	return writeError(c, fiber.StatusInternalServerError, CodeInternal, "Internal error", "internal server error")
}

// inputError marks malformed request input (bad JSON, dates, IDs).
type inputError struct {
	msg string
	err error
}

func (e *inputError) Error() string {
	if e.err == nil {
		return e.msg
	}
	return fmt.Sprintf("%s: %v", e.msg, e.err)
}

func (e *inputError) Unwrap() error { return e.err }
