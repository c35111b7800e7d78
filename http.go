package landmark

import (
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
)

const (
	statusSuccess = "success"
	statusFail    = "fail"
	statusError   = "error"
)

// SuccessEnvelope is the body shape of every 2xx response.
type SuccessEnvelope struct {
	Status  string `json:"status"`
	Token   string `json:"token,omitempty"`
	Results *int   `json:"results,omitempty"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// FailureEnvelope is the body shape of every non-2xx response. Status is
// "fail" for client errors and "error" for server errors.
type FailureEnvelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func respond(c *fiber.Ctx, code int, env SuccessEnvelope) error {
	env.Status = statusSuccess
	return c.Status(code).JSON(env)
}

// RespondData writes a success envelope with a data payload.
func RespondData(c *fiber.Ctx, code int, data any) error {
	return respond(c, code, SuccessEnvelope{Data: data})
}

// RespondCollection writes a success envelope carrying a result count
// alongside the data.
func RespondCollection(c *fiber.Ctx, code int, count int, data any) error {
	return respond(c, code, SuccessEnvelope{Results: &count, Data: data})
}

// RespondToken writes a success envelope carrying a session token plus data.
func RespondToken(c *fiber.Ctx, code int, token string, data any) error {
	return respond(c, code, SuccessEnvelope{Token: token, Data: data})
}

// RespondMessage writes a success envelope with only a human message.
func RespondMessage(c *fiber.Ctx, code int, message string) error {
	return respond(c, code, SuccessEnvelope{Message: message})
}

// NewAppErrorHandler builds the fiber ErrorHandler every route error funnels
// through. Structured errors carry their own HTTP status in Code; anything
// else is treated as an internal error. Internal messages are suppressed
// unless debug is on.
func NewAppErrorHandler(logger Logger, debug bool) fiber.ErrorHandler {
	if logger == nil {
		logger = defLogger{}
	}

	return func(c *fiber.Ctx, err error) error {
		var richErr *errors.Error
		if !errors.As(err, &richErr) {
			if fiberErr, ok := err.(*fiber.Error); ok {
				richErr = errors.New(fiberErr.Message, errors.CategoryBadInput).
					WithCode(fiberErr.Code)
			} else {
				richErr = errors.Wrap(err, errors.CategoryInternal, "an unexpected error occurred").
					WithCode(errors.CodeInternal)
			}
		}

		code := richErr.Code
		if code < fiber.StatusBadRequest {
			code = errors.CodeInternal
		}

		status := statusFail
		message := richErr.Message
		if code >= fiber.StatusInternalServerError {
			status = statusError
			logger.Error(
				"request failed: %s category=%s details=%s",
				richErr.Message, richErr.Category, print.MaybePrettyJSON(richErr.Metadata),
			)
			if !debug {
				message = "something went very wrong"
			}
		} else {
			logger.Debug("request rejected: %s code=%d text_code=%s", richErr.Message, code, richErr.TextCode)
		}

		return c.Status(code).JSON(FailureEnvelope{
			Status:  status,
			Message: message,
		})
	}
}
