package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
)

// ErrorItem is one entry of the error response body
type ErrorItem struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// ErrorResponse is the only shape used for failed requests
type ErrorResponse struct {
	Errors []ErrorItem `json:"errors"`
}

// ErrorHandler translates every error reaching fiber into an ErrorResponse.
// Server side failures are logged in full and sent with a generic message.
func ErrorHandler(logger Logger) fiber.ErrorHandler {
	logger = resolveLogger(logger)
	return func(c *fiber.Ctx, err error) error {
		status, body := TranslateError(err)

		if status >= http.StatusInternalServerError {
			logger.Error(
				"unhandled request error",
				"method", c.Method(),
				"path", c.Path(),
				"error", err,
				"details", print.MaybePrettyJSON(errorDetails(err)),
			)
		} else {
			logger.Debug("request rejected", "path", c.Path(), "status", status, "error", err)
		}

		return c.Status(status).JSON(body)
	}
}

// TranslateError maps err to a status code and a client safe body
func TranslateError(err error) (int, ErrorResponse) {
	if fields, ok := ValidationErrorsFrom(err); ok {
		items := make([]ErrorItem, 0, len(fields))
		for _, fe := range fields {
			items = append(items, ErrorItem{Message: fe.Message, Field: fe.Field})
		}
		return http.StatusBadRequest, ErrorResponse{Errors: items}
	}

	var richErr *errors.Error
	if errors.As(err, &richErr) {
		status := statusFromError(richErr)
		if status >= http.StatusInternalServerError {
			return status, unhandledResponse()
		}
		return status, ErrorResponse{Errors: []ErrorItem{{Message: richErr.Message}}}
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		if fiberErr.Code == fiber.StatusNotFound {
			return fiberErr.Code, ErrorResponse{Errors: []ErrorItem{{Message: MessageRouteNotFound}}}
		}
		if fiberErr.Code >= http.StatusInternalServerError {
			return fiberErr.Code, unhandledResponse()
		}
		return fiberErr.Code, ErrorResponse{Errors: []ErrorItem{{Message: fiberErr.Message}}}
	}

	return http.StatusInternalServerError, unhandledResponse()
}

func statusFromError(richErr *errors.Error) int {
	if richErr.Code >= 400 && richErr.Code < 600 {
		return richErr.Code
	}

	switch richErr.Category {
	case errors.CategoryValidation, errors.CategoryBadInput:
		return http.StatusBadRequest
	case errors.CategoryAuth:
		return http.StatusUnauthorized
	case errors.CategoryAuthz:
		return http.StatusForbidden
	case errors.CategoryNotFound:
		return http.StatusNotFound
	case errors.CategoryConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func unhandledResponse() ErrorResponse {
	return ErrorResponse{Errors: []ErrorItem{{Message: MessageUnhandled}}}
}

func errorDetails(err error) map[string]any {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return map[string]any{"error": err.Error()}
	}
	return map[string]any{
		"message":   richErr.Message,
		"category":  richErr.Category,
		"text_code": richErr.TextCode,
		"metadata":  richErr.Metadata,
	}
}

// NotFoundHandler is mounted last, after every route
func NotFoundHandler(c *fiber.Ctx) error {
	return ErrRouteNotFound
}
