package app

import (
	"encoding/json"
	"errors"
	"math"
	"storefront/domain"
	"storefront/pkg/httperror"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// validateRequest runs struct tag validation on a request and maps failures to a 400.
func validateRequest(req any, action string) error {
	if err := domain.Validator().Struct(req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			return validationFailed(action, domain.FieldErrors(ve))
		}

		return httperror.InternalServerError(
			action+".validation_error",
			"An unexpected validation error occurred",
			nil,
		)
	}
	return nil
}

func validationFailed(action string, fields map[string]string) error {
	return httperror.BadRequest(
		action+".validation_failed",
		"Validation failed for the request",
		fields,
	)
}

// mergeValidation folds a model validation error into fields, keeping messages already recorded.
func mergeValidation(fields map[string]string, err error) error {
	if err == nil {
		return nil
	}

	var ve domain.ValidationError
	if !errors.As(err, &ve) {
		return err
	}

	for field, msg := range ve.Fields {
		if _, exists := fields[field]; !exists {
			fields[field] = msg
		}
	}
	return nil
}

// parsePrice accepts whole numbers of cents only.
func parsePrice(n json.Number) (int64, bool) {
	if n == "" {
		return 0, true
	}
	price, err := strconv.ParseInt(string(n), 10, 64)
	if err != nil {
		return 0, false
	}
	return price, true
}

func pagination(page, pageSize int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	pageSize = min(pageSize, 100)
	// keeps the offset from overflowing
	page = min(page, math.MaxInt/pageSize)

	return page, pageSize, (page - 1) * pageSize
}
