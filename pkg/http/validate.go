package http

import (
	"errors"
	"fmt"
	"strings"

	"FxPilot/internal/domain/models"
	"FxPilot/pkg/validation"

	"github.com/creasty/defaults"
	"github.com/labstack/echo/v4"
)

// ReadAndValidateRequest binds the request, applies `default` tags and runs
// the `validate` rules. It returns nil or a []ValidationError.
func ReadAndValidateRequest(c echo.Context, req interface{}) []ValidationError {
	if err := c.Bind(req); err != nil {
		return validatorDefaultRules(err)
	}
	if err := defaults.Set(req); err != nil {
		return validatorDefaultRules(err)
	}
	ferrs, err := validation.Struct(c.Request().Context(), req)
	if err != nil {
		return validatorDefaultRules(err)
	}
	if len(ferrs) == 0 {
		return nil
	}
	errs := make([]ValidationError, 0, len(ferrs))
	for _, fe := range ferrs {
		errs = append(errs, ValidationError{
			Code:    "ERR_" + strings.ToUpper(fe.Tag),
			Field:   fe.Field,
			Message: fe.Message,
			Params:  validation.Params(fe.Tag, fe.Param),
		})
	}
	return errs
}

// ViolationErrors renders a domain validation error in the API shape.
func ViolationErrors(verr *models.ValidationError) []ValidationError {
	errs := make([]ValidationError, 0, len(verr.Violations))
	for _, v := range verr.Violations {
		errs = append(errs, ValidationError{
			Code:    "ERR_" + strings.ToUpper(v.Rule),
			Field:   v.Field,
			Message: v.Message,
			Params:  validation.Params(v.Rule, v.Param),
		})
	}
	return errs
}

func validatorDefaultRules(err error) []ValidationError {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return []ValidationError{{
			Code:    "ERR_BIND",
			Message: fmt.Sprintf("%v", he.Message),
		}}
	}
	return []ValidationError{{
		Code:    "ERR_UNKNOWN",
		Message: err.Error(),
	}}
}
