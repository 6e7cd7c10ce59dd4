package validation

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError is a transport-neutral view of one failed rule.
type FieldError struct {
	Field   string
	Tag     string
	Param   string
	Message string
}

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
}

// Validator returns the shared validator instance.
func Validator() *validator.Validate { return validate }

// Struct validates v and returns one FieldError per failed rule. A nil slice
// means v is valid. Errors that are not rule failures are returned as err.
func Struct(ctx context.Context, v interface{}) ([]FieldError, error) {
	err := validate.StructCtx(ctx, v)
	if err == nil {
		return nil, nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, err
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Message: Message(fe),
		})
	}
	return out, nil
}

// Message renders a human readable message for a failed rule.
func Message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		if fe.Type().Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Type().Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lt":
		return fmt.Sprintf("%s must be less than %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	case "ltfield":
		return fmt.Sprintf("%s must be less than %s", field, lowerFirst(fe.Param()))
	case "uppercase":
		return fmt.Sprintf("%s must be upper case", field)
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}

// Params returns the rule arguments keyed the way API clients expect them.
func Params(tag, param string) map[string]interface{} {
	params := make(map[string]interface{})
	switch tag {
	case "min", "gte":
		params["min"] = param
	case "max", "lte":
		params["max"] = param
	case "gt", "lt", "ltfield":
		params["value"] = param
	case "oneof":
		params["options"] = strings.Split(param, " ")
	}
	return params
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
