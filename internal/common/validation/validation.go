package validation

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldsError lists the fields that failed their tags, by their json or
// form name.
type FieldsError struct {
	Fields []string
}

func (e *FieldsError) Error() string {
	return "invalid fields: " + strings.Join(e.Fields, ", ")
}

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(fieldName)
	return &Validator{validate: v}
}

// Struct checks s against its `validate` tags. Any failure comes back as a
// *FieldsError; a non-struct argument is returned as is.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	sort.Strings(fields)
	return &FieldsError{Fields: fields}
}

func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "schema"} {
		name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}
