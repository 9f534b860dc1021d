package core

import (
	"reflect"
	"regexp"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/shopspring/decimal"
)

var (
	// custom validation tags & texts
	alphaNumUnderTag   = "alphanum_"
	alphaNumUnderText  = "only alphanumeric characters and underscores are allowed"
	alphaNumUnderRegex = regexp.MustCompile(`^[\w\s]+$`)

	decimal2Tag  = "decimal2"
	decimal2Text = "{0} must not have more than 2 decimal places"

	requiredTag     = "required"
	requiredWithTag = "required_with"
	requiredText    = "this field is required"
)

func init() {
	// decimals are rendered as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

// InitValidators instantiates the validator for use.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON (or query) tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" {
			name = fld.Tag.Get("query")
		}
		if name == "-" {
			return ""
		}
		return name
	})

	// validate value types by their underlying representation
	validate.RegisterCustomTypeFunc(validateDecimalValuer, decimal.Decimal{})
	validate.RegisterCustomTypeFunc(validateDateValuer, Date{})
	validate.RegisterCustomTypeFunc(validateAcademicYearValuer, AcademicYear{})

	// register custom validators
	_ = validate.RegisterValidation(alphaNumUnderTag, alphaNumUnderValidation)
	RegisterCustomTranslation(validate, translator, alphaNumUnderTag, alphaNumUnderText)

	_ = validate.RegisterValidation(decimal2Tag, decimal2Validation)
	RegisterCustomTranslation(validate, translator, decimal2Tag, decimal2Text)

	RegisterCustomTranslation(validate, translator, requiredTag, requiredText, true)
	RegisterCustomTranslation(validate, translator, requiredWithTag, requiredText, true)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Custom Type Funcs

func validateDecimalValuer(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		return d.InexactFloat64()
	}
	return nil
}

func validateDateValuer(field reflect.Value) interface{} {
	if d, ok := field.Interface().(Date); ok {
		return d.Time
	}
	return nil
}

func validateAcademicYearValuer(field reflect.Value) interface{} {
	if ay, ok := field.Interface().(AcademicYear); ok {
		return ay.String()
	}
	return nil
}

// Custom Global Validators

// alphaNumUnderValidation only allows alphanumeric characters and underscores.
func alphaNumUnderValidation(fl validator.FieldLevel) bool {
	return alphaNumUnderRegex.MatchString(fl.Field().String())
}

// decimal2Validation rejects decimals with more than 2 fractional digits.
// Decimals reach it as float64 through validateDecimalValuer.
func decimal2Validation(fl validator.FieldLevel) bool {
	var d decimal.Decimal
	switch v := fl.Field().Interface().(type) {
	case decimal.Decimal:
		d = v
	case float64:
		d = decimal.NewFromFloat(v)
	default:
		return false
	}
	return d.Round(2).Equal(d)
}
