// Package validation holds the input schemas of the order desk and the
// validator engine that checks them.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/erp/orderdesk/internal/domain/catalog"
	"github.com/erp/orderdesk/internal/domain/identity"
	"github.com/erp/orderdesk/internal/domain/partner"
	"github.com/erp/orderdesk/internal/domain/shared"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// TagName is the struct tag the schemas are declared with
const TagName = "validate"

var (
	engine     *validator.Validate
	engineOnce sync.Once
)

// Engine returns the shared validator instance with the custom rules registered
func Engine() *validator.Validate {
	engineOnce.Do(func() {
		engine = validator.New(validator.WithRequiredStructEnabled())
		Register(engine)
	})
	return engine
}

// Register configures v the way the schemas expect: JSON field names in
// error paths, the validate tag, the sku/phone/postal/password rules and
// the stock transfer cross-check.
// The HTTP layer calls it on gin's binding engine.
func Register(v *validator.Validate) {
	v.SetTagName(TagName)
	v.RegisterTagNameFunc(jsonFieldName)
	// Registration only fails for empty tags or nil funcs
	_ = v.RegisterValidation("sku", validateSKU)
	_ = v.RegisterValidation("phone", validatePhone)
	_ = v.RegisterValidation("postal", validatePostal)
	_ = v.RegisterValidation("password", validatePassword)
	v.RegisterStructValidation(validateStockTransfer, StockTransferForm{})
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
	}
	return name
}

// SKUs are compared upper-cased, so "bolt-m8" passes
func validateSKU(fl validator.FieldLevel) bool {
	return catalog.SKUPattern.MatchString(strings.ToUpper(strings.TrimSpace(fl.Field().String())))
}

func validatePhone(fl validator.FieldLevel) bool {
	return partner.PhonePattern.MatchString(fl.Field().String())
}

func validatePostal(fl validator.FieldLevel) bool {
	return partner.PostalPattern.MatchString(fl.Field().String())
}

func validatePassword(fl validator.FieldLevel) bool {
	return identity.HasLetterAndDigit(fl.Field().String())
}

// nefield compares arrays by length, so uuid.UUID needs its own check
func validateStockTransfer(sl validator.StructLevel) {
	form := sl.Current().Interface().(StockTransferForm)
	if form.FromWarehouseID != uuid.Nil && form.FromWarehouseID == form.ToWarehouseID {
		sl.ReportError(form.ToWarehouseID, "to_warehouse_id", "ToWarehouseID", "nefield", "FromWarehouseID")
	}
}

// Validate checks form and returns field -> message. The result is empty
// when the form is valid.
func Validate(form any) shared.FieldErrors {
	errs := shared.FieldErrors{}
	err := Engine().Struct(form)
	if err == nil {
		return errs
	}
	if fe, ok := Translate(err); ok {
		return fe
	}
	errs.Add("", err.Error())
	return errs
}

// Check is Validate returning an error, nil when the form is valid
func Check(form any) error {
	return Validate(form).Err()
}

// Translate converts validator errors into field messages. It reports false
// for errors that did not come from the validator.
func Translate(err error) (shared.FieldErrors, bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, false
	}
	errs := shared.FieldErrors{}
	for _, fe := range verrs {
		errs.Add(FieldPath(fe), Message(fe))
	}
	return errs, true
}

// FieldPath returns the JSON path of the failing field, e.g.
// "lines[0].quantity". The root struct and embedded structs keep their Go
// names in the namespace and are dropped.
func FieldPath(fe validator.FieldError) string {
	parts := strings.Split(fe.Namespace(), ".")
	kept := parts[:0]
	for _, p := range parts {
		if p != "" && unicode.IsUpper([]rune(p)[0]) {
			continue
		}
		kept = append(kept, p)
	}
	if len(kept) == 0 {
		return fe.Field()
	}
	return strings.Join(kept, ".")
}

// fieldPhrases names the hidden fields cross-field rules compare against
var fieldPhrases = map[string]string{
	"Password":        "password",
	"Remainder":       "the remaining quantity",
	"Available":       "the available stock",
	"FromWarehouseID": "the source warehouse",
}

func phrase(param string) string {
	if p, ok := fieldPhrases[param]; ok {
		return p
	}
	return strings.ToLower(param)
}

// Message returns the user-facing text for one failed rule
func Message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Must be at least %s characters", fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("Must contain at least %s item(s)", fe.Param())
		}
		return fmt.Sprintf("Must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Must be at most %s characters", fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("Must contain at most %s item(s)", fe.Param())
		}
		return fmt.Sprintf("Must be at most %s", fe.Param())
	case "len":
		return fmt.Sprintf("Must be exactly %s characters", fe.Param())
	case "uuid":
		return "Invalid UUID format"
	case "oneof":
		return fmt.Sprintf("Must be one of: %s", fe.Param())
	case "gte":
		return fmt.Sprintf("Must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("Must be less than or equal to %s", fe.Param())
	case "gt":
		return fmt.Sprintf("Must be greater than %s", fe.Param())
	case "lt":
		return fmt.Sprintf("Must be less than %s", fe.Param())
	case "url":
		return "Invalid URL format"
	case "numeric":
		return "Must be numeric"
	case "alphanum":
		return "Must be alphanumeric"
	case "alpha":
		return "Must contain only letters"
	case "eqfield":
		return fmt.Sprintf("Must match %s", phrase(fe.Param()))
	case "nefield":
		return fmt.Sprintf("Must differ from %s", phrase(fe.Param()))
	case "ltefield":
		return fmt.Sprintf("Must not exceed %s", phrase(fe.Param()))
	case "datetime":
		return "Must be a date in YYYY-MM-DD format"
	case "sku":
		return "SKU must be 3-32 letters, digits or hyphens"
	case "phone":
		return "Invalid phone number"
	case "postal":
		return "Postal code must look like 123-4567"
	case "password":
		return "Must contain at least one letter and one number"
	default:
		return "Invalid value"
	}
}
