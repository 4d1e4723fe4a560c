package middleware

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	// D-M-YYYY, non-zero-padded day and month.
	slotDatePattern = regexp.MustCompile(`^[1-9][0-9]?-[1-9][0-9]?-[0-9]{4}$`)
	// hh:mm AM/PM with a zero-padded hour.
	slotTimePattern = regexp.MustCompile(`^(0[1-9]|1[0-2]):[0-5][0-9] (AM|PM)$`)
)

// RegisterValidators installs the slot format validators on gin's binding
// engine and makes validation errors report json field names.
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	_ = v.RegisterValidation("slotdate", func(fl validator.FieldLevel) bool {
		return slotDatePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("slottime", func(fl validator.FieldLevel) bool {
		return slotTimePattern.MatchString(fl.Field().String())
	})

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return fld.Name
		}
		return name
	})
}
