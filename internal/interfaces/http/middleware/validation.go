package middleware

import (
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/pdfgen/backend/internal/domain/pdf"
)

// SetupValidator configures the binding validator with custom tags
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	// Use JSON tag names for field names in errors
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// csslength accepts CSS length values like "1cm", "0.5in" or "12px"
	_ = v.RegisterValidation("csslength", func(fl validator.FieldLevel) bool {
		return pdf.Length(fl.Field().String()).Validate() == nil
	})
}
