package api

import (
	"reflect" // Custom type extraction
	"strings" // Tag parsing
	"sync"    // One-time registration

	"bingo_ledger/internal/domain" // Role parsing

	"github.com/gin-gonic/gin/binding"       // Gin's validator engine
	"github.com/go-playground/validator/v10" // Validation library
	"github.com/shopspring/decimal"          // Money amounts
)

var registerOnce sync.Once

// registerValidators teaches gin's validator about roles and decimal amounts
func registerValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name // Report json names in errors
		})
		_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
			_, ok := domain.ParseRole(fl.Field().String())
			return ok
		})
		// Lets gt/gte/required compare decimals numerically
		v.RegisterCustomTypeFunc(func(field reflect.Value) any {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				return d.InexactFloat64()
			}
			return nil
		}, decimal.Decimal{})
	})
}
