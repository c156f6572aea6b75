package binding

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"visa-consultancy/backend/internal/model"
)

// Register installs the domain enum validators on gin's default validator.
// Call once before the router serves requests.
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return RegisterOn(v)
}

// RegisterOn installs the domain enum validators on v
func RegisterOn(v *validator.Validate) error {
	rules := map[string]validator.Func{
		"intake":         validIntake,
		"document_type":  validDocumentType,
		"payment_method": validPaymentMethod,
		"payment_type":   validPaymentType,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %s validator: %w", tag, err)
		}
	}
	return nil
}

func validIntake(fl validator.FieldLevel) bool {
	return model.Intake(fl.Field().String()).Month() != 0
}

func validDocumentType(fl validator.FieldLevel) bool {
	return model.DocumentType(fl.Field().String()).Valid()
}

func validPaymentType(fl validator.FieldLevel) bool {
	return model.PaymentType(fl.Field().String()).Valid()
}

func validPaymentMethod(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	for _, m := range model.PaymentMethods {
		if m == s {
			return true
		}
	}
	return false
}
