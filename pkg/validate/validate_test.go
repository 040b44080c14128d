package validate_test

import (
	"testing"

	"github.com/elchascon/botilleria/pkg/validate"
)

type line struct {
	ProductID uint `json:"id"       validate:"required"`
	Quantity  int  `json:"cantidad" validate:"gt=0"`
}

type checkout struct {
	Items         []line `json:"items"       validate:"min=1,dive"`
	PaymentMethod string `json:"metodo_pago" validate:"omitempty,oneof=EFECTIVO DEBITO CREDITO TRANSFERENCIA"`
	Email         string `json:"email"       validate:"omitempty,email"`
}

func TestValidInput(t *testing.T) {
	errs := validate.Struct(checkout{
		Items:         []line{{ProductID: 1, Quantity: 2}},
		PaymentMethod: "DEBITO",
	})
	if validate.HasErrors(errs) {
		t.Errorf("expected no errors, got: %v", errs)
	}
}

func TestEmptyItems(t *testing.T) {
	errs := validate.Struct(checkout{})
	if _, ok := errs["items"]; !ok {
		t.Errorf("expected items error, got: %v", errs)
	}
}

func TestNestedFieldsUseJSONPath(t *testing.T) {
	errs := validate.Struct(checkout{
		Items: []line{{ProductID: 1, Quantity: 1}, {ProductID: 0, Quantity: 0}},
	})
	if _, ok := errs["items[1].id"]; !ok {
		t.Errorf("expected items[1].id error, got: %v", errs)
	}
	if _, ok := errs["items[1].cantidad"]; !ok {
		t.Errorf("expected items[1].cantidad error, got: %v", errs)
	}
	if _, ok := errs["items[0].id"]; ok {
		t.Error("first line is valid")
	}
}

func TestOneOf(t *testing.T) {
	errs := validate.Struct(checkout{
		Items:         []line{{ProductID: 1, Quantity: 1}},
		PaymentMethod: "BITCOIN",
	})
	if _, ok := errs["metodo_pago"]; !ok {
		t.Errorf("expected metodo_pago error, got: %v", errs)
	}
}

func TestEmailRule(t *testing.T) {
	errs := validate.Struct(checkout{
		Items: []line{{ProductID: 1, Quantity: 1}},
		Email: "not-an-email",
	})
	if _, ok := errs["email"]; !ok {
		t.Error("expected email validation error")
	}
}
