package app

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"hotel_booking/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json names so clients can map errors back to their payload
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// check runs struct-tag validation and converts failures into a domain.ValidationError.
func check(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return err
	}
	fields := make([]domain.FieldError, 0, len(ves))
	for _, fe := range ves {
		fields = append(fields, domain.FieldError{Field: fe.Field(), Rule: fe.Tag(), Param: fe.Param()})
	}
	return domain.Invalid("Invalid data", fields...)
}

func checkID(field, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.InvalidField(field, "uuid")
	}
	return nil
}

func parseDate(field, s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, domain.InvalidField(field, "required")
	}
	t, err := domain.ParseDate(s, loc)
	if err != nil {
		return time.Time{}, domain.InvalidField(field, "date")
	}
	return t, nil
}

// stayFields names the check-in/check-out inputs in error reports.
type stayFields struct{ in, out string }

var (
	bookingStay = stayFields{"checkInDate", "checkOutDate"}
	queryStay   = stayFields{"checkIn", "checkOut"}
)

// parseStay parses and orders a check-in/check-out pair.
func parseStay(f stayFields, in, out string, loc *time.Location) (domain.DateRange, error) {
	start, err := parseDate(f.in, in, loc)
	if err != nil {
		return domain.DateRange{}, err
	}
	end, err := parseDate(f.out, out, loc)
	if err != nil {
		return domain.DateRange{}, err
	}
	stay := domain.DateRange{Start: start, End: end}
	if err := stay.Validate(); err != nil {
		return domain.DateRange{}, domain.Invalid(err.Error(), domain.FieldError{Field: f.out, Rule: "gtfield", Param: f.in})
	}
	return stay, nil
}

func newID() string { return uuid.NewString() }
