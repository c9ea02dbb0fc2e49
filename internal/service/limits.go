package service

import (
	"unicode/utf8"

	"github.com/jaysurani18/smart-society/internal/domain"
)

// Column sizes of the users, maintenance_bills, complaints and notices tables.
const (
	maxNameLength    = 255
	maxEmailLength   = 255
	maxTitleLength   = 255
	maxMonthLength   = 64
	maxAddressLength = 32 // wing, flat_number
)

// maxAmount is the largest NUMERIC(10,2) value, 99,999,999.99.
const maxAmount domain.Money = 9_999_999_999

func checkLength(field, value string, limit int) error {
	if utf8.RuneCountInString(value) > limit {
		return validationError("%s must be at most %d characters", field, limit)
	}
	return nil
}

func checkAddress(wing, flat string) error {
	if err := checkLength("Wing", wing, maxAddressLength); err != nil {
		return err
	}
	return checkLength("Flat number", flat, maxAddressLength)
}
