// Package awb generates the human-facing waybill codes printed on labels
// and used as the reference key everywhere a shipment crosses a boundary.
package awb

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"time"
)

const (
	// Prefix for admin and customer bookings: UEX + 8 digits.
	Prefix = "UEX"
	// ProfessionalPrefix for seller (B2B partner) bookings:
	// UEXP + two-digit year + 9 digits.
	ProfessionalPrefix = "UEXP"
)

var (
	Pattern             = regexp.MustCompile(`^UEX\d{8}$`)
	ProfessionalPattern = regexp.MustCompile(`^UEXP\d{11}$`)
)

func randomDigits(n int) string {
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
	v, err := rand.Int(rand.Reader, max)
	if err != nil {
		// crypto/rand only fails when the platform source is broken
		panic(err)
	}
	return fmt.Sprintf("%0*d", n, v)
}

// New returns a standard AWB code. Uniqueness is enforced by the unique
// index on shipments.awb; callers retry on a duplicate key error.
func New() string {
	return Prefix + randomDigits(8)
}

// NewProfessional returns a seller-booking AWB code.
func NewProfessional(now time.Time) string {
	return fmt.Sprintf("%s%02d%s", ProfessionalPrefix, now.Year()%100, randomDigits(9))
}

// Valid reports whether s matches either generator's format.
func Valid(s string) bool {
	return Pattern.MatchString(s) || ProfessionalPattern.MatchString(s)
}
