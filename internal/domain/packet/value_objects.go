package packet

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
	"time"
)

var (
	ErrInvalidPhone     = errors.New("invalid phone number")
	ErrInvalidURL       = errors.New("invalid redirect url")
	ErrForbiddenScheme  = errors.New("url scheme must be http or https")
	ErrEmptyDestination = errors.New("destination cannot be empty")
	ErrEmptyBuyerName   = errors.New("buyer name cannot be empty")
	ErrNegativeSale     = errors.New("sale price cannot be negative")
)

const contactURIPrefix = "https://wa.me/"

// A bare 10-digit string is a local subscriber number without its country
// code. Longer strings are taken as already carrying one.
const localNumberLen = 10

var phoneDigitsRegex = regexp.MustCompile(`^[0-9]{8,15}$`)

// Destination is the validated redirect target of a fully configured packet:
// either a canonical messaging-contact URI or an absolute http(s) URL.
type Destination struct {
	uri string
}

// NewContactDestination normalizes a phone-number-shaped string into the
// canonical contact URI. Non-digits are stripped; a missing country code is
// filled from defaultCountryCode.
func NewContactDestination(raw, defaultCountryCode string) (Destination, error) {
	digits := stripNonDigits(raw)
	if digits == "" {
		return Destination{}, ErrEmptyDestination
	}
	if defaultCountryCode != "" && len(digits) == localNumberLen {
		digits = defaultCountryCode + digits
	}
	if !phoneDigitsRegex.MatchString(digits) {
		return Destination{}, ErrInvalidPhone
	}
	return Destination{uri: contactURIPrefix + digits}, nil
}

// NewURLDestination accepts an absolute URL with an http or https scheme.
// Every other scheme (javascript:, data:, ...) is rejected to keep the
// redirect from becoming an injection vector.
func NewURLDestination(raw string) (Destination, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Destination{}, ErrEmptyDestination
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Destination{}, ErrInvalidURL
	}
	// Bare "example.com" parses with an empty scheme; default to https the way
	// a buyer typing into the form expects.
	if u.Scheme == "" {
		u, err = url.Parse("https://" + raw)
		if err != nil {
			return Destination{}, ErrInvalidURL
		}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Destination{}, ErrForbiddenScheme
	}
	if u.Host == "" {
		return Destination{}, ErrInvalidURL
	}
	return Destination{uri: u.String()}, nil
}

// ReconstructDestination rebuilds a destination from a stored value without
// re-validating. Only the persistence layer should call this.
func ReconstructDestination(uri string) Destination {
	return Destination{uri: uri}
}

func (d Destination) String() string {
	return d.uri
}

func (d Destination) IsZero() bool {
	return d.uri == ""
}

// IsContact reports whether the destination is a canonical contact URI.
func (d Destination) IsContact() bool {
	return strings.HasPrefix(d.uri, contactURIPrefix)
}

// Phone returns the digits of a contact destination, or "" for URL targets.
func (d Destination) Phone() string {
	if !d.IsContact() {
		return ""
	}
	return strings.TrimPrefix(d.uri, contactURIPrefix)
}

func stripNonDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Sale records who bought the packet and for how much. Set only by the sale
// transition.
type Sale struct {
	buyerName  string
	buyerEmail *string
	price      float64
	soldAt     time.Time
}

func NewSale(buyerName string, buyerEmail *string, price float64, soldAt time.Time) (Sale, error) {
	buyerName = strings.TrimSpace(buyerName)
	if buyerName == "" {
		return Sale{}, ErrEmptyBuyerName
	}
	if price < 0 {
		return Sale{}, ErrNegativeSale
	}
	return Sale{
		buyerName:  buyerName,
		buyerEmail: buyerEmail,
		price:      price,
		soldAt:     soldAt,
	}, nil
}

func ReconstructSale(buyerName string, buyerEmail *string, price float64, soldAt time.Time) Sale {
	return Sale{buyerName: buyerName, buyerEmail: buyerEmail, price: price, soldAt: soldAt}
}

func (s Sale) BuyerName() string   { return s.buyerName }
func (s Sale) BuyerEmail() *string { return s.buyerEmail }
func (s Sale) Price() float64      { return s.price }
func (s Sale) SoldAt() time.Time   { return s.soldAt }
