//go:build unit

package packet_test

import (
	"testing"

	"kyuaar/internal/domain/packet"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContactDestination(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		country string
		want    string
		errIs   error
	}{
		{name: "e164 with plus", raw: "+919166900151", country: "91", want: "https://wa.me/919166900151"},
		{name: "local number gets country code", raw: "9166900151", country: "91", want: "https://wa.me/919166900151"},
		{name: "spaces and dashes stripped", raw: "+91 9166-900-151", country: "91", want: "https://wa.me/919166900151"},
		{name: "empty", raw: "", country: "91", errIs: packet.ErrEmptyDestination},
		{name: "letters only", raw: "call me", country: "91", errIs: packet.ErrEmptyDestination},
		{name: "too short", raw: "+9112", country: "91", errIs: packet.ErrInvalidPhone},
		{name: "too long", raw: "+911234567890123456", country: "91", errIs: packet.ErrInvalidPhone},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d, err := packet.NewContactDestination(tc.raw, tc.country)
			if tc.errIs != nil {
				assert.ErrorIs(t, err, tc.errIs)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, d.String())
			assert.True(t, d.IsContact())
		})
	}
}

func TestNewURLDestination(t *testing.T) {
	cases := []struct {
		name  string
		raw   string
		want  string
		errIs error
	}{
		{name: "https url", raw: "https://example.com/shop", want: "https://example.com/shop"},
		{name: "http url", raw: "http://example.com", want: "http://example.com"},
		{name: "bare host defaults to https", raw: "example.com/menu", want: "https://example.com/menu"},
		{name: "empty", raw: "", errIs: packet.ErrEmptyDestination},
		{name: "javascript scheme", raw: "javascript:alert(1)", errIs: packet.ErrForbiddenScheme},
		{name: "data scheme", raw: "data:text/html,hi", errIs: packet.ErrForbiddenScheme},
		{name: "ftp scheme", raw: "ftp://example.com/file", errIs: packet.ErrForbiddenScheme},
		{name: "scheme only", raw: "https://", errIs: packet.ErrInvalidURL},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d, err := packet.NewURLDestination(tc.raw)
			if tc.errIs != nil {
				assert.ErrorIs(t, err, tc.errIs)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, d.String())
			assert.False(t, d.IsContact())
			assert.Empty(t, d.Phone())
		})
	}
}

func TestDestinationPhone(t *testing.T) {
	d, err := packet.NewContactDestination("+919166900151", "91")
	require.NoError(t, err)
	assert.Equal(t, "919166900151", d.Phone())
}

func TestNewSale(t *testing.T) {
	t.Run("buyer name required", func(t *testing.T) {
		_, err := packet.NewSale("   ", nil, 500, testNow)
		assert.ErrorIs(t, err, packet.ErrEmptyBuyerName)
	})

	t.Run("negative price rejected", func(t *testing.T) {
		_, err := packet.NewSale("Asha", nil, -1, testNow)
		assert.ErrorIs(t, err, packet.ErrNegativeSale)
	})

	t.Run("name trimmed", func(t *testing.T) {
		s, err := packet.NewSale("  Asha ", nil, 500, testNow)
		require.NoError(t, err)
		assert.Equal(t, "Asha", s.BuyerName())
	})
}
