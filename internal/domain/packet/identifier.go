package packet

import (
	"errors"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrInvalidPacketID     = errors.New("invalid packet id format")
	ErrInvalidManagementID = errors.New("invalid management id format")
)

var (
	packetIDRegex     = regexp.MustCompile(`^PKT-[0-9A-F]{8}$`)
	managementIDRegex = regexp.MustCompile(`^MGT-[0-9A-F]{10}$`)
)

// PacketID is the public identifier printed in every customer-facing code of
// a packet.
type PacketID string

// ManagementID is the secret identifier used solely to edit a packet's
// destination. It carries no relationship to the packet id.
type ManagementID string

func (id PacketID) String() string     { return string(id) }
func (id ManagementID) String() string { return string(id) }

type IdentifierPair struct {
	PacketID     PacketID
	ManagementID ManagementID
}

// NewIdentifierPair draws the two identifiers from independent random UUIDs.
// The prefixes keep the id spaces disjoint; the random halves are unrelated by
// construction, so neither id is derivable from the other.
func NewIdentifierPair() IdentifierPair {
	return IdentifierPair{
		PacketID:     PacketID("PKT-" + randomHex(8)),
		ManagementID: ManagementID("MGT-" + randomHex(10)),
	}
}

func randomHex(n int) string {
	u := uuid.New()
	s := strings.ToUpper(strings.ReplaceAll(u.String(), "-", ""))
	return s[:n]
}

func ParsePacketID(s string) (PacketID, error) {
	s = strings.TrimSpace(strings.ToUpper(s))
	if !packetIDRegex.MatchString(s) {
		return "", ErrInvalidPacketID
	}
	return PacketID(s), nil
}

func ParseManagementID(s string) (ManagementID, error) {
	s = strings.TrimSpace(strings.ToUpper(s))
	if !managementIDRegex.MatchString(s) {
		return "", ErrInvalidManagementID
	}
	return ManagementID(s), nil
}
