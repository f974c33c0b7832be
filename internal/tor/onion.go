package tor

import (
	"encoding/base32"
	"regexp"
	"strings"

	"golang.org/x/crypto/sha3"
)

const (
	onionSuffix  = ".onion"
	onionVersion = 0x03

	// onionDecodedLength is pubkey (32) + checksum (2) + version (1).
	onionDecodedLength = 35
)

var (
	onionV3Pattern = regexp.MustCompile(`^[a-z2-7]{56}\.onion$`)
	onionV2Pattern = regexp.MustCompile(`^[a-z2-7]{16}\.onion$`)
)

// checksumPrefix is the constant prepended to the checksum hash input.
var checksumPrefix = []byte(".onion checksum")

// IsOnionHost reports whether host is in the .onion domain. Subdomains of an
// onion service count.
func IsOnionHost(host string) bool {
	return strings.HasSuffix(strings.ToLower(strings.TrimSuffix(host, ".")), onionSuffix)
}

// CheckOnionHost validates a .onion hostname. Non-onion hosts pass unchanged.
// Only the last label pair (service.onion) is checked, so
// "www.<service>.onion" is accepted when <service> is valid.
func CheckOnionHost(host string) error {
	if !IsOnionHost(host) {
		return nil
	}
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	labels := strings.Split(host, ".")
	service := labels[len(labels)-2] + onionSuffix

	if IsValidV3Address(service) {
		return nil
	}
	if onionV2Pattern.MatchString(service) {
		return ErrV2OnionAddress
	}
	return ErrInvalidOnionAddress
}

// IsValidV3Address verifies the format, version byte and checksum of a v3
// onion address including its ".onion" suffix.
func IsValidV3Address(address string) bool {
	address = strings.ToLower(address)
	if !onionV3Pattern.MatchString(address) {
		return false
	}

	raw, err := base32.StdEncoding.DecodeString(strings.ToUpper(strings.TrimSuffix(address, onionSuffix)))
	if err != nil || len(raw) != onionDecodedLength {
		return false
	}
	pubkey, checksum, version := raw[:32], raw[32:34], raw[34]
	if version != onionVersion {
		return false
	}
	want := onionChecksum(pubkey, version)
	return checksum[0] == want[0] && checksum[1] == want[1]
}

// onionAddressFromPublicKey derives the v3 address of an ed25519 public key.
func onionAddressFromPublicKey(pubkey []byte) (string, error) {
	if len(pubkey) != 32 {
		return "", ErrInvalidOnionAddress
	}
	raw := make([]byte, 0, onionDecodedLength)
	raw = append(raw, pubkey...)
	raw = append(raw, onionChecksum(pubkey, onionVersion)...)
	raw = append(raw, onionVersion)
	return strings.ToLower(base32.StdEncoding.EncodeToString(raw)) + onionSuffix, nil
}

// onionChecksum is SHA3-256(".onion checksum" || pubkey || version)[:2].
func onionChecksum(pubkey []byte, version byte) []byte {
	h := sha3.New256()
	h.Write(checksumPrefix)
	h.Write(pubkey)
	h.Write([]byte{version})
	return h.Sum(nil)[:2]
}
