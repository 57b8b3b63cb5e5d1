// Package hexutil provides the hex/JSON debug encoding used to print
// and log wire values — gid, encoded points, signatures — without
// reaching for %x everywhere and without ever touching a secret scalar
// (those stay inside field.Fp/field.Fq and are never routed through
// this package).
package hexutil

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/epidcore/epid2/wire"
)

// Bytes wraps a byte slice with hex-first JSON marshaling, accepting
// either "0x..."-prefixed hex or base64 on decode so debug dumps
// produced by either convention round-trip.
type Bytes []byte

func (b Bytes) String() string {
	return "0x" + hex.EncodeToString(b)
}

func (b Bytes) MarshalJSON() ([]byte, error) {
	s := "0x" + hex.EncodeToString(b)
	out := make([]byte, 0, len(s)+2)
	out = append(out, '"')
	out = append(out, s...)
	out = append(out, '"')
	return out, nil
}

func (b *Bytes) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("hexutil: invalid quoted string: %s", data)
	}
	val := string(data[1 : len(data)-1])
	if isHex(val) {
		decoded, err := hex.DecodeString(strings.TrimPrefix(val, "0x"))
		if err != nil {
			return err
		}
		*b = decoded
		return nil
	}
	decoded, err := base64.StdEncoding.DecodeString(val)
	if err != nil {
		return err
	}
	*b = decoded
	return nil
}

func isHex(s string) bool {
	v := strings.TrimPrefix(s, "0x")
	if len(v) == 0 || len(v)%2 != 0 {
		return false
	}
	for _, b := range []byte(v) {
		if !(b >= '0' && b <= '9' || b >= 'a' && b <= 'f' || b >= 'A' && b <= 'F') {
			return false
		}
	}
	return true
}

// GID renders a wire.GID as the hex string the EPID tooling convention
// uses: a bare 32-character lowercase hex string, no 0x prefix, since
// gid is a fixed-width identifier rather than an arbitrary byte blob.
func GID(g wire.GID) string {
	return hex.EncodeToString(g[:])
}

// ParseGID parses GID's output back into a wire.GID, rejecting anything
// that isn't exactly 16 decoded octets.
func ParseGID(s string) (wire.GID, error) {
	var g wire.GID
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return g, err
	}
	if len(raw) != len(g) {
		return g, fmt.Errorf("hexutil: gid must be %d bytes, got %d", len(g), len(raw))
	}
	copy(g[:], raw)
	return g, nil
}
