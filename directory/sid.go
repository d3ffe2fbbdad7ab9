package directory

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var errInvalidSID = errors.New("directory: invalid SID")

// ParseBinarySID decodes the binary form of a security identifier, as
// stored in the objectSid and tokenGroups attributes, into "S-1-5-21-...".
func ParseBinarySID(b []byte) (string, error) {
	if len(b) < 8 {
		return "", fmt.Errorf("%w: %d bytes", errInvalidSID, len(b))
	}
	revision := b[0]
	count := int(b[1])
	if len(b) != 8+4*count {
		return "", fmt.Errorf("%w: %d sub-authorities in %d bytes", errInvalidSID, count, len(b))
	}

	var authority uint64
	for _, v := range b[2:8] {
		authority = authority<<8 | uint64(v)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "S-%d-%d", revision, authority)
	for i := range count {
		off := 8 + 4*i
		fmt.Fprintf(&sb, "-%d", binary.LittleEndian.Uint32(b[off:off+4]))
	}
	return sb.String(), nil
}

// EncodeBinarySID is the inverse of ParseBinarySID.
func EncodeBinarySID(sid string) ([]byte, error) {
	parts := strings.Split(sid, "-")
	if len(parts) < 3 || parts[0] != "S" {
		return nil, fmt.Errorf("%w: %q", errInvalidSID, sid)
	}
	revision, err := strconv.ParseUint(parts[1], 10, 8)
	if err != nil {
		return nil, fmt.Errorf("%w: revision in %q", errInvalidSID, sid)
	}
	authority, err := strconv.ParseUint(parts[2], 10, 48)
	if err != nil {
		return nil, fmt.Errorf("%w: authority in %q", errInvalidSID, sid)
	}
	subs := parts[3:]
	if len(subs) > 15 {
		return nil, fmt.Errorf("%w: too many sub-authorities in %q", errInvalidSID, sid)
	}

	b := make([]byte, 8+4*len(subs))
	b[0] = byte(revision)
	b[1] = byte(len(subs))
	for i := range 6 {
		b[7-i] = byte(authority >> (8 * i))
	}
	for i, s := range subs {
		v, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: sub-authority %q in %q", errInvalidSID, s, sid)
		}
		binary.LittleEndian.PutUint32(b[8+4*i:], uint32(v))
	}
	return b, nil
}
