package bcl

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// PathOf splits a ticket into the four directory levels of a filestore.
// The ticket is written as 8 lowercase hex digits, zero padded, and cut in
// groups of two: ticket 0x00017a2b lives in 00/01/7a/2b.
func PathOf(ticket uint32) [4]string {
	hex := leftPad(strconv.FormatUint(uint64(ticket), 16), 8, '0')
	return [4]string{hex[0:2], hex[2:4], hex[4:6], hex[6:8]}
}

// RelativePath returns the path of a content file relative to its store
// root. ext, when not empty, is appended to the last segment as is and is
// expected to carry its leading dot.
func RelativePath(ticket uint32, ext string) string {
	segs := PathOf(ticket)
	return filepath.Join(segs[0], segs[1], segs[2], segs[3]+ext)
}

// ParseSegments is the inverse of PathOf.
func ParseSegments(segs [4]string) (uint32, error) {
	for _, s := range segs {
		if len(s) != 2 {
			return 0, fmt.Errorf("invalid path segment %q", s)
		}
	}
	v, err := strconv.ParseUint(strings.Join(segs[:], ""), 16, 32)
	if err != nil {
		return 0, fmt.Errorf("parsing ticket path: %w", err)
	}
	return uint32(v), nil
}

// ParseTicket reads a ticket written either as the signed decimal value the
// docbase stores or as a relative file path such as 00/01/7a/2b.pdf. The
// extension of a path is ignored.
func ParseTicket(s string) (uint32, error) {
	if n, err := strconv.ParseInt(s, 10, 32); err == nil {
		return uint32(int32(n)), nil
	}
	parts := strings.Split(filepath.ToSlash(s), "/")
	if len(parts) != 4 {
		return 0, fmt.Errorf("invalid ticket %q: want a decimal value or a 4 level path", s)
	}
	parts[3] = trimExtension(parts[3])
	return ParseSegments([4]string(parts))
}

func leftPad(s string, n int, pad byte) string {
	if len(s) >= n {
		return s
	}
	return strings.Repeat(string(pad), n-len(s)) + s
}
