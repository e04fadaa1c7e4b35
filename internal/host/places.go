package host

import (
	"encoding/base64"
	"math/bits"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

const goldenRatio = 0x9E3779B9

func addToHash(h, v uint32) uint32 {
	return goldenRatio * (bits.RotateLeft32(h, 5) ^ v)
}

func hashBytes(s string) uint32 {
	var h uint32
	for i := 0; i < len(s); i++ {
		h = addToHash(h, uint32(s[i]))
	}
	return h
}

// placesURLHash computes moz_places.url_hash: the low 16 bits of the scheme
// hash in the upper word and the hash of the first 1500 bytes below it.
func placesURLHash(rawURL string) int64 {
	s := rawURL
	if len(s) > 1500 {
		s = s[:1500]
	}
	strHash := uint64(hashBytes(s))

	var prefixHash uint64
	if i := strings.IndexByte(rawURL, ':'); i >= 0 && i < 50 {
		prefixHash = uint64(hashBytes(rawURL[:i]) & 0xFFFF)
	}
	return int64(prefixHash<<32 + strHash)
}

// placesRevHost returns moz_places.rev_host: the lowercase host reversed,
// followed by a dot.
func placesRevHost(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "."
	}
	host := []rune(strings.ToLower(u.Hostname()))
	for i, j := 0, len(host)-1; i < j; i, j = i+1, j-1 {
		host[i], host[j] = host[j], host[i]
	}
	return string(host) + "."
}

// placesGUID returns a new 12 character Places GUID.
func placesGUID() string {
	id := uuid.New()
	return base64.RawURLEncoding.EncodeToString(id[:9])
}
