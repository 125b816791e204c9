package p2p

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Signature is the canonical cache key for one logical request, derived from
// the HTTP method, the resource path and the sorted query parameters. Two
// requests that differ only in parameter order produce the same Signature.
type Signature string

// NewSignature derives the cache key. The query portion is hashed so keys
// stay bounded regardless of query size; method and path stay readable for
// debugging against a live cache backend.
func NewSignature(method, path string, query Query) (Signature, error) {
	return NewSignatureWithBody(method, path, query, nil)
}

// NewSignatureWithBody additionally folds a request body into the key. Used
// for cacheable non-GET calls (multi-item fetches) whose parameters travel in
// the body rather than the query string.
func NewSignatureWithBody(method, path string, query Query, body []byte) (Signature, error) {
	qs, err := query.Encode()
	if err != nil {
		return "", err
	}
	h := sha256.New()
	h.Write([]byte(qs))
	if len(body) > 0 {
		h.Write([]byte{0})
		h.Write(body)
	}
	return Signature(fmt.Sprintf("p2p:%s:%s:%s", method, path, hex.EncodeToString(h.Sum(nil)[:8]))), nil
}

func (s Signature) String() string { return string(s) }
