package kuiper

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
)

// builtins_hash.go registers digest(), spec.md §4.6's content-hashing
// built-in. Grounded on gql/hash's role (structural hashing for cache
// dedup keys) but exposed here as an ordinary pure function over strings,
// since Kuiper has no cache layer of its own to key.

func init() {
	registerBuiltin("digest", 2, 2, true, builtinDigest)
}

func builtinDigest(ev *evaluator, span Span, args []execNode) Value {
	algo := argString(span, "digest", ev.eval(args[0]))
	data := argString(span, "digest", ev.eval(args[1]))
	var sum []byte
	switch algo {
	case "md5":
		h := md5.Sum([]byte(data))
		sum = h[:]
	case "sha1":
		h := sha1.Sum([]byte(data))
		sum = h[:]
	case "sha256":
		h := sha256.Sum256([]byte(data))
		sum = h[:]
	default:
		raise(ConversionError, span, "digest: unknown algorithm %q (want md5, sha1, or sha256)", algo)
	}
	return NewString(hex.EncodeToString(sum))
}
