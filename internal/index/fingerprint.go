package index

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"

	"github.com/marksearch/marksearch/internal/domain"
)

// Fingerprint computes a cheap structural summary of a collection: document
// count plus per-document id, field lengths, and creation time, folded
// through xxhash.
//
// It is an approximate change detector, not a cryptographic one. Two distinct
// collections may collide and a rebuild would then be skipped; that risk is
// accepted in exchange for never hashing full document bodies on the request
// path.
func Fingerprint(docs []domain.Document) uint64 {
	h := xxhash.New()
	var buf [8]byte

	binary.LittleEndian.PutUint64(buf[:], uint64(len(docs)))
	_, _ = h.Write(buf[:])

	for i := range docs {
		d := &docs[i]
		_, _ = h.WriteString(d.ID)
		writeLen(h, len(d.Title))
		writeLen(h, len(d.Notes))
		writeLen(h, len(d.Description))
		writeLen(h, len(d.OCRText))
		writeLen(h, len(d.Tags))
		writeLen(h, int(d.CreatedAt.Unix()))
	}

	return h.Sum64()
}

func writeLen(h *xxhash.Digest, n int) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(n))
	_, _ = h.Write(buf[:])
}
