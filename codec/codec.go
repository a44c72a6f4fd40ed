// Package codec (de)serializes cached read values to the opaque bytes the
// store keeps. Pick one codec per readcache namespace and never change it
// without also invalidating the namespace: the store does not record which
// codec wrote an entry, a mismatched read surfaces as a corrupt entry and is
// self-healed into a miss.
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
