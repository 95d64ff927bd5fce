// Package codec provides the (de)serializers store/bytestore uses to put
// cache entries through a byte Provider.
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
