package codec

import "encoding/json"

// JSON is a Codec backed by encoding/json. The zero value is ready to use.
// Note JSON round trips decode numeric ids to float64; optcache identity
// comparison normalizes numerics, so int ids still match after a trip.
type JSON[V any] struct{}

func (JSON[V]) Encode(v V) ([]byte, error) { return json.Marshal(v) }
func (JSON[V]) Decode(b []byte) (V, error) {
	var v V
	err := json.Unmarshal(b, &v)
	return v, err
}
