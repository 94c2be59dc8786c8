package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Object is a JSON object kept key for key in source order.
// Values are held undecoded, so fields of any type pass through unchanged.
// A non-object document is kept verbatim.
type Object struct {
	keys     []string
	values   map[string]json.RawMessage
	verbatim json.RawMessage
}

// UnmarshalJSON decodes an object preserving key order. A repeated key keeps
// its first position and its last value. null yields the empty object.
func (o *Object) UnmarshalJSON(data []byte) error {
	*o = Object{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] != '{' {
		o.verbatim = append(json.RawMessage(nil), data...)
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return err
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected object key %v", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return err
		}
		o.put(key, value)
	}
	_, err := dec.Token()
	return err
}

// MarshalJSON writes the keys in their original order; the zero Object is {}
func (o Object) MarshalJSON() ([]byte, error) {
	if o.verbatim != nil {
		return o.verbatim, nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(o.values[key])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Get returns the undecoded value stored under key
func (o Object) Get(key string) (json.RawMessage, bool) {
	v, ok := o.values[key]
	return v, ok
}

// With returns a copy of the object with key set to value.
// The receiver is not modified.
func (o Object) With(key string, value json.RawMessage) Object {
	if o.verbatim != nil {
		return o
	}
	out := Object{
		keys:   append([]string(nil), o.keys...),
		values: make(map[string]json.RawMessage, len(o.values)+1),
	}
	for k, v := range o.values {
		out.values[k] = v
	}
	out.put(key, value)
	return out
}

func (o *Object) put(key string, value json.RawMessage) {
	if o.values == nil {
		o.values = make(map[string]json.RawMessage)
	}
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

// RawProduct is the scraped record stored in a checkpoint
type RawProduct struct{ Object }

// imageURLsKey holds the gallery of a scraped record
const imageURLsKey = "image_urls"

// MapImageURLs returns a copy with fn applied to every string in image_urls.
// Non-string entries and a non-array image_urls are left as they are.
func (r RawProduct) MapImageURLs(fn func(string) string) RawProduct {
	raw, ok := r.Get(imageURLsKey)
	if !ok {
		return r
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return r
	}

	changed := false
	for i, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err != nil {
			continue
		}
		fixed := fn(s)
		if fixed == s {
			continue
		}
		encoded, err := json.Marshal(fixed)
		if err != nil {
			continue
		}
		items[i] = encoded
		changed = true
	}
	if !changed {
		return r
	}

	encoded, err := json.Marshal(items)
	if err != nil {
		return r
	}
	return RawProduct{r.With(imageURLsKey, encoded)}
}

// Inference holds the model-predicted attributes for a product
type Inference struct{ Object }

// Checkpoint is the per-product intermediate artifact (checkpoint_<id>.json)
type Checkpoint struct {
	Raw       RawProduct `json:"raw"`
	Inference Inference  `json:"inference"`
}

// Match describes the candidate official-catalog counterpart (match_<id>.json)
type Match struct{ Object }
