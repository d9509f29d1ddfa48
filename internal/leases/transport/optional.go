package transport

import "encoding/json"

// OptionalString distinguishes an absent field from an explicit null.
// A field whose column group was never joined is left unset and omitted from
// the JSON body via omitzero; a joined-but-empty value marshals as null.
type OptionalString struct {
	Value *string
	Set   bool
}

// Some returns a set OptionalString carrying a value (nil means null).
func Some(value *string) OptionalString {
	return OptionalString{Value: value, Set: true}
}

// IsZero reports whether the field is absent; encoding/json's omitzero
// consults it.
func (o OptionalString) IsZero() bool {
	return !o.Set
}

func (o OptionalString) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.Value)
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	o.Value = &raw
	return nil
}
