package portabletext

import "encoding/json"

const anyLocale = "*"

// LocalizedValue is one entry of an internationalized string field.
type LocalizedValue struct {
	Key   string `json:"_key"`
	Value string `json:"value"`
}

// LocalizedString is the store's internationalized-array shape:
// [{"_key":"ja","value":"..."},{"_key":"en","value":"..."}].
type LocalizedString []LocalizedValue

// Resolve returns the value for locale, then for fallback, then "".
func (ls LocalizedString) Resolve(locale, fallback string) string {
	for _, v := range ls {
		if v.Key == locale {
			return v.Value
		}
	}
	for _, v := range ls {
		if v.Key == fallback || v.Key == anyLocale {
			return v.Value
		}
	}
	return ""
}

// UnmarshalJSON also accepts a bare string, which is treated as a value
// for every locale.
func (ls *LocalizedString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		*ls = LocalizedString{{Key: anyLocale, Value: plain}}
		return nil
	}
	var values []LocalizedValue
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	*ls = values
	return nil
}

// LocalizedBody maps locale to rich text: {"ja":[...],"en":[...]}.
type LocalizedBody map[string]Body

// Resolve returns the body for locale, then for fallback, then an empty Body.
// A locale whose body is present but empty resolves to that empty body; only
// an absent locale falls back.
func (lb LocalizedBody) Resolve(locale, fallback string) Body {
	if b, ok := lb[locale]; ok && b != nil {
		return b
	}
	if b, ok := lb[fallback]; ok && b != nil {
		return b
	}
	return Body{}
}

// UnmarshalJSON skips keys that do not hold an array, such as the `_type`
// tag the store puts on localized objects.
func (lb *LocalizedBody) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(LocalizedBody, len(raw))
	for locale, value := range raw {
		if len(value) == 0 || value[0] != '[' {
			continue
		}
		var body Body
		if err := json.Unmarshal(value, &body); err != nil {
			return err
		}
		out[locale] = body
	}
	*lb = out
	return nil
}
