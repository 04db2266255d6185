package claims

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/akilalakshman/esignet/internal/authenticator/models"
)

// LangValue is one value of an identity attribute, optionally tagged with the
// language it is written in.
type LangValue struct {
	Language string `json:"language,omitempty"`
	Value    string `json:"value"`
}

// IdentityRecord maps attribute keys to their values, keeping keys in the
// order they were added.
type IdentityRecord struct {
	keys   []string
	values map[string][]LangValue
}

// NewIdentityRecord returns an empty record.
func NewIdentityRecord() *IdentityRecord {
	return &IdentityRecord{values: make(map[string][]LangValue)}
}

// Add appends values to key, registering key on first use.
func (r *IdentityRecord) Add(key string, vals ...LangValue) {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = append(r.values[key], vals...)
}

// Keys returns attribute keys in insertion order.
func (r *IdentityRecord) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Values returns the values stored under key.
func (r *IdentityRecord) Values(key string) ([]LangValue, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Len returns the number of distinct attribute keys.
func (r *IdentityRecord) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// ParseIdentityJSON reads a decrypted identity document. The document must be
// a JSON object; member order is preserved. Member values are read as:
//
//	"x" / 1 / true                  one untagged value
//	[{"language":"eng","value":"x"}] tagged values
//	["x","y"]                       untagged values
//	{...}                           one untagged value holding the raw JSON
func ParseIdentityJSON(data []byte) (*IdentityRecord, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("identity is not valid json: %w", models.ErrDecode)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("identity must be a json object: %w", models.ErrDecode)
	}

	rec := NewIdentityRecord()
	root.ForEach(func(key, value gjson.Result) bool {
		vals := parseValues(value)
		if len(vals) > 0 {
			rec.Add(key.String(), vals...)
		}
		return true
	})
	return rec, nil
}

func parseValues(v gjson.Result) []LangValue {
	switch {
	case v.Type == gjson.Null:
		return nil
	case v.IsArray():
		var out []LangValue
		v.ForEach(func(_, item gjson.Result) bool {
			if item.IsObject() {
				val := item.Get("value")
				if !val.Exists() {
					out = append(out, LangValue{Value: item.Raw})
					return true
				}
				out = append(out, LangValue{
					Language: strings.TrimSpace(item.Get("language").String()),
					Value:    val.String(),
				})
				return true
			}
			if item.Type != gjson.Null {
				out = append(out, LangValue{Value: item.String()})
			}
			return true
		})
		return out
	case v.IsObject():
		return []LangValue{{Value: v.Raw}}
	default:
		return []LangValue{{Value: v.String()}}
	}
}
