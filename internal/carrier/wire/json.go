// Package wire holds the tolerant decoding helpers shared by the carrier
// adapters. Carrier payloads are third-party data: shapes vary and numeric
// fields arrive as numbers, strings or null.
package wire

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"carrier-rate-engine/internal/domain/shipping"

	jsoniter "github.com/json-iterator/go"
)

var JSON = jsoniter.ConfigCompatibleWithStandardLibrary

// OneOrMany decodes either a single object or an array of objects into a slice.
type OneOrMany[T any] []T

func (o *OneOrMany[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*o = nil
		return nil
	}

	if data[0] == '[' {
		var many []T
		if err := JSON.Unmarshal(data, &many); err != nil {
			return err
		}
		*o = many
		return nil
	}

	var one T
	if err := JSON.Unmarshal(data, &one); err != nil {
		return err
	}
	*o = OneOrMany[T]{one}
	return nil
}

// Number accepts 12.5, "12.50", "" and null. Anything unparsable decodes as 0
// and marks the value invalid instead of failing the whole document.
type Number struct {
	Value float64
	Valid bool
}

func (n *Number) UnmarshalJSON(data []byte) error {
	*n = Number{}

	raw := strings.TrimSpace(string(data))
	if raw == "" || raw == "null" {
		return nil
	}
	raw = strings.Trim(raw, `"`)
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if raw == "" {
		return nil
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	n.Value = v
	n.Valid = true
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(n.Value, 'f', -1, 64)), nil
}

// Ptr returns nil for a missing value.
func (n Number) Ptr() *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}

// Int accepts 3, "3" and null.
type Int struct {
	Value int
	Valid bool
}

func (i *Int) UnmarshalJSON(data []byte) error {
	var n Number
	_ = n.UnmarshalJSON(data)
	*i = Int{Value: int(n.Value), Valid: n.Valid}
	return nil
}

func (i Int) Ptr() *int {
	if !i.Valid {
		return nil
	}
	v := i.Value
	return &v
}

// RequireSection fails with a malformed-response error when body lacks the
// top-level key holding the carrier's rates. A present but empty section is a
// valid answer with no rates.
func RequireSection(carrier shipping.CarrierCode, body []byte, key string) error {
	switch JSON.Get(body, key).ValueType() {
	case jsoniter.InvalidValue, jsoniter.NilValue:
		return Malformed(carrier, fmt.Errorf("response has no %s section", key))
	}
	return nil
}
