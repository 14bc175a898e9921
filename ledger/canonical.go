package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// CanonicalJSON renders v in the deterministic, key-sorted,
// float-normalized form spec §3 mandates as the sole ledger-hash
// input: object keys sorted recursively, non-integer floats emitted
// in "%.16e" scientific form, integer-valued floats emitted as plain
// integers, and no whitespace between tokens.
//
// v is first round-tripped through encoding/json with UseNumber so
// that structs, maps, and raw JSON all normalize to the same
// candidate value shapes (permuting the order fields were supplied
// in does not change the result — spec testable property P10).
func CanonicalJSON(v interface{}) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("ledger: canonical json: marshal: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var normalized interface{}
	if err := dec.Decode(&normalized); err != nil {
		return nil, fmt.Errorf("ledger: canonical json: decode: %w", err)
	}
	buf := &bytes.Buffer{}
	if err := encodeCanonical(buf, normalized); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeCanonical(buf *bytes.Buffer, v interface{}) error {
	switch t := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		if t {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case json.Number:
		return encodeNumber(buf, t)
	case string:
		encoded, err := json.Marshal(t)
		if err != nil {
			return err
		}
		buf.Write(encoded)
	case []interface{}:
		buf.WriteByte('[')
		for i, elem := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeCanonical(buf, elem); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case map[string]interface{}:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			keyEncoded, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(keyEncoded)
			buf.WriteByte(':')
			if err := encodeCanonical(buf, t[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("ledger: canonical json: unsupported type %T", v)
	}
	return nil
}

func isIntegerLiteral(s string) bool {
	for i, c := range s {
		if c == '-' && i == 0 {
			continue
		}
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}

func encodeNumber(buf *bytes.Buffer, n json.Number) error {
	s := string(n)
	if isIntegerLiteral(s) {
		buf.WriteString(s)
		return nil
	}
	f, err := n.Float64()
	if err != nil {
		return fmt.Errorf("ledger: canonical json: parse number %q: %w", s, err)
	}
	if f == math.Trunc(f) && !math.IsInf(f, 0) {
		buf.WriteString(strconv.FormatInt(int64(f), 10))
		return nil
	}
	buf.WriteString(fmt.Sprintf("%.16e", f))
	return nil
}
