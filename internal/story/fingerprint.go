package story

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"reflect"

	"github.com/bytedance/sonic"
)

// Fingerprint returns a stable digest of an export map. Two maps with equal
// data produce the same fingerprint; functions are identified by their code
// pointer, so a reloaded function with a new identity changes the digest.
func Fingerprint(exports Exports) (string, error) {
	encoded, err := sonic.ConfigStd.Marshal(canonical(reflect.ValueOf(map[string]any(exports))))
	if err != nil {
		return "", fmt.Errorf("fingerprint exports: %w", err)
	}
	sum := sha256.Sum256(encoded)
	return hex.EncodeToString(sum[:]), nil
}

// canonical rewrites v into plain maps, slices and scalars that encode
// deterministically.
func canonical(v reflect.Value) any {
	if !v.IsValid() {
		return nil
	}
	switch v.Kind() {
	case reflect.Interface, reflect.Pointer:
		if v.IsNil() {
			return nil
		}
		return canonical(v.Elem())
	case reflect.Func:
		if v.IsNil() {
			return nil
		}
		return fmt.Sprintf("func@%x", v.Pointer())
	case reflect.Map:
		if v.IsNil() {
			return nil
		}
		out := make(map[string]any, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out[fmt.Sprint(iter.Key().Interface())] = canonical(iter.Value())
		}
		return out
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.IsNil() {
			return nil
		}
		out := make([]any, v.Len())
		for i := range v.Len() {
			out[i] = canonical(v.Index(i))
		}
		return out
	case reflect.Struct:
		t := v.Type()
		out := make(map[string]any, t.NumField()+1)
		out["$type"] = t.String()
		for i := range t.NumField() {
			if !t.Field(i).IsExported() {
				continue
			}
			out[t.Field(i).Name] = canonical(v.Field(i))
		}
		return out
	case reflect.Chan, reflect.UnsafePointer:
		return fmt.Sprintf("%s@%x", v.Kind(), v.Pointer())
	default:
		return v.Interface()
	}
}
