package value

// Lenient accessors. Each returns def when the key is missing or holds a
// value of a different JSON type; they never fail.

// String returns the string under key, or def.
func (o Object) String(key, def string) string {
	if v, ok := o.Get(key); ok {
		if s, ok := v.(String); ok {
			return string(s)
		}
	}
	return def
}

// Float returns the number under key as float64, or def.
func (o Object) Float(key string, def float64) float64 {
	if v, ok := o.Get(key); ok {
		if n, ok := v.(Number); ok {
			if f, ok := n.Float(); ok {
				return f
			}
		}
	}
	return def
}

// Int returns the integral number under key, or def.
func (o Object) Int(key string, def int) int {
	if v, ok := o.Get(key); ok {
		if n, ok := v.(Number); ok {
			if i, ok := n.Int(); ok {
				return int(i)
			}
		}
	}
	return def
}

// Bool returns the boolean under key, or false.
func (o Object) Bool(key string) bool {
	if v, ok := o.Get(key); ok {
		if b, ok := v.(Bool); ok {
			return bool(b)
		}
	}
	return false
}

// Object returns the nested object under key, or nil.
func (o Object) Object(key string) Object {
	if v, ok := o.Get(key); ok {
		if obj, ok := v.(Object); ok {
			return obj
		}
	}
	return nil
}

// Array returns the array under key, or nil.
func (o Object) Array(key string) Array {
	if v, ok := o.Get(key); ok {
		if arr, ok := v.(Array); ok {
			return arr
		}
	}
	return nil
}

// Strings returns the string elements of the array under key.
// Non-string elements are skipped.
func (o Object) Strings(key string) []string {
	arr := o.Array(key)
	if len(arr) == 0 {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, v := range arr {
		if s, ok := v.(String); ok {
			out = append(out, string(s))
		}
	}
	return out
}

// Objects returns the object elements of the array under key.
// Non-object elements decode as empty objects so indices stay aligned with
// the source array.
func (o Object) Objects(key string) []Object {
	arr := o.Array(key)
	if len(arr) == 0 {
		return nil
	}
	out := make([]Object, len(arr))
	for i, v := range arr {
		if obj, ok := v.(Object); ok {
			out[i] = obj
		}
	}
	return out
}
