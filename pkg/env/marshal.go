package env

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var durationType = reflect.TypeOf(time.Duration(0))

// MarshalEnv renders the env-tagged fields of one or more config structs as
// .env lines. Zero values are skipped unless withZero is set.
func MarshalEnv(withZero bool, configs ...any) (string, error) {
	var lines []string
	for _, c := range configs {
		v := reflect.ValueOf(c)
		if v.Kind() != reflect.Ptr || v.IsNil() || v.Elem().Kind() != reflect.Struct {
			return "", fmt.Errorf("env: expected pointer to struct, got %T", c)
		}
		v = v.Elem()
		t := v.Type()

		for i := 0; i < v.NumField(); i++ {
			field := t.Field(i)
			tag := field.Tag.Get("env")
			if tag == "" || !field.IsExported() {
				continue
			}

			// "KEY,required,notEmpty" -> KEY
			key := strings.Split(tag, ",")[0]
			if key == "" {
				continue
			}

			val := v.Field(i)
			if !withZero && val.IsZero() {
				continue
			}
			if field.Tag.Get("envSecret") == "true" && !val.IsZero() {
				lines = append(lines, key+"=********")
				continue
			}
			lines = append(lines, fmt.Sprintf("%s=%s", key, quote(formatValue(val))))
		}
	}

	result := strings.Join(lines, "\n")
	if result != "" {
		result += "\n"
	}
	return result, nil
}

func formatValue(v reflect.Value) string {
	if v.Type() == durationType {
		return time.Duration(v.Int()).String()
	}
	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10)
	case reflect.Float32:
		return strconv.FormatFloat(v.Float(), 'f', -1, 32)
	case reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64)
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	default:
		return fmt.Sprintf("%v", v.Interface())
	}
}

// quote wraps values godotenv would otherwise split or misread.
func quote(s string) string {
	if s == "" || strings.ContainsAny(s, " \t#\"'\\\n=") {
		return strconv.Quote(s)
	}
	return s
}
