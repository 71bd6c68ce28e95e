package config

import (
	"fmt"
	"reflect"
	"strings"
)

// RangeValidator validates that a numeric field is within [min, max]
// Supports nested fields using dot notation (e.g., "Pool.Workers")
func RangeValidator(fieldName string, min, max float64) Validator {
	return ValidatorFunc(func(config interface{}) error {
		fieldVal, err := lookup(config, fieldName)
		if err != nil {
			return err
		}

		var numVal float64
		switch fieldVal.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			numVal = float64(fieldVal.Int())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			numVal = float64(fieldVal.Uint())
		case reflect.Float32, reflect.Float64:
			numVal = fieldVal.Float()
		default:
			return fmt.Errorf("field %s is not numeric", fieldName)
		}

		if numVal < min || numVal > max {
			return fmt.Errorf("field %s value %v is out of range [%v, %v]", fieldName, numVal, min, max)
		}
		return nil
	})
}

// OneOfValidator validates that a string field holds one of the allowed values
func OneOfValidator(fieldName string, allowed ...string) Validator {
	return ValidatorFunc(func(config interface{}) error {
		fieldVal, err := lookup(config, fieldName)
		if err != nil {
			return err
		}
		if fieldVal.Kind() != reflect.String {
			return fmt.Errorf("field %s is not a string", fieldName)
		}

		got := fieldVal.String()
		for _, a := range allowed {
			if got == a {
				return nil
			}
		}
		return fmt.Errorf("field %s value %q is not one of [%s]", fieldName, got, strings.Join(allowed, ", "))
	})
}

// lookup resolves a dotted field path on a struct or pointer to struct
func lookup(config interface{}, path string) (reflect.Value, error) {
	val := reflect.ValueOf(config)
	for _, part := range strings.Split(path, ".") {
		if val.Kind() == reflect.Ptr {
			val = val.Elem()
		}
		if val.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field %s not found", path)
		}
		val = val.FieldByName(part)
		if !val.IsValid() {
			return reflect.Value{}, fmt.Errorf("field %s not found", path)
		}
	}
	return val, nil
}
