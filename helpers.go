package proxygen

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
)

// setDefaultValues walks obj's fields via reflection and fills any
// zero-valued field tagged `default:"..."` with the tag's value. Used to
// apply config.go's defaults after YAML decode, since yaml.v3 leaves
// unset fields zero rather than merging in struct defaults.
func setDefaultValues(obj interface{}) {
	tof := reflect.TypeOf(obj).Elem()
	vof := reflect.ValueOf(obj).Elem()

	for i := 0; i < vof.NumField(); i++ {
		vf := vof.Field(i)
		v := tof.Field(i).Tag.Get("default")

		if v == "" || !vf.IsZero() {
			continue
		}

		switch vf.Kind() {
		case reflect.String:
			vf.SetString(v)
		case reflect.Int:
			if intv, err := strconv.ParseInt(v, 10, 64); err == nil {
				vf.SetInt(intv)
			}
		case reflect.Bool:
			if boolv, err := strconv.ParseBool(v); err == nil {
				vf.SetBool(boolv)
			}
		case reflect.Slice:
			if vf.Type().Elem().Kind() == reflect.String {
				values := strings.Split(v, ",")
				vf.Set(reflect.ValueOf(values))
			}
		}
	}
}

// validate walks obj's fields and exits the process with a message for
// the first field tagged `validate:"required"` still holding its zero
// value after defaulting.
func validate(obj interface{}) {
	tof := reflect.TypeOf(obj).Elem()
	vof := reflect.ValueOf(obj).Elem()

	for i := 0; i < vof.NumField(); i++ {
		tf := tof.Field(i)
		vf := vof.Field(i)

		v := tf.Tag.Get("validate")
		if v == "" {
			continue
		}

		if strings.Contains(v, "required") && vf.IsZero() {
			fmt.Printf("field %q is required\n", tf.Name)
			os.Exit(1)
		}
	}
}
