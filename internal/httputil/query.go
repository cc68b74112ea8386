package httputil

import (
	"net/url"
	"reflect"
)

// GetURLFields inspects which query parameters of url are set on the
// filter struct.
//
// queryFields contains the names of all fields that can be passed directly
// to a gorm Where statement to select the filtered columns. gorm takes
// these as any, so the slice is []any.
//
// setFields contains the names of all fields present in the query string,
// including the ones excluded from queryFields with the filterField:"false"
// struct tag. This allows filtering for zero values without resorting to
// pointer fields.
func GetURLFields(url *url.URL, filter any) ([]any, []string) {
	var queryFields []any
	var setFields []string

	val := reflect.Indirect(reflect.ValueOf(filter))
	for i := 0; i < val.NumField(); i++ {
		field := val.Type().Field(i).Name
		param := val.Type().Field(i).Tag.Get("form")
		filterField := val.Type().Field(i).Tag.Get("filterField")

		if url.Query().Has(param) {
			setFields = append(setFields, field)

			if filterField != "false" {
				queryFields = append(queryFields, field)
			}
		}
	}

	return queryFields, setFields
}
