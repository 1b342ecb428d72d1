// Package extract decodes typed values from requests. Failures are returned as request errors so handlers can
// return them as is.
package extract

import (
	"encoding/json"
	"reflect"

	"github.com/advdv/xeno"
	"github.com/cockroachdb/errors"
	"github.com/tidwall/gjson"
)

// Path binds the matched path parameters into T. T is either a map[string]string or a struct whose fields are
// matched by their "path" tag, or their lower-cased name when untagged.
func Path[T any](req *xeno.Request) (T, error) {
	var v T
	params := req.Params()
	if params == nil {
		return v, xeno.BadRequest("No path parameters found")
	}

	vals := make(map[string][]string, len(params))
	for k, p := range params {
		vals[k] = []string{p}
	}

	if err := bind(&v, "path", vals); err != nil {
		return v, xeno.BadRequest("Failed to deserialize path params: " + err.Error())
	}

	return v, nil
}

// Query binds the query string into T. T is either a map[string]string, holding the first value of each key, or
// a struct whose fields are matched by their "query" tag. Slice fields receive every value.
func Query[T any](req *xeno.Request) (T, error) {
	var v T
	if err := bind(&v, "query", req.Query()); err != nil {
		return v, xeno.BadRequest("Failed to deserialize query params: " + err.Error())
	}

	return v, nil
}

// JSON decodes the body into T.
func JSON[T any](req *xeno.Request) (T, error) {
	var v T
	if err := json.Unmarshal(req.Body, &v); err != nil {
		return v, xeno.WrapJSON(err)
	}

	return v, nil
}

// Field looks up a single value in a JSON body with a gjson path, e.g. "user.name" or "items.#". A body that is
// not JSON fails with a JSON error, a missing field as unprocessable.
func Field(req *xeno.Request, path string) (gjson.Result, error) {
	if !gjson.ValidBytes(req.Body) {
		return gjson.Result{}, xeno.WrapJSON(errors.New("invalid JSON body"))
	}

	res := gjson.GetBytes(req.Body, path)
	if !res.Exists() {
		return res, xeno.UnprocessableEntity("missing field " + path)
	}

	return res, nil
}

func bind(target any, tag string, vals map[string][]string) error {
	rv := reflect.ValueOf(target).Elem()
	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String &&
		rv.Type().Elem().Kind() == reflect.String {
		m := reflect.MakeMapWithSize(rv.Type(), len(vals))
		for k, v := range vals {
			if len(v) > 0 {
				m.SetMapIndex(reflect.ValueOf(k).Convert(rv.Type().Key()), reflect.ValueOf(v[0]).Convert(rv.Type().Elem()))
			}
		}

		rv.Set(m)

		return nil
	}

	return bindToStruct(target, tag, vals)
}
