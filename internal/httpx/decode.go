package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"reflect"

	"github.com/gorilla/schema"
	"github.com/shopspring/decimal"
)

// ErrMalformed wraps every decoding failure.
var ErrMalformed = errors.New("malformed request body")

const maxBodyBytes = 1 << 20

var formDecoder = newFormDecoder()

func newFormDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	d.RegisterConverter(decimal.Decimal{}, func(s string) reflect.Value {
		v, err := decimal.NewFromString(s)
		if err != nil {
			return reflect.Value{}
		}
		return reflect.ValueOf(v)
	})
	return d
}

// IsJSON reports whether the request body is JSON.
func IsJSON(r *http.Request) bool {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return mt == "application/json"
}

// Decode fills dst from a JSON body or, for any other content type, from the form values.
// Form values are matched on `schema` tags.
func Decode(r *http.Request, dst any) error {
	if IsJSON(r) {
		dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
		if err := dec.Decode(dst); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return nil
	}
	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := formDecoder.Decode(dst, r.PostForm); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

// DecodeFormJSON unmarshals the JSON held by form field name into dst. A missing field
// leaves dst untouched.
func DecodeFormJSON(r *http.Request, name string, dst any) error {
	raw := r.PostForm.Get(name)
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("%w: field %s: %v", ErrMalformed, name, err)
	}
	return nil
}
