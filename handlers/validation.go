package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/camden-git/electoralbackend/repository"
)

const (
	msgInvalidBody  = "Cuerpo de la solicitud inválido"
	msgBodyTooLarge = "El cuerpo de la solicitud es demasiado grande"
	msgInvalidID    = "ID inválido"
)

// maxJSONBodyBytes caps every JSON request body.
const maxJSONBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report fields by their JSON name so messages can be keyed the same way
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	return v
}

// validationMessages maps "<json field>.<tag>" to the message shown to the client.
type validationMessages map[string]string

// validatePayload runs the struct tags of payload and converts the first
// failure into a ValidationError carrying the matching message.
func validatePayload(payload interface{}, messages validationMessages) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	fe := fieldErrs[0]
	msg, ok := messages[fe.Field()+"."+fe.Tag()]
	if !ok {
		msg = messages[fe.Field()]
	}
	if msg == "" {
		msg = "Valor inválido: " + fe.Field()
	}
	return repository.NewValidationError(fe.Field(), msg)
}

// decodeJSON decodes the request body into dst, answering 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, msgBodyTooLarge, nil)
			return false
		}
		writeError(w, http.StatusBadRequest, msgInvalidBody, nil)
		return false
	}
	return true
}

// parseIDParam reads a positive numeric URL parameter.
func parseIDParam(r *http.Request, name string) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, name), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// parseOptionalQueryID reads an optional positive numeric query parameter.
// The second result is false when the value is present but malformed.
func parseOptionalQueryID(r *http.Request, name string) (*uint, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return nil, false
	}
	v := uint(id)
	return &v, true
}

// optionalID is a JSON identifier that accepts a number, a numeric string,
// an empty string or null. Malformed input is recorded instead of failing the
// whole decode so the handler can answer with a field-specific message.
type optionalID struct {
	Set     bool
	Value   uint
	Invalid bool
}

func (o *optionalID) UnmarshalJSON(data []byte) error {
	*o = optionalID{}
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			o.Invalid = true
			return nil
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			return nil
		}
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		o.Invalid = true
		return nil
	}
	o.Set = true
	o.Value = uint(id)
	return nil
}

// Ptr returns the identifier or nil when absent.
func (o optionalID) Ptr() *uint {
	if !o.Set {
		return nil
	}
	v := o.Value
	return &v
}

// optionalTime distinguishes an absent key from an explicit null.
type optionalTime struct {
	Present bool
	Value   *time.Time
	Invalid bool
}

func (o *optionalTime) UnmarshalJSON(data []byte) error {
	*o = optionalTime{Present: true}
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == `""` {
		return nil
	}
	var t time.Time
	if err := json.Unmarshal(data, &t); err != nil {
		o.Invalid = true
		return nil
	}
	o.Value = &t
	return nil
}

// trimmedOrNil trims s and maps the empty result to nil.
func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
