package helpers

import (
	"encoding/json"
	"errors"
	"net/http"

	"eventbooking/internal/domain"
	"eventbooking/internal/validation"
)

// maxJSONBody bounds JSON request bodies.
const maxJSONBody = 1 << 20

// DecodeAndValidate decodes the request body into dest (with DisallowUnknownFields)
// and, when v is non-nil, validates dest against its struct tags. On failure it writes
// a 400 JSON error and returns false; otherwise returns true.
// Callers should return immediately when DecodeAndValidate returns false.
func DecodeAndValidate(w http.ResponseWriter, r *http.Request, v *validation.Validator, dest any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body: "+err.Error())
		return false
	}
	if v == nil {
		return true
	}
	if err := v.Validate(dest); err != nil {
		WriteValidationError(w, err)
		return false
	}
	return true
}

// WriteValidationError writes a 400 carrying the field-level code when err is a
// domain.ValidationError, or bad_request otherwise.
func WriteValidationError(w http.ResponseWriter, err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		WriteJSONError(w, http.StatusBadRequest, verr.Code, verr.Message)
		return
	}
	WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
}
