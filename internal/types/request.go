// Package types provides the request and response shapes of the recommendation API.
package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// DefaultN is the number of recommendations returned when the request does not say.
const DefaultN = 5

// Input formats accepted in RecommendRequest.Format.
const (
	FormatText = "text"
	FormatHTML = "html"
)

var validate = validator.New()

// RecommendRequest is the body of POST /recommend.
type RecommendRequest struct {
	Text   FlexText `json:"text"`
	N      FlexInt  `json:"n"`
	Format string   `json:"format,omitempty" validate:"omitempty,oneof=text html"`
}

// Limit returns the requested number of results, or DefaultN when absent or unreadable.
func (r *RecommendRequest) Limit() int {
	if !r.N.Valid {
		return DefaultN
	}
	return r.N.Value
}

// Validate validates the RecommendRequest using the validator. Any readable n is
// accepted; scorers return nothing for n <= 0.
func (r *RecommendRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return toRequestError(err)
	}
	return nil
}

// DecodeRecommendRequest parses a request body. An empty body is an empty request.
func DecodeRecommendRequest(body []byte) (*RecommendRequest, error) {
	var req RecommendRequest
	if len(bytes.TrimSpace(body)) == 0 {
		return &req, nil
	}
	if err := json.Unmarshal(body, &req); err != nil {
		var reqErr *RequestError
		if errors.As(err, &reqErr) {
			return nil, reqErr
		}
		return nil, &RequestError{Field: "(root)", Message: "invalid JSON body: " + err.Error()}
	}
	return &req, nil
}

// RequestError reports a request field that cannot be used.
type RequestError struct {
	Field   string
	Message string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("invalid '%s' parameter: %s", e.Field, e.Message)
}

func toRequestError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &RequestError{
			Field:   strings.ToLower(fe.Field()),
			Message: fmt.Sprintf("failed '%s' check", fe.Tag()),
		}
	}
	return err
}

// FlexText is request text that also accepts JSON numbers and booleans, which are
// kept in their literal form, and null, which reads as empty. Objects and arrays
// are rejected.
type FlexText string

// UnmarshalJSON implements json.Unmarshaler.
func (t *FlexText) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		*t = ""
		return nil
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		*t = FlexText(s)
	case 't':
		*t = "True"
	case 'f':
		*t = "False"
	case '{', '[':
		return &RequestError{Field: "text", Message: "must be a string"}
	default:
		var num json.Number
		if err := json.Unmarshal(raw, &num); err != nil {
			return &RequestError{Field: "text", Message: "must be a string"}
		}
		*t = FlexText(num.String())
	}
	return nil
}

// String returns the text.
func (t FlexText) String() string {
	return string(t)
}

// FlexInt is a leniently parsed integer: numbers are truncated, numeric strings are
// parsed and booleans count as 1 or 0. Anything else leaves it unset.
type FlexInt struct {
	Value int
	Valid bool
}

// UnmarshalJSON implements json.Unmarshaler. It never fails.
func (n *FlexInt) UnmarshalJSON(data []byte) error {
	*n = FlexInt{}
	raw := bytes.TrimSpace(data)
	if len(raw) == 0 {
		return nil
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			*n = FlexInt{Value: v, Valid: true}
		}
	case 't':
		*n = FlexInt{Value: 1, Valid: true}
	case 'f':
		*n = FlexInt{Value: 0, Valid: true}
	case 'n', '{', '[':
	default:
		f, err := strconv.ParseFloat(string(raw), 64)
		if err != nil || math.IsInf(f, 0) || math.IsNaN(f) || math.Abs(f) > math.MaxInt32 {
			return nil
		}
		*n = FlexInt{Value: int(f), Valid: true}
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (n FlexInt) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(n.Value)), nil
}
