package remote

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"

	"github.com/go-playground/validator/v10"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *errorBody      `json:"error"`
	Meta    *PageMeta       `json:"meta"`
}

type errorBody struct {
	Code      string        `json:"code"`
	Message   string        `json:"message"`
	RequestID string        `json:"request_id"`
	Details   []FieldDetail `json:"details"`
}

// PageMeta is the pagination block of list responses
type PageMeta struct {
	Total      int64 `json:"total" validate:"gte=0"`
	Page       int   `json:"page" validate:"gte=1"`
	PageSize   int   `json:"page_size" validate:"gte=1"`
	TotalPages int   `json:"total_pages" validate:"gte=0"`
}

func newResponseValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

// decode turns a raw reply into out, or into a *RemoteError
func (c *Client) decode(status int, body []byte, out any) (*PageMeta, error) {
	if status == http.StatusNoContent {
		return nil, nil
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		if status >= http.StatusBadRequest {
			// a proxy or load balancer answered; there is no server message to show
			return nil, &RemoteError{Status: status, Code: ErrCodeUnknown, Message: ""}
		}
		return nil, malformed(status, "response is not a JSON envelope: %v", err)
	}

	if status >= http.StatusBadRequest || !env.Success {
		if env.Error == nil {
			return nil, &RemoteError{Status: status, Code: ErrCodeUnknown}
		}
		return nil, &RemoteError{
			Status:    status,
			Code:      env.Error.Code,
			Message:   env.Error.Message,
			RequestID: env.Error.RequestID,
			Details:   env.Error.Details,
		}
	}

	if out != nil {
		if len(env.Data) == 0 || string(env.Data) == "null" {
			return nil, malformed(status, "response has no data")
		}
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, malformed(status, "unexpected data shape: %v", err)
		}
		if err := c.checkShape(out); err != nil {
			return nil, malformed(status, "invalid data: %v", err)
		}
	}
	if env.Meta != nil {
		if err := c.validate.Struct(env.Meta); err != nil {
			return nil, malformed(status, "invalid pagination: %v", err)
		}
	}
	return env.Meta, nil
}

// checkShape validates struct results and every element of slice results
func (c *Client) checkShape(out any) error {
	v := reflect.ValueOf(out)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return errors.New("nil result")
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Struct:
		return c.validate.Struct(v.Interface())
	case reflect.Slice:
		for i := 0; i < v.Len(); i++ {
			if err := c.checkShape(v.Index(i).Interface()); err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
		}
	}
	return nil
}
