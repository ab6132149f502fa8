package transport

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/agentstation/bibsync/pkg/errors"
	"github.com/agentstation/bibsync/pkg/logging"
)

// errorBody is the JSON error object returned by the service.
type errorBody struct {
	Object  string `json:"object"`
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// DecodeResponse decodes a JSON response into the target structure. Non
// 2xx responses become an *errors.APIError carrying the service's error
// code and message when the body has them.
func DecodeResponse(resp *http.Response, service string, target any) error {
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.Warn().Err(err).Msg("Failed to close response body")
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		apiErr := errors.NewAPIError(service, 0, "reading response body: "+err.Error())
		apiErr.Err = err
		return apiErr
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := errors.NewAPIError(service, resp.StatusCode, strings.TrimSpace(string(body)))
		if resp.Request != nil {
			apiErr.Endpoint = resp.Request.Method + " " + resp.Request.URL.Path
		}
		var eb errorBody
		if json.Unmarshal(body, &eb) == nil && eb.Message != "" {
			apiErr.Code = eb.Code
			apiErr.Message = eb.Message
		}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if target == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, target); err != nil {
		return errors.WrapParse("json", "response", err)
	}
	return nil
}

// RetryAfter parses a Retry-After header given in seconds or as an HTTP
// date.
func RetryAfter(v string) (time.Duration, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil && secs >= 0 {
		return time.Duration(secs * float64(time.Second)), true
	}
	if t, err := http.ParseTime(v); err == nil {
		return max(time.Until(t), 0), true
	}
	return 0, false
}
