package predict

import "fmt"

// RequestFailedError covers non-2xx responses and transport failures.
// StatusCode is zero when no response was received.
type RequestFailedError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *RequestFailedError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("send request: %v", e.Err)
	}
	if e.Message != "" {
		return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

func (e *RequestFailedError) Unwrap() error {
	return e.Err
}

func (e *RequestFailedError) displayText() string {
	if e.StatusCode == 0 {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("Request failed with status %d", e.StatusCode)
}

// InvalidResponseError is returned when a 2xx body is not valid JSON.
type InvalidResponseError struct {
	StatusCode int
	Err        error
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("decode response body: %v", e.Err)
}

func (e *InvalidResponseError) Unwrap() error {
	return e.Err
}
