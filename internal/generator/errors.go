package generator

import (
	"errors"
)

var (
	ErrInvalidInput         = errors.New("invalid generation input")
	ErrMissingConfiguration = errors.New("generation service is not configured")
	ErrEmptyResponse        = errors.New("the AI model returned an empty response")
	ErrMalformedResponse    = errors.New("failed to get a valid response from the AI model")
)

// TransientError 可重试的模型调用错误（限流、5xx、网络错误）
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return "transient model error: " + e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// IsTransient 判断错误是否可重试
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
