package resilience

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("invalid region"), false},
		{"explicit", NewTransientError(errors.New("overloaded"), 503), true},
		{"wrapped", fmt.Errorf("geocode: %w", NewTransientError(errors.New("slow down"), 429)), true},
		{"conn reset", fmt.Errorf("read: %w", syscall.ECONNRESET), true},
		{"conn refused", fmt.Errorf("dial: %w", syscall.ECONNREFUSED), true},
		{"deadline", context.DeadlineExceeded, true},
		{"message", errors.New("read tcp: i/o timeout"), true},
		{"eof message", errors.New("Get \"x\": unexpected EOF"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestIsTransientHTTPStatus(t *testing.T) {
	for _, code := range []int{408, 429, 500, 502, 503, 504} {
		assert.True(t, IsTransientHTTPStatus(code), code)
	}
	for _, code := range []int{200, 400, 401, 403, 404, 501} {
		assert.False(t, IsTransientHTTPStatus(code), code)
	}
}

func TestCheckStatus(t *testing.T) {
	assert.NoError(t, CheckStatus("nominatim", http.StatusOK))

	err := CheckStatus("nominatim", http.StatusTooManyRequests)
	var te *TransientError
	assert.ErrorAs(t, err, &te)
	assert.Equal(t, 429, te.StatusCode)

	err = CheckStatus("catalog", http.StatusNotFound)
	assert.EqualError(t, err, "catalog: unexpected status 404")
	assert.False(t, IsTransient(err))
}

func TestTransientError_Unwrap(t *testing.T) {
	inner := errors.New("root")
	te := NewTransientError(inner, 0)
	assert.ErrorIs(t, te, inner)
	assert.Equal(t, "root", te.Error())
}
