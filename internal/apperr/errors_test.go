package apperr

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKind(t *testing.T) {
	tests := map[string]struct {
		err  error
		want string
	}{
		"nil":        {nil, ""},
		"network":    {&NetworkError{Op: "fetch catalog", StatusCode: 500}, "network"},
		"wrapped":    {fmt.Errorf("load: %w", &DecodeError{Op: "fetch cart", Err: errors.New("eof")}), "decode"},
		"validation": {Validation("quantity", "must be at least 1"), "validation"},
		"other":      {context.Canceled, "unknown"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, Kind(tt.err))
		})
	}
}

func TestRetryableAndStatus(t *testing.T) {
	netErr := fmt.Errorf("screen: %w", &NetworkError{Op: "fetch catalog", StatusCode: 503})

	assert.True(t, Retryable(netErr))
	assert.Equal(t, 503, StatusCode(netErr))
	assert.True(t, Retryable(&DecodeError{Op: "fetch cart", Err: errors.New("bad")}))
	assert.False(t, Retryable(Validation("limit", "must be positive")))
	assert.Equal(t, 0, StatusCode(errors.New("plain")))
}

func TestNetworkErrorMessage(t *testing.T) {
	withStatus := &NetworkError{Op: "fetch catalog", StatusCode: 500}
	assert.Equal(t, "fetch catalog: upstream returned status 500", withStatus.Error())

	transport := &NetworkError{Op: "fetch cart", Err: errors.New("connection refused")}
	assert.Equal(t, "fetch cart: request failed: connection refused", transport.Error())
	assert.ErrorContains(t, transport, "connection refused")
}
