package client

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"short", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"ascii", "hello world", 5, "hello"},
		{"two byte rune on boundary", "aé", 2, "a"},
		{"three byte rune", "ab夢", 4, "ab"},
		{"nothing fits", "夢", 2, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.in, tt.n)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestHTTPClient_LongPlainBodyKeepsValidUTF8(t *testing.T) {
	body := "a" + strings.Repeat("ж", 150)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, body)
	})

	_, err := c.GetDream(context.Background(), "d1")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, utf8.ValidString(apiErr.Detail))
	assert.Len(t, apiErr.Detail, maxDetailBytes-1)
	assert.True(t, strings.HasPrefix(body, apiErr.Detail))
}
