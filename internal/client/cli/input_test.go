package cli

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSimpleText(t *testing.T) {
	var out bytes.Buffer

	got, err := GetSimpleText(bufio.NewReader(strings.NewReader("  hello  \n")), "Name", &out)
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
	assert.Equal(t, "Name\n> ", out.String())

	got, err = GetSimpleText(bufio.NewReader(strings.NewReader("partial")), "Name", &out)
	require.NoError(t, err)
	assert.Equal(t, "partial", got)

	_, err = GetSimpleText(bufio.NewReader(strings.NewReader("")), "Name", &out)
	assert.Error(t, err)
}

func TestGetSecret_PipedInput(t *testing.T) {
	var out bytes.Buffer
	in := strings.NewReader("s3cret\n")

	got, err := GetSecret(in, bufio.NewReader(in), "Passphrase", &out)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", got)
}

func TestGetMultiline(t *testing.T) {
	var out bytes.Buffer
	r := bufio.NewReader(strings.NewReader("first\nsecond\n\nignored\n"))

	got, err := GetMultiline(r, "Dream", &out)
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond", got)

	got, err = GetMultiline(bufio.NewReader(strings.NewReader("last line")), "Dream", &out)
	require.NoError(t, err)
	assert.Equal(t, "last line", got)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitList("a, b,,c "))
	assert.Equal(t, []string{}, splitList(""))
}

func TestSplitLine(t *testing.T) {
	tests := []struct {
		in      string
		want    []string
		wantErr bool
	}{
		{in: "", want: nil},
		{in: "dream list", want: []string{"dream", "list"}},
		{in: `share X --text "hello world"`, want: []string{"share", "X", "--text", "hello world"}},
		{in: `a 'it''s' b`, want: []string{"a", "its", "b"}},
		{in: `--title ""`, want: []string{"--title", ""}},
		{in: `"open`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := splitLine(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
