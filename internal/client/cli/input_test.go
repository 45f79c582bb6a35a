package cli

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/NikhilKartha5/ai-journal/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSimpleText(t *testing.T) {
	var out bytes.Buffer
	reader := bufio.NewReader(strings.NewReader("hello world\n"))

	text, err := GetSimpleText(reader, "Say something", &out)
	require.NoError(t, err)
	assert.Equal(t, "hello world", text)
	assert.Contains(t, out.String(), "Say something")
}

func TestGetSimpleText_PartialLineBeforeEOF(t *testing.T) {
	var out bytes.Buffer
	reader := bufio.NewReader(strings.NewReader("no newline"))

	text, err := GetSimpleText(reader, "Say something", &out)
	require.NoError(t, err)
	assert.Equal(t, "no newline", text)
}

func TestGetPassword_UsesSeam(t *testing.T) {
	orig := readPassword
	t.Cleanup(func() { readPassword = orig })
	readPassword = func(fd int) ([]byte, error) { return []byte("s3cret"), nil }

	var out bytes.Buffer
	pw, err := GetPassword(&out, "Password: ")
	require.NoError(t, err)
	assert.Equal(t, []byte("s3cret"), pw)
	assert.Contains(t, out.String(), "Password: ")
}

func TestGetMultiline(t *testing.T) {
	var out bytes.Buffer
	reader := bufio.NewReader(strings.NewReader("line one\nline two\n\nignored\n"))

	text, err := GetMultiline(reader, "Entry", &out)
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two", text)
}

func TestSplitTags(t *testing.T) {
	assert.Nil(t, splitTags(""))
	assert.Equal(t, []string{"work", "health"}, splitTags("work, health"))
	assert.Equal(t, []string{"one"}, splitTags(" one , ,"))
}

func TestParseEntryID(t *testing.T) {
	temp := models.NewTempID()
	parsed := parseEntryID(temp.Key())
	assert.Equal(t, temp, parsed)

	// Raw ids as shown in listings are accepted without the key prefix.
	assert.Equal(t, models.ServerID("abc123"), parseEntryID("abc123"))
	assert.Equal(t, models.TempID(42), parseEntryID("42"))
}
