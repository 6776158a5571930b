package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JiaLiangChen99/robyn-admin/internal/session"
)

func TestDecodeRoundTrip(t *testing.T) {
	codec := session.NewCodec("session")
	header := codec.Encode(session.Payload{UserID: 42, Language: "zh_CN"})

	p, ok := codec.Decode(header)
	require.True(t, ok)
	assert.Equal(t, int64(42), p.UserID)
	assert.Equal(t, "zh_CN", p.Language)
}

func TestDecodeAbsent(t *testing.T) {
	codec := session.NewCodec("session")

	cases := map[string]string{
		"empty header":      "",
		"no session cookie": "theme=dark; lang=en",
		"empty value":       "session=; HttpOnly",
		"malformed json":    "session={user_id:1; Path=/",
		"non object":        "session=42",
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			_, ok := codec.Decode(header)
			assert.False(t, ok)
		})
	}
}

func TestDecodeDoesNotSplitJSONValue(t *testing.T) {
	codec := session.NewCodec("session")
	// The JSON value contains "=" inside a string; only the first "=" of the
	// cookie pair may be used as the delimiter.
	header := `other=1; session={"user_id":7,"language":"x=y"}; Path=/`

	p, ok := codec.Decode(header)
	require.True(t, ok)
	assert.Equal(t, int64(7), p.UserID)
	assert.Equal(t, "x=y", p.Language)
}

func TestDecodeIgnoresAttributesWithoutEquals(t *testing.T) {
	codec := session.NewCodec("session")
	header := `HttpOnly; session={"user_id":3}; Secure`

	p, ok := codec.Decode(header)
	require.True(t, ok)
	assert.Equal(t, int64(3), p.UserID)
	assert.Empty(t, p.Language)
}

func TestEncodeExpired(t *testing.T) {
	codec := session.NewCodec("session")
	value := codec.EncodeExpired()
	assert.Contains(t, value, "session=;")
	assert.Contains(t, value, "Max-Age=0")
}
