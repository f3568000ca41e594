package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	type room struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}

	t.Run("string is stored verbatim", func(t *testing.T) {
		raw, err := encode("token")
		require.NoError(t, err)
		assert.Equal(t, "token", string(raw))

		var out string
		require.NoError(t, decode(raw, &out))
		assert.Equal(t, "token", out)
	})

	t.Run("struct round trips as json", func(t *testing.T) {
		raw, err := encode(room{ID: 3, Name: "Executive Suite"})
		require.NoError(t, err)
		assert.JSONEq(t, `{"id":3,"name":"Executive Suite"}`, string(raw))

		var out room
		require.NoError(t, decode(raw, &out))
		assert.Equal(t, room{ID: 3, Name: "Executive Suite"}, out)
	})

	t.Run("unencodable value", func(t *testing.T) {
		_, err := encode(make(chan int))
		assert.Error(t, err)
	})

	t.Run("corrupt payload", func(t *testing.T) {
		var out room
		assert.Error(t, decode([]byte("{"), &out))
	})
}
