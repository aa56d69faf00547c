package codec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/encoding"

	"github.com/oggyb/muzz-chat/internal/api/accountpb"
	"github.com/oggyb/muzz-chat/internal/api/codec"
)

func TestRegisteredAsJSON(t *testing.T) {
	c := encoding.GetCodec(codec.Name)
	require.NotNil(t, c)
	assert.Equal(t, "json", c.Name())

	raw, err := c.Marshal(&accountpb.User{Id: "7", Username: "amy", Gender: "female"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"7","username":"amy","gender":"female"}`, string(raw))
}
