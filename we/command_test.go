package we

import (
	"context"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
)

type TestCommand struct{}

type TestNamedCommand struct{}

func (TestNamedCommand) TypeName() string {
	return "test:named"
}

func resolvesExplicitName(t *testing.T) {
	assert.Equal(t, CommandName("test:named"), CommandNameOf(TestNamedCommand{}))
}

func resolvesImplicitName(t *testing.T) {
	assert.Equal(t, CommandName("we:test-command"), CommandNameOf(TestCommand{}))
	assert.Equal(t, CommandName("we:test-command"), CommandNameOf(&TestCommand{}))
}

func resolvesRemoteName(t *testing.T) {
	remote := RemoteCommand{CommandName: "test:remote"}
	assert.Equal(t, CommandName("test:remote"), CommandNameOf(remote))
	assert.Equal(t, CommandName("test:remote"), CommandNameOf(&remote))
}

func decodesBarePayload(t *testing.T) {
	var command RemoteCommand
	err := json.Unmarshal([]byte(`{"command":"test:remote","payload":{"value":3}}`), &command)

	assert.NoError(t, err)
	assert.Equal(t, JSONEncoding, command.Payload.Encoding)
	assert.JSONEq(t, `{"value":3}`, string(command.Payload.Data))
}

func decodesEncodedPayload(t *testing.T) {
	var command RemoteCommand
	err := json.Unmarshal([]byte(`{"command":"test:remote","payload":{"encoding":"text/plain","data":"3"}}`), &command)

	assert.NoError(t, err)
	assert.Equal(t, "text/plain", command.Payload.Encoding)

	var value int
	err = UnmarshalFromData(command.Payload, &value)
	assert.True(t, IsBadCommand(err))
}

func decodesPayloadWithContext(t *testing.T) {
	var command RemoteCommand
	err := json.UnmarshalContext(context.Background(), []byte(`{"command":"test:remote","payload":{"amount":5}}`), &command)

	assert.NoError(t, err)
	assert.Equal(t, CommandName("test:remote"), command.CommandName)
	assert.Equal(t, JSONEncoding, command.Payload.Encoding)
	assert.JSONEq(t, `{"amount":5}`, string(command.Payload.Data))

	var envelope RemoteCommand
	err = json.UnmarshalContext(context.Background(), []byte(`{"command":"test:remote","payload":{"encoding":"text/plain","data":"5"}}`), &envelope)

	assert.NoError(t, err)
	assert.Equal(t, "text/plain", envelope.Payload.Encoding)
}

func TestCommands(t *testing.T) {
	t.Run("resolves explicit name", resolvesExplicitName)
	t.Run("resolves implicit name", resolvesImplicitName)
	t.Run("resolves remote name", resolvesRemoteName)
	t.Run("decodes bare payload", decodesBarePayload)
	t.Run("decodes encoded payload", decodesEncodedPayload)
	t.Run("decodes payload with a context", decodesPayloadWithContext)
	t.Run("unknown commands are bad commands", func(t *testing.T) {
		assert.True(t, IsBadCommand(CommandNotFound("test:missing")))
		assert.False(t, IsBadCommand(RevisionConflict))
	})
}
