package counter

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weegigs/wee-counter-go/we"
)

func remote(t *testing.T, body string) we.RemoteCommand {
	var command we.RemoteCommand
	require.NoError(t, json.Unmarshal([]byte(body), &command))
	return command
}

func TestDecodeRemote(t *testing.T) {
	valid := map[string]Operation{
		`{"command":"counter:increment"}`:                                  Increment{},
		`{"command":"counter:decrement","payload":{}}`:                     Decrement{},
		`{"command":"counter:reset"}`:                                      Reset{},
		`{"command":"counter:increment-by","payload":{"amount":5}}`:        IncrementBy{Amount: 5},
		`{"command":"counter:increment-by","payload":{"amount":-12}}`:      IncrementBy{Amount: -12},
		`{"command":"counter:increment-by","payload":{"encoding":"application/json","data":{"amount":2}}}`: IncrementBy{Amount: 2},
	}

	for body, expected := range valid {
		op, err := DecodeRemote(remote(t, body))
		if assert.NoError(t, err, body) {
			assert.Equal(t, expected, op, body)
		}
	}

	invalid := []string{
		`{"command":"counter:increment-by"}`,
		`{"command":"counter:increment-by","payload":{}}`,
		`{"command":"counter:increment-by","payload":{"amount":null}}`,
		`{"command":"counter:increment-by","payload":{"amount":"5"}}`,
		`{"command":"counter:increment-by","payload":{"amount":5.5}}`,
		`{"command":"counter:increment-by","payload":[5]}`,
	}

	for _, body := range invalid {
		_, err := DecodeRemote(remote(t, body))
		assert.True(t, IsInvalidArgument(err), body)
		assert.True(t, we.IsBadCommand(err), body)
	}

	t.Run("unknown commands", func(t *testing.T) {
		_, err := DecodeRemote(remote(t, `{"command":"counter:multiply"}`))
		assert.Equal(t, we.CommandNotFound("counter:multiply"), err)
	})

	t.Run("unsupported payload encodings", func(t *testing.T) {
		_, err := DecodeRemote(remote(t, `{"command":"counter:increment-by","payload":{"encoding":"text/plain","data":"5"}}`))

		var encoding *we.InvalidEncodingError
		assert.ErrorAs(t, err, &encoding)
	})
}

func TestAsOperation(t *testing.T) {
	op, err := AsOperation(IncrementBy{Amount: 3})
	assert.NoError(t, err)
	assert.Equal(t, IncrementBy{Amount: 3}, op)

	command := remote(t, `{"command":"counter:reset"}`)
	op, err = AsOperation(&command)
	assert.NoError(t, err)
	assert.Equal(t, Reset{}, op)

	_, err = AsOperation(struct{ Name string }{Name: "increment"})
	assert.True(t, we.IsBadCommand(err))
}

func TestParseOperation(t *testing.T) {
	valid := map[string]Operation{
		"increment":              Increment{},
		"  INC ":                 Increment{},
		"+":                      Increment{},
		"decrement":              Decrement{},
		"-":                      Decrement{},
		"reset":                  Reset{},
		"0":                      Reset{},
		"increment-by 5":         IncrementBy{Amount: 5},
		"by -7":                  IncrementBy{Amount: -7},
		"+5":                     IncrementBy{Amount: 5},
		"-3":                     IncrementBy{Amount: -3},
		"counter:increment":      Increment{},
		"counter:increment-by 2": IncrementBy{Amount: 2},
	}

	for input, expected := range valid {
		op, err := ParseOperation(input)
		if assert.NoError(t, err, input) {
			assert.Equal(t, expected, op, input)
		}
	}

	for _, input := range []string{"increment-by", "increment-by five", "by 1 2", "+5.5", "increment 3", "reset now"} {
		_, err := ParseOperation(input)
		assert.True(t, IsInvalidArgument(err), input)
	}

	for _, input := range []string{"", "multiply 3", "5", "counter:", "COUNTER: 5"} {
		_, err := ParseOperation(input)
		var notFound we.CommandNotFoundError
		assert.ErrorAs(t, err, &notFound, input)
	}
}
