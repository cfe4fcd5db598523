package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeExecute(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		variant string
		check   func(t *testing.T, msg ExecuteMsg)
	}{
		{
			name:    "increment without amount",
			input:   `{"increment":{}}`,
			variant: "increment",
			check: func(t *testing.T, msg ExecuteMsg) {
				assert.False(t, msg.Increment.Amount.IsSome())
			},
		},
		{
			name:    "increment with amount",
			input:   `{"increment":{"amount":5}}`,
			variant: "increment",
			check: func(t *testing.T, msg ExecuteMsg) {
				assert.Equal(t, int32(5), msg.Increment.Amount.UnwrapOr(1))
			},
		},
		{
			name:    "decrement with null amount",
			input:   `{"decrement":{"amount":null}}`,
			variant: "decrement",
			check: func(t *testing.T, msg ExecuteMsg) {
				assert.False(t, msg.Decrement.Amount.IsSome())
			},
		},
		{
			name:    "reset without count",
			input:   `{"reset":{}}`,
			variant: "reset",
			check: func(t *testing.T, msg ExecuteMsg) {
				assert.Equal(t, int32(0), msg.Reset.Count.UnwrapOr(0))
			},
		},
		{
			name:    "reset with count",
			input:   `{"reset":{"count":-3}}`,
			variant: "reset",
			check: func(t *testing.T, msg ExecuteMsg) {
				assert.Equal(t, int32(-3), msg.Reset.Count.UnwrapOr(0))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := DecodeExecute([]byte(tt.input))
			require.NoError(t, err)
			variant, err := msg.Variant()
			require.NoError(t, err)
			assert.Equal(t, tt.variant, variant)
			tt.check(t, msg)
		})
	}
}

func TestDecodeExecuteRejects(t *testing.T) {
	for _, input := range []string{
		`{}`,
		`{"increment":null}`,
		`{"increment":{},"decrement":{}}`,
		`{"multiply":{"amount":2}}`,
		`{"increment":{"step":2}}`,
		`not json`,
		`{"increment":{}} {"decrement":{}}`,
		`{"increment":{}}garbage`,
		`{"Increment":{}}`,
		`{"decrement":{"Amount":2}}`,
	} {
		_, err := DecodeExecute([]byte(input))
		assert.ErrorIs(t, err, ErrInvalidMessage, input)
	}
}

func TestDecodeQuery(t *testing.T) {
	msg, err := DecodeQuery([]byte(`{"get_count":{}}`))
	require.NoError(t, err)
	assert.NotNil(t, msg.GetCount)

	msg, err = DecodeQuery([]byte(`{"get_reset_count":{}}`))
	require.NoError(t, err)
	assert.NotNil(t, msg.GetResetCount)

	_, err = DecodeQuery([]byte(`{"get_count":{},"get_reset_count":{}}`))
	assert.ErrorIs(t, err, ErrInvalidMessage)

	_, err = DecodeQuery([]byte(`{"get_owner":{}}`))
	assert.ErrorIs(t, err, ErrInvalidMessage)

	_, err = DecodeQuery([]byte(`{"GET_COUNT":{}}`))
	assert.ErrorIs(t, err, ErrInvalidMessage)
}

func TestDecodeAllowsSurroundingWhitespace(t *testing.T) {
	msg, err := DecodeExecute([]byte("  {\"reset\":{\"count\":null}}\n"))
	require.NoError(t, err)
	require.NotNil(t, msg.Reset)
	assert.False(t, msg.Reset.Count.IsSome())
}

func TestEncodeResponses(t *testing.T) {
	out, err := Encode(GetCountResponse{Count: 17})
	require.NoError(t, err)
	assert.JSONEq(t, `{"count":17}`, string(out))

	out, err = Encode(GetResetCountResponse{ResetCount: 2})
	require.NoError(t, err)
	assert.JSONEq(t, `{"reset_count":2}`, string(out))
}

func TestResponseAttributes(t *testing.T) {
	res := NewResponse().
		AddAttribute("action", "increment").
		AddAttribute("count", "18")

	v, ok := res.Attr("count")
	assert.True(t, ok)
	assert.Equal(t, "18", v)

	_, ok = res.Attr("owner")
	assert.False(t, ok)

	assert.Equal(t, []any{"action", "increment", "count", "18"}, res.KeyValues())
}
