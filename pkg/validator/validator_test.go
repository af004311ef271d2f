package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type joinInput struct {
	RoomCode string `json:"room_code" validate:"required,len=6,alphanum,uppercase"`
	Name     string `json:"name" validate:"max=32"`
}

func TestValidate(t *testing.T) {
	v := NewValidator()

	errs, ok := v.Validate(joinInput{RoomCode: "Q7K2PX", Name: "Wes"})
	assert.True(t, ok)
	assert.Empty(t, errs)
	assert.NoError(t, Err(errs))

	errs, ok = v.Validate(joinInput{RoomCode: "q7k2"})
	require.False(t, ok)
	require.NotEmpty(t, errs)
	assert.Equal(t, "room_code", errs[0].Field)
	assert.Error(t, Err(errs))
}

type codeInput struct {
	Code string `json:"code" validate:"required,evenlen"`
}

func TestRegisterStringRule(t *testing.T) {
	v := NewValidator()
	require.NoError(t, v.RegisterStringRule("evenlen", func(s string) bool { return len(s)%2 == 0 }))

	_, ok := v.Validate(codeInput{Code: "abcd"})
	assert.True(t, ok)

	errs, ok := v.Validate(codeInput{Code: "abc"})
	require.False(t, ok)
	require.Len(t, errs, 1)
	assert.Equal(t, "code", errs[0].Field)
	assert.Equal(t, "EVENLEN", errs[0].Code)
	assert.Equal(t, "code is invalid", errs[0].Message)
}
