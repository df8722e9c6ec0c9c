package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupPayload struct {
	Name     string `json:"name" validate:"required,min=2,personname"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,password"`
}

func TestValidateStructValid(t *testing.T) {
	errs := ValidateStruct(signupPayload{
		Name:     "María López",
		Email:    "maria@example.com",
		Password: "Str0ng&Pass",
	})
	assert.Nil(t, errs)
}

func TestValidateStructReportsJSONFieldNames(t *testing.T) {
	errs := ValidateStruct(signupPayload{})
	require.Len(t, errs, 3)

	fields := make([]string, 0, len(errs))
	for _, fe := range errs {
		fields = append(fields, fe.Field)
		assert.NotEmpty(t, fe.Message)
	}
	assert.ElementsMatch(t, []string{"name", "email", "password"}, fields)
}

func TestValidateStructWeakPassword(t *testing.T) {
	errs := ValidateStruct(signupPayload{
		Name:     "Carmen",
		Email:    "carmen@example.com",
		Password: "onlylowercase",
	})
	require.Len(t, errs, 1)
	assert.Equal(t, "password", errs[0].Field)
}

func TestValidateStructNameCharset(t *testing.T) {
	errs := ValidateStruct(signupPayload{
		Name:     "R2-D2",
		Email:    "droid@example.com",
		Password: "Str0ng&Pass",
	})
	require.Len(t, errs, 1)
	assert.Equal(t, "name", errs[0].Field)
}

type cardPayload struct {
	Last4  string `json:"last4" validate:"required,last4"`
	Expiry string `json:"expiry" validate:"required,cardexpiry"`
}

func TestValidateStructCardRules(t *testing.T) {
	assert.Nil(t, ValidateStruct(cardPayload{Last4: "4242", Expiry: "09/26"}))

	errs := ValidateStruct(cardPayload{Last4: "42421", Expiry: "13/26"})
	require.Len(t, errs, 2)
}
