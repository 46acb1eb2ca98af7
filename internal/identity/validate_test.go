package identity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("juan@example.com"))
	assert.Error(t, ValidateEmail(""))
	assert.Error(t, ValidateEmail("not-an-email"))
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{name: "valid", password: "Secret1!"},
		{name: "too short", password: "Se1!", wantErr: true},
		{name: "no uppercase", password: "secret1!", wantErr: true},
		{name: "no lowercase", password: "SECRET1!", wantErr: true},
		{name: "no digit", password: "Secreto!", wantErr: true},
		{name: "no special char", password: "Secreto1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	assert.NoError(t, ValidateName("José María"))
	assert.NoError(t, ValidateName("Ñoño"))
	assert.Error(t, ValidateName("J"))
	assert.Error(t, ValidateName("Juan123"))

	long := make([]rune, 51)
	for i := range long {
		long[i] = 'a'
	}
	assert.Error(t, ValidateName(string(long)))
}

func TestValidateCode(t *testing.T) {
	assert.NoError(t, ValidateCode("123456"))
	assert.Error(t, ValidateCode("12345"))
	assert.Error(t, ValidateCode("1234567"))
	assert.Error(t, ValidateCode("12a456"))
}

func TestValidateSignUp_JoinsErrors(t *testing.T) {
	err := ValidateSignUp(SignUpInput{
		Email:     "bad",
		Password:  "bad",
		FirstName: "J",
		LastName:  "Pérez",
	})
	assert.Error(t, err)
}

func TestUserMessage(t *testing.T) {
	title, detail := UserMessage(ErrNotAuthorized)
	assert.Equal(t, "Credenciales incorrectas", title)
	assert.Equal(t, "Verifica tu correo y contraseña", detail)

	// Обёрнутая ошибка распознаётся через errors.Is.
	title, _ = UserMessage(errors.Join(errors.New("ctx"), ErrUserExists))
	assert.Equal(t, "Este correo ya está registrado", title)

	title, detail = UserMessage(errors.New("weird failure"))
	assert.Equal(t, "Error", title)
	assert.Equal(t, "weird failure", detail)
}
