package identity

import (
	"errors"
	"net/mail"
	"regexp"
)

// Правила совпадают с проверками форм веб-клиента; сообщения показываются
// пользователю как есть.
var (
	nameRe    = regexp.MustCompile(`^[a-zA-ZáéíóúÁÉÍÓÚñÑ\s]+$`)
	upperRe   = regexp.MustCompile(`[A-Z]`)
	lowerRe   = regexp.MustCompile(`[a-z]`)
	digitRe   = regexp.MustCompile(`[0-9]`)
	specialRe = regexp.MustCompile(`[^A-Za-z0-9]`)
	codeRe    = regexp.MustCompile(`^\d{6}$`)
)

// ValidateEmail проверяет форму адреса электронной почты.
func ValidateEmail(email string) error {
	if email == "" {
		return errors.New("El email es requerido")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return errors.New("Ingresa un email válido")
	}
	return nil
}

// ValidatePassword проверяет требования к паролю: длина не менее восьми
// символов, заглавная и строчная буквы, цифра и специальный символ.
func ValidatePassword(password string) error {
	switch {
	case len(password) < 8:
		return errors.New("La contraseña debe tener al menos 8 caracteres")
	case !upperRe.MatchString(password):
		return errors.New("Debe contener al menos una letra mayúscula")
	case !lowerRe.MatchString(password):
		return errors.New("Debe contener al menos una letra minúscula")
	case !digitRe.MatchString(password):
		return errors.New("Debe contener al menos un número")
	case !specialRe.MatchString(password):
		return errors.New("Debe contener al menos un carácter especial")
	}
	return nil
}

// ValidateName проверяет имя или фамилию: от двух до пятидесяти букв.
func ValidateName(name string) error {
	runes := []rune(name)
	switch {
	case len(runes) < 2:
		return errors.New("El nombre debe tener al menos 2 caracteres")
	case len(runes) > 50:
		return errors.New("El nombre no puede exceder 50 caracteres")
	case !nameRe.MatchString(name):
		return errors.New("El nombre solo puede contener letras")
	}
	return nil
}

// ValidateCode проверяет код подтверждения: ровно шесть цифр.
func ValidateCode(code string) error {
	if !codeRe.MatchString(code) {
		return errors.New("El código debe tener 6 dígitos")
	}
	return nil
}

// ValidateSignUp проверяет все поля регистрации разом.
func ValidateSignUp(in SignUpInput) error {
	return errors.Join(
		ValidateName(in.FirstName),
		ValidateName(in.LastName),
		ValidateEmail(in.Email),
		ValidatePassword(in.Password),
	)
}
