package identity

import "errors"

// Закрытый набор различимых отказов провайдера идентификации. Конкретные
// исключения Cognito приводятся к этим значениям, проверка — через errors.Is.
var (
	ErrNotAuthorized    = errors.New("incorrect username or password")
	ErrUserNotConfirmed = errors.New("user is not confirmed")
	ErrUserNotFound     = errors.New("user does not exist")
	ErrCodeMismatch     = errors.New("invalid verification code")
	ErrCodeExpired      = errors.New("verification code has expired")
	ErrUserExists       = errors.New("an account with this email already exists")
	ErrNoSession        = errors.New("no active session")
)

// UserMessage сопоставляет отказ с заголовком и пояснением для пользователя.
// Нераспознанный отказ получает общий заголовок и исходный текст ошибки.
func UserMessage(err error) (title, detail string) {
	switch {
	case errors.Is(err, ErrNotAuthorized):
		return "Credenciales incorrectas", "Verifica tu correo y contraseña"
	case errors.Is(err, ErrUserNotConfirmed):
		return "Cuenta no verificada", "Debes verificar tu correo antes de iniciar sesión"
	case errors.Is(err, ErrUserNotFound):
		return "Usuario no encontrado", "No existe una cuenta con este correo"
	case errors.Is(err, ErrCodeMismatch):
		return "Código incorrecto", "Verifica el código e intenta de nuevo"
	case errors.Is(err, ErrCodeExpired):
		return "Código expirado", "Solicita un nuevo código"
	case errors.Is(err, ErrUserExists):
		return "Este correo ya está registrado", "Intenta iniciar sesión o usa otro correo"
	case errors.Is(err, ErrNoSession):
		return "Sesión expirada", "Por favor inicia sesión nuevamente"
	}
	return "Error", err.Error()
}
