// Package identity реализует клиентский жизненный цикл сессии поверх
// управляемого провайдера идентификации: регистрацию, подтверждение почты,
// вход, выход и выдачу токенов для авторизованных вызовов API.
package identity

import "context"

// Шаги многошаговых потоков провайдера, на которые ветвится вызывающий код.
const (
	StepConfirmSignUp = "CONFIRM_SIGN_UP"
	StepDone          = "DONE"
)

// SignUpInput описывает данные регистрации нового пользователя.
type SignUpInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// SignUpResult содержит идентификатор пользователя и следующий требуемый шаг.
type SignUpResult struct {
	UserID   string
	NextStep string
}

// SignInResult описывает исход входа: либо сессия установлена, либо
// провайдер требует дополнительный шаг.
type SignInResult struct {
	SignedIn bool
	NextStep string
}

// Provider описывает контракт провайдера идентификации, используемый
// менеджером сессии.
type Provider interface {
	SignUp(ctx context.Context, in SignUpInput) (SignUpResult, error)
	ConfirmSignUp(ctx context.Context, email, code string) error
	ResendConfirmationCode(ctx context.Context, email string) error
	SignIn(ctx context.Context, email, password string) (SignInResult, error)
	SignOut(ctx context.Context) error
	CurrentSession(ctx context.Context) (*Tokens, error)
	UserAttributes(ctx context.Context) (map[string]string, error)
}
