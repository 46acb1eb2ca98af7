package identity

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/raffle-client/internal/model"
)

// Session описывает наблюдаемое состояние сессии. Инвариант:
// IsAuthenticated истинно тогда и только тогда, когда User не nil.
// IsLoading истинно только до первого завершения гидратации.
type Session struct {
	User            *model.User
	IsAuthenticated bool
	IsLoading       bool
}

// Manager владеет состоянием сессии и делегирует операции провайдеру
// идентификации. Единственный владелец: экземпляр создаётся хостом на
// всё время жизни процесса и передаётся потребителям явно.
type Manager struct {
	provider   Provider
	adminGroup string
	log        *zap.SugaredLogger

	mu       sync.RWMutex
	session  Session
	hydrated bool
	closed   bool
}

// NewManager создаёт менеджер сессии в состоянии загрузки.
func NewManager(provider Provider, adminGroup string, log *zap.SugaredLogger) *Manager {
	return &Manager{
		provider:   provider,
		adminGroup: adminGroup,
		log:        log,
		session:    Session{IsLoading: true},
	}
}

// Session возвращает снимок текущего состояния сессии.
func (m *Manager) Session() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session
}

// Hydrate разрешает начальное состояние сессии: при наличии сохранённых
// токенов восстанавливает пользователя, иначе переводит сессию в анонимную.
// Выполняется один раз; любой сбой завершает загрузку, а не подвешивает её.
func (m *Manager) Hydrate(ctx context.Context) {
	m.mu.Lock()
	if m.hydrated {
		m.mu.Unlock()
		return
	}
	m.hydrated = true
	m.mu.Unlock()

	user, err := m.deriveUser(ctx)
	if err != nil && !errors.Is(err, ErrNoSession) {
		m.log.Debugw("session hydration failed", "error", err)
	}

	m.setUser(user)
}

// SignUp регистрирует пользователя и возвращает следующий требуемый шаг.
// Состояние сессии не меняется: пользователь аутентифицируется только
// после подтверждения и входа. Если адрес уже зарегистрирован, но код
// подтверждения удаётся переотправить, регистрация считается ожидающей
// подтверждения, а не отказом.
func (m *Manager) SignUp(ctx context.Context, in SignUpInput) (SignUpResult, error) {
	if err := ValidateSignUp(in); err != nil {
		return SignUpResult{}, err
	}

	result, err := m.provider.SignUp(ctx, in)
	if err == nil {
		return result, nil
	}

	if errors.Is(err, ErrUserExists) {
		if resendErr := m.provider.ResendConfirmationCode(ctx, in.Email); resendErr == nil {
			m.log.Infow("sign up for existing unconfirmed user, code resent", "email", in.Email)
			return SignUpResult{NextStep: StepConfirmSignUp}, nil
		}
		return SignUpResult{}, err
	}

	return SignUpResult{}, err
}

// ConfirmSignUp подтверждает регистрацию кодом из письма. Состояние сессии
// не меняется.
func (m *Manager) ConfirmSignUp(ctx context.Context, email, code string) error {
	if err := ValidateCode(code); err != nil {
		return err
	}
	return m.provider.ConfirmSignUp(ctx, email, code)
}

// ResendConfirmationCode повторно отправляет код подтверждения. Операция
// идемпотентна с точки зрения состояния сессии.
func (m *Manager) ResendConfirmationCode(ctx context.Context, email string) error {
	return m.provider.ResendConfirmationCode(ctx, email)
}

// SignIn выполняет вход. Успех не объявляется, пока пользователь не
// восстановлен из токенов: незавершённый поток провайдера и сбой
// восстановления — ошибки, сессия остаётся анонимной.
func (m *Manager) SignIn(ctx context.Context, email, password string) error {
	result, err := m.provider.SignIn(ctx, email, password)
	if err != nil {
		return err
	}

	if !result.SignedIn {
		return fmt.Errorf("additional step required: %s", result.NextStep)
	}

	user, err := m.deriveUser(ctx)
	if err != nil {
		return fmt.Errorf("resolve user after sign in: %w", err)
	}

	m.setUser(user)
	return nil
}

// SignOut выходит из сессии. Локальное состояние сбрасывается в анонимное
// после разрешения вызова провайдера независимо от его исхода.
func (m *Manager) SignOut(ctx context.Context) error {
	err := m.provider.SignOut(ctx)
	m.setUser(nil)
	return err
}

// AccessToken возвращает ID-токен текущей сессии для авторизованных
// вызовов API. Ошибки провайдера гасятся: отсутствие токена никогда не
// приводит к выходу из сессии.
func (m *Manager) AccessToken(ctx context.Context) (string, bool) {
	tokens, err := m.provider.CurrentSession(ctx)
	if err != nil || tokens == nil || tokens.IDToken == "" {
		return "", false
	}
	return tokens.IDToken, true
}

// Refresh повторно выводит пользователя из текущих токенов без полной
// гидратации: синхронизирует группы и признак администратора после
// наблюдаемых сервером изменений.
func (m *Manager) Refresh(ctx context.Context) error {
	user, err := m.deriveUser(ctx)
	m.setUser(user)
	return err
}

// Close останавливает менеджер: дальнейшие изменения состояния
// игнорируются. Аналог размонтирования владеющего компонента.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
}

// deriveUser составляет пользователя из claims ID-токена и атрибутов
// провайдера. Подпись токена не проверяется: токен выдан провайдером и
// проверяется принимающим бэкендом, клиент лишь читает claims.
func (m *Manager) deriveUser(ctx context.Context) (*model.User, error) {
	tokens, err := m.provider.CurrentSession(ctx)
	if err != nil {
		return nil, err
	}
	// Провайдер, следующий соглашению хранилища, кодирует отсутствие
	// сессии как (nil, nil).
	if tokens == nil || tokens.IDToken == "" {
		return nil, ErrNoSession
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokens.IDToken, claims); err != nil {
		return nil, fmt.Errorf("parse id token: %w", err)
	}

	attrs, err := m.provider.UserAttributes(ctx)
	if err != nil {
		return nil, err
	}

	sub, _ := claims["sub"].(string)
	groups := groupsClaim(claims)

	user := &model.User{
		UserID:    sub,
		Email:     attrs["email"],
		FirstName: attrs["given_name"],
		LastName:  attrs["family_name"],
		Groups:    groups,
	}
	user.IsAdmin = user.InGroup(m.adminGroup)

	return user, nil
}

// setUser обновляет состояние сессии, поддерживая инвариант
// IsAuthenticated == (User != nil) и признак завершённой загрузки.
func (m *Manager) setUser(user *model.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.session = Session{
		User:            user,
		IsAuthenticated: user != nil,
		IsLoading:       false,
	}
}

func groupsClaim(claims jwt.MapClaims) []string {
	raw, ok := claims["cognito:groups"].([]any)
	if !ok {
		return nil
	}
	groups := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			groups = append(groups, s)
		}
	}
	return groups
}
