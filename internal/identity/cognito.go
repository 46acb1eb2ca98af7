package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	cognito "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	cognitotypes "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"
)

// Запас до истечения ID-токена, после которого сессия обновляется
// по refresh-токену.
const expirySlack = time.Minute

// Cognito реализует Provider поверх пула пользователей AWS Cognito.
// Все операции — неподписанные вызовы клиентского API пула, поэтому
// учётные данные AWS не требуются.
type Cognito struct {
	client   *cognito.Client
	clientID string
	store    TokenStore
	log      *zap.SugaredLogger
}

// NewCognito создаёт провайдер идентификации для указанного региона и
// клиента пула. Токены сессии живут в переданном хранилище.
func NewCognito(region, clientID string, store TokenStore, log *zap.SugaredLogger) *Cognito {
	client := cognito.New(cognito.Options{
		Region:      region,
		Credentials: aws.AnonymousCredentials{},
	})

	return &Cognito{
		client:   client,
		clientID: clientID,
		store:    store,
		log:      log,
	}
}

// SignUp регистрирует пользователя в пуле. Сессию не создаёт: пользователь
// не аутентифицирован, пока не подтвердит почту и не войдёт.
func (c *Cognito) SignUp(ctx context.Context, in SignUpInput) (SignUpResult, error) {
	out, err := c.client.SignUp(ctx, &cognito.SignUpInput{
		ClientId: aws.String(c.clientID),
		Username: aws.String(in.Email),
		Password: aws.String(in.Password),
		UserAttributes: []cognitotypes.AttributeType{
			{Name: aws.String("email"), Value: aws.String(in.Email)},
			{Name: aws.String("given_name"), Value: aws.String(in.FirstName)},
			{Name: aws.String("family_name"), Value: aws.String(in.LastName)},
		},
	})
	if err != nil {
		return SignUpResult{}, translateCognitoErr(err)
	}

	result := SignUpResult{NextStep: StepDone}
	if out.UserSub != nil {
		result.UserID = *out.UserSub
	}
	if !out.UserConfirmed {
		result.NextStep = StepConfirmSignUp
	}
	return result, nil
}

// ConfirmSignUp подтверждает регистрацию шестизначным кодом из письма.
func (c *Cognito) ConfirmSignUp(ctx context.Context, email, code string) error {
	_, err := c.client.ConfirmSignUp(ctx, &cognito.ConfirmSignUpInput{
		ClientId:         aws.String(c.clientID),
		Username:         aws.String(email),
		ConfirmationCode: aws.String(code),
	})
	return translateCognitoErr(err)
}

// ResendConfirmationCode повторно отправляет код подтверждения.
func (c *Cognito) ResendConfirmationCode(ctx context.Context, email string) error {
	_, err := c.client.ResendConfirmationCode(ctx, &cognito.ResendConfirmationCodeInput{
		ClientId: aws.String(c.clientID),
		Username: aws.String(email),
	})
	return translateCognitoErr(err)
}

// SignIn выполняет вход по логину и паролю. Если провайдер требует
// дополнительный шаг, сессия не создаётся и шаг возвращается вызывающему.
func (c *Cognito) SignIn(ctx context.Context, email, password string) (SignInResult, error) {
	out, err := c.client.InitiateAuth(ctx, &cognito.InitiateAuthInput{
		AuthFlow: cognitotypes.AuthFlowTypeUserPasswordAuth,
		ClientId: aws.String(c.clientID),
		AuthParameters: map[string]string{
			"USERNAME": email,
			"PASSWORD": password,
		},
	})
	if err != nil {
		return SignInResult{}, translateCognitoErr(err)
	}

	if out.AuthenticationResult == nil {
		return SignInResult{SignedIn: false, NextStep: string(out.ChallengeName)}, nil
	}

	tokens := tokensFromAuthResult(out.AuthenticationResult, "")
	if err := c.store.Save(tokens); err != nil {
		return SignInResult{}, fmt.Errorf("save session tokens: %w", err)
	}

	return SignInResult{SignedIn: true, NextStep: StepDone}, nil
}

// SignOut отзывает токены на стороне провайдера и очищает локальное
// хранилище. Хранилище очищается даже при сбое отзыва.
func (c *Cognito) SignOut(ctx context.Context) error {
	tokens, _ := c.store.Load()

	var revokeErr error
	if tokens != nil && tokens.AccessToken != "" {
		_, err := c.client.GlobalSignOut(ctx, &cognito.GlobalSignOutInput{
			AccessToken: aws.String(tokens.AccessToken),
		})
		if err != nil {
			c.log.Debugw("global sign out failed", "error", err)
			revokeErr = translateCognitoErr(err)
		}
	}

	if err := c.store.Clear(); err != nil {
		return fmt.Errorf("clear session tokens: %w", err)
	}
	return revokeErr
}

// CurrentSession возвращает токены текущей сессии, при необходимости
// обновляя их по refresh-токену. Отсутствие сессии — ErrNoSession.
func (c *Cognito) CurrentSession(ctx context.Context) (*Tokens, error) {
	tokens, err := c.store.Load()
	if err != nil {
		return nil, err
	}
	if tokens == nil || tokens.IDToken == "" {
		return nil, ErrNoSession
	}

	if time.Until(tokens.ExpiresAt) > expirySlack {
		return tokens, nil
	}

	if tokens.RefreshToken == "" {
		_ = c.store.Clear()
		return nil, ErrNoSession
	}

	out, err := c.client.InitiateAuth(ctx, &cognito.InitiateAuthInput{
		AuthFlow: cognitotypes.AuthFlowTypeRefreshTokenAuth,
		ClientId: aws.String(c.clientID),
		AuthParameters: map[string]string{
			"REFRESH_TOKEN": tokens.RefreshToken,
		},
	})
	if err != nil {
		// Хранилище очищается только при отвергнутом refresh-токене.
		// Транспортный сбой токены не трогает: после восстановления
		// сети обновление повторится с теми же токенами.
		if refreshRejected(err) {
			_ = c.store.Clear()
			return nil, fmt.Errorf("%w: %s", ErrNoSession, translateCognitoErr(err))
		}
		return nil, fmt.Errorf("refresh session: %w", translateCognitoErr(err))
	}
	if out.AuthenticationResult == nil {
		_ = c.store.Clear()
		return nil, ErrNoSession
	}

	// Refresh-токен при обновлении не ротируется, переносим прежний.
	refreshed := tokensFromAuthResult(out.AuthenticationResult, tokens.RefreshToken)
	if err := c.store.Save(refreshed); err != nil {
		return nil, fmt.Errorf("save refreshed tokens: %w", err)
	}

	return refreshed, nil
}

// UserAttributes возвращает атрибуты пользователя текущей сессии.
func (c *Cognito) UserAttributes(ctx context.Context) (map[string]string, error) {
	tokens, err := c.CurrentSession(ctx)
	if err != nil {
		return nil, err
	}

	out, err := c.client.GetUser(ctx, &cognito.GetUserInput{
		AccessToken: aws.String(tokens.AccessToken),
	})
	if err != nil {
		return nil, translateCognitoErr(err)
	}

	attrs := make(map[string]string, len(out.UserAttributes))
	for _, attr := range out.UserAttributes {
		if attr.Name != nil && attr.Value != nil {
			attrs[*attr.Name] = *attr.Value
		}
	}
	return attrs, nil
}

func tokensFromAuthResult(result *cognitotypes.AuthenticationResultType, refreshToken string) *Tokens {
	tokens := &Tokens{
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(result.ExpiresIn) * time.Second),
	}
	if result.IdToken != nil {
		tokens.IDToken = *result.IdToken
	}
	if result.AccessToken != nil {
		tokens.AccessToken = *result.AccessToken
	}
	if result.RefreshToken != nil {
		tokens.RefreshToken = *result.RefreshToken
	}
	return tokens
}

// refreshRejected сообщает, отверг ли провайдер refresh-токен. Только
// такой отказ означает конец сессии; транспортные и прочие сбои обратимы.
func refreshRejected(err error) bool {
	var notAuthorized *cognitotypes.NotAuthorizedException
	return errors.As(err, &notAuthorized)
}

// translateCognitoErr приводит типизированные исключения Cognito к
// сигнальным ошибкам пакета. Диспетчеризация идёт по типам исключений,
// а не по подстрокам сообщений.
func translateCognitoErr(err error) error {
	if err == nil {
		return nil
	}

	var (
		notAuthorized *cognitotypes.NotAuthorizedException
		notConfirmed  *cognitotypes.UserNotConfirmedException
		notFound      *cognitotypes.UserNotFoundException
		codeMismatch  *cognitotypes.CodeMismatchException
		codeExpired   *cognitotypes.ExpiredCodeException
		userExists    *cognitotypes.UsernameExistsException
	)

	switch {
	case errors.As(err, &notAuthorized):
		return fmt.Errorf("%w: %s", ErrNotAuthorized, notAuthorized.ErrorMessage())
	case errors.As(err, &notConfirmed):
		return fmt.Errorf("%w: %s", ErrUserNotConfirmed, notConfirmed.ErrorMessage())
	case errors.As(err, &notFound):
		return fmt.Errorf("%w: %s", ErrUserNotFound, notFound.ErrorMessage())
	case errors.As(err, &codeMismatch):
		return fmt.Errorf("%w: %s", ErrCodeMismatch, codeMismatch.ErrorMessage())
	case errors.As(err, &codeExpired):
		return fmt.Errorf("%w: %s", ErrCodeExpired, codeExpired.ErrorMessage())
	case errors.As(err, &userExists):
		return fmt.Errorf("%w: %s", ErrUserExists, userExists.ErrorMessage())
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("identity provider: %s: %s", apiErr.ErrorCode(), apiErr.ErrorMessage())
	}

	return err
}
