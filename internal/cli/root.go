// Package cli реализует консольный клиент платформы розыгрышей.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mmeshcher/raffle-client/internal/api"
	"github.com/mmeshcher/raffle-client/internal/config"
	"github.com/mmeshcher/raffle-client/internal/identity"
	"github.com/mmeshcher/raffle-client/internal/raffles"
)

// app держит зависимости команд: конфигурацию, сессию и клиента шлюза.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	manager *identity.Manager
	raffles *raffles.Client
}

// Execute запускает CLI и возвращает код выхода процесса.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := &app{}
	rootCmd := newRootCmd(a)

	err := rootCmd.ExecuteContext(ctx)

	if a.manager != nil {
		a.manager.Close()
	}
	if a.logger != nil {
		a.logger.Sync()
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "raffle",
		Short:         "Cliente de la plataforma de sorteos",
		Long:          "Cliente de línea de comandos para explorar sorteos, participar y administrar la plataforma.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd.Context())
		},
	}

	rootCmd.AddCommand(
		newListCmd(a),
		newShowCmd(a),
		newParticipateCmd(a),
		newSignUpCmd(a),
		newConfirmCmd(a),
		newResendCmd(a),
		newSignInCmd(a),
		newSignOutCmd(a),
		newWhoamiCmd(a),
		newCreateCmd(a),
		newCloseCmd(a),
		newUploadCmd(a),
	)

	return rootCmd
}

// init собирает зависимости и восстанавливает сессию из сохранённых токенов.
func (a *app) init(ctx context.Context) error {
	logger, _ := zap.NewProduction()
	a.logger = logger
	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	a.cfg = cfg

	store := identity.NewFileStore(cfg.TokenFile)
	provider := identity.NewCognito(cfg.CognitoRegion, cfg.CognitoClientID, store, sugar)
	a.manager = identity.NewManager(provider, cfg.AdminGroup, sugar)

	a.raffles = raffles.NewClient(api.NewClient(cfg.APIURL, sugar))

	hydrateCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	a.manager.Hydrate(hydrateCtx)

	return nil
}

// requireToken возвращает токен активной сессии или ошибку с подсказкой.
func (a *app) requireToken(ctx context.Context) (string, error) {
	token, ok := a.manager.AccessToken(ctx)
	if !ok {
		return "", fmt.Errorf("no hay sesión activa, usa `raffle signin`")
	}
	return token, nil
}

// requireAdmin проверяет, что активная сессия принадлежит администратору.
func (a *app) requireAdmin(ctx context.Context) (string, error) {
	token, err := a.requireToken(ctx)
	if err != nil {
		return "", err
	}
	s := a.manager.Session()
	if s.User == nil || !s.User.IsAdmin {
		return "", fmt.Errorf("esta operación requiere una cuenta de administrador")
	}
	return token, nil
}

// authErr переводит ошибку аутентификации в сообщение для пользователя.
func authErr(err error) error {
	title, detail := identity.UserMessage(err)
	return fmt.Errorf("%s: %s", title, detail)
}
