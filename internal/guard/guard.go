// Package guard содержит чистые решения о допуске к маршрутам по
// состоянию сессии. Решения не хранят состояния; адаптация к конкретному
// хосту (HTTP-редиректы, заглушки) — забота вызывающего.
package guard

import (
	"net/url"

	"github.com/mmeshcher/raffle-client/internal/identity"
)

// Action описывает исход проверки допуска.
type Action int

const (
	// ActionWait — сессия ещё загружается, показать нейтральную заглушку.
	ActionWait Action = iota
	// ActionAllow — допуск разрешён.
	ActionAllow
	// ActionRedirect — перенаправить на Target.
	ActionRedirect
)

// Decision — результат проверки допуска.
type Decision struct {
	Action Action
	Target string
}

// SignInPath — маршрут входа, на который уводят неаутентифицированных.
const SignInPath = "/sign-in"

// Protected решает допуск к защищённому маршруту. Анонимный пользователь
// уводится на вход с сохранением исходного пути; не-администратор на
// административном маршруте уводится на главную.
func Protected(s identity.Session, requestedPath string, requireAdmin bool) Decision {
	if s.IsLoading {
		return Decision{Action: ActionWait}
	}

	if !s.IsAuthenticated {
		target := SignInPath
		if requestedPath != "" {
			target += "?from=" + url.QueryEscape(requestedPath)
		}
		return Decision{Action: ActionRedirect, Target: target}
	}

	if requireAdmin && (s.User == nil || !s.User.IsAdmin) {
		return Decision{Action: ActionRedirect, Target: "/"}
	}

	return Decision{Action: ActionAllow}
}

// GuestOnly решает допуск к маршруту только для гостей. Аутентифицированный
// пользователь уводится на запомненный путь возврата, по умолчанию на
// главную.
func GuestOnly(s identity.Session, returnPath string) Decision {
	if s.IsLoading {
		return Decision{Action: ActionWait}
	}

	if s.IsAuthenticated {
		target := returnPath
		if target == "" {
			target = "/"
		}
		return Decision{Action: ActionRedirect, Target: target}
	}

	return Decision{Action: ActionAllow}
}
