package web

import (
	"sync"

	"github.com/mmeshcher/raffle-client/internal/participation"
)

// controllerSet хранит контроллеры участия по идентификатору розыгрыша.
// Контроллер создаётся при первом обращении к карточке и закрывается
// вместе с хостом.
type controllerSet struct {
	mu          sync.Mutex
	controllers map[string]*participation.Controller
	factory     func(raffleID string) *participation.Controller
}

func newControllerSet(factory func(raffleID string) *participation.Controller) *controllerSet {
	return &controllerSet{
		controllers: make(map[string]*participation.Controller),
		factory:     factory,
	}
}

// get возвращает контроллер розыгрыша, создавая его при необходимости.
func (s *controllerSet) get(raffleID string) *participation.Controller {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ctrl, ok := s.controllers[raffleID]; ok {
		return ctrl
	}
	ctrl := s.factory(raffleID)
	s.controllers[raffleID] = ctrl
	return ctrl
}

// peek возвращает контроллер розыгрыша, если он уже существует.
func (s *controllerSet) peek(raffleID string) *participation.Controller {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.controllers[raffleID]
}

// closeAll закрывает все контроллеры: опрос и таймеры снимаются.
func (s *controllerSet) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ctrl := range s.controllers {
		ctrl.Close()
	}
	s.controllers = make(map[string]*participation.Controller)
}
