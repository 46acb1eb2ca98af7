package web

import "sync"

// Message — уведомление для показа пользователю на следующей странице.
type Message struct {
	Kind   string
	Title  string
	Detail string
}

// Flash накапливает уведомления процесса до ближайшего рендера страницы.
// Реализует participation.Notifier.
type Flash struct {
	mu       sync.Mutex
	messages []Message
}

// NewFlash создаёт пустой накопитель уведомлений.
func NewFlash() *Flash {
	return &Flash{}
}

// Success добавляет уведомление об успехе.
func (f *Flash) Success(title, detail string) { f.add("success", title, detail) }

// Info добавляет информационное уведомление.
func (f *Flash) Info(title, detail string) { f.add("info", title, detail) }

// Error добавляет уведомление об ошибке.
func (f *Flash) Error(title, detail string) { f.add("error", title, detail) }

func (f *Flash) add(kind, title, detail string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, Message{Kind: kind, Title: title, Detail: detail})
}

// Drain возвращает накопленные уведомления и очищает накопитель.
func (f *Flash) Drain() []Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	drained := f.messages
	f.messages = nil
	return drained
}
