// Package model содержит доменные сущности клиента платформы розыгрышей.
package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Status описывает статус розыгрыша, назначаемый бэкендом.
type Status string

const (
	StatusActive     Status = "active"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Valid сообщает, входит ли статус в закрытый набор значений.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusProcessing, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Category описывает категорию приза розыгрыша.
type Category string

const (
	CategorySmall   Category = "pequeño"
	CategoryMedium  Category = "mediano"
	CategoryLarge   Category = "grande"
	CategoryPremium Category = "premium"
)

// Raffle описывает розыгрыш в списке: проекция данных бэкенда,
// клиент её не изменяет.
type Raffle struct {
	RaffleID            string    `json:"raffle_id"`
	Title               string    `json:"title"`
	Description         string    `json:"description"`
	Status              Status    `json:"status"`
	StartDate           time.Time `json:"start_date"`
	EndDate             time.Time `json:"end_date"`
	PrizeValue          float64   `json:"prize_value"`
	Category            Category  `json:"category"`
	PrizeImages         []string  `json:"prize_images"`
	MaxParticipants     int       `json:"max_participants"`
	CurrentParticipants int       `json:"current_participants"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// ProcessingInfo содержит поля, присутствующие только при статусе processing.
type ProcessingInfo struct {
	Message string `json:"message"`
}

// CompletedInfo содержит поля, присутствующие только при статусе completed.
type CompletedInfo struct {
	TotalParticipants int        `json:"total_participants"`
	WinnerName        *string    `json:"winner_name"`
	WinnerSelectedAt  *time.Time `json:"winner_selected_at"`
	CompletedAt       *time.Time `json:"completed_at"`
}

// CancelledInfo содержит поля, присутствующие только при статусе cancelled.
type CancelledInfo struct {
	CancellationReason string     `json:"cancellation_reason"`
	CancelledAt        *time.Time `json:"cancelled_at"`
	CancelledBy        *string    `json:"cancelled_by"`
}

// Detail описывает детальную карточку розыгрыша. Форма ответа бэкенда —
// размеченное объединение по полю status: дополнительные поля существуют
// только для соответствующего статуса и доступны через Processing,
// Completed и Cancelled.
type Detail struct {
	Raffle

	UserHasParticipated     bool    `json:"user_has_participated"`
	ParticipationPercentage float64 `json:"participation_percentage"`
	DaysRemaining           int     `json:"days_remaining"`
	CanParticipate          bool    `json:"can_participate"`

	processing *ProcessingInfo
	completed  *CompletedInfo
	cancelled  *CancelledInfo
}

// Processing возвращает поля варианта processing, если статус совпадает.
func (d *Detail) Processing() (*ProcessingInfo, bool) {
	return d.processing, d.processing != nil
}

// Completed возвращает поля варианта completed, если статус совпадает.
func (d *Detail) Completed() (*CompletedInfo, bool) {
	return d.completed, d.completed != nil
}

// Cancelled возвращает поля варианта cancelled, если статус совпадает.
func (d *Detail) Cancelled() (*CancelledInfo, bool) {
	return d.cancelled, d.cancelled != nil
}

type detailJSON struct {
	Raffle
	UserHasParticipated     bool    `json:"user_has_participated"`
	ParticipationPercentage float64 `json:"participation_percentage"`
	DaysRemaining           int     `json:"days_remaining"`
	CanParticipate          bool    `json:"can_participate"`

	ProcessingInfo
	CompletedInfo
	CancelledInfo
}

// UnmarshalJSON декодирует детальную карточку и заполняет только тот
// вариант, который соответствует статусу. Неизвестный статус — ошибка.
func (d *Detail) UnmarshalJSON(data []byte) error {
	var aux detailJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	if !aux.Raffle.Status.Valid() {
		return fmt.Errorf("unknown raffle status %q", aux.Raffle.Status)
	}

	*d = Detail{
		Raffle:                  aux.Raffle,
		UserHasParticipated:     aux.UserHasParticipated,
		ParticipationPercentage: aux.ParticipationPercentage,
		DaysRemaining:           aux.DaysRemaining,
		CanParticipate:          aux.CanParticipate,
	}

	switch aux.Raffle.Status {
	case StatusProcessing:
		info := aux.ProcessingInfo
		d.processing = &info
	case StatusCompleted:
		info := aux.CompletedInfo
		d.completed = &info
	case StatusCancelled:
		info := aux.CancelledInfo
		d.cancelled = &info
	}

	return nil
}

// Validate проверяет инварианты проекции: счётчики неотрицательны,
// current не превышает max, процент заполнения в пределах [0, 100].
func (d *Detail) Validate() error {
	if d.CurrentParticipants < 0 || d.MaxParticipants < 0 {
		return fmt.Errorf("raffle %s: negative participant counter", d.RaffleID)
	}
	if d.CurrentParticipants > d.MaxParticipants {
		return fmt.Errorf("raffle %s: current participants %d exceed max %d",
			d.RaffleID, d.CurrentParticipants, d.MaxParticipants)
	}
	if d.ParticipationPercentage < 0 || d.ParticipationPercentage > 100 {
		return fmt.Errorf("raffle %s: participation percentage %.2f out of range",
			d.RaffleID, d.ParticipationPercentage)
	}
	return nil
}

// ListResult описывает страницу списка розыгрышей с курсорной пагинацией.
type ListResult struct {
	Message      string   `json:"message"`
	Raffles      []Raffle `json:"raffles"`
	Count        int      `json:"count"`
	HasMore      bool     `json:"has_more"`
	NextCursor   string   `json:"next_cursor"`
	ScannedCount int      `json:"scanned_count"`
}

// CreateInput описывает тело запроса на создание розыгрыша.
type CreateInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	PrizeValue  float64  `json:"prize_value"`
	PrizeImages []string `json:"prize_images"`
}

// CreatedRaffle содержит созданный розыгрыш и автора.
type CreatedRaffle struct {
	Raffle
	CreatedBy string `json:"created_by"`
}

// CreateResult описывает ответ на создание розыгрыша.
type CreateResult struct {
	Message string        `json:"message"`
	Raffle  CreatedRaffle `json:"raffle"`
}

// ParticipateResult описывает ответ на заявку участия.
type ParticipateResult struct {
	Message          string `json:"message"`
	RaffleID         string `json:"raffle_id"`
	ParticipantEmail string `json:"participant_email"`
}

// ClosedRaffle содержит закрытый розыгрыш и данные о закрытии.
type ClosedRaffle struct {
	Raffle
	ClosedBy string    `json:"closed_by"`
	ClosedAt time.Time `json:"closed_at"`
}

// CloseResult описывает ответ на закрытие розыгрыша.
type CloseResult struct {
	Message string       `json:"message"`
	Raffle  ClosedRaffle `json:"raffle"`
}

// UploadRequest описывает запрос на выдачу presigned-ссылки для загрузки файла.
type UploadRequest struct {
	FileName string `json:"fileName"`
	FileType string `json:"fileType"`
	FileSize int64  `json:"fileSize,omitempty"`
}

// UploadTarget описывает presigned-ссылку, по которой файл загружается
// напрямую в хранилище, минуя шлюз.
type UploadTarget struct {
	URL       string            `json:"url"`
	Method    string            `json:"method"`
	Headers   map[string]string `json:"headers"`
	ExpiresIn int               `json:"expiresIn"`
}

// UploadedFile содержит метаданные загружаемого файла.
type UploadedFile struct {
	Key           string `json:"key"`
	CloudFrontURL string `json:"cloudFrontUrl"`
	OriginalURL   string `json:"originalUrl"`
	FileName      string `json:"fileName"`
}

// UploadDescriptor описывает ответ на запрос presigned-загрузки.
type UploadDescriptor struct {
	Message      string       `json:"message"`
	Upload       UploadTarget `json:"upload"`
	File         UploadedFile `json:"file"`
	Instructions []string     `json:"instructions"`
}
