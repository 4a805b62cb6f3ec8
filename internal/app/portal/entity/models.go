package entity

import "time"

// Script - скрипт в каталоге с метаданными и агрегированным рейтингом
// Rating вычисляется как среднее по отзывам и не задается клиентом напрямую
type Script struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	ScriptContent string    `json:"script_content"`
	Category      string    `json:"category"`
	Game          string    `json:"game"`
	Author        string    `json:"author"`
	Verified      bool      `json:"verified"`
	Rating        *float64  `json:"rating"` // NULL пока нет ни одного отзыва
	Downloads     int       `json:"downloads"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ScriptWithReviews - скрипт вместе со своими отзывами
// Отдается только для запроса одного скрипта, в списках отзывы не подгружаются
type ScriptWithReviews struct {
	Script
	Reviews []Review `json:"reviews"`
}

// Review - отзыв пользователя, привязанный ровно к одному скрипту
type Review struct {
	ID        int64     `json:"id"`
	ScriptID  int64     `json:"script_id"`
	Author    string    `json:"author"`
	Rating    int       `json:"rating"` // Оценка от 1 до 5
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// ScriptFilter - фильтры списка скриптов после нейтрализации sentinel-значений
// Пустое поле означает "фильтр не применяется"
type ScriptFilter struct {
	Category string
	Game     string
	Search   string
}

// FilterOptions - доступные значения фильтров для выпадающих списков фронтенда
type FilterOptions struct {
	Categories []string `json:"categories"`
	Games      []string `json:"games"`
}

// ScriptEvent - событие об изменении скрипта для Kafka
type ScriptEvent struct {
	EventType string    `json:"event_type"` // SCRIPT_CREATED, SCRIPT_UPDATED, SCRIPT_DELETED
	ScriptID  int64     `json:"script_id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Game      string    `json:"game"`
	Timestamp time.Time `json:"timestamp"`
}

// ReviewEvent - событие о новом отзыве для Kafka
type ReviewEvent struct {
	EventType string    `json:"event_type"` // REVIEW_CREATED
	ReviewID  int64     `json:"review_id"`
	ScriptID  int64     `json:"script_id"`
	Rating    int       `json:"rating"`
	Timestamp time.Time `json:"timestamp"`
}
