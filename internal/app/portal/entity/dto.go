package entity

// CreateScriptRequest - запрос на создание скрипта
// Author и Verified опциональны: по умолчанию "Anonymous" и false
type CreateScriptRequest struct {
	Name          string `json:"name" validate:"required"`
	Description   string `json:"description" validate:"required"`
	ScriptContent string `json:"script_content" validate:"required"`
	Category      string `json:"category" validate:"required"`
	Game          string `json:"game" validate:"required"`
	Author        string `json:"author"`
	Verified      *bool  `json:"verified"`
}

// UpdateScriptRequest - частичное обновление скрипта
// Обновляются только присланные поля, nil означает "не трогать"
type UpdateScriptRequest struct {
	Name          *string `json:"name"`
	Description   *string `json:"description"`
	ScriptContent *string `json:"script_content"`
	Category      *string `json:"category"`
	Game          *string `json:"game"`
	Author        *string `json:"author"`
	Verified      *bool   `json:"verified"`
}

// IsEmpty проверяет что в запросе нет ни одного поля для обновления
func (r *UpdateScriptRequest) IsEmpty() bool {
	return r.Name == nil && r.Description == nil && r.ScriptContent == nil &&
		r.Category == nil && r.Game == nil && r.Author == nil && r.Verified == nil
}

// CreateReviewRequest - запрос на создание отзыва
// Автор приходит с фронтенда в поле user_name, это контракт исходного API
type CreateReviewRequest struct {
	ScriptID int64  `json:"script_id" validate:"required"`
	UserName string `json:"user_name" validate:"required"`
	Rating   int    `json:"rating" validate:"required"`
	Comment  string `json:"comment"`
}

// ErrorResponse - стандартный ответ об ошибке
type ErrorResponse struct {
	Error string `json:"error"`
}

// DeleteScriptResponse - подтверждение удаления скрипта
type DeleteScriptResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}
