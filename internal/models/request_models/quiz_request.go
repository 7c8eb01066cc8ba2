package request_models

type QuizRequest struct {
	Email  string `json:"email" binding:"required"`
	Secret string `json:"secret" binding:"required"`
	URL    string `json:"url" binding:"required"`
}
