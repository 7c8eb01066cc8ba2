package response_models

// QuizAccepted is the immediate acknowledgement for POST /quiz. Solving
// continues in the background; this body never reflects progress.
type QuizAccepted struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	TaskID  string `json:"task_id"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
