package controllers

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"quizsolver/internal/models/request_models"
	"quizsolver/internal/models/response_models"
	"quizsolver/internal/services"
	mem "quizsolver/pkg/memcache"
	"quizsolver/pkg/utils"
)

type QuizController struct {
	cfg    utils.AppConfig
	solver services.SolverServiceInterface
	store  mem.TaskResultStore
}

func NewQuizController(cfg utils.AppConfig, solver services.SolverServiceInterface, store mem.TaskResultStore) *QuizController {
	return &QuizController{
		cfg:    cfg,
		solver: solver,
		store:  store,
	}
}

// SolveQuizHandler accepts a quiz chain and acknowledges before any
// solving work starts. The acknowledgement never reflects progress.
func (q *QuizController) SolveQuizHandler(c *gin.Context) {
	// 1. Validate the body
	var req request_models.QuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Missing required fields: email, secret, url")
		return
	}
	if !isQuizURL(req.URL) {
		utils.RespondError(c, http.StatusBadRequest, "url must be an absolute http(s) URL")
		return
	}

	// 2. Check credentials before creating any task state
	if req.Email != q.cfg.StudentEmail || !utils.VerifySecret(req.Secret, q.cfg.StudentSecret, q.cfg.StudentSecretHash) {
		utils.RespondError(c, http.StatusForbidden, "Invalid credentials")
		return
	}

	// 3. Create the task record and hand off to the background solver
	taskID := uuid.New().String()
	q.store.Create(taskID)
	q.solver.StartTask(services.QuizTask{
		TaskID: taskID,
		Email:  req.Email,
		Secret: req.Secret,
		URL:    req.URL,
	})

	c.JSON(http.StatusAccepted, response_models.QuizAccepted{
		Status:  "accepted",
		Message: "Quiz processing started",
		TaskID:  taskID,
	})
}

func (q *QuizController) QuizStatusHandler(c *gin.Context) {
	record, ok := q.store.Get(c.Param("taskId"))
	if !ok {
		utils.HandleServiceError(c, utils.ErrTaskNotFound)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (q *QuizController) HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, response_models.HealthResponse{Status: "ok"})
}

func isQuizURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	return parsed.Hostname() != ""
}
