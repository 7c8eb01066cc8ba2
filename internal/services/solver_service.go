package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	mem "quizsolver/pkg/memcache"
	"quizsolver/pkg/utils"
)

// PageRendererInterface is what the loop needs from the headless browser
// in internal/infra. Tests substitute a fake.
type PageRendererInterface interface {
	Render(ctx context.Context, url string) (string, error)
}

// QuizTask is one accepted solving job.
type QuizTask struct {
	TaskID string
	Email  string
	Secret string
	URL    string
}

type solveState int

const (
	stateFetching solveState = iota
	stateInstructing
	stateAnswering
	stateSubmitting
	stateBranching
	stateDone
	stateExpired
	stateFailed
)

type branchOutcome int

const (
	branchAdvance branchOutcome = iota
	branchRetry
	branchDone
	branchFailed
)

const answerSystemPrompt = `You are solving an automated quiz. Answer the question exactly as instructed.
Reply with the answer only: no explanations, no markdown.
If the question asks for a number, reply with just the number.
If the question asks true/false or yes/no, reply with that single word.
If the question asks for JSON, reply with valid JSON only.`

type SolverServiceInterface interface {
	// StartTask launches the solving loop for task in its own goroutine,
	// detached from any request context.
	StartTask(task QuizTask)

	// Solve runs the loop synchronously until a terminal outcome.
	Solve(ctx context.Context, task QuizTask)
}

type SolverService struct {
	cfg       utils.AppConfig
	renderer  PageRendererInterface
	completer utils.CompletionClientInterface
	submitter SubmitClientInterface
	resources ResourceServiceInterface
	store     mem.TaskResultStore
	logger    *zap.SugaredLogger
}

func NewSolverService(
	cfg utils.AppConfig,
	renderer PageRendererInterface,
	completer utils.CompletionClientInterface,
	submitter SubmitClientInterface,
	resources ResourceServiceInterface,
	store mem.TaskResultStore,
	logger *zap.SugaredLogger,
) SolverServiceInterface {
	return &SolverService{
		cfg:       cfg,
		renderer:  renderer,
		completer: completer,
		submitter: submitter,
		resources: resources,
		store:     store,
		logger:    logger,
	}
}

func (s *SolverService) StartTask(task QuizTask) {
	go s.Solve(context.Background(), task)
}

// Solve drives one task through the state machine. A single wall-clock
// deadline is fixed at entry and checked before every transition; the
// context carries the same deadline so in-flight calls get cut off too.
func (s *SolverService) Solve(ctx context.Context, task QuizTask) {
	deadline := time.Now().Add(s.cfg.QuizTimeout)
	ctx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	run := &quizRun{svc: s, task: task, deadline: deadline, currentURL: task.URL}

	s.log(task.TaskID, fmt.Sprintf("Starting quiz chain at %s", task.URL))

	state := stateFetching
	var failure error
	for {
		switch state {
		case stateDone:
			s.finish(task.TaskID, mem.StatusCompleted, map[string]interface{}{
				"success": true,
				"message": fmt.Sprintf("Quiz chain completed: %d page(s) solved", run.steps),
			})
			return
		case stateExpired:
			s.finish(task.TaskID, mem.StatusExpired, map[string]interface{}{
				"error": "Time limit exceeded",
			})
			return
		case stateFailed:
			msg := "quiz failed"
			if failure != nil {
				msg = failure.Error()
			}
			s.finish(task.TaskID, mem.StatusFailed, map[string]interface{}{
				"error": msg,
			})
			return
		}

		if !utils.WithinDeadline(run.deadline) {
			state = stateExpired
			continue
		}

		var err error
		switch state {
		case stateFetching:
			state, err = run.fetch(ctx)
		case stateInstructing:
			state, err = run.instruct(ctx)
		case stateAnswering:
			state, err = run.answerStep(ctx)
		case stateSubmitting:
			state, err = run.submit(ctx)
		case stateBranching:
			state, err = run.branch()
		}
		if err != nil {
			// expiry outranks whatever else went wrong in-flight, even
			// when a wrapped cause no longer exposes the deadline error
			if errors.Is(err, utils.ErrDeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) || !utils.WithinDeadline(run.deadline) {
				state = stateExpired
				continue
			}
			failure = err
			state = stateFailed
		}
	}
}

// quizRun carries the mutable state of one task through the loop.
type quizRun struct {
	svc      *SolverService
	task     QuizTask
	deadline time.Time

	currentURL string
	html       string
	page       QuizPage
	resources  []Resource
	answerType utils.AnswerType
	answer     interface{}
	result     SubmitResult

	// attempts counts same-URL retries; it resets whenever the current
	// URL changes. steps counts pages visited across the whole chain.
	attempts int
	steps    int
}

func (r *quizRun) fetch(ctx context.Context) (solveState, error) {
	r.steps++
	if r.steps > r.svc.cfg.MaxChainSteps {
		return 0, fmt.Errorf("quiz chain exceeded %d steps", r.svc.cfg.MaxChainSteps)
	}
	if r.steps > 1 {
		r.svc.sleep(ctx, r.svc.cfg.StepPause)
	}

	r.svc.log(r.task.TaskID, fmt.Sprintf("Fetching quiz page: %s", r.currentURL))

	var lastErr error
	for attempt := 0; attempt <= r.svc.cfg.FetchRetries; attempt++ {
		if !utils.WithinDeadline(r.deadline) {
			return 0, utils.ErrDeadlineExceeded
		}
		html, err := r.svc.renderer.Render(ctx, r.currentURL)
		if err == nil {
			r.html = html
			return stateInstructing, nil
		}
		lastErr = err
		r.svc.log(r.task.TaskID, fmt.Sprintf("Render attempt %d failed: %v", attempt+1, err))
	}
	return 0, lastErr
}

func (r *quizRun) instruct(ctx context.Context) (solveState, error) {
	page, err := ParseQuizPage(r.html, r.currentURL)
	if err != nil {
		return 0, err
	}
	r.page = page
	r.answerType = utils.DetectAnswerType(page.Instruction)
	r.svc.log(r.task.TaskID, fmt.Sprintf("Instruction (%s answer expected): %s", r.answerType, clip(page.Instruction, 200)))
	r.svc.log(r.task.TaskID, fmt.Sprintf("Submit endpoint: %s", page.SubmitURL))

	r.resources = nil
	if len(page.ResourceLinks) > 0 {
		r.resources = r.svc.resources.FetchAll(ctx, page.ResourceLinks)
		r.svc.log(r.task.TaskID, fmt.Sprintf("Fetched %d supporting resource(s)", len(r.resources)))
	}
	return stateAnswering, nil
}

func (r *quizRun) answerStep(ctx context.Context) (solveState, error) {
	prompt := buildPrompt(r.page, r.resources, r.attempts, r.result.Reason)

	raw, err := r.svc.completeWithRetry(ctx, r.task.TaskID, prompt)
	if err != nil {
		return 0, err
	}

	value, fellBack := utils.CoerceAnswer(raw, r.answerType)
	if fellBack {
		r.svc.log(r.task.TaskID, fmt.Sprintf("Could not parse a %s answer, submitting a fallback", r.answerType))
	}
	r.answer = value
	r.svc.log(r.task.TaskID, fmt.Sprintf("Answer ready: %s", clip(fmt.Sprintf("%v", value), 120)))
	return stateSubmitting, nil
}

func (r *quizRun) submit(ctx context.Context) (solveState, error) {
	payload := SubmissionPayload{
		Email:  r.task.Email,
		Secret: r.task.Secret,
		URL:    r.currentURL,
		Answer: r.answer,
	}

	backoff := r.svc.cfg.SubmitBackoff
	var lastErr error
	for attempt := 1; attempt <= r.svc.cfg.SubmitRetries; attempt++ {
		if !utils.WithinDeadline(r.deadline) {
			return 0, utils.ErrDeadlineExceeded
		}
		result, err := r.svc.submitter.Submit(ctx, r.page.SubmitURL, payload)
		if err == nil {
			r.result = result
			r.svc.log(r.task.TaskID, fmt.Sprintf("Submission graded: correct=%t reason=%q", result.Correct, result.Reason))
			return stateBranching, nil
		}
		lastErr = err
		r.svc.log(r.task.TaskID, fmt.Sprintf("Submission attempt %d failed: %v", attempt, err))
		if attempt < r.svc.cfg.SubmitRetries {
			r.svc.sleep(ctx, backoff)
			backoff *= 2
		}
	}
	return 0, lastErr
}

func (r *quizRun) branch() (solveState, error) {
	switch decideBranch(r.result, r.attempts, r.svc.cfg.MaxAnswerAttempts) {
	case branchDone:
		r.svc.log(r.task.TaskID, "Answer accepted, chain complete")
		return stateDone, nil
	case branchAdvance:
		r.svc.log(r.task.TaskID, fmt.Sprintf("Moving on to %s", r.result.URL))
		r.currentURL = r.result.URL
		r.attempts = 0
		r.result = SubmitResult{}
		return stateFetching, nil
	case branchRetry:
		r.attempts++
		r.svc.log(r.task.TaskID, fmt.Sprintf("Incorrect, retrying same page (attempt %d of %d)", r.attempts+1, r.svc.cfg.MaxAnswerAttempts))
		return stateAnswering, nil
	default:
		return 0, fmt.Errorf("answer rejected after %d attempt(s): %s", r.attempts+1, r.result.Reason)
	}
}

// decideBranch is the pure verdict on where the loop goes after a graded
// submission. Retries are exhausted before an offered next URL is taken;
// with retries spent, a next URL still beats giving up.
func decideBranch(result SubmitResult, attempts, maxAttempts int) branchOutcome {
	if result.Correct {
		if result.URL != "" {
			return branchAdvance
		}
		return branchDone
	}
	if attempts+1 < maxAttempts {
		return branchRetry
	}
	if result.URL != "" {
		return branchAdvance
	}
	return branchFailed
}

func buildPrompt(page QuizPage, resources []Resource, attempt int, lastReason string) string {
	var sb strings.Builder
	sb.WriteString("Question:\n")
	sb.WriteString(page.Instruction)
	sb.WriteString("\n\nPage content:\n")
	sb.WriteString(page.PageText)
	for _, res := range resources {
		fmt.Fprintf(&sb, "\n\nAttached resource (%s, %s):\n%s", res.Kind, res.URL, res.Content)
	}
	if attempt > 0 && lastReason != "" {
		fmt.Fprintf(&sb, "\n\nYour previous answer was rejected: %s\nGive a corrected answer.", lastReason)
	}
	return sb.String()
}

// completeWithRetry treats provider failures and rate limits as retryable
// up to the configured bound.
func (s *SolverService) completeWithRetry(ctx context.Context, taskID, prompt string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= s.cfg.LLMRetries; attempt++ {
		if ctx.Err() != nil {
			return "", utils.ErrDeadlineExceeded
		}
		raw, err := s.completer.Complete(ctx, answerSystemPrompt, prompt)
		if err == nil && strings.TrimSpace(raw) != "" {
			return raw, nil
		}
		if err == nil {
			err = fmt.Errorf("empty completion")
		}
		lastErr = err
		s.log(taskID, fmt.Sprintf("Completion attempt %d failed: %v", attempt, err))
		if attempt < s.cfg.LLMRetries {
			s.sleep(ctx, time.Duration(attempt)*time.Second)
		}
	}
	return "", fmt.Errorf("%w: %w", utils.ErrCompletionFailed, lastErr)
}

// log writes to the process log and the task's own log trail.
func (s *SolverService) log(taskID, message string) {
	s.logger.Infow(message, "task_id", taskID)
	s.store.AppendLog(taskID, message)
}

func (s *SolverService) finish(taskID, status string, result map[string]interface{}) {
	s.store.AppendLog(taskID, fmt.Sprintf("Task %s", status))
	s.store.Finish(taskID, status, result)
	s.logger.Infow("Task finished", "task_id", taskID, "status", status)
}

func (s *SolverService) sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
