package v1

import (
	"bytes"
	"encoding/json"
	"net/http"
	"reflect"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/go-task-api/internal/models"
	"github.com/adanyl0v/go-task-api/internal/services"
)

// nullableString remembers whether its field was present in the
// request body, so an explicit null can be told from an absent field.
// Numbers and booleans keep their literal text.
type nullableString struct {
	Value *string
	Set   bool
}

func (n *nullableString) UnmarshalJSON(data []byte) error {
	n.Set = true
	n.Value = nil

	switch {
	case bytes.Equal(data, []byte("null")):
		return nil
	case data[0] == '"':
		var value string
		if err := json.Unmarshal(data, &value); err != nil {
			return err
		}
		n.Value = &value
		return nil
	case data[0] == '{':
		return &json.UnmarshalTypeError{Value: "object", Type: reflect.TypeFor[string]()}
	case data[0] == '[':
		return &json.UnmarshalTypeError{Value: "array", Type: reflect.TypeFor[string]()}
	default:
		value := string(data)
		n.Value = &value
		return nil
	}
}

type taskRequest struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Status      *string        `json:"status"`
	Priority    *string        `json:"priority"`
	DueDate     nullableString `json:"due_date" swaggertype:"string" example:"2024-06-01T12:00:00Z"`
	AssignedTo  nullableString `json:"assigned_to" swaggertype:"string"`
}

func (r taskRequest) toInput() services.TaskInput {
	return services.TaskInput{
		Title:         r.Title,
		Description:   r.Description,
		Status:        r.Status,
		Priority:      r.Priority,
		DueDate:       r.DueDate.Value,
		DueDateSet:    r.DueDate.Set,
		AssignedTo:    r.AssignedTo.Value,
		AssignedToSet: r.AssignedTo.Set,
	}
}

type taskResponse struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
	AssignedTo  *string    `json:"assigned_to"`
	CreatedBy   string     `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func newTaskResponse(task *models.Task) taskResponse {
	return taskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		DueDate:     task.DueDate,
		AssignedTo:  task.AssignedTo,
		CreatedBy:   task.CreatedBy,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

// HandleGetTasks godoc
// @Summary List tasks
// @Description List the caller's tasks, newest first. Responds 404 if there are none.
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Success 200 {array} taskResponse
// @Failure 401 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /task/ [get]
func (h *handlerImpl) HandleGetTasks(c *gin.Context) {
	requester, ok := h.mustGetRequester(c)
	if !ok {
		return
	}

	tasks, err := h.tasks.ListTasks(c.Request.Context(), requester)
	if err != nil {
		h.respondError(c, err, "failed to list tasks")
		return
	}

	resp := make([]taskResponse, len(tasks))
	for i, task := range tasks {
		resp[i] = newTaskResponse(task)
	}
	c.JSON(http.StatusOK, resp)
}

// HandleCreateTask godoc
// @Summary Create a task
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body taskRequest true "Task"
// @Success 201 {object} taskResponse
// @Failure 400 {object} errorResponse
// @Failure 401 {object} errorResponse
// @Router /task/ [post]
func (h *handlerImpl) HandleCreateTask(c *gin.Context) {
	requester, ok := h.mustGetRequester(c)
	if !ok {
		return
	}

	input, ok := h.bindTaskInput(c)
	if !ok {
		return
	}

	task, err := h.tasks.CreateTask(c.Request.Context(), requester, input)
	if err != nil {
		h.respondError(c, err, "failed to create task")
		return
	}

	c.JSON(http.StatusCreated, newTaskResponse(task))
}

// HandleGetTask godoc
// @Summary Get a task
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param id path int true "Task ID"
// @Success 200 {object} taskResponse
// @Failure 401 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /task/{id}/ [get]
func (h *handlerImpl) HandleGetTask(c *gin.Context) {
	requester, ok := h.mustGetRequester(c)
	if !ok {
		return
	}

	id, ok := h.taskIDParam(c)
	if !ok {
		return
	}

	task, err := h.tasks.GetTask(c.Request.Context(), requester, id)
	if err != nil {
		h.respondError(c, err, "failed to get task")
		return
	}

	c.JSON(http.StatusOK, newTaskResponse(task))
}

// HandleUpdateTask godoc
// @Summary Update a task
// @Description Overwrite the title, the description and every optional field sent.
// @Description Omitted optional fields keep their values, due_date and assigned_to sent as null are cleared.
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Task ID"
// @Param request body taskRequest true "Task"
// @Success 200 {object} taskResponse
// @Failure 400 {object} errorResponse
// @Failure 401 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /task/{id}/ [put]
func (h *handlerImpl) HandleUpdateTask(c *gin.Context) {
	requester, ok := h.mustGetRequester(c)
	if !ok {
		return
	}

	id, ok := h.taskIDParam(c)
	if !ok {
		return
	}

	input, ok := h.bindTaskInput(c)
	if !ok {
		return
	}

	task, err := h.tasks.UpdateTask(c.Request.Context(), requester, id, input)
	if err != nil {
		h.respondError(c, err, "failed to update task")
		return
	}

	c.JSON(http.StatusOK, newTaskResponse(task))
}

// HandleDeleteTask godoc
// @Summary Delete a task
// @Tags tasks
// @Security BearerAuth
// @Param id path int true "Task ID"
// @Success 204
// @Failure 401 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /task/{id}/ [delete]
func (h *handlerImpl) HandleDeleteTask(c *gin.Context) {
	requester, ok := h.mustGetRequester(c)
	if !ok {
		return
	}

	id, ok := h.taskIDParam(c)
	if !ok {
		return
	}

	err := h.tasks.DeleteTask(c.Request.Context(), requester, id)
	if err != nil {
		h.respondError(c, err, "failed to delete task")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *handlerImpl) mustGetRequester(c *gin.Context) (models.Requester, bool) {
	requester, ok := requesterFromContext(c)
	if !ok {
		h.logger.Error().Msg("no requester found in context")
		abort(c, newUnauthorizedError(errCredentialsNotFound.Error()))
	}
	return requester, ok
}

// taskIDParam parses the id path parameter. An id that can't
// name a task is answered the same way as a missing task.
func (h *handlerImpl) taskIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		h.logger.Debug().
			Str("id", c.Param("id")).
			Msg("invalid task id")
		abort(c, newNotFoundError(services.ErrTaskNotFound.Error()))
		return 0, false
	}
	return id, true
}

func (h *handlerImpl) bindTaskInput(c *gin.Context) (services.TaskInput, bool) {
	var req taskRequest
	if !h.bindJSON(c, &req) {
		return services.TaskInput{}, false
	}

	return req.toInput(), true
}
