package response

import (
	"errors"
	"net/http"
	"time"

	"restaurant-pos/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDKey = "request_id"

// SuccessResponse wraps every JSON payload the staff-facing API returns.
type SuccessResponse struct {
	Data      interface{} `json:"data"`
	RequestID string      `json:"request_id"`
	Timestamp string      `json:"timestamp"`
}

// ErrorResponse carries an apperror code. Detail is optional and only ever
// set by callers that vetted it.
type ErrorResponse struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
	Detail    string `json:"detail,omitempty"`
	RequestID string `json:"request_id"`
	Timestamp string `json:"timestamp"`
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{
		Data:      data,
		RequestID: requestID(c),
		Timestamp: timestamp(),
	})
}

// Acknowledge sends an empty 200, the only success body PayFast expects for a
// notification.
func Acknowledge(c *gin.Context) {
	c.Status(http.StatusOK)
}

// Error maps err to its AppError status and code. Anything that is not an
// AppError is reported as SYS_000 without leaking its text.
func Error(c *gin.Context, err error) {
	ErrorWithDetail(c, err, "")
}

func ErrorWithDetail(c *gin.Context, err error, detail string) {
	status, body := http.StatusInternalServerError, ErrorResponse{
		ErrorCode: "SYS_000",
		Message:   "Internal server error",
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status = appErr.HTTPStatus
		body.ErrorCode, body.Message = appErr.Code, appErr.Message
	}

	body.Detail = detail
	body.RequestID = requestID(c)
	body.Timestamp = timestamp()
	c.JSON(status, body)
}

// TotalPages is the number of pages of pageSize needed to hold total items.
func TotalPages(total int64, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}

func requestID(c *gin.Context) string {
	if id := c.GetString(requestIDKey); id != "" {
		return id
	}
	return uuid.New().String()
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
