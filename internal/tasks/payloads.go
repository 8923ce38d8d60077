package tasks

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// 任务类型与队列名，生产者与消费者共用。
const (
	TypeApplicationSubmittedEmail = "email:application_submitted"

	QueueEmail = "email"
)

// 确认邮件最多重试 5 次；单次发送超过 30 秒视为失败。
const (
	applicationEmailMaxRetry = 5
	applicationEmailTimeout  = 30 * time.Second
)

var errMissingApplicationID = errors.New("application id missing")

// ApplicationSubmittedPayload 描述发送投递确认邮件所需的最小信息。
type ApplicationSubmittedPayload struct {
	ApplicationID uint   `json:"application_id"`
	CorrelationID string `json:"correlation_id"`
}

// NewApplicationSubmittedTask 构造投递确认邮件任务，重试与队列选项随任务携带。
func NewApplicationSubmittedTask(applicationID uint, correlationID string) (*asynq.Task, error) {
	if applicationID == 0 {
		return nil, errMissingApplicationID
	}
	payload, err := json.Marshal(ApplicationSubmittedPayload{
		ApplicationID: applicationID,
		CorrelationID: correlationID,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal application email payload: %w", err)
	}
	return asynq.NewTask(TypeApplicationSubmittedEmail, payload,
		asynq.MaxRetry(applicationEmailMaxRetry),
		asynq.Queue(QueueEmail),
		asynq.Timeout(applicationEmailTimeout),
	), nil
}

// ParseApplicationSubmitted decodes the payload. Malformed payloads are wrapped
// with asynq.SkipRetry.
func ParseApplicationSubmitted(t *asynq.Task) (ApplicationSubmittedPayload, error) {
	var payload ApplicationSubmittedPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.ApplicationID == 0 {
		return payload, fmt.Errorf("%v: %w", errMissingApplicationID, asynq.SkipRetry)
	}
	return payload, nil
}
