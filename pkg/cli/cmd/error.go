package cmd

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/chartpilot/chartpilot/pkg/log"
)

// Error pairs the message shown to the user with the failure written to the log file.
type Error struct {
	UserMessage string
	Cause       error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return e.UserMessage
	}

	return fmt.Sprintf("%s: %s", e.UserMessage, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// LogError shows err to the user. A cause is only written to the log file and the user is
// pointed there with checkLogMessage.
func LogError(err *Error, checkLogMessage string) {
	if err.Cause == nil {
		log.AuditError(err.UserMessage)
		return
	}

	log.Audit(err.UserMessage)
	log.Audit(checkLogMessage)
	zap.S().Error(err.Error())
}
