package log

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	lineLength = 40

	messageSuccess = "SUCCESS"
	messageSkipped = "SKIPPED"
	messageFailed  = "FAILED " // leave the trailing space for consistent lengths
)

var auditOut io.Writer = os.Stdout

// Audit displays a message to the user. This shouldn't be used for debug logging purposes; all
// messages passed in here should be user-readable.
func Audit(message string) {
	fmt.Fprintln(auditOut, message)
}

func Auditf(message string, args ...any) {
	Audit(fmt.Sprintf(message, args...))
}

// AuditInfo displays the message to the user and also records it in the log file.
func AuditInfo(message string) {
	Audit(message)
	zap.S().Info(message)
}

func AuditInfof(message string, args ...any) {
	AuditInfo(fmt.Sprintf(message, args...))
}

// AuditError displays the message to the user and records it in the log file as an error.
func AuditError(message string) {
	Audit(message)
	zap.S().Error(message)
}

func AuditComponentSuccessful(component string) {
	message := formatComponentStatus(component, messageSuccess)
	Audit(message)
}

func AuditComponentSkipped(component string) {
	message := formatComponentStatus(component, messageSkipped)
	Audit(message)
}

func AuditComponentFailed(component string) {
	message := formatComponentStatus(component, messageFailed)
	Audit(message)
}

func formatComponentStatus(component, status string) string {
	// Example output:
	// Component ... [STATUS]

	name := cases.Title(language.English).String(component)
	numDots := lineLength - (len(name) + 2 + 9) // 2=spaces before/after dots, 9=status msg + []
	if numDots < 1 {
		numDots = 1
	}
	dots := strings.Repeat(".", numDots)

	message := fmt.Sprintf("%s %s [%s]", name, dots, status)
	return message
}
