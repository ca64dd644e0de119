package utils

import (
	"log"
	"strings"
)

// LogEvent prints one standardized line per application event. Keep messages
// summarized; never log credentials or full payloads.
func LogEvent(requestID, module, action, message string) {
	log.Printf("[%s] action=%s request_id=%s msg=%s",
		strings.ToUpper(module), action, strings.TrimSpace(requestID), message)
}

// LogError is LogEvent for failures, appending the error when present.
func LogError(requestID, module, action string, err error) {
	msg := "erro desconhecido"
	if err != nil {
		msg = err.Error()
	}
	log.Printf("[%s] action=%s request_id=%s error=%s",
		strings.ToUpper(module), action, strings.TrimSpace(requestID), msg)
}
