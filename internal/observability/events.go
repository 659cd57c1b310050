package observability

import "time"

// Envelope wraps every event the service publishes to the broker. Consumers
// route on EventType and branch on EventName.
type Envelope struct {
	EventType string      `json:"event_type"`
	EventName string      `json:"event_name"`
	EmittedAt string      `json:"emitted_at"`
	Payload   interface{} `json:"payload"`
}

func newEnvelope(eventType, eventName string, payload interface{}) Envelope {
	return Envelope{
		EventType: eventType,
		EventName: eventName,
		EmittedAt: time.Now().UTC().Format(time.RFC3339Nano),
		Payload:   payload,
	}
}

func eventHeaders(requestID, traceID string) map[string]string {
	headers := map[string]string{}
	if requestID != "" {
		headers["x-request-id"] = requestID
	}
	if traceID != "" {
		headers["trace_id"] = traceID
	}
	return headers
}
