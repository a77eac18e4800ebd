package vacuum

import (
	"encoding/json"
	"net/http"
)

// Envelope is the response of every operation, Data is merged into the top level object
type Envelope struct {
	Status  int
	Success bool
	Error   string
	Data    map[string]any
}

func ok(data map[string]any) Envelope {
	return Envelope{Status: http.StatusOK, Success: true, Data: data}
}

func fail(status int, message string) Envelope {
	return Envelope{Status: status, Error: message}
}

func badRequest(message string) Envelope {
	return fail(http.StatusBadRequest, message)
}

func notFound(message string) Envelope {
	return fail(http.StatusNotFound, message)
}

func internalError(err error) Envelope {
	return fail(http.StatusInternalServerError, err.Error())
}

// InternalError wraps an unexpected failure outside of the gateway, e.g. a recovered panic
func InternalError(message string) Envelope {
	return fail(http.StatusInternalServerError, message)
}

func (e Envelope) MarshalJSON() ([]byte, error) {
	body := make(map[string]any, len(e.Data)+2)
	for key, value := range e.Data {
		body[key] = value
	}

	body["success"] = e.Success
	if !e.Success {
		body["error"] = e.Error
	}

	return json.Marshal(body)
}
