package api

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// GuardError es un fallo detectado en el cliente antes de llamar a la red.
type GuardError string

func (e GuardError) Error() string {
	return string(e)
}

// ErrPasswordMismatch se devuelve antes de enviar el registro.
const ErrPasswordMismatch = GuardError("Passwords do not match.")

// APIError es una respuesta no-2xx; Payload es el cuerpo crudo del servidor.
type APIError struct {
	Status  int
	Payload []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d: %s", e.Status, e.Message(""))
}

// Message interpreta el payload: "detail" si es string, el cuerpo si es un
// string plano, o los errores por campo como "campo: a, b | otro: c".
func (e *APIError) Message(fallback string) string {
	payload := bytes.TrimSpace(e.Payload)
	if len(payload) == 0 {
		return fallback
	}
	if !gjson.ValidBytes(payload) {
		return string(payload)
	}

	res := gjson.ParseBytes(payload)
	if detail := res.Get("detail"); detail.Type == gjson.String {
		return detail.String()
	}
	switch {
	case res.Type == gjson.String:
		return res.String()
	case res.IsObject():
		var parts []string
		res.ForEach(func(field, msgs gjson.Result) bool {
			parts = append(parts, field.String()+": "+joinMessages(msgs))
			return true
		})
		if len(parts) > 0 {
			return strings.Join(parts, " | ")
		}
	case res.IsArray():
		if msg := joinMessages(res); msg != "" {
			return msg
		}
	}
	return fallback
}

// FieldErrors devuelve los mensajes por campo cuando el payload es un mapa.
func (e *APIError) FieldErrors() map[string][]string {
	res := gjson.ParseBytes(e.Payload)
	if !res.IsObject() {
		return nil
	}
	out := make(map[string][]string)
	res.ForEach(func(field, msgs gjson.Result) bool {
		if field.String() == "detail" {
			return true
		}
		if msgs.IsArray() {
			for _, m := range msgs.Array() {
				out[field.String()] = append(out[field.String()], m.String())
			}
		} else {
			out[field.String()] = []string{msgs.String()}
		}
		return true
	})
	return out
}

func joinMessages(msgs gjson.Result) string {
	if !msgs.IsArray() {
		return msgs.String()
	}
	items := msgs.Array()
	out := make([]string, 0, len(items))
	for _, m := range items {
		out = append(out, m.String())
	}
	return strings.Join(out, ", ")
}

// NetworkError envuelve fallos de transporte (DNS, conexion, lectura).
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Message normaliza cualquier error a un texto para mostrar.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var guard GuardError
	if errors.As(err, &guard) {
		return guard.Error()
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message(fallback)
	}
	return fallback
}
