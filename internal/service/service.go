// Пакет service — бизнес-логика DocQA Module.
// Сервисы возвращают типизированную ошибку Error с HTTP-кодом и
// машиночитаемым кодом из api/errors; handlers транслируют её в ответ.
package service

import "fmt"

// Error — ошибка бизнес-операции с HTTP-кодом.
type Error struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// newError создаёт типизированную ошибку сервиса.
func newError(statusCode int, code, message string) *Error {
	return &Error{StatusCode: statusCode, Code: code, Message: message}
}
