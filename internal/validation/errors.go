package validation

import "fmt"

// Error помечает ошибку как ошибку валидации пользовательского ввода.
// Middleware обработки ошибок отличает такие ошибки от внутренних
// через errors.As и отвечает клиенту статусом 400.
type Error struct {
	message string
}

// Error возвращает текст ошибки для клиента.
func (e *Error) Error() string {
	return e.message
}

// Errorf создаёт ошибку валидации с форматированным сообщением.
func Errorf(format string, args ...interface{}) error {
	return &Error{message: fmt.Sprintf(format, args...)}
}
