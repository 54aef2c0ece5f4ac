package rabbitmq

import "errors"

var (
	// ErrConnect возвращается, когда не удалось подключиться к брокеру
	ErrConnect = errors.New("rabbitmq publisher: failed to connect")

	// ErrDeclare возвращается при ошибке объявления exchange
	ErrDeclare = errors.New("rabbitmq publisher: failed to declare exchange")

	// ErrPublish возвращается при ошибке публикации сообщения
	ErrPublish = errors.New("rabbitmq publisher: failed to publish")

	// ErrNotConfirmed возвращается, когда брокер не подтвердил сообщение
	ErrNotConfirmed = errors.New("rabbitmq publisher: message not confirmed by broker")
)
