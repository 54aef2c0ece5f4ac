package notification_relay

import "errors"

// ErrRelay возвращается, когда пачку уведомлений не удалось обработать
var ErrRelay = errors.New("notification_relay: relay batch failed")
