package hours

import "errors"

var (
	// ErrCacheRead возвращается при ошибке чтения из Redis
	ErrCacheRead = errors.New("hours.cache: failed to read")

	// ErrCacheWrite возвращается при ошибке записи в Redis
	ErrCacheWrite = errors.New("hours.cache: failed to write")
)
