package pricing

import "errors"

var (
	// ErrInvalidPolicy возвращается при некорректных параметрах комиссии
	ErrInvalidPolicy = errors.New("pricing: invalid fee policy")

	// ErrNegativeAmount возвращается при отрицательной ставке или длительности
	ErrNegativeAmount = errors.New("pricing: rate and duration must be non-negative")
)
