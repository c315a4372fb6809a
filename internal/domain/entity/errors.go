package entity

import "errors"

var (
	// ErrNotFound файл снимка не найден
	ErrNotFound = errors.New("image not found")
	// ErrDecode снимок не удалось декодировать
	ErrDecode = errors.New("failed to decode image")
	// ErrPoorPhoto снимок не прошёл проверку качества
	ErrPoorPhoto = errors.New("photo rejected by quality gate")
	// ErrInvalidInput вход нельзя привести к ожидаемому виду (пустая область, неверная концентрация)
	ErrInvalidInput = errors.New("invalid input")
	// ErrAcceptance точность первой ступени каскада ниже порога приёмки
	ErrAcceptance = errors.New("first stage accuracy below acceptance threshold")
	// ErrMixedDrugs в серии встретились планшеты с разными препаратами
	ErrMixedDrugs = errors.New("plates belong to different drugs")
	// ErrDuplicateConcentration в серии повторяется концентрация
	ErrDuplicateConcentration = errors.New("duplicate concentration in series")
	// ErrEmptySeries серия без планшетов
	ErrEmptySeries = errors.New("empty concentration series")
	// ErrIncompleteSeries для одного из планшетов серии нет вердикта
	ErrIncompleteSeries = errors.New("series has plates without verdict")
	// ErrRegionMismatch планшеты серии разбиты на разное число лунок
	ErrRegionMismatch = errors.New("plates have different region counts")
)
