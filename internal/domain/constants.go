package domain

// Значения по умолчанию
const (
	// DefaultBufferHours буфер вокруг подтвержденного бронирования, если у аккаунта он не задан
	DefaultBufferHours = 2
	// DefaultTimezone бизнес-таймзона, в которой сравниваются даты
	DefaultTimezone = "Europe/Moscow"
)

// Ограничения бизнес-валидации
const (
	MinBufferHours     = 0
	MaxBufferHours     = 72
	MaxRentalDays      = 90
	MaxChildSeats      = 4
	MaxNotesLength     = 500
	MaxCustomerNameLen = 200
	MaxPlaceLength     = 300
	MinPhoneDigits     = 7
	MaxPhoneDigits     = 15
)

// Форматы даты и времени
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)
