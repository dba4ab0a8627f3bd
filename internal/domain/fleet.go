package domain

// Vehicle автомобиль парка (ресурс бронирования)
type Vehicle struct {
	ID     int64
	Plate  string
	Model  string
	Active bool
}
