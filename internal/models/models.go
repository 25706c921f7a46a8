package models

// BookingRequest - тело запроса на бронирование мест сеанса
type BookingRequest struct {
	Seats []Seat `json:"seats" validate:"required,min=1,dive"`
}

// BookingResponse - подтверждение бронирования от API кинотеатра
type BookingResponse struct {
	ID             string   `json:"id"`
	MovieSessionID int64    `json:"movieSessionId"`
	UserID         int64    `json:"userId"`
	SeatNumbers    []string `json:"seatNumbers,omitempty"`
	Status         string   `json:"status,omitempty"`
	BookedAt       string   `json:"bookedAt,omitempty"`
}

// PaymentRequest - тело запроса на оплату бронирования
type PaymentRequest struct {
	BookingID string `json:"bookingId"`
}

// LoginRequest - модель для входа
type LoginRequest struct {
	Username string `json:"username" validate:"required,min=3,max=20,username"`
	Password string `json:"password" validate:"required,min=6,max=50"`
}

// LoginResponse - ответ API кинотеатра при входе
type LoginResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Token    string `json:"token"`
	Message  string `json:"message,omitempty"`
}

// RegisterRequest - модель для регистрации
type RegisterRequest struct {
	Username        string `json:"username" validate:"required,min=3,max=20,username"`
	Password        string `json:"password" validate:"required,min=6,max=50,strong_password"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// RemoteRegisterRequest is what the cinema API accepts; the confirmation never leaves the BFF.
type RemoteRegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterResponse - ответ API кинотеатра при регистрации
type RegisterResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Message  string `json:"message,omitempty"`
}

// ToggleSeatRequest - модель для выбора/снятия места на экране бронирования
type ToggleSeatRequest struct {
	RowNumber  int `json:"rowNumber" validate:"required,min=1"`
	SeatNumber int `json:"seatNumber" validate:"required,min=1"`
}

// APIErrorBody is the error envelope of the cinema API.
type APIErrorBody struct {
	Message string `json:"message"`
}
