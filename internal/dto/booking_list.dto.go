package dto

type BookingListDTO struct {
	ID             uint   `json:"id"`
	Date           string `json:"date"`
	Time           string `json:"time"`
	Status         string `json:"status"`
	ProviderName   string `json:"provider_name"`
	ClientName     string `json:"client_name"`
	Notes          string `json:"notes"`
	PostponeReason string `json:"postpone_reason,omitempty"`
}
