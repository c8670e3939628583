package dto

type FeedbackRequest struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}
