package dto

type CreateTaskRequest struct {
	BusinessName string `json:"business_name"`
	Brief        string `json:"brief"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	Note         string `json:"note"`
}

type FeedbackRequest struct {
	Comment string `json:"comment"`
}

type BulkIDsRequest struct {
	IDs []string `json:"ids"`
}
