package request

// ConfigureRequest is the destination submission from either scan form.
// Type selects which of the two fields carries the destination.
type ConfigureRequest struct {
	Type  string `json:"type" binding:"required,oneof=whatsapp custom"`
	Phone string `json:"phone"`
	URL   string `json:"url"`
}
