package request

type CreatePacketRequest struct {
	QRCount int     `json:"qr_count" binding:"required,min=1,max=100"`
	Price   float64 `json:"price" binding:"omitempty,gte=0"`
}

type SellPacketRequest struct {
	BuyerName  string   `json:"buyer_name" binding:"required"`
	BuyerEmail *string  `json:"buyer_email" binding:"omitempty,email"`
	SalePrice  *float64 `json:"sale_price" binding:"omitempty,gte=0"`
}

// AttachArtifactRequest carries the already-uploaded artifact location plus
// its raw content for validation. Upload handling itself is external.
type AttachArtifactRequest struct {
	ArtifactURL string `json:"artifact_url" binding:"required,url"`
	Content     string `json:"content" binding:"required"` // base64
	ContentType string `json:"content_type"`
}
