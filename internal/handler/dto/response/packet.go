package response

import (
	"time"

	"kyuaar/internal/usecase/queries"
)

type PacketResponse struct {
	ID               string     `json:"id"`
	ManagementID     string     `json:"management_id"`
	QRCount          int        `json:"qr_count"`
	State            string     `json:"state"`
	RedirectTarget   *string    `json:"redirect_target,omitempty"`
	BuyerName        *string    `json:"buyer_name,omitempty"`
	BuyerEmail       *string    `json:"buyer_email,omitempty"`
	SalePrice        *float64   `json:"sale_price,omitempty"`
	SoldAt           *time.Time `json:"sold_at,omitempty"`
	Price            float64    `json:"price"`
	ArtifactURL      *string    `json:"artifact_url,omitempty"`
	LastConfiguredAt *time.Time `json:"last_configured_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func FromPacketView(v *queries.PacketView) PacketResponse {
	return PacketResponse{
		ID:               v.ID,
		ManagementID:     v.ManagementID,
		QRCount:          v.QRCount,
		State:            v.State,
		RedirectTarget:   v.RedirectTarget,
		BuyerName:        v.BuyerName,
		BuyerEmail:       v.BuyerEmail,
		SalePrice:        v.SalePrice,
		SoldAt:           v.SoldAt,
		Price:            v.Price,
		ArtifactURL:      v.ArtifactURL,
		LastConfiguredAt: v.LastConfiguredAt,
		CreatedAt:        v.CreatedAt,
		UpdatedAt:        v.UpdatedAt,
	}
}

func FromPacketList(views []*queries.PacketView) []PacketResponse {
	out := make([]PacketResponse, len(views))
	for i, v := range views {
		out[i] = FromPacketView(v)
	}
	return out
}

type StatusResponse struct {
	PacketID   string  `json:"packet_id"`
	State      string  `json:"state"`
	Configured bool    `json:"configured"`
	Target     *string `json:"redirect_target,omitempty"`
}

func FromStatusView(v *queries.StatusView) StatusResponse {
	return StatusResponse{
		PacketID:   v.ID,
		State:      v.State,
		Configured: v.Configured,
		Target:     v.Target,
	}
}
