package response

import (
	"kyuaar/internal/usecase/queries"
)

type PrefillResponse struct {
	Type  string `json:"type"`
	Phone string `json:"phone,omitempty"`
	URL   string `json:"url,omitempty"`
}

// ScanResponse is the JSON rendering of a scan outcome. The redirect outcome
// itself is served as an HTTP redirect, not through this body.
type ScanResponse struct {
	Outcome string           `json:"outcome"`
	Message string           `json:"message"`
	Prefill *PrefillResponse `json:"prefill,omitempty"`
}

func FromResolution(r queries.Resolution) ScanResponse {
	resp := ScanResponse{Outcome: string(r.Outcome)}
	switch r.Outcome {
	case queries.OutcomeNotReady:
		resp.Message = "This code is not active yet. Please try again later."
	case queries.OutcomePromptConfigure:
		resp.Message = "Set a destination to activate this packet."
	case queries.OutcomePromptReconfigure:
		resp.Message = "Update the destination for this packet."
	}
	if r.Prefill != nil {
		resp.Prefill = &PrefillResponse{
			Type:  r.Prefill.Type,
			Phone: r.Prefill.Phone,
			URL:   r.Prefill.URL,
		}
	}
	return resp
}

type ConfigureResponse struct {
	Message        string `json:"message"`
	RedirectTarget string `json:"redirect_target"`
}
