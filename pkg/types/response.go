package types

import "github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/pagination"

type SuccessEnvelope struct {
	Data any `json:"data"`
}

// PagedEnvelope wraps list responses with their page metadata.
type PagedEnvelope struct {
	Data any             `json:"data"`
	Meta pagination.Meta `json:"meta"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
