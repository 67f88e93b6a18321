package dto

// MintTokenRequest asks for a development token for the given subject.
type MintTokenRequest struct {
	UserID string `json:"userId" binding:"required"`
}

// MintTokenResponse carries a signed JWT.
type MintTokenResponse struct {
	Token string `json:"token"`
}
