package inbound

type RequestCodeRequest struct {
	Identity string `json:"identity"`
}

type RequestCodeResponse struct {
	ExpiresAt string `json:"expires_at"`
}

type VerifyCodeRequest struct {
	Identity string `json:"identity"`
	Code     string `json:"code"`
}

type VerifyCodeResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

type VerifySessionRequest struct {
	Token string `json:"token"`
}

type SessionResponse struct {
	Identity  string `json:"identity"`
	Role      string `json:"role"`
	IssuedAt  string `json:"issued_at"`
	ExpiresAt string `json:"expires_at"`
}
