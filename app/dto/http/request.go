package http

type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
