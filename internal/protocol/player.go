package protocol

// Player describes one active session in the /players/active listing.
type Player struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	CurrentScore int    `json:"currentScore"`
	Mode         string `json:"mode"`
	Status       string `json:"status"`
}

// ErrorResponse is the JSON body of failed HTTP requests.
type ErrorResponse struct {
	Error string `json:"error"`
}
