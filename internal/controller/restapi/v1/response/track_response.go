package response

type Accepted struct {
	Status string `json:"status"`
}

type Error struct {
	Error string `json:"error"`
}
