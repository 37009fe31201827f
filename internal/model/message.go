package model

// Message is the fixed JSON body returned by the order and product stub routes.
type Message struct {
	Message string `json:"message"`
}
