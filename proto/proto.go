package proto

import gonanoid "github.com/matoous/go-nanoid/v2"

// Version of the control protocol.
const Version = "1"

// ID generates a new message id.
func ID() string {
	i, _ := gonanoid.New()
	return i
}

type validatable interface {
	Validate() error
}
