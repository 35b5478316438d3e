package notify

import "fmt"

// Confirmation carries everything the post-commit emails need; it is copied
// out of the transaction before dispatch so the goroutine never touches
// request state.
type Confirmation struct {
	ClientName  string
	ClientEmail string
	ServiceName string
	Date        string // YYYY-MM-DD
	StartTime   string // HH:MM
}

// ClientMessage is the confirmation sent to the person who booked.
func ClientMessage(c Confirmation) (subject, body string) {
	subject = "Your appointment is booked"
	body = fmt.Sprintf(
		"Hi %s, your appointment has been received.\n\n"+
			"Service: %s\nDate: %s at %s\n\n"+
			"See you soon!",
		c.ClientName, c.ServiceName, c.Date, c.StartTime,
	)
	return subject, body
}

// StudioMessage is the alert sent to the studio inbox for every new booking.
func StudioMessage(c Confirmation) (subject, body string) {
	subject = "New appointment booked"
	body = fmt.Sprintf(
		"New booking received.\n\n"+
			"Client: %s (%s)\nService: %s\nDate: %s at %s",
		c.ClientName, c.ClientEmail, c.ServiceName, c.Date, c.StartTime,
	)
	return subject, body
}
