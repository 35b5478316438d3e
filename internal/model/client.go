package model

import "time"

type Client struct {
	ID        string
	Name      string
	Surname   string
	Email     string
	Phone     string
	CreatedAt time.Time
}

func (c Client) FullName() string {
	return c.Name + " " + c.Surname
}
