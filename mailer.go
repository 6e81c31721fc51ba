package main

// Contact is one row of the contacts table.
type Contact struct {
	Name  string
	Email string
}

type Message struct {
	From    string
	To      string
	Cc      []string
	Subject string
	HTML    string
}

// Mailer submits messages over an already opened session.
type Mailer interface {
	Send(msg Message) error
	Close() error
}
