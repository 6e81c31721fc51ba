package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/samber/lo"
)

// Outcome is the delivery result for one contact. Err is nil when the message was accepted.
type Outcome struct {
	Contact Contact
	Err     error
}

func (o Outcome) Delivered() bool {
	return o.Err == nil
}

// Report holds one outcome per contact, in input order.
type Report struct {
	Outcomes []Outcome
}

func (r Report) Delivered() int {
	return lo.CountBy(r.Outcomes, Outcome.Delivered)
}

func (r Report) Failed() []Outcome {
	return lo.Reject(r.Outcomes, func(o Outcome, _ int) bool {
		return o.Delivered()
	})
}

type Dispatcher struct {
	mailer   Mailer
	from     string
	subject  string
	template Template
	cc       []string

	out    io.Writer
	logger *slog.Logger
}

func NewDispatcher(mailer Mailer, from, subject string, tmpl Template, cc []string, out io.Writer, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		mailer:   mailer,
		from:     from,
		subject:  subject,
		template: tmpl,
		cc:       cc,
		out:      out,
		logger:   logger,
	}
}

// SendAll sends one personalized message per contact. A failed submission is recorded in the
// report and the remaining contacts are still sent.
func (d *Dispatcher) SendAll(contacts []Contact) Report {
	report := Report{Outcomes: make([]Outcome, 0, len(contacts))}
	total := len(contacts)

	for i, c := range contacts {
		err := d.mailer.Send(Message{
			From:    d.from,
			To:      c.Email,
			Cc:      d.cc,
			Subject: d.subject,
			HTML:    d.template.Render(c.Name),
		})
		report.Outcomes = append(report.Outcomes, Outcome{Contact: c, Err: err})

		if err != nil {
			d.logger.Info("send failed", "email", c.Email, "err", err)
			fmt.Fprintf(d.out, "Error sending email to %s (%s): %v\n", c.Name, c.Email, err)
			continue
		}
		d.logger.Debug("sent", "email", c.Email, "index", i+1)
		fmt.Fprintf(d.out, "[%d/%d] Email successfully sent to %s (%s)\n", i+1, total, c.Name, c.Email)
	}

	return report
}
