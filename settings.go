package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/samber/lo"
)

// Settings holds the defaults offered at each prompt. Every key is optional.
type Settings struct {
	Subject    string   `yaml:"subject"`
	Template   string   `yaml:"template"`
	Contacts   string   `yaml:"contacts"`
	SMTPHost   string   `yaml:"smtp_host"`
	SMTPPort   int      `yaml:"smtp_port"`
	SMTPCrypto string   `yaml:"smtp_crypto"`
	Cc         []string `yaml:"cc"`
}

func DefaultSettings() Settings {
	return Settings{
		Template:   "email_template.html",
		Contacts:   "contacts.xlsx",
		SMTPHost:   "smtp.gmail.com",
		SMTPPort:   587,
		SMTPCrypto: CryptoStartTLS,
	}
}

// LoadSettings overlays the YAML file at path on DefaultSettings. A missing file is not an error.
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return settings, nil
	}
	if err != nil {
		return settings, fmt.Errorf("%w: %v", ErrSettingsInvalid, err)
	}

	if err := yaml.Unmarshal(data, &settings); err != nil {
		return settings, fmt.Errorf("%w: %s => %v", ErrSettingsInvalid, path, err)
	}
	settings.Cc = normalizeAddresses(settings.Cc)
	return settings, nil
}

// RunParams is everything one run needs besides the credential.
type RunParams struct {
	Subject      string
	TemplatePath string   `validate:"required"`
	ContactsPath string   `validate:"required"`
	Host         string   `validate:"required"`
	Port         int      `validate:"min=1,max=65535"`
	Crypto       string   `validate:"oneof=tls ssl none"`
	Cc           []string `validate:"dive,email"`
}

// promptParams asks, in order, for the subject, template path, contacts path, SMTP host and port.
// Crypto and the carbon-copy list come from settings only.
func promptParams(p *Prompter, s Settings) (RunParams, error) {
	params := RunParams{
		Crypto: strings.ToLower(s.SMTPCrypto),
		Cc:     s.Cc,
	}

	var err error
	if params.Subject, err = p.Ask("Enter the email subject", s.Subject); err != nil {
		return params, err
	}
	if params.TemplatePath, err = p.Ask("Enter the HTML email template file", s.Template); err != nil {
		return params, err
	}
	if params.ContactsPath, err = p.Ask("Enter the Excel file with contacts", s.Contacts); err != nil {
		return params, err
	}
	if params.Host, err = p.Ask("Enter the SMTP server", s.SMTPHost); err != nil {
		return params, err
	}

	port, err := p.Ask("Enter the SMTP port", strconv.Itoa(s.SMTPPort))
	if err != nil {
		return params, err
	}
	if params.Port, err = strconv.Atoi(port); err != nil {
		return params, fmt.Errorf("%w: SMTP port %q is not a number", ErrInvalidParams, port)
	}

	if err := validate.Struct(params); err != nil {
		return params, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return params, nil
}

// parseAddressList splits a comma separated list, dropping blanks.
func parseAddressList(s string) []string {
	return normalizeAddresses(strings.Split(s, ","))
}

func normalizeAddresses(addrs []string) []string {
	return lo.Compact(lo.Map(addrs, func(a string, _ int) string {
		return strings.TrimSpace(a)
	}))
}
