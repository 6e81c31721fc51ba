package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// run drives one mail merge: credential, parameters, template, contacts, session, send, close.
// It returns the first fatal error; per-recipient failures only show up in the report.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fset := flag.NewFlagSet("mailmerge", flag.ContinueOnError)
	fset.SetOutput(stderr)
	configPath := fset.String("config", "config.json", "Path to the credential file")
	settingsPath := fset.String("settings", "mailmerge.yml", "Path to the settings file")
	cc := fset.String("cc", "", "Comma separated carbon-copy addresses, overrides the settings file")
	crypto := fset.String("crypto", "", "SMTP crypto: tls (STARTTLS), ssl or none, overrides the settings file")
	assumeDefaults := fset.Bool("y", false, "Accept every default without prompting")
	resetConfig := fset.Bool("reset-config", false, "Create a new credential file even if one exists")
	logLevel := fset.String("log-level", "warn", "Log level: debug, info, warn or error")
	if err := fset.Parse(args); err != nil {
		return err
	}

	logger, err := newLogger(stderr, *logLevel)
	if err != nil {
		return err
	}

	settings, err := LoadSettings(*settingsPath)
	if err != nil {
		return err
	}
	if *cc != "" {
		settings.Cc = parseAddressList(*cc)
	}
	if *crypto != "" {
		settings.SMTPCrypto = *crypto
	}

	prompter := NewPrompter(stdin, stdout, *assumeDefaults)

	cred, err := resolveCredential(NewCredentialStore(*configPath), prompter, stdout, *resetConfig)
	if err != nil {
		return err
	}

	params, err := promptParams(prompter, settings)
	if err != nil {
		return err
	}
	logger.Info("run parameters", "host", params.Host, "port", params.Port, "crypto", params.Crypto, "cc", strings.Join(params.Cc, ","))

	tmpl, err := LoadTemplate(params.TemplatePath)
	if err != nil {
		return err
	}

	contacts, err := LoadContacts(params.ContactsPath)
	if err != nil {
		return err
	}
	logger.Info("contacts loaded", "path", params.ContactsPath, "count", len(contacts))

	fmt.Fprintln(stdout, "Setting up the SMTP server...")
	fmt.Fprintln(stdout, "Logging in...")
	session, err := OpenSession(SMTPConfig{
		Host:     params.Host,
		Port:     params.Port,
		User:     cred.User,
		Password: cred.Password,
		Crypto:   params.Crypto,
	})
	if err != nil {
		if errors.Is(err, ErrAuthentication) {
			fmt.Fprintln(stdout, `You may need to enable "Less secure app access" or use an app password for your account.`)
		}
		return err
	}
	fmt.Fprintln(stdout, "Logged in successfully!")
	defer func() {
		if err := session.Close(); err != nil {
			logger.Warn("failed to close SMTP session", "err", err)
		}
	}()

	fmt.Fprintf(stdout, "Sending emails to %d recipients...\n", len(contacts))
	report := NewDispatcher(session, cred.User, params.Subject, tmpl, params.Cc, stdout, logger).SendAll(contacts)

	fmt.Fprintf(stdout, "Done: %d delivered, %d failed\n", report.Delivered(), len(report.Failed()))
	return nil
}

// resolveCredential loads the stored credential. When none exists it asks the operator whether to
// create one; reset skips straight to creating one.
func resolveCredential(store *CredentialStore, p *Prompter, out io.Writer, reset bool) (Credential, error) {
	if !reset {
		fmt.Fprintln(out, "Reading config file...")
		cred, err := store.Load()
		if err == nil {
			fmt.Fprintln(out, "Config file read successfully!")
			return cred, nil
		}
		if !errors.Is(err, ErrConfigMissing) {
			return Credential{}, err
		}

		ok, err := p.Confirm("Config file not found. Create a new one?")
		if err != nil {
			return Credential{}, err
		}
		if !ok {
			return Credential{}, fmt.Errorf("%w: %s", ErrConfigMissing, store.Path())
		}
	}

	cred, err := promptCredential(p)
	if err != nil {
		return Credential{}, err
	}

	fmt.Fprintln(out, "Creating config file...")
	if err := store.Save(cred); err != nil {
		return Credential{}, err
	}
	fmt.Fprintln(out, "Config file created successfully!")

	return store.Load()
}

func promptCredential(p *Prompter) (Credential, error) {
	var cred Credential
	var err error

	if cred.User, err = p.Ask("Enter your Gmail email", ""); err != nil {
		return cred, err
	}
	if cred.Password, err = p.Secret("Enter your Gmail password"); err != nil {
		return cred, err
	}

	if cred.User == "" || cred.Password == "" {
		return Credential{}, fmt.Errorf("%w: Gmail email and password must not be empty", ErrInvalidParams)
	}
	return cred, nil
}
