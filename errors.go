package main

import "errors"

var (
	// ErrConfigMissing indicates there is no credential file and none was created.
	ErrConfigMissing = errors.New("config file not found")

	// ErrConfigCorrupt indicates the credential file is unparsable or lacks a field.
	ErrConfigCorrupt = errors.New("config file is missing or corrupted")

	// ErrConfigWrite indicates the credential file could not be written.
	ErrConfigWrite = errors.New("failed to write config file")

	// ErrSettingsInvalid indicates the run settings file could not be parsed.
	ErrSettingsInvalid = errors.New("invalid settings file")

	// ErrInvalidParams indicates a run parameter was rejected.
	ErrInvalidParams = errors.New("invalid run parameters")

	// ErrTemplateNotFound indicates the template is not a readable UTF-8 text file.
	ErrTemplateNotFound = errors.New("template file not found")

	// ErrContactsNotFound indicates the contacts file could not be opened as a table.
	ErrContactsNotFound = errors.New("contacts file not found")

	// ErrContactsSchema indicates the contacts table lacks a required column.
	ErrContactsSchema = errors.New("contacts file is missing a required column")

	// ErrAuthentication indicates the SMTP server rejected the credentials.
	ErrAuthentication = errors.New("authentication failed")

	// ErrConnection indicates any other failure while opening the SMTP session.
	ErrConnection = errors.New("failed to set up the SMTP server")

	// ErrSend indicates a single message could not be submitted.
	ErrSend = errors.New("failed to send email")
)
