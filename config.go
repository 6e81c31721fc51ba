package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Credential is the account used to log in to the SMTP server and as the From address.
// The password is stored in plaintext, exactly as the operator typed it.
type Credential struct {
	User     string `json:"gmail_user" validate:"required"`
	Password string `json:"gmail_password" validate:"required"`
}

// CredentialStore reads and writes the credential file. It never prompts.
type CredentialStore struct {
	path string
}

func NewCredentialStore(path string) *CredentialStore {
	return &CredentialStore{path: path}
}

func (s *CredentialStore) Path() string {
	return s.path
}

// Load returns ErrConfigMissing when the file does not exist and ErrConfigCorrupt when it
// cannot be decoded or a field is absent or empty.
func (s *CredentialStore) Load() (Credential, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Credential{}, fmt.Errorf("%w: %s", ErrConfigMissing, s.path)
	}
	if err != nil {
		return Credential{}, fmt.Errorf("%w: %v", ErrConfigCorrupt, err)
	}

	var cred Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return Credential{}, fmt.Errorf("%w: %v", ErrConfigCorrupt, err)
	}
	if err := validate.Struct(cred); err != nil {
		return Credential{}, fmt.Errorf("%w: %v", ErrConfigCorrupt, err)
	}
	return cred, nil
}

// Save overwrites the credential file.
func (s *CredentialStore) Save(cred Credential) error {
	if err := validate.Struct(cred); err != nil {
		return fmt.Errorf("%w: %v", ErrConfigCorrupt, err)
	}

	data, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConfigWrite, err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("%w: %v", ErrConfigWrite, err)
	}
	return nil
}
