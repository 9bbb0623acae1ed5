// Package credentials resolves named tokens holding JSON encoded
// username/password pairs from the process environment or a .env file.
package credentials

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// DefaultEnvFile is read from the working directory when the environment
// does not hold the token.
const DefaultEnvFile = ".env"

// Credential is a resolved username/password pair.
type Credential struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// String masks the password so a credential is safe to log.
func (c Credential) String() string {
	return fmt.Sprintf("{username:%s password:***}", c.Username)
}

// Resolver looks tokens up in the environment first and falls back to a
// .env file. Every call re-reads both sources.
type Resolver struct {
	// EnvFile is the fallback file; defaults to DefaultEnvFile.
	EnvFile string

	// LookupEnv defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)

	// ReadFile defaults to os.ReadFile.
	ReadFile func(string) ([]byte, error)

	// Parser defaults to NaiveLineParser.
	Parser LineParser
}

// NewResolver returns a Resolver reading envFile as its fallback.
func NewResolver(envFile string) *Resolver {
	return &Resolver{EnvFile: envFile}
}

// Resolve returns the credential stored under tokenName. It fails with
// ErrTokenNotFound, ErrMalformedToken or ErrIncompleteCredential and never
// returns a partially filled credential.
func (r *Resolver) Resolve(tokenName string) (Credential, error) {
	raw, err := r.rawToken(tokenName)
	if err != nil {
		return Credential{}, err
	}

	var fields map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return Credential{}, fmt.Errorf("%s: %w", tokenName, ErrMalformedToken)
	}

	username, _ := fields["username"].(string)
	password, _ := fields["password"].(string)
	if username == "" || password == "" {
		return Credential{}, fmt.Errorf("%s: %w", tokenName, ErrIncompleteCredential)
	}

	return Credential{Username: username, Password: password}, nil
}

func (r *Resolver) rawToken(tokenName string) (string, error) {
	lookupEnv := r.LookupEnv
	if lookupEnv == nil {
		lookupEnv = os.LookupEnv
	}
	if v, ok := lookupEnv(tokenName); ok && v != "" {
		return v, nil
	}

	readFile := r.ReadFile
	if readFile == nil {
		readFile = os.ReadFile
	}
	path := r.EnvFile
	if strings.TrimSpace(path) == "" {
		path = DefaultEnvFile
	}
	parser := r.Parser
	if parser == nil {
		parser = NaiveLineParser{}
	}

	data, err := readFile(path)
	if err == nil {
		if v, ok := parser.Lookup(string(data), tokenName); ok {
			return v, nil
		}
	} else if !os.IsNotExist(err) {
		// an unreadable file counts as absent, but say why
		return "", fmt.Errorf("%s: %w (read %s: %v)", tokenName, ErrTokenNotFound, path, err)
	}

	return "", fmt.Errorf("%s: %w", tokenName, ErrTokenNotFound)
}
