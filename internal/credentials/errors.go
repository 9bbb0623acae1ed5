package credentials

import "errors"

var (
	ErrTokenNotFound        = errors.New("token not found in environment or .env file")
	ErrMalformedToken       = errors.New("token is not valid JSON")
	ErrIncompleteCredential = errors.New("token must contain username and password fields")
)
