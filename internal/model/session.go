package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"unicode"
)

// FlexibleID accepts identifiers encoded as JSON strings or numbers.
type FlexibleID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *FlexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = FlexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = FlexibleID(n.String())
	return nil
}

// User is the identity record kept alongside the token.
type User struct {
	ID       FlexibleID `json:"id"`
	Username string     `json:"username"`
	Email    string     `json:"email,omitempty"`
}

// Initial returns the upper-cased first letter of the username.
func (u User) Initial() string {
	for _, r := range u.Username {
		return string(unicode.ToUpper(r))
	}
	return "?"
}

// LoginCredentials is the login request body.
type LoginCredentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterCredentials is the register request body.
type RegisterCredentials struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by login and register.
type AuthResponse struct {
	User    *User  `json:"user,omitempty"`
	Token   string `json:"token"`
	Message string `json:"message,omitempty"`
}
