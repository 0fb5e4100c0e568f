package prompt

import (
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
)

// ErrPasswordMismatch indicates the confirmation differs from the password.
var ErrPasswordMismatch = errors.New("passwords do not match")

// Password prompts for a masked password of at least minLength characters.
func Password(label string, minLength int) (string, error) {
	p := promptui.Prompt{
		Label: label,
		Mask:  '*',
		Validate: func(input string) error {
			if len(input) < minLength {
				return fmt.Errorf("password must be at least %d characters", minLength)
			}
			return nil
		},
	}

	result, err := p.Run()
	return result, wrapError(err)
}

// NewPassword prompts for a password of at least minLength characters and
// its confirmation.
func NewPassword(minLength int) (string, error) {
	password, err := Password("Password", minLength)
	if err != nil {
		return "", err
	}
	confirm, err := Password("Confirm password", 0)
	if err != nil {
		return "", err
	}
	if password != confirm {
		return "", ErrPasswordMismatch
	}
	return password, nil
}
