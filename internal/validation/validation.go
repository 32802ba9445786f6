// Package validation checks account credentials submitted at signup.
package validation

import (
	"fmt"
	"regexp"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	UsernameMaxLength = 150
	PasswordMinLength = 12
	PasswordMaxLength = 128
	EmailMaxLength    = 254
)

var (
	usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)
	digitPattern    = regexp.MustCompile(`[0-9]`)
	specialPattern  = regexp.MustCompile(`[!@#$%^&*()_+\-=\[\]{};':"\\|,.<>\/?]`)

	validate = validator.New()
)

// ValidatePassword checks if a password meets security requirements
func ValidatePassword(password string) error {
	n := utf8.RuneCountInString(password)
	if n < PasswordMinLength {
		return fmt.Errorf("password must be at least %d characters long", PasswordMinLength)
	}
	if n > PasswordMaxLength {
		return fmt.Errorf("password must not exceed %d characters", PasswordMaxLength)
	}

	var hasUpper, hasLower bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		}
	}
	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !digitPattern.MatchString(password) {
		return fmt.Errorf("password must contain at least one digit")
	}
	if !specialPattern.MatchString(password) {
		return fmt.Errorf("password must contain at least one special character (!@#$%%^&*)")
	}

	return nil
}

// ValidateUsername accepts letters, digits and @ . + - _ up to 150 characters.
func ValidateUsername(username string) error {
	n := utf8.RuneCountInString(username)
	if n < 3 {
		return fmt.Errorf("username must be at least 3 characters long")
	}
	if n > UsernameMaxLength {
		return fmt.Errorf("username must not exceed %d characters", UsernameMaxLength)
	}
	if !usernamePattern.MatchString(username) {
		return fmt.Errorf("username may contain only letters, numbers, and @/./+/-/_ characters")
	}
	return nil
}

// ValidateEmail checks email format and length.
func ValidateEmail(email string) error {
	if len(email) > EmailMaxLength {
		return fmt.Errorf("email must not exceed %d characters", EmailMaxLength)
	}
	if err := validate.Var(email, "required,email"); err != nil {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// Signup validates every credential field and reports failures per field.
func Signup(username, email, password string) map[string][]string {
	errs := map[string][]string{}
	if err := ValidateUsername(username); err != nil {
		errs["username"] = append(errs["username"], err.Error())
	}
	if err := ValidateEmail(email); err != nil {
		errs["email"] = append(errs["email"], err.Error())
	}
	if err := ValidatePassword(password); err != nil {
		errs["password"] = append(errs["password"], err.Error())
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
