package blog

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var (
	usernameRE = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,20}$`)
	passwordRE = regexp.MustCompile(`^.{3,20}$`)
	emailRE    = regexp.MustCompile(`^[\S]+@[\S]+\.[\S]+$`)
)

// ValidationError carries per-field messages for rejected input. It is
// recovered locally: handlers re-render the submitted values alongside the
// field messages rather than failing the request.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		names = append(names, field)
	}
	sort.Strings(names)
	return fmt.Sprintf("invalid fields: %s", strings.Join(names, ", "))
}

// ValidatePost rejects a post whose subject or content is empty.
func ValidatePost(subject, content string) error {
	fields := make(map[string]string)
	if strings.TrimSpace(subject) == "" {
		fields["subject"] = "subject must not be empty"
	}
	if strings.TrimSpace(content) == "" {
		fields["content"] = "content must not be empty"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// ValidateSignup checks registration input: username 3-20 word characters,
// password 3-20 characters matching its verification, optional email.
func ValidateSignup(username, password, verify, email string) error {
	fields := make(map[string]string)
	if !usernameRE.MatchString(username) {
		fields["username"] = "that's not a valid username"
	}
	if !passwordRE.MatchString(password) {
		fields["password"] = "that wasn't a valid password"
	} else if password != verify {
		fields["verify"] = "your passwords didn't match"
	}
	if email != "" && !emailRE.MatchString(email) {
		fields["email"] = "that's not a valid email"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// ValidateLogin rejects structurally malformed credentials before any hash
// work happens.
func ValidateLogin(username, password string) error {
	fields := make(map[string]string)
	if username == "" {
		fields["username"] = "username is required"
	}
	if password == "" {
		fields["password"] = "password is required"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
