package blog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePost(t *testing.T) {
	testCases := []struct {
		name       string
		subject    string
		content    string
		wantFields []string
	}{
		{name: "valid", subject: "Hello", content: "World"},
		{name: "empty subject", subject: "", content: "World", wantFields: []string{"subject"}},
		{name: "empty content", subject: "Hello", content: "", wantFields: []string{"content"}},
		{name: "whitespace only", subject: "   ", content: "\n\t", wantFields: []string{"subject", "content"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePost(tc.subject, tc.content)
			if len(tc.wantFields) == 0 {
				assert.NoError(t, err)
				return
			}

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			for _, field := range tc.wantFields {
				assert.Contains(t, verr.Fields, field)
			}
			assert.Len(t, verr.Fields, len(tc.wantFields))
		})
	}
}

func TestValidateSignup(t *testing.T) {
	testCases := []struct {
		name       string
		username   string
		password   string
		verify     string
		email      string
		wantFields []string
	}{
		{name: "valid", username: "prakhar", password: "secret", verify: "secret"},
		{name: "valid with email", username: "prakhar", password: "secret", verify: "secret", email: "p@example.com"},
		{name: "short username", username: "ab", password: "secret", verify: "secret", wantFields: []string{"username"}},
		{name: "username with spaces", username: "a user", password: "secret", verify: "secret", wantFields: []string{"username"}},
		{name: "short password", username: "prakhar", password: "ab", verify: "ab", wantFields: []string{"password"}},
		{name: "mismatched verify", username: "prakhar", password: "secret", verify: "other", wantFields: []string{"verify"}},
		{name: "bad email", username: "prakhar", password: "secret", verify: "secret", email: "nope", wantFields: []string{"email"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateSignup(tc.username, tc.password, tc.verify, tc.email)
			if len(tc.wantFields) == 0 {
				assert.NoError(t, err)
				return
			}

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			for _, field := range tc.wantFields {
				assert.Contains(t, verr.Fields, field)
			}
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{
		"subject": "subject must not be empty",
		"content": "content must not be empty",
	}}
	assert.Equal(t, "invalid fields: content, subject", err.Error())
}
