package validation

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type sampleRequest struct {
	Name  string `json:"name" binding:"required,max=5"`
	Email string `json:"email" binding:"omitempty,email"`
	Count int    `json:"count"`
}

func (r sampleRequest) Validate() []FieldError {
	if r.Name == "bad" {
		return []FieldError{{Field: "name", Message: "is reserved"}}
	}
	return nil
}

func bind(t *testing.T, body string) []FieldError {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	var req sampleRequest
	return BindJSON(c, &req)
}

func TestBindJSON(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []FieldError
	}{
		{name: "valid", body: `{"name":"ok"}`, want: nil},
		{name: "missing required field uses json name", body: `{}`, want: []FieldError{{Field: "name", Message: "is required"}}},
		{name: "too long", body: `{"name":"toolong"}`, want: []FieldError{{Field: "name", Message: "must be at most 5 characters"}}},
		{name: "bad email", body: `{"name":"a","email":"nope"}`, want: []FieldError{{Field: "email", Message: "must be a valid email address"}}},
		{name: "wrong type", body: `{"name":"a","count":"x"}`, want: []FieldError{{Field: "count", Message: "must be a int"}}},
		{name: "malformed", body: `{"name" "a"}`, want: []FieldError{{Field: "body", Message: "malformed JSON"}}},
		{name: "truncated", body: `{"name":`, want: []FieldError{{Field: "body", Message: "malformed JSON"}}},
		{name: "empty body", body: ``, want: []FieldError{{Field: "body", Message: "request body is required"}}},
		{name: "custom rule", body: `{"name":"bad"}`, want: []FieldError{{Field: "name", Message: "is reserved"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, bind(t, tt.body))
		})
	}
}

func TestBlank(t *testing.T) {
	assert.True(t, Blank(""))
	assert.True(t, Blank("  \t"))
	assert.False(t, Blank(" x "))
}
