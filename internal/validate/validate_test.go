package validate_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lambda-comments/internal/validate"
)

func validPayload() map[string]any {
	return map[string]any{
		"permalink":      "http://example.com/blog/1/",
		"userAgent":      "testhost/1.0 | node-akismet/0.0.1",
		"referrer":       "http://jimpick.com/",
		"commentContent": "My comment",
		"authorName":     "Bob Bob",
		"authorEmail":    "bob@example.com",
		"authorUrl":      "http://bob.example.com/",
	}
}

func encode(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func requireErrors(t *testing.T, err error) validate.Errors {
	t.Helper()
	require.Error(t, err)
	var errs validate.Errors
	require.ErrorAs(t, err, &errs)
	return errs
}

func TestComment_Valid(t *testing.T) {
	c, err := validate.Comment(encode(t, validPayload()))
	require.NoError(t, err)

	assert.Equal(t, "http://example.com/blog/1/", c.Permalink)
	assert.Equal(t, "testhost/1.0 | node-akismet/0.0.1", c.UserAgent)
	assert.Equal(t, "My comment", c.CommentContent)
	assert.Equal(t, "bob@example.com", c.AuthorEmail)
	assert.Equal(t, "http://bob.example.com/", c.AuthorURL)
}

func TestComment_OptionalFieldsMayBeAbsent(t *testing.T) {
	p := validPayload()
	delete(p, "referrer")
	p["authorUrl"] = nil

	c, err := validate.Comment(encode(t, p))
	require.NoError(t, err)
	assert.Empty(t, c.Referrer)
	assert.Empty(t, c.AuthorURL)
}

func TestComment_EmptyPayloadAggregates(t *testing.T) {
	_, err := validate.Comment(json.RawMessage(`{}`))
	errs := requireErrors(t, err)

	assert.Equal(t, validate.MsgMissingUserAgent, errs[validate.GeneralKey])
	assert.Equal(t, validate.MsgRequired, errs["commentContent"])
	assert.Equal(t, validate.MsgRequired, errs["authorName"])
	assert.Equal(t, validate.MsgRequired, errs["authorEmail"])
	assert.Equal(t, validate.MsgRequired, errs["permalink"])
	assert.NotContains(t, errs, "userAgent")
	assert.NotContains(t, errs, "referrer")
}

func TestComment_BlankIsRequired(t *testing.T) {
	p := validPayload()
	p["commentContent"] = "   \n\t"
	p["authorName"] = ""

	_, err := validate.Comment(encode(t, p))
	errs := requireErrors(t, err)

	assert.Equal(t, validate.Errors{
		"commentContent": validate.MsgRequired,
		"authorName":     validate.MsgRequired,
	}, errs)
}

func TestComment_TypeErrors(t *testing.T) {
	p := validPayload()
	p["commentContent"] = 42
	p["authorName"] = []string{"Bob"}
	p["userAgent"] = true

	_, err := validate.Comment(encode(t, p))
	errs := requireErrors(t, err)

	assert.Equal(t, validate.Errors{
		validate.GeneralKey: validate.MsgMissingUserAgent,
		"commentContent":    validate.MsgNotString,
		"authorName":        validate.MsgNotString,
	}, errs)
}

func TestComment_FormatErrors(t *testing.T) {
	p := validPayload()
	p["authorEmail"] = "bob-at-example"
	p["permalink"] = "not a url"
	p["referrer"] = "also not a url"
	p["authorUrl"] = "bob.example.com"

	_, err := validate.Comment(encode(t, p))
	errs := requireErrors(t, err)

	assert.Equal(t, validate.Errors{
		"authorEmail": validate.MsgInvalidEmail,
		"permalink":   validate.MsgInvalidURL,
		"referrer":    validate.MsgInvalidURL,
		"authorUrl":   validate.MsgInvalidURL,
	}, errs)
}

func TestComment_NotAnObject(t *testing.T) {
	for _, raw := range []string{``, `null`, `[]`, `"text"`, `{"broken"`} {
		_, err := validate.Comment(json.RawMessage(raw))
		errs := requireErrors(t, err)
		assert.Equal(t, validate.Errors{validate.GeneralKey: validate.MsgInvalidPayload}, errs, "payload %q", raw)
	}
}

func TestComment_UnicodeUnchanged(t *testing.T) {
	content := "비빔밥(乒乓飯)은 대표적인 한국 요리의 하나로, 사발 그릇에 밥과 여러 가지 나물, 고기, 계란, 고추장 등을 넣고 섞어서 먹는 음식이다."
	p := validPayload()
	p["commentContent"] = content
	p["authorName"] = "  김철수  "

	c, err := validate.Comment(encode(t, p))
	require.NoError(t, err)

	assert.Equal(t, content, c.CommentContent)
	assert.Equal(t, []byte(content), []byte(c.CommentContent))
	assert.Equal(t, "  김철수  ", c.AuthorName)
}

func TestErrors_ErrorIsSorted(t *testing.T) {
	errs := validate.Errors{"commentContent": "Required", "_error": "Missing user agent"}
	assert.Equal(t, "invalid comment: _error: Missing user agent, commentContent: Required", errs.Error())
}
