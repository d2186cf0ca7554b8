package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectMime(t *testing.T) {
	tests := []struct {
		declared string
		filename string
		want     string
	}{
		{"application/pdf", "cv", mimePDF},
		{"text/plain; charset=utf-8", "cv", mimeText},
		{"application/octet-stream", "CV.PDF", mimePDF},
		{"", "resume.docx", mimeDocx},
		{"", "resume.txt", mimeText},
		{"image/png", "resume.png", ""},
		{"", "resume", ""},
	}

	for _, tt := range tests {
		t.Run(tt.declared+"|"+tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, detectMime(tt.declared, tt.filename))
		})
	}
}

func TestRetry(t *testing.T) {
	noRetryWait(t)

	calls := 0
	got, err := retry(3, func() (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("transient")
		}
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 3, calls)

	calls = 0
	cause := errors.New("permanent")
	_, err = retry(2, func() (string, error) {
		calls++
		return "", cause
	})
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "after 2 attempts")
	assert.Equal(t, 2, calls)
}

func TestExtractResumeText(t *testing.T) {
	text, err := ExtractResumeText(mimeText, []byte("Jane Doe\nGo, SQL"))
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nGo, SQL", text)

	_, err = ExtractResumeText("image/png", []byte{0x89})
	assert.ErrorContains(t, err, "unsupported file type")

	_, err = ExtractResumeText(mimePDF, []byte("not a pdf"))
	assert.Error(t, err)

	_, err = ExtractResumeText(mimeDocx, []byte("not a zip"))
	assert.Error(t, err)
}

func TestStatusUpdate(t *testing.T) {
	u := statusUpdate("req-1", statusProcessing, "analysis started")
	assert.Equal(t, "req-1", u["request_id"])
	assert.Equal(t, statusProcessing, u["status"])
	assert.Equal(t, "analysis started", u["message"])
	assert.NotNil(t, u["timestamp"])
}

func TestR2ConfigFromEnv(t *testing.T) {
	t.Setenv("R2_ACCOUNT_ID", "acct")
	t.Setenv("R2_BUCKET", "resumes")
	t.Setenv("R2_ACCESS_KEY", "ak")
	t.Setenv("R2_SECRET_KEY", "")

	_, ok := r2ConfigFromEnv()
	assert.False(t, ok)

	t.Setenv("R2_SECRET_KEY", "sk")
	r2, ok := r2ConfigFromEnv()
	require.True(t, ok)
	assert.Equal(t, R2Config{AccountID: "acct", Bucket: "resumes", AccessKey: "ak", SecretKey: "sk"}, r2)
}

func TestEnvOr(t *testing.T) {
	t.Setenv("HIREVOID_TEST_VALUE", "")
	assert.Equal(t, "fallback", envOr("HIREVOID_TEST_VALUE", "fallback"))
	t.Setenv("HIREVOID_TEST_VALUE", "set")
	assert.Equal(t, "set", envOr("HIREVOID_TEST_VALUE", "fallback"))
}
