package guestbook

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDateFormatter(t *testing.T) {
	f := NewDateFormatter("en-US")

	tests := []struct {
		createdAt      string
		acceptLanguage string
		expected       string
	}{
		{"2024-05-01T15:04:00", "", "05/01/2024, 03:04 PM"},
		{"2024-05-01T15:04:00", "ko-KR,ko;q=0.9", "2024. 05. 01. 오후 03:04"},
		{"2024-05-01T09:30:00.123456", "ko", "2024. 05. 01. 오전 09:30"},
		{"2024-05-01T15:04:00", "en-GB", "01/05/2024, 15:04"},
		{"2024-05-01T15:04:00", "de-CH", "01.05.2024, 15:04"},
		{"2024-05-01T15:04:00", "ja", "2024/05/01 15:04"},
		{"2024-05-01T15:04:00", "xx", "05/01/2024, 03:04 PM"},
		{"yesterday-ish", "en-US", "yesterday-ish"},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, f.Format(test.createdAt, test.acceptLanguage), "%s / %s", test.createdAt, test.acceptLanguage)
	}
}

func TestDateFormatterFallback(t *testing.T) {
	f := NewDateFormatter("ko-KR")
	assert.Equal(t, "2024. 05. 01. 오후 03:04", f.Format("2024-05-01T15:04:00", ""))
	assert.Equal(t, "05/01/2024, 03:04 PM", f.Format("2024-05-01T15:04:00", "en-US"))
}

func TestContentRenderer(t *testing.T) {
	plain := NewContentRenderer(false)
	assert.Equal(t, "<p>&lt;b&gt;hi&lt;/b&gt;<br>**there**</p>", plain.Render("<b>hi</b>\n**there**"))

	md := NewContentRenderer(true)
	assert.Equal(t, "<p><strong>there</strong></p>\n", md.Render("**there**"))
	assert.NotContains(t, md.Render("[x](javascript:alert(1))"), "javascript:")
}
