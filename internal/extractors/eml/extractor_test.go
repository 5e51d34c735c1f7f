package eml

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/planroom/internal/core/domain"
)

func extract(t *testing.T, raw string) []domain.Page {
	t.Helper()
	pages, err := New().Extract(context.Background(), &domain.Upload{
		Filename: "RFI-014.eml",
		Content:  []byte(strings.ReplaceAll(raw, "\n", "\r\n")),
	})
	require.NoError(t, err)
	return pages
}

func TestSupportedExtensions(t *testing.T) {
	assert.Equal(t, []string{".eml"}, New().SupportedExtensions())
}

func TestExtract_PlainMessage(t *testing.T) {
	pages := extract(t, `From: Site Engineer <site@builder.example>
To: architect@design.example
Subject: RFI-014 Door D12 width
Date: Mon, 2 Mar 2026 09:15:00 +0000

Drawing A-601 shows D12 at 820mm but the schedule says 920mm.
Please confirm.
`)

	require.Len(t, pages, 1)
	assert.Equal(t, 1, pages[0].Number)
	assert.Contains(t, pages[0].Text, "From: Site Engineer <site@builder.example>")
	assert.Contains(t, pages[0].Text, "Subject: RFI-014 Door D12 width")
	assert.Contains(t, pages[0].Text, "D12 at 820mm")
}

func TestExtract_EncodedSubject(t *testing.T) {
	pages := extract(t, `Subject: =?UTF-8?B?UkZJIOKAkyBzdGFpciBiYWx1c3RyYWRl?=

body
`)

	assert.Contains(t, pages[0].Text, "Subject: RFI – stair balustrade")
}

func TestExtract_AlternativePrefersPlain(t *testing.T) {
	pages := extract(t, `Subject: Transmittal 7
Content-Type: multipart/alternative; boundary="alt"

--alt
Content-Type: text/plain

Issued for construction: S-201 rev C.
--alt
Content-Type: text/html

<p>Issued for <b>construction</b>: S-201 rev C.</p>
--alt--
`)

	require.Len(t, pages, 1)
	assert.Contains(t, pages[0].Text, "Issued for construction: S-201 rev C.")
	assert.NotContains(t, pages[0].Text, "<p>")
}

func TestExtract_HTMLOnly(t *testing.T) {
	pages := extract(t, `Content-Type: text/html

<html><body><h1>Site notice</h1>
<p>Crane lift on Friday</p></body></html>
`)

	assert.Contains(t, pages[0].Text, "Site notice")
	assert.Contains(t, pages[0].Text, "Crane lift on Friday")
	assert.NotContains(t, pages[0].Text, "<")
}

func TestExtract_Attachments(t *testing.T) {
	pages := extract(t, `Subject: Door schedule update
Content-Type: multipart/mixed; boundary="mix"

--mix
Content-Type: text/plain

Updated schedule attached.
--mix
Content-Type: text/csv; name="doors.csv"
Content-Disposition: attachment; filename="doors.csv"
Content-Transfer-Encoding: base64

TWFyayxXaWR0aApEMSw5MDAK
--mix
Content-Type: application/pdf
Content-Disposition: attachment; filename="A-601.pdf"
Content-Transfer-Encoding: base64

JVBERi0xLjQK
--mix--
`)

	require.Len(t, pages, 2)
	assert.Contains(t, pages[0].Text, "Attachments: doors.csv, A-601.pdf")
	assert.Contains(t, pages[0].Text, "Updated schedule attached.")
	assert.Equal(t, 2, pages[1].Number)
	assert.Contains(t, pages[1].Text, "Attachment: doors.csv")
	assert.Contains(t, pages[1].Text, "Mark,Width\nD1,900")
}

func TestExtract_NestedMultipart(t *testing.T) {
	pages := extract(t, `Content-Type: multipart/mixed; boundary="outer"

--outer
Content-Type: multipart/alternative; boundary="inner"

--inner
Content-Type: text/plain

Nested body text.
--inner--
--outer--
`)

	assert.Contains(t, pages[0].Text, "Nested body text.")
}

func TestExtract_Invalid(t *testing.T) {
	_, err := New().Extract(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = New().Extract(context.Background(), &domain.Upload{
		Filename: "broken.eml",
		Content:  []byte("Content-Type: multipart/mixed\r\n\r\nno boundary"),
	})
	assert.ErrorIs(t, err, domain.ErrExtraction)
}

func TestStripTags(t *testing.T) {
	assert.Equal(t, "a b\nc", stripTags("<p>a <b>b</b></p>\n\n<div>c</div>"))
}
