package transfer

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/MrSnakeDoc/goodnews/internal/domain"
	"github.com/MrSnakeDoc/goodnews/internal/errs"
	"github.com/stretchr/testify/require"
)

var now = time.UnixMilli(1_750_000_000_000)

func sample() []*domain.Link {
	return []*domain.Link{
		{
			ID: "a", Title: "Bangkok Post, daily", URL: "https://www.bangkokpost.com/",
			Tags: []string{"news", "en"}, Notes: `says "hello"`, Language: domain.LanguageEN,
			Favorite: true, CreatedAt: 100, UpdatedAt: 200, Source: domain.SourceManual,
		},
		{
			ID: "b", Title: "ข่าวดี", URL: "https://khaodee.example/th?x=1",
			Tags: []string{}, Language: domain.LanguageTH,
			CreatedAt: 300, UpdatedAt: 300, Source: domain.SourceShareTarget,
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "json", want: FormatJSON},
		{in: " CSV ", want: FormatCSV},
		{in: "xml", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			require.ErrorIs(t, err, errs.ErrUnsupportedFormat)
			continue
		}
		require.NoError(t, err)
		require.Equal(t, tt.want, got)
	}
}

func TestFormatFromFilename(t *testing.T) {
	require.Equal(t, FormatJSON, FormatFromFilename("links.JSON"))
	require.Equal(t, FormatCSV, FormatFromFilename("links.csv"))
	require.Equal(t, FormatCSV, FormatFromFilename("links"))
}

func TestJSONRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(FormatJSON, &buf, sample()))
	require.True(t, bytes.HasPrefix(buf.Bytes(), bom), "export should start with a BOM")
	require.Contains(t, buf.String(), "\n  {", "export should be indented")

	got, err := Decode(FormatJSON, &buf, now)
	require.NoError(t, err)

	want := sample()
	domain.SortByTitle(want)
	require.Equal(t, want, got)
}

func TestJSONDecodeTolerant(t *testing.T) {
	in := "\ufeff[\n  // hand edited\n  {\"title\": \"<b>x</b>\", \"url\": \"http://example.com\", \"language\": \"fr\"},\n]"
	got, err := Decode(FormatJSON, strings.NewReader(in), now)
	require.NoError(t, err)
	require.Len(t, got, 1)

	l := got[0]
	require.NotEmpty(t, l.ID)
	require.Equal(t, "bx/b", l.Title)
	require.Equal(t, "https://example.com/", l.URL)
	require.Equal(t, domain.LanguageEN, l.Language)
	require.Equal(t, domain.Millis(now), l.CreatedAt)
	require.Equal(t, domain.Millis(now), l.UpdatedAt)
	require.Equal(t, domain.SourceImport, l.Source)
	require.Equal(t, []string{}, l.Tags)
}

func TestJSONDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode(FormatJSON, strings.NewReader("{not json"), now)
	require.ErrorIs(t, err, errs.ErrValidation)
}

func TestCSVRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(FormatCSV, &buf, sample()))
	require.True(t, bytes.HasPrefix(buf.Bytes(), bom))

	lines := strings.Split(strings.TrimPrefix(buf.String(), string(bom)), "\n")
	require.Equal(t, "title,url,tags,notes,language,favorite", lines[0])
	require.Equal(t, `"Bangkok Post, daily",https://www.bangkokpost.com/,news|en,"says ""hello""",en,true`, lines[1])

	got, err := Decode(FormatCSV, &buf, now)
	require.NoError(t, err)
	require.Len(t, got, 2)

	require.Equal(t, "Bangkok Post, daily", got[0].Title)
	require.Equal(t, []string{"news", "en"}, got[0].Tags)
	require.Equal(t, `says "hello"`, got[0].Notes)
	require.True(t, got[0].Favorite)
	require.Equal(t, domain.SourceImport, got[0].Source)

	require.Equal(t, "https://khaodee.example/th?x=1", got[1].URL)
	require.Equal(t, domain.LanguageTH, got[1].Language)
	require.False(t, got[1].Favorite)
}

func TestCSVDecodeWithoutHeaderAndShortRows(t *testing.T) {
	in := "Example,http://example.com\n\n,,\nOnly title\n"
	got, err := Decode(FormatCSV, strings.NewReader(in), now)
	require.NoError(t, err)
	require.Len(t, got, 2)

	require.Equal(t, "https://example.com/", got[0].URL)
	require.Equal(t, domain.LanguageEN, got[0].Language)
	require.Equal(t, "Only title", got[1].Title)
	require.Equal(t, "", got[1].URL)
}

func TestEncodeEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(FormatJSON, &buf, nil))
	require.Equal(t, "[]", strings.TrimSpace(strings.TrimPrefix(buf.String(), string(bom))))
}

func TestUnsupportedFormat(t *testing.T) {
	_, err := Decode(Format("xml"), strings.NewReader(""), now)
	require.ErrorIs(t, err, errs.ErrUnsupportedFormat)
	require.ErrorIs(t, Encode(Format("xml"), &bytes.Buffer{}, nil), errs.ErrUnsupportedFormat)
}

func TestEncodeWritesHTTPSURLs(t *testing.T) {
	links := []*domain.Link{
		{ID: "a", Title: "A", URL: "http://a.example/x", Tags: []string{}, Language: domain.LanguageEN},
		{ID: "b", Title: "B", URL: "b.example", Tags: []string{}, Language: domain.LanguageTH},
	}

	for _, f := range []Format{FormatJSON, FormatCSV} {
		t.Run(string(f), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Encode(f, &buf, links))

			out := buf.String()
			require.Contains(t, out, "https://a.example/x")
			require.Contains(t, out, "https://b.example/")
			require.NotContains(t, out, "http://")

			got, err := Decode(f, &buf, now)
			require.NoError(t, err)
			require.Len(t, got, 2)
		})
	}

	require.Equal(t, "http://a.example/x", links[0].URL)
}
