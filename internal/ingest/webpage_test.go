package ingest

import (
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/council/backend/pkg/config"
	"github.com/wonny/council/backend/pkg/httputil"
	"github.com/wonny/council/backend/pkg/logger"
)

func TestValidatePublicURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr string
	}{
		{"https allowed", "https://example.com/pitch", "https://example.com/pitch", ""},
		{"http allowed", "http://example.com", "http://example.com", ""},
		{"padded input trimmed", "  https://example.com  ", "https://example.com", ""},
		{"public ip allowed", "https://93.184.216.34/", "https://93.184.216.34/", ""},
		{"ftp rejected", "ftp://example.com", "", "URL must start with http:// or https://"},
		{"scheme missing", "example.com", "", "URL must start with http:// or https://"},
		{"hostname missing", "https://", "", "URL is missing a hostname"},
		{"localhost rejected", "http://localhost:3000", "", "Localhost URLs are not allowed"},
		{"loopback v4 rejected", "http://127.0.0.1:8080/admin", "", "Localhost URLs are not allowed"},
		{"loopback v6 rejected", "http://[::1]/", "", "Localhost URLs are not allowed"},
		{"other loopback rejected", "http://127.0.0.2/", "", "Private or loopback IP URLs are not allowed"},
		{"private 10 rejected", "https://10.0.0.8/internal", "", "Private or loopback IP URLs are not allowed"},
		{"private 192.168 rejected", "https://192.168.1.10", "", "Private or loopback IP URLs are not allowed"},
		{"metadata endpoint rejected", "http://169.254.169.254/latest/meta-data", "", "Private or loopback IP URLs are not allowed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := validatePublicURL(tt.url)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, err.Error())

				var inputErr *InputError
				assert.ErrorAs(t, err, &inputErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

const samplePage = `<!DOCTYPE html>
<html>
<head>
  <title>  Acme Robotics -  Warehouse Automation </title>
  <meta name="description" content="Acme builds autonomous picking robots for e-commerce warehouses.">
  <script>var analytics = "SECRET-TRACKER";</script>
  <style>.hero { color: red; }</style>
</head>
<body>
  <h1>Warehouse automation that ships today</h1>
  <h2>Our traction</h2>
  <noscript>Enable JavaScript SECRET-NOSCRIPT</noscript>
  <p>Acme Robotics deploys autonomous picking robots that cut warehouse labor costs by forty percent.</p>
  <p>Acme Robotics deploys autonomous picking robots that cut warehouse labor costs by forty percent.</p>
  <p>Short para.</p>
  <ul>
    <li>Raised a 4M dollar seed round led by a tier one fund in 2025.</li>
    <li>tiny</li>
  </ul>
</body>
</html>`

func TestDistill(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(samplePage))
	require.NoError(t, err)

	got, err := distill(doc)
	require.NoError(t, err)

	want := strings.Join([]string{
		"Title: Acme Robotics - Warehouse Automation",
		"Meta Description: Acme builds autonomous picking robots for e-commerce warehouses.",
		"Heading: Warehouse automation that ships today",
		"Heading: Our traction",
		"Acme Robotics deploys autonomous picking robots that cut warehouse labor costs by forty percent.",
		"Raised a 4M dollar seed round led by a tier one fund in 2025.",
	}, "\n")
	assert.Equal(t, want, got)

	assert.NotContains(t, got, "SECRET-TRACKER")
	assert.NotContains(t, got, "SECRET-NOSCRIPT")
	assert.NotContains(t, got, "Short para.")
	assert.NotContains(t, got, "tiny")
}

func TestDistillNothingReadable(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<html><body><p>hi</p></body></html>"))
	require.NoError(t, err)

	_, err = distill(doc)
	require.Error(t, err)
	assert.Equal(t, "Could not extract readable text from the webpage", err.Error())

	var inputErr *InputError
	assert.ErrorAs(t, err, &inputErr)
}

func TestDistillClipsHugePages(t *testing.T) {
	page := "<html><body><p>" + strings.Repeat("long text chunk ", 10_000) + "</p></body></html>"
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	require.NoError(t, err)

	got, err := distill(doc)
	require.NoError(t, err)
	assert.Contains(t, got, "[TRUNCATED: input exceeded 120000 characters]")
}

func TestFetchTextRejectsUnsafeURLs(t *testing.T) {
	client := httputil.New(&config.Config{}, logger.NewNop())
	fetcher := NewFetcher(client, logger.NewNop())

	for _, url := range []string{
		"ftp://example.com",
		"http://localhost:8099/api",
		"http://127.0.0.1/",
		"https://10.1.2.3/",
	} {
		_, err := fetcher.FetchText(context.Background(), url)
		require.Error(t, err, "url %s should be rejected", url)

		var inputErr *InputError
		assert.ErrorAs(t, err, &inputErr, "url %s", url)
	}
}
