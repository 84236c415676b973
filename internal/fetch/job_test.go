package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobDescription_File(t *testing.T) {
	text, err := JobDescription(context.Background(), "../../testdata/jobs/sample_job.txt", nil)
	require.NoError(t, err)
	assert.Contains(t, text, "Senior Backend Engineer")
}

func TestJobDescription_MissingFile(t *testing.T) {
	_, err := JobDescription(context.Background(), filepath.Join(t.TempDir(), "nope.txt"), nil)
	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestJobDescription_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(path, []byte("  \n\t"), 0o600))

	_, err := JobDescription(context.Background(), path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestJobDescription_HTMLPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body>
			<header>Acme Careers</header>
			<div class="job-description"><h1>Platform Engineer</h1><p>Run Kubernetes.</p></div>
			<div class="cookie-banner">We use cookies</div>
		</body></html>`))
	}))
	defer server.Close()

	text, err := JobDescription(context.Background(), server.URL+"/jobs/1", nil)
	require.NoError(t, err)
	assert.Equal(t, "Platform Engineer\nRun Kubernetes.", text)
}

func TestJobDescription_PlainTextPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("  Data Engineer <remote>\n"))
	}))
	defer server.Close()

	text, err := JobDescription(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, "Data Engineer <remote>", text)
}

func TestJobDescription_HTTPErrorWithoutBrowser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := JobDescription(context.Background(), server.URL, nil)
	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "403")
}

func TestNeedsBrowser(t *testing.T) {
	assert.True(t, NeedsBrowser("   Loading...   "))
	long := make([]byte, MinContentLength)
	for i := range long {
		long[i] = 'x'
	}
	assert.False(t, NeedsBrowser(string(long)))
}

func TestCleanJobText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"crlf", "Title\r\nBody\r\n", "Title\nBody"},
		{"blank runs", "\n\nTitle\n\n\n\nBody  \n", "Title\n\nBody"},
		{"indent kept", "Skills:\n  - Go\t\n  - SQL", "Skills:\n  - Go\n  - SQL"},
		{"only whitespace", " \r\n \t ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanJobText(tt.in))
		})
	}
}
