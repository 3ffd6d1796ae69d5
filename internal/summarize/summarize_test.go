package summarize_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"filecat/internal/config"
	serr "filecat/internal/errors"
	"filecat/internal/summarize"
	"filecat/pkg/types"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var records = []types.InventoryRecord{
	{Volume: "", Directory: "data", Filename: "a.txt", FileType: "Text File"},
	{Volume: "", Directory: "data/sub", Filename: "b.unknownext", FileType: "Unknown"},
	{Volume: "C", Directory: `Users\me`, Filename: "odd|name.png", FileType: "PNG Image"},
}

func TestBuildPrompt(t *testing.T) {
	prompt := summarize.BuildPrompt(records, 0)

	lines := strings.Split(prompt, "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "Organize the following files into a table neatly and explain briefly if needed:", lines[0])
	assert.Equal(t, "| Drive | Directory | Filename | File Type |", lines[1])
	assert.Equal(t, "|-------|-----------|----------|-----------|", lines[2])
	assert.Equal(t, "|  | data | a.txt | Text File |", lines[3])
	assert.Equal(t, "|  | data/sub | b.unknownext | Unknown |", lines[4])
	assert.Equal(t, `| C | Users\me | odd\|name.png | PNG Image |`, lines[5])
}

func TestBuildPromptTruncates(t *testing.T) {
	prompt := summarize.BuildPrompt(records, 2)
	assert.Contains(t, prompt, "a.txt")
	assert.Contains(t, prompt, "b.unknownext")
	assert.NotContains(t, prompt, "name.png")
	assert.True(t, strings.HasSuffix(prompt, "(1 more files omitted from this table.)"))

	assert.Equal(t, summarize.BuildPrompt(records, 0), summarize.BuildPrompt(records, 3))
}

// fakeGemini serves generateContent and records the last request.
type fakeGemini struct {
	status  int
	body    string
	lastKey string
	lastReq map[string]interface{}
	path    string
}

func (f *fakeGemini) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.lastKey = r.Header.Get("x-goog-api-key")
	f.path = r.URL.Path
	data, _ := io.ReadAll(r.Body)
	_ = json.Unmarshal(data, &f.lastReq)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(f.status)
	_, _ = w.Write([]byte(f.body))
}

func newClient(t *testing.T, fake *fakeGemini) *summarize.GeminiClient {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return summarize.NewGeminiClientWithKey(srv.URL+"/", "gemini-test", "k-123", 5*time.Second, 0)
}

func TestGeminiSummarize(t *testing.T) {
	fake := &fakeGemini{
		status: http.StatusOK,
		body: `{"candidates":[{"content":{"role":"model","parts":[
			{"text":"## Organized\n"},{"text":"| Drive | File |\n|---|---|\n| C | a.txt |\n"}]}}]}`,
	}
	client := newClient(t, fake)

	text, err := client.Summarize(context.Background(), records)
	require.NoError(t, err)
	assert.Equal(t, "## Organized\n| Drive | File |\n|---|---|\n| C | a.txt |\n", text)

	assert.Equal(t, "k-123", fake.lastKey)
	assert.Equal(t, "/v1beta/models/gemini-test:generateContent", fake.path)

	contents := fake.lastReq["contents"].([]interface{})
	parts := contents[0].(map[string]interface{})["parts"].([]interface{})
	sent := parts[0].(map[string]interface{})["text"].(string)
	assert.Equal(t, summarize.BuildPrompt(records, 0), sent)
}

func TestGeminiFailures(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "api error object",
			status:     http.StatusTooManyRequests,
			body:       `{"error":{"code":429,"message":"Resource has been exhausted","status":"RESOURCE_EXHAUSTED"}}`,
			wantStatus: 429,
			wantMsg:    "Resource has been exhausted",
		},
		{
			name:       "non json failure",
			status:     http.StatusBadGateway,
			body:       `<html>bad gateway</html>`,
			wantStatus: 502,
			wantMsg:    "Bad Gateway",
		},
		{
			name:       "no candidates",
			status:     http.StatusOK,
			body:       `{"candidates":[]}`,
			wantStatus: 200,
			wantMsg:    "no text",
		},
		{
			name:       "blocked prompt",
			status:     http.StatusOK,
			body:       `{"promptFeedback":{"blockReason":"SAFETY"}}`,
			wantStatus: 200,
			wantMsg:    "SAFETY",
		},
		{
			name:       "malformed json",
			status:     http.StatusOK,
			body:       `{"candidates":`,
			wantStatus: 200,
			wantMsg:    "malformed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newClient(t, &fakeGemini{status: tt.status, body: tt.body})
			_, err := client.Summarize(context.Background(), records)
			require.Error(t, err)
			require.True(t, serr.IsRemoteError(err))

			var re *serr.RemoteError
			require.True(t, serr.As(err, &re))
			assert.Equal(t, summarize.ServiceName, re.Service())
			assert.Equal(t, tt.wantStatus, re.StatusCode())
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestGeminiTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	client := summarize.NewGeminiClientWithKey(srv.URL, "m", "k", 50*time.Millisecond, 0)
	start := time.Now()
	_, err := client.Generate(context.Background(), "hi")
	require.Error(t, err)
	assert.True(t, serr.IsRemoteError(err))

	var re *serr.RemoteError
	require.True(t, serr.As(err, &re))
	assert.Zero(t, re.StatusCode())
	assert.Less(t, time.Since(start), time.Second)
}

func TestNewGeminiClientNeedsKey(t *testing.T) {
	cfg := config.New()
	cfg.Summarize.APIKeyEnv = "FILECAT_TEST_MISSING_KEY"
	t.Setenv("FILECAT_TEST_MISSING_KEY", "")

	_, err := summarize.NewGeminiClient(cfg)
	require.Error(t, err)
	assert.True(t, serr.IsConfigNotSet(err))
	assert.Contains(t, err.Error(), "FILECAT_TEST_MISSING_KEY")

	t.Setenv("FILECAT_TEST_MISSING_KEY", "present")
	client, err := summarize.NewGeminiClient(cfg)
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestNarrativeFiles(t *testing.T) {
	root := filepath.Join(t.TempDir(), "scanned")
	path := summarize.NarrativePath(root, "organised.txt")
	assert.Equal(t, filepath.Join(filepath.Dir(root), "organised.txt"), path)

	require.NoError(t, summarize.WriteNarrative(path, "héllo"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "héllo", string(data))

	err = summarize.WriteNarrative(filepath.Join(root, "missing", "x.txt"), "x")
	var fe *serr.FileError
	assert.True(t, serr.As(err, &fe))
}

func TestRenderHTML(t *testing.T) {
	narrative := "## Your files\n\n" +
		"| Drive | Directory | Filename | File Type |\n" +
		"|-------|-----------|----------|-----------|\n" +
		"| C | docs | a.txt | Text File |\n" +
		"| C | pics | b.png | PNG Image |\n\n" +
		"Mostly *documents*.\n"

	out, err := summarize.RenderHTML(narrative)
	require.NoError(t, err)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(out))
	require.NoError(t, err)

	assert.Equal(t, "Your files", doc.Find("h2").Text())
	assert.Equal(t, 4, doc.Find("table thead th").Length())
	assert.Equal(t, 2, doc.Find("table tbody tr").Length())
	assert.Equal(t, "b.png", doc.Find("table tbody tr").Eq(1).Find("td").Eq(2).Text())
	assert.Equal(t, "documents", doc.Find("em").Text())
}

func TestWriteHTML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "organised.html")
	require.NoError(t, summarize.WriteHTML(path, "Files <in> data", "# Hi\n"))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	require.NoError(t, err)
	assert.Equal(t, "Files <in> data", doc.Find("title").Text())
	assert.Equal(t, "Hi", doc.Find("body h1").Text())
}
