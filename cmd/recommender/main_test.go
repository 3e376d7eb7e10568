package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jonathan/job-recommender/internal/embedding"
	"github.com/jonathan/job-recommender/internal/ranking"
	"github.com/jonathan/job-recommender/internal/types"
)

// execute runs the root command with args after resetting command flag state.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	recommendFile, recommendEngine, recommendN, recommendHTML, recommendJSON = "", engineKeyword, types.DefaultN, false, false
	batchOutput, batchEngine, batchN, batchWorkers, batchRecursive = "recommendations.xlsx", engineKeyword, types.DefaultN, 4, false
	servePort = 0

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestResolvePort(t *testing.T) {
	tests := []struct {
		name       string
		flag       int
		env        string
		configured int
		want       int
		wantErr    bool
	}{
		{name: "configured", configured: 5000, want: 5000},
		{name: "env overrides config", env: "8080", configured: 5000, want: 8080},
		{name: "flag overrides env", flag: 9090, env: "8080", configured: 5000, want: 9090},
		{name: "bad env", env: "eighty", configured: 5000, wantErr: true},
		{name: "out of range", flag: 70000, configured: 5000, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolvePort(tt.flag, tt.env, tt.configured)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOutcome_KeywordResponse(t *testing.T) {
	o := &outcome{Keyword: []ranking.Result{{Title: "DevOps Engineer", Score: 60, Reason: "Matched keywords: docker"}}}

	resp, ok := o.response().(types.KeywordResponse)
	require.True(t, ok)
	assert.Equal(t, []types.KeywordRecommendation{{Title: "DevOps Engineer", Score: 60, Reason: "Matched keywords: docker"}}, resp.Recommendations)

	recs := o.recommendations()
	require.Len(t, recs, 1)
	assert.Equal(t, "Matched keywords: docker", recs[0].Reason)
}

func TestOutcome_EmbeddingResponse(t *testing.T) {
	o := &outcome{Matches: []embedding.Match{{Title: "Nurse", Similarity: 0.814, Explanation: "Nurse. Keywords: nurse"}}}

	resp, ok := o.response().(types.EmbeddingResponse)
	require.True(t, ok)
	require.Len(t, resp.Recommendations, 1)
	assert.Equal(t, 81, resp.Recommendations[0].Score)
	assert.Equal(t, "Nurse. Keywords: nurse", resp.Recommendations[0].Explanation)

	recs := o.recommendations()
	require.Len(t, recs, 1)
	assert.Equal(t, 81, recs[0].Score)
}

func TestOutcome_EmptyEmbeddingMatches(t *testing.T) {
	o := &outcome{Matches: []embedding.Match{}}

	_, ok := o.response().(types.EmbeddingResponse)
	assert.True(t, ok)
}

func TestNewCLIEngine_Unknown(t *testing.T) {
	_, err := newCLIEngine(context.Background(), "regex", nil, nil)
	assert.ErrorContains(t, err, "unknown engine")
}

func TestCollectResumes(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.txt", "a.pdf", "notes.exe", "sub/c.md"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	}

	files, err := collectResumes(dir, false)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.pdf"), filepath.Join(dir, "b.txt")}, files)

	files, err = collectResumes(dir, true)
	require.NoError(t, err)
	assert.Len(t, files, 3)
}

func TestCollectResumes_NotADirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	_, err := collectResumes(path, false)
	assert.Error(t, err)
}

func TestRecommendCommand_JSON(t *testing.T) {
	out, err := execute(t, "recommend", "--json", "Experienced Python developer with docker and aws")
	require.NoError(t, err)

	var resp types.KeywordResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	require.NotEmpty(t, resp.Recommendations)
	assert.Equal(t, "DevOps Engineer", resp.Recommendations[0].Title)
	assert.Equal(t, 60, resp.Recommendations[0].Score)
}

func TestRecommendCommand_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume.md")
	require.NoError(t, os.WriteFile(path, []byte("# Jordan\n\n- Registered nurse\n- Patient care on a busy ward\n"), 0o644))

	out, err := execute(t, "recommend", "--file", path, "--n", "2")
	require.NoError(t, err)

	assert.Contains(t, out, "RESUME DOCUMENT")
	assert.Contains(t, out, "KEYWORD RECOMMENDATIONS")
	assert.Contains(t, out, "Nurse")
}

func TestRecommendCommand_EmbeddingHashing(t *testing.T) {
	t.Setenv("EMB_PROVIDER", "hashing")

	out, err := execute(t, "recommend", "--engine", "embedding", "--json", "--n", "3", "kubernetes docker aws devops infrastructure")
	require.NoError(t, err)

	var resp types.EmbeddingResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	assert.Len(t, resp.Recommendations, 3)
}

func TestRecommendCommand_InvalidN(t *testing.T) {
	_, err := execute(t, "recommend", "--n", "0", "docker")
	assert.Error(t, err)
}

func TestRecommendCommand_FileAndText(t *testing.T) {
	_, err := execute(t, "recommend", "--file", "resume.txt", "docker")
	assert.Error(t, err)
}

func TestBatchCommand(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ops.txt"), []byte("DevOps engineer: docker, kubernetes, aws"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nurse.md"), []byte("Registered nurse with patient care experience"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.html"), []byte{0xff, 0xfe}, 0o644))
	outPath := filepath.Join(t.TempDir(), "report.xlsx")

	out, err := execute(t, "batch", dir, "--out", outPath, "--workers", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "BATCH SUMMARY")
	assert.Contains(t, out, "Processed: 3")

	f, err := excelize.OpenFile(outPath)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Recommendations")
	require.NoError(t, err)
	assert.Greater(t, len(rows), 2)
}

func TestBatchCommand_EmptyDirectory(t *testing.T) {
	_, err := execute(t, "batch", t.TempDir())
	assert.ErrorContains(t, err, "no resumes found")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "recommender dev"))
}
