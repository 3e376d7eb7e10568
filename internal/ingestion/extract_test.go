package ingestion

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
	`<w:p><w:r><w:t>Jordan Example</w:t></w:r></w:p>` +
	`<w:p><w:r><w:t xml:space="preserve">DevOps engineer: </w:t></w:r><w:r><w:t>Docker, Kubernetes &amp; Terraform</w:t></w:r></w:p>` +
	`<w:p><w:r><w:t>AWS</w:t><w:tab/><w:t>CI/CD</w:t></w:r></w:p>` +
	`</w:body></w:document>`

const documentRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`

func buildDocx(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		want Format
	}{
		{"resume.pdf", FormatPDF},
		{"Resume.PDF", FormatPDF},
		{"cv.docx", FormatDOCX},
		{"page.html", FormatHTML},
		{"page.htm", FormatHTML},
		{"notes.txt", FormatText},
		{"README.md", FormatText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectFormat(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectFormat_Unsupported(t *testing.T) {
	for _, name := range []string{"resume.doc", "image.png", "noextension"} {
		_, err := DetectFormat(name)
		var unsupported *UnsupportedFormatError
		require.ErrorAs(t, err, &unsupported, name)
		assert.Equal(t, name, unsupported.Name)
	}
}

func TestSupportedExtensions_AllDetect(t *testing.T) {
	for _, ext := range SupportedExtensions() {
		_, err := DetectFormat("file" + ext)
		assert.NoError(t, err, ext)
	}
}

func TestExtract_Text(t *testing.T) {
	text, err := Extract("resume.txt", []byte("  Python   developer \r\n\r\n\r\n\r\nDocker  "))
	require.NoError(t, err)
	assert.Equal(t, "Python developer\n\nDocker", text)
}

func TestExtract_TextInvalidUTF8(t *testing.T) {
	_, err := Extract("resume.txt", []byte{0xff, 0xfe, 0x00})

	var extractErr *ExtractionError
	require.ErrorAs(t, err, &extractErr)
	assert.Equal(t, FormatText, extractErr.Format)
}

func TestExtract_Docx(t *testing.T) {
	data := buildDocx(t, map[string]string{
		"word/document.xml":            documentXML,
		"word/_rels/document.xml.rels": documentRels,
	})

	text, err := Extract("resume.docx", data)
	require.NoError(t, err)

	assert.Equal(t, "Jordan Example\nDevOps engineer: Docker, Kubernetes & Terraform\nAWS CI/CD", text)
}

func TestExtract_DocxMissingDocument(t *testing.T) {
	data := buildDocx(t, map[string]string{"word/other.xml": "<x/>"})

	_, err := Extract("resume.docx", data)

	var extractErr *ExtractionError
	require.ErrorAs(t, err, &extractErr)
	assert.Equal(t, FormatDOCX, extractErr.Format)
	assert.Contains(t, err.Error(), "failed to extract docx text")
}

func TestExtract_DocxNotZip(t *testing.T) {
	_, err := Extract("resume.docx", []byte("plain text pretending to be docx"))

	var extractErr *ExtractionError
	require.ErrorAs(t, err, &extractErr)
}

func TestExtract_PDFInvalid(t *testing.T) {
	_, err := Extract("resume.pdf", []byte("this is not a pdf"))

	var extractErr *ExtractionError
	require.ErrorAs(t, err, &extractErr)
	assert.Equal(t, FormatPDF, extractErr.Format)
	assert.NotNil(t, extractErr.Unwrap())
}

func TestExtract_Unsupported(t *testing.T) {
	_, err := Extract("photo.jpg", []byte{0xff, 0xd8})

	var unsupported *UnsupportedFormatError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "unsupported file type: .jpg", err.Error())
}

func TestHTMLToText(t *testing.T) {
	content, err := os.ReadFile(filepath.Join("testdata", "resume.html"))
	require.NoError(t, err)

	text, err := HTMLToText(string(content))
	require.NoError(t, err)

	assert.Contains(t, text, "Jordan Example")
	assert.Contains(t, text, "Data scientist focused on machine learning & statistics.")
	assert.Contains(t, text, "Python\npandas\nnumpy")
	assert.Contains(t, text, "SQL Tableau")
	assert.Contains(t, text, "Line one\nLine two")
	assert.NotContains(t, text, "should not appear")
	assert.NotContains(t, text, "font-family")
	assert.NotContains(t, text, "Resume page title")
}

func TestHTMLToText_Fragment(t *testing.T) {
	text, err := HTMLToText("<div>Go</div><div>Kubernetes</div>plain tail")
	require.NoError(t, err)

	assert.Equal(t, "Go\nKubernetes\nplain tail", text)
}

func TestHTMLToText_Empty(t *testing.T) {
	text, err := HTMLToText("")
	require.NoError(t, err)
	assert.Empty(t, text)
}
