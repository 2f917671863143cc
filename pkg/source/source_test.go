package source

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"Civil Code UZ.txt", FormatText},
		{"Administrative Code.DOCX", FormatDOCX},
		{"page.html", FormatHTML},
		{"page.htm", FormatHTML},
		{".cache/111181", FormatHTML},
	}
	for _, tt := range tests {
		got, err := DetectFormat(tt.path)
		require.NoError(t, err, tt.path)
		assert.Equal(t, tt.want, got, tt.path)
	}

	_, err := DetectFormat("Labor Code.doc")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoad_Text(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Civil_Code.txt")
	require.NoError(t, os.WriteFile(path, []byte("\ufeffСтатья 1. Первая\nтекст"), 0644))

	doc, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, FormatText, doc.Format)
	assert.Equal(t, "Статья 1. Первая\nтекст", doc.Text)
	assert.Equal(t, "Civil Code", doc.Title)
	assert.Equal(t, path, doc.Path)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	invalid := filepath.Join(t.TempDir(), "bad.txt")
	require.NoError(t, os.WriteFile(invalid, []byte{0xff, 0xfe, 0xfd}, 0644))
	_, err = Load(invalid)
	assert.Error(t, err)

	_, err = Load("legacy.doc")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestParse_UnknownFormat(t *testing.T) {
	_, err := Parse([]byte("x"), Format("pdf"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func buildDOCX(t *testing.T, documentXML, coreXML string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	files := map[string]string{"word/document.xml": documentXML}
	if coreXML != "" {
		files["docProps/core.xml"] = coreXML
	}
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestParse_DOCX(t *testing.T) {
	document := `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>ГЛАВА 1. ОБЩИЕ ПОЛОЖЕНИЯ</w:t></w:r></w:p>
    <w:p>
      <w:r><w:t xml:space="preserve">Статья 26</w:t></w:r>
      <w:r><w:rPr><w:vertAlign w:val="superscript"/></w:rPr><w:t>1</w:t></w:r>
      <w:r><w:t>. Право на защиту</w:t></w:r>
    </w:p>
    <w:p><w:r><w:t>Каждый имеет право.</w:t></w:r></w:p>
  </w:body>
</w:document>`
	core := `<?xml version="1.0" encoding="UTF-8"?>
<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/">
  <dc:title>Административный кодекс</dc:title>
</cp:coreProperties>`

	doc, err := Parse(buildDOCX(t, document, core), FormatDOCX)
	require.NoError(t, err)

	assert.Equal(t, FormatDOCX, doc.Format)
	assert.Equal(t, "Административный кодекс", doc.Title)
	assert.Equal(t, "ГЛАВА 1. ОБЩИЕ ПОЛОЖЕНИЯ\nСтатья 26¹. Право на защиту\nКаждый имеет право.", doc.Text)
}

func TestParse_DOCXNestedRuns(t *testing.T) {
	document := `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p>
      <w:r><w:t xml:space="preserve">см. </w:t></w:r>
      <w:hyperlink w:anchor="st7"><w:r><w:t>статью 7</w:t></w:r></w:hyperlink>
      <w:r><w:t xml:space="preserve"> настоящего Кодекса</w:t></w:r>
    </w:p>
    <w:p>
      <w:ins w:id="1"><w:r><w:t>Статья 8</w:t></w:r></w:ins>
      <w:del w:id="2"><w:r><w:delText>Статья 9</w:delText></w:r></w:del>
      <w:r><w:t>.</w:t><w:tab/><w:t>Заголовок</w:t></w:r>
    </w:p>
    <w:tbl><w:tr><w:tc><w:p><w:r><w:t>ячейка</w:t></w:r></w:p></w:tc></w:tr></w:tbl>
  </w:body>
</w:document>`

	doc, err := Parse(buildDOCX(t, document, ""), FormatDOCX)
	require.NoError(t, err)
	assert.Equal(t, "см. статью 7 настоящего Кодекса\nСтатья 8.\tЗаголовок\nячейка", doc.Text)
}

func TestParse_DOCXErrors(t *testing.T) {
	_, err := Parse([]byte("not a zip"), FormatDOCX)
	assert.Error(t, err)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	_, err = zw.Create("word/styles.xml")
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = Parse(buf.Bytes(), FormatDOCX)
	assert.ErrorContains(t, err, "word/document.xml")
}

func TestParse_LexUzHTML(t *testing.T) {
	page := `<html><head><title>Гражданский кодекс</title><script>var x = 1;</script></head>
<body>
<div class="TEXT_HEADER_DEFAULT">ГЛАВА 1. ОСНОВНЫЕ ПОЛОЖЕНИЯ</div>
<div class="CLAUSE_DEFAULT"><span class="clausePrfx">Статья 26<sup>1</sup>.</span> <span class="clauseSuff">Право   на защиту</span></div>
<div class="ACT_TEXT">Первый абзац.</div>
<div class="ACT_TEXT">
  Второй
  абзац.
</div>
<div class="CLAUSE_DEFAULT"><span class="clausePrfx">Статья 27.</span><span class="clauseSuff">Следующая</span></div>
<div class="ACT_TEXT">Текст.</div>
</body></html>`

	doc, err := Parse([]byte(page), FormatHTML)
	require.NoError(t, err)

	assert.Equal(t, "Гражданский кодекс", doc.Title)
	assert.Equal(t, "ГЛАВА 1. ОСНОВНЫЕ ПОЛОЖЕНИЯ\n"+
		"Статья 26¹. Право на защиту\n"+
		"Первый абзац.\n"+
		"Второй абзац.\n"+
		"Статья 27. Следующая\n"+
		"Текст.", doc.Text)
}

func TestParse_LexUzHTMLChapterSuperscript(t *testing.T) {
	page := `<html><body>
<div class="TEXT_HEADER_DEFAULT">ГЛАВА XVII. ПЕРВАЯ</div>
<div class="TEXT_HEADER_DEFAULT">ГЛАВА XVII<sup>1</sup>. Вставная</div>
<div class="CLAUSE_DEFAULT"><span class="clausePrfx">Статья 30<sup>1</sup>.</span> <span class="clauseSuff">Новая</span></div>
</body></html>`

	doc, err := Parse([]byte(page), FormatHTML)
	require.NoError(t, err)
	assert.Equal(t, "ГЛАВА XVII. ПЕРВАЯ\nГЛАВА XVII¹. Вставная\nСтатья 30¹. Новая", doc.Text)
}

func TestParse_HTMLFallback(t *testing.T) {
	page := `<html><body><h2>ГЛАВА 2</h2><p>Статья 5. Заголовок</p><p>Текст   статьи</p><style>p{}</style></body></html>`

	doc, err := Parse([]byte(page), FormatHTML)
	require.NoError(t, err)
	assert.Equal(t, "ГЛАВА 2\nСтатья 5. Заголовок\nТекст статьи", doc.Text)
}
