package records

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coolbeans/lexarticles/pkg/codes"
	"github.com/coolbeans/lexarticles/pkg/extract"
)

const administrativeText = `ГЛАВА I. ОБЩИЕ ПОЛОЖЕНИЯ
Статья 1. Задачи
Текст первой статьи.
Статья 3481. Вставленная статья
Текст вставленной статьи.
ГЛАВА II. ОСОБЕННАЯ ЧАСТЬ
Статья
без номера
Статья 2¹. Дополнительная
Текст.
`

func intPtr(v int) *int { return &v }

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"130(1)", "130(1)"},
		{`12/3`, "123"},
		{`a\b*c?d:e"f<g>h|i`, "abcdefghi"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeFilename(tt.in), tt.in)
	}
}

func TestArticleRecord_FileNameAndRender(t *testing.T) {
	rec := &ArticleRecord{Number: "26(1)", Header: "Статья 26(1) ГК РУз", Title: "Право", Body: "Текст."}
	assert.Equal(t, "26(1).txt", rec.FileName())
	assert.Equal(t, "Статья 26(1) ГК РУз. Право\n\nТекст.\n", string(rec.Render()))

	unnumbered := &ArticleRecord{Header: "Статья", Body: "без номера"}
	assert.Equal(t, NoNumber+".txt", unnumbered.FileName())
	assert.Equal(t, "Статья\n\nбез номера\n", string(unnumbered.Render()))

	onlyUnsafe := &ArticleRecord{Number: "?"}
	assert.Equal(t, NoNumber+".txt", onlyUnsafe.FileName())
}

func TestBuilder_Build(t *testing.T) {
	builder := NewBuilder(codes.NewDefaultRegistry())

	batch, err := builder.Build("Administrative Code.txt", administrativeText, BuildOptions{})
	require.NoError(t, err)

	assert.Equal(t, codes.Administrative, batch.Identity)
	require.Len(t, batch.Records, 4)
	require.Len(t, batch.Manifest, 4)

	first := batch.Records[0]
	assert.Equal(t, "1", first.Number)
	assert.Equal(t, "Статья 1 КоАО РУз", first.Header)
	assert.Equal(t, "Задачи", first.Title)
	assert.Equal(t, "Текст первой статьи.", first.Body)
	require.NotNil(t, first.ChapterNumber)
	assert.Equal(t, 1, *first.ChapterNumber)

	assert.Equal(t, "348(1)", batch.Records[1].Number)
	assert.Equal(t, "348(1).txt", batch.Manifest[1].FilePath)

	assert.Equal(t, "", batch.Records[2].Number)
	assert.Equal(t, NoNumber+".txt", batch.Manifest[2].FilePath)
	assert.Equal(t, 2, *batch.Manifest[2].ArticleTitleNumber)

	assert.Equal(t, "2(1)", batch.Records[3].Number)
	assert.Equal(t, "administrative", batch.Manifest[3].LawType)

	require.Len(t, batch.Warnings, 1)
	assert.Equal(t, extract.WarningAmbiguousNumber, batch.Warnings[0].Kind)
	assert.Equal(t, 1, batch.Stats.Unnumbered)
}

func TestBuilder_BuildOverrides(t *testing.T) {
	builder := NewBuilder(codes.NewDefaultRegistry())

	batch, err := builder.Build("input.txt", administrativeText, BuildOptions{
		Code:       codes.Administrative,
		MaxArticle: intPtr(0),
		Strict:     true,
	})
	require.NoError(t, err)

	numbers := make([]string, 0, len(batch.Records))
	for _, rec := range batch.Records {
		numbers = append(numbers, rec.Number)
	}
	assert.Equal(t, []string{"1", "3481", "2(1)"}, numbers)
	assert.Len(t, batch.Warnings, 1)
}

func TestBuilder_UnknownCode(t *testing.T) {
	builder := NewBuilder(codes.NewDefaultRegistry())

	_, err := builder.Build("Statute of Something.txt", administrativeText, BuildOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, codes.ErrUnknownCode))

	var unknown *codes.UnknownCodeError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "Statute of Something.txt", unknown.Source)

	_, err = builder.Build("input.txt", administrativeText, BuildOptions{Code: "maritime"})
	assert.ErrorIs(t, err, codes.ErrUnknownCode)
}

func TestBuilder_InvalidNumbering(t *testing.T) {
	builder := NewBuilder(codes.NewDefaultRegistry())
	_, err := builder.Build("Civil Code.txt", administrativeText, BuildOptions{Numbering: "greek"})
	assert.Error(t, err)
}

func TestBuilder_NoArticles(t *testing.T) {
	builder := NewBuilder(codes.NewDefaultRegistry())

	batch, err := builder.Build("Civil Code.txt", "Просто текст без разметки.", BuildOptions{})
	require.NoError(t, err)
	assert.Empty(t, batch.Records)

	data, err := batch.Manifest.Encode()
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestManifest_Encode(t *testing.T) {
	manifest := Manifest{
		{LawType: "civil", ArticleNumber: "1", ArticleTitleNumber: intPtr(1), FilePath: "1.txt"},
		{LawType: "civil", ArticleNumber: "", FilePath: "NoNumber.txt"},
	}

	data, err := manifest.Encode()
	require.NoError(t, err)

	want := `[
  {
    "law_type": "civil",
    "article_number": "1",
    "article_title_number": 1,
    "file_path": "1.txt"
  },
  {
    "law_type": "civil",
    "article_number": "",
    "article_title_number": null,
    "file_path": "NoNumber.txt"
  }
]
`
	assert.Equal(t, want, string(data))
}

func TestManifest_EncodeKeepsNonASCII(t *testing.T) {
	manifest := Manifest{{LawType: "гражданский <кодекс>", FilePath: "1.txt"}}
	data, err := manifest.Encode()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"гражданский <кодекс>"`)
}

func TestPersist(t *testing.T) {
	builder := NewBuilder(codes.NewDefaultRegistry())
	batch, err := builder.Build("Administrative Code.txt", administrativeText, BuildOptions{})
	require.NoError(t, err)

	dir := batch.OutputDir(t.TempDir())
	assert.Equal(t, "administrative", filepath.Base(dir))
	require.NoError(t, Persist(dir, batch))

	content, err := os.ReadFile(filepath.Join(dir, "348(1).txt"))
	require.NoError(t, err)
	assert.Equal(t, "Статья 348(1) КоАО РУз. Вставленная статья\n\nТекст вставленной статьи.\n", string(content))

	loaded, err := LoadManifest(dir)
	require.NoError(t, err)
	assert.Equal(t, batch.Manifest, loaded)

	verification, err := Verify(dir)
	require.NoError(t, err)
	assert.True(t, verification.OK())
	assert.Equal(t, 4, verification.Entries)
	assert.Equal(t, 4, verification.Files)

	leftovers, err := filepath.Glob(filepath.Join(dir, ".metadata-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestPersist_Idempotent(t *testing.T) {
	builder := NewBuilder(codes.NewDefaultRegistry())
	dir := t.TempDir()

	var manifests [][]byte
	for i := 0; i < 2; i++ {
		batch, err := builder.Build("Administrative Code.txt", administrativeText, BuildOptions{})
		require.NoError(t, err)
		require.NoError(t, Persist(dir, batch))

		data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
		require.NoError(t, err)
		manifests = append(manifests, data)
	}
	assert.Equal(t, manifests[0], manifests[1])
}

func TestPersist_RemovesStaleRecords(t *testing.T) {
	dir := t.TempDir()
	first := &Batch{Records: []*ArticleRecord{
		{Number: "1", Header: "Статья 1", Body: "x", CodeType: codes.Civil},
		{Number: "999", Header: "Статья 999", Body: "old", CodeType: codes.Civil},
	}}
	require.NoError(t, Persist(dir, first))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("keep"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("keep"), 0644))

	second := &Batch{Records: []*ArticleRecord{{Number: "1", Header: "Статья 1", Body: "y", CodeType: codes.Civil}}}
	require.NoError(t, Persist(dir, second))

	_, err := os.Stat(filepath.Join(dir, "999.txt"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "notes.txt"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "notes.md"))
	assert.NoError(t, err)

	manifest, err := LoadManifest(dir)
	require.NoError(t, err)
	require.Len(t, manifest, 1)
	assert.Equal(t, "1.txt", manifest[0].FilePath)
}

func TestPersist_KeepsUnlistedFiles(t *testing.T) {
	for name, manifest := range map[string]string{
		"no manifest":      "",
		"corrupt manifest": "oops",
		"escaping entry":   `[{"law_type":"civil","article_number":"1","article_title_number":null,"file_path":"../outside.txt"}]`,
	} {
		t.Run(name, func(t *testing.T) {
			parent := t.TempDir()
			dir := filepath.Join(parent, "civil")
			require.NoError(t, os.MkdirAll(dir, 0755))
			require.NoError(t, os.WriteFile(filepath.Join(parent, "outside.txt"), []byte("keep"), 0644))
			require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("keep"), 0644))
			if manifest != "" {
				require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestFile), []byte(manifest), 0644))
			}

			batch := &Batch{Records: []*ArticleRecord{{Number: "1", Header: "Статья 1", Body: "x", CodeType: codes.Civil}}}
			require.NoError(t, Persist(dir, batch))

			_, err := os.Stat(filepath.Join(dir, "readme.txt"))
			assert.NoError(t, err)
			_, err = os.Stat(filepath.Join(parent, "outside.txt"))
			assert.NoError(t, err)

			verification, err := Verify(dir)
			require.NoError(t, err)
			assert.Equal(t, []string{"readme.txt"}, verification.Unlisted)
		})
	}
}

func TestPersist_CountInvariant(t *testing.T) {
	var text strings.Builder
	for i := 1; i <= 40; i++ {
		fmt.Fprintf(&text, "Статья %d. Заголовок %d\nТекст статьи %d.\n", i, i, i)
	}

	builder := NewBuilder(codes.NewDefaultRegistry())
	batch, err := builder.Build("Civil Code.txt", text.String(), BuildOptions{})
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, Persist(dir, batch))

	verification, err := Verify(dir)
	require.NoError(t, err)
	assert.Equal(t, len(batch.Records), verification.Entries)
	assert.Equal(t, 40, verification.Files)
	assert.True(t, verification.OK())
}

func TestVerify_ReportsProblems(t *testing.T) {
	dir := t.TempDir()
	manifest := Manifest{
		{LawType: "civil", ArticleNumber: "1", FilePath: "1.txt"},
		{LawType: "civil", ArticleNumber: "", FilePath: "NoNumber.txt"},
		{LawType: "civil", ArticleNumber: "", FilePath: "NoNumber.txt"},
		{LawType: "civil", ArticleNumber: "2", FilePath: "2.txt"},
	}
	data, err := json.Marshal(manifest)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestFile), data, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "1.txt"), []byte("a"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "NoNumber.txt"), []byte("b"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "7.txt"), []byte("c"), 0644))

	verification, err := Verify(dir)
	require.NoError(t, err)

	assert.False(t, verification.OK())
	assert.Equal(t, []string{"2.txt"}, verification.Missing)
	assert.Equal(t, []string{"7.txt"}, verification.Unlisted)
	assert.Equal(t, []string{"NoNumber.txt"}, verification.Duplicates)
}

func TestLoadManifest_Errors(t *testing.T) {
	_, err := LoadManifest(t.TempDir())
	assert.ErrorIs(t, err, os.ErrNotExist)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestFile), []byte("{not json"), 0644))
	_, err = LoadManifest(dir)
	assert.Error(t, err)
}

func TestMerge(t *testing.T) {
	builder := NewBuilder(codes.NewDefaultRegistry())

	part1, err := builder.Build("Civil Code p1.txt", "Статья 1. Первая\nТекст.\nСтатья 2. Вторая\nТекст.", BuildOptions{})
	require.NoError(t, err)
	part2, err := builder.Build("Civil Code p2.txt", "Статья 454. Договор\nТекст.", BuildOptions{})
	require.NoError(t, err)

	merged, err := Merge(part1, part2)
	require.NoError(t, err)

	assert.Equal(t, codes.Civil, merged.Identity)
	assert.Equal(t, "Civil Code p1.txt, Civil Code p2.txt", merged.Source)
	require.Len(t, merged.Manifest, 3)
	assert.Equal(t, "454.txt", merged.Manifest[2].FilePath)
	assert.Equal(t, 3, merged.Stats.Articles)

	criminal, err := builder.Build("Criminal Code.txt", "Статья 1. Задачи\nТекст.", BuildOptions{})
	require.NoError(t, err)
	_, err = Merge(part1, criminal)
	assert.Error(t, err)

	_, err = Merge()
	assert.Error(t, err)
}
