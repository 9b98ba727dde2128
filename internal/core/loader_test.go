package core

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/credgrid/internal/config"
	"github.com/JonMunkholm/credgrid/internal/logging"
)

const testRoster = "ID,NOME,NASC,RG,CPF,RA,ENTIDADE,CURSO,FORMADO\n" +
	"1,Ana Lima,,,,RA1,,sub15,false\n" +
	"2,Bia Souza,,,,RA2,,karate,false\n" +
	"3,Caio Reis,,,,RA3,,guest,true\n"

const testDescriptor = `{"name": "Clube Atlético", "tag": "CLB",
 "courses": {"regular": ["sub15", "sub17"], "exceptional": ["guest"]}}`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func testRosterConfig() config.RosterConfig {
	return config.Defaults().Roster
}

func TestLoader_DropsNotAllowedCourse(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clube.csv")
	writeFile(t, path, testRoster)

	var logs bytes.Buffer
	loader := NewLoader(testRosterConfig(), logging.New(&logs, "warn", "text"))

	roster, err := loader.Load(context.Background(), path, testOrg(t))
	require.NoError(t, err)

	require.Equal(t, 2, roster.Len())
	assert.Equal(t, "Ana Lima", roster.Members[0].Name)
	assert.Equal(t, "Caio Reis", roster.Members[1].Name)

	require.Len(t, roster.Exclusions, 1)
	assert.Equal(t, Exclusion{Line: 3, Name: "Bia Souza", Course: "karate", Reason: ReasonCourseNotAllowed}, roster.Exclusions[0])
	assert.Empty(t, roster.RowErrors)
	assert.Equal(t, 1, roster.Dropped())

	assert.Contains(t, logs.String(), "Bia Souza")
	assert.Contains(t, logs.String(), "course_not_allowed")
}

func TestLoader_IncludeMissingKeepsEveryone(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clube.csv")
	writeFile(t, path, testRoster+"4,Duda Alves,,,,,,,\n")

	cfg := testRosterConfig()
	cfg.IncludeMissing = true

	roster, err := NewLoader(cfg, nil).Load(context.Background(), path, testOrg(t))
	require.NoError(t, err)
	assert.Equal(t, 4, roster.Len())
	assert.Empty(t, roster.Exclusions)
}

func TestLoader_LenientCoursesKeepsUnknown(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clube.csv")
	writeFile(t, path, testRoster)

	cfg := testRosterConfig()
	cfg.ValidateCourses = false

	roster, err := NewLoader(cfg, nil).Load(context.Background(), path, testOrg(t))
	require.NoError(t, err)
	assert.Equal(t, 3, roster.Len())
}

func TestLoader_MissingInformation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clube.csv")
	writeFile(t, path, "header\n1,Ana Lima,,,,,,sub15,\n2,Bia Souza,,,,RA2,,,\n3,Caio Reis,,,,RA3,,sub15,\n")

	var logs bytes.Buffer
	cfg := testRosterConfig()
	cfg.ShowWarnings = false

	roster, err := NewLoader(cfg, logging.New(&logs, "debug", "text")).Load(context.Background(), path, testOrg(t))
	require.NoError(t, err)

	require.Equal(t, 1, roster.Len())
	assert.Equal(t, "Caio Reis", roster.Members[0].Name)
	require.Len(t, roster.Exclusions, 2)
	for _, ex := range roster.Exclusions {
		assert.Equal(t, ReasonMissingInfo, ex.Reason)
	}
	assert.Empty(t, logs.String(), "warnings are disabled")
}

func TestLoader_RowErrorsAreKeptInRoster(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clube.csv")
	writeFile(t, path, "header\nabc,Ana Lima,,,,RA1,,sub15,\n2,Bia Souza,,,,RA2,,sub15,\n")

	roster, err := NewLoader(testRosterConfig(), nil).Load(context.Background(), path, testOrg(t))
	require.NoError(t, err)
	assert.Equal(t, 1, roster.Len())
	require.Len(t, roster.RowErrors, 1)
	assert.Equal(t, 2, roster.RowErrors[0].Line)
}

func TestLoader_UnreadableFile(t *testing.T) {
	_, err := NewLoader(testRosterConfig(), nil).Load(context.Background(), filepath.Join(t.TempDir(), "nope.csv"), testOrg(t))
	require.Error(t, err)

	var fe *FileError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "IO001", fe.Code())
}

func TestLoader_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clube.csv")
	writeFile(t, path, testRoster)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLoader(testRosterConfig(), nil).Load(ctx, path, testOrg(t))
	assert.True(t, errors.Is(err, context.Canceled), "err = %v", err)
}

func TestLoader_NameWithLineBreakRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clube.csv")
	writeFile(t, path, "header\n1,\"Ana\nLima\",,,,RA1,,sub15,false\n")

	cfg := testRosterConfig()
	roster, err := NewLoader(cfg, nil).Load(context.Background(), path, testOrg(t))
	require.NoError(t, err)
	require.Equal(t, 1, roster.Len())

	m := roster.Members[0]
	assert.Equal(t, "Ana Lima", m.Name)

	codec := NewCodec(cfg)
	fields, err := codec.SplitPayload(codec.Payload(m))
	require.NoError(t, err)
	assert.Equal(t, "Ana Lima", fields.Name)
	assert.Equal(t, "Clube Atlético", fields.OrgName)
}

func TestLoader_SeparatorInNameIsRowError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clube.csv")
	writeFile(t, path, "header\n1,\"Lima, Ana\",,,,RA1,,sub15,false\n2,Bia Souza,,,,RA2,,sub15,false\n")

	cfg := testRosterConfig()
	cfg.QRSeparator = ","

	roster, err := NewLoader(cfg, nil).Load(context.Background(), path, testOrg(t))
	require.NoError(t, err)
	require.Equal(t, 1, roster.Len())
	assert.Equal(t, "Bia Souza", roster.Members[0].Name)

	require.Len(t, roster.RowErrors, 1)
	assert.Equal(t, 2, roster.RowErrors[0].Line)
	assert.ErrorIs(t, roster.RowErrors[0], ErrSeparatorInField)
}

func TestLoader_SeparatorInOrganizationName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clube.csv")
	writeFile(t, path, testRoster)

	org, err := NewOrganization("Clube, Atlético", "CLB", Courses{Regular: []string{"sub15"}})
	require.NoError(t, err)

	cfg := testRosterConfig()
	cfg.QRSeparator = ","

	_, err = NewLoader(cfg, nil).Load(context.Background(), path, org)
	assert.ErrorIs(t, err, ErrSeparatorInField)
	assert.Equal(t, "DESC001", MapError(err).Code)
}

// ----------------------------------------------------------------------------
// Readers
// ----------------------------------------------------------------------------

func TestCSVReader_BOMAndInvalidUTF8(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bom.csv")
	writeFile(t, path, "\xEF\xBB\xBF1,Jo\xE3o,,,,RA1,,sub15,\n")

	rows, err := CSVReader{}.ReadRows(context.Background(), path, MakeHeaderIndex(testHeaders))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "1", rows[0].Get(FieldID))
	assert.Equal(t, "Jo\uFFFDo", rows[0].Get(FieldName))
	assert.Equal(t, 1, rows[0].Line)
}

func TestXLSXReader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clube.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	records := [][]any{
		{"ID", "NOME", "NASC", "RG", "CPF", "RA", "ENTIDADE", "CURSO", "FORMADO"},
		{"1", "Ana Lima", "", "", "", "RA1", "", "sub15", "não"},
		{"2", "Bia Souza", "", "", "", "RA2", "", "guest", "sim"},
	}
	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &rec))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	roster, err := NewLoader(testRosterConfig(), nil).Load(context.Background(), path, testOrg(t))
	require.NoError(t, err)
	require.Equal(t, 2, roster.Len())
	assert.False(t, roster.Members[0].Graduated)
	assert.True(t, roster.Members[1].Graduated)
	assert.Equal(t, "guest", roster.Members[1].Course)
}

func TestReaderFor(t *testing.T) {
	for _, p := range []string{"a.csv", "A.CSV", "b.xlsx"} {
		_, err := ReaderFor(p)
		assert.NoError(t, err, p)
	}
	_, err := ReaderFor("c.ods")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

// ----------------------------------------------------------------------------
// Descriptors
// ----------------------------------------------------------------------------

func TestResolveInput_FromRoster(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "clube.csv"), testRoster)
	writeFile(t, filepath.Join(dir, "clube.json"), testDescriptor)

	in, err := ResolveInput(filepath.Join(dir, "clube.csv"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "clube.json"), in.Descriptor)
	assert.Equal(t, filepath.Join(dir, "clube.csv"), in.Roster)
	assert.Equal(t, "CLB", in.Org.Tag)
	assert.True(t, in.Org.IsExceptionalCourse("guest"))
	assert.Empty(t, in.Org.OutputFile)
}

func TestResolveInput_FromDescriptorWithOverrides(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "data", "atletas.csv"), testRoster)
	writeFile(t, filepath.Join(dir, "clube.yaml"), strings.Join([]string{
		"name: Clube Atlético",
		"tag: CLB",
		"courses:",
		"  regular: [sub15]",
		"  exceptional: [guest]",
		"csvFile: data/atletas.csv",
		"outputFile: out/clube-final.pdf",
	}, "\n"))

	in, err := ResolveInput(filepath.Join(dir, "clube.yaml"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "data", "atletas.csv"), in.Roster)
	assert.Equal(t, filepath.Join(dir, "out", "clube-final.pdf"), in.Org.OutputFile)

	roster, err := NewLoader(testRosterConfig(), nil).LoadInput(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, 2, roster.Len())
}

func TestResolveInput_DefaultSiblingRoster(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "clube.json"), testDescriptor)

	in, err := ResolveInput(filepath.Join(dir, "clube.json"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "clube.csv"), in.Roster)
}

func TestResolveInput_Errors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "orphan.csv"), testRoster)
	writeFile(t, filepath.Join(dir, "broken.json"), "{not json")
	writeFile(t, filepath.Join(dir, "notag.json"), `{"name": "Sem Tag"}`)

	_, err := ResolveInput(filepath.Join(dir, "orphan.csv"))
	assert.ErrorIs(t, err, ErrNoDescriptor)

	var de *DescriptorError
	_, err = ResolveInput(filepath.Join(dir, "broken.json"))
	assert.ErrorAs(t, err, &de)

	_, err = ResolveInput(filepath.Join(dir, "notag.json"))
	assert.ErrorAs(t, err, &de)

	_, err = ResolveInput(filepath.Join(dir, "clube.txt"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
