package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() Table {
	return Table{
		Title:   "Attendance 2024-03",
		Headers: []string{"Student ID", "Name", "Percentage"},
		Rows: [][]string{
			{"101", "Student A", "50.00"},
			{"102", "Student, B", "100.00"},
			{"103"},
		},
	}
}

func TestCSVRendererRender(t *testing.T) {
	out, err := NewCSVRenderer().Render(sampleTable())
	require.NoError(t, err)

	expected := "Student ID,Name,Percentage\n101,Student A,50.00\n102,\"Student, B\",100.00\n103,,\n"
	assert.Equal(t, expected, string(out))
}

func TestCSVRendererNeutralizesFormulas(t *testing.T) {
	table := Table{
		Headers: []string{"Student ID", "Name"},
		Rows: [][]string{
			{"=1+1", "=HYPERLINK(\"http://evil\")"},
			{"+cmd", "-2"},
			{"@SUM(A1)", "Plain"},
		},
	}
	out, err := NewCSVRenderer().Render(table)
	require.NoError(t, err)

	expected := "Student ID,Name\n'=1+1,\"'=HYPERLINK(\"\"http://evil\"\")\"\n'+cmd,'-2\n'@SUM(A1),Plain\n"
	assert.Equal(t, expected, string(out))
}

func TestRenderersRequireHeaders(t *testing.T) {
	for _, r := range []Renderer{NewCSVRenderer(), NewPDFRenderer()} {
		_, err := r.Render(Table{})
		assert.ErrorIs(t, err, errNoHeaders, r.Extension())
	}
}

func TestPDFRendererRender(t *testing.T) {
	table := sampleTable()
	for i := 0; i < 80; i++ {
		table.Rows = append(table.Rows, []string{"X", "Filler", "0.00"})
	}
	out, err := NewPDFRenderer().Render(table)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Equal(t, "application/pdf", NewPDFRenderer().ContentType())
}
