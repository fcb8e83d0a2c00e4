package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/tradedocs/termsheet-extractor/constants"
	"github.com/tradedocs/termsheet-extractor/internal/repository"
	"github.com/tradedocs/termsheet-extractor/internal/rules"
)

func TestJobsXLSX(t *testing.T) {
	finished := time.Date(2026, 8, 7, 12, 0, 0, 0, time.UTC)
	jobs := []repository.Job{
		{
			ID:         uuid.New(),
			Filename:   "ZF4894_ALV.docx",
			Format:     "DOCX",
			Process:    constants.ProcessRuleBased,
			Status:     constants.JobStatusSucceeded,
			ResultJSON: `{"Counterparty":"Deutsche Bank AG"}`,
			StartedAt:  finished.Add(-time.Second),
			FinishedAt: &finished,
		},
	}

	data, err := JobsXLSX(jobs)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	name, err := f.GetCellValue("Jobs", "B2")
	require.NoError(t, err)
	assert.Equal(t, "ZF4894_ALV.docx", name)

	status, err := f.GetCellValue("Jobs", "E2")
	require.NoError(t, err)
	assert.Equal(t, "SUCCEEDED", status)
}

func TestResultsXLSX(t *testing.T) {
	fields := rules.NewResult()
	fields[rules.FieldCounterparty] = "Deutsche Bank AG"
	fields[rules.FieldBarrier] = "70%"

	data, err := ResultsXLSX([]FileResult{{Path: "docs/ZF4894.docx", Fields: fields}})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	// Header row: File followed by the nine fields in declared order.
	header, err := f.GetCellValue("Extraction", "B1")
	require.NoError(t, err)
	assert.Equal(t, "Counterparty", header)

	path, err := f.GetCellValue("Extraction", "A2")
	require.NoError(t, err)
	assert.Equal(t, "docs/ZF4894.docx", path)

	counterparty, err := f.GetCellValue("Extraction", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Deutsche Bank AG", counterparty)
}

func TestResultsXLSXEmpty(t *testing.T) {
	data, err := ResultsXLSX(nil)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
