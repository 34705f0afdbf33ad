package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jordanlanch/talentdb/pkg/domain"
	"github.com/jordanlanch/talentdb/pkg/models"
	"github.com/jordanlanch/talentdb/pkg/store"
)

func seedCandidates(t *testing.T) *Service {
	t.Helper()
	mem := store.NewMemory()
	stores := mem.Stores()
	ctx := context.Background()

	score := 85
	require.NoError(t, stores.Candidates.Create(ctx, &models.Candidate{
		UserID: 1, Name: "Ada Lovelace", Email: "ada@example.com", Phone: "+14155552671",
		Stage: models.StageInterview, Role: "Backend Engineer", Source: "referral",
		AIMatchScore: &score,
	}))
	require.NoError(t, stores.Candidates.Create(ctx, &models.Candidate{
		UserID: 1, Name: "Grace Hopper", Email: "grace@example.com",
		Stage: models.StageNew, Role: "Compiler Engineer", Source: "sourced",
	}))
	// Another user's candidate must not leak into the export.
	require.NoError(t, stores.Candidates.Create(ctx, &models.Candidate{
		UserID: 2, Name: "Other", Email: "other@example.com", Stage: models.StageNew,
	}))

	return NewService(stores.Candidates, nil)
}

func TestExportCandidates_CSV(t *testing.T) {
	svc := seedCandidates(t)

	result, err := svc.ExportCandidates(context.Background(), 1, "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.Contains(t, result.Filename, "candidates-")

	records, err := csv.NewReader(bytes.NewReader(result.Data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3, "header plus two rows")
	assert.Equal(t, "Name", records[0][1])
	assert.Equal(t, "Ada Lovelace", records[1][1])
	assert.Equal(t, "85", records[1][7])
	assert.Equal(t, "0", records[2][7], "missing score exports as zero")
}

func TestExportCandidates_Excel(t *testing.T) {
	svc := seedCandidates(t)

	result, err := svc.ExportCandidates(context.Background(), 1, "excel")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(result.Data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Candidates")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Ada Lovelace", rows[1][1])
}

func TestExportCandidates_InvalidFormat(t *testing.T) {
	svc := seedCandidates(t)

	_, err := svc.ExportCandidates(context.Background(), 1, "pdf")
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}
