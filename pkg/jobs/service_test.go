package jobs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jordanlanch/talentdb/pkg/domain"
	"github.com/jordanlanch/talentdb/pkg/store"
)

func TestService_CRUD(t *testing.T) {
	svc := NewService(store.NewMemory().Stores().Jobs)
	ctx := context.Background()

	minSalary := int64(90000)
	created, err := svc.Create(ctx, 1, CreateJobRequest{
		Title:     "Backend Engineer",
		Company:   "Acme Corp",
		SalaryMin: &minSalary,
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "open", created.Status, "new postings default to open")
	require.NotNil(t, created.SalaryMin)
	assert.Equal(t, int64(90000), *created.SalaryMin)

	closed := "closed"
	maxSalary := int64(130000)
	updated, err := svc.Update(ctx, created.ID, 1, UpdateJobRequest{Status: &closed, SalaryMax: &maxSalary})
	require.NoError(t, err)
	assert.Equal(t, "closed", updated.Status)
	assert.Equal(t, "Backend Engineer", updated.Title)
	require.NotNil(t, updated.SalaryMax)
	assert.Equal(t, int64(130000), *updated.SalaryMax)
	require.NotNil(t, updated.SalaryMin, "unset fields keep their values")

	list, err := svc.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	// Other users see nothing.
	_, err = svc.Get(ctx, created.ID, 2)
	assert.True(t, domain.IsNotFound(err))

	require.NoError(t, svc.Delete(ctx, created.ID, 1))
	_, err = svc.Get(ctx, created.ID, 1)
	assert.True(t, domain.IsNotFound(err))
}
