package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func testLead() *model.Lead {
	rating := 4.5
	return model.NewLead(
		model.Candidate{
			BusinessName: "Cafe A",
			Phone:        "(555) 010-0001",
			Rating:       &rating,
			ReviewCount:  120,
			Source:       model.SourceMapListing,
		},
		model.Analysis{Score: 90, Interest: model.InterestHot},
		80,
	)
}

func TestPostgresStore_SaveLead(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	lead := testLead()

	mock.ExpectExec(`INSERT INTO leads`).
		WithArgs(lead.ID, "Cafe A", "cafe a", "5550100001",
			"map_listing", "new", pgxmock.AnyArg(), true,
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, s.SaveLead(context.Background(), lead))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetLead_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT data FROM leads WHERE id = \$1`).
		WithArgs("nonexistent-lead").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetLead(context.Background(), "nonexistent-lead")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "get lead")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ExistsMatching(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("5550100001", "cafe a").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := s.ExistsMatching(context.Background(), "5550100001", "cafe a")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ExistsMatching_NoMatch(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("", "unknown cafe").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	exists, err := s.ExistsMatching(context.Background(), "", "unknown cafe")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateLead(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	lead := testLead()
	data := mustMarshal(t, lead)

	mock.ExpectQuery(`SELECT data FROM leads WHERE id = \$1`).
		WithArgs(lead.ID).
		WillReturnRows(pgxmock.NewRows([]string{"data"}).AddRow(data))
	mock.ExpectExec(`UPDATE leads SET status = \$1`).
		WithArgs("contacted", "high", pgxmock.AnyArg(), pgxmock.AnyArg(), lead.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	status := model.StatusContacted
	updated, err := s.UpdateLead(context.Background(), lead.ID, LeadUpdate{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, model.StatusContacted, updated.Status)
	assert.True(t, updated.UpdatedAt.After(lead.CreatedAt.Add(-time.Second)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateLead_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	lead := testLead()
	data := mustMarshal(t, lead)

	mock.ExpectQuery(`SELECT data FROM leads WHERE id = \$1`).
		WithArgs(lead.ID).
		WillReturnRows(pgxmock.NewRows([]string{"data"}).AddRow(data))
	mock.ExpectExec(`UPDATE leads SET status = \$1`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), lead.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	notes := "gone"
	_, err := s.UpdateLead(context.Background(), lead.ID, LeadUpdate{Notes: &notes})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_DeleteLead_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`DELETE FROM leads WHERE id = \$1`).
		WithArgs("missing").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := s.DeleteLead(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CountLeads(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM leads`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(42))

	count, err := s.CountLeads(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListLeads_Filters(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	lead := testLead()
	data := mustMarshal(t, lead)

	mock.ExpectQuery(`SELECT data FROM leads WHERE true AND status = \$1 AND hot ORDER BY created_at DESC LIMIT \$2`).
		WithArgs("new", 10).
		WillReturnRows(pgxmock.NewRows([]string{"data"}).AddRow(data))

	got, err := s.ListLeads(context.Background(), Filter{
		Status:  model.StatusNew,
		HotOnly: true,
		Limit:   10,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Cafe A", got[0].BusinessName)
	assert.NoError(t, mock.ExpectationsWereMet())
}
