package corpus

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Longevitate/carefinder/internal/infrastructure/clients/postgres"
	apperrors "github.com/Longevitate/carefinder/pkg/errors"
)

var (
	facilityColumns = []string{
		"id", "name", "latitude", "longitude", "address", "phone", "description",
		"services", "hours", "rating_value", "rating_count", "booking_resource_id",
		"url", "is_urgent_care", "is_express_care",
	}
	providerColumns = []string{
		"id", "name", "credentials", "gender", "specialties", "accepting_new_patients",
		"virtual_care", "languages", "insurance", "age_groups", "locations",
		"rating_value", "rating_count", "profile_url", "phones", "statement",
	}
)

func newMockSource(t *testing.T) (*PostgresSource, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresSource(postgres.NewFromDB(db)).(*PostgresSource), mock
}

func TestPostgresSource_Load(t *testing.T) {
	source, mock := newMockSource(t)

	mock.ExpectQuery(`SELECT .* FROM "facilities"`).
		WillReturnRows(sqlmock.NewRows(facilityColumns).
			AddRow("everett", "Everett Walk-In Clinic", 47.979, -122.2021, "1321 Colby Ave", "425-555-0100",
				"Walk-in care", `{"Cold and flu",X-ray}`, []byte(`{"monday":{"open":"08:00","close":"20:00"}}`),
				4.6, 212, "bk-1", "https://example.org/book/everett", false, true).
			AddRow("portland", "Portland Urgent Care", 45.5152, -122.6784, "", nil,
				"", `{}`, nil, nil, nil, nil, nil, true, false))
	mock.ExpectQuery(`SELECT .* FROM "providers"`).
		WillReturnRows(sqlmock.NewRows(providerColumns).
			AddRow("avery", "Avery Chen", `{MD,MPH}`, "Female", `{"Family Medicine"}`, true,
				false, `{English,Spanish}`, `{"Premera Blue Cross"}`, `{Adult}`,
				[]byte(`[{"name":"Everett Medical Plaza","coordinates":{"lat":47.98,"lng":-122.21}}]`),
				nil, nil, nil, `{425-555-0199}`, nil))
	mock.ExpectQuery(`SELECT .* FROM "postal_codes"`).
		WillReturnRows(sqlmock.NewRows([]string{"code", "latitude", "longitude"}).
			AddRow("98229", 48.7519, -122.4787))

	data, err := source.Load(context.Background())
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	require.Len(t, data.Facilities, 2)
	everett := data.Facilities[0]
	assert.Equal(t, []string{"Cold and flu", "X-ray"}, everett.Services)
	assert.Equal(t, "20:00", everett.Hours["monday"].Close)
	require.NotNil(t, everett.Rating)
	assert.Equal(t, 212, everett.Rating.Count)
	assert.Equal(t, "bk-1", everett.BookingResourceID)

	portland := data.Facilities[1]
	assert.Nil(t, portland.Rating)
	assert.Nil(t, portland.Hours)
	assert.Empty(t, portland.Phone)
	assert.True(t, portland.IsUrgentCare)

	require.Len(t, data.Providers, 1)
	avery := data.Providers[0]
	assert.Equal(t, []string{"MD", "MPH"}, avery.Credentials)
	assert.Equal(t, []string{"Premera Blue Cross"}, avery.Insurance)
	require.Len(t, avery.Locations, 1)
	assert.InDelta(t, 47.98, avery.Locations[0].Coordinates.Latitude, 1e-9)
	assert.Nil(t, avery.Rating)

	assert.InDelta(t, 48.7519, data.PostalCodes["98229"].Latitude, 1e-9)
	assert.Equal(t, "postgres", source.Name())
}

func TestPostgresSource_EmptyPostalTable(t *testing.T) {
	source, mock := newMockSource(t)

	mock.ExpectQuery(`FROM "facilities"`).WillReturnRows(sqlmock.NewRows(facilityColumns))
	mock.ExpectQuery(`FROM "providers"`).WillReturnRows(sqlmock.NewRows(providerColumns))
	mock.ExpectQuery(`FROM "postal_codes"`).WillReturnRows(sqlmock.NewRows([]string{"code", "latitude", "longitude"}))

	_, err := source.Load(context.Background())
	assert.Equal(t, apperrors.ErrorTypeMissingLookupTable, apperrors.TypeOf(err))
}

func TestPostgresSource_QueryFailure(t *testing.T) {
	source, mock := newMockSource(t)

	mock.ExpectQuery(`FROM "facilities"`).WillReturnError(errors.New("connection reset"))

	_, err := source.Load(context.Background())
	assert.Equal(t, apperrors.ErrorTypeInternal, apperrors.TypeOf(err))
	assert.ErrorContains(t, err, "connection reset")
}

func TestPostgresSource_MalformedHours(t *testing.T) {
	source, mock := newMockSource(t)

	mock.ExpectQuery(`FROM "facilities"`).
		WillReturnRows(sqlmock.NewRows(facilityColumns).
			AddRow("bad", "Bad Hours", 47.0, -122.0, "", nil, "", `{}`, []byte(`["monday"]`),
				nil, nil, nil, nil, false, false))

	_, err := source.Load(context.Background())
	assert.Equal(t, apperrors.ErrorTypeInvalidCorpus, apperrors.TypeOf(err))
}
