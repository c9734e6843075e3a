package corpus

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/lib/pq"

	"github.com/Longevitate/carefinder/internal/domain/entities"
	"github.com/Longevitate/carefinder/internal/domain/repositories"
	"github.com/Longevitate/carefinder/internal/infrastructure/clients/postgres"
	"github.com/Longevitate/carefinder/internal/infrastructure/observability"
	apperrors "github.com/Longevitate/carefinder/pkg/errors"
	"github.com/Longevitate/carefinder/pkg/geo"
)

// PostgresSource loads the corpus from the facilities, providers and
// postal_codes tables.
type PostgresSource struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewPostgresSource creates a Postgres-backed corpus source
func NewPostgresSource(client *postgres.Client) repositories.CorpusSource {
	return &PostgresSource{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Name implements repositories.CorpusSource.
func (s *PostgresSource) Name() string {
	return "postgres"
}

// Load implements repositories.CorpusSource.
func (s *PostgresSource) Load(ctx context.Context) (*repositories.CorpusData, error) {
	ctx, span := observability.StartSpan(ctx, "corpus.postgres.load")
	defer span.End()

	facilities, err := s.loadFacilities(ctx)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	providers, err := s.loadProviders(ctx)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	postal, err := s.loadPostalCodes(ctx)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	return &repositories.CorpusData{
		Facilities:  facilities,
		Providers:   providers,
		PostalCodes: postal,
	}, nil
}

func (s *PostgresSource) loadFacilities(ctx context.Context) ([]*entities.FacilityRecord, error) {
	query, args, err := s.db.Select(
		"id", "name", "latitude", "longitude", "address", "phone", "description",
		"services", "hours", "rating_value", "rating_count", "booking_resource_id",
		"url", "is_urgent_care", "is_express_care",
	).From("facilities").
		Where(goqu.Ex{"is_active": true}).
		Order(goqu.I("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build facilities query", err)
	}

	rows, err := s.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load facilities", err)
	}
	defer rows.Close()

	var facilities []*entities.FacilityRecord
	for rows.Next() {
		f := &entities.FacilityRecord{}
		var (
			phone, bookingID, url sql.NullString
			hours                 []byte
			ratingValue           sql.NullFloat64
			ratingCount           sql.NullInt64
		)
		if err := rows.Scan(
			&f.ID,
			&f.Name,
			&f.Coordinates.Latitude,
			&f.Coordinates.Longitude,
			&f.Address,
			&phone,
			&f.Description,
			pq.Array(&f.Services),
			&hours,
			&ratingValue,
			&ratingCount,
			&bookingID,
			&url,
			&f.IsUrgentCare,
			&f.IsExpressCare,
		); err != nil {
			return nil, apperrors.NewInternalError("failed to scan facility", err)
		}

		f.Phone = phone.String
		f.BookingResourceID = bookingID.String
		f.URL = url.String
		f.Rating = nullableRating(ratingValue, ratingCount)
		if len(hours) > 0 {
			if err := json.Unmarshal(hours, &f.Hours); err != nil {
				return nil, apperrors.NewInvalidCorpusError(fmt.Sprintf("facility %s has malformed hours", f.ID), err)
			}
		}
		facilities = append(facilities, f)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate facilities", err)
	}
	return facilities, nil
}

func (s *PostgresSource) loadProviders(ctx context.Context) ([]*entities.ProviderRecord, error) {
	query, args, err := s.db.Select(
		"id", "name", "credentials", "gender", "specialties", "accepting_new_patients",
		"virtual_care", "languages", "insurance", "age_groups", "locations",
		"rating_value", "rating_count", "profile_url", "phones", "statement",
	).From("providers").
		Where(goqu.Ex{"is_active": true}).
		Order(goqu.I("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build providers query", err)
	}

	rows, err := s.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load providers", err)
	}
	defer rows.Close()

	var providers []*entities.ProviderRecord
	for rows.Next() {
		p := &entities.ProviderRecord{}
		var (
			gender, profileURL, statement sql.NullString
			locations                     []byte
			ratingValue                   sql.NullFloat64
			ratingCount                   sql.NullInt64
		)
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			pq.Array(&p.Credentials),
			&gender,
			pq.Array(&p.Specialties),
			&p.AcceptingNewPatients,
			&p.VirtualCare,
			pq.Array(&p.Languages),
			pq.Array(&p.Insurance),
			pq.Array(&p.AgeGroups),
			&locations,
			&ratingValue,
			&ratingCount,
			&profileURL,
			pq.Array(&p.Phones),
			&statement,
		); err != nil {
			return nil, apperrors.NewInternalError("failed to scan provider", err)
		}

		p.Gender = gender.String
		p.ProfileURL = profileURL.String
		p.Statement = statement.String
		p.Rating = nullableRating(ratingValue, ratingCount)
		if len(locations) > 0 {
			if err := json.Unmarshal(locations, &p.Locations); err != nil {
				return nil, apperrors.NewInvalidCorpusError(fmt.Sprintf("provider %s has malformed locations", p.ID), err)
			}
		}
		providers = append(providers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate providers", err)
	}
	return providers, nil
}

func (s *PostgresSource) loadPostalCodes(ctx context.Context) (map[string]geo.Coordinates, error) {
	query, args, err := s.db.Select("code", "latitude", "longitude").
		From("postal_codes").
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build postal code query", err)
	}

	rows, err := s.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load postal codes", err)
	}
	defer rows.Close()

	table := make(map[string]geo.Coordinates)
	for rows.Next() {
		var (
			code string
			c    geo.Coordinates
		)
		if err := rows.Scan(&code, &c.Latitude, &c.Longitude); err != nil {
			return nil, apperrors.NewInternalError("failed to scan postal code", err)
		}
		table[code] = c
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate postal codes", err)
	}
	if len(table) == 0 {
		return nil, apperrors.NewMissingLookupTableError("postal code")
	}
	return table, nil
}

func nullableRating(value sql.NullFloat64, count sql.NullInt64) *entities.Rating {
	if !value.Valid {
		return nil
	}
	return &entities.Rating{Value: value.Float64, Count: int(count.Int64)}
}
