package corpus

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"

	"github.com/Longevitate/carefinder/internal/domain/entities"
	"github.com/Longevitate/carefinder/internal/domain/repositories"
	"github.com/Longevitate/carefinder/internal/infrastructure/clients/postgres"
	apperrors "github.com/Longevitate/carefinder/pkg/errors"
)

// PostgresWriter upserts a corpus into the tables PostgresSource reads.
type PostgresWriter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewPostgresWriter creates a corpus writer
func NewPostgresWriter(client *postgres.Client) *PostgresWriter {
	return &PostgresWriter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Write upserts every record in one transaction. When reset is set the
// tables are truncated first.
func (w *PostgresWriter) Write(ctx context.Context, data *repositories.CorpusData, reset bool) error {
	tx, err := w.client.BeginTx(ctx)
	if err != nil {
		return apperrors.NewInternalError("failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	if reset {
		if _, err := tx.ExecContext(ctx, `TRUNCATE TABLE facilities, providers, postal_codes`); err != nil {
			return apperrors.NewInternalError("failed to reset corpus tables", err)
		}
	}

	for _, f := range data.Facilities {
		record, err := facilityRecord(f)
		if err != nil {
			return err
		}
		if err := w.upsert(ctx, tx, "facilities", "id", record); err != nil {
			return err
		}
	}
	for _, p := range data.Providers {
		record, err := providerRecord(p)
		if err != nil {
			return err
		}
		if err := w.upsert(ctx, tx, "providers", "id", record); err != nil {
			return err
		}
	}
	for code, c := range data.PostalCodes {
		record := goqu.Record{"code": code, "latitude": c.Latitude, "longitude": c.Longitude}
		if err := w.upsert(ctx, tx, "postal_codes", "code", record); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewInternalError("failed to commit corpus", err)
	}
	return nil
}

func (w *PostgresWriter) upsert(ctx context.Context, tx *sql.Tx, table, key string, record goqu.Record) error {
	update := goqu.Record{}
	for col := range record {
		if col != key {
			update[col] = goqu.I("excluded." + col)
		}
	}

	query, args, err := w.db.Insert(table).
		Prepared(true).
		Rows(record).
		OnConflict(goqu.DoUpdate(key, update)).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build upsert query", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to upsert into "+table, err)
	}
	return nil
}

func facilityRecord(f *entities.FacilityRecord) (goqu.Record, error) {
	hours, err := nullableJSON(f.Hours, len(f.Hours) > 0)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to encode hours for "+f.ID, err)
	}
	value, count := ratingColumns(f.Rating)
	return goqu.Record{
		"id":                  f.ID,
		"name":                f.Name,
		"latitude":            f.Coordinates.Latitude,
		"longitude":           f.Coordinates.Longitude,
		"address":             f.Address,
		"phone":               nullString(f.Phone),
		"description":         f.Description,
		"services":            pq.Array(nonNil(f.Services)),
		"hours":               hours,
		"rating_value":        value,
		"rating_count":        count,
		"booking_resource_id": nullString(f.BookingResourceID),
		"url":                 nullString(f.URL),
		"is_urgent_care":      f.IsUrgentCare,
		"is_express_care":     f.IsExpressCare,
	}, nil
}

func providerRecord(p *entities.ProviderRecord) (goqu.Record, error) {
	locations, err := nullableJSON(p.Locations, len(p.Locations) > 0)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to encode locations for "+p.ID, err)
	}
	value, count := ratingColumns(p.Rating)
	return goqu.Record{
		"id":                     p.ID,
		"name":                   p.Name,
		"credentials":            pq.Array(nonNil(p.Credentials)),
		"gender":                 nullString(p.Gender),
		"specialties":            pq.Array(nonNil(p.Specialties)),
		"accepting_new_patients": p.AcceptingNewPatients,
		"virtual_care":           p.VirtualCare,
		"languages":              pq.Array(nonNil(p.Languages)),
		"insurance":              pq.Array(nonNil(p.Insurance)),
		"age_groups":             pq.Array(nonNil(p.AgeGroups)),
		"locations":              locations,
		"rating_value":           value,
		"rating_count":           count,
		"profile_url":            nullString(p.ProfileURL),
		"phones":                 pq.Array(nonNil(p.Phones)),
		"statement":              nullString(p.Statement),
	}, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullableJSON(v any, present bool) (sql.NullString, error) {
	if !present {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func ratingColumns(r *entities.Rating) (sql.NullFloat64, sql.NullInt64) {
	if r == nil {
		return sql.NullFloat64{}, sql.NullInt64{}
	}
	return sql.NullFloat64{Float64: r.Value, Valid: true}, sql.NullInt64{Int64: int64(r.Count), Valid: true}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
