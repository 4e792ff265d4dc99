// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package postgres

import (
	"context"
	"database/sql"

	"github.com/Masterminds/squirrel"
	"github.com/diffeo/go-restmount/mapper"
)

// store is one resource's rows in the record table.
type store struct {
	c        *Container
	resource string
}

func (s *store) key(id string) squirrel.Eq {
	return squirrel.Eq{"resource": s.resource, "id": id}
}

func (s *store) Get(ctx context.Context, id string) (mapper.Record, bool, error) {
	query, args, err := psql.Select("data").
		From("record").
		Where(s.key(id)).
		ToSql()
	if err != nil {
		return nil, false, err
	}
	var data []byte
	err = withTx(ctx, s.c, true, func(tx *sql.Tx) error {
		return tx.QueryRowContext(ctx, query, args...).Scan(&data)
	})
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	record, err := s.c.codec.Decode(data)
	if err != nil {
		return nil, false, err
	}
	return record, true, nil
}

// Put inserts or replaces a record.  A replaced record keeps its
// original position in the resource's ordering.
func (s *store) Put(ctx context.Context, id string, record mapper.Record) error {
	data, err := s.c.codec.Encode(record)
	if err != nil {
		return err
	}
	query, args, err := psql.Insert("record").
		Columns("resource", "id", "data").
		Values(s.resource, id, data).
		Suffix("ON CONFLICT (resource, id) DO UPDATE SET data=EXCLUDED.data").
		ToSql()
	if err != nil {
		return err
	}
	return withTx(ctx, s.c, false, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, query, args...)
		return err
	})
}

func (s *store) Delete(ctx context.Context, id string) error {
	query, args, err := psql.Delete("record").Where(s.key(id)).ToSql()
	if err != nil {
		return err
	}
	return withTx(ctx, s.c, false, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, query, args...)
		return err
	})
}

// All returns records in insertion order.
func (s *store) All(ctx context.Context) ([]mapper.Record, error) {
	query, args, err := psql.Select("data").
		From("record").
		Where(squirrel.Eq{"resource": s.resource}).
		OrderBy("seq").
		ToSql()
	if err != nil {
		return nil, err
	}
	var records []mapper.Record
	err = withTx(ctx, s.c, true, func(tx *sql.Tx) error {
		records = make([]mapper.Record, 0)
		rows, err := tx.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		return scanRows(rows, func() error {
			var data []byte
			if err := rows.Scan(&data); err != nil {
				return err
			}
			record, err := s.c.codec.Decode(data)
			if err != nil {
				return err
			}
			records = append(records, record)
			return nil
		})
	})
	return records, err
}
