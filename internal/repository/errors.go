package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// invalidTextRepresentation es el código SQLSTATE de un UUID mal formado.
const invalidTextRepresentation = "22P02"

// normalizeErr trata un id mal formado como fila inexistente.
func normalizeErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == invalidTextRepresentation {
		return pgx.ErrNoRows
	}
	return err
}
