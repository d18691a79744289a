package repository

import "github.com/jmoiron/sqlx"

// executor returns the transaction when one is supplied, the pool otherwise.
func executor(db *sqlx.DB, exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return db
}
