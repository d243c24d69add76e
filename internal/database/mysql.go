package database

import (
	"context"
	"errors"

	"github.com/go-sql-driver/mysql"
)

const mysqlDuplicateEntry = 1062

// MySQLDriver expects a DSN with parseTime=true so DATETIME columns scan into time.Time.
type MySQLDriver struct {
	sqlDriver
}

func (md *MySQLDriver) Connect(ctx context.Context, dsn string) error {
	md.dialect = MySQL
	return md.connect(ctx, "mysql", dsn)
}

func isMySQLUniqueViolation(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry
}
