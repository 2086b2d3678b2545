package postgres_test

import (
	"context"
	"reflect"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// rowStub implements pgx.Row
type rowStub struct{ scan func(dest ...any) error }

func (r rowStub) Scan(dest ...any) error { return r.scan(dest...) }

// rowsStub implements pgx.Rows over a fixed grid of values. Scan copies
// the current row's cells into the destinations via reflection.
type rowsStub struct {
	data   [][]any
	cursor int
	err    error
}

func (r *rowsStub) Next() bool {
	if r.cursor >= len(r.data) {
		return false
	}
	r.cursor++
	return true
}

func (r *rowsStub) Scan(dest ...any) error {
	row := r.data[r.cursor-1]
	for i, d := range dest {
		v := reflect.ValueOf(d).Elem()
		if row[i] == nil {
			v.Set(reflect.Zero(v.Type()))
			continue
		}
		v.Set(reflect.ValueOf(row[i]))
	}
	return nil
}

func (r *rowsStub) Close()                                       {}
func (r *rowsStub) Err() error                                   { return r.err }
func (r *rowsStub) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *rowsStub) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *rowsStub) Values() ([]any, error)                       { return nil, nil }
func (r *rowsStub) RawValues() [][]byte                          { return nil }
func (r *rowsStub) Conn() *pgx.Conn                              { return nil }

// queryCall records one Query invocation for assertions.
type queryCall struct {
	sql  string
	args []any
}

// poolStub implements postgres.PgxPool for tests. query is invoked per
// Query call with the 1-based call number so tests can script failures.
type poolStub struct {
	calls []queryCall
	query func(call int, sql string, args []any) (pgx.Rows, error)
	row   rowStub
}

func (p *poolStub) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	p.calls = append(p.calls, queryCall{sql: sql, args: args})
	return p.query(len(p.calls), sql, args)
}

func (p *poolStub) QueryRow(_ context.Context, _ string, _ ...any) pgx.Row {
	return p.row
}

// chunkArg extracts the id slice passed to a Query call.
func chunkArg(c queryCall) []string {
	if len(c.args) == 0 {
		return nil
	}
	ids, _ := c.args[0].([]string)
	return ids
}
