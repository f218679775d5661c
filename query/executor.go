package query

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver (pgx)
	_ "github.com/mattn/go-sqlite3"    // SQLite driver
	"golang.org/x/sync/errgroup"

	"github.com/shibukawa/sqlshard/routing"
)

// Error definitions
var (
	ErrDatabaseConnection  = errors.New("database connection failed")
	ErrQueryExecution      = errors.New("query execution failed")
	ErrDataSourceNotFound  = errors.New("data source not found")
	ErrColumnMismatch      = errors.New("route units returned different columns")
	ErrInvalidOutputFormat = errors.New("invalid output format")
	ErrDangerousQuery      = errors.New("dangerous query detected")
)

// DataSource is the connection setting of one data source.
type DataSource struct {
	Driver     string
	Connection string
}

// QueryResult represents the merged result of every route unit
type QueryResult struct {
	// Query information
	Units      []routing.RouteUnit `json:"units"`
	Parameters []any               `json:"parameters"`
	Duration   time.Duration       `json:"duration"`

	// Result data
	Columns      []string `json:"columns"`
	Rows         [][]any  `json:"rows"`
	Count        int      `json:"count"`
	RowsAffected int64    `json:"rows_affected"`
}

// Executor runs route units on their data sources. Units are executed concurrently.
type Executor struct {
	dbs     map[string]*sql.DB
	drivers map[string]string
	timeout time.Duration
}

// NewExecutor creates a new executor over already opened databases
func NewExecutor(dbs map[string]*sql.DB, timeout time.Duration) *Executor {
	return &Executor{
		dbs:     dbs,
		drivers: make(map[string]string, len(dbs)),
		timeout: timeout,
	}
}

// SetDriver records the driver behind a data source. Units bound for pgx get their
// ? placeholders renumbered as $N before they are sent.
func (e *Executor) SetDriver(dataSource, driver string) {
	e.drivers[dataSource] = normalizeSQLDriverName(driver)
}

// statement returns the SQL of unit in the placeholder style of its driver.
func (e *Executor) statement(unit routing.RouteUnit) string {
	if e.drivers[unit.DataSource] == "pgx" {
		return Rebind(unit.SQL)
	}

	return unit.SQL
}

// Open opens every data source and returns an executor over them.
// Connections opened before a failure are closed.
func Open(sources map[string]DataSource, timeout int) (*Executor, error) {
	dbs := make(map[string]*sql.DB, len(sources))

	for _, name := range slices.Sorted(maps.Keys(sources)) {
		source := sources[name]

		db, err := OpenDatabase(source.Driver, source.Connection, timeout)
		if err != nil {
			for _, opened := range dbs {
				opened.Close()
			}

			return nil, fmt.Errorf("data source '%s': %w", name, err)
		}

		dbs[name] = db
	}

	executor := NewExecutor(dbs, time.Duration(timeout)*time.Second)
	for name, source := range sources {
		executor.SetDriver(name, source.Driver)
	}

	return executor, nil
}

// DB returns the database of a data source.
func (e *Executor) DB(name string) (*sql.DB, bool) {
	db, ok := e.dbs[name]
	return db, ok
}

// Close closes every database.
func (e *Executor) Close() error {
	var errs []error

	for _, db := range e.dbs {
		if err := db.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Query runs a row-returning statement on every unit and concatenates the rows in unit order.
func (e *Executor) Query(ctx context.Context, units []routing.RouteUnit, args ...any) (*QueryResult, error) {
	if err := e.checkDataSources(units); err != nil {
		return nil, err
	}

	queryCtx, cancel := e.withTimeout(ctx)
	defer cancel()

	type unitRows struct {
		columns []string
		rows    [][]any
	}

	results := make([]unitRows, len(units))
	startTime := time.Now()

	g, gctx := errgroup.WithContext(queryCtx)

	for i, unit := range units {
		g.Go(func() error {
			columns, rows, err := e.queryUnit(gctx, unit, args)
			if err != nil {
				return err
			}

			results[i] = unitRows{columns: columns, rows: rows}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &QueryResult{
		Units:      units,
		Parameters: args,
		Duration:   time.Since(startTime),
	}

	for i, unit := range results {
		if i == 0 {
			result.Columns = unit.columns
		} else if !slices.Equal(result.Columns, unit.columns) {
			return nil, fmt.Errorf("%w: %v on '%s' and %v on '%s'",
				ErrColumnMismatch, result.Columns, units[0].DataSource, unit.columns, units[i].DataSource)
		}

		result.Rows = append(result.Rows, unit.rows...)
	}

	result.Count = len(result.Rows)

	return result, nil
}

// Exec runs a statement on every unit and sums the affected rows.
func (e *Executor) Exec(ctx context.Context, units []routing.RouteUnit, args ...any) (*QueryResult, error) {
	if err := e.checkDataSources(units); err != nil {
		return nil, err
	}

	queryCtx, cancel := e.withTimeout(ctx)
	defer cancel()

	var (
		mu       sync.Mutex
		affected int64
	)

	startTime := time.Now()

	g, gctx := errgroup.WithContext(queryCtx)

	for _, unit := range units {
		g.Go(func() error {
			res, err := e.dbs[unit.DataSource].ExecContext(gctx, e.statement(unit), args...)
			if err != nil {
				return fmt.Errorf("%w on '%s': %v", ErrQueryExecution, unit.DataSource, err)
			}

			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("%w on '%s': %v", ErrQueryExecution, unit.DataSource, err)
			}

			mu.Lock()
			affected += n
			mu.Unlock()

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &QueryResult{
		Units:        units,
		Parameters:   args,
		Duration:     time.Since(startTime),
		RowsAffected: affected,
	}, nil
}

func (e *Executor) checkDataSources(units []routing.RouteUnit) error {
	for _, unit := range units {
		if _, ok := e.dbs[unit.DataSource]; !ok {
			return fmt.Errorf("%w: '%s'", ErrDataSourceNotFound, unit.DataSource)
		}
	}

	return nil
}

func (e *Executor) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.timeout > 0 {
		return context.WithTimeout(ctx, e.timeout)
	}

	return context.WithCancel(ctx)
}

func (e *Executor) queryUnit(ctx context.Context, unit routing.RouteUnit, args []any) ([]string, [][]any, error) {
	rows, err := e.dbs[unit.DataSource].QueryContext(ctx, e.statement(unit), args...)
	if err != nil {
		return nil, nil, fmt.Errorf("%w on '%s': %v", ErrQueryExecution, unit.DataSource, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get column names: %w", err)
	}

	var resultRows [][]any

	values := make([]any, len(columns))
	scanArgs := make([]any, len(columns))

	for i := range values {
		scanArgs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(scanArgs...); err != nil {
			return nil, nil, fmt.Errorf("failed to scan row: %w", err)
		}

		rowValues := make([]any, len(columns))
		for i, v := range values {
			rowValues[i] = convertSQLValue(v)
		}

		resultRows = append(resultRows, rowValues)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error during row iteration: %w", err)
	}

	return columns, resultRows, nil
}

// convertSQLValue converts SQL values to appropriate Go types
func convertSQLValue(v any) any {
	if v == nil {
		return nil
	}

	switch value := v.(type) {
	case []byte:
		str := string(value)

		// JSON documents come back as bytes from MySQL
		if len(str) > 1 && ((str[0] == '{' && str[len(str)-1] == '}') || (str[0] == '[' && str[len(str)-1] == ']')) {
			var jsonValue any
			if err := json.Unmarshal(value, &jsonValue); err == nil {
				return jsonValue
			}
		}

		return str
	default:
		return value
	}
}

// OpenDatabase opens a database connection
func OpenDatabase(driver, connectionString string, timeout int) (*sql.DB, error) {
	db, err := sql.Open(normalizeSQLDriverName(driver), connectionString)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseConnection, err)
	}

	db.SetConnMaxLifetime(time.Duration(timeout) * time.Second)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeout)*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", ErrDatabaseConnection, err)
	}

	return db, nil
}
