package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/apperror"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/models"
)

// dialect holds the differences between the SQL backends.
type dialect struct {
	orderBy     string
	placeholder func(n int) string
}

var (
	sqliteDialect = dialect{
		orderBy:     "rowid",
		placeholder: func(int) string { return "?" },
	}
	postgresDialect = dialect{
		orderBy:     "seq",
		placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
	}
)

type scanner interface {
	Scan(dest ...any) error
}

// codec maps one row type onto a table. columns excludes id.
type codec[R any] struct {
	table   string
	entity  string
	columns []string
	values  func(R) ([]any, error)
	scan    func(scanner) (R, error)
	// encode converts an update value to its column representation.
	encode func(col string, v any) (any, error)
}

type sqlTable[R Record[R]] struct {
	db      *sql.DB
	dialect dialect
	codec   codec[R]
}

func newSQLTable[R Record[R]](db *sql.DB, d dialect, c codec[R]) *sqlTable[R] {
	return &sqlTable[R]{db: db, dialect: d, codec: c}
}

func (t *sqlTable[R]) SelectAll(ctx context.Context) ([]R, error) {
	query := fmt.Sprintf("SELECT id, %s FROM %s ORDER BY %s",
		strings.Join(t.codec.columns, ", "), t.codec.table, t.dialect.orderBy)

	rows, err := t.db.QueryContext(ctx, query)
	if err != nil {
		return nil, t.fail("select", "", err)
	}
	defer rows.Close()

	var out []R
	for rows.Next() {
		r, err := t.codec.scan(rows)
		if err != nil {
			return nil, t.fail("select", "", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, t.fail("select", "", err)
	}
	return out, nil
}

// Insert writes all rows in one database transaction.
func (t *sqlTable[R]) Insert(ctx context.Context, rows ...R) ([]string, error) {
	if len(rows) == 0 {
		return []string{}, nil
	}

	cols := append([]string{"id"}, t.codec.columns...)
	marks := make([]string, len(cols))
	for i := range cols {
		marks[i] = t.dialect.placeholder(i + 1)
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		t.codec.table, strings.Join(cols, ", "), strings.Join(marks, ", "))

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, t.fail("insert", "", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return nil, t.fail("insert", "", err)
	}
	defer stmt.Close()

	ids := make([]string, len(rows))
	for i, r := range rows {
		id := r.RowID()
		if id == "" {
			id = uuid.NewString()
		}
		values, err := t.codec.values(r)
		if err != nil {
			return nil, t.fail("insert", id, err)
		}
		if _, err := stmt.ExecContext(ctx, append([]any{id}, values...)...); err != nil {
			return nil, t.fail("insert", id, err)
		}
		ids[i] = id
	}

	if err := tx.Commit(); err != nil {
		return nil, t.fail("insert", "", err)
	}
	return ids, nil
}

// Update writes only the given columns.
func (t *sqlTable[R]) Update(ctx context.Context, id string, columns map[string]any) error {
	if len(columns) == 0 {
		return nil
	}
	var zero R
	if _, err := zero.Apply(columns); err != nil {
		return t.fail("update", id, err)
	}

	names := make([]string, 0, len(columns))
	for col := range columns {
		names = append(names, col)
	}
	sort.Strings(names)

	sets := make([]string, len(names))
	args := make([]any, 0, len(names)+1)
	for i, col := range names {
		v := columns[col]
		if t.codec.encode != nil {
			var err error
			if v, err = t.codec.encode(col, v); err != nil {
				return t.fail("update", id, err)
			}
		}
		sets[i] = fmt.Sprintf("%s = %s", col, t.dialect.placeholder(i+1))
		args = append(args, v)
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = %s",
		t.codec.table, strings.Join(sets, ", "), t.dialect.placeholder(len(args)))

	res, err := t.db.ExecContext(ctx, query, args...)
	if err != nil {
		return t.fail("update", id, err)
	}
	return t.checkAffected(res, id)
}

func (t *sqlTable[R]) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = %s", t.codec.table, t.dialect.placeholder(1))
	res, err := t.db.ExecContext(ctx, query, id)
	if err != nil {
		return t.fail("delete", id, err)
	}
	return t.checkAffected(res, id)
}

func (t *sqlTable[R]) checkAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return nil
	}
	if n == 0 {
		return &apperror.NotFoundError{Entity: t.codec.entity, Key: id}
	}
	return nil
}

func (t *sqlTable[R]) fail(op, id string, err error) error {
	return &apperror.PersistenceError{Operation: op, Entity: t.codec.entity, ID: id, Err: err}
}

var transactionCodec = codec[TransactionRow]{
	table:  "transactions",
	entity: "transaction",
	columns: []string{
		models.ColumnDate, models.ColumnDescription,
		"money_in_gbp", "money_out_gbp", "money_in_aed", "money_out_aed",
		models.ColumnCategoryID, models.ColumnCategoryName, models.ColumnSubcategoryName,
		models.ColumnNotes, models.ColumnExcluded, models.ColumnBankName,
	},
	values: func(r TransactionRow) ([]any, error) {
		return []any{
			r.Date, r.Description,
			r.MoneyInGBP, r.MoneyOutGBP, r.MoneyInAED, r.MoneyOutAED,
			r.CategoryID, r.CategoryName, r.SubcategoryName,
			r.Notes, r.Excluded, r.BankName,
		}, nil
	},
	scan: func(s scanner) (TransactionRow, error) {
		var r TransactionRow
		err := s.Scan(&r.ID, &r.Date, &r.Description,
			&r.MoneyInGBP, &r.MoneyOutGBP, &r.MoneyInAED, &r.MoneyOutAED,
			&r.CategoryID, &r.CategoryName, &r.SubcategoryName,
			&r.Notes, &r.Excluded, &r.BankName)
		return r, err
	},
}

var categoryCodec = codec[CategoryRow]{
	table:   "categories",
	entity:  "category",
	columns: []string{ColumnName, ColumnType, ColumnColor, ColumnSubcategories},
	values: func(r CategoryRow) ([]any, error) {
		subs, err := encodeList(r.Subcategories)
		if err != nil {
			return nil, err
		}
		return []any{r.Name, r.Type, r.Color, subs}, nil
	},
	scan: func(s scanner) (CategoryRow, error) {
		var r CategoryRow
		var subs string
		if err := s.Scan(&r.ID, &r.Name, &r.Type, &r.Color, &subs); err != nil {
			return r, err
		}
		if err := json.Unmarshal([]byte(subs), &r.Subcategories); err != nil {
			return r, fmt.Errorf("decode subcategories of %s: %w", r.ID, err)
		}
		return r, nil
	},
	encode: func(col string, v any) (any, error) {
		if col == ColumnSubcategories {
			return encodeList(v.([]string))
		}
		return v, nil
	},
}

var mappingCodec = codec[MerchantMappingRow]{
	table:  "merchant_mappings",
	entity: "merchant_mapping",
	columns: []string{
		ColumnMerchantPattern, models.ColumnCategoryID,
		models.ColumnCategoryName, models.ColumnSubcategoryName, ColumnCount,
	},
	values: func(r MerchantMappingRow) ([]any, error) {
		return []any{r.MerchantPattern, r.CategoryID, r.CategoryName, r.SubcategoryName, r.Count}, nil
	},
	scan: func(s scanner) (MerchantMappingRow, error) {
		var r MerchantMappingRow
		err := s.Scan(&r.ID, &r.MerchantPattern, &r.CategoryID, &r.CategoryName, &r.SubcategoryName, &r.Count)
		return r, err
	},
}

func encodeList(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// sqlBackend serves all tables from one *sql.DB.
type sqlBackend struct {
	db           *sql.DB
	transactions *sqlTable[TransactionRow]
	categories   *sqlTable[CategoryRow]
	mappings     *sqlTable[MerchantMappingRow]
	closers      []func()
}

func newSQLBackend(db *sql.DB, d dialect) *sqlBackend {
	return &sqlBackend{
		db:           db,
		transactions: newSQLTable(db, d, transactionCodec),
		categories:   newSQLTable(db, d, categoryCodec),
		mappings:     newSQLTable(db, d, mappingCodec),
	}
}

func (b *sqlBackend) Transactions() Table[TransactionRow]         { return b.transactions }
func (b *sqlBackend) Categories() Table[CategoryRow]              { return b.categories }
func (b *sqlBackend) MerchantMappings() Table[MerchantMappingRow] { return b.mappings }

func (b *sqlBackend) Close() error {
	err := b.db.Close()
	for _, c := range b.closers {
		c()
	}
	return err
}
