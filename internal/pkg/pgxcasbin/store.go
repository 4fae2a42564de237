package pgxcasbin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Rule rows carry ptype plus up to six value columns, matching casbin's
// widest built-in policy shape.
const ruleFields = 6

// Commander is the slice of pgx a store needs; *pgxpool.Pool satisfies it.
type Commander interface {
	Begin(context.Context) (pgx.Tx, error)
	SendBatch(context.Context, *pgx.Batch) pgx.BatchResults
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type store struct {
	db    Commander
	table string
}

func newStore(db Commander) *store {
	return &store{db: db, table: "casbin_rule"}
}

func valueColumns() string {
	cols := make([]string, ruleFields)
	for i := range cols {
		cols[i] = "v" + strconv.Itoa(i)
	}
	return strings.Join(cols, ", ")
}

func (s *store) insertSQL() string {
	placeholders := make([]string, ruleFields)
	for i := range placeholders {
		placeholders[i] = "$" + strconv.Itoa(i+2)
	}
	return fmt.Sprintf(
		"insert into %s (ptype, %s) values ($1, %s) on conflict (ptype, %s) do nothing",
		s.table, valueColumns(), strings.Join(placeholders, ", "), valueColumns(),
	)
}

func (s *store) deleteSQL() string {
	conds := make([]string, ruleFields)
	for i := range conds {
		conds[i] = "v" + strconv.Itoa(i) + " = $" + strconv.Itoa(i+2)
	}
	return fmt.Sprintf("delete from %s where ptype = $1 and %s", s.table, strings.Join(conds, " and "))
}

func ruleArgs(ptype string, rule []string) ([]any, error) {
	if len(rule) > ruleFields {
		return nil, fmt.Errorf("pgxcasbin: rule has %d fields, max is %d", len(rule), ruleFields)
	}
	args := make([]any, 1+ruleFields)
	args[0] = ptype
	for i := range ruleFields {
		if i < len(rule) {
			args[i+1] = rule[i]
		} else {
			args[i+1] = ""
		}
	}
	return args, nil
}

func (s *store) selectAll(ctx context.Context) ([][]string, error) {
	rows, err := s.db.Query(ctx, fmt.Sprintf("select ptype, %s from %s", valueColumns(), s.table))
	if err != nil {
		return nil, fmt.Errorf("pgxcasbin: select rules: %w", err)
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		cols := make([]sql.NullString, 1+ruleFields)
		scan := make([]any, len(cols))
		for i := range cols {
			scan[i] = &cols[i]
		}
		if err := rows.Scan(scan...); err != nil {
			return nil, fmt.Errorf("pgxcasbin: scan rule: %w", err)
		}

		line := make([]string, len(cols))
		for i, c := range cols {
			line[i] = c.String
		}
		// Trailing empty columns are padding, not policy fields.
		end := len(line)
		for end > 0 && line[end-1] == "" {
			end--
		}
		out = append(out, line[:end])
	}

	return out, rows.Err()
}

func (s *store) insert(ctx context.Context, ptype string, rule []string) error {
	args, err := ruleArgs(ptype, rule)
	if err != nil {
		return err
	}
	if _, err := s.db.Exec(ctx, s.insertSQL(), args...); err != nil {
		return fmt.Errorf("pgxcasbin: insert rule: %w", err)
	}
	return nil
}

func (s *store) delete(ctx context.Context, ptype string, rule []string) error {
	args, err := ruleArgs(ptype, rule)
	if err != nil {
		return err
	}
	if _, err := s.db.Exec(ctx, s.deleteSQL(), args...); err != nil {
		return fmt.Errorf("pgxcasbin: delete rule: %w", err)
	}
	return nil
}

func (s *store) deleteWhere(ctx context.Context, ptype string, fieldIndex int, fieldValues []string) error {
	if ptype == "" {
		return errors.New("pgxcasbin: ptype is required")
	}
	if fieldIndex+len(fieldValues) > ruleFields {
		return fmt.Errorf("pgxcasbin: filter exceeds %d fields", ruleFields)
	}

	query := fmt.Sprintf("delete from %s where ptype = $1", s.table)
	args := []any{ptype}
	for i, v := range fieldValues {
		if v == "" {
			continue
		}
		args = append(args, v)
		query += fmt.Sprintf(" and v%d = $%d", fieldIndex+i, len(args))
	}

	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("pgxcasbin: delete filtered rules: %w", err)
	}
	return nil
}

func (s *store) batchInsert(ctx context.Context, ptype string, rules [][]string) error {
	return s.sendBatch(ctx, s.insertSQL(), ptype, rules, "insert")
}

func (s *store) batchDelete(ctx context.Context, ptype string, rules [][]string) error {
	return s.sendBatch(ctx, s.deleteSQL(), ptype, rules, "delete")
}

func (s *store) sendBatch(ctx context.Context, query, ptype string, rules [][]string, op string) error {
	if len(rules) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, rule := range rules {
		args, err := ruleArgs(ptype, rule)
		if err != nil {
			return err
		}
		batch.Queue(query, args...)
	}

	br := s.db.SendBatch(ctx, batch)
	for range batch.Len() {
		if _, err := br.Exec(); err != nil {
			return errors.Join(fmt.Errorf("pgxcasbin: batch %s: %w", op, err), br.Close())
		}
	}

	return br.Close()
}

func (s *store) replaceAll(ctx context.Context, rules [][]string) (err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("pgxcasbin: begin: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				err = errors.Join(err, rbErr)
			}
		}
	}()

	if _, err = tx.Exec(ctx, fmt.Sprintf("truncate table %s restart identity", s.table)); err != nil {
		return fmt.Errorf("pgxcasbin: truncate: %w", err)
	}

	if len(rules) > 0 {
		batch := &pgx.Batch{}
		for _, rule := range rules {
			if len(rule) == 0 {
				continue
			}
			args, argErr := ruleArgs(rule[0], rule[1:])
			if argErr != nil {
				return argErr
			}
			batch.Queue(s.insertSQL(), args...)
		}

		br := tx.SendBatch(ctx, batch)
		for range batch.Len() {
			if _, err = br.Exec(); err != nil {
				return errors.Join(fmt.Errorf("pgxcasbin: batch insert: %w", err), br.Close())
			}
		}
		if err = br.Close(); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}
