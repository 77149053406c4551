package database

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/voidshard/otto/pkg/errors"
	"github.com/voidshard/otto/pkg/structs"
)

// jobCols is the column order used by every SELECT / RETURNING below.
const jobCols = `name, user_id, script_path, work_dir, id, status, etag, execution_log, error_message, cancel_requested, exit_code, queue_job_id, started_at, completed_at, created_at, updated_at`

// Postgres is an otto database implementation that uses postgres.
type Postgres struct {
	opts *Options
	pool *pgxpool.Pool
}

// NewPostgres returns a new Postgres database connection.
func NewPostgres(opts *Options) (*Postgres, error) {
	opts.SetDefaults()
	opts.URL = strings.Replace(opts.URL, "$"+opts.UsernameEnvVar, os.Getenv(opts.UsernameEnvVar), 1)
	opts.URL = strings.Replace(opts.URL, "$"+opts.PasswordEnvVar, os.Getenv(opts.PasswordEnvVar), 1)
	pool, err := pgxpool.New(context.Background(), opts.URL)
	return &Postgres{pool: pool, opts: opts}, err
}

// Close shuts down the database connection.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

// InsertJob inserts a job into the database (new jobs are UPLOADED).
func (p *Postgres) InsertJob(j *structs.Job) error {
	jstr, jargs := toJobSqlArgs(1, j)
	qstr := fmt.Sprintf(`INSERT INTO %s (%s) VALUES %s;`, string(structs.KindJob), jobCols, jstr)

	ctx := context.Background()
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, qstr, jargs...)
	return err
}

// Jobs returns jobs matching the given query.
func (p *Postgres) Jobs(q *structs.Query) ([]*structs.Job, error) {
	where, args := toSqlQuery(map[string][]string{
		"id":      q.JobIDs,
		"user_id": q.UserIDs,
		"status":  statusToStrings(q.Statuses),
	}, q.UpdatedBefore)
	args = append(args, q.Limit, q.Offset)

	qstr := fmt.Sprintf(`SELECT %s FROM %s %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d;`,
		jobCols, string(structs.KindJob), where, len(args)-1, len(args),
	)

	ctx := context.Background()
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, qstr, args...)
	if err != nil {
		return nil, err
	}

	jobs := []*structs.Job{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}

	return jobs, nil
}

// ClaimJob atomically moves an UPLOADED job to RUNNING.
func (p *Postgres) ClaimJob(id, newTag string) (*structs.Job, error) {
	now := timeNow()
	qstr := fmt.Sprintf(`UPDATE %s SET status=$1, etag=$2, started_at=$3, updated_at=$3
	WHERE id=$4 AND status=$5 RETURNING %s;`, string(structs.KindJob), jobCols)

	ctx := context.Background()
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	j, err := scanJob(conn.QueryRow(ctx, qstr, structs.RUNNING, newTag, now, id, structs.UPLOADED))
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("%w %s", errors.ErrNotClaimed, id)
	}
	return j, err
}

// ClaimNextUploaded atomically claims the oldest UPLOADED job, if any.
func (p *Postgres) ClaimNextUploaded(newTag string, perUserLimit int) (*structs.Job, error) {
	now := timeNow()
	args := []interface{}{structs.RUNNING, newTag, now, structs.UPLOADED}

	limitClause := ""
	if perUserLimit > 0 {
		args = append(args, perUserLimit)
		limitClause = fmt.Sprintf(`AND user_id NOT IN (
			SELECT user_id FROM %s WHERE status='%s' GROUP BY user_id HAVING COUNT(*) >= $5
		)`, string(structs.KindJob), structs.RUNNING)
	}

	// SKIP LOCKED so concurrent workers never claim the same job
	qstr := fmt.Sprintf(`UPDATE %s SET status=$1, etag=$2, started_at=$3, updated_at=$3
	WHERE id = (
		SELECT id FROM %s WHERE status=$4 %s ORDER BY created_at ASC LIMIT 1 FOR UPDATE SKIP LOCKED
	) RETURNING %s;`, string(structs.KindJob), string(structs.KindJob), limitClause, jobCols)

	ctx := context.Background()
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	j, err := scanJob(conn.QueryRow(ctx, qstr, args...))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return j, err
}

// AppendLogLines appends lines (in order) to the job's execution log.
func (p *Postgres) AppendLogLines(id string, lines []string) error {
	if len(lines) == 0 {
		return nil
	}
	qstr := fmt.Sprintf(`UPDATE %s SET execution_log = execution_log || $1, updated_at=$2 WHERE id=$3;`, string(structs.KindJob))
	chunk := strings.Join(lines, "\n") + "\n"

	ctx := context.Background()
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	info, err := conn.Exec(ctx, qstr, chunk, timeNow(), id)
	if err != nil {
		return err
	}
	if info.RowsAffected() == 0 {
		return fmt.Errorf("%w %s", errors.ErrNotFound, id)
	}
	return nil
}

// RequestCancel flips cancel_requested on the given jobs. No etag; this is
// the one write a foreign process makes to a record it does not own.
func (p *Postgres) RequestCancel(ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	in, args := toSqlIn(3, "id", ids)
	qstr := fmt.Sprintf(`UPDATE %s SET cancel_requested=TRUE, updated_at=$1 WHERE %s AND status = ANY($2);`,
		string(structs.KindJob), in)
	args = append([]interface{}{timeNow(), []string{string(structs.UPLOADED), string(structs.RUNNING)}}, args...)

	ctx := context.Background()
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Release()

	info, err := conn.Exec(ctx, qstr, args...)
	if err != nil {
		return 0, err
	}
	return info.RowsAffected(), nil
}

// CancelRequested re-reads the authoritative cancel flag for one job.
func (p *Postgres) CancelRequested(id string) (bool, error) {
	qstr := fmt.Sprintf(`SELECT cancel_requested FROM %s WHERE id=$1;`, string(structs.KindJob))

	ctx := context.Background()
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return false, err
	}
	defer conn.Release()

	var flag bool
	err = conn.QueryRow(ctx, qstr, id).Scan(&flag)
	if err == pgx.ErrNoRows {
		return false, fmt.Errorf("%w %s", errors.ErrNotFound, id)
	}
	return flag, err
}

// SetQueueJobID records the queue's ID for the given job.
func (p *Postgres) SetQueueJobID(id, etag, newTag, queueJobID string) error {
	qstr := fmt.Sprintf(`UPDATE %s SET queue_job_id=$1, etag=$2, updated_at=$3 WHERE id=$4 AND etag=$5;`, string(structs.KindJob))

	ctx := context.Background()
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	info, err := conn.Exec(ctx, qstr, queueJobID, newTag, timeNow(), id, etag)
	if err != nil {
		return err
	}
	if info.RowsAffected() == 0 {
		return errors.ErrETagMismatch
	}
	return nil
}

// FinishJob moves a job to a final status.
func (p *Postgres) FinishJob(id, etag, newTag string, status structs.Status, errMsg string, exitCode *int64) error {
	if !structs.IsFinalStatus(status) {
		return fmt.Errorf("%w %s is not a final status", errors.ErrInvalidState, status)
	}
	now := timeNow()
	qstr := fmt.Sprintf(`UPDATE %s SET status=$1, etag=$2, error_message=$3, exit_code=$4, completed_at=$5, updated_at=$5
	WHERE id=$6 AND etag=$7;`, string(structs.KindJob))

	ctx := context.Background()
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	info, err := conn.Exec(ctx, qstr, status, newTag, errMsg, exitCode, now, id, etag)
	if err != nil {
		return err
	}
	if info.RowsAffected() == 0 {
		return errors.ErrETagMismatch
	}
	return nil
}

// MarkOrphaned fails every RUNNING job (worker startup reconciliation).
func (p *Postgres) MarkOrphaned(msg, newTag string) (int64, error) {
	now := timeNow()
	qstr := fmt.Sprintf(`UPDATE %s SET status=$1, etag=$2, error_message=$3, completed_at=$4, updated_at=$4 WHERE status=$5;`,
		string(structs.KindJob))

	ctx := context.Background()
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Release()

	info, err := conn.Exec(ctx, qstr, structs.FAILED, newTag, msg, now, structs.RUNNING)
	if err != nil {
		return 0, err
	}
	return info.RowsAffected(), nil
}

// scanJob reads one job row (jobCols order).
func scanJob(row pgx.Row) (*structs.Job, error) {
	j := structs.Job{}
	err := row.Scan(
		&j.Name,
		&j.UserID,
		&j.ScriptPath,
		&j.WorkDir,
		&j.ID,
		&j.Status,
		&j.ETag,
		&j.ExecutionLog,
		&j.ErrorMessage,
		&j.CancelRequested,
		&j.ExitCode,
		&j.QueueJobID,
		&j.StartedAt,
		&j.CompletedAt,
		&j.CreatedAt,
		&j.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

// toSqlQuery converts query data into a SQL query string & args
func toSqlQuery(in map[string][]string, updatedBefore int64) (string, []interface{}) {
	if in == nil {
		in = map[string][]string{}
	}
	and := []string{}
	args := []interface{}{}
	for _, k := range []string{"id", "user_id", "status"} { // fixed order so queries are stable
		v := in[k]
		if v == nil || len(v) == 0 {
			continue
		}
		s, a := toSqlIn(len(args)+1, k, v)
		and = append(and, s)
		args = append(args, a...)
	}
	if updatedBefore > 0 {
		args = append(args, updatedBefore)
		and = append(and, fmt.Sprintf("updated_at <= $%d", len(args)))
	}
	if len(and) == 0 {
		return "", args
	}
	return fmt.Sprintf("WHERE %s", strings.Join(and, " AND ")), args
}

// toSqlIn converts a list of strings into a SQL IN clause
func toSqlIn(offset int, field string, args []string) (string, []interface{}) {
	if len(args) == 0 {
		return "", []interface{}{}
	}
	vals := []string{}
	ifargs := []interface{}{}
	for i, a := range args {
		vals = append(vals, fmt.Sprintf("$%d", i+offset))
		ifargs = append(ifargs, a)
	}
	return fmt.Sprintf("%s IN (%s)", field, strings.Join(vals, ", ")), ifargs
}

// toJobSqlArgs converts a job into a SQL query string & args (for an insert)
func toJobSqlArgs(offset int, j *structs.Job) (string, []interface{}) {
	vals := []string{}
	for i := offset; i < 16+offset; i++ {
		vals = append(vals, fmt.Sprintf("$%d", i))
	}
	if j.CreatedAt == 0 {
		j.CreatedAt = timeNow()
		j.UpdatedAt = j.CreatedAt
	}
	return fmt.Sprintf("(%s)", strings.Join(vals, ", ")), []interface{}{
		j.Name,
		j.UserID,
		j.ScriptPath,
		j.WorkDir,
		j.ID,
		j.Status,
		j.ETag,
		j.ExecutionLog,
		j.ErrorMessage,
		j.CancelRequested,
		j.ExitCode,
		j.QueueJobID,
		j.StartedAt,
		j.CompletedAt,
		j.CreatedAt,
		j.UpdatedAt,
	}
}

// statusToStrings converts a list of statuses into a list of strings
func statusToStrings(in []structs.Status) []string {
	if in == nil || len(in) == 0 {
		return nil
	}
	out := []string{}
	for _, s := range in {
		out = append(out, string(s))
	}
	return out
}

// timeNow returns the current time in unix seconds
func timeNow() int64 {
	return time.Now().Unix()
}
