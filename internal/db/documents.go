package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/research-analyst/internal/store"
	"github.com/jonathan/research-analyst/internal/types"
)

func (db *DocumentStore) ListTasks(ctx context.Context) ([]types.Task, error) {
	return listDocuments[types.Task](ctx, db.pool, store.CollectionTasks)
}

func (db *DocumentStore) GetTask(ctx context.Context, id string) (*types.Task, error) {
	return getDocument[types.Task](ctx, db.pool, store.CollectionTasks, store.KindTask, id)
}

func (db *DocumentStore) SaveTask(ctx context.Context, task types.Task) error {
	return saveDocument(ctx, db.pool, store.CollectionTasks, task.ID, task)
}

func (db *DocumentStore) DeleteTask(ctx context.Context, id string) error {
	tag, err := db.pool.Exec(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`,
		store.CollectionTasks, id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete task %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return &store.NotFoundError{Kind: store.KindTask, ID: id}
	}
	return nil
}

func (db *DocumentStore) ReplaceTasks(ctx context.Context, tasks []types.Task) error {
	return replaceDocuments(ctx, db.pool, store.CollectionTasks, tasks, func(t types.Task) string { return t.ID })
}

func (db *DocumentStore) ListSources(ctx context.Context) ([]types.Source, error) {
	return listDocuments[types.Source](ctx, db.pool, store.CollectionSources)
}

func (db *DocumentStore) GetSource(ctx context.Context, id string) (*types.Source, error) {
	return getDocument[types.Source](ctx, db.pool, store.CollectionSources, store.KindSource, id)
}

func (db *DocumentStore) SaveSource(ctx context.Context, source types.Source) error {
	return saveDocument(ctx, db.pool, store.CollectionSources, source.ID, source)
}

func (db *DocumentStore) ReplaceSources(ctx context.Context, sources []types.Source) error {
	return replaceDocuments(ctx, db.pool, store.CollectionSources, sources, func(s types.Source) string { return s.ID })
}

func (db *DocumentStore) ListDeliverables(ctx context.Context) ([]types.Deliverable, error) {
	return listDocuments[types.Deliverable](ctx, db.pool, store.CollectionDeliverables)
}

// GetDeliverableByTask returns the first deliverable recorded for taskID.
func (db *DocumentStore) GetDeliverableByTask(ctx context.Context, taskID string) (*types.Deliverable, error) {
	var body []byte
	err := db.pool.QueryRow(ctx,
		`SELECT body FROM documents
		 WHERE collection = $1 AND body->>'task_id' = $2
		 ORDER BY position, id
		 LIMIT 1`,
		store.CollectionDeliverables, taskID,
	).Scan(&body)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &store.NotFoundError{Kind: store.KindDeliverable, ID: taskID}
		}
		return nil, fmt.Errorf("failed to get deliverable for task %s: %w", taskID, err)
	}
	var d types.Deliverable
	if err := json.Unmarshal(body, &d); err != nil {
		return nil, fmt.Errorf("failed to decode deliverable for task %s: %w", taskID, err)
	}
	return &d, nil
}

func (db *DocumentStore) SaveDeliverable(ctx context.Context, deliverable types.Deliverable) error {
	return saveDocument(ctx, db.pool, store.CollectionDeliverables, deliverable.ID, deliverable)
}

func (db *DocumentStore) Counts(ctx context.Context) (store.Counts, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT collection, COUNT(*) FROM documents GROUP BY collection`,
	)
	if err != nil {
		return store.Counts{}, fmt.Errorf("failed to count documents: %w", err)
	}
	defer rows.Close()

	var counts store.Counts
	for rows.Next() {
		var collection string
		var n int
		if err := rows.Scan(&collection, &n); err != nil {
			return store.Counts{}, fmt.Errorf("failed to scan count: %w", err)
		}
		switch collection {
		case store.CollectionTasks:
			counts.Tasks = n
		case store.CollectionSources:
			counts.Sources = n
		case store.CollectionDeliverables:
			counts.Deliverables = n
		}
	}
	if err := rows.Err(); err != nil {
		return store.Counts{}, fmt.Errorf("failed to count documents: %w", err)
	}
	return counts, nil
}

func listDocuments[T any](ctx context.Context, pool *pgxpool.Pool, collection string) ([]T, error) {
	rows, err := pool.Query(ctx,
		`SELECT body FROM documents WHERE collection = $1 ORDER BY position, id`,
		collection,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collection, err)
	}
	bodies, err := pgx.CollectRows(rows, pgx.RowTo[[]byte])
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", collection, err)
	}

	items := make([]T, 0, len(bodies))
	for _, body := range bodies {
		var item T
		if err := json.Unmarshal(body, &item); err != nil {
			return nil, fmt.Errorf("failed to decode %s document: %w", collection, err)
		}
		items = append(items, item)
	}
	return items, nil
}

func getDocument[T any](ctx context.Context, pool *pgxpool.Pool, collection, kind, id string) (*T, error) {
	var body []byte
	err := pool.QueryRow(ctx,
		`SELECT body FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	).Scan(&body)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &store.NotFoundError{Kind: kind, ID: id}
		}
		return nil, fmt.Errorf("failed to get %s %s: %w", kind, id, err)
	}
	var item T
	if err := json.Unmarshal(body, &item); err != nil {
		return nil, fmt.Errorf("failed to decode %s %s: %w", kind, id, err)
	}
	return &item, nil
}

// saveDocument inserts a document at the end of its collection, or replaces
// the body of an existing one without moving it.
func saveDocument(ctx context.Context, pool *pgxpool.Pool, collection, id string, doc any) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal %s document: %w", collection, err)
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO documents (collection, id, body, position)
		 VALUES ($1, $2, $3, COALESCE((SELECT MAX(position) + 1 FROM documents WHERE collection = $1), 0))
		 ON CONFLICT (collection, id) DO UPDATE SET body = EXCLUDED.body, updated_at = NOW()`,
		collection, id, body,
	)
	if err != nil {
		return fmt.Errorf("failed to save %s document %s: %w", collection, id, err)
	}
	return nil
}

func replaceDocuments[T any](ctx context.Context, pool *pgxpool.Pool, collection string, items []T, key func(T) string) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM documents WHERE collection = $1`, collection); err != nil {
		return fmt.Errorf("failed to clear %s: %w", collection, err)
	}

	batch := &pgx.Batch{}
	for i, item := range items {
		body, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("failed to marshal %s document: %w", collection, err)
		}
		batch.Queue(
			`INSERT INTO documents (collection, id, body, position) VALUES ($1, $2, $3, $4)
			 ON CONFLICT (collection, id) DO UPDATE SET body = EXCLUDED.body, position = EXCLUDED.position, updated_at = NOW()`,
			collection, key(item), body, i,
		)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert %s: %w", collection, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit %s: %w", collection, err)
	}
	return nil
}
