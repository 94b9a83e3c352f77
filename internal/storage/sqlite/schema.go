// ABOUTME: SQLite schema for ingestion job records
// ABOUTME: One row per queued ingestion with its request and outcome
package sqlite

// Schema contains all SQL statements for database initialization
const Schema = `
CREATE TABLE IF NOT EXISTS ingest_jobs (
    id TEXT PRIMARY KEY,
    path TEXT NOT NULL,
    chunk_size INTEGER NOT NULL,
    overlap INTEGER NOT NULL,
    rebuild INTEGER NOT NULL DEFAULT 0,
    status TEXT NOT NULL DEFAULT 'pending',
    stage TEXT NOT NULL DEFAULT '',
    message TEXT NOT NULL DEFAULT '',
    chunks INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_jobs_status ON ingest_jobs(status);
CREATE INDEX IF NOT EXISTS idx_jobs_path ON ingest_jobs(path);
CREATE INDEX IF NOT EXISTS idx_jobs_created ON ingest_jobs(created_at);
`
