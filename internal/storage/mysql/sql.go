package mysql

// Runs are keyed by id; re-recording a run (same id) updates it in place.
const upsertRunSQL = `
INSERT INTO runs
  (id, source, run_date, status, scored, total, started_at, finished_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  status      = VALUES(status),
  scored      = VALUES(scored),
  total       = VALUES(total),
  finished_at = VALUES(finished_at)
`

// One miss per (source, hotel, date); the latest reason wins.
const upsertMissSQL = `
INSERT INTO extraction_misses (source, hotel, run_date, reason)
VALUES (?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  reason  = VALUES(reason),
  seen_at = CURRENT_TIMESTAMP
`

const listRunsSQL = `
SELECT id, source, run_date, status, scored, total, started_at, finished_at
FROM runs
WHERE source = ?
ORDER BY started_at DESC, id DESC
LIMIT ?
`

const listMissesSQL = `
SELECT source, hotel, run_date, reason
FROM extraction_misses
WHERE source = ? AND run_date = ?
ORDER BY hotel
`
