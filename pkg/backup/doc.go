// Package backup snapshots the SQLite database and exports its content as
// replayable SQL.
//
// Snapshots are byte copies named app-<timestamp>.db; exports are
// export-<timestamp>.sql. Both are kept in one directory and pruned to a
// retention count, newest first by modification time. A Scheduler runs a
// snapshot and an export once a day at a fixed local hour.
//
//	svc := backup.NewService(backup.Options{DBFile: "app.db", Dir: "backups", Retention: 30})
//	path, err := svc.CreateBackup(ctx)
package backup
