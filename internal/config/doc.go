// Package config loads the YAML configuration of the vodf-split command.
//
//	database:
//	  driver: postgres          # sqlite (default) | postgres
//	  dsn: postgres://...       # VODF_DATABASE_DSN overrides
//	  adapter: pgx              # pgx (default) | sql | sqlx, postgres only
//	blob:
//	  driver: s3                # "" (no payload resolution) | fs | memory | s3, VODF_BLOB_DRIVER overrides
//	  s3:
//	    bucket: vodf-irfs
//	split:
//	  preset: point-like
//	  concurrency: 8
package config
