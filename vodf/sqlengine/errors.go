package sqlengine

import "errors"

var ErrNilDatabaseConnection = errors.New("database connection must not be nil")
var ErrEmptyTableName = errors.New("table name must not be empty")
var ErrUnsupportedDialect = errors.New("unsupported sql dialect")
var ErrBuildingQueryFailed = errors.New("building query failed")
var ErrQueryingFailed = errors.New("querying database failed")
var ErrScanningDBRowFailed = errors.New("scanning db row failed")
var ErrWritingFailed = errors.New("writing to database failed")
var ErrMigrationFailed = errors.New("creating tables failed")
var ErrInvalidHeaderJSON = errors.New("stored header is not a valid json object")
var ErrUnsupportedFilterParameter = errors.New("filter parameter has no column")
