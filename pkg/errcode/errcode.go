package errcode

import (
	"github.com/gnames/gn"
)

const (
	UnknownError gn.ErrorCode = iota

	// File System errors
	CreateDirError
	CopyFileError
	ReadFileError

	// Logging errors
	CreateLogFileError

	// Database errors
	DBConnectionError
	DBNotConnectedError
	DBTableExistsCheckError
	DBGORMConnectionError

	// Schema catalog errors
	SchemaReadError
	SchemaParseError
	SchemaValidationError
	SchemaGORMParseError
	SchemaUnknownModelError

	// Source errors
	SourceNotFoundError
	SourceQueryError
	SourceTablesError

	// Local store errors
	StoreQueryError
	StoreUnknownColumnError
	StoreTransactionError

	// Copy errors
	CopyPersistenceError
	CopyMissingLocalRecordError
	CopyUnresolvableAssociationError
	CopyCyclicDependencyError
	CopyFinderError
	CopyCallbackError
	CopyNoRootsError

	// Pull errors
	PullLocalDriverError
	PullMissingTablesError
	PullFailedRootsError
)
